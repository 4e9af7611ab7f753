package entity

import (
	"fmt"
	"strings"
	"time"
)

// CaseStatus is the analyst workflow state of a duplicate case.
type CaseStatus string

// Case states. Only open cases accept actions.
const (
	CaseStatusOpen      CaseStatus = "open"
	CaseStatusConfirmed CaseStatus = "confirmed" // duplicate confirmed, payment stays blocked
	CaseStatusReleased  CaseStatus = "released"  // not a duplicate, payment released
)

// Valid reports whether s is a known case state.
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusOpen, CaseStatusConfirmed, CaseStatusReleased:
		return true
	}
	return false
}

// CaseAction is an analyst decision on an open case.
type CaseAction string

// Analyst decisions
const (
	CaseActionConfirm CaseAction = "confirm"
	CaseActionRelease CaseAction = "release"
)

// Target returns the state an action moves an open case to.
func (a CaseAction) Target() (CaseStatus, bool) {
	switch a {
	case CaseActionConfirm:
		return CaseStatusConfirmed, true
	case CaseActionRelease:
		return CaseStatusReleased, true
	}
	return "", false
}

// Activity kinds written to a case's log
const (
	ActivityCaseOpened         = "case_opened"
	ActivityDuplicateConfirmed = "duplicate_confirmed"
	ActivityPaymentReleased    = "payment_released"
	ActivityNote               = "note"
)

// Case tracks one flagged proposal line until an analyst confirms the
// duplicate or releases the payment.
type Case struct {
	ID               string        `json:"id"`
	CaseNumber       string        `json:"case_number"`
	Status           CaseStatus    `json:"status"`
	GateStatus       GateStatus    `json:"gate_status"`
	RiskLevel        string        `json:"risk_level"`
	RiskScore        int           `json:"risk_score"`
	Invoice          InvoiceRecord `json:"invoice"`
	MatchedInvoice   InvoiceRecord `json:"matched_invoice"`
	PotentialSavings Amount        `json:"potential_savings"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// CaseNumber builds the human-facing case reference from the case ID.
func CaseNumber(id string, opened time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("CASE-%d-%s", opened.Year(), suffix)
}

// CaseActivity is one entry of a case's audit log.
type CaseActivity struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"case_id"`
	Action    string    `json:"action"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CaseSummary is the dashboard view over all cases.
type CaseSummary struct {
	// TotalSavings sums the amounts of confirmed duplicates.
	TotalSavings Amount `json:"total_savings"`
	// PotentialSavings sums the amounts still under review.
	PotentialSavings   Amount `json:"potential_savings"`
	ActiveCases        int    `json:"active_cases"`
	ConfirmedCases     int    `json:"confirmed_cases"`
	ReleasedCases      int    `json:"released_cases"`
	DuplicatesDetected int    `json:"duplicates_detected"`
}
