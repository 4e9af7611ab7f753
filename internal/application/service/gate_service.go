package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrTurnables/dpps-prototype/internal/application/port"
	"github.com/MrTurnables/dpps-prototype/internal/domain/detection"
	"github.com/MrTurnables/dpps-prototype/internal/domain/entity"
	"github.com/MrTurnables/dpps-prototype/internal/metrics"
)

var (
	// ErrEmptyProposal is returned when a proposal has no lines
	ErrEmptyProposal = errors.New("payment proposal contains no invoices")
	// ErrInvalidConfig wraps detection config validation failures
	ErrInvalidConfig = errors.New("invalid detection config")
)

// LineResult is the gate decision for one proposal line
type LineResult struct {
	Index     int                        `json:"index"`
	Invoice   entity.InvoiceRecord       `json:"invoice"`
	Status    entity.GateStatus          `json:"status"`
	Detection *detection.DetectionResult `json:"detection"`
}

// Summary counts proposal lines by disposition
type Summary struct {
	TotalLines         int `json:"total_lines"`
	ApprovedLines      int `json:"approved_lines"`
	HeldLines          int `json:"held_lines"`
	ReviewLines        int `json:"review_lines"`
	DuplicatesDetected int `json:"duplicates_detected"`
}

// DuplicateLine is a flagged line with only the signals that fired
type DuplicateLine struct {
	Index       int                  `json:"index"`
	Invoice     entity.InvoiceRecord `json:"invoice"`
	Status      entity.GateStatus    `json:"status"`
	Score       int                  `json:"score"`
	RiskLevel   detection.RiskLevel  `json:"risk_level"`
	AutoHold    bool                 `json:"auto_hold"`
	Signals     []detection.Signal   `json:"signals"`
	MatchedWith entity.InvoiceRecord `json:"matched_with"`
}

// ValidationReport is the outcome of running a proposal through the gate
type ValidationReport struct {
	Summary
	Config     detection.DetectionConfig `json:"config"`
	Lines      []LineResult              `json:"lines"`
	Duplicates []DuplicateLine           `json:"duplicates"`
}

// Approved returns the invoices cleared for payment
func (r *ValidationReport) Approved() []entity.InvoiceRecord {
	return r.invoicesWithStatus(entity.GateStatusApproved)
}

// Held returns the lines blocked from payment
func (r *ValidationReport) Held() []LineResult {
	return r.linesWithStatus(entity.GateStatusHeld)
}

// Review returns the lines needing a human decision
func (r *ValidationReport) Review() []LineResult {
	return r.linesWithStatus(entity.GateStatusReview)
}

func (r *ValidationReport) linesWithStatus(status entity.GateStatus) []LineResult {
	out := make([]LineResult, 0)
	for _, line := range r.Lines {
		if line.Status == status {
			out = append(out, line)
		}
	}
	return out
}

func (r *ValidationReport) invoicesWithStatus(status entity.GateStatus) []entity.InvoiceRecord {
	out := make([]entity.InvoiceRecord, 0)
	for _, line := range r.linesWithStatus(status) {
		out = append(out, line.Invoice)
	}
	return out
}

// PaymentGateService screens payment proposals for duplicate invoices
type PaymentGateService interface {
	// Validate checks every line against history and against the rest of the proposal
	Validate(ctx context.Context, lines []entity.InvoiceRecord, cfg detection.DetectionConfig) (*ValidationReport, error)
	// Scan runs only the intra-proposal duplicate search
	Scan(lines []entity.InvoiceRecord, cfg detection.DetectionConfig) (map[int][]detection.DetectionResult, error)
	// Compare scores one invoice against one candidate
	Compare(current, candidate entity.InvoiceRecord, cfg detection.DetectionConfig) (detection.DetectionResult, error)
}

type paymentGateServiceImpl struct {
	history port.InvoiceHistory
	logger  Logger
}

// NewPaymentGateService creates a new PaymentGateService. A nil history
// disables the historical lookup.
func NewPaymentGateService(history port.InvoiceHistory, logger Logger) PaymentGateService {
	return &paymentGateServiceImpl{
		history: history,
		logger:  logger,
	}
}

// Validate produces the per-line dispositions for a proposal
func (s *paymentGateServiceImpl) Validate(ctx context.Context, lines []entity.InvoiceRecord, cfg detection.DetectionConfig) (*ValidationReport, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyProposal
	}
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	start := time.Now()
	defer metrics.ObserveValidation(start)

	proposalMatches := detection.DetectDuplicatesInProposal(lines, cfg)

	report := &ValidationReport{
		Config:     cfg,
		Lines:      make([]LineResult, 0, len(lines)),
		Duplicates: make([]DuplicateLine, 0),
	}

	for i, line := range lines {
		candidates, err := s.findCandidates(ctx, line)
		if err != nil {
			s.logger.Error("Failed to load invoice history", "error", err, "line", i, "vendor_id", line.VendorID)
			return nil, fmt.Errorf("load history for line %d: %w", i, err)
		}

		results := make([]detection.DetectionResult, 0, len(candidates)+len(proposalMatches[i]))
		for _, candidate := range candidates {
			results = append(results, detection.DetectDuplicate(line, *candidate, cfg))
		}
		results = append(results, proposalMatches[i]...)

		result := LineResult{Index: i, Invoice: line, Status: entity.GateStatusApproved}
		if best, ok := detection.BestMatch(results); ok {
			result.Detection = &best
			result.Status = disposition(best)
		}

		report.add(result)

		riskLevel := ""
		if result.Detection != nil {
			riskLevel = string(result.Detection.RiskLevel)
		}
		metrics.ObserveLine(string(result.Status), riskLevel)
	}

	s.logger.Info("Payment proposal validated",
		"total", report.TotalLines,
		"approved", report.ApprovedLines,
		"held", report.HeldLines,
		"review", report.ReviewLines,
		"duration", time.Since(start),
	)

	return report, nil
}

// Scan runs the intra-proposal duplicate search
func (s *paymentGateServiceImpl) Scan(lines []entity.InvoiceRecord, cfg detection.DetectionConfig) (map[int][]detection.DetectionResult, error) {
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}
	return detection.DetectDuplicatesInProposal(lines, cfg), nil
}

// Compare scores current against candidate
func (s *paymentGateServiceImpl) Compare(current, candidate entity.InvoiceRecord, cfg detection.DetectionConfig) (detection.DetectionResult, error) {
	if err := checkConfig(cfg); err != nil {
		return detection.DetectionResult{}, err
	}
	return detection.DetectDuplicate(current, candidate, cfg), nil
}

func (s *paymentGateServiceImpl) findCandidates(ctx context.Context, line entity.InvoiceRecord) ([]*entity.InvoiceRecord, error) {
	if s.history == nil || !line.Amount.Valid() {
		return nil, nil
	}
	return s.history.FindCandidates(ctx, line.VendorID, line.Amount)
}

func (r *ValidationReport) add(line LineResult) {
	r.Lines = append(r.Lines, line)
	r.TotalLines++

	switch line.Status {
	case entity.GateStatusHeld:
		r.HeldLines++
	case entity.GateStatusReview:
		r.ReviewLines++
	default:
		r.ApprovedLines++
	}

	if line.Detection == nil {
		return
	}
	r.DuplicatesDetected++
	r.Duplicates = append(r.Duplicates, DuplicateLine{
		Index:       line.Index,
		Invoice:     line.Invoice,
		Status:      line.Status,
		Score:       line.Detection.Score,
		RiskLevel:   line.Detection.RiskLevel,
		AutoHold:    line.Detection.AutoHold,
		Signals:     detection.Triggered(line.Detection.Signals),
		MatchedWith: line.Detection.MatchedInvoice,
	})
}

// disposition maps a best match onto the gate outcome
func disposition(best detection.DetectionResult) entity.GateStatus {
	switch {
	case best.AutoHold:
		return entity.GateStatusHeld
	case best.RiskLevel == detection.RiskHigh || best.RiskLevel == detection.RiskMedium:
		return entity.GateStatusReview
	default:
		return entity.GateStatusApproved
	}
}

func checkConfig(cfg detection.DetectionConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
