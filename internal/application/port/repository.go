package port

import (
	"context"

	"github.com/MrTurnables/dpps-prototype/internal/domain/detection"
	"github.com/MrTurnables/dpps-prototype/internal/domain/entity"
)

// InvoiceHistory supplies previously released invoices that may duplicate a
// proposal line.
type InvoiceHistory interface {
	// FindCandidates returns historical invoices for the vendor with the
	// same amount. An invalid amount yields no candidates.
	FindCandidates(ctx context.Context, vendorID string, amount entity.Amount) ([]*entity.InvoiceRecord, error)
}

// InvoiceRepository defines persistence operations for historical invoices
type InvoiceRepository interface {
	InvoiceHistory

	// Create stores a released invoice and assigns its ID
	Create(ctx context.Context, invoice *entity.InvoiceRecord) error

	// GetByID returns nil, nil when no invoice has the ID
	GetByID(ctx context.Context, id string) (*entity.InvoiceRecord, error)

	// ListByVendor lists the most recent invoices of a vendor, or of all
	// vendors when vendorID is empty
	ListByVendor(ctx context.Context, vendorID string, limit int) ([]*entity.InvoiceRecord, error)
}

// ConfigRepository persists the detection configuration
type ConfigRepository interface {
	// Get returns nil, nil when no configuration has been saved
	Get(ctx context.Context, id string) (*detection.DetectionConfig, error)
	Save(ctx context.Context, id string, cfg detection.DetectionConfig) error
}

// CaseRepository persists analyst cases and their activity log
type CaseRepository interface {
	// Create stores a case, assigning ID, case number and timestamps when empty
	Create(ctx context.Context, c *entity.Case) error

	// GetByID returns nil, nil when no case has the ID
	GetByID(ctx context.Context, id string) (*entity.Case, error)

	// List returns the newest cases, optionally only those in status
	List(ctx context.Context, status entity.CaseStatus, limit int) ([]*entity.Case, error)

	// UpdateStatus moves a case from one state to another. It reports false
	// when the case is missing or no longer in the from state.
	UpdateStatus(ctx context.Context, id string, from, to entity.CaseStatus) (bool, error)

	AddActivity(ctx context.Context, activity *entity.CaseActivity) error

	// ListActivities returns a case's log, oldest first
	ListActivities(ctx context.Context, caseID string) ([]*entity.CaseActivity, error)

	Summary(ctx context.Context) (*entity.CaseSummary, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
