package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrTurnables/dpps-prototype/internal/application/port"
	"github.com/MrTurnables/dpps-prototype/internal/domain/entity"
	"github.com/MrTurnables/dpps-prototype/internal/metrics"
)

const (
	defaultCaseLimit = 100
	maxCaseLimit     = 1000
)

var (
	// ErrCaseNotFound is returned when no case has the requested ID
	ErrCaseNotFound = errors.New("case not found")
	// ErrCaseClosed is returned when acting on a case that is no longer open
	ErrCaseClosed = errors.New("case is already closed")
	// ErrInvalidCaseAction is returned for unknown actions, unknown status
	// filters and empty notes
	ErrInvalidCaseAction = errors.New("invalid case action")
)

// CaseDetail is a case with its activity log
type CaseDetail struct {
	*entity.Case
	Activities []*entity.CaseActivity `json:"activities"`
}

// CaseService runs the analyst workflow over flagged proposal lines
type CaseService interface {
	// Open creates an open case for every held or review line of a report
	Open(ctx context.Context, rep *ValidationReport) ([]*entity.Case, error)
	List(ctx context.Context, status string, limit int) ([]*entity.Case, error)
	Get(ctx context.Context, id string) (*CaseDetail, error)
	AddNote(ctx context.Context, id, notes string) (*entity.CaseActivity, error)
	// Act confirms the duplicate or releases the payment of an open case.
	// Releasing records the invoice in history.
	Act(ctx context.Context, id string, action entity.CaseAction, notes string) (*CaseDetail, error)
	Summary(ctx context.Context) (*entity.CaseSummary, error)
}

type caseServiceImpl struct {
	cases     port.CaseRepository
	invoices  port.InvoiceRepository
	txManager port.TransactionManager
	logger    Logger
}

// NewCaseService creates a new CaseService. A nil txManager runs every
// operation without a transaction.
func NewCaseService(cases port.CaseRepository, invoices port.InvoiceRepository, txManager port.TransactionManager, logger Logger) CaseService {
	return &caseServiceImpl{
		cases:     cases,
		invoices:  invoices,
		txManager: txManager,
		logger:    logger,
	}
}

// Open creates the cases of one validated proposal in a single transaction
func (s *caseServiceImpl) Open(ctx context.Context, rep *ValidationReport) ([]*entity.Case, error) {
	opened := make([]*entity.Case, 0)
	if rep == nil {
		return opened, nil
	}

	err := s.inTx(ctx, func(ctx context.Context) error {
		for _, line := range rep.Lines {
			if line.Detection == nil || line.Status == entity.GateStatusApproved {
				continue
			}

			c := &entity.Case{
				Status:           entity.CaseStatusOpen,
				GateStatus:       line.Status,
				RiskLevel:        string(line.Detection.RiskLevel),
				RiskScore:        line.Detection.Score,
				Invoice:          line.Invoice,
				MatchedInvoice:   line.Detection.MatchedInvoice,
				PotentialSavings: line.Invoice.Amount,
			}
			if err := s.cases.Create(ctx, c); err != nil {
				return err
			}

			notes := fmt.Sprintf("line %d %s: score %d against invoice %s",
				line.Index, line.Status, line.Detection.Score, line.Detection.MatchedInvoice.InvoiceNumber)
			if err := s.cases.AddActivity(ctx, &entity.CaseActivity{
				CaseID: c.ID,
				Action: entity.ActivityCaseOpened,
				Notes:  notes,
			}); err != nil {
				return err
			}
			opened = append(opened, c)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to open cases", "error", err)
		return nil, fmt.Errorf("open cases: %w", err)
	}

	for range opened {
		metrics.ObserveCase(string(entity.CaseStatusOpen))
	}
	if len(opened) > 0 {
		s.logger.Info("Cases opened", "count", len(opened))
	}
	return opened, nil
}

// List returns the newest cases, optionally filtered by status
func (s *caseServiceImpl) List(ctx context.Context, status string, limit int) ([]*entity.Case, error) {
	filter := entity.CaseStatus(strings.TrimSpace(status))
	if filter != "" && !filter.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidCaseAction, status)
	}
	if limit <= 0 {
		limit = defaultCaseLimit
	}
	limit = min(limit, maxCaseLimit)

	cases, err := s.cases.List(ctx, filter, limit)
	if err != nil {
		s.logger.Error("Failed to list cases", "error", err, "status", status)
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return cases, nil
}

// Get returns a case with its activity log
func (s *caseServiceImpl) Get(ctx context.Context, id string) (*CaseDetail, error) {
	var detail *CaseDetail
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		detail, err = s.load(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// AddNote appends an analyst note to any case, open or closed
func (s *caseServiceImpl) AddNote(ctx context.Context, id, notes string) (*entity.CaseActivity, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, fmt.Errorf("%w: notes are required", ErrInvalidCaseAction)
	}

	activity := &entity.CaseActivity{CaseID: id, Action: entity.ActivityNote, Notes: notes}
	err := s.inTx(ctx, func(ctx context.Context) error {
		c, err := s.cases.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("load case: %w", err)
		}
		if c == nil {
			return ErrCaseNotFound
		}
		return s.cases.AddActivity(ctx, activity)
	})
	if err != nil {
		if !errors.Is(err, ErrCaseNotFound) {
			s.logger.Error("Failed to add case note", "error", err, "case_id", id)
		}
		return nil, err
	}
	return activity, nil
}

// Act applies an analyst decision to an open case
func (s *caseServiceImpl) Act(ctx context.Context, id string, action entity.CaseAction, notes string) (*CaseDetail, error) {
	target, ok := action.Target()
	if !ok {
		return nil, fmt.Errorf("%w: %q (want confirm or release)", ErrInvalidCaseAction, action)
	}

	var detail *CaseDetail
	err := s.inTx(ctx, func(ctx context.Context) error {
		c, err := s.cases.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("load case: %w", err)
		}
		if c == nil {
			return ErrCaseNotFound
		}

		moved, err := s.cases.UpdateStatus(ctx, id, entity.CaseStatusOpen, target)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("%w: %s is %s", ErrCaseClosed, c.CaseNumber, c.Status)
		}

		kind := entity.ActivityDuplicateConfirmed
		if action == entity.CaseActionRelease {
			kind = entity.ActivityPaymentReleased
			if err := s.release(ctx, c); err != nil {
				return err
			}
		}

		if err := s.cases.AddActivity(ctx, &entity.CaseActivity{
			CaseID: id,
			Action: kind,
			Notes:  strings.TrimSpace(notes),
		}); err != nil {
			return err
		}

		detail, err = s.load(ctx, id)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrCaseNotFound) && !errors.Is(err, ErrCaseClosed) {
			s.logger.Error("Failed to apply case action", "error", err, "case_id", id, "action", action)
		}
		return nil, err
	}

	metrics.ObserveCase(string(target))
	s.logger.Info("Case closed",
		"case_id", id,
		"case_number", detail.CaseNumber,
		"action", action,
		"status", detail.Status,
	)
	return detail, nil
}

// Summary returns the dashboard metrics
func (s *caseServiceImpl) Summary(ctx context.Context) (*entity.CaseSummary, error) {
	summary, err := s.cases.Summary(ctx)
	if err != nil {
		s.logger.Error("Failed to summarize cases", "error", err)
		return nil, fmt.Errorf("summarize cases: %w", err)
	}
	return summary, nil
}

// release records the case's invoice as paid so later proposals are checked
// against it. Invoices that could not be stored are skipped and noted.
func (s *caseServiceImpl) release(ctx context.Context, c *entity.Case) error {
	invoice := c.Invoice
	if err := validateRelease(&invoice); err != nil {
		return s.cases.AddActivity(ctx, &entity.CaseActivity{
			CaseID: c.ID,
			Action: entity.ActivityNote,
			Notes:  "invoice not recorded in history: " + err.Error(),
		})
	}
	if err := s.invoices.Create(ctx, &invoice); err != nil {
		return fmt.Errorf("record released invoice: %w", err)
	}
	return nil
}

func (s *caseServiceImpl) load(ctx context.Context, id string) (*CaseDetail, error) {
	c, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load case: %w", err)
	}
	if c == nil {
		return nil, ErrCaseNotFound
	}
	activities, err := s.cases.ListActivities(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load case activities: %w", err)
	}
	return &CaseDetail{Case: c, Activities: activities}, nil
}

func (s *caseServiceImpl) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txManager == nil {
		return fn(ctx)
	}
	return s.txManager.WithTransaction(ctx, fn)
}
