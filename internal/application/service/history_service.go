package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrTurnables/dpps-prototype/internal/application/port"
	"github.com/MrTurnables/dpps-prototype/internal/domain/entity"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// ErrInvalidInvoice is returned when a released invoice is missing required fields
var ErrInvalidInvoice = errors.New("invalid invoice")

// HistoryService records released invoices so later proposals are checked against them
type HistoryService interface {
	Record(ctx context.Context, invoice *entity.InvoiceRecord) error
	List(ctx context.Context, vendorID string, limit int) ([]*entity.InvoiceRecord, error)
}

type historyServiceImpl struct {
	repo   port.InvoiceRepository
	logger Logger
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(repo port.InvoiceRepository, logger Logger) HistoryService {
	return &historyServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

// Record stores a released invoice
func (s *historyServiceImpl) Record(ctx context.Context, invoice *entity.InvoiceRecord) error {
	if err := validateRelease(invoice); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, invoice); err != nil {
		s.logger.Error("Failed to record invoice", "error", err, "invoice_number", invoice.InvoiceNumber)
		return fmt.Errorf("record invoice: %w", err)
	}

	s.logger.Info("Invoice recorded",
		"id", invoice.ID,
		"invoice_number", invoice.InvoiceNumber,
		"vendor_id", invoice.VendorID,
	)
	return nil
}

// List returns recent history, newest first
func (s *historyServiceImpl) List(ctx context.Context, vendorID string, limit int) ([]*entity.InvoiceRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	invoices, err := s.repo.ListByVendor(ctx, strings.TrimSpace(vendorID), limit)
	if err != nil {
		s.logger.Error("Failed to list invoices", "error", err, "vendor_id", vendorID)
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

func validateRelease(invoice *entity.InvoiceRecord) error {
	switch {
	case invoice == nil:
		return fmt.Errorf("%w: missing invoice", ErrInvalidInvoice)
	case strings.TrimSpace(invoice.InvoiceNumber) == "":
		return fmt.Errorf("%w: invoice_number is required", ErrInvalidInvoice)
	case strings.TrimSpace(invoice.VendorID) == "":
		return fmt.Errorf("%w: vendor_id is required", ErrInvalidInvoice)
	case !invoice.Amount.Valid():
		return fmt.Errorf("%w: amount must be a number", ErrInvalidInvoice)
	case !invoice.InvoiceDate.Valid():
		return fmt.Errorf("%w: invoice_date must be a date", ErrInvalidInvoice)
	}
	return nil
}
