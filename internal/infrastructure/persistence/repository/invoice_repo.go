package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrTurnables/dpps-prototype/internal/application/port"
	"github.com/MrTurnables/dpps-prototype/internal/domain/entity"
	"github.com/MrTurnables/dpps-prototype/internal/infrastructure/persistence/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const invoiceColumns = `id, invoice_number, vendor_id, vendor_name, amount_cents,
	invoice_date, legal_entity, currency`

// InvoiceRepository implements port.InvoiceRepository
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) port.InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a released invoice. An empty ID is replaced with a new UUID.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *entity.InvoiceRecord) error {
	if !invoice.Amount.Valid() {
		return fmt.Errorf("failed to create invoice: amount %s is not storable", invoice.Amount)
	}
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}

	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		invoice.ID,
		invoice.InvoiceNumber,
		invoice.VendorID,
		invoice.VendorName,
		invoice.Amount.Cents(),
		invoice.InvoiceDate.String(),
		invoice.LegalEntity,
		invoice.Currency,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice", zap.String("invoice_number", invoice.InvoiceNumber), zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	return nil
}

// GetByID retrieves an invoice by ID
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*entity.InvoiceRecord, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`

	invoice, err := scanInvoice(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get invoice by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return invoice, nil
}

// FindCandidates returns released invoices from the vendor with the exact amount
func (r *InvoiceRepository) FindCandidates(ctx context.Context, vendorID string, amount entity.Amount) ([]*entity.InvoiceRecord, error) {
	if !amount.Valid() {
		return nil, nil
	}

	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE vendor_id = ? AND amount_cents = ?
		ORDER BY created_at ASC, id ASC
	`

	invoices, err := r.queryInvoices(ctx, query, vendorID, amount.Cents())
	if err != nil {
		r.logger.Error("Failed to find candidate invoices",
			zap.String("vendor_id", vendorID),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}
	return invoices, nil
}

// ListByVendor lists the newest invoices for a vendor, or for everyone when vendorID is empty
func (r *InvoiceRepository) ListByVendor(ctx context.Context, vendorID string, limit int) ([]*entity.InvoiceRecord, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE (? = '' OR vendor_id = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	invoices, err := r.queryInvoices(ctx, query, vendorID, vendorID, limit)
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.String("vendor_id", vendorID), zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (r *InvoiceRepository) queryInvoices(ctx context.Context, query string, args ...interface{}) ([]*entity.InvoiceRecord, error) {
	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]*entity.InvoiceRecord, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*entity.InvoiceRecord, error) {
	var invoice entity.InvoiceRecord
	var amountCents int64
	var invoiceDate string

	err := row.Scan(
		&invoice.ID,
		&invoice.InvoiceNumber,
		&invoice.VendorID,
		&invoice.VendorName,
		&amountCents,
		&invoiceDate,
		&invoice.LegalEntity,
		&invoice.Currency,
	)
	if err != nil {
		return nil, err
	}

	invoice.Amount = entity.NewAmount(amountCents)
	invoice.InvoiceDate = entity.ParseInvoiceDate(invoiceDate)
	return &invoice, nil
}

var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
