package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrTurnables/dpps-prototype/internal/application/port"
	"github.com/MrTurnables/dpps-prototype/internal/domain/entity"
	"github.com/MrTurnables/dpps-prototype/internal/infrastructure/persistence/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const caseColumns = `id, case_number, status, gate_status, risk_level, risk_score,
	invoice, matched_invoice, potential_savings_cents, created_at, updated_at`

// CaseRepository implements port.CaseRepository
type CaseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *sql.DB, logger *zap.Logger) port.CaseRepository {
	return &CaseRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new case
func (r *CaseRepository) Create(ctx context.Context, c *entity.Case) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	if c.CaseNumber == "" {
		c.CaseNumber = entity.CaseNumber(c.ID, c.CreatedAt)
	}
	if c.Status == "" {
		c.Status = entity.CaseStatusOpen
	}

	invoice, err := json.Marshal(c.Invoice)
	if err != nil {
		return fmt.Errorf("failed to encode case invoice: %w", err)
	}
	matched, err := json.Marshal(c.MatchedInvoice)
	if err != nil {
		return fmt.Errorf("failed to encode matched invoice: %w", err)
	}

	var savings sql.NullInt64
	if c.PotentialSavings.Valid() {
		savings = sql.NullInt64{Int64: c.PotentialSavings.Cents(), Valid: true}
	}

	query := `
		INSERT INTO cases (` + caseColumns + `, vendor_id, invoice_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		c.ID,
		c.CaseNumber,
		string(c.Status),
		string(c.GateStatus),
		c.RiskLevel,
		c.RiskScore,
		string(invoice),
		string(matched),
		savings,
		c.CreatedAt.UTC(),
		c.UpdatedAt.UTC(),
		c.Invoice.VendorID,
		c.Invoice.InvoiceNumber,
	)
	if err != nil {
		r.logger.Error("Failed to create case", zap.String("case_number", c.CaseNumber), zap.Error(err))
		return fmt.Errorf("failed to create case: %w", err)
	}

	return nil
}

// GetByID retrieves a case by ID
func (r *CaseRepository) GetByID(ctx context.Context, id string) (*entity.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = ?`

	c, err := scanCase(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get case by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return c, nil
}

// List returns the newest cases. An empty status lists every case.
func (r *CaseRepository) List(ctx context.Context, status entity.CaseStatus, limit int) ([]*entity.Case, error) {
	query := `
		SELECT ` + caseColumns + `
		FROM cases
		WHERE (? = '' OR status = ?)
		ORDER BY created_at DESC, case_number DESC
		LIMIT ?
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, string(status), string(status), limit)
	if err != nil {
		r.logger.Error("Failed to list cases", zap.String("status", string(status)), zap.Error(err))
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	cases := make([]*entity.Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, nil
}

// UpdateStatus moves a case from one state to another in a single statement
func (r *CaseRepository) UpdateStatus(ctx context.Context, id string, from, to entity.CaseStatus) (bool, error) {
	query := `UPDATE cases SET status = ?, updated_at = ? WHERE id = ? AND status = ?`

	res, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, string(to), time.Now().UTC(), id, string(from))
	if err != nil {
		r.logger.Error("Failed to update case status",
			zap.String("id", id),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(err))
		return false, fmt.Errorf("failed to update case status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update case status: %w", err)
	}
	return n == 1, nil
}

// AddActivity appends an entry to a case's log
func (r *CaseRepository) AddActivity(ctx context.Context, activity *entity.CaseActivity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO case_activities (id, case_id, action, notes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		activity.ID,
		activity.CaseID,
		activity.Action,
		activity.Notes,
		activity.CreatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to add case activity",
			zap.String("case_id", activity.CaseID),
			zap.String("action", activity.Action),
			zap.Error(err))
		return fmt.Errorf("failed to add case activity: %w", err)
	}
	return nil
}

// ListActivities returns a case's log, oldest first
func (r *CaseRepository) ListActivities(ctx context.Context, caseID string) ([]*entity.CaseActivity, error) {
	query := `
		SELECT id, case_id, action, notes, created_at
		FROM case_activities
		WHERE case_id = ?
		ORDER BY created_at ASC, rowid ASC
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, caseID)
	if err != nil {
		r.logger.Error("Failed to list case activities", zap.String("case_id", caseID), zap.Error(err))
		return nil, fmt.Errorf("failed to list case activities: %w", err)
	}
	defer rows.Close()

	activities := make([]*entity.CaseActivity, 0)
	for rows.Next() {
		var a entity.CaseActivity
		if err := rows.Scan(&a.ID, &a.CaseID, &a.Action, &a.Notes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan case activity: %w", err)
		}
		activities = append(activities, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list case activities: %w", err)
	}
	return activities, nil
}

// Summary aggregates case counts and savings for the dashboard
func (r *CaseRepository) Summary(ctx context.Context) (*entity.CaseSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'confirmed' THEN potential_savings_cents END), 0),
			COALESCE(SUM(CASE WHEN status = 'open' THEN potential_savings_cents END), 0),
			COUNT(CASE WHEN status = 'open' THEN 1 END),
			COUNT(CASE WHEN status = 'confirmed' THEN 1 END),
			COUNT(CASE WHEN status = 'released' THEN 1 END),
			COUNT(*)
		FROM cases
	`

	var totalCents, potentialCents int64
	var summary entity.CaseSummary
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query).Scan(
		&totalCents,
		&potentialCents,
		&summary.ActiveCases,
		&summary.ConfirmedCases,
		&summary.ReleasedCases,
		&summary.DuplicatesDetected,
	)
	if err != nil {
		r.logger.Error("Failed to summarize cases", zap.Error(err))
		return nil, fmt.Errorf("failed to summarize cases: %w", err)
	}

	summary.TotalSavings = entity.NewAmount(totalCents)
	summary.PotentialSavings = entity.NewAmount(potentialCents)
	return &summary, nil
}

func scanCase(row rowScanner) (*entity.Case, error) {
	var c entity.Case
	var status, gateStatus, invoice, matched string
	var savings sql.NullInt64

	err := row.Scan(
		&c.ID,
		&c.CaseNumber,
		&status,
		&gateStatus,
		&c.RiskLevel,
		&c.RiskScore,
		&invoice,
		&matched,
		&savings,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(invoice), &c.Invoice); err != nil {
		return nil, fmt.Errorf("failed to decode case invoice: %w", err)
	}
	if err := json.Unmarshal([]byte(matched), &c.MatchedInvoice); err != nil {
		return nil, fmt.Errorf("failed to decode matched invoice: %w", err)
	}

	c.Status = entity.CaseStatus(status)
	c.GateStatus = entity.GateStatus(gateStatus)
	if savings.Valid {
		c.PotentialSavings = entity.NewAmount(savings.Int64)
	}
	return &c, nil
}

var _ port.CaseRepository = (*CaseRepository)(nil)
