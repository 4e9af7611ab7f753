package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrTurnables/dpps-prototype/internal/application/port"
	"github.com/MrTurnables/dpps-prototype/internal/domain/detection"
	"github.com/MrTurnables/dpps-prototype/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// ConfigRepository implements port.ConfigRepository
type ConfigRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewConfigRepository creates a new detection config repository
func NewConfigRepository(db *sql.DB, logger *zap.Logger) port.ConfigRepository {
	return &ConfigRepository{
		db:     db,
		logger: logger,
	}
}

// Get loads a saved config. Returns nil, nil when none exists.
func (r *ConfigRepository) Get(ctx context.Context, id string) (*detection.DetectionConfig, error) {
	query := `
		SELECT critical_threshold, high_threshold, medium_threshold,
			invoice_pattern_trigger, date_proximity_days, fuzzy_amount_tolerance,
			legal_entity_scope
		FROM detection_config
		WHERE id = ?
	`

	var cfg detection.DetectionConfig
	var scope string
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&cfg.CriticalThreshold,
		&cfg.HighThreshold,
		&cfg.MediumThreshold,
		&cfg.InvoicePatternTrigger,
		&cfg.DateProximityDays,
		&cfg.FuzzyAmountTolerance,
		&scope,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get detection config", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get detection config: %w", err)
	}

	cfg.LegalEntityScope = detection.LegalEntityScope(scope)
	return &cfg, nil
}

// Save inserts or replaces the config stored under id
func (r *ConfigRepository) Save(ctx context.Context, id string, cfg detection.DetectionConfig) error {
	query := `
		INSERT INTO detection_config (
			id, critical_threshold, high_threshold, medium_threshold,
			invoice_pattern_trigger, date_proximity_days, fuzzy_amount_tolerance,
			legal_entity_scope, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			critical_threshold = excluded.critical_threshold,
			high_threshold = excluded.high_threshold,
			medium_threshold = excluded.medium_threshold,
			invoice_pattern_trigger = excluded.invoice_pattern_trigger,
			date_proximity_days = excluded.date_proximity_days,
			fuzzy_amount_tolerance = excluded.fuzzy_amount_tolerance,
			legal_entity_scope = excluded.legal_entity_scope,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		id,
		cfg.CriticalThreshold,
		cfg.HighThreshold,
		cfg.MediumThreshold,
		cfg.InvoicePatternTrigger,
		cfg.DateProximityDays,
		cfg.FuzzyAmountTolerance,
		string(cfg.LegalEntityScope),
	)
	if err != nil {
		r.logger.Error("Failed to save detection config", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to save detection config: %w", err)
	}

	return nil
}

var _ port.ConfigRepository = (*ConfigRepository)(nil)
