package service

import (
	"context"
	"fmt"

	"github.com/MrTurnables/dpps-prototype/internal/application/port"
	"github.com/MrTurnables/dpps-prototype/internal/domain/detection"
	"github.com/MrTurnables/dpps-prototype/internal/domain/entity"
)

// ConfigService manages the persisted detection configuration
type ConfigService interface {
	// Get returns the saved config, or the defaults when none is saved
	Get(ctx context.Context) (detection.DetectionConfig, error)
	// Effective overlays a per-request patch on the saved config without persisting it
	Effective(ctx context.Context, patch *detection.ConfigPatch) (detection.DetectionConfig, error)
	Update(ctx context.Context, patch *detection.ConfigPatch) (detection.DetectionConfig, error)
	Reset(ctx context.Context) (detection.DetectionConfig, error)
}

type configServiceImpl struct {
	repo     port.ConfigRepository
	defaults detection.DetectionConfig
	logger   Logger
}

// NewConfigService creates a new ConfigService. defaults is what Get and
// Reset fall back to.
func NewConfigService(repo port.ConfigRepository, defaults detection.DetectionConfig, logger Logger) ConfigService {
	return &configServiceImpl{
		repo:     repo,
		defaults: defaults,
		logger:   logger,
	}
}

// Get loads the current config
func (s *configServiceImpl) Get(ctx context.Context) (detection.DetectionConfig, error) {
	cfg, err := s.repo.Get(ctx, entity.DefaultConfigID)
	if err != nil {
		s.logger.Error("Failed to load detection config", "error", err)
		return detection.DetectionConfig{}, fmt.Errorf("get detection config: %w", err)
	}
	if cfg == nil {
		return s.defaults, nil
	}
	return *cfg, nil
}

// Effective resolves the config one request should run with
func (s *configServiceImpl) Effective(ctx context.Context, patch *detection.ConfigPatch) (detection.DetectionConfig, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return detection.DetectionConfig{}, err
	}
	merged := current.Apply(patch)
	if err := checkConfig(merged); err != nil {
		return detection.DetectionConfig{}, err
	}
	return merged, nil
}

// Update merges patch over the current config and saves the result
func (s *configServiceImpl) Update(ctx context.Context, patch *detection.ConfigPatch) (detection.DetectionConfig, error) {
	merged, err := s.Effective(ctx, patch)
	if err != nil {
		return detection.DetectionConfig{}, err
	}

	if err := s.repo.Save(ctx, entity.DefaultConfigID, merged); err != nil {
		s.logger.Error("Failed to save detection config", "error", err)
		return detection.DetectionConfig{}, fmt.Errorf("save detection config: %w", err)
	}

	s.logger.Info("Detection config updated",
		"critical_threshold", merged.CriticalThreshold,
		"high_threshold", merged.HighThreshold,
		"medium_threshold", merged.MediumThreshold,
	)
	return merged, nil
}

// Reset saves and returns the defaults
func (s *configServiceImpl) Reset(ctx context.Context) (detection.DetectionConfig, error) {
	if err := s.repo.Save(ctx, entity.DefaultConfigID, s.defaults); err != nil {
		s.logger.Error("Failed to reset detection config", "error", err)
		return detection.DetectionConfig{}, fmt.Errorf("reset detection config: %w", err)
	}

	s.logger.Info("Detection config reset to defaults")
	return s.defaults, nil
}
