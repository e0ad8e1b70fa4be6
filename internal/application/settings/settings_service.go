package settings

import (
	"context"
	"sort"
	"time"

	"github.com/autocare/platform/internal/domain/settings"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SettingResponse represents a setting in API responses
type SettingResponse struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateSettingsRequest replaces the given keys. Other keys are left alone.
type UpdateSettingsRequest struct {
	Values map[string]string `json:"values" binding:"required,min=1,max=50"`
}

// SettingsService manages partner preferences. The agent uses it for the
// device-local settings table.
type SettingsService struct {
	repo   settings.Repository
	logger *zap.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(repo settings.Repository, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, logger: logger}
}

// List returns every setting sorted by key
func (s *SettingsService) List(ctx context.Context, partnerID uuid.UUID) ([]SettingResponse, error) {
	items, err := s.repo.FindAll(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	out := make([]SettingResponse, len(items))
	for i, it := range items {
		out[i] = SettingResponse{Key: it.Key, Value: it.Value, UpdatedAt: it.UpdatedAt}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Values returns the settings as a key/value map
func (s *SettingsService) Values(ctx context.Context, partnerID uuid.UUID) (map[string]string, error) {
	items, err := s.repo.FindAll(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(items))
	for _, it := range items {
		values[it.Key] = it.Value
	}
	return values, nil
}

// Location returns the partner's business time zone. fallback is used when
// business_timezone is unset or the settings cannot be read.
func (s *SettingsService) Location(ctx context.Context, partnerID uuid.UUID, fallback *time.Location) *time.Location {
	values, err := s.Values(ctx, partnerID)
	if err != nil {
		s.logger.Warn("Failed to read business_timezone, using fallback",
			zap.String("partner_id", partnerID.String()),
			zap.String("fallback", fallback.String()),
			zap.Error(err))
		return fallback
	}
	return settings.LocationOf(values, fallback)
}

// LowStockAlerts reports whether the partner wants stock.low broadcasts.
// A read error keeps alerts on.
func (s *SettingsService) LowStockAlerts(ctx context.Context, partnerID uuid.UUID) bool {
	values, err := s.Values(ctx, partnerID)
	if err != nil {
		s.logger.Warn("Failed to read low_stock_alerts", zap.String("partner_id", partnerID.String()), zap.Error(err))
		return true
	}
	return settings.LowStockAlertsOf(values)
}

// Get returns one setting
func (s *SettingsService) Get(ctx context.Context, partnerID uuid.UUID, key string) (*SettingResponse, error) {
	it, err := s.repo.FindByKey(ctx, partnerID, key)
	if err != nil {
		return nil, err
	}
	return &SettingResponse{Key: it.Key, Value: it.Value, UpdatedAt: it.UpdatedAt}, nil
}

// Update validates every pair first, then writes them in one transaction
func (s *SettingsService) Update(ctx context.Context, partnerID uuid.UUID, req UpdateSettingsRequest) ([]SettingResponse, error) {
	if len(req.Values) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one setting is required")
	}
	items := make([]*settings.Setting, 0, len(req.Values))
	for k, v := range req.Values {
		it, err := settings.NewSetting(partnerID, k, v)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := s.repo.Upsert(ctx, items...); err != nil {
		return nil, err
	}
	s.logger.Info("Settings updated",
		zap.String("partner_id", partnerID.String()),
		zap.Int("count", len(items)),
	)
	return s.List(ctx, partnerID)
}

// Delete removes a setting
func (s *SettingsService) Delete(ctx context.Context, partnerID uuid.UUID, key string) error {
	return s.repo.Delete(ctx, partnerID, key)
}
