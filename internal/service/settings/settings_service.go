// internal/service/settings/settings_service.go
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"takataka-service/internal/domain/settings"
	xerrors "takataka-service/internal/pkg/errors"
	"takataka-service/internal/repository/postgres"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	cachePrefix = "settings:"
	cacheTTL    = 5 * time.Minute
)

// Service reads and writes company settings with a Redis read-through
// cache in front of Postgres. Values are stored as strings; typed getters
// fall back to a default when the key is missing or malformed, so billing
// never stalls on a bad setting row.
type Service struct {
	repo   *postgres.SettingsRepository
	cache  *redis.Client
	logger *zap.Logger
}

func NewService(repo *postgres.SettingsRepository, cache *redis.Client, logger *zap.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Get returns the raw string value for a key.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	if s.cache != nil {
		val, err := s.cache.Get(ctx, cachePrefix+key).Result()
		if err == nil {
			return val, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("settings cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cachePrefix+key, setting.Value, cacheTTL).Err(); err != nil {
			s.logger.Warn("settings cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return setting.Value, nil
}

// Decimal returns the key parsed as a decimal, or fallback when the key
// is missing or unparseable.
func (s *Service) Decimal(ctx context.Context, key string, fallback decimal.Decimal) decimal.Decimal {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if !xerrors.Is(err, xerrors.ErrNotFound) {
			s.logger.Warn("failed to read setting", zap.String("key", key), zap.Error(err))
		}
		return fallback
	}

	val, err := decimal.NewFromString(raw)
	if err != nil {
		s.logger.Warn("setting is not a valid decimal",
			zap.String("key", key), zap.String("value", raw))
		return fallback
	}
	return val
}

// Int returns the key parsed as an integer, or fallback.
func (s *Service) Int(ctx context.Context, key string, fallback int) int {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if !xerrors.Is(err, xerrors.ErrNotFound) {
			s.logger.Warn("failed to read setting", zap.String("key", key), zap.Error(err))
		}
		return fallback
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		s.logger.Warn("setting is not a valid integer",
			zap.String("key", key), zap.String("value", raw))
		return fallback
	}
	return val
}

// Upsert creates or replaces a setting and drops the cached copy.
func (s *Service) Upsert(ctx context.Context, key string, req *settings.UpsertSettingRequest, adminID int64) (*settings.Setting, error) {
	if err := validateValue(key, req.Value); err != nil {
		return nil, err
	}

	setting := &settings.Setting{
		Key:       key,
		Value:     req.Value,
		UpdatedBy: sql.NullInt64{Int64: adminID, Valid: true},
	}
	if req.Description != "" {
		setting.Description = sql.NullString{String: req.Description, Valid: true}
	}

	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, cachePrefix+key).Err(); err != nil {
			s.logger.Warn("settings cache invalidation failed", zap.String("key", key), zap.Error(err))
		}
	}

	s.logger.Info("setting updated",
		zap.String("key", key),
		zap.Int64("admin_id", adminID),
	)
	return setting, nil
}

// List returns all settings.
func (s *Service) List(ctx context.Context) ([]settings.Setting, error) {
	return s.repo.List(ctx)
}

// validateValue rejects values that would later break the typed getters
// for the well-known numeric keys.
func validateValue(key, value string) error {
	switch key {
	case settings.KeyRegistrationFee, settings.KeyTaxRate:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return xerrors.Validation("value", fmt.Sprintf("%s must be a decimal number", key))
		}
		if d.IsNegative() {
			return xerrors.Validation("value", fmt.Sprintf("%s cannot be negative", key))
		}
	case settings.KeyInvoiceDueDays:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return xerrors.Validation("value", "invoice_due_days must be a non-negative integer")
		}
	}
	return nil
}
