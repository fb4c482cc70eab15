package repository

import (
	"context"
	"time"

	"schedule-compiler/core/cache"
	"schedule-compiler/core/logger"
	"schedule-compiler/modules/planner/entity"
)

const (
	preferenceKeyPrefix = "planner:prefs:"
	calendarKeyPrefix   = "planner:calendar:"
)

// CachedDataSource caches the per-user lookups that every run repeats.
// Cache errors fall through to the wrapped source.
type CachedDataSource struct {
	DataSourceInterface
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedDataSource(source DataSourceInterface, c cache.Cache, ttl time.Duration) *CachedDataSource {
	return &CachedDataSource{DataSourceInterface: source, cache: c, ttl: ttl}
}

func (c *CachedDataSource) GetUserPreferences(ctx context.Context, userID string) (*entity.UserPreference, error) {
	key := preferenceKeyPrefix + userID

	var cached entity.UserPreference
	hit, err := c.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warn("CachedDataSource:GetUserPreferences:CacheRead", "userId", userID, "error", err)
	}
	if hit {
		return &cached, nil
	}

	pref, err := c.DataSourceInterface.GetUserPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetJSON(ctx, key, pref, c.ttl); err != nil {
		logger.Warn("CachedDataSource:GetUserPreferences:CacheWrite", "userId", userID, "error", err)
	}
	return pref, nil
}

func (c *CachedDataSource) GetGlobalCalendar(ctx context.Context, userID string) (*entity.Calendar, error) {
	key := calendarKeyPrefix + userID

	var cached entity.Calendar
	hit, err := c.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warn("CachedDataSource:GetGlobalCalendar:CacheRead", "userId", userID, "error", err)
	}
	if hit {
		return &cached, nil
	}

	cal, err := c.DataSourceInterface.GetGlobalCalendar(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetJSON(ctx, key, cal, c.ttl); err != nil {
		logger.Warn("CachedDataSource:GetGlobalCalendar:CacheWrite", "userId", userID, "error", err)
	}
	return cal, nil
}
