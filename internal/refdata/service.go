package refdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/diewo77/go-crm-panel/internal/metrics"
)

// Service answers reference-data lookups. Geography comes from the
// provider, collapsed per list with singleflight and kept in the cache;
// languages and timezones are embedded.
type Service struct {
	provider Provider
	cache    *Cache
	ttl      time.Duration
	group    singleflight.Group
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewService wires a service. provider and cache may be nil.
func NewService(provider Provider, cache *Cache, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, cache: cache, ttl: ttl, logger: logger, metrics: m, now: time.Now}
}

func (s *Service) ListCountries(ctx context.Context) []Place {
	return s.list(ctx, "countries", func(ctx context.Context) ([]Place, error) {
		return s.provider.Countries(ctx)
	})
}

func (s *Service) ListStates(ctx context.Context, countryID int) []Place {
	if countryID <= 0 {
		return nil
	}
	return s.list(ctx, fmt.Sprintf("states:%d", countryID), func(ctx context.Context) ([]Place, error) {
		return s.provider.States(ctx, countryID)
	})
}

func (s *Service) ListCities(ctx context.Context, countryID, stateID int) []Place {
	if countryID <= 0 || stateID <= 0 {
		return nil
	}
	return s.list(ctx, fmt.Sprintf("cities:%d:%d", countryID, stateID), func(ctx context.Context) ([]Place, error) {
		return s.provider.Cities(ctx, countryID, stateID)
	})
}

func (s *Service) ListLanguages(context.Context) []Language {
	loadStatic()
	if staticErr != nil {
		s.logger.Warn("reference data unavailable", zap.String("list", "languages"), zap.Error(staticErr))
		s.metrics.IncrementRefDataFallback("languages", "empty")
		return nil
	}
	return append([]Language(nil), languages...)
}

// ListTimezones returns the embedded zones with their current offsets.
// Zones unknown to the local tz database are skipped.
func (s *Service) ListTimezones(context.Context) []Timezone {
	loadStatic()
	if staticErr != nil {
		s.logger.Warn("reference data unavailable", zap.String("list", "timezones"), zap.Error(staticErr))
		s.metrics.IncrementRefDataFallback("timezones", "empty")
		return nil
	}
	now := s.now()
	out := make([]Timezone, 0, len(zoneCodes))
	for _, code := range zoneCodes {
		loc, err := time.LoadLocation(code)
		if err != nil {
			continue
		}
		out = append(out, Timezone{Code: code, Label: timezoneLabel(loc, code, now)})
	}
	return out
}

func (s *Service) list(ctx context.Context, key string, fetch func(context.Context) ([]Place, error)) []Place {
	var stale []Place
	if s.cache != nil {
		places, fresh, found, err := s.cache.Get(ctx, key, s.ttl)
		switch {
		case err != nil:
			s.logger.Warn("reference cache read failed", zap.String("list", key), zap.Error(err))
		case found && fresh:
			return places
		case found:
			stale = places
		}
	}

	if s.provider != nil {
		v, err, _ := s.group.Do(key, func() (any, error) {
			return fetch(ctx)
		})
		if err == nil {
			places := v.([]Place)
			if s.cache != nil {
				if err := s.cache.Put(ctx, key, places); err != nil {
					s.logger.Warn("reference cache write failed", zap.String("list", key), zap.Error(err))
				}
			}
			return places
		}
		s.logger.Warn("reference data fetch failed", zap.String("list", key), zap.Error(err))
	}

	if stale != nil {
		s.metrics.IncrementRefDataFallback(listName(key), "cache")
		return stale
	}
	s.metrics.IncrementRefDataFallback(listName(key), "empty")
	return nil
}

func listName(key string) string {
	name, _, _ := strings.Cut(key, ":")
	return name
}
