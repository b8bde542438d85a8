package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

const defaultFeedCacheTTL = 30 * time.Second

// FeedService fronts the remote availability feed with a short-lived cache.
// Remote failures surface as domain.ErrRemoteServiceUnavailable and are
// never retried.
type FeedService struct {
	feed  ports.AvailabilityFeed
	cache ports.FeedCache
	ttl   time.Duration
	log   zerolog.Logger
}

var _ ports.FeedService = (*FeedService)(nil)

// NewFeedService returns a FeedService. cache may be nil.
func NewFeedService(feed ports.AvailabilityFeed, cache ports.FeedCache, ttl time.Duration, log zerolog.Logger) *FeedService {
	if ttl <= 0 {
		ttl = defaultFeedCacheTTL
	}
	return &FeedService{feed: feed, cache: cache, ttl: ttl, log: log}
}

func (s *FeedService) Available(ctx context.Context) (json.RawMessage, error) {
	if s.cache != nil {
		payload, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("feed cache read failed, fetching remote")
		} else if ok {
			return payload, nil
		}
	}

	payload, err := s.feed.FetchAvailable(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("available appointments feed unavailable")
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, payload, s.ttl); err != nil {
			s.log.Warn().Err(err).Msg("feed cache write failed")
		}
	}
	return payload, nil
}

func (s *FeedService) AdjustCapacity(ctx context.Context, adj ports.CapacityAdjustment) (json.RawMessage, error) {
	payload, err := s.feed.AdjustCapacity(ctx, adj)
	if err != nil {
		s.log.Warn().Err(err).Int("clinic_code", adj.ClinicCode).Msg("capacity adjustment failed")
		return nil, err
	}
	s.log.Info().Int("clinic_code", adj.ClinicCode).Int("reserved", adj.ReservedAppointments).Msg("capacity adjusted")
	return payload, nil
}
