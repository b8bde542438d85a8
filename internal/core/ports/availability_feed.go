package ports

import (
	"context"
	"encoding/json"
	"time"
)

// CapacityAdjustment is the payload posted to the remote capacity endpoint.
type CapacityAdjustment struct {
	ClinicCode           int `json:"clinic code"`
	ReservedAppointments int `json:"reserved appointments"`
}

// AvailabilityFeed is the remote "available appointments" service.
// Calls are fallible and are not retried.
type AvailabilityFeed interface {
	FetchAvailable(ctx context.Context) (json.RawMessage, error)
	AdjustCapacity(ctx context.Context, adj CapacityAdjustment) (json.RawMessage, error)
}

// FeedCache stores the last successful feed response.
type FeedCache interface {
	Get(ctx context.Context) (json.RawMessage, bool, error)
	Set(ctx context.Context, payload json.RawMessage, ttl time.Duration) error
}

// FeedService exposes the remote feed with caching.
type FeedService interface {
	Available(ctx context.Context) (json.RawMessage, error)
	AdjustCapacity(ctx context.Context, adj CapacityAdjustment) (json.RawMessage, error)
}
