package ports

import (
	"context"

	"github.com/safeyatra/geomark/internal/core/domain"
)

// EventPublisher publishes fence lifecycle events to a message broker so
// the dashboard map and external consumers can follow changes live.
type EventPublisher interface {
	PublishFenceCreated(ctx context.Context, f *domain.GeoFence) error
	PublishFenceUpdated(ctx context.Context, f *domain.GeoFence) error
	PublishFenceDeleted(ctx context.Context, f *domain.GeoFence) error
	PublishFenceAlert(ctx context.Context, f *domain.GeoFence) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// IdentityResolver maps a bearer token to an owner identity. Token
// issuance and verification live in the external auth service.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (ownerID string, err error)
}
