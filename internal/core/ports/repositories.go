package ports

import (
	"context"

	"github.com/safeyatra/geomark/internal/core/domain"
)

// FenceRepository persists fenced areas.
//
// Spatial methods (ActiveInBounds, ExistsNear) are candidate-reduction
// steps only: callers must apply exact great-circle math on the results.
// Repositories return domain.ErrNotFound when an id does not resolve.
type FenceRepository interface {
	Insert(ctx context.Context, f *domain.GeoFence) error
	GetByID(ctx context.Context, id string) (*domain.GeoFence, error)
	// Update rewrites the full record and re-syncs the stored point
	// geometry from Latitude/Longitude in the same statement.
	Update(ctx context.Context, f *domain.GeoFence) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]domain.GeoFence, error)
	// ListByOwner returns the owner's fences newest first; filters are
	// conjunctive.
	ListByOwner(ctx context.Context, ownerID string, filter domain.FenceFilter) ([]domain.GeoFence, error)
	// ActiveInBounds returns active fences whose center falls inside the
	// box. ownerID narrows the scan when non-empty.
	ActiveInBounds(ctx context.Context, b domain.Bounds, ownerID string) ([]domain.GeoFence, error)
	// ExistsNear reports whether any fence center lies within
	// ±toleranceDegrees of the point in both axes.
	ExistsNear(ctx context.Context, lat, lon, toleranceDegrees float64) (bool, error)
	Stats(ctx context.Context, ownerID string) (*domain.FenceStats, error)
	IncrementAlert(ctx context.Context, id string) error
	TouchLastAccessed(ctx context.Context, id string) error
}

// AuthorityRepository persists authority registrations.
type AuthorityRepository interface {
	Insert(ctx context.Context, a *domain.AuthorityAccount) error
	GetByID(ctx context.Context, id string) (*domain.AuthorityAccount, error)
	List(ctx context.Context, status domain.AuthorityStatus) ([]domain.AuthorityAccount, error)
	UpdateStatus(ctx context.Context, id string, status domain.AuthorityStatus) error
}

// KYCRepository persists tourist KYC applications.
type KYCRepository interface {
	Insert(ctx context.Context, app *domain.KYCApplication) error
	GetByID(ctx context.Context, id string) (*domain.KYCApplication, error)
	List(ctx context.Context, status domain.KYCStatus) ([]domain.KYCApplication, error)
	UpdateStatus(ctx context.Context, id string, status domain.KYCStatus) error
}
