package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/safeyatra/geomark/internal/core/domain"
	"github.com/safeyatra/geomark/internal/core/ports"
	"github.com/safeyatra/geomark/internal/pkg/geospatial"
)

// nearbyVersionKey holds the current generation of cached nearby results.
// Writes rotate it so stale result sets fall out of reach immediately
// instead of lingering for the entry TTL.
const nearbyVersionKey = "geo:nearby:ver"

// FenceService handles fenced-area business logic: validation, the
// duplicate-proximity check, exact spatial queries and aggregation.
// Bounding boxes only reduce candidates; the authoritative filter is
// always the exact great-circle distance computed here.
type FenceService struct {
	fences ports.FenceRepository
	cache  ports.CacheService
	events ports.EventPublisher
	now    func() time.Time
}

// NewFenceService creates a new FenceService. cache and events may be nil.
func NewFenceService(fences ports.FenceRepository, cache ports.CacheService, events ports.EventPublisher) *FenceService {
	return &FenceService{
		fences: fences,
		cache:  cache,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create validates a candidate, rejects near-duplicates and stores the
// fence. The duplicate check is a fixed ±0.001° box around the center, a
// deliberate axis-aligned approximation. It is read-then-write: two
// concurrent creates at the same spot may both pass, which is accepted.
func (s *FenceService) Create(ctx context.Context, ownerID string, in *domain.FenceInput) (*domain.GeoFence, error) {
	if ownerID == "" {
		ownerID = domain.AnonymousOwner
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.fences.ExistsNear(ctx, in.Latitude, in.Longitude, domain.DuplicateToleranceDegrees)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateArea
	}

	now := s.now()
	f := &domain.GeoFence{
		ID:                  uuid.NewString(),
		UserID:              ownerID,
		Latitude:            in.Latitude,
		Longitude:           in.Longitude,
		Radius:              in.Radius,
		Description:         in.Description,
		Status:              in.Status,
		FenceType:           in.FenceType,
		Priority:            in.Priority,
		Tags:                in.Tags,
		AlertTypes:          in.AlertTypes,
		NotificationMethods: in.NotificationMethods,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if f.Description == "" {
		f.Description = domain.DeriveDescription(f.Latitude, f.Longitude)
	}
	if f.Status == "" {
		f.Status = domain.StatusActive
	}
	if f.FenceType == "" {
		f.FenceType = domain.FenceVirtual
	}
	if f.Priority == "" {
		f.Priority = domain.PriorityMedium
	}

	if err := s.fences.Insert(ctx, f); err != nil {
		return nil, fmt.Errorf("insert fence: %w", err)
	}
	f.ComputeDerived()

	s.invalidate(ctx, f)
	if s.events != nil {
		_ = s.events.PublishFenceCreated(ctx, f)
	}

	return f, nil
}

// Get returns a single fence with derived fields populated.
func (s *FenceService) Get(ctx context.Context, id string) (*domain.GeoFence, error) {
	cacheKey := "geo:fence:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var f domain.GeoFence
			if err := json.Unmarshal(data, &f); err == nil {
				return &f, nil
			}
		}
	}

	f, err := s.fences.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.ComputeDerived()

	if s.cache != nil {
		if data, err := json.Marshal(f); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
		}
	}

	return f, nil
}

// Update applies a partial update. Only supplied fields are validated and
// merged; the stored point geometry is re-synced in the same write whenever
// the center moves.
func (s *FenceService) Update(ctx context.Context, id string, u *domain.FenceUpdate) (*domain.GeoFence, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	f, err := s.fences.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Apply(f)
	f.UpdatedAt = s.now()

	if err := s.fences.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("update fence: %w", err)
	}
	f.ComputeDerived()

	s.invalidate(ctx, f)
	if s.events != nil {
		_ = s.events.PublishFenceUpdated(ctx, f)
	}

	return f, nil
}

// Delete removes a fence and returns the deleted record.
func (s *FenceService) Delete(ctx context.Context, id string) (*domain.GeoFence, error) {
	f, err := s.fences.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.fences.Delete(ctx, id); err != nil {
		return nil, err
	}
	f.ComputeDerived()

	s.invalidate(ctx, f)
	if s.events != nil {
		_ = s.events.PublishFenceDeleted(ctx, f)
	}

	return f, nil
}

// ListAll returns every fence, for the dashboard map.
func (s *FenceService) ListAll(ctx context.Context) ([]domain.GeoFence, error) {
	fences, err := s.fences.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range fences {
		fences[i].ComputeDerived()
	}
	return fences, nil
}

// ListByOwner returns the owner's fences newest first, with conjunctive
// status/priority/tags filters.
func (s *FenceService) ListByOwner(ctx context.Context, ownerID string, filter domain.FenceFilter) ([]domain.GeoFence, error) {
	if ownerID == "" {
		ownerID = domain.AnonymousOwner
	}
	fences, err := s.fences.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	for i := range fences {
		fences[i].ComputeDerived()
	}
	return fences, nil
}

// FindNear returns active fences whose center lies within maxDistance
// meters of the point, ordered by exact distance ascending (ties by
// creation time). The repository box scan is only candidate reduction.
func (s *FenceService) FindNear(ctx context.Context, lat, lon, maxDistance float64, ownerID string) ([]domain.GeoFence, error) {
	if err := validateQueryPoint(lat, lon); err != nil {
		return nil, err
	}
	if maxDistance <= 0 {
		var v domain.ValidationError
		v.Add("maxDistance", "must be a positive number of meters")
		return nil, &v
	}

	cacheKey := fmt.Sprintf("geo:nearby:%s:%.6f:%.6f:%.0f:%s", s.nearbyVersion(ctx), lat, lon, maxDistance, ownerID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var fences []domain.GeoFence
			if err := json.Unmarshal(data, &fences); err == nil {
				return fences, nil
			}
		}
	}

	candidates, err := s.activeCandidates(ctx, lat, lon, maxDistance, ownerID)
	if err != nil {
		return nil, fmt.Errorf("nearby scan: %w", err)
	}

	fences := make([]domain.GeoFence, 0, len(candidates))
	for _, f := range candidates {
		d := geospatial.Haversine(f.Latitude, f.Longitude, lat, lon)
		if d > maxDistance {
			continue
		}
		dist := d
		f.Distance = &dist
		f.ComputeDerived()
		fences = append(fences, f)
	}
	sortByDistance(fences)

	if s.cache != nil {
		if data, err := json.Marshal(fences); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
		}
	}

	return fences, nil
}

// FindIntersecting returns active fences that touch or overlap a query
// circle, using exact circle math over a coarse box pre-filter. The box is
// padded by the maximum legal fence radius so no intersecting fence is
// missed.
func (s *FenceService) FindIntersecting(ctx context.Context, lat, lon, radius float64, ownerID string) ([]domain.GeoFence, error) {
	if err := validateQueryPoint(lat, lon); err != nil {
		return nil, err
	}
	if radius <= 0 {
		var v domain.ValidationError
		v.Add("radius", "must be a positive number of meters")
		return nil, &v
	}

	candidates, err := s.activeCandidates(ctx, lat, lon, radius+domain.MaxRadiusMeters, ownerID)
	if err != nil {
		return nil, fmt.Errorf("intersect scan: %w", err)
	}

	fences := make([]domain.GeoFence, 0, len(candidates))
	for _, f := range candidates {
		if !geospatial.CirclesIntersect(f.Latitude, f.Longitude, f.Radius, lat, lon, radius) {
			continue
		}
		dist := geospatial.Haversine(f.Latitude, f.Longitude, lat, lon)
		f.Distance = &dist
		f.ComputeDerived()
		fences = append(fences, f)
	}
	sortByDistance(fences)

	return fences, nil
}

// Statistics aggregates an owner's fences. Zero-valued when the owner has
// none.
func (s *FenceService) Statistics(ctx context.Context, ownerID string) (*domain.FenceStats, error) {
	if ownerID == "" {
		ownerID = domain.AnonymousOwner
	}

	cacheKey := "geo:stats:" + ownerID
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var stats domain.FenceStats
			if err := json.Unmarshal(data, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.fences.Stats(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	if stats.PriorityBreakdown == nil {
		stats.PriorityBreakdown = map[domain.Priority]int{}
	}

	if s.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
		}
	}

	return stats, nil
}

// IncrementAlert bumps the alert counter and last-alert timestamp. Invoked
// by the external alerting evaluator; this service never evaluates alert
// subscriptions itself.
func (s *FenceService) IncrementAlert(ctx context.Context, id string) (*domain.GeoFence, error) {
	if err := s.fences.IncrementAlert(ctx, id); err != nil {
		return nil, err
	}

	f, err := s.fences.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.ComputeDerived()

	s.invalidate(ctx, f)
	if s.events != nil {
		_ = s.events.PublishFenceAlert(ctx, f)
	}

	return f, nil
}

// TouchLastAccessed records that the fence was accessed.
func (s *FenceService) TouchLastAccessed(ctx context.Context, id string) (*domain.GeoFence, error) {
	if err := s.fences.TouchLastAccessed(ctx, id); err != nil {
		return nil, err
	}

	f, err := s.fences.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.ComputeDerived()

	s.invalidate(ctx, f)
	return f, nil
}

// activeCandidates runs the coarse box scan around a point. The box is
// candidate reduction only; when it crosses the antimeridian it is split
// so fences on the far side are not dropped before the exact filter.
func (s *FenceService) activeCandidates(ctx context.Context, lat, lon, radiusMeters float64, ownerID string) ([]domain.GeoFence, error) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)
	box := domain.Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}

	var candidates []domain.GeoFence
	for _, b := range box.Normalize() {
		part, err := s.fences.ActiveInBounds(ctx, b, ownerID)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, part...)
	}
	return candidates, nil
}

// invalidate drops the cache entries a write makes stale. Best effort.
// Nearby results are keyed by a version that every write rotates, so
// stale entries become unreachable instead of being deleted one by one.
func (s *FenceService) invalidate(ctx context.Context, f *domain.GeoFence) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, "geo:fence:"+f.ID)
	_ = s.cache.Delete(ctx, "geo:stats:"+f.UserID)
	_ = s.cache.Set(ctx, nearbyVersionKey, []byte(uuid.NewString()), 3600)
}

func (s *FenceService) nearbyVersion(ctx context.Context) string {
	if s.cache == nil {
		return "0"
	}
	if v, err := s.cache.Get(ctx, nearbyVersionKey); err == nil && len(v) > 0 {
		return string(v)
	}
	return "0"
}

func validateQueryPoint(lat, lon float64) error {
	var v domain.ValidationError
	if lat < -90 || lat > 90 {
		v.Add("latitude", "must be between -90 and 90 degrees")
	}
	if lon < -180 || lon > 180 {
		v.Add("longitude", "must be between -180 and 180 degrees")
	}
	return v.OrNil()
}

func sortByDistance(fences []domain.GeoFence) {
	sort.SliceStable(fences, func(i, j int) bool {
		di, dj := *fences[i].Distance, *fences[j].Distance
		if di != dj {
			return di < dj
		}
		return fences[i].CreatedAt.Before(fences[j].CreatedAt)
	})
}
