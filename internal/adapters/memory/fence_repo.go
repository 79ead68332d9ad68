// Package memory provides an in-memory ports.FenceRepository used by tests
// and local fixtures. It mirrors the postgres adapter's semantics exactly:
// box scans are coarse candidate filters and ids resolve to
// domain.ErrNotFound when missing.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/safeyatra/geomark/internal/core/domain"
)

// FenceRepo implements ports.FenceRepository over a mutex-guarded map.
type FenceRepo struct {
	mu     sync.RWMutex
	fences map[string]domain.GeoFence
}

// NewFenceRepo creates an empty in-memory repository.
func NewFenceRepo() *FenceRepo {
	return &FenceRepo{fences: make(map[string]domain.GeoFence)}
}

func (r *FenceRepo) Insert(ctx context.Context, f *domain.GeoFence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fences[f.ID] = *f
	return nil
}

func (r *FenceRepo) GetByID(ctx context.Context, id string) (*domain.GeoFence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fences[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

func (r *FenceRepo) Update(ctx context.Context, f *domain.GeoFence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fences[f.ID]; !ok {
		return domain.ErrNotFound
	}
	r.fences[f.ID] = *f
	return nil
}

func (r *FenceRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fences[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.fences, id)
	return nil
}

func (r *FenceRepo) ListAll(ctx context.Context) ([]domain.GeoFence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.GeoFence, 0, len(r.fences))
	for _, f := range r.fences {
		out = append(out, f)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *FenceRepo) ListByOwner(ctx context.Context, ownerID string, filter domain.FenceFilter) ([]domain.GeoFence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.GeoFence
	for _, f := range r.fences {
		if f.UserID != ownerID {
			continue
		}
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && f.Priority != filter.Priority {
			continue
		}
		if !hasAllTags(f.Tags, filter.Tags) {
			continue
		}
		out = append(out, f)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *FenceRepo) ActiveInBounds(ctx context.Context, b domain.Bounds, ownerID string) ([]domain.GeoFence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.GeoFence
	for _, f := range r.fences {
		if f.Status != domain.StatusActive {
			continue
		}
		if ownerID != "" && f.UserID != ownerID {
			continue
		}
		if f.Latitude < b.MinLat || f.Latitude > b.MaxLat ||
			f.Longitude < b.MinLon || f.Longitude > b.MaxLon {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *FenceRepo) ExistsNear(ctx context.Context, lat, lon, toleranceDegrees float64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.fences {
		if math.Abs(f.Latitude-lat) <= toleranceDegrees &&
			math.Abs(f.Longitude-lon) <= toleranceDegrees {
			return true, nil
		}
	}
	return false, nil
}

func (r *FenceRepo) Stats(ctx context.Context, ownerID string) (*domain.FenceStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &domain.FenceStats{PriorityBreakdown: map[domain.Priority]int{}}
	var radiusSum float64

	for _, f := range r.fences {
		if f.UserID != ownerID {
			continue
		}
		stats.TotalAreas++
		switch f.Status {
		case domain.StatusActive:
			stats.ActiveAreas++
		case domain.StatusInactive:
			stats.InactiveAreas++
		case domain.StatusPending:
			stats.PendingAreas++
		}
		radiusSum += f.Radius
		if stats.MinRadius == 0 || f.Radius < stats.MinRadius {
			stats.MinRadius = f.Radius
		}
		if f.Radius > stats.MaxRadius {
			stats.MaxRadius = f.Radius
		}
		stats.TotalCoverage += math.Pi * f.Radius * f.Radius
		stats.TotalAlerts += f.TotalAlerts
		stats.PriorityBreakdown[f.Priority]++
	}

	if stats.TotalAreas > 0 {
		stats.AverageRadius = radiusSum / float64(stats.TotalAreas)
	}
	return stats, nil
}

func (r *FenceRepo) IncrementAlert(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fences[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now().UTC()
	f.TotalAlerts++
	f.LastAlert = &now
	r.fences[id] = f
	return nil
}

func (r *FenceRepo) TouchLastAccessed(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fences[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now().UTC()
	f.LastAccessed = &now
	r.fences[id] = f
	return nil
}

func sortNewestFirst(fences []domain.GeoFence) {
	sort.SliceStable(fences, func(i, j int) bool {
		return fences[i].CreatedAt.After(fences[j].CreatedAt)
	})
}

func hasAllTags(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
