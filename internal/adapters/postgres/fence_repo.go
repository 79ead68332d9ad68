package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/safeyatra/geomark/internal/core/domain"
)

// FenceRepo implements ports.FenceRepository with pgx.
//
// Latitude/longitude columns are authoritative; the PostGIS location column
// is a mirrored point (lon, lat) written in the same statement as every
// insert/update, and exists only to drive the spatial index for coarse
// candidate scans.
type FenceRepo struct {
	db *DB
}

// NewFenceRepo creates a new FenceRepo.
func NewFenceRepo(db *DB) *FenceRepo {
	return &FenceRepo{db: db}
}

const fenceColumns = `
	id, user_id, latitude, longitude, radius, description, status,
	fence_type, priority,
	COALESCE(tags, '{}'), COALESCE(alert_types, '{}'), COALESCE(notification_methods, '{}'),
	total_alerts, last_alert, last_accessed, created_at, updated_at`

func (r *FenceRepo) Insert(ctx context.Context, f *domain.GeoFence) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO geofences (
			id, user_id, latitude, longitude, radius, description, status,
			fence_type, priority, tags, alert_types, notification_methods,
			total_alerts, location, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        ST_SetSRID(ST_MakePoint($4, $3), 4326)::geography, $14, $15)
	`, f.ID, f.UserID, f.Latitude, f.Longitude, f.Radius, f.Description, f.Status,
		f.FenceType, f.Priority, f.Tags, alertTypeStrings(f.AlertTypes),
		notificationStrings(f.NotificationMethods),
		f.TotalAlerts, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert geofence: %w", err)
	}
	return nil
}

func (r *FenceRepo) GetByID(ctx context.Context, id string) (*domain.GeoFence, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+fenceColumns+` FROM geofences WHERE id = $1`, id)
	f, err := scanFence(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *FenceRepo) Update(ctx context.Context, f *domain.GeoFence) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE geofences
		SET user_id = $2, latitude = $3, longitude = $4, radius = $5,
		    description = $6, status = $7, fence_type = $8, priority = $9,
		    tags = $10, alert_types = $11, notification_methods = $12,
		    location = ST_SetSRID(ST_MakePoint($4, $3), 4326)::geography,
		    updated_at = $13
		WHERE id = $1
	`, f.ID, f.UserID, f.Latitude, f.Longitude, f.Radius, f.Description,
		f.Status, f.FenceType, f.Priority, f.Tags,
		alertTypeStrings(f.AlertTypes), notificationStrings(f.NotificationMethods),
		f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update geofence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *FenceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM geofences WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete geofence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *FenceRepo) ListAll(ctx context.Context) ([]domain.GeoFence, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+fenceColumns+` FROM geofences ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFences(rows)
}

func (r *FenceRepo) ListByOwner(ctx context.Context, ownerID string, filter domain.FenceFilter) ([]domain.GeoFence, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+fenceColumns+`
		FROM geofences
		WHERE user_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR priority = $3)
		  AND (cardinality($4::text[]) = 0 OR tags @> $4::text[])
		ORDER BY created_at DESC
	`, ownerID, string(filter.Status), string(filter.Priority), emptyIfNil(filter.Tags))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFences(rows)
}

// ActiveInBounds is the coarse candidate scan: the && operator rides the
// GIST index on the mirrored point. Callers apply exact great-circle math.
func (r *FenceRepo) ActiveInBounds(ctx context.Context, b domain.Bounds, ownerID string) ([]domain.GeoFence, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+fenceColumns+`
		FROM geofences
		WHERE status = 'active'
		  AND location::geometry && ST_MakeEnvelope($1, $2, $3, $4, 4326)
		  AND ($5 = '' OR user_id = $5)
	`, b.MinLon, b.MinLat, b.MaxLon, b.MaxLat, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFences(rows)
}

func (r *FenceRepo) ExistsNear(ctx context.Context, lat, lon, toleranceDegrees float64) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM geofences
			WHERE latitude  BETWEEN $1 - $3 AND $1 + $3
			  AND longitude BETWEEN $2 - $3 AND $2 + $3
		)
	`, lat, lon, toleranceDegrees).Scan(&exists)
	return exists, err
}

func (r *FenceRepo) Stats(ctx context.Context, ownerID string) (*domain.FenceStats, error) {
	stats := &domain.FenceStats{PriorityBreakdown: map[domain.Priority]int{}}

	err := r.db.Pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'active'),
		       count(*) FILTER (WHERE status = 'inactive'),
		       count(*) FILTER (WHERE status = 'pending'),
		       COALESCE(avg(radius), 0),
		       COALESCE(min(radius), 0),
		       COALESCE(max(radius), 0),
		       COALESCE(sum(pi() * radius * radius), 0),
		       COALESCE(sum(total_alerts), 0)
		FROM geofences WHERE user_id = $1
	`, ownerID).Scan(
		&stats.TotalAreas, &stats.ActiveAreas, &stats.InactiveAreas, &stats.PendingAreas,
		&stats.AverageRadius, &stats.MinRadius, &stats.MaxRadius,
		&stats.TotalCoverage, &stats.TotalAlerts,
	)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT priority, count(*) FROM geofences WHERE user_id = $1 GROUP BY priority`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p string
		var n int
		if err := rows.Scan(&p, &n); err != nil {
			return nil, err
		}
		stats.PriorityBreakdown[domain.Priority(p)] = n
	}
	return stats, rows.Err()
}

func (r *FenceRepo) IncrementAlert(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE geofences SET total_alerts = total_alerts + 1, last_alert = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("increment alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *FenceRepo) TouchLastAccessed(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE geofences SET last_accessed = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch last accessed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanFence(row pgx.Row) (*domain.GeoFence, error) {
	var f domain.GeoFence
	var alertTypes, notificationMethods []string
	err := row.Scan(
		&f.ID, &f.UserID, &f.Latitude, &f.Longitude, &f.Radius, &f.Description,
		&f.Status, &f.FenceType, &f.Priority,
		&f.Tags, &alertTypes, &notificationMethods,
		&f.TotalAlerts, &f.LastAlert, &f.LastAccessed, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	for _, a := range alertTypes {
		f.AlertTypes = append(f.AlertTypes, domain.AlertType(a))
	}
	for _, m := range notificationMethods {
		f.NotificationMethods = append(f.NotificationMethods, domain.NotificationMethod(m))
	}
	return &f, nil
}

func collectFences(rows pgx.Rows) ([]domain.GeoFence, error) {
	var fences []domain.GeoFence
	for rows.Next() {
		f, err := scanFence(rows)
		if err != nil {
			return nil, err
		}
		fences = append(fences, *f)
	}
	return fences, rows.Err()
}

func alertTypeStrings(alerts []domain.AlertType) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = string(a)
	}
	return out
}

func notificationStrings(methods []domain.NotificationMethod) []string {
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = string(m)
	}
	return out
}

func emptyIfNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
