package domain

import (
	"fmt"
	"math"
	"time"
)

// FenceStatus is the lifecycle status of a fenced area. Transitions are
// unrestricted: any status may move to any other.
type FenceStatus string

const (
	StatusActive   FenceStatus = "active"
	StatusInactive FenceStatus = "inactive"
	StatusPending  FenceStatus = "pending"
)

// FenceType classifies what kind of zone a fence marks.
type FenceType string

const (
	FenceVirtual    FenceType = "virtual"
	FencePhysical   FenceType = "physical"
	FenceWarning    FenceType = "warning"
	FenceRestricted FenceType = "restricted"
)

// Priority ranks a fence for the dashboard.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// AlertType is an alert subscription carried as configuration. It is never
// evaluated by this service; an external alerting evaluator consumes it.
type AlertType string

const (
	AlertEntry     AlertType = "entry"
	AlertExit      AlertType = "exit"
	AlertProximity AlertType = "proximity"
	AlertTimeBased AlertType = "time_based"
)

// NotificationMethod is a delivery channel for alerts, configuration only.
type NotificationMethod string

const (
	NotifyEmail   NotificationMethod = "email"
	NotifySMS     NotificationMethod = "sms"
	NotifyPush    NotificationMethod = "push"
	NotifyWebhook NotificationMethod = "webhook"
)

// Geometry bounds for a fenced area.
const (
	MinRadiusMeters      = 1.0
	MaxRadiusMeters      = 10000.0
	MaxDescriptionLength = 500

	// AnonymousOwner is recorded when no authenticated principal exists.
	AnonymousOwner = "anonymous"

	// DuplicateToleranceDegrees is the half-width of the axis-aligned box
	// used for the create-time near-duplicate check (~111 m of latitude at
	// the equator, narrower in longitude toward the poles). Intentionally a
	// degree box, not a true radius check.
	DuplicateToleranceDegrees = 0.001
)

// GeoFence is a circular fenced area drawn by an operator on the map.
// Area, LocationString and Distance are derived on read, never stored.
// The mirrored point geometry lives only in the storage layer and is
// re-synced from Latitude/Longitude on every write.
type GeoFence struct {
	ID                  string               `json:"id"`
	UserID              string               `json:"userId"`
	Latitude            float64              `json:"latitude"`
	Longitude           float64              `json:"longitude"`
	Radius              float64              `json:"radius"` // meters
	Description         string               `json:"description"`
	Status              FenceStatus          `json:"status"`
	FenceType           FenceType            `json:"fenceType"`
	Priority            Priority             `json:"priority"`
	Tags                []string             `json:"tags,omitempty"`
	AlertTypes          []AlertType          `json:"alertTypes,omitempty"`
	NotificationMethods []NotificationMethod `json:"notificationMethods,omitempty"`
	TotalAlerts         int                  `json:"totalAlerts"`
	LastAlert           *time.Time           `json:"lastAlert,omitempty"`
	LastAccessed        *time.Time           `json:"lastAccessed,omitempty"`
	Area                float64              `json:"area"`               // m², = π·radius²
	LocationString      string               `json:"locationString"`     // "lat, lng" at 6 decimals
	Distance            *float64             `json:"distance,omitempty"` // set by proximity queries
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

// ComputeDerived recomputes the read-only projections from the stored
// fields. Called on every read path and after every write.
func (f *GeoFence) ComputeDerived() {
	f.Area = math.Pi * f.Radius * f.Radius
	f.LocationString = fmt.Sprintf("%.6f, %.6f", f.Latitude, f.Longitude)
}

// Center returns the authoritative center point of the fence.
func (f *GeoFence) Center() GeoPoint {
	return GeoPoint{Lat: f.Latitude, Lon: f.Longitude}
}

// DeriveDescription builds the default description for a fence whose caller
// omitted one.
func DeriveDescription(lat, lon float64) string {
	return fmt.Sprintf("Fenced area at %.6f, %.6f", lat, lon)
}

// FenceInput is a candidate fence as submitted by an operator.
type FenceInput struct {
	Latitude            float64              `json:"latitude"`
	Longitude           float64              `json:"longitude"`
	Radius              float64              `json:"radius"`
	Description         string               `json:"description"`
	Status              FenceStatus          `json:"status"`
	FenceType           FenceType            `json:"fenceType"`
	Priority            Priority             `json:"priority"`
	Tags                []string             `json:"tags"`
	AlertTypes          []AlertType          `json:"alertTypes"`
	NotificationMethods []NotificationMethod `json:"notificationMethods"`
}

// Validate checks every invariant and reports all violations, not just the
// first. Empty enum fields are allowed here; Create fills in defaults.
func (in *FenceInput) Validate() error {
	var v ValidationError

	validateGeometry(&v, in.Latitude, in.Longitude, in.Radius)
	validateDescription(&v, in.Description)

	if in.Status != "" && !in.Status.Valid() {
		v.Add("status", "must be one of: active, inactive, pending")
	}
	if in.FenceType != "" && !in.FenceType.Valid() {
		v.Add("fenceType", "must be one of: virtual, physical, warning, restricted")
	}
	if in.Priority != "" && !in.Priority.Valid() {
		v.Add("priority", "must be one of: low, medium, high, critical")
	}
	validateAlertTypes(&v, in.AlertTypes)
	validateNotificationMethods(&v, in.NotificationMethods)

	return v.OrNil()
}

// FenceUpdate is a partial update; nil fields are left untouched.
type FenceUpdate struct {
	Latitude            *float64             `json:"latitude"`
	Longitude           *float64             `json:"longitude"`
	Radius              *float64             `json:"radius"`
	Description         *string              `json:"description"`
	Status              *FenceStatus         `json:"status"`
	FenceType           *FenceType           `json:"fenceType"`
	Priority            *Priority            `json:"priority"`
	Tags                []string             `json:"tags"`
	AlertTypes          []AlertType          `json:"alertTypes"`
	NotificationMethods []NotificationMethod `json:"notificationMethods"`
}

// Validate checks only the fields present in the update, accumulating every
// violation.
func (u *FenceUpdate) Validate() error {
	var v ValidationError

	if u.Latitude != nil && (*u.Latitude < -90 || *u.Latitude > 90) {
		v.Add("latitude", "must be between -90 and 90 degrees")
	}
	if u.Longitude != nil && (*u.Longitude < -180 || *u.Longitude > 180) {
		v.Add("longitude", "must be between -180 and 180 degrees")
	}
	if u.Radius != nil && (*u.Radius < MinRadiusMeters || *u.Radius > MaxRadiusMeters) {
		v.Add("radius", fmt.Sprintf("must be between %.0f and %.0f meters", MinRadiusMeters, MaxRadiusMeters))
	}
	if u.Description != nil {
		validateDescription(&v, *u.Description)
		if *u.Description == "" {
			v.Add("description", "must not be empty")
		}
	}
	if u.Status != nil && !u.Status.Valid() {
		v.Add("status", "must be one of: active, inactive, pending")
	}
	if u.FenceType != nil && !u.FenceType.Valid() {
		v.Add("fenceType", "must be one of: virtual, physical, warning, restricted")
	}
	if u.Priority != nil && !u.Priority.Valid() {
		v.Add("priority", "must be one of: low, medium, high, critical")
	}
	validateAlertTypes(&v, u.AlertTypes)
	validateNotificationMethods(&v, u.NotificationMethods)

	return v.OrNil()
}

// Apply merges the update into the fence and reports whether the center
// moved, so the caller can re-sync the stored point geometry in the same
// write.
func (u *FenceUpdate) Apply(f *GeoFence) (centerChanged bool) {
	if u.Latitude != nil {
		f.Latitude = *u.Latitude
		centerChanged = true
	}
	if u.Longitude != nil {
		f.Longitude = *u.Longitude
		centerChanged = true
	}
	if u.Radius != nil {
		f.Radius = *u.Radius
	}
	if u.Description != nil {
		f.Description = *u.Description
	}
	if u.Status != nil {
		f.Status = *u.Status
	}
	if u.FenceType != nil {
		f.FenceType = *u.FenceType
	}
	if u.Priority != nil {
		f.Priority = *u.Priority
	}
	if u.Tags != nil {
		f.Tags = u.Tags
	}
	if u.AlertTypes != nil {
		f.AlertTypes = u.AlertTypes
	}
	if u.NotificationMethods != nil {
		f.NotificationMethods = u.NotificationMethods
	}
	return centerChanged
}

// FenceFilter narrows owner listings. All set filters are conjunctive.
type FenceFilter struct {
	Status   FenceStatus
	Priority Priority
	Tags     []string
}

// FenceStats aggregates an owner's fences.
type FenceStats struct {
	TotalAreas        int              `json:"totalAreas"`
	ActiveAreas       int              `json:"activeAreas"`
	InactiveAreas     int              `json:"inactiveAreas"`
	PendingAreas      int              `json:"pendingAreas"`
	AverageRadius     float64          `json:"averageRadius"`
	MinRadius         float64          `json:"minRadius"`
	MaxRadius         float64          `json:"maxRadius"`
	TotalCoverage     float64          `json:"totalCoverage"` // Σ π·radius²
	TotalAlerts       int              `json:"totalAlerts"`
	PriorityBreakdown map[Priority]int `json:"priorityBreakdown"`
}

func (s FenceStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending:
		return true
	}
	return false
}

func (t FenceType) Valid() bool {
	switch t {
	case FenceVirtual, FencePhysical, FenceWarning, FenceRestricted:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

func (a AlertType) Valid() bool {
	switch a {
	case AlertEntry, AlertExit, AlertProximity, AlertTimeBased:
		return true
	}
	return false
}

func (n NotificationMethod) Valid() bool {
	switch n {
	case NotifyEmail, NotifySMS, NotifyPush, NotifyWebhook:
		return true
	}
	return false
}

func validateGeometry(v *ValidationError, lat, lon, radius float64) {
	if lat < -90 || lat > 90 {
		v.Add("latitude", "must be between -90 and 90 degrees")
	}
	if lon < -180 || lon > 180 {
		v.Add("longitude", "must be between -180 and 180 degrees")
	}
	if radius < MinRadiusMeters || radius > MaxRadiusMeters {
		v.Add("radius", fmt.Sprintf("must be between %.0f and %.0f meters", MinRadiusMeters, MaxRadiusMeters))
	}
}

func validateDescription(v *ValidationError, desc string) {
	if len(desc) > MaxDescriptionLength {
		v.Add("description", fmt.Sprintf("must be at most %d characters", MaxDescriptionLength))
	}
}

func validateAlertTypes(v *ValidationError, alerts []AlertType) {
	for _, a := range alerts {
		if !a.Valid() {
			v.Add("alertTypes", fmt.Sprintf("unknown alert type %q", a))
		}
	}
}

func validateNotificationMethods(v *ValidationError, methods []NotificationMethod) {
	for _, m := range methods {
		if !m.Valid() {
			v.Add("notificationMethods", fmt.Sprintf("unknown notification method %q", m))
		}
	}
}
