package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds represents a geographic bounding box used to narrow spatial
// candidates before exact distance checks.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Normalize clamps latitude and resolves longitude overflow. A box that
// crosses the antimeridian is split into two in-range boxes so candidate
// scans do not drop fences on the far side; a box spanning the full
// circle (possible near the poles, where longitude deltas blow up)
// collapses to [-180, 180].
func (b Bounds) Normalize() []Bounds {
	if b.MinLat < -90 {
		b.MinLat = -90
	}
	if b.MaxLat > 90 {
		b.MaxLat = 90
	}

	if b.MaxLon-b.MinLon >= 360 {
		b.MinLon, b.MaxLon = -180, 180
		return []Bounds{b}
	}

	switch {
	case b.MinLon < -180:
		west := b
		west.MinLon, west.MaxLon = b.MinLon+360, 180
		east := b
		east.MinLon = -180
		return []Bounds{west, east}
	case b.MaxLon > 180:
		west := b
		west.MaxLon = 180
		east := b
		east.MinLon, east.MaxLon = -180, b.MaxLon-360
		return []Bounds{west, east}
	default:
		return []Bounds{b}
	}
}
