package worldview

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidBBox = errors.New("invalid bounding box")

// BBox is a latitude/longitude rectangle. MinLon > MaxLon describes a box
// that crosses the antimeridian.
type BBox struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
}

// Validate checks coordinate ranges and latitude ordering.
func (b BBox) Validate() error {
	switch {
	case !validLat(b.MinLat) || !validLat(b.MaxLat):
		return fmt.Errorf("%w: latitude out of range", ErrInvalidBBox)
	case !validLon(b.MinLon) || !validLon(b.MaxLon):
		return fmt.Errorf("%w: longitude out of range", ErrInvalidBBox)
	case b.MinLat > b.MaxLat:
		return fmt.Errorf("%w: minimum latitude above maximum", ErrInvalidBBox)
	}
	return nil
}

// Contains reports whether the point lies inside the box, edges included.
func (b BBox) Contains(lat, lon float64) bool {
	if lat < b.MinLat || lat > b.MaxLat {
		return false
	}
	if b.MinLon <= b.MaxLon {
		return lon >= b.MinLon && lon <= b.MaxLon
	}
	return lon >= b.MinLon || lon <= b.MaxLon
}

// ValidPosition rejects NaN, infinities, out-of-range values and the 0,0
// null-island placeholder some feeds emit for unknown positions.
func ValidPosition(lat, lon float64) bool {
	if !validLat(lat) || !validLon(lon) {
		return false
	}
	return lat != 0 || lon != 0
}

func validLat(v float64) bool {
	return !math.IsNaN(v) && v >= -90 && v <= 90
}

func validLon(v float64) bool {
	return !math.IsNaN(v) && v >= -180 && v <= 180
}

// Positioned is implemented by records that have a map location.
type Positioned interface {
	Position() (lat, lon float64)
}

// FilterBBox keeps the records inside box. A nil box keeps everything.
func FilterBBox[T Positioned](items []T, box *BBox) []T {
	if box == nil {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if box.Contains(it.Position()) {
			out = append(out, it)
		}
	}
	return out
}

// Truncate returns at most limit items. limit <= 0 means no limit.
func Truncate[T any](items []T, limit int) []T {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return items[:limit]
}

// AltitudeForBBox picks a camera altitude that frames the box from overhead:
// roughly 111 km per degree of the larger span, padded 2.5x, clamped to
// [800 m, 18 000 km]. Without a box it returns 200 km.
func AltitudeForBBox(box *[4]float64) float64 {
	if box == nil {
		return 200_000
	}
	latSpan := math.Abs(box[1] - box[0])
	lonSpan := math.Abs(box[3] - box[2])
	meters := math.Max(latSpan, lonSpan) * 111_000 * 2.5
	return math.Max(800, math.Min(meters, 18_000_000))
}
