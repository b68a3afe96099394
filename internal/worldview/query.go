package worldview

import (
	"strings"
)

// FlightQuery filters the flights and military layers.
type FlightQuery struct {
	BBox     *BBox
	Airborne bool
	Limit    int
}

func (q FlightQuery) apply(items []FlightState) []FlightState {
	items = FilterBBox(items, q.BBox)
	if q.Airborne {
		out := items[:0:0]
		for _, f := range items {
			if !f.OnGround {
				out = append(out, f)
			}
		}
		items = out
	}
	return Truncate(items, q.Limit)
}

// EarthquakeQuery filters the earthquakes layer.
type EarthquakeQuery struct {
	BBox   *BBox
	MinMag float64
	Limit  int
}

func (q EarthquakeQuery) apply(items []EarthquakeFeature) []EarthquakeFeature {
	items = FilterBBox(items, q.BBox)
	if q.MinMag > 0 {
		out := items[:0:0]
		for _, e := range items {
			if e.Mag >= q.MinMag {
				out = append(out, e)
			}
		}
		items = out
	}
	return Truncate(items, q.Limit)
}

// SatelliteQuery filters the satellites layer. Search matches names
// case-insensitively, or the NORAD catalog number exactly.
type SatelliteQuery struct {
	Search string
	Limit  int
}

func (q SatelliteQuery) apply(items []SatelliteRecord) []SatelliteRecord {
	needle := strings.ToUpper(strings.TrimSpace(q.Search))
	if needle != "" {
		out := items[:0:0]
		for _, s := range items {
			if s.NoradID == needle || strings.Contains(strings.ToUpper(s.Name), needle) {
				out = append(out, s)
			}
		}
		items = out
	}
	return Truncate(items, q.Limit)
}

// CameraQuery filters the cctv layer.
type CameraQuery struct {
	BBox   *BBox
	Source string
	Limit  int
}

func (q CameraQuery) apply(items []CCTVCamera) []CCTVCamera {
	items = FilterBBox(items, q.BBox)
	if q.Source != "" {
		out := items[:0:0]
		for _, c := range items {
			if strings.EqualFold(c.Source, q.Source) {
				out = append(out, c)
			}
		}
		items = out
	}
	return Truncate(items, q.Limit)
}
