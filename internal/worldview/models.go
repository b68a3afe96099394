package worldview

import (
	"time"
)

// Layer identifies one data layer of the globe dashboard.
type Layer string

const (
	LayerFlights     Layer = "flights"
	LayerMilitary    Layer = "military"
	LayerEarthquakes Layer = "earthquakes"
	LayerSatellites  Layer = "satellites"
	LayerCCTV        Layer = "cctv"
)

// Layers lists every layer in a stable order.
var Layers = []Layer{LayerFlights, LayerMilitary, LayerEarthquakes, LayerSatellites, LayerCCTV}

// FlightState is a normalized aircraft position.
type FlightState struct {
	ICAO24        string  `json:"icao24"`
	Callsign      string  `json:"callsign"`
	OriginCountry string  `json:"originCountry,omitempty"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Altitude      float64 `json:"altitude"` // meters
	Velocity      float64 `json:"velocity"` // m/s
	Heading       float64 `json:"heading"`  // degrees from north
	VerticalRate  float64 `json:"verticalRate"`
	OnGround      bool    `json:"onGround"`
	Squawk        string  `json:"squawk,omitempty"`
	AircraftType  string  `json:"aircraftType,omitempty"`
	Military      bool    `json:"military,omitempty"`
}

func (f FlightState) Position() (float64, float64) { return f.Lat, f.Lon }

// EarthquakeFeature is a single seismic event.
type EarthquakeFeature struct {
	ID      string    `json:"id"`
	Mag     float64   `json:"mag"`
	Place   string    `json:"place"`
	Time    time.Time `json:"time"`
	Lat     float64   `json:"lat"`
	Lon     float64   `json:"lon"`
	Depth   float64   `json:"depth"` // km
	URL     string    `json:"url,omitempty"`
	Tsunami bool      `json:"tsunami,omitempty"`
}

func (q EarthquakeFeature) Position() (float64, float64) { return q.Lat, q.Lon }

// SatelliteRecord is a two-line element set. Positions are propagated client-side.
type SatelliteRecord struct {
	Name    string `json:"name"`
	NoradID string `json:"noradId"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
}

// StreamType describes how a camera feed is played.
type StreamType string

const (
	StreamHLS     StreamType = "hls"
	StreamMP4     StreamType = "mp4"
	StreamYouTube StreamType = "youtube"
	StreamImage   StreamType = "image"
)

// CCTVCamera is a public traffic or web camera.
type CCTVCamera struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Lat      float64    `json:"lat"`
	Lon      float64    `json:"lon"`
	Source   string     `json:"source"`
	ImageURL string     `json:"imageUrl,omitempty"`
	VideoURL string     `json:"videoUrl,omitempty"`
	Type     StreamType `json:"type"`

	// Slug is set for cameras whose stream URL is resolved on demand.
	Slug string `json:"slug,omitempty"`
}

func (c CCTVCamera) Position() (float64, float64) { return c.Lat, c.Lon }

// StreamInfo is the playable URL of a camera resolved by slug.
type StreamInfo struct {
	URL  string     `json:"url"`
	Type StreamType `json:"type"`
}

// GeoResult is a geocoding match.
type GeoResult struct {
	DisplayName string  `json:"displayName"`
	ShortName   string  `json:"shortName"`
	Country     string  `json:"country"`
	Type        string  `json:"type"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	// BoundingBox is [minLat, maxLat, minLon, maxLon].
	BoundingBox  *[4]float64 `json:"boundingBox,omitempty"`
	ViewAltitude float64     `json:"viewAltitude"` // meters
}

// Snapshot is a proxied camera image.
type Snapshot struct {
	ContentType string
	Body        []byte
}

// SourceContribution describes one provider's part in an aggregated result.
type SourceContribution struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

// Result is the cached view of a layer.
type Result[T any] struct {
	Items     []T                  `json:"items"`
	FetchedAt time.Time            `json:"fetchedAt"`
	Stale     bool                 `json:"stale"`
	Sources   []SourceContribution `json:"sources,omitempty"`
}

// LayerStats summarizes a layer's cache state.
type LayerStats struct {
	Layer     Layer     `json:"layer"`
	Items     int       `json:"items"`
	FetchedAt time.Time `json:"fetchedAt,omitempty"`
	AgeSec    float64   `json:"ageSeconds"`
	Fresh     bool      `json:"fresh"`
}
