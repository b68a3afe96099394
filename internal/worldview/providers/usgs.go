package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

// USGSProvider reads a USGS earthquake GeoJSON summary feed.
type USGSProvider struct {
	name    string
	feedURL string
	limit   int
	up      *upstream
}

// NewUSGSProvider creates a provider for feedURL, e.g.
// https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_day.geojson.
func NewUSGSProvider(client *http.Client, feedURL string, limit int) *USGSProvider {
	if feedURL == "" {
		feedURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_day.geojson"
	}
	return &USGSProvider{
		name:    "usgs",
		feedURL: feedURL,
		limit:   limit,
		up:      newUpstream("usgs", HTTPClientConfig{Client: client, Backoff: DefaultBackoff}),
	}
}

func (p *USGSProvider) Name() string {
	return p.name
}

type usgsFeature struct {
	ID         string `json:"id"`
	Properties struct {
		Mag     *float64 `json:"mag"`
		Place   string   `json:"place"`
		Time    int64    `json:"time"`
		URL     string   `json:"url"`
		Tsunami int      `json:"tsunami"`
	} `json:"properties"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
}

func (p *USGSProvider) Fetch(ctx context.Context) ([]worldview.EarthquakeFeature, error) {
	var payload struct {
		Features []usgsFeature `json:"features"`
	}
	if err := p.up.getJSON(ctx, p.feedURL, nil, &payload); err != nil {
		return nil, err
	}

	quakes := make([]worldview.EarthquakeFeature, 0, len(payload.Features))
	for _, f := range payload.Features {
		coords := f.Geometry.Coordinates
		if f.ID == "" || f.Properties.Mag == nil || len(coords) < 3 {
			continue
		}
		// GeoJSON order is lon, lat, depth.
		lon, lat, depth := coords[0], coords[1], coords[2]
		if !worldview.ValidPosition(lat, lon) {
			continue
		}

		quakes = append(quakes, worldview.EarthquakeFeature{
			ID:      f.ID,
			Mag:     *f.Properties.Mag,
			Place:   f.Properties.Place,
			Time:    time.UnixMilli(f.Properties.Time).UTC(),
			Lat:     lat,
			Lon:     lon,
			Depth:   depth,
			URL:     f.Properties.URL,
			Tsunami: f.Properties.Tsunami != 0,
		})
	}
	return worldview.Truncate(quakes, p.limit), nil
}
