package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

// NominatimGeocoder searches OpenStreetMap's Nominatim.
type NominatimGeocoder struct {
	name      string
	baseURL   string
	userAgent string
	up        *upstream
}

// NewNominatimGeocoder creates a geocoder. Requests are spaced one second
// apart, the public instance's usage limit.
func NewNominatimGeocoder(client *http.Client, baseURL, userAgent string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	if userAgent == "" {
		userAgent = "WorldView/1.0"
	}
	return &NominatimGeocoder{
		name:      "nominatim",
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		up: newUpstream("nominatim", HTTPClientConfig{
			Client:      client,
			Backoff:     DefaultBackoff,
			MinInterval: time.Second,
		}),
	}
}

func (g *NominatimGeocoder) Name() string {
	return g.name
}

type nominatimPlace struct {
	DisplayName string   `json:"display_name"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Class       string   `json:"class"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	BoundingBox []string `json:"boundingbox"`
	Address     struct {
		Country string `json:"country"`
	} `json:"address"`
}

func (g *NominatimGeocoder) Search(ctx context.Context, query string, limit int) ([]worldview.GeoResult, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("format", "json")
	values.Set("limit", strconv.Itoa(limit))
	values.Set("addressdetails", "1")
	values.Set("extratags", "0")

	header := http.Header{}
	header.Set("Accept-Language", "en")
	header.Set("User-Agent", g.userAgent)

	var places []nominatimPlace
	if err := g.up.getJSON(ctx, g.baseURL+"/search?"+values.Encode(), header, &places); err != nil {
		return nil, err
	}

	results := make([]worldview.GeoResult, 0, len(places))
	for _, pl := range places {
		r, ok := mapNominatimPlace(pl)
		if ok {
			results = append(results, r)
		}
	}
	return results, nil
}

func mapNominatimPlace(pl nominatimPlace) (worldview.GeoResult, bool) {
	lat, err1 := strconv.ParseFloat(pl.Lat, 64)
	lon, err2 := strconv.ParseFloat(pl.Lon, 64)
	if err1 != nil || err2 != nil || !worldview.ValidPosition(lat, lon) {
		return worldview.GeoResult{}, false
	}

	parts := strings.Split(pl.DisplayName, ",")
	shortName := strings.TrimSpace(pl.Name)
	if shortName == "" {
		shortName = strings.TrimSpace(parts[0])
	}
	country := pl.Address.Country
	if country == "" {
		country = strings.TrimSpace(parts[len(parts)-1])
	}
	typ := pl.Type
	if typ == "" {
		typ = pl.Class
	}
	if typ == "" {
		typ = "place"
	}

	r := worldview.GeoResult{
		DisplayName: pl.DisplayName,
		ShortName:   shortName,
		Country:     country,
		Type:        typ,
		Lat:         lat,
		Lon:         lon,
	}
	// Nominatim orders the box as minLat, maxLat, minLon, maxLon.
	if len(pl.BoundingBox) == 4 {
		var box [4]float64
		ok := true
		for i, s := range pl.BoundingBox {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				ok = false
				break
			}
			box[i] = v
		}
		if ok {
			r.BoundingBox = &box
		}
	}
	r.ViewAltitude = worldview.AltitudeForBBox(r.BoundingBox)
	return r, true
}
