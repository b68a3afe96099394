package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/worldview-aggregation/internal/logging"
	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

// geocoder keeps its API key in a package variable.
var googleKeyOnce sync.Once

// GoogleGeocoder resolves a query through the Google Geocoding API. It
// returns a single best match and is used as a fallback behind Nominatim.
type GoogleGeocoder struct {
	name    string
	enabled bool

	// Swappable for tests.
	geocode func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	if apiKey != "" {
		googleKeyOnce.Do(func() { geocoder.ApiKey = apiKey })
	}
	return &GoogleGeocoder{
		name:    "google",
		enabled: apiKey != "",
		geocode: geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
	}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

type googleResult struct {
	loc  geocoder.Location
	addr []geocoder.Address
	err  error
}

func (g *GoogleGeocoder) Search(ctx context.Context, query string, limit int) ([]worldview.GeoResult, error) {
	if !g.enabled {
		return nil, fmt.Errorf("google geocoder: %w: api key missing", errNotConfigured)
	}

	// The client library takes no context; run it aside and honour ctx here.
	done := make(chan googleResult, 1)
	go func() {
		loc, err := g.geocode(geocoder.Address{Street: query})
		if err != nil {
			done <- googleResult{err: err}
			return
		}
		addrs, err := g.reverse(loc)
		if err != nil {
			// The match is still usable without its address details.
			logging.Debug().Err(err).Str("query", query).Msg("google reverse geocoding failed")
		}
		done <- googleResult{loc: loc, addr: addrs}
	}()

	var res googleResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("google geocoder: %w", res.err)
	}
	if !worldview.ValidPosition(res.loc.Latitude, res.loc.Longitude) {
		return nil, nil
	}

	r := worldview.GeoResult{
		DisplayName: query,
		ShortName:   query,
		Type:        "place",
		Lat:         res.loc.Latitude,
		Lon:         res.loc.Longitude,
	}
	if len(res.addr) > 0 {
		a := res.addr[0]
		if a.FormattedAddress != "" {
			r.DisplayName = a.FormattedAddress
			r.ShortName = strings.TrimSpace(strings.Split(a.FormattedAddress, ",")[0])
		}
		r.Country = a.Country
		if a.Types != "" {
			r.Type = a.Types
		}
	}
	r.ViewAltitude = worldview.AltitudeForBBox(nil)
	return []worldview.GeoResult{r}, nil
}
