package providers

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

// OpenSkyProvider fetches global state vectors from the OpenSky Network.
type OpenSkyProvider struct {
	name     string
	baseURL  string
	username string
	password string
	limit    int
	up       *upstream
}

func NewOpenSkyProvider(client *http.Client, baseURL, username, password string, limit int) *OpenSkyProvider {
	if baseURL == "" {
		baseURL = "https://opensky-network.org/api"
	}
	return &OpenSkyProvider{
		name:     "opensky",
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		limit:    limit,
		up:       newUpstream("opensky", HTTPClientConfig{Client: client, Backoff: DefaultBackoff}),
	}
}

func (p *OpenSkyProvider) Name() string {
	return p.name
}

// State vector indices, see https://openskynetwork.github.io/opensky-api/rest.html.
const (
	osICAO24 = iota
	osCallsign
	osOriginCountry
	osTimePosition
	osLastContact
	osLongitude
	osLatitude
	osBaroAltitude
	osOnGround
	osVelocity
	osTrueTrack
	osVerticalRate
	osSensors
	osGeoAltitude
	osSquawk
)

func (p *OpenSkyProvider) Fetch(ctx context.Context) ([]worldview.FlightState, error) {
	header := http.Header{}
	if p.username != "" {
		creds := base64.StdEncoding.EncodeToString([]byte(p.username + ":" + p.password))
		header.Set("Authorization", "Basic "+creds)
	}

	var payload struct {
		Time   int64           `json:"time"`
		States [][]interface{} `json:"states"`
	}
	if err := p.up.getJSON(ctx, p.baseURL+"/states/all", header, &payload); err != nil {
		return nil, err
	}

	flights := make([]worldview.FlightState, 0, len(payload.States))
	for _, s := range payload.States {
		f, ok := parseStateVector(s)
		if !ok {
			continue
		}
		flights = append(flights, f)
	}
	return worldview.Truncate(flights, p.limit), nil
}

func parseStateVector(s []interface{}) (worldview.FlightState, bool) {
	if len(s) < osSquawk {
		return worldview.FlightState{}, false
	}
	lat, okLat := asFloat(s[osLatitude])
	lon, okLon := asFloat(s[osLongitude])
	if !okLat || !okLon || !worldview.ValidPosition(lat, lon) {
		return worldview.FlightState{}, false
	}

	icao, _ := s[osICAO24].(string)
	if icao == "" {
		return worldview.FlightState{}, false
	}

	f := worldview.FlightState{
		ICAO24:   icao,
		Lat:      lat,
		Lon:      lon,
		OnGround: asBool(s[osOnGround]),
	}
	f.Callsign, _ = s[osCallsign].(string)
	f.Callsign = strings.TrimSpace(f.Callsign)
	f.OriginCountry, _ = s[osOriginCountry].(string)

	// Prefer barometric altitude, fall back to geometric.
	if alt, ok := asFloat(s[osBaroAltitude]); ok {
		f.Altitude = alt
	} else if alt, ok := asFloat(s[osGeoAltitude]); ok {
		f.Altitude = alt
	}
	f.Velocity, _ = asFloat(s[osVelocity])
	f.Heading, _ = asFloat(s[osTrueTrack])
	f.VerticalRate, _ = asFloat(s[osVerticalRate])
	if len(s) > osSquawk {
		f.Squawk, _ = s[osSquawk].(string)
	}
	return f, true
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

var _ worldview.Provider[worldview.FlightState] = (*OpenSkyProvider)(nil)
