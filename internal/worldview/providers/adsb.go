package providers

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

const (
	feetToMeters = 0.3048
	knotsToMS    = 0.514444
	fpmToMS      = 0.00508
)

// ADSBMilitaryProvider fetches military aircraft from an ADS-B Exchange
// compatible v2 API (adsb.lol, airplanes.live).
type ADSBMilitaryProvider struct {
	name    string
	baseURL string
	limit   int
	up      *upstream
}

func NewADSBMilitaryProvider(client *http.Client, baseURL string, limit int) *ADSBMilitaryProvider {
	if baseURL == "" {
		baseURL = "https://api.adsb.lol/v2"
	}
	return &ADSBMilitaryProvider{
		name:    "adsb-mil",
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   limit,
		up:      newUpstream("adsb-mil", HTTPClientConfig{Client: client, Backoff: DefaultBackoff}),
	}
}

func (p *ADSBMilitaryProvider) Name() string {
	return p.name
}

// adsbAltitude is either a number of feet or the string "ground".
type adsbAltitude struct {
	Feet     float64
	OnGround bool
	Known    bool
}

func (a *adsbAltitude) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		a.OnGround = strings.EqualFold(s, "ground")
		a.Known = a.OnGround
		return nil
	}
	if err := json.Unmarshal(b, &a.Feet); err != nil {
		return err
	}
	a.Known = true
	return nil
}

type adsbAircraft struct {
	Hex      string       `json:"hex"`
	Flight   string       `json:"flight"`
	Type     string       `json:"t"`
	Lat      *float64     `json:"lat"`
	Lon      *float64     `json:"lon"`
	AltBaro  adsbAltitude `json:"alt_baro"`
	AltGeom  *float64     `json:"alt_geom"`
	GS       float64      `json:"gs"`
	Track    float64      `json:"track"`
	BaroRate float64      `json:"baro_rate"`
	Squawk   string       `json:"squawk"`
}

func (p *ADSBMilitaryProvider) Fetch(ctx context.Context) ([]worldview.FlightState, error) {
	var payload struct {
		AC []adsbAircraft `json:"ac"`
	}
	if err := p.up.getJSON(ctx, p.baseURL+"/mil", nil, &payload); err != nil {
		return nil, err
	}

	flights := make([]worldview.FlightState, 0, len(payload.AC))
	for _, ac := range payload.AC {
		if ac.Hex == "" || ac.Lat == nil || ac.Lon == nil || !worldview.ValidPosition(*ac.Lat, *ac.Lon) {
			continue
		}

		f := worldview.FlightState{
			ICAO24:       strings.ToLower(strings.TrimPrefix(ac.Hex, "~")),
			Callsign:     strings.TrimSpace(ac.Flight),
			Lat:          *ac.Lat,
			Lon:          *ac.Lon,
			Velocity:     ac.GS * knotsToMS,
			Heading:      ac.Track,
			VerticalRate: ac.BaroRate * fpmToMS,
			OnGround:     ac.AltBaro.OnGround,
			Squawk:       ac.Squawk,
			AircraftType: ac.Type,
			Military:     true,
		}
		switch {
		case ac.AltBaro.Known && !ac.AltBaro.OnGround:
			f.Altitude = ac.AltBaro.Feet * feetToMeters
		case ac.AltGeom != nil:
			f.Altitude = *ac.AltGeom * feetToMeters
		}
		if f.Callsign == "" {
			f.Callsign = f.ICAO24
		}
		flights = append(flights, f)
	}
	return worldview.Truncate(flights, p.limit), nil
}
