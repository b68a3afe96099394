package providers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestADSBMilitaryFetch(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mil", r.URL.Path)
		_, _ = w.Write([]byte(`{"ac":[
			{"hex":"AE1234","flight":"RCH871  ","t":"C17","lat":38.9,"lon":-77.0,"alt_baro":30000,"gs":450,"track":90,"baro_rate":-1000,"squawk":"4521"},
			{"hex":"~43c6f1","t":"A400","lat":51.7,"lon":-1.5,"alt_baro":"ground","alt_geom":350,"gs":0},
			{"hex":"ae5555","flight":"NOPOS"},
			{"hex":"ae6666","lat":0,"lon":0,"alt_baro":1000}
		]}`))
	})

	p := NewADSBMilitaryProvider(srv.Client(), srv.URL, 0)
	flights, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, flights, 2)

	rch := flights[0]
	assert.Equal(t, "ae1234", rch.ICAO24)
	assert.Equal(t, "RCH871", rch.Callsign)
	assert.Equal(t, "C17", rch.AircraftType)
	assert.True(t, rch.Military)
	assert.False(t, rch.OnGround)
	assert.InDelta(t, 9144, rch.Altitude, 0.01)
	assert.InDelta(t, 231.5, rch.Velocity, 0.01)
	assert.InDelta(t, -5.08, rch.VerticalRate, 0.001)

	grounded := flights[1]
	assert.Equal(t, "43c6f1", grounded.ICAO24)
	assert.Equal(t, "43c6f1", grounded.Callsign, "callsign falls back to the ICAO address")
	assert.True(t, grounded.OnGround)
	assert.InDelta(t, 106.68, grounded.Altitude, 0.01)
}

func TestADSBAltitudeUnmarshal(t *testing.T) {
	var a adsbAltitude
	require.NoError(t, a.UnmarshalJSON([]byte(`"ground"`)))
	assert.True(t, a.OnGround)

	a = adsbAltitude{}
	require.NoError(t, a.UnmarshalJSON([]byte(`null`)))
	assert.False(t, a.Known)

	a = adsbAltitude{}
	require.NoError(t, a.UnmarshalJSON([]byte(`12500`)))
	assert.True(t, a.Known)
	assert.Equal(t, 12500.0, a.Feet)
}
