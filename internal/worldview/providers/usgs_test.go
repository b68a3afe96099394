package providers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUSGSFetch(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[
			{"id":"us7000abcd","properties":{"mag":6.2,"place":"120 km E of Miyako, Japan","time":1700000000000,"url":"https://earthquake.usgs.gov/earthquakes/eventpage/us7000abcd","tsunami":1},"geometry":{"type":"Point","coordinates":[143.3,39.6,35.2]}},
			{"id":"ci40000000","properties":{"mag":null,"place":"somewhere","time":1700000000000},"geometry":{"coordinates":[-117.5,35.7,8.1]}},
			{"id":"nc70000000","properties":{"mag":1.1,"place":"2D only","time":1700000000000},"geometry":{"coordinates":[-122.8,38.8]}}
		]}`))
	})

	p := NewUSGSProvider(srv.Client(), srv.URL, 0)
	quakes, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, quakes, 1)

	q := quakes[0]
	assert.Equal(t, "us7000abcd", q.ID)
	assert.Equal(t, 6.2, q.Mag)
	assert.Equal(t, 39.6, q.Lat)
	assert.Equal(t, 143.3, q.Lon)
	assert.Equal(t, 35.2, q.Depth)
	assert.True(t, q.Tsunami)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), q.Time)
}
