package providers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	issLine1 = "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	issLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"
)

func TestParseTLE(t *testing.T) {
	badChecksum := issLine2[:68] + "0"
	data := strings.Join([]string{
		"ISS (ZARYA)",
		issLine1,
		issLine2,
		"BROKEN SAT",
		issLine1,
		badChecksum,
		"0 ISS COPY",
		issLine1 + "\r",
		issLine2,
		"",
	}, "\n")

	sats := ParseTLE([]byte(data))
	require.Len(t, sats, 2)
	assert.Equal(t, "ISS (ZARYA)", sats[0].Name)
	assert.Equal(t, "25544", sats[0].NoradID)
	assert.Equal(t, issLine1, sats[0].Line1)
	assert.Equal(t, issLine2, sats[0].Line2)
	assert.Equal(t, "ISS COPY", sats[1].Name)
}

func TestTLEChecksum(t *testing.T) {
	assert.Equal(t, 7, tleChecksum(issLine1))
	assert.Equal(t, 7, tleChecksum(issLine2))
	assert.True(t, validTLELine(issLine1, '1'))
	assert.False(t, validTLELine(issLine1, '2'))
	assert.False(t, validTLELine(issLine1[:60], '1'))
}

func TestCelesTrakFetch(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "stations", r.URL.Query().Get("GROUP"))
		assert.Equal(t, "tle", r.URL.Query().Get("FORMAT"))
		_, _ = w.Write([]byte("ISS (ZARYA)\n" + issLine1 + "\n" + issLine2 + "\n"))
	})

	p := NewCelesTrakProvider(srv.Client(), srv.URL, "stations", 0)
	sats, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, sats, 1)
	assert.Equal(t, "25544", sats[0].NoradID)
}
