package providers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/worldview-aggregation/internal/logging"
	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

func TestSnapshotProxy(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cam.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpegdata"))
		case "/untyped":
			_, _ = w.Write(png)
		default:
			_, _ = w.Write(make([]byte, 4096))
		}
	})
	host := mustHost(t, srv.URL)

	p := NewSnapshotProxy(srv.Client(), []string{" " + host + " "}, 1024)
	ctx := context.Background()

	snap, err := p.FetchSnapshot(ctx, srv.URL+"/cam.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", snap.ContentType)
	assert.Equal(t, []byte("jpegdata"), snap.Body)

	snap, err = p.FetchSnapshot(ctx, srv.URL+"/untyped")
	require.NoError(t, err)
	assert.Equal(t, "image/png", snap.ContentType)

	_, err = p.FetchSnapshot(ctx, srv.URL+"/huge")
	assert.Error(t, err)

	_, err = p.FetchSnapshot(ctx, "https://evil.example.com/cam.jpg")
	assert.ErrorIs(t, err, worldview.ErrHostNotAllowed)

	_, err = p.FetchSnapshot(ctx, "file:///etc/passwd")
	assert.ErrorIs(t, err, worldview.ErrHostNotAllowed)
}

func TestSnapshotHostAllowed(t *testing.T) {
	p := NewSnapshotProxy(http.DefaultClient, []string{"tfl.gov.uk"}, 0)
	assert.True(t, p.hostAllowed("tfl.gov.uk"))
	assert.True(t, p.hostAllowed("JamCams.TfL.gov.uk"))
	assert.False(t, p.hostAllowed("nottfl.gov.uk"))
	assert.False(t, p.hostAllowed("tfl.gov.uk.evil.com"))
}

func mustHost(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Hostname()
}

func TestNominatimSearch(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "paris", r.URL.Query().Get("q"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[
			{"display_name":"Paris, Ile-de-France, France","name":"Paris","type":"city","class":"boundary","lat":"48.8588897","lon":"2.3200410","boundingbox":["48.8155755","48.9021560","2.2241220","2.4697602"],"address":{"country":"France"}},
			{"display_name":"Paris, Lamar County, Texas, United States","lat":"33.6617962","lon":"-95.555513","boundingbox":["33.6","33.7","-95.6","bad"]},
			{"display_name":"Broken","lat":"x","lon":"1"}
		]`))
	})

	g := NewNominatimGeocoder(srv.Client(), srv.URL, "test-agent")
	results, err := g.Search(context.Background(), "paris", 3)
	require.NoError(t, err)
	require.Len(t, results, 2)

	fr := results[0]
	assert.Equal(t, "Paris", fr.ShortName)
	assert.Equal(t, "France", fr.Country)
	assert.Equal(t, "city", fr.Type)
	require.NotNil(t, fr.BoundingBox)
	assert.Equal(t, 48.8155755, fr.BoundingBox[0])
	assert.InDelta(t, 0.2456382*111_000*2.5, fr.ViewAltitude, 1)

	tx := results[1]
	assert.Equal(t, "Paris", tx.ShortName)
	assert.Equal(t, "United States", tx.Country)
	assert.Equal(t, "place", tx.Type)
	assert.Nil(t, tx.BoundingBox)
	assert.Equal(t, 200_000.0, tx.ViewAltitude)
}

func TestGoogleGeocoderSearch(t *testing.T) {
	g := NewGoogleGeocoder("key")
	g.geocode = func(a geocoder.Address) (geocoder.Location, error) {
		assert.Equal(t, "Eiffel Tower", a.Street)
		return geocoder.Location{Latitude: 48.8584, Longitude: 2.2945}, nil
	}
	g.reverse = func(geocoder.Location) ([]geocoder.Address, error) {
		return []geocoder.Address{{
			FormattedAddress: "Champ de Mars, 5 Av. Anatole France, 75007 Paris, France",
			Country:          "France",
		}}, nil
	}

	results, err := g.Search(context.Background(), "Eiffel Tower", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Champ de Mars", results[0].ShortName)
	assert.Equal(t, "France", results[0].Country)
	assert.Equal(t, 48.8584, results[0].Lat)
}

func TestGoogleGeocoderErrors(t *testing.T) {
	_, err := NewGoogleGeocoder("").Search(context.Background(), "x", 1)
	assert.ErrorIs(t, err, errNotConfigured)

	g := NewGoogleGeocoder("key")
	g.geocode = func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{}, errors.New("ZERO_RESULTS")
	}
	_, err = g.Search(context.Background(), "x", 1)
	assert.Error(t, err)

	g.geocode = func(geocoder.Address) (geocoder.Location, error) {
		time.Sleep(time.Second)
		return geocoder.Location{}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = g.Search(ctx, "x", 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSnapshotProxyRefusesRedirectOffAllowList(t *testing.T) {
	internal := serve(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("SECRET-INTERNAL-METADATA"))
	})
	// The camera host is reached as 127.0.0.1; the redirect target as localhost.
	target := "http://localhost:" + mustPort(t, internal.URL) + "/latest/meta-data"
	camera := serve(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cam.jpg":
			http.Redirect(w, r, target, http.StatusFound)
		case "/moved.jpg":
			http.Redirect(w, r, "/cam-new.jpg", http.StatusMovedPermanently)
		default:
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpegdata"))
		}
	})

	client := camera.Client()
	p := NewSnapshotProxy(client, []string{mustHost(t, camera.URL)}, 1024)
	ctx := context.Background()

	snap, err := p.FetchSnapshot(ctx, camera.URL+"/cam.jpg")
	require.ErrorIs(t, err, worldview.ErrHostNotAllowed)
	assert.Empty(t, snap.Body)

	snap, err = p.FetchSnapshot(ctx, camera.URL+"/moved.jpg")
	require.NoError(t, err, "redirects within the allow-list are followed")
	assert.Equal(t, []byte("jpegdata"), snap.Body)

	assert.Nil(t, client.CheckRedirect, "the caller's client is left untouched")
}

func TestSnapshotProxyClientErrorsKeepBreakerClosed(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/good.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpegdata"))
	})

	p := NewSnapshotProxy(srv.Client(), []string{mustHost(t, srv.URL)}, 1024)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := p.FetchSnapshot(ctx, srv.URL+"/nope.jpg")
		require.ErrorIs(t, err, errUnexpected)
	}

	snap, err := p.FetchSnapshot(ctx, srv.URL+"/good.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpegdata"), snap.Body)
}

func mustPort(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Port()
}

func TestGoogleGeocoderLogsReverseFailure(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{}) })

	g := NewGoogleGeocoder("key")
	g.geocode = func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{Latitude: 35.6762, Longitude: 139.6503}, nil
	}
	g.reverse = func(geocoder.Location) ([]geocoder.Address, error) {
		return nil, errors.New("OVER_QUERY_LIMIT")
	}

	results, err := g.Search(context.Background(), "Tokyo", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Tokyo", results[0].DisplayName)
	assert.Contains(t, buf.String(), "google reverse geocoding failed")
	assert.Contains(t, buf.String(), "OVER_QUERY_LIMIT")
}
