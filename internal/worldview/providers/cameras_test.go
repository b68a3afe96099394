package providers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

func TestTfLJamCamFetch(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Place/Type/JamCam", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("app_key"))
		_, _ = w.Write([]byte(`[
			{"id":"JamCams_00001.01251","commonName":"Strand / Savoy St","lat":51.5104,"lon":-0.1203,
			 "additionalProperties":[
				{"key":"available","value":"true"},
				{"key":"imageUrl","value":"https://s3-eu-west-1.amazonaws.com/jamcams.tfl.gov.uk/00001.01251.jpg"},
				{"key":"videoUrl","value":"https://s3-eu-west-1.amazonaws.com/jamcams.tfl.gov.uk/00001.01251.mp4"}]},
			{"id":"JamCams_00001.09999","commonName":"Offline","lat":51.5,"lon":-0.1,
			 "additionalProperties":[{"key":"available","value":"false"},{"key":"imageUrl","value":"https://x/y.jpg"}]},
			{"id":"JamCams_00001.00000","commonName":"No media","lat":51.5,"lon":-0.1,"additionalProperties":[]}
		]`))
	})

	p := NewTfLJamCamProvider(srv.Client(), srv.URL, "secret")
	cams, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, cams, 1)
	assert.Equal(t, "london", cams[0].Source)
	assert.Equal(t, "Strand / Savoy St", cams[0].Name)
	assert.Equal(t, worldview.StreamMP4, cams[0].Type)
	assert.Contains(t, cams[0].ImageURL, ".jpg")
}

func TestNY511Fetch(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getcameras", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`[
			{"ID":"Skyline-10012","Name":"I-495 at Queens Midtown Tunnel","Latitude":40.7445,"Longitude":-73.9496,"Url":"https://511ny.org/map/Cctv/10012","VideoUrl":"https://s53.nysdot.skyvdn.com/rtplive/R11_015/playlist.m3u8","Disabled":false,"Blocked":false},
			{"ID":"Skyline-10013","Name":"Disabled","Latitude":40.7,"Longitude":-73.9,"Url":"https://511ny.org/map/Cctv/10013","Disabled":true}
		]`))
	})

	p := NewNY511Provider(srv.Client(), srv.URL, "k")
	cams, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, cams, 1)
	assert.Equal(t, "511ny-Skyline-10012", cams[0].ID)
	assert.Equal(t, "nyc", cams[0].Source)
	assert.Equal(t, worldview.StreamHLS, cams[0].Type)
}

func TestNY511RequiresKey(t *testing.T) {
	_, err := NewNY511Provider(http.DefaultClient, "", "").Fetch(context.Background())
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestOpenWebcamDBFetchPages(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"data":[
				{"slug":"times-square","title":"Times Square","latitude":40.758,"longitude":-73.9855,"thumbnail_url":"https://openwebcamdb.com/t/1.jpg"},
				{"slug":"","title":"no slug","latitude":1,"longitude":1}
			],"meta":{"last_page":2}}`))
		case "2":
			_, _ = w.Write([]byte(`{"data":[
				{"slug":"shibuya","title":"Shibuya Crossing","latitude":35.6595,"longitude":139.7005}
			],"meta":{"last_page":2}}`))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})

	p := NewOpenWebcamDBProvider(srv.Client(), srv.URL, "k", 0)
	p.perPage = 2
	cams, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, cams, 2)
	assert.Equal(t, "owdb-times-square", cams[0].ID)
	assert.Equal(t, "times-square", cams[0].Slug)
	assert.Equal(t, "shibuya", cams[1].Slug)
}

func TestOpenWebcamDBResolveStream(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/webcams/times-square":
			_, _ = w.Write([]byte(`{"data":{"stream_url":"https://www.youtube.com/embed/abc","stream_type":""}}`))
		case "/webcams/shibuya":
			_, _ = w.Write([]byte(`{"data":{"stream_url":"https://cdn.example/live","stream_type":"HLS"}}`))
		case "/webcams/dark":
			_, _ = w.Write([]byte(`{"data":{}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	p := NewOpenWebcamDBProvider(srv.Client(), srv.URL, "k", 1)
	ctx := context.Background()

	info, err := p.ResolveStream(ctx, "times-square")
	require.NoError(t, err)
	assert.Equal(t, worldview.StreamYouTube, info.Type)

	info, err = p.ResolveStream(ctx, "shibuya")
	require.NoError(t, err)
	assert.Equal(t, worldview.StreamHLS, info.Type)
	assert.Equal(t, "https://cdn.example/live", info.URL)

	_, err = p.ResolveStream(ctx, "dark")
	assert.Error(t, err)

	_, err = p.ResolveStream(ctx, "missing")
	assert.ErrorIs(t, err, errUnexpected)
}

const catalogYAML = `
cameras:
  - id: ts-1
    name: Times Square
    lat: 40.758
    lon: -73.9855
    video_url: https://example.com/live/index.m3u8
  - name: Abbey Road
    source: london
    lat: 51.532
    lon: -0.1779
    image_url: https://example.com/abbey.jpg
  - name: No position
    image_url: https://example.com/none.jpg
`

func TestParseCatalog(t *testing.T) {
	cams, err := ParseCatalog([]byte(catalogYAML), "catalog")
	require.NoError(t, err)
	require.Len(t, cams, 2)

	assert.Equal(t, "ts-1", cams[0].ID)
	assert.Equal(t, "catalog", cams[0].Source)
	assert.Equal(t, worldview.StreamHLS, cams[0].Type)

	assert.Equal(t, "london", cams[1].Source)
	assert.Equal(t, worldview.StreamImage, cams[1].Type)
	assert.NotEmpty(t, cams[1].ID)

	again, err := ParseCatalog([]byte(catalogYAML), "catalog")
	require.NoError(t, err)
	assert.Equal(t, cams[1].ID, again[1].ID, "generated ids are stable")
}

func TestCatalogProviderFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cameras.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))

	cams, err := NewCatalogProvider(path).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, cams, 2)

	_, err = NewCatalogProvider(filepath.Join(t.TempDir(), "missing.yaml")).Fetch(context.Background())
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("cameras: [unterminated"), "catalog")
	assert.Error(t, err)
}

func TestOpenWebcamDBUnknownSlugsDoNotBreakListing(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/webcams":
			_, _ = w.Write([]byte(`{"data":[{"slug":"shibuya","title":"Shibuya Crossing","latitude":35.6595,"longitude":139.7005}],"meta":{"last_page":1}}`))
		case "/webcams/shibuya":
			_, _ = w.Write([]byte(`{"data":{"stream_url":"https://cdn.example/live.m3u8"}}`))
		default:
			http.NotFound(w, r)
		}
	})

	p := NewOpenWebcamDBProvider(srv.Client(), srv.URL, "k", 1)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := p.ResolveStream(ctx, "no-such-cam")
		require.ErrorIs(t, err, errUnexpected)
	}

	info, err := p.ResolveStream(ctx, "shibuya")
	require.NoError(t, err)
	assert.Equal(t, worldview.StreamHLS, info.Type)

	cams, err := p.Fetch(ctx)
	require.NoError(t, err)
	assert.Len(t, cams, 1)
	assert.NotSame(t, p.up, p.streamUp)
}
