package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

// OpenWebcamDBProvider lists public webcams from OpenWebcamDB and resolves
// their stream URLs on demand; the directory listing carries no stream URL.
type OpenWebcamDBProvider struct {
	name     string
	baseURL  string
	apiKey   string
	perPage  int
	maxPages int
	up       *upstream

	// Stream lookups are keyed by client-supplied slugs and use their own
	// breaker, apart from the directory listing.
	streamUp *upstream
}

func NewOpenWebcamDBProvider(client *http.Client, baseURL, apiKey string, maxPages int) *OpenWebcamDBProvider {
	if baseURL == "" {
		baseURL = "https://openwebcamdb.com/api/v1"
	}
	if maxPages <= 0 {
		maxPages = 5
	}
	return &OpenWebcamDBProvider{
		name:     "openwebcamdb",
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		perPage:  100,
		maxPages: maxPages,
		up:       newUpstream("openwebcamdb", HTTPClientConfig{Client: client, Backoff: DefaultBackoff}),
		streamUp: newUpstream("openwebcamdb-stream", HTTPClientConfig{Client: client, Backoff: DefaultBackoff}),
	}
}

func (p *OpenWebcamDBProvider) Name() string {
	return p.name
}

func (p *OpenWebcamDBProvider) header() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	if p.apiKey != "" {
		h.Set("Authorization", "Bearer "+p.apiKey)
	}
	return h
}

type owdbWebcam struct {
	Slug      string  `json:"slug"`
	Title     string  `json:"title"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Thumbnail string  `json:"thumbnail_url"`
}

func (p *OpenWebcamDBProvider) Fetch(ctx context.Context) ([]worldview.CCTVCamera, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openwebcamdb: %w: api key missing", errNotConfigured)
	}

	var cams []worldview.CCTVCamera
	for page := 1; page <= p.maxPages; page++ {
		values := url.Values{}
		values.Set("page", strconv.Itoa(page))
		values.Set("per_page", strconv.Itoa(p.perPage))

		var payload struct {
			Data []owdbWebcam `json:"data"`
			Meta struct {
				LastPage int `json:"last_page"`
			} `json:"meta"`
		}
		if err := p.up.getJSON(ctx, p.baseURL+"/webcams?"+values.Encode(), p.header(), &payload); err != nil {
			if page > 1 {
				// Keep what the earlier pages returned.
				break
			}
			return nil, err
		}

		for _, w := range payload.Data {
			if w.Slug == "" || !worldview.ValidPosition(w.Latitude, w.Longitude) {
				continue
			}
			cams = append(cams, worldview.CCTVCamera{
				ID:       "owdb-" + w.Slug,
				Name:     strings.TrimSpace(w.Title),
				Lat:      w.Latitude,
				Lon:      w.Longitude,
				Source:   p.name,
				ImageURL: w.Thumbnail,
				Type:     worldview.StreamImage,
				Slug:     w.Slug,
			})
		}

		if len(payload.Data) < p.perPage || (payload.Meta.LastPage > 0 && page >= payload.Meta.LastPage) {
			break
		}
	}
	return cams, nil
}

// ResolveStream looks up the playable stream of a webcam.
func (p *OpenWebcamDBProvider) ResolveStream(ctx context.Context, slug string) (worldview.StreamInfo, error) {
	if p.apiKey == "" {
		return worldview.StreamInfo{}, fmt.Errorf("openwebcamdb: %w: api key missing", errNotConfigured)
	}

	var payload struct {
		Data struct {
			StreamURL  string `json:"stream_url"`
			StreamType string `json:"stream_type"`
		} `json:"data"`
	}
	u := p.baseURL + "/webcams/" + url.PathEscape(slug)
	if err := p.streamUp.getJSON(ctx, u, p.header(), &payload); err != nil {
		return worldview.StreamInfo{}, err
	}
	if payload.Data.StreamURL == "" {
		return worldview.StreamInfo{}, fmt.Errorf("openwebcamdb: webcam %q has no stream", slug)
	}

	typ := worldview.StreamType(strings.ToLower(payload.Data.StreamType))
	switch typ {
	case worldview.StreamHLS, worldview.StreamMP4, worldview.StreamYouTube:
	default:
		typ = detectStreamType(payload.Data.StreamURL, worldview.StreamHLS)
	}
	return worldview.StreamInfo{URL: payload.Data.StreamURL, Type: typ}, nil
}
