package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

// NY511Provider lists New York State 511 traffic cameras.
type NY511Provider struct {
	name    string
	baseURL string
	apiKey  string
	up      *upstream
}

func NewNY511Provider(client *http.Client, baseURL, apiKey string) *NY511Provider {
	if baseURL == "" {
		baseURL = "https://511ny.org/api"
	}
	return &NY511Provider{
		name:    "nyc",
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		up:      newUpstream("511ny", HTTPClientConfig{Client: client, Backoff: DefaultBackoff}),
	}
}

func (p *NY511Provider) Name() string {
	return p.name
}

type ny511Camera struct {
	ID        string  `json:"ID"`
	Name      string  `json:"Name"`
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
	URL       string  `json:"Url"`
	VideoURL  string  `json:"VideoUrl"`
	Disabled  bool    `json:"Disabled"`
	Blocked   bool    `json:"Blocked"`
}

func (p *NY511Provider) Fetch(ctx context.Context) ([]worldview.CCTVCamera, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("511ny: %w: api key missing", errNotConfigured)
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("format", "json")

	var raw []ny511Camera
	if err := p.up.getJSON(ctx, p.baseURL+"/getcameras?"+values.Encode(), nil, &raw); err != nil {
		return nil, err
	}

	cams := make([]worldview.CCTVCamera, 0, len(raw))
	for _, c := range raw {
		if c.ID == "" || c.Disabled || c.Blocked || !worldview.ValidPosition(c.Latitude, c.Longitude) {
			continue
		}
		if c.URL == "" && c.VideoURL == "" {
			continue
		}
		cams = append(cams, worldview.CCTVCamera{
			ID:       "511ny-" + c.ID,
			Name:     strings.TrimSpace(c.Name),
			Lat:      c.Latitude,
			Lon:      c.Longitude,
			Source:   p.name,
			ImageURL: c.URL,
			VideoURL: c.VideoURL,
			Type:     detectStreamType(c.VideoURL, worldview.StreamImage),
		})
	}
	return cams, nil
}
