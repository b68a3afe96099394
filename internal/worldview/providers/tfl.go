package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

// TfLJamCamProvider lists Transport for London traffic cameras.
type TfLJamCamProvider struct {
	name    string
	baseURL string
	appKey  string
	up      *upstream
}

func NewTfLJamCamProvider(client *http.Client, baseURL, appKey string) *TfLJamCamProvider {
	if baseURL == "" {
		baseURL = "https://api.tfl.gov.uk"
	}
	return &TfLJamCamProvider{
		name:    "london",
		baseURL: strings.TrimRight(baseURL, "/"),
		appKey:  appKey,
		up:      newUpstream("tfl", HTTPClientConfig{Client: client, Backoff: DefaultBackoff}),
	}
}

func (p *TfLJamCamProvider) Name() string {
	return p.name
}

type tflPlace struct {
	ID                   string  `json:"id"`
	CommonName           string  `json:"commonName"`
	Lat                  float64 `json:"lat"`
	Lon                  float64 `json:"lon"`
	AdditionalProperties []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"additionalProperties"`
}

func (p *TfLJamCamProvider) Fetch(ctx context.Context) ([]worldview.CCTVCamera, error) {
	u := p.baseURL + "/Place/Type/JamCam"
	if p.appKey != "" {
		u += "?" + url.Values{"app_key": {p.appKey}}.Encode()
	}

	var places []tflPlace
	if err := p.up.getJSON(ctx, u, nil, &places); err != nil {
		return nil, err
	}

	cams := make([]worldview.CCTVCamera, 0, len(places))
	for _, pl := range places {
		if pl.ID == "" || !worldview.ValidPosition(pl.Lat, pl.Lon) {
			continue
		}
		props := make(map[string]string, len(pl.AdditionalProperties))
		for _, ap := range pl.AdditionalProperties {
			props[ap.Key] = ap.Value
		}
		if strings.EqualFold(props["available"], "false") {
			continue
		}

		cam := worldview.CCTVCamera{
			ID:       pl.ID,
			Name:     strings.TrimSpace(pl.CommonName),
			Lat:      pl.Lat,
			Lon:      pl.Lon,
			Source:   p.name,
			ImageURL: props["imageUrl"],
			VideoURL: props["videoUrl"],
		}
		cam.Type = detectStreamType(cam.VideoURL, worldview.StreamImage)
		if cam.ImageURL == "" && cam.VideoURL == "" {
			continue
		}
		cams = append(cams, cam)
	}
	return cams, nil
}
