package providers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/worldview-aggregation/internal/worldview"
)

// CatalogProvider serves cameras listed in a local YAML file:
//
//	cameras:
//	  - name: Times Square
//	    lat: 40.758
//	    lon: -73.9855
//	    video_url: https://example.com/live.m3u8
type CatalogProvider struct {
	name string
	path string
}

func NewCatalogProvider(path string) *CatalogProvider {
	return &CatalogProvider{name: "catalog", path: path}
}

func (p *CatalogProvider) Name() string {
	return p.name
}

type catalogFile struct {
	Cameras []catalogCamera `yaml:"cameras"`
}

type catalogCamera struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Lat      float64 `yaml:"lat"`
	Lon      float64 `yaml:"lon"`
	Source   string  `yaml:"source"`
	ImageURL string  `yaml:"image_url"`
	VideoURL string  `yaml:"video_url"`
	Type     string  `yaml:"type"`
}

// catalogNamespace seeds deterministic IDs for entries without one.
var catalogNamespace = uuid.MustParse("6f1c0e1e-3a57-4c39-9d0b-5c1f3f4f8a21")

func (p *CatalogProvider) Fetch(ctx context.Context) ([]worldview.CCTVCamera, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return ParseCatalog(raw, p.name)
}

// ParseCatalog decodes catalog YAML. Entries without a usable position or URL
// are skipped.
func ParseCatalog(raw []byte, defaultSource string) ([]worldview.CCTVCamera, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}

	cams := make([]worldview.CCTVCamera, 0, len(f.Cameras))
	for _, c := range f.Cameras {
		if !worldview.ValidPosition(c.Lat, c.Lon) || (c.ImageURL == "" && c.VideoURL == "") {
			continue
		}
		id := c.ID
		if id == "" {
			key := fmt.Sprintf("%s|%f|%f", c.Name, c.Lat, c.Lon)
			id = uuid.NewSHA1(catalogNamespace, []byte(key)).String()
		}
		source := c.Source
		if source == "" {
			source = defaultSource
		}
		typ := worldview.StreamType(strings.ToLower(c.Type))
		if typ == "" {
			typ = detectStreamType(c.VideoURL, worldview.StreamImage)
		}
		cams = append(cams, worldview.CCTVCamera{
			ID:       id,
			Name:     strings.TrimSpace(c.Name),
			Lat:      c.Lat,
			Lon:      c.Lon,
			Source:   source,
			ImageURL: c.ImageURL,
			VideoURL: c.VideoURL,
			Type:     typ,
		})
	}
	return cams, nil
}
