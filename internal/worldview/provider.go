package worldview

import (
	"context"
)

// Provider abstracts one upstream source for a layer (e.g. OpenSky for
// flights, TfL for London cameras).
type Provider[T any] interface {
	Name() string
	Fetch(ctx context.Context) ([]T, error)
}

// StreamResolver looks up the playable stream of an on-demand camera.
type StreamResolver interface {
	ResolveStream(ctx context.Context, slug string) (StreamInfo, error)
}

// Geocoder turns a free-text place query into matches.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]GeoResult, error)
}

// SnapshotFetcher downloads a camera still image.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, rawURL string) (Snapshot, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc[T any] struct {
	ProviderName string
	Fn           func(ctx context.Context) ([]T, error)
}

func (p ProviderFunc[T]) Name() string { return p.ProviderName }

func (p ProviderFunc[T]) Fetch(ctx context.Context) ([]T, error) { return p.Fn(ctx) }
