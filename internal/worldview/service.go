package worldview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/i474232898/worldview-aggregation/internal/logging"
	"github.com/i474232898/worldview-aggregation/internal/metrics"
	"github.com/i474232898/worldview-aggregation/internal/store"
)

var (
	ErrUnknownLayer  = errors.New("unknown layer")
	ErrNotConfigured = errors.New("not configured")
	ErrEmptyKey      = errors.New("lookup key is empty")

	// ErrHostNotAllowed is returned for snapshot URLs outside the allow-list.
	ErrHostNotAllowed = errors.New("host not allowed")
)

// Feeds bundles the per-layer caches. A nil feed disables its layer.
type Feeds struct {
	Flights     *Feed[FlightState]
	Military    *Feed[FlightState]
	Earthquakes *Feed[EarthquakeFeature]
	Satellites  *Feed[SatelliteRecord]
	Cameras     *Feed[CCTVCamera]
}

// Service answers dashboard queries from the layer feeds and the keyed
// lookup caches.
type Service struct {
	feeds Feeds

	streams     StreamResolver
	streamCache *store.MemoryStore[StreamInfo]

	geocoders []Geocoder
	geoCache  *store.MemoryStore[[]GeoResult]
	geoLimit  int

	snapshots     SnapshotFetcher
	snapshotCache *store.MemoryStore[Snapshot]

	lookupTimeout time.Duration
	lookups       singleflight.Group
}

// Option configures optional lookups on a Service.
type Option func(*Service)

func WithStreamResolver(r StreamResolver, cache *store.MemoryStore[StreamInfo]) Option {
	return func(s *Service) {
		s.streams = r
		s.streamCache = cache
	}
}

// WithGeocoders sets the geocoders tried in order until one returns matches.
func WithGeocoders(cache *store.MemoryStore[[]GeoResult], limit int, geocoders ...Geocoder) Option {
	return func(s *Service) {
		s.geocoders = geocoders
		s.geoCache = cache
		s.geoLimit = limit
	}
}

func WithSnapshots(f SnapshotFetcher, cache *store.MemoryStore[Snapshot]) Option {
	return func(s *Service) {
		s.snapshots = f
		s.snapshotCache = cache
	}
}

func WithLookupTimeout(d time.Duration) Option {
	return func(s *Service) { s.lookupTimeout = d }
}

// NewService creates a new Service.
func NewService(feeds Feeds, opts ...Option) *Service {
	s := &Service{
		feeds:         feeds,
		geoLimit:      8,
		lookupTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func filtered[T any](ctx context.Context, feed *Feed[T], layer Layer, apply func([]T) []T) (Result[T], CacheStatus, error) {
	if feed == nil {
		return Result[T]{}, "", fmt.Errorf("%s: %w", layer, ErrNotConfigured)
	}
	res, status, err := feed.Get(ctx)
	if err != nil {
		return Result[T]{}, "", err
	}
	res.Items = apply(res.Items)
	return res, status, nil
}

func (s *Service) Flights(ctx context.Context, q FlightQuery) (Result[FlightState], CacheStatus, error) {
	return filtered(ctx, s.feeds.Flights, LayerFlights, q.apply)
}

func (s *Service) Military(ctx context.Context, q FlightQuery) (Result[FlightState], CacheStatus, error) {
	return filtered(ctx, s.feeds.Military, LayerMilitary, q.apply)
}

func (s *Service) Earthquakes(ctx context.Context, q EarthquakeQuery) (Result[EarthquakeFeature], CacheStatus, error) {
	return filtered(ctx, s.feeds.Earthquakes, LayerEarthquakes, q.apply)
}

func (s *Service) Satellites(ctx context.Context, q SatelliteQuery) (Result[SatelliteRecord], CacheStatus, error) {
	return filtered(ctx, s.feeds.Satellites, LayerSatellites, q.apply)
}

func (s *Service) Cameras(ctx context.Context, q CameraQuery) (Result[CCTVCamera], CacheStatus, error) {
	return filtered(ctx, s.feeds.Cameras, LayerCCTV, q.apply)
}

// Layer returns the unfiltered items of a layer.
func (s *Service) Layer(ctx context.Context, layer Layer) (interface{}, CacheStatus, error) {
	switch layer {
	case LayerFlights:
		return unwrap(s.Flights(ctx, FlightQuery{}))
	case LayerMilitary:
		return unwrap(s.Military(ctx, FlightQuery{}))
	case LayerEarthquakes:
		return unwrap(s.Earthquakes(ctx, EarthquakeQuery{}))
	case LayerSatellites:
		return unwrap(s.Satellites(ctx, SatelliteQuery{}))
	case LayerCCTV:
		return unwrap(s.Cameras(ctx, CameraQuery{}))
	}
	return nil, "", fmt.Errorf("%w: %q", ErrUnknownLayer, layer)
}

func unwrap[T any](res Result[T], status CacheStatus, err error) (interface{}, CacheStatus, error) {
	if err != nil {
		return nil, "", err
	}
	return res.Items, status, nil
}

// Refresh forces a fetch of one layer, keeping the last good data on failure.
func (s *Service) Refresh(ctx context.Context, layer Layer) error {
	var err error
	switch layer {
	case LayerFlights:
		err = refresh(ctx, s.feeds.Flights)
	case LayerMilitary:
		err = refresh(ctx, s.feeds.Military)
	case LayerEarthquakes:
		err = refresh(ctx, s.feeds.Earthquakes)
	case LayerSatellites:
		err = refresh(ctx, s.feeds.Satellites)
	case LayerCCTV:
		err = refresh(ctx, s.feeds.Cameras)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLayer, layer)
	}
	if err != nil {
		return fmt.Errorf("refresh %s: %w", layer, err)
	}
	return nil
}

func refresh[T any](ctx context.Context, feed *Feed[T]) error {
	if feed == nil {
		return ErrNotConfigured
	}
	return feed.Refresh(ctx)
}

// Enabled reports whether a layer has a feed.
func (s *Service) Enabled(layer Layer) bool {
	switch layer {
	case LayerFlights:
		return s.feeds.Flights != nil
	case LayerMilitary:
		return s.feeds.Military != nil
	case LayerEarthquakes:
		return s.feeds.Earthquakes != nil
	case LayerSatellites:
		return s.feeds.Satellites != nil
	case LayerCCTV:
		return s.feeds.Cameras != nil
	}
	return false
}

// Stats returns the cache state of every enabled layer.
func (s *Service) Stats() []LayerStats {
	var out []LayerStats
	if f := s.feeds.Flights; f != nil {
		out = append(out, f.Stats())
	}
	if f := s.feeds.Military; f != nil {
		out = append(out, f.Stats())
	}
	if f := s.feeds.Earthquakes; f != nil {
		out = append(out, f.Stats())
	}
	if f := s.feeds.Satellites; f != nil {
		out = append(out, f.Stats())
	}
	if f := s.feeds.Cameras; f != nil {
		out = append(out, f.Stats())
	}
	return out
}

// ResolveStream returns the stream of an on-demand camera.
func (s *Service) ResolveStream(ctx context.Context, slug string) (StreamInfo, CacheStatus, error) {
	slug = strings.Clone(strings.TrimSpace(slug))
	if slug == "" {
		return StreamInfo{}, "", ErrEmptyKey
	}
	if s.streams == nil {
		return StreamInfo{}, "", fmt.Errorf("stream resolver: %w", ErrNotConfigured)
	}
	return lookup(ctx, s, "streams", slug, s.streamCache, func(ctx context.Context) (StreamInfo, error) {
		return s.streams.ResolveStream(ctx, slug)
	})
}

// Geocode searches places. An empty query returns QuickLinks.
func (s *Service) Geocode(ctx context.Context, query string) ([]GeoResult, CacheStatus, error) {
	query = strings.Clone(query)
	key := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if key == "" {
		return QuickLinks, CacheHit, nil
	}
	if len(s.geocoders) == 0 {
		return nil, "", fmt.Errorf("geocoder: %w", ErrNotConfigured)
	}
	return lookup(ctx, s, "geosearch", key, s.geoCache, func(ctx context.Context) ([]GeoResult, error) {
		var errs []error
		for _, g := range s.geocoders {
			results, err := g.Search(ctx, query, s.geoLimit)
			if err != nil {
				logging.Warn().Err(err).Str("geocoder", g.Name()).Msg("geocoding failed")
				errs = append(errs, fmt.Errorf("%s: %w", g.Name(), err))
				continue
			}
			if len(results) > 0 {
				return results, nil
			}
		}
		// No matches is only cached when every geocoder answered.
		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		return []GeoResult{}, nil
	})
}

// Snapshot returns a camera still image.
func (s *Service) Snapshot(ctx context.Context, rawURL string) (Snapshot, CacheStatus, error) {
	rawURL = strings.Clone(strings.TrimSpace(rawURL))
	if rawURL == "" {
		return Snapshot{}, "", ErrEmptyKey
	}
	if s.snapshots == nil {
		return Snapshot{}, "", fmt.Errorf("snapshot proxy: %w", ErrNotConfigured)
	}
	return lookup(ctx, s, "snapshot", rawURL, s.snapshotCache, func(ctx context.Context) (Snapshot, error) {
		return s.snapshots.FetchSnapshot(ctx, rawURL)
	})
}

// lookup serves key from cache, or fetches it once for all concurrent callers.
// A failed fetch falls back to a stale entry when one exists.
func lookup[T any](ctx context.Context, s *Service, name, key string, cache *store.MemoryStore[T], fetch func(context.Context) (T, error)) (T, CacheStatus, error) {
	var zero T

	// Keys may alias request buffers that are reused after the handler returns.
	key = strings.Clone(key)

	if cache != nil {
		if v, _, err := cache.Get(key); err == nil {
			metrics.CacheHits.WithLabelValues(name).Inc()
			return v, CacheHit, nil
		}
	}
	metrics.CacheMisses.WithLabelValues(name).Inc()

	v, err, _ := s.lookups.Do(name+"\x00"+key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.lookupTimeout)
		defer cancel()

		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		if cache != nil {
			cache.Set(key, v)
		}
		return v, nil
	})
	if err == nil {
		return v.(T), CacheMiss, nil
	}

	if cache != nil {
		if stale, _, serr := cache.GetStale(key); serr == nil {
			logging.Warn().Err(err).Str("cache", name).Msg("serving stale lookup")
			metrics.CacheStaleServes.WithLabelValues(name).Inc()
			return stale, CacheStale, nil
		}
	}
	return zero, "", fmt.Errorf("%s: %w", name, err)
}
