package worldview

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/i474232898/worldview-aggregation/internal/logging"
	"github.com/i474232898/worldview-aggregation/internal/metrics"
	"github.com/i474232898/worldview-aggregation/internal/store"
)

// CacheStatus tells how a response was produced.
type CacheStatus string

const (
	CacheHit   CacheStatus = "HIT"
	CacheMiss  CacheStatus = "MISS"
	CacheStale CacheStatus = "STALE"
)

// FeedOptions configures a Feed.
type FeedOptions struct {
	TTL      time.Duration
	MaxStale time.Duration // 0 = stale data is served indefinitely
	Timeout  time.Duration // per fetch, across all providers
	Limit    int           // max records kept after validity filtering
}

// Feed is one layer's cache: a single slot in front of its providers.
type Feed[T any] struct {
	layer     Layer
	providers []Provider[T]
	slot      *store.Slot[Result[T]]
	group     singleflight.Group
	timeout   time.Duration
	limit     int
}

// NewFeed creates a Feed for layer.
func NewFeed[T any](layer Layer, providers []Provider[T], opts FeedOptions) *Feed[T] {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	return &Feed[T]{
		layer:     layer,
		providers: providers,
		slot:      store.NewSlot[Result[T]](opts.TTL, opts.MaxStale),
		timeout:   opts.Timeout,
		limit:     opts.Limit,
	}
}

func (f *Feed[T]) Layer() Layer { return f.layer }

// Get returns cached data while fresh, otherwise fetches. If the fetch fails
// and older data is held, that data is returned flagged stale.
func (f *Feed[T]) Get(ctx context.Context) (Result[T], CacheStatus, error) {
	label := string(f.layer)

	if res, _, ok := f.slot.Get(); ok {
		metrics.CacheHits.WithLabelValues(label).Inc()
		return res, CacheHit, nil
	}
	metrics.CacheMisses.WithLabelValues(label).Inc()

	res, err := f.load(ctx)
	if err == nil {
		return res, CacheMiss, nil
	}

	if stale, _, ok := f.slot.GetStale(); ok {
		logging.Warn().Err(err).Str("layer", label).Time("fetched_at", stale.FetchedAt).Msg("serving stale layer data")
		metrics.CacheStaleServes.WithLabelValues(label).Inc()
		stale.Stale = true
		return stale, CacheStale, nil
	}
	return Result[T]{}, "", fmt.Errorf("%s: %w", label, err)
}

// Refresh fetches unconditionally. On failure the last good data is kept.
func (f *Feed[T]) Refresh(ctx context.Context) error {
	_, err := f.load(ctx)
	return err
}

// load runs at most one fetch at a time; concurrent callers share its result.
func (f *Feed[T]) load(ctx context.Context) (Result[T], error) {
	v, err, _ := f.group.Do(string(f.layer), func() (interface{}, error) {
		// The shared fetch must outlive any single caller's request.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()

		items, sources, err := Aggregate(fetchCtx, f.providers)
		if err != nil {
			return nil, err
		}

		res := Result[T]{
			Items:     Truncate(items, f.limit),
			FetchedAt: time.Now().UTC(),
			Sources:   sources,
		}
		f.slot.Set(res)

		metrics.LayerItems.WithLabelValues(string(f.layer)).Set(float64(len(res.Items)))
		logging.Debug().Str("layer", string(f.layer)).Int("items", len(res.Items)).Msg("layer refreshed")
		return res, nil
	})
	if err != nil {
		return Result[T]{}, err
	}
	return v.(Result[T]), nil
}

// Stats reports the slot state without fetching.
func (f *Feed[T]) Stats() LayerStats {
	st := LayerStats{Layer: f.layer}
	res, _, ok := f.slot.GetStale()
	if !ok {
		return st
	}
	age, _ := f.slot.Age()
	_, _, fresh := f.slot.Get()

	st.Items = len(res.Items)
	st.FetchedAt = res.FetchedAt
	st.AgeSec = age.Seconds()
	st.Fresh = fresh
	return st
}
