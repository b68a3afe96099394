package worldview

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/i474232898/worldview-aggregation/internal/logging"
)

// ErrAllSourcesFailed is returned when no provider of a layer succeeded.
var ErrAllSourcesFailed = errors.New("all sources failed")

// Aggregate fetches from all providers concurrently and concatenates their
// records in provider order. Failing providers are logged and reported in the
// contributions; the call only fails when every provider failed.
func Aggregate[T any](ctx context.Context, providers []Provider[T]) ([]T, []SourceContribution, error) {
	if len(providers) == 0 {
		return nil, nil, fmt.Errorf("no providers configured")
	}

	results := make([][]T, len(providers))
	errs := make([]error, len(providers))

	var g errgroup.Group
	for i, p := range providers {
		g.Go(func() error {
			items, err := p.Fetch(ctx)
			if err != nil {
				// Partial success is fine; keep going.
				logging.Warn().Err(err).Str("source", p.Name()).Msg("provider fetch failed")
				errs[i] = err
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var (
		total    int
		failures []error
	)
	sources := make([]SourceContribution, len(providers))
	for i, p := range providers {
		sources[i] = SourceContribution{Source: p.Name(), Count: len(results[i])}
		if errs[i] != nil {
			sources[i].Error = errs[i].Error()
			failures = append(failures, fmt.Errorf("%s: %w", p.Name(), errs[i]))
		}
		total += len(results[i])
	}

	if len(failures) == len(providers) {
		return nil, sources, fmt.Errorf("%w: %w", ErrAllSourcesFailed, errors.Join(failures...))
	}

	items := make([]T, 0, total)
	for _, r := range results {
		items = append(items, r...)
	}
	return items, sources, nil
}
