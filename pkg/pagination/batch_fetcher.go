package pagination

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

// Request names one paginated resource.
type Request struct {
	Path   string
	Params url.Values
}

// Opener starts iterating a resource.
type Opener func(ctx context.Context, req Request) *Iterator

// Result holds every record of one resource.
type Result struct {
	Request Request
	Records []json.RawMessage
	Pages   int
}

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency bounds the number of resources fetched at once.
	MaxConcurrency int
}

// DefaultConfig keeps load on the provider low.
func DefaultConfig() Config {
	return Config{MaxConcurrency: 4}
}

// BatchFetcher drains several resources in parallel.
type BatchFetcher struct {
	open   Opener
	config Config
}

// NewBatchFetcher creates a new batch fetcher.
func NewBatchFetcher(open Opener, config Config) *BatchFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	return &BatchFetcher{open: open, config: config}
}

// FetchAll collects every request and returns the results in request
// order. The first failure cancels the remaining work.
func (bf *BatchFetcher) FetchAll(ctx context.Context, requests []Request) ([]Result, error) {
	start := time.Now()

	type indexed struct {
		idx int
		res Result
	}

	p := pool.NewWithResults[indexed]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(bf.config.MaxConcurrency)

	for i, req := range requests {
		p.Go(func(ctx context.Context) (indexed, error) {
			it := bf.open(ctx, req)
			records, err := Collect(ctx, it)
			if err != nil {
				return indexed{}, fmt.Errorf("collect %s: %w", req.Path, err)
			}
			log.Debug().
				Str("resource", req.Path).
				Int("pages", it.Pages()).
				Int("records", len(records)).
				Msg("Resource collected")
			return indexed{idx: i, res: Result{Request: req, Records: records, Pages: it.Pages()}}, nil
		})
	}

	collected, err := p.Wait()
	if err != nil {
		return nil, err
	}

	sort.Slice(collected, func(a, b int) bool { return collected[a].idx < collected[b].idx })
	results := make([]Result, len(collected))
	for i, c := range collected {
		results[i] = c.res
	}

	log.Info().
		Int("resources", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Batch fetch complete")

	return results, nil
}

// CollectAll is a shorthand for NewBatchFetcher(open, Config{maxConcurrency}).FetchAll.
func CollectAll(ctx context.Context, open Opener, requests []Request, maxConcurrency int) ([]Result, error) {
	return NewBatchFetcher(open, Config{MaxConcurrency: maxConcurrency}).FetchAll(ctx, requests)
}
