package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"anbondar/rentworker/helpers"
	"anbondar/rentworker/logger"
	"anbondar/rentworker/services/cache"
)

// blockCacheKey marks the source as rate-limited in the block cache.
const blockCacheKey = "rentworker_fetch_block"

// HTTPFetcher fetches pages with a plain HTTP GET and browser-like headers.
// With a block cache configured, a rate-limited response suppresses all
// further fetches for the block window, across runs.
type HTTPFetcher struct {
	cache     cache.Cache
	blockTime time.Duration
	log       *logger.Logger
}

// NewHTTPFetcher creates an HTTP fetcher. blockCache may be nil.
func NewHTTPFetcher(blockCache cache.Cache, blockTime time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		cache:     blockCache,
		blockTime: blockTime,
		log:       logger.ForFetcher("http"),
	}
}

// Fetch retrieves url and returns its body as UTF-8 HTML.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if f.cache != nil {
		if _, err := f.cache.Get(blockCacheKey); err == nil {
			return nil, fmt.Errorf("fetch blocked: source rate limited us within the last %s", f.blockTime)
		}
	}

	body, err := helpers.FetchWithRandomHeaders(url)
	if err != nil {
		if errors.Is(err, helpers.ErrRateLimited) && f.cache != nil {
			if cacheErr := f.cache.Set(blockCacheKey, []byte("1"), f.blockTime); cacheErr != nil {
				f.log.Warn().Err(cacheErr).Msg("Failed to set fetch block")
			} else {
				f.log.Warn().Dur("block_time", f.blockTime).Msg("Rate limited, blocking further fetches")
			}
		}
		return nil, err
	}

	return body, nil
}

// Close is a no-op for the HTTP fetcher.
func (f *HTTPFetcher) Close() {}
