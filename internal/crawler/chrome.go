package crawler

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"anbondar/rentworker/logger"
)

// ChromeFetcher renders pages in a headless Chrome session. The browser is
// recycled after recycleAfter fetches to bound the session's memory growth.
type ChromeFetcher struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc

	browserCtx    context.Context
	browserCancel context.CancelFunc

	recycleAfter int
	fetched      int
	timeout      time.Duration
	log          *logger.Logger
}

// NewChromeFetcher starts a Chrome exec allocator. The browser itself is
// launched lazily on the first fetch.
func NewChromeFetcher(recycleAfter int) *ChromeFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromeFetcher{
		allocCtx:     allocCtx,
		allocCancel:  allocCancel,
		recycleAfter: recycleAfter,
		timeout:      20 * time.Second,
		log:          logger.ForFetcher("chrome"),
	}
}

// browser returns a live browser context, recycling the session once it has
// served recycleAfter fetches.
func (f *ChromeFetcher) browser() context.Context {
	if f.browserCtx != nil && f.recycleAfter > 0 && f.fetched >= f.recycleAfter {
		f.log.Info().Int("fetched", f.fetched).Msg("Recycling Chrome session")
		f.browserCancel()
		f.browserCtx = nil
		f.fetched = 0
	}

	if f.browserCtx == nil {
		f.browserCtx, f.browserCancel = chromedp.NewContext(f.allocCtx,
			chromedp.WithLogf(func(string, ...interface{}) {}))
	}
	return f.browserCtx
}

// Fetch renders url and returns the resulting document markup.
func (f *ChromeFetcher) Fetch(ctx context.Context, url string) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tctx, cancel := context.WithTimeout(f.browser(), f.timeout)
	defer cancel()

	var html string
	err := chromedp.Run(tctx,
		chromedp.Navigate(url),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		// A broken session would poison every later fetch; start fresh next time
		f.browserCancel()
		f.browserCtx = nil
		f.fetched = 0
		return nil, fmt.Errorf("chrome: render %s: %w", url, err)
	}

	f.fetched++
	return strings.NewReader(html), nil
}

// Close shuts the browser and the allocator down.
func (f *ChromeFetcher) Close() {
	if f.browserCancel != nil {
		f.browserCancel()
	}
	f.allocCancel()
}
