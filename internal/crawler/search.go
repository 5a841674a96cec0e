package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"anbondar/rentworker/logger"
	errs "anbondar/rentworker/pkg/errors"
	"anbondar/rentworker/services/store"
)

// SearchQuery holds the fixed filter parameters of the search URL.
type SearchQuery struct {
	Currency  string
	PriceFrom int
	PriceTo   int
	AreaFrom  int
}

// SearchCrawler drives the paginated search pass: fetch a results page,
// extract every card, persist each listing.
type SearchCrawler struct {
	fetcher   PageFetcher
	extractor *Extractor
	store     store.ListingStore
	limiter   *rate.Limiter
	baseURL   string
	query     SearchQuery
	selectors Selectors
	log       *logger.Logger
}

// NewSearchCrawler creates a search crawler. pageDelay paces successive page
// fetches.
func NewSearchCrawler(
	fetcher PageFetcher,
	extractor *Extractor,
	st store.ListingStore,
	baseURL string,
	query SearchQuery,
	selectors Selectors,
	pageDelay time.Duration,
) *SearchCrawler {
	return &SearchCrawler{
		fetcher:   fetcher,
		extractor: extractor,
		store:     st,
		limiter:   rate.NewLimiter(rate.Every(pageDelay), 1),
		baseURL:   baseURL,
		query:     query,
		selectors: selectors,
		log:       logger.ForSearch(),
	}
}

// buildPageURL builds the deterministic search URL for a page.
func (c *SearchCrawler) buildPageURL(page int) string {
	q := url.Values{}
	q.Set("currency", c.query.Currency)
	q.Set("search[order]", "created_at:desc")
	q.Set("search[filter_float_price:from]", strconv.Itoa(c.query.PriceFrom))
	q.Set("search[filter_float_price:to]", strconv.Itoa(c.query.PriceTo))
	q.Set("search[filter_float_total_area:from]", strconv.Itoa(c.query.AreaFrom))
	q.Set("page", strconv.Itoa(page))
	return c.baseURL + "?" + q.Encode()
}

// Crawl walks pages 1..maxPages. A page yielding zero cards ends the pass
// (end of result set); a page-level fetch/parse failure aborts the remaining
// pages for this run. Already-persisted progress is kept either way.
func (c *SearchCrawler) Crawl(ctx context.Context, maxPages int) error {
	for page := 1; page <= maxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		pageURL := c.buildPageURL(page)
		c.log.Debug().Int("page", page).Str("url", pageURL).Msg("Fetching search page")

		body, err := c.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			c.log.Error().Int("page", page).Err(err).Msg("Page fetch failed, aborting pass")
			return errs.NewNetwork("search", fmt.Sprintf("page %d", page), "fetch failed", err)
		}

		doc, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			c.log.Error().Int("page", page).Err(err).Msg("Page parse failed, aborting pass")
			return errs.NewParsing("search", fmt.Sprintf("page %d", page), "parse failed", err)
		}

		cards := doc.Find(c.selectors.Card)
		if cards.Length() == 0 {
			c.log.Info().Int("page", page).Msg("No cards found, end of result set")
			return nil
		}

		processed := 0
		cards.Each(func(_ int, s *goquery.Selection) {
			if err := c.processCard(ctx, s); err != nil {
				c.log.Warn().Int("page", page).Err(err).Msg("Card skipped")
				return
			}
			processed++
		})

		c.log.Info().
			Int("page", page).
			Int("cards", cards.Length()).
			Int("processed", processed).
			Msg("Processed search page")
	}
	return nil
}

// processCard extracts one card and persists it. The new/seen boolean is
// used for logging only; the full upsert runs unconditionally so re-observed
// listings keep their price/title/image fresh.
func (c *SearchCrawler) processCard(ctx context.Context, s *goquery.Selection) error {
	now := time.Now().UTC()

	listing, err := c.extractor.ExtractCard(s, now)
	if err != nil {
		return err
	}

	isNew, err := c.store.IsNewAndTouch(ctx, listing.ID, now)
	if err != nil {
		return errs.NewStore("search", listing.ID, "touch failed", err)
	}

	if err := c.store.Upsert(ctx, listing); err != nil {
		return errs.NewStore("search", listing.ID, "upsert failed", err)
	}

	if isNew {
		c.log.Info().Str("id", listing.ID).Str("title", listing.Title).Msg("New listing")
	} else {
		c.log.Debug().Str("id", listing.ID).Msg("Listing re-observed")
	}
	return nil
}
