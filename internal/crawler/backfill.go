package crawler

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/PuerkitoBio/goquery"

	"anbondar/rentworker/internal/collage"
	"anbondar/rentworker/logger"
	"anbondar/rentworker/services/notifier"
	"anbondar/rentworker/services/store"
)

// backfillAttempts caps how often a row is tried within one run. Rows that
// exhaust it stay incomplete and are picked up again by the next run.
const backfillAttempts = 2

// ImageDownloader fetches listing photos as decoded thumbnails.
type ImageDownloader interface {
	Download(urls []string, max int) []image.Image
}

// DetailBackfiller completes listings that were discovered by the search
// pass but still lack a description: it fetches the detail page, extracts
// description and gallery, builds the composite preview and notifies.
type DetailBackfiller struct {
	fetcher    PageFetcher
	extractor  *Extractor
	store      store.ListingStore
	notify     notifier.Notifier
	downloader ImageDownloader

	filter        store.Filter
	detailBaseURL string
	maxImages     int
	descLimit     int
	retryBackoff  time.Duration

	log *logger.Logger
}

// NewDetailBackfiller creates a backfiller.
func NewDetailBackfiller(
	fetcher PageFetcher,
	extractor *Extractor,
	st store.ListingStore,
	notify notifier.Notifier,
	downloader ImageDownloader,
	filter store.Filter,
	detailBaseURL string,
	maxImages int,
	descLimit int,
) *DetailBackfiller {
	return &DetailBackfiller{
		fetcher:       fetcher,
		extractor:     extractor,
		store:         st,
		notify:        notify,
		downloader:    downloader,
		filter:        filter,
		detailBaseURL: detailBaseURL,
		maxImages:     maxImages,
		descLimit:     descLimit,
		retryBackoff:  3 * time.Second,
		log:           logger.ForBackfill(),
	}
}

// Backfill runs the detail pass over every incomplete listing matching the
// filter. One row's exhaustion never affects subsequent rows.
func (b *DetailBackfiller) Backfill(ctx context.Context) error {
	rows, err := b.store.FindIncomplete(ctx, b.filter)
	if err != nil {
		return err
	}

	b.log.Info().Int("rows", len(rows)).Msg("Found listings missing details")

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.processRow(ctx, row)
	}
	return nil
}

// processRow drives the attempt loop for one listing.
func (b *DetailBackfiller) processRow(ctx context.Context, row store.IncompleteRow) {
	link := fmt.Sprintf("%s/%s", b.detailBaseURL, row.ID)

	for attempt := 1; attempt <= backfillAttempts; attempt++ {
		err := b.attempt(ctx, row, link)
		if err == nil {
			return
		}

		b.log.Error().
			Str("id", row.ID).
			Int("attempt", attempt).
			Err(err).
			Msg("Backfill attempt failed")

		if attempt < backfillAttempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(b.retryBackoff):
			}
		}
	}

	b.log.Warn().Str("id", row.ID).Msg("Abandoning listing for this run")
}

// attempt performs one full backfill of a row: fetch, extract, download
// images, compose the preview, persist, notify.
func (b *DetailBackfiller) attempt(ctx context.Context, row store.IncompleteRow, link string) error {
	body, err := b.fetcher.Fetch(ctx, link)
	if err != nil {
		return fmt.Errorf("fetch detail page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return fmt.Errorf("parse detail page: %w", err)
	}

	detail := b.extractor.ExtractDetail(doc)
	if detail.Unavailable {
		b.log.Info().Str("id", row.ID).Msg("Listing no longer available")
		if err := b.store.MarkUnavailable(ctx, row.ID); err != nil {
			b.log.Error().Str("id", row.ID).Err(err).Msg("Failed to mark unavailable")
		}
		return nil
	}

	// Decoded thumbnails stay scoped to this block so they are collectable
	// before the notification round trip
	var preview []byte
	if len(detail.ImageURLs) > 0 {
		if images := b.downloader.Download(detail.ImageURLs, b.maxImages); len(images) > 0 {
			grid := collage.Compose(images, collage.Cols, collage.Margin)
			encoded, encErr := collage.EncodeJPEG(grid)
			if encErr != nil {
				b.log.Warn().Str("id", row.ID).Err(encErr).Msg("Failed to encode preview, notifying without image")
			} else {
				preview = encoded
			}
		}
	}

	var firstImage *string
	if len(detail.ImageURLs) > 0 {
		firstImage = &detail.ImageURLs[0]
	}

	// A persistence failure skips the row without retry; the listing stays
	// incomplete and the next run sees it again.
	if err := b.store.MarkDetails(ctx, row.ID, detail.Description, firstImage); err != nil {
		b.log.Error().Str("id", row.ID).Err(err).Msg("Failed to persist details, skipping row")
		return nil
	}

	caption := notifier.FormatListing(row.Title, row.District, row.Price, detail.Description, link, b.descLimit)
	if preview != nil {
		err = b.notify.SendPhoto(preview, caption)
	} else {
		err = b.notify.SendText(caption)
	}
	if err != nil {
		// Notification is success-only and best-effort; the row is still done
		b.log.Error().Str("id", row.ID).Err(err).Msg("Notification failed")
	} else {
		b.log.Info().Str("id", row.ID).Bool("with_image", preview != nil).Msg("Listing backfilled and notified")
	}

	return nil
}
