package crawler

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"anbondar/rentworker/helpers"
	"anbondar/rentworker/internal/dateparse"
	errs "anbondar/rentworker/pkg/errors"
	"anbondar/rentworker/services/store"
)

// Extractor turns raw card and detail-page markup into listing records.
type Extractor struct {
	selectors Selectors
	dates     *dateparse.Parser
	imageSize string
}

// NewExtractor creates an extractor. imageSize is the WxH value substituted
// into gallery image URLs.
func NewExtractor(selectors Selectors, dates *dateparse.Parser, imageSize string) *Extractor {
	return &Extractor{
		selectors: selectors,
		dates:     dates,
		imageSize: imageSize,
	}
}

// ExtractCard parses one search-result card. The id attribute is required;
// every other field degrades to its zero value when the selector misses.
// now supplies lastSeenAt, firstUploadedAt and the publishedAt fallback.
func (e *Extractor) ExtractCard(s *goquery.Selection, now time.Time) (*store.Listing, error) {
	id, ok := s.Attr("id")
	if !ok || id == "" {
		return nil, errs.NewValidation("search", "", "card without id attribute")
	}

	title := strings.TrimSpace(s.Find(e.selectors.Title).Text())
	price := strings.TrimSpace(s.Find(e.selectors.Price).Text())
	district := strings.TrimSpace(s.Find(e.selectors.LocationDate).Text())

	var imageURL *string
	if src, exists := s.Find(e.selectors.Image).Attr("src"); exists && src != "" {
		resized := helpers.ResizeImageURL(src, e.imageSize)
		imageURL = &resized
	}

	// The location-date element is "<district> - <date text>"; unparsable
	// dates fall back to the observation time.
	publishedAt := now
	if _, datePart, found := helpers.SplitFirst(district, locationDateSeparator); found {
		if parsed, parsedOK := e.dates.Parse(datePart, now); parsedOK {
			publishedAt = parsed
		}
	}

	return &store.Listing{
		ID:              id,
		Title:           title,
		Price:           price,
		District:        district,
		ImageURL:        imageURL,
		LastSeenAt:      now,
		FirstUploadedAt: now,
		PublishedAt:     publishedAt,
	}, nil
}

// Detail is the result of parsing a detail page.
type Detail struct {
	Unavailable bool
	Description string
	ImageURLs   []string
}

// ExtractDetail parses a detail page. When the taken-down marker is present
// only Unavailable is set; otherwise the normalized description and the
// deduplicated, resized gallery URLs are returned.
func (e *Extractor) ExtractDetail(doc *goquery.Document) Detail {
	marker := doc.Find(e.selectors.InactiveMarker)
	if marker.Length() > 0 && strings.Contains(marker.Text(), inactivePhrase) {
		return Detail{Unavailable: true}
	}

	description := strings.Join(strings.Fields(doc.Find(e.selectors.Description).Text()), " ")
	if description == "" {
		description = descriptionFallback
	}

	seen := make(map[string]struct{})
	var urls []string
	doc.Find(e.selectors.GalleryImage).Each(func(_ int, img *goquery.Selection) {
		src, exists := img.Attr("src")
		if !exists || src == "" {
			return
		}
		resized := helpers.ResizeImageURL(src, e.imageSize)
		if _, dup := seen[resized]; dup {
			return
		}
		seen[resized] = struct{}{}
		urls = append(urls, resized)
	})

	return Detail{
		Description: description,
		ImageURLs:   urls,
	}
}
