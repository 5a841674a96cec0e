package crawler

import (
	"context"
	"io"
)

// Selectors contains the CSS selectors for the source's card and detail
// markup. The page schema is fixed; overrides exist so tests and selector
// rot fixes don't touch code.
type Selectors struct {
	// Search-results page
	Card         string
	Title        string
	Price        string
	LocationDate string
	Image        string

	// Detail page
	InactiveMarker string
	Description    string
	GalleryImage   string
}

// DefaultSelectors returns the selectors for the current OLX markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Card:         `div[data-cy="l-card"]`,
		Title:        `a.css-1tqlkj0 h4`,
		Price:        `[data-testid="ad-price"]`,
		LocationDate: `[data-testid="location-date"]`,
		Image:        `img.css-8wsg1m`,

		InactiveMarker: `div[data-testid="ad-inactive-msg"]`,
		Description:    `div[data-testid="ad_description"]`,
		GalleryImage:   `div.swiper-zoom-container img`,
	}
}

// inactivePhrase is the text OLX renders on taken-down listings.
const inactivePhrase = "Це оголошення більше не доступне"

// locationDateSeparator joins the district name and the publish date inside
// the location-date element.
const locationDateSeparator = " - "

// descriptionFallback is stored when a detail page has no description block.
const descriptionFallback = "Опис не знайдено"

// PageFetcher retrieves a page's HTML. Implementations differ in how the
// page is rendered (plain HTTP vs. a headless browser) and are swappable per
// deployment environment.
type PageFetcher interface {
	// Fetch returns the page body as UTF-8 HTML
	Fetch(ctx context.Context, url string) (io.Reader, error)

	// Close releases fetcher resources
	Close()
}
