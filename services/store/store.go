package store

import (
	"context"
	"time"
)

// DescriptionUnavailable is the sentinel stored when a detail page reports
// that the listing was taken down before it could be backfilled.
const DescriptionUnavailable = "NOT AVAILABLE"

// Listing is one scraped rental advertisement.
type Listing struct {
	ID              string
	Title           string
	Price           string
	District        string
	ImageURL        *string
	Description     *string
	LastSeenAt      time.Time
	FirstUploadedAt time.Time
	PublishedAt     time.Time
}

// Complete reports whether the listing has been backfilled.
func (l *Listing) Complete() bool {
	return l.Description != nil && *l.Description != ""
}

// IncompleteRow is the projection handed to the detail backfiller.
type IncompleteRow struct {
	ID       string
	Title    string
	District string
	Price    string
}

// Filter narrows FindIncomplete results. Allow/deny lists hold
// case-insensitive substrings; an empty allow list admits every district.
type Filter struct {
	// UploadWindow bounds how long ago the row was first inserted.
	UploadWindow time.Duration
	// PublishedWindow bounds the source-reported publish time.
	PublishedWindow time.Duration
	DistrictAllow   []string
	TitleDeny       []string
}

// ListingStore is the persistence contract for the pipeline. Implementations
// are accessed sequentially; no concurrent writers exist.
type ListingStore interface {
	// IsNewAndTouch checks existence of id. Absent ids are inserted as a stub
	// row with lastSeenAt=now and true is returned; present ids get their
	// lastSeenAt advanced and false is returned.
	IsNewAndTouch(ctx context.Context, id string, now time.Time) (bool, error)

	// Upsert inserts or refreshes a listing by id. The update path refreshes
	// all mutable fields but never clears a previously-backfilled description.
	Upsert(ctx context.Context, listing *Listing) error

	// FindIncomplete returns listings missing a description that match the
	// filter. The result is a finite snapshot, not a live cursor.
	FindIncomplete(ctx context.Context, filter Filter) ([]IncompleteRow, error)

	// MarkUnavailable records that the listing was taken down at the source.
	MarkUnavailable(ctx context.Context, id string) error

	// MarkDetails stores the backfilled description and display image.
	MarkDetails(ctx context.Context, id string, description string, imageURL *string) error

	// Close releases the underlying connection.
	Close()
}
