package store

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Memory implements ListingStore in process memory. It backs dry runs without
// a database and doubles as the reference implementation for the store
// semantics exercised by the tests.
type Memory struct {
	listings map[string]*Listing
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{listings: make(map[string]*Listing)}
}

// IsNewAndTouch checks existence and advances LastSeenAt.
func (m *Memory) IsNewAndTouch(_ context.Context, id string, now time.Time) (bool, error) {
	if l, ok := m.listings[id]; ok {
		if now.After(l.LastSeenAt) {
			l.LastSeenAt = now
		}
		return false, nil
	}

	m.listings[id] = &Listing{
		ID:              id,
		LastSeenAt:      now,
		FirstUploadedAt: now,
	}
	return true, nil
}

// Upsert inserts or refreshes a listing without clearing a backfilled
// description.
func (m *Memory) Upsert(_ context.Context, l *Listing) error {
	existing, ok := m.listings[l.ID]
	if !ok {
		cp := *l
		m.listings[l.ID] = &cp
		return nil
	}

	existing.Title = l.Title
	existing.Price = l.Price
	existing.District = l.District
	existing.ImageURL = l.ImageURL
	existing.PublishedAt = l.PublishedAt
	if l.LastSeenAt.After(existing.LastSeenAt) {
		existing.LastSeenAt = l.LastSeenAt
	}
	if existing.FirstUploadedAt.IsZero() {
		existing.FirstUploadedAt = l.FirstUploadedAt
	}
	if existing.Description == nil {
		existing.Description = l.Description
	}
	return nil
}

// FindIncomplete returns a snapshot of rows missing a description that pass
// the filter, oldest first.
func (m *Memory) FindIncomplete(_ context.Context, filter Filter) ([]IncompleteRow, error) {
	now := time.Now().UTC()

	var matched []*Listing
	for _, l := range m.listings {
		if l.Complete() {
			continue
		}
		if filter.UploadWindow > 0 && l.FirstUploadedAt.Before(now.Add(-filter.UploadWindow)) {
			continue
		}
		if filter.PublishedWindow > 0 && l.PublishedAt.Before(now.Add(-filter.PublishedWindow)) {
			continue
		}
		if !matchAllow(l.District, filter.DistrictAllow) {
			continue
		}
		if matchDeny(l.Title, filter.TitleDeny) {
			continue
		}
		matched = append(matched, l)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].FirstUploadedAt.Before(matched[j].FirstUploadedAt)
	})

	rows := make([]IncompleteRow, 0, len(matched))
	for _, l := range matched {
		rows = append(rows, IncompleteRow{ID: l.ID, Title: l.Title, District: l.District, Price: l.Price})
	}
	return rows, nil
}

// MarkUnavailable stores the unavailability sentinel and clears the image.
func (m *Memory) MarkUnavailable(_ context.Context, id string) error {
	if l, ok := m.listings[id]; ok {
		sentinel := DescriptionUnavailable
		l.Description = &sentinel
		l.ImageURL = nil
	}
	return nil
}

// MarkDetails stores the backfilled description and display image.
func (m *Memory) MarkDetails(_ context.Context, id string, description string, imageURL *string) error {
	if l, ok := m.listings[id]; ok {
		l.Description = &description
		l.ImageURL = imageURL
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() {}

// Get returns the stored listing for id, if any.
func (m *Memory) Get(id string) (*Listing, bool) {
	l, ok := m.listings[id]
	return l, ok
}

// Len returns the number of stored listings.
func (m *Memory) Len() int {
	return len(m.listings)
}

func matchAllow(district string, allow []string) bool {
	if len(allow) == 0 {
		return true
	}
	lower := strings.ToLower(district)
	for _, a := range allow {
		if strings.Contains(lower, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

func matchDeny(title string, deny []string) bool {
	lower := strings.ToLower(title)
	for _, d := range deny {
		if strings.Contains(lower, strings.ToLower(d)) {
			return true
		}
	}
	return false
}
