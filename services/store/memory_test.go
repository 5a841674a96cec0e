package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsNewAndTouch(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	isNew, err := m.IsNewAndTouch(ctx, "123", base)
	assert.NoError(t, err)
	assert.True(t, isNew, "First observation must report new")

	// Every subsequent call reports seen and advances lastSeenAt
	for i := 1; i <= 3; i++ {
		now := base.Add(time.Duration(i) * time.Minute)
		isNew, err = m.IsNewAndTouch(ctx, "123", now)
		assert.NoError(t, err)
		assert.False(t, isNew, "Repeat observation must not report new")

		l, ok := m.Get("123")
		assert.True(t, ok)
		assert.Equal(t, now, l.LastSeenAt, "lastSeenAt must advance")
	}

	// A stale timestamp never moves lastSeenAt backwards
	_, err = m.IsNewAndTouch(ctx, "123", base)
	assert.NoError(t, err)
	l, _ := m.Get("123")
	assert.Equal(t, base.Add(3*time.Minute), l.LastSeenAt)
}

func TestUpsertPreservesDescription(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	now := time.Now().UTC()

	desc := "spacious studio near the metro"
	assert.NoError(t, m.Upsert(ctx, &Listing{
		ID:              "123",
		Title:           "Studio",
		Description:     &desc,
		LastSeenAt:      now,
		FirstUploadedAt: now,
		PublishedAt:     now,
	}))

	// A later search-pass upsert carries no description
	later := now.Add(time.Hour)
	assert.NoError(t, m.Upsert(ctx, &Listing{
		ID:              "123",
		Title:           "Studio (updated)",
		Price:           "16000 грн.",
		LastSeenAt:      later,
		FirstUploadedAt: later,
		PublishedAt:     later,
	}))

	l, ok := m.Get("123")
	assert.True(t, ok)
	assert.NotNil(t, l.Description, "Backfilled description must survive re-observation")
	assert.Equal(t, desc, *l.Description)
	assert.Equal(t, "Studio (updated)", l.Title, "Mutable fields must refresh")
	assert.Equal(t, "16000 грн.", l.Price)
	assert.Equal(t, later, l.LastSeenAt)
	assert.Equal(t, now, l.FirstUploadedAt, "firstUploadedAt is set once")
}

func TestFindIncompleteFilters(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	now := time.Now().UTC()

	add := func(id, title, district string, description *string, age time.Duration) {
		assert.NoError(t, m.Upsert(ctx, &Listing{
			ID:              id,
			Title:           title,
			District:        district,
			Description:     description,
			LastSeenAt:      now,
			FirstUploadedAt: now.Add(-age),
			PublishedAt:     now.Add(-age),
		}))
	}

	done := "already backfilled"
	add("1", "Квартира в центрі", "Печерський - Сьогодні о 10:00", nil, 5*time.Minute)
	add("2", "Кімната", "Дарницький - Сьогодні о 10:00", nil, 5*time.Minute)       // district not allowed
	add("3", "ЖК Світлопарк квартира", "Печерський - вчора", nil, 5*time.Minute)   // title denied
	add("4", "Стара квартира", "Печерський - 1 травня 2020", nil, 100*24*time.Hour) // outside windows
	add("5", "Готова квартира", "Печерський - Сьогодні", &done, 5*time.Minute)     // complete

	rows, err := m.FindIncomplete(ctx, Filter{
		UploadWindow:    30 * time.Minute,
		PublishedWindow: 48 * time.Hour,
		DistrictAllow:   []string{"Печерський", "Оболонський"},
		TitleDeny:       []string{"світлопарк"},
	})
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].ID)
}

func TestFindIncompleteEmptyAllowListAdmitsAll(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, id := range []string{"a", "b"} {
		assert.NoError(t, m.Upsert(ctx, &Listing{
			ID:              id,
			District:        "Будь-який район",
			LastSeenAt:      now,
			FirstUploadedAt: now,
			PublishedAt:     now,
		}))
	}

	rows, err := m.FindIncomplete(ctx, Filter{})
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestMarkUnavailable(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	now := time.Now().UTC()

	img := "https://example.com/image.jpg"
	assert.NoError(t, m.Upsert(ctx, &Listing{
		ID:              "123",
		ImageURL:        &img,
		LastSeenAt:      now,
		FirstUploadedAt: now,
		PublishedAt:     now,
	}))

	assert.NoError(t, m.MarkUnavailable(ctx, "123"))

	l, _ := m.Get("123")
	assert.NotNil(t, l.Description)
	assert.Equal(t, DescriptionUnavailable, *l.Description)
	assert.Nil(t, l.ImageURL)
	assert.True(t, l.Complete(), "Unavailable listings count as complete")
}

func TestMarkDetails(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	now := time.Now().UTC()

	assert.NoError(t, m.Upsert(ctx, &Listing{
		ID:              "123",
		LastSeenAt:      now,
		FirstUploadedAt: now,
		PublishedAt:     now,
	}))

	img := "https://example.com/photo.jpg"
	assert.NoError(t, m.MarkDetails(ctx, "123", "nice flat", &img))

	l, _ := m.Get("123")
	assert.Equal(t, "nice flat", *l.Description)
	assert.Equal(t, img, *l.ImageURL)

	rows, err := m.FindIncomplete(ctx, Filter{})
	assert.NoError(t, err)
	assert.Empty(t, rows, "Backfilled rows leave the incomplete set")
}
