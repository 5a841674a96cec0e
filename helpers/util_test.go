package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFirst(t *testing.T) {
	district, date, ok := SplitFirst("Печерський - Сьогодні о 14:30", " - ")
	assert.True(t, ok)
	assert.Equal(t, "Печерський", district)
	assert.Equal(t, "Сьогодні о 14:30", date)

	// Only the first separator splits
	left, right, ok := SplitFirst("a - b - c", " - ")
	assert.True(t, ok)
	assert.Equal(t, "a", left)
	assert.Equal(t, "b - c", right)

	whole, rest, ok := SplitFirst("Печерський", " - ")
	assert.False(t, ok)
	assert.Equal(t, "Печерський", whole)
	assert.Empty(t, rest)
}

func TestResizeImageURL(t *testing.T) {
	assert.Equal(t,
		"https://ireland.apollo.olxcdn.com/v1/files/abc/image;s=600x300",
		ResizeImageURL("https://ireland.apollo.olxcdn.com/v1/files/abc/image;s=800x600", "600x300"))

	// URLs without a size parameter pass through untouched
	assert.Equal(t,
		"https://example.com/image.jpg",
		ResizeImageURL("https://example.com/image.jpg", "600x300"))

	// The parameter only counts at the end of the URL
	assert.Equal(t,
		"https://example.com/s=100x100/image.jpg",
		ResizeImageURL("https://example.com/s=100x100/image.jpg", "600x300"))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateRunes("abc", 10))
	assert.Equal(t, "abc", TruncateRunes("abcdef", 3))
	// Truncation counts runes, not bytes
	assert.Equal(t, "привіт", TruncateRunes("привіт світ", 6))
	assert.Equal(t, "", TruncateRunes("", 5))
}
