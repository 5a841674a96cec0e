package notifier

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatListing(t *testing.T) {
	text := FormatListing(
		"Studio",
		"Печерський - Сьогодні о 14:30",
		"15000 UAH",
		"Затишна квартира поруч з метро",
		"https://www.olx.ua/123",
		500,
	)

	assert.Contains(t, text, "🏠 *Studio*")
	assert.Contains(t, text, "📍 *Район*: Печерський - Сьогодні о 14:30")
	assert.Contains(t, text, "💰 *Ціна*: 15000 UAH")
	assert.Contains(t, text, "📝 *Опис*: Затишна квартира поруч з метро")
	assert.Contains(t, text, "🔗 *Посилання*: https://www.olx.ua/123")
}

func TestFormatListingTruncatesDescription(t *testing.T) {
	long := strings.Repeat("й", 600)
	text := FormatListing("Studio", "Печерський", "15000 UAH", long, "https://www.olx.ua/123", 500)

	assert.Contains(t, text, strings.Repeat("й", 500))
	assert.NotContains(t, text, strings.Repeat("й", 501),
		"Description must be truncated to the configured rune limit")
}

// recorder is a test notifier that records calls.
type recorder struct {
	texts  int
	photos int
	err    error
}

func (r *recorder) SendText(string) error {
	r.texts++
	return r.err
}

func (r *recorder) SendPhoto([]byte, string) error {
	r.photos++
	return r.err
}

func (r *recorder) Close() error { return nil }

func TestMultiFansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := NewMulti(a, b)

	assert.NoError(t, m.SendText("hello"))
	assert.NoError(t, m.SendPhoto([]byte{1}, "caption"))

	assert.Equal(t, 1, a.texts)
	assert.Equal(t, 1, b.texts)
	assert.Equal(t, 1, a.photos)
	assert.Equal(t, 1, b.photos)
}

func TestMultiAttemptsEveryChannel(t *testing.T) {
	failing := &recorder{err: errors.New("down")}
	healthy := &recorder{}
	m := NewMulti(failing, healthy)

	err := m.SendText("hello")
	assert.Error(t, err)
	assert.Equal(t, 1, healthy.texts, "A failing channel must not block the others")
}

func TestMultiEmptyIsNoop(t *testing.T) {
	m := NewMulti()
	assert.NoError(t, m.SendText("hello"))
	assert.NoError(t, m.SendPhoto(nil, "caption"))
	assert.NoError(t, m.Close())
}
