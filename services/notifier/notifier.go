package notifier

import (
	"errors"
	"fmt"

	"anbondar/rentworker/helpers"
)

// Notifier delivers enriched listings to a channel. Delivery is success-only:
// pipeline failures are never surfaced through a notifier.
type Notifier interface {
	// SendText delivers a text-only message
	SendText(text string) error

	// SendPhoto delivers an image with the message as its caption
	SendPhoto(image []byte, caption string) error

	// Close closes the underlying connection
	Close() error
}

// FormatListing renders the notification template. The description is
// truncated to limit runes.
func FormatListing(title, district, price, description, link string, limit int) string {
	return fmt.Sprintf(
		"🏠 *%s*\n"+
			"📍 *Район*: %s\n\n"+
			"💰 *Ціна*: %s\n"+
			"📝 *Опис*: %s\n"+
			"🔗 *Посилання*: %s",
		title, district, price, helpers.TruncateRunes(description, limit), link)
}

// Multi fans a notification out to several channels. Every channel is
// attempted; errors are joined.
type Multi struct {
	notifiers []Notifier
}

// NewMulti creates a fan-out notifier.
func NewMulti(notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

// SendText delivers the message to every channel.
func (m *Multi) SendText(text string) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.SendText(text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendPhoto delivers the image and caption to every channel.
func (m *Multi) SendPhoto(image []byte, caption string) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.SendPhoto(image, caption); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every channel.
func (m *Multi) Close() error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
