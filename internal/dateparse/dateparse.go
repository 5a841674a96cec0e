// Package dateparse turns the bilingual (Ukrainian/Russian) date strings
// rendered on listing cards into UTC timestamps.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// months maps lowercase genitive month names, Ukrainian and Russian, to
// month numbers.
var months = map[string]time.Month{
	"січня": time.January, "лютого": time.February, "березня": time.March,
	"квітня": time.April, "травня": time.May, "червня": time.June,
	"липня": time.July, "серпня": time.August, "вересня": time.September,
	"жовтня": time.October, "листопада": time.November, "грудня": time.December,

	"января": time.January, "февраля": time.February, "марта": time.March,
	"апреля": time.April, "мая": time.May, "июня": time.June,
	"июля": time.July, "августа": time.August, "сентября": time.September,
	"октября": time.October, "ноября": time.November, "декабря": time.December,
}

var clockRe = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

var todayMarkers = []string{"Сьогодні", "Сегодня"}

// Parser parses card date strings. The source renders clock times in a
// regional timezone, so relative dates are interpreted in loc before being
// converted to UTC.
type Parser struct {
	loc *time.Location
}

// New creates a parser that interprets relative clock times in loc.
func New(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{loc: loc}
}

// Parse parses text into a UTC timestamp. The reference time now supplies
// the date for relative ("today at HH:MM") inputs. ok is false when the text
// matches neither supported shape; callers fall back to the observation time.
func (p *Parser) Parse(text string, now time.Time) (time.Time, bool) {
	// Strip the localized year suffix before shape-matching
	text = strings.TrimSpace(strings.ReplaceAll(text, "р.", ""))
	if text == "" {
		return time.Time{}, false
	}

	for _, marker := range todayMarkers {
		if strings.HasPrefix(text, marker) {
			return p.parseToday(text, now), true
		}
	}

	return p.parseAbsolute(text)
}

// parseToday combines the reference date with the extracted clock time,
// defaulting to midnight when the marker carries no explicit time.
func (p *Parser) parseToday(text string, now time.Time) time.Time {
	hour, minute := 0, 0
	if m := clockRe.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if h < 24 && min < 60 {
			hour, minute = h, min
		}
	}

	local := now.In(p.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, p.loc).UTC()
}

// parseAbsolute handles the "D <monthName> YYYY" shape.
func (p *Parser) parseAbsolute(text string) (time.Time, bool) {
	parts := strings.Fields(text)
	if len(parts) < 3 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	month, ok := months[strings.ToLower(parts[1])]
	if !ok {
		return time.Time{}, false
	}

	year, err := strconv.Atoi(parts[2])
	if err != nil || year < 2000 || year > 2100 {
		return time.Time{}, false
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}
