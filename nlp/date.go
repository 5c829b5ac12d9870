// Package nlp contains the deterministic language helpers behind the wizard:
// date-phrase parsing, fuzzy option matching, input sanitizing, and
// best-effort entity extraction. Everything here is pure and always
// available; the optional assist layer only adds on top of it.
package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// strictLayouts is the ordered fallback list tried after phrase parsing.
// DD/MM/YYYY is tried before MM/DD/YYYY, so an ambiguous slash date resolves
// day-first.
var strictLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var inDaysRe = regexp.MustCompile(`^in (\d{1,3}) days?$`)

// ParseDatePhrase resolves a natural-language date phrase or an explicit date
// against now. The second return is false when nothing matched.
func ParseDatePhrase(input string, now time.Time) (time.Time, bool) {
	today := truncateDay(now)
	phrase := strings.ToLower(strings.TrimSpace(input))

	switch phrase {
	case "today":
		return today, true
	case "tomorrow":
		return today.AddDate(0, 0, 1), true
	case "next week":
		return today.AddDate(0, 0, 7), true
	case "next month":
		return today.AddDate(0, 1, 0), true
	}

	if m := inDaysRe.FindStringSubmatch(phrase); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return today.AddDate(0, 0, n), true
		}
	}

	if d, ok := parseWeekdayPhrase(phrase, today); ok {
		return d, true
	}

	for _, layout := range strictLayouts {
		if d, err := time.Parse(layout, strings.TrimSpace(input)); err == nil {
			return truncateDay(d), true
		}
	}

	return time.Time{}, false
}

// parseWeekdayPhrase handles "friday", "next friday" and "next week friday",
// always resolving to a strictly future occurrence of that weekday.
func parseWeekdayPhrase(phrase string, today time.Time) (time.Time, bool) {
	p := strings.TrimPrefix(phrase, "next week ")
	p = strings.TrimPrefix(p, "next ")
	wd, ok := weekdays[p]
	if !ok {
		return time.Time{}, false
	}
	offset := (int(wd) - int(today.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return today.AddDate(0, 0, offset), true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
