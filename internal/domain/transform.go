package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	recordDateLayout  = "2 Jan 2006"
	dobLayout         = "2/1/2006"
	historyDateLayout = "2-Jan-06"

	daysPerYear = 365.25
)

// Event groups produced by ClassifyEvent.
const (
	GroupWalk           = "Walk"
	GroupRelay          = "Relay"
	GroupHurdles        = "Hurdles"
	GroupSprints        = "Sprints"
	GroupMiddleDistance = "Middle Distance"
	GroupLongDistance   = "Long Distance"
	GroupField          = "Field"
	GroupOther          = "Other"
)

var (
	// footnoteRe matches Wikipedia footnote markers, e.g. "Marathon[e]".
	footnoteRe = regexp.MustCompile(`\[[^\]]*\]`)

	sprintRe = regexp.MustCompile(`\b(50|6[0-9]|[1-3][0-9]{2}|400) m\b`)
	middleRe = regexp.MustCompile(`\b(8[0-9]{2}|[1-2][0-9]{3}|3000)\b.*m`)

	// Short-track markers left behind when "(short track)" links collapse
	// into the event text.
	shortTrackMarkers = []string{"msh", "milesh", "relaysh", "onsh", "walksh"}
	longKeywords      = []string{"5000", "5 km", "10,000", "10 km", "50 km", "100 km", "one hour", "marathon"}
	fieldKeywords     = []string{"jump", "vault", "shot", "throw", "heptathlon", "decathlon"}
)

// CleanEventName strips footnote markers and surrounding whitespace.
func CleanEventName(event string) string {
	return strings.TrimSpace(footnoteRe.ReplaceAllString(event, ""))
}

// ClassifyEvent assigns an event to a discipline group. Order matters:
// "4 × 100 m relay" is a relay, not a sprint.
func ClassifyEvent(event string) string {
	lower := strings.ToLower(event)
	switch {
	case containsAny(lower, shortTrackMarkers):
		return GroupOther
	case strings.Contains(lower, "walk"):
		return GroupWalk
	case strings.Contains(lower, "relay"):
		return GroupRelay
	case strings.Contains(lower, "hurdles"):
		return GroupHurdles
	case sprintRe.MatchString(lower):
		return GroupSprints
	case middleRe.MatchString(lower) || strings.Contains(lower, "mile"):
		return GroupMiddleDistance
	case containsAny(lower, longKeywords):
		return GroupLongDistance
	case containsAny(lower, fieldKeywords):
		return GroupField
	default:
		return GroupOther
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ParseRecordDate parses a record date such as "16 Aug 2009".
func ParseRecordDate(s string) (time.Time, bool) {
	return parseDate(recordDateLayout, s)
}

// ParseDOB parses a reference birth date such as "21/08/1986".
func ParseDOB(s string) (time.Time, bool) {
	return parseDate(dobLayout, s)
}

// ParseHistoryDate parses a performance history date such as "02-Aug-21".
func ParseHistoryDate(s string) (time.Time, bool) {
	return parseDate(historyDateLayout, s)
}

func parseDate(layout, s string) (time.Time, bool) {
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AgeAt returns the age in years on the given date, using whole days over
// 365.25. Returns nil if either date is missing.
func AgeAt(dob, on time.Time) *float64 {
	if dob.IsZero() || on.IsZero() {
		return nil
	}
	days := int(on.Sub(dob).Hours() / 24)
	age := float64(days) / daysPerYear
	return &age
}

// IsOlympicYear reports whether a year hosted a summer Olympic Games. The
// 2020 Games were held in 2021.
func IsOlympicYear(year int) bool {
	return (year%4 == 0 && year != 2020) || year == 2021
}

// ParsePerformanceSeconds converts "9.58", "1:53.28" or "2:00:35" to
// seconds.
func ParsePerformanceSeconds(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}
	total := 0.0
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, false
		}
		total = total*60 + v
	}
	return total, true
}

// ParseDistanceMetres converts "8.95 m" to 8.95.
func ParseDistanceMetres(s string) (float64, bool) {
	s = strings.TrimSpace(strings.Replace(s, " m", "", 1))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatMinutes renders seconds as "m:ss.ss", e.g. 113.28 -> "1:53.28".
func FormatMinutes(seconds float64) string {
	if seconds < 0 {
		return "-" + FormatMinutes(-seconds)
	}
	mins := int(seconds / 60)
	secs := seconds - float64(mins*60)
	return strconv.Itoa(mins) + ":" + padSeconds(secs)
}

func padSeconds(secs float64) string {
	s := strconv.FormatFloat(secs, 'f', 2, 64)
	if secs < 10 {
		return "0" + s
	}
	return s
}
