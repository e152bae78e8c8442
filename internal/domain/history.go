package domain

import (
	"strings"
	"time"
)

// HistoryRow is one raw row of an athlete's performance history file.
type HistoryRow struct {
	Date    string
	Perf    string
	Meeting string
	Indoor  string
}

// Performance is a parsed outdoor performance.
type Performance struct {
	Date     time.Time
	Seconds  float64
	Meeting  string
	Category string
}

// OtherMeetings is the category for meetings outside SignificantMeetings.
const OtherMeetings = "Other Events"

// SignificantMeetings are the championship and series names performances
// are grouped by, in priority order.
var SignificantMeetings = []string{
	"Olympic Games",
	"World Athletics Championships",
	"Diamond League",
	"European Athletics",
	"UK Athletics",
	"Commonwealth Games",
}

// MeetingCategory returns the first significant meeting name contained in
// meeting (case-insensitive), or OtherMeetings.
func MeetingCategory(meeting string) string {
	lower := strings.ToLower(meeting)
	for _, name := range SignificantMeetings {
		if strings.Contains(lower, strings.ToLower(name)) {
			return name
		}
	}
	return OtherMeetings
}

// ParseHistory keeps outdoor rows with a parseable performance. Rows with an
// unparseable date are kept with a zero Date so they still count in
// summaries; plotting skips them.
func ParseHistory(rows []HistoryRow) []Performance {
	out := make([]Performance, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Indoor) != "" {
			continue
		}
		secs, ok := ParsePerformanceSeconds(row.Perf)
		if !ok {
			continue
		}
		date, _ := ParseHistoryDate(row.Date)
		out = append(out, Performance{
			Date:     date,
			Seconds:  secs,
			Meeting:  row.Meeting,
			Category: MeetingCategory(row.Meeting),
		})
	}
	return out
}

// FilterCategory returns the performances whose meeting contains name.
func FilterCategory(perfs []Performance, name string) []Performance {
	lower := strings.ToLower(name)
	var out []Performance
	for _, p := range perfs {
		if strings.Contains(strings.ToLower(p.Meeting), lower) {
			out = append(out, p)
		}
	}
	return out
}
