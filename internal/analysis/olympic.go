// Package analysis computes the summary statistics reported for the
// enriched record tables and the athlete history.
package analysis

import "github.com/couchcryptid/athletics-records-etl/internal/domain"

// OlympicSplit counts records set in Olympic and non-Olympic years.
// Undated records are counted separately and excluded from percentages.
type OlympicSplit struct {
	Sex           domain.Sex
	Olympic       int
	NonOlympic    int
	Undated       int
	OlympicPct    float64
	NonOlympicPct float64
}

// Total is the number of dated records.
func (s OlympicSplit) Total() int { return s.Olympic + s.NonOlympic }

// OlympicYears splits one sex's records by whether they fell in an Olympic year.
func OlympicYears(sex domain.Sex, records []domain.EnrichedRecord) OlympicSplit {
	split := OlympicSplit{Sex: sex}
	for _, r := range records {
		switch {
		case !r.HasDate():
			split.Undated++
		case r.Olympic:
			split.Olympic++
		default:
			split.NonOlympic++
		}
	}
	if total := split.Total(); total > 0 {
		split.OlympicPct = float64(split.Olympic) / float64(total) * 100
		split.NonOlympicPct = float64(split.NonOlympic) / float64(total) * 100
	}
	return split
}
