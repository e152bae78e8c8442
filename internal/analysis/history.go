package analysis

import "github.com/couchcryptid/athletics-records-etl/internal/domain"

// CategoryCount is the number of performances in one meeting category.
type CategoryCount struct {
	Category string
	Count    int
	Best     float64 // fastest seconds
}

// ByCategory groups performances by meeting category, significant meetings
// first in priority order and Other Events last. Empty categories are omitted.
func ByCategory(perfs []domain.Performance) ([]CategoryCount, map[string][]domain.Performance) {
	groups := make(map[string][]domain.Performance)
	for _, p := range perfs {
		groups[p.Category] = append(groups[p.Category], p)
	}

	order := append(append([]string(nil), domain.SignificantMeetings...), domain.OtherMeetings)
	var counts []CategoryCount
	for _, cat := range order {
		ps := groups[cat]
		if len(ps) == 0 {
			continue
		}
		best := ps[0].Seconds
		for _, p := range ps[1:] {
			best = min(best, p.Seconds)
		}
		counts = append(counts, CategoryCount{Category: cat, Count: len(ps), Best: best})
	}
	return counts, groups
}
