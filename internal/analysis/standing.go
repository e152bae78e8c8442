package analysis

import (
	"sort"

	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

// Standing is how long one record has stood.
type Standing struct {
	Event      string
	Group      string
	Year       int
	YearsSince int
}

// LongestStanding returns the dated records outside the Other group, oldest
// first. Ties keep table order.
func LongestStanding(records []domain.EnrichedRecord) []Standing {
	var out []Standing
	for _, r := range records {
		if r.Group == domain.GroupOther || r.YearsSince == nil {
			continue
		}
		out = append(out, Standing{Event: r.Event, Group: r.Group, Year: r.Year, YearsSince: *r.YearsSince})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].YearsSince > out[j].YearsSince })
	return out
}

// StandingGroups returns the sorted distinct groups across both tables.
func StandingGroups(sets ...[]Standing) []string {
	seen := map[string]bool{}
	for _, set := range sets {
		for _, s := range set {
			seen[s.Group] = true
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
