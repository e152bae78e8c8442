package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

// OverallGroup labels the statistics computed over every aged record.
const OverallGroup = "Overall"

// excludedAgeGroups have team or non-standard entries whose ages are not
// comparable.
var excludedAgeGroups = map[string]bool{
	domain.GroupRelay: true,
	domain.GroupOther: true,
}

// AgeStats summarizes record-breaker ages for one group, rounded to 2dp.
type AgeStats struct {
	Group  string
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
}

// AgeSummary is the age table for one sex: one entry per event group with
// at least one known age, in group name order, then Overall.
type AgeSummary struct {
	Sex     domain.Sex
	Groups  []AgeStats
	Overall AgeStats
}

// Rows returns the group statistics followed by Overall.
func (s AgeSummary) Rows() []AgeStats {
	return append(append([]AgeStats(nil), s.Groups...), s.Overall)
}

// SummarizeAges computes per-group and overall age statistics. Relay and
// Other groups are left out of the per-group rows but count toward Overall.
func SummarizeAges(sex domain.Sex, records []domain.EnrichedRecord) AgeSummary {
	byGroup := AgesByGroup(records)
	summary := AgeSummary{Sex: sex, Overall: ageStats(OverallGroup, AllAges(records))}
	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	for _, g := range groups {
		summary.Groups = append(summary.Groups, ageStats(g, byGroup[g]))
	}
	return summary
}

// AgesByGroup collects known ages per event group, excluding Relay and Other.
func AgesByGroup(records []domain.EnrichedRecord) map[string][]float64 {
	out := make(map[string][]float64)
	for _, r := range records {
		if r.Age == nil || excludedAgeGroups[r.Group] {
			continue
		}
		out[r.Group] = append(out[r.Group], *r.Age)
	}
	return out
}

// AllAges returns every known age in record order.
func AllAges(records []domain.EnrichedRecord) []float64 {
	var out []float64
	for _, r := range records {
		if r.Age != nil {
			out = append(out, *r.Age)
		}
	}
	return out
}

func ageStats(group string, ages []float64) AgeStats {
	s := AgeStats{Group: group, Count: len(ages)}
	if len(ages) == 0 {
		return s
	}
	s.Mean = round2(stat.Mean(ages, nil))
	s.Median = round2(median(ages))
	s.Min = round2(floats.Min(ages))
	s.Max = round2(floats.Max(ages))
	return s
}

// median averages the two middle values of an even-length sample.
func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
