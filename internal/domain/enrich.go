package domain

import "sort"

// EnrichStats reports the reference data misses for one record set.
type EnrichStats struct {
	Records              int
	UnmatchedNationality []string
	UnmatchedAthletes    []string
	FuzzyMatches         int
	UnparsedDates        int
}

// Enricher joins record sets with reference data.
type Enricher struct {
	continents    *ContinentIndex
	dobs          map[Sex]*DOBIndex
	referenceYear int
}

// NewEnricher creates an Enricher. A referenceYear of 0 means the current
// year according to the package clock.
func NewEnricher(continents *ContinentIndex, birthDates []BirthDate, nameThreshold float64, referenceYear int) *Enricher {
	if referenceYear == 0 {
		referenceYear = clock.Now().Year()
	}
	return &Enricher{
		continents: continents,
		dobs: map[Sex]*DOBIndex{
			SexMen:   NewDOBIndex(birthDates, SexMen, nameThreshold),
			SexWomen: NewDOBIndex(birthDates, SexWomen, nameThreshold),
		},
		referenceYear: referenceYear,
	}
}

// ReferenceYear returns the year "years since" is measured from.
func (e *Enricher) ReferenceYear() int { return e.referenceYear }

// Enrich builds a new enriched table from a record set, in source order.
func (e *Enricher) Enrich(set RecordSet) ([]EnrichedRecord, EnrichStats) {
	out := make([]EnrichedRecord, 0, len(set.Records))
	stats := EnrichStats{Records: len(set.Records)}
	missingNat := map[string]bool{}
	missingAth := map[string]bool{}

	for _, rec := range set.Records {
		rec.Event = CleanEventName(rec.Event)
		er := EnrichedRecord{
			Record: rec,
			Sex:    set.Sex,
			Group:  ClassifyEvent(rec.Event),
		}

		if c, ok := e.continents.Lookup(rec.Nationality); ok {
			er.CountryName = c.CountryName
			er.Continent = c.ContinentName
		} else if rec.Nationality != "" {
			missingNat[rec.Nationality] = true
		}

		if d, ok := ParseRecordDate(rec.Date); ok {
			er.RecordDate = d
			er.Year = d.Year()
			er.Olympic = IsOlympicYear(er.Year)
			since := e.referenceYear - er.Year
			er.YearsSince = &since
		} else {
			stats.UnparsedDates++
		}

		if m, ok := e.dobs[set.Sex].Lookup(rec.Athlete); ok {
			er.BirthDate = m.DOB
			if m.Similarity < 1 {
				stats.FuzzyMatches++
			}
		} else if rec.Athlete != "" {
			missingAth[rec.Athlete] = true
		}
		er.Age = AgeAt(er.BirthDate, er.RecordDate)

		out = append(out, er)
	}

	stats.UnmatchedNationality = sortedKeys(missingNat)
	stats.UnmatchedAthletes = sortedKeys(missingAth)
	return out, stats
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
