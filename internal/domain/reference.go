package domain

import (
	"strings"
	"time"

	"github.com/antzucaro/matchr"
)

// Continent is one row of the country/continent reference list.
type Continent struct {
	Code          string // ISO alpha-3, matched against Nationality
	CountryName   string
	ContinentName string
}

// ContinentIndex resolves nationality codes to country and continent names.
type ContinentIndex struct {
	byCode map[string]Continent
}

// codeRewrites maps ISO alpha-3 codes to the IOC codes Wikipedia uses where
// the two disagree.
var codeRewrites = map[string]string{
	"DNK": "DEN",
}

// historicalNations covers countries that hold records but no longer exist.
var historicalNations = []Continent{
	{Code: "URS", CountryName: "Soviet Union", ContinentName: "Europe"},
}

// NewContinentIndex builds an index from the reference rows. The reference
// list repeats transcontinental countries once per continent; the first
// occurrence wins.
func NewContinentIndex(rows []Continent) *ContinentIndex {
	idx := &ContinentIndex{byCode: make(map[string]Continent, len(rows)+len(historicalNations))}
	all := make([]Continent, 0, len(rows)+len(historicalNations))
	all = append(append(all, rows...), historicalNations...)
	for _, row := range all {
		code := strings.ToUpper(strings.TrimSpace(row.Code))
		if rewritten, ok := codeRewrites[code]; ok {
			code = rewritten
		}
		if code == "" {
			continue
		}
		if _, exists := idx.byCode[code]; exists {
			continue
		}
		row.Code = code
		idx.byCode[code] = row
	}
	return idx
}

// Lookup returns the reference row for a nationality code.
func (c *ContinentIndex) Lookup(code string) (Continent, bool) {
	if c == nil {
		return Continent{}, false
	}
	row, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return row, ok
}

// Len returns the number of indexed codes.
func (c *ContinentIndex) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byCode)
}

// BirthDate is one athlete's date of birth as supplied in the reference file.
type BirthDate struct {
	Sex     Sex
	Athlete string
	DOB     string // "02/01/2006"
}

// DOBMatch describes how an athlete name was resolved.
type DOBMatch struct {
	DOB        time.Time
	Name       string  // reference name that matched
	Similarity float64 // 1 for exact matches
}

// DOBIndex resolves athlete names to birth dates.
type DOBIndex struct {
	exact     map[string]dobEntry
	entries   []dobEntry
	threshold float64
}

type dobEntry struct {
	name       string
	normalized string
	dob        time.Time
}

// NewDOBIndex indexes the parseable rows for one sex. A threshold of 0
// disables fuzzy matching.
func NewDOBIndex(rows []BirthDate, sex Sex, threshold float64) *DOBIndex {
	idx := &DOBIndex{
		exact:     make(map[string]dobEntry),
		threshold: threshold,
	}
	for _, row := range rows {
		if row.Sex != sex {
			continue
		}
		dob, ok := ParseDOB(row.DOB)
		if !ok || strings.TrimSpace(row.Athlete) == "" {
			continue
		}
		e := dobEntry{name: strings.TrimSpace(row.Athlete), normalized: normalizeName(row.Athlete), dob: dob}
		if _, exists := idx.exact[e.name]; !exists {
			idx.exact[e.name] = e
		}
		idx.entries = append(idx.entries, e)
	}
	return idx
}

// Lookup finds the birth date for an athlete, trying an exact name match
// first and then the most similar name at or above the threshold.
func (d *DOBIndex) Lookup(athlete string) (DOBMatch, bool) {
	if d == nil {
		return DOBMatch{}, false
	}
	athlete = strings.TrimSpace(athlete)
	if athlete == "" {
		return DOBMatch{}, false
	}
	if e, ok := d.exact[athlete]; ok {
		return DOBMatch{DOB: e.dob, Name: e.name, Similarity: 1}, true
	}
	if d.threshold <= 0 {
		return DOBMatch{}, false
	}

	target := normalizeName(athlete)
	var best dobEntry
	bestScore := 0.0
	for _, e := range d.entries {
		score := matchr.JaroWinkler(target, e.normalized, false)
		if score > bestScore {
			best, bestScore = e, score
		}
	}
	if bestScore < d.threshold {
		return DOBMatch{}, false
	}
	return DOBMatch{DOB: best.dob, Name: best.name, Similarity: bestScore}, true
}

func normalizeName(name string) string {
	name = footnoteRe.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
