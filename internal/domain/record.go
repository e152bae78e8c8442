package domain

import "time"

// Sex identifies which record table a row came from.
type Sex string

const (
	SexMen   Sex = "men"
	SexWomen Sex = "women"
)

// Columns is the canonical header of an extracted record set, in order.
var Columns = []string{
	"Event", "Performance", "Wind", "Avg. speed mph (kmph)", "Pts",
	"Athlete", "Nationality", "Date", "Meeting", "Location", "Country",
}

// Record is one cleaned world record row. All fields are the raw cell text.
type Record struct {
	Event       string `json:"event"`
	Performance string `json:"performance"`
	Wind        string `json:"wind,omitempty"`
	AvgSpeed    string `json:"avg_speed,omitempty"`
	Pts         string `json:"pts,omitempty"`
	Athlete     string `json:"athlete"`
	Nationality string `json:"nationality"`
	Date        string `json:"date"`
	Meeting     string `json:"meeting,omitempty"`
	Location    string `json:"location,omitempty"`
	Country     string `json:"country,omitempty"`
}

// Fields returns the record in [Columns] order.
func (r Record) Fields() []string {
	return []string{
		r.Event, r.Performance, r.Wind, r.AvgSpeed, r.Pts,
		r.Athlete, r.Nationality, r.Date, r.Meeting, r.Location, r.Country,
	}
}

// RecordFromFields builds a Record from values in [Columns] order. Missing
// trailing values are left empty; extra values are ignored.
func RecordFromFields(fields []string) Record {
	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	return Record{
		Event:       get(0),
		Performance: get(1),
		Wind:        get(2),
		AvgSpeed:    get(3),
		Pts:         get(4),
		Athlete:     get(5),
		Nationality: get(6),
		Date:        get(7),
		Meeting:     get(8),
		Location:    get(9),
		Country:     get(10),
	}
}

// RecordSet is the extracted record table for one sex.
type RecordSet struct {
	Sex       Sex
	Records   []Record
	ScrapedAt time.Time
	RunID     string // shared by both sets of one scrape
}

// EnrichedRecord is a Record joined with reference data and derived fields.
// It is always built as a new value; the source RecordSet is never mutated.
type EnrichedRecord struct {
	Record
	Sex Sex

	CountryName string
	Continent   string
	Group       string

	RecordDate time.Time // zero when unparseable
	BirthDate  time.Time // zero when no DOB matched
	Age        *float64  // nil when either date is missing
	Year       int       // 0 when RecordDate is zero
	YearsSince *int
	Olympic    bool
}

// HasDate reports whether the record date parsed.
func (e EnrichedRecord) HasDate() bool { return !e.RecordDate.IsZero() }
