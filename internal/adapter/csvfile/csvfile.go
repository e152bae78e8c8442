// Package csvfile reads and writes the flat files the records job exchanges:
// extracted record sets and the reference tables joined onto them.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

// Reference file column names.
const (
	colCountryCode   = "Three_Letter_Country_Code"
	colCountryName   = "Country_Name"
	colContinentName = "Continent_Name"

	colMaleAthlete   = "Male Athlete"
	colMaleDOB       = "Male DOB"
	colFemaleAthlete = "Female Athlete"
	colFemaleDOB     = "Female DOB"

	colHistoryDate    = "Date"
	colHistoryPerf    = "Perf"
	colHistoryMeeting = "Meeting"
	colHistoryIndoor  = "Indoor"
)

// ErrMissingColumn is returned when a reference file lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Row is a parsed CSV row with field values keyed by header name.
type Row struct {
	Line   int
	Fields []string
	byName map[string]string
}

// Get returns the trimmed value of a named column.
func (r Row) Get(name string) string { return r.byName[name] }

// Table is a parsed CSV file.
type Table struct {
	Header []string
	Rows   []Row
}

// HasColumns reports the first of names missing from the header.
func (t Table) HasColumns(names ...string) error {
	have := make(map[string]bool, len(t.Header))
	for _, h := range t.Header {
		have[h] = true
	}
	for _, n := range names {
		if !have[n] {
			return fmt.Errorf("%q: %w", n, ErrMissingColumn)
		}
	}
	return nil
}

// Load reads a CSV file with a header row. Ragged rows are accepted.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(all) == 0 {
		return Table{}, fmt.Errorf("no header in %s", path)
	}

	header := all[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	t := Table{Header: header, Rows: make([]Row, 0, len(all)-1)}
	for i, fields := range all[1:] {
		byName := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(fields) {
				byName[h] = strings.TrimSpace(fields[j])
			}
		}
		t.Rows = append(t.Rows, Row{Line: i + 2, Fields: fields, byName: byName})
	}
	return t, nil
}

// RecordSetPath is where a sex's extracted record set is stored in dir.
func RecordSetPath(dir string, sex domain.Sex) string {
	return filepath.Join(dir, "world_records_"+string(sex)+".csv")
}

// WriteRecords writes records under the canonical header, replacing path.
func WriteRecords(path string, records []domain.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(domain.Columns); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec.Fields()); err != nil {
			f.Close()
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// ReadRecords reads a record set written by WriteRecords.
func ReadRecords(path string) ([]domain.Record, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := t.HasColumns(domain.Columns...); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	records := make([]domain.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		fields := make([]string, len(domain.Columns))
		for i, col := range domain.Columns {
			fields[i] = row.Get(col)
		}
		records = append(records, domain.RecordFromFields(fields))
	}
	return records, nil
}

// ReadContinents reads the country and continent code list.
func ReadContinents(path string) ([]domain.Continent, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := t.HasColumns(colCountryCode, colCountryName, colContinentName); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make([]domain.Continent, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, domain.Continent{
			Code:          row.Get(colCountryCode),
			CountryName:   row.Get(colCountryName),
			ContinentName: row.Get(colContinentName),
		})
	}
	return out, nil
}

// ReadBirthDates reads the side-by-side men's and women's DOB columns.
// Blank cells (the shorter list's padding) are skipped.
func ReadBirthDates(path string) ([]domain.BirthDate, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := t.HasColumns(colMaleAthlete, colMaleDOB, colFemaleAthlete, colFemaleDOB); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var out []domain.BirthDate
	for _, row := range t.Rows {
		if name := row.Get(colMaleAthlete); name != "" {
			out = append(out, domain.BirthDate{Sex: domain.SexMen, Athlete: name, DOB: row.Get(colMaleDOB)})
		}
		if name := row.Get(colFemaleAthlete); name != "" {
			out = append(out, domain.BirthDate{Sex: domain.SexWomen, Athlete: name, DOB: row.Get(colFemaleDOB)})
		}
	}
	return out, nil
}

// ReadHistory reads an athlete's performance history.
func ReadHistory(path string) ([]domain.HistoryRow, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := t.HasColumns(colHistoryDate, colHistoryPerf, colHistoryMeeting); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make([]domain.HistoryRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, domain.HistoryRow{
			Date:    row.Get(colHistoryDate),
			Perf:    row.Get(colHistoryPerf),
			Meeting: row.Get(colHistoryMeeting),
			Indoor:  row.Get(colHistoryIndoor),
		})
	}
	return out, nil
}

// Store writes each record set to its own file in a directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store { return &Store{dir: dir} }

// Name identifies the sink in logs and metrics.
func (s *Store) Name() string { return "csv" }

// Load writes the record sets, replacing earlier files.
func (s *Store) Load(_ context.Context, sets []domain.RecordSet) error {
	for _, set := range sets {
		if err := WriteRecords(RecordSetPath(s.dir, set.Sex), set.Records); err != nil {
			return err
		}
	}
	return nil
}

// ReadSet reads one sex's record set back from the store.
func (s *Store) ReadSet(sex domain.Sex) (domain.RecordSet, error) {
	records, err := ReadRecords(RecordSetPath(s.dir, sex))
	if err != nil {
		return domain.RecordSet{}, err
	}
	return domain.RecordSet{Sex: sex, Records: records}, nil
}
