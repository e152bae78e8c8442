// Package sqlite persists record sets to a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

//go:embed schema.sql
var schema string

const insertRecord = `insert into world_records (
	sex, position, event, performance, wind, avg_speed, pts,
	athlete, nationality, record_date, meeting, location, country, scraped_at
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectRecords = `select
	event, performance, wind, avg_speed, pts,
	athlete, nationality, record_date, meeting, location, country, scraped_at
from world_records where sex = ? order by position`

// Store writes record sets to the world_records table. Each load replaces
// the rows of the sexes it carries.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Name identifies the sink in logs and metrics.
func (s *Store) Name() string { return "sqlite" }

// Load replaces the stored rows for each record set in one transaction.
func (s *Store) Load(ctx context.Context, sets []domain.RecordSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, insertRecord)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, set := range sets {
		if _, err := tx.ExecContext(ctx, "delete from world_records where sex = ?", string(set.Sex)); err != nil {
			return fmt.Errorf("clear %s: %w", set.Sex, err)
		}
		scraped := set.ScrapedAt.UTC().Format(time.RFC3339)
		for i, r := range set.Records {
			if _, err := stmt.ExecContext(ctx,
				string(set.Sex), i, r.Event, r.Performance, r.Wind, r.AvgSpeed, r.Pts,
				r.Athlete, r.Nationality, r.Date, r.Meeting, r.Location, r.Country, scraped,
			); err != nil {
				return fmt.Errorf("insert %s row %d: %w", set.Sex, i, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReadSet returns the stored record set for sex in source order.
func (s *Store) ReadSet(ctx context.Context, sex domain.Sex) (domain.RecordSet, error) {
	rows, err := s.db.QueryContext(ctx, selectRecords, string(sex))
	if err != nil {
		return domain.RecordSet{}, fmt.Errorf("query %s: %w", sex, err)
	}
	defer rows.Close()

	set := domain.RecordSet{Sex: sex}
	for rows.Next() {
		var r domain.Record
		var scraped string
		if err := rows.Scan(
			&r.Event, &r.Performance, &r.Wind, &r.AvgSpeed, &r.Pts,
			&r.Athlete, &r.Nationality, &r.Date, &r.Meeting, &r.Location, &r.Country, &scraped,
		); err != nil {
			return domain.RecordSet{}, fmt.Errorf("scan %s: %w", sex, err)
		}
		if t, err := time.Parse(time.RFC3339, scraped); err == nil {
			set.ScrapedAt = t
		}
		set.Records = append(set.Records, r)
	}
	if err := rows.Err(); err != nil {
		return domain.RecordSet{}, fmt.Errorf("iterate %s: %w", sex, err)
	}
	return set, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
