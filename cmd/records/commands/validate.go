package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/athletics-records-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/athletics-records-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/athletics-records-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/athletics-records-etl/internal/config"
	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

// ErrValidation is returned when any validation phase fails.
var ErrValidation = errors.New("validation failed")

var sexes = []domain.Sex{domain.SexMen, domain.SexWomen}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Re-reads the written record tables and checks their shape.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return validate(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
}

func validate(ctx context.Context, w io.Writer, cfg *config.Config) error {
	fmt.Fprintln(w, "=== World Records Output Validation ===")
	fmt.Fprintln(w)

	tables := make(map[domain.Sex]csvfile.Table, len(sexes))
	for _, sex := range sexes {
		t, err := csvfile.Load(csvfile.RecordSetPath(cfg.DataDir, sex))
		if err != nil {
			return fmt.Errorf("load %s records: %w", sex, err)
		}
		tables[sex] = t
	}

	phases := []*phase{
		validateHeaders(tables),
		validateRows(tables),
		validateCounts(tables),
	}
	if cfg.SQLitePath != "" {
		p, err := validateSQLite(ctx, cfg.SQLitePath, tables)
		if err != nil {
			return err
		}
		phases = append(phases, p)
	}
	if cfg.XLSXPath != "" {
		phases = append(phases, validateWorkbook(cfg.XLSXPath, tables))
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-32s %s\n", p.name, status)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d men, %d women\n", len(tables[domain.SexMen].Rows), len(tables[domain.SexWomen].Rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return nil
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return ErrValidation
}

func validateHeaders(tables map[domain.Sex]csvfile.Table) *phase {
	p := &phase{name: "Canonical header"}
	for _, sex := range sexes {
		if header := tables[sex].Header; !slices.Equal(header, domain.Columns) {
			p.errorf("%s: header %q, want %q", sex, header, domain.Columns)
		}
	}
	return p
}

func validateRows(tables map[domain.Sex]csvfile.Table) *phase {
	p := &phase{name: "Row shape"}
	for _, sex := range sexes {
		for _, row := range tables[sex].Rows {
			if len(row.Fields) != len(domain.Columns) {
				p.errorf("%s line %d: %d fields, want %d", sex, row.Line, len(row.Fields), len(domain.Columns))
				continue
			}
			if row.Fields[0] == "" {
				p.errorf("%s line %d: empty Event", sex, row.Line)
			}
		}
	}
	return p
}

func validateCounts(tables map[domain.Sex]csvfile.Table) *phase {
	p := &phase{name: "Non-empty record sets"}
	for _, sex := range sexes {
		if len(tables[sex].Rows) == 0 {
			p.errorf("%s: no records", sex)
		}
	}
	return p
}

// validateSQLite checks the database holds the same events in the same order.
func validateSQLite(ctx context.Context, path string, tables map[domain.Sex]csvfile.Table) (*phase, error) {
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	p := &phase{name: "SQLite parity"}
	for _, sex := range sexes {
		set, err := store.ReadSet(ctx, sex)
		if err != nil {
			return nil, err
		}
		compareEvents(p, string(sex), tables[sex], func(i int) string { return set.Records[i].Event }, len(set.Records))
	}
	return p, nil
}

// validateWorkbook checks each sheet mirrors its CSV.
func validateWorkbook(path string, tables map[domain.Sex]csvfile.Table) *phase {
	p := &phase{name: "Workbook parity"}
	for _, sex := range sexes {
		rows, err := xlsx.ReadSheet(path, xlsx.SheetName(sex))
		if err != nil {
			p.errorf("%s: %v", sex, err)
			continue
		}
		if len(rows) == 0 {
			p.errorf("%s: empty sheet", sex)
			continue
		}
		data := rows[1:]
		compareEvents(p, string(sex), tables[sex], func(i int) string {
			if len(data[i]) == 0 {
				return ""
			}
			return data[i][0]
		}, len(data))
	}
	return p
}

func compareEvents(p *phase, label string, t csvfile.Table, event func(int) string, n int) {
	if n != len(t.Rows) {
		p.errorf("%s: %d rows, CSV has %d", label, n, len(t.Rows))
		return
	}
	for i, row := range t.Rows {
		if len(row.Fields) == 0 {
			continue
		}
		if got := event(i); got != row.Fields[0] {
			p.errorf("%s line %d: event %q, CSV has %q", label, row.Line, got, row.Fields[0])
		}
	}
}
