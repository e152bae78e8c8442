// Package xlsx exports record sets and summaries to an Excel workbook.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/athletics-records-etl/internal/analysis"
	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

// AgeSummarySheet holds the age statistics table.
const AgeSummarySheet = "Age summary"

const defaultSheet = "Sheet1"

// Workbook writes one sheet per record set to an .xlsx file.
type Workbook struct {
	path string
}

// NewWorkbook creates a Workbook that writes to path.
func NewWorkbook(path string) *Workbook { return &Workbook{path: path} }

// Name identifies the sink in logs and metrics.
func (w *Workbook) Name() string { return "xlsx" }

// SheetName is the sheet a sex's records are written to.
func SheetName(sex domain.Sex) string {
	s := string(sex)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Load replaces the workbook with one sheet per record set.
func (w *Workbook) Load(_ context.Context, sets []domain.RecordSet) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	for i, set := range sets {
		sheet := SheetName(set.Sex)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("new sheet %s: %w", sheet, err)
		}

		rows := make([][]string, 0, len(set.Records)+1)
		rows = append(rows, domain.Columns)
		for _, rec := range set.Records {
			rows = append(rows, rec.Fields())
		}
		if err := writeRows(f, sheet, rows, header); err != nil {
			return err
		}
	}
	return w.save(f)
}

// AddAgeSummary writes the age statistics to their own sheet, replacing an
// earlier one. The workbook is created if it does not exist.
func (w *Workbook) AddAgeSummary(summaries ...analysis.AgeSummary) error {
	f, err := excelize.OpenFile(w.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		f = excelize.NewFile()
	case err != nil:
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(AgeSummarySheet); idx >= 0 {
		if err := f.DeleteSheet(AgeSummarySheet); err != nil {
			return fmt.Errorf("replace sheet: %w", err)
		}
	}
	if _, err := f.NewSheet(AgeSummarySheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	if idx, _ := f.GetSheetIndex(defaultSheet); idx >= 0 && len(f.GetSheetList()) > 1 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("drop default sheet: %w", err)
		}
	}

	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	rows := [][]string{{"Sex", "Group", "Count", "Mean", "Median", "Min", "Max"}}
	for _, s := range summaries {
		for _, g := range s.Rows() {
			rows = append(rows, []string{
				SheetName(s.Sex), g.Group, fmt.Sprint(g.Count),
				fmt.Sprintf("%.2f", g.Mean), fmt.Sprintf("%.2f", g.Median),
				fmt.Sprintf("%.2f", g.Min), fmt.Sprintf("%.2f", g.Max),
			})
		}
	}
	if err := writeRows(f, AgeSummarySheet, rows, header); err != nil {
		return err
	}
	return w.save(f)
}

// ReadSheet returns every row of a sheet.
func ReadSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func (w *Workbook) save(f *excelize.File) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func headerStyle(f *excelize.File) (int, error) {
	id, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("header style: %w", err)
	}
	return id, nil
}

// writeRows writes rows from A1 with a bold, frozen header row.
func writeRows(f *excelize.File, sheet string, rows [][]string, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze %s header: %w", sheet, err)
	}
	return nil
}
