package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/athletics-records-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/athletics-records-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/athletics-records-etl/internal/config"
	"github.com/couchcryptid/athletics-records-etl/internal/domain"
	"github.com/couchcryptid/athletics-records-etl/internal/report"
)

const tableHeader = `<tr><th colspan="12">Records</th></tr>
<tr><th>Perf.</th><th>Wind</th><th>Ref</th><th>Avg. speed mph (kmph)</th><th>Pts</th><th>Athlete</th><th>Nationality</th><th>Date</th><th>Meeting</th><th>Location</th><th>Country</th></tr>`

const page = `<html><body>
<table class="wikitable">` + tableHeader + `
<tr><td>100 m</td><td>9.58</td><td>+0.9</td><td>[1]</td><td></td><td></td><td>Usain Bolt</td><td>JAM</td><td>16 Aug 2009</td><td>World Championships</td><td>Berlin</td><td>Germany</td></tr>
<tr><td>800 m</td><td>1:40.91</td><td></td><td>[2]</td><td></td><td></td><td>David Rudisha</td><td>KEN</td><td>9 Aug 2012</td><td>Olympic Games</td><td>London</td><td>United Kingdom</td></tr>
</table>
<table class="wikitable">` + tableHeader + `
<tr><td>100 m</td><td>10.49</td><td>0.0</td><td>[3]</td><td></td><td></td><td>Florence Griffith-Joyner</td><td>USA</td><td>16 Jul 1988</td><td></td><td>Indianapolis</td><td>United States</td></tr>
<tr style="background:pink"><td>800 m</td><td>1:54.01</td><td></td><td>[4]</td><td></td><td></td><td>Someone Else</td><td>KEN</td><td>1 Jan 2020</td><td></td><td>Nowhere</td><td>Kenya</td></tr>
<tr><td>800 m</td><td>1:53.28</td><td></td><td>[5]</td><td></td><td></td><td>Jarmila Kratochvílová</td><td>TCH</td><td>26 Jul 1983</td><td></td><td>Munich</td><td>West Germany</td></tr>
</table>
</body></html>`

const continents = "Continent_Name,Continent_Code,Country_Name,Two_Letter_Country_Code,Three_Letter_Country_Code,Country_Number\n" +
	"North America,NA,Jamaica,JM,JAM,388\n" +
	"Africa,AF,Kenya,KE,KEN,404\n" +
	"North America,NA,United States of America,US,USA,840\n"

const dobs = "Male Athlete,Male DOB,Female Athlete,Female DOB\n" +
	"Usain Bolt,21/08/1986,Florence Griffith-Joyner,21/12/1959\n" +
	"David Rudisha,17/12/1988,Jarmila Kratochvílová,26/01/1951\n"

// setup isolates config from the environment and returns the data dir and
// the saved page path.
func setup(t *testing.T) (dataDir, pagePath string) {
	t.Helper()
	root := t.TempDir()
	dataDir = filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("FIGURES_DIR", filepath.Join(root, "figures"))
	t.Setenv("TABLES_DIR", filepath.Join(root, "tables"))
	t.Setenv("REFERENCE_YEAR", "2025")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("XLSX_PATH", "")
	t.Setenv("METRICS_FILE", "")

	pagePath = filepath.Join(root, "page.html")
	require.NoError(t, os.WriteFile(pagePath, []byte(page), 0o600))
	return dataDir, pagePath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestScrapeThenValidate(t *testing.T) {
	dataDir, pagePath := setup(t)

	_, err := execute(t, "scrape", "--offline", pagePath, "--data-dir", dataDir)
	require.NoError(t, err)

	women, err := csvfile.ReadRecords(csvfile.RecordSetPath(dataDir, domain.SexWomen))
	require.NoError(t, err)
	require.Len(t, women, 2)
	assert.Equal(t, "Jarmila Kratochvílová", women[1].Athlete)

	out, err := execute(t, "validate", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "All validations passed.")
	assert.Contains(t, out, "Records: 2 men, 2 women")
}

func TestRun_WithOptionalSinks(t *testing.T) {
	dataDir, pagePath := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, config.ContinentsFile), []byte(continents), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, config.DOBFile), []byte(dobs), 0o600))

	dir := t.TempDir()
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "records.db"))
	t.Setenv("XLSX_PATH", filepath.Join(dir, "records.xlsx"))
	t.Setenv("METRICS_FILE", filepath.Join(dir, "records.prom"))

	out, err := execute(t, "run", "--offline", pagePath, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Sprints")

	assert.FileExists(t, filepath.Join(os.Getenv("FIGURES_DIR"), report.GenderGapChart))
	assert.FileExists(t, filepath.Join(os.Getenv("TABLES_DIR"), report.AgeTableFile))
	assert.FileExists(t, filepath.Join(dir, "records.prom"))

	rows, err := xlsx.ReadSheet(filepath.Join(dir, "records.xlsx"), xlsx.AgeSummarySheet)
	require.NoError(t, err)
	assert.Greater(t, len(rows), 1)

	out, err = execute(t, "validate", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "SQLite parity")
	assert.Contains(t, out, "Workbook parity")
	assert.NotContains(t, out, "FAIL")
}

func TestValidate_Failures(t *testing.T) {
	dataDir, _ := setup(t)
	require.NoError(t, csvfile.WriteRecords(csvfile.RecordSetPath(dataDir, domain.SexMen), []domain.Record{
		{Event: "100 m", Performance: "9.58"},
		{Event: "", Performance: "9.99"},
	}))
	require.NoError(t, csvfile.WriteRecords(csvfile.RecordSetPath(dataDir, domain.SexWomen), nil))

	out, err := execute(t, "validate", "--data-dir", dataDir)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, out, "Validation FAILED.")
	assert.Contains(t, out, "men line 3: empty Event")
	assert.Contains(t, out, "women: no records")
}

func TestValidate_BadHeaderAndShape(t *testing.T) {
	dataDir, _ := setup(t)
	bad := "Event,Perf\n100 m,9.58\n"
	require.NoError(t, os.WriteFile(csvfile.RecordSetPath(dataDir, domain.SexMen), []byte(bad), 0o600))
	require.NoError(t, csvfile.WriteRecords(csvfile.RecordSetPath(dataDir, domain.SexWomen), []domain.Record{{Event: "100 m"}}))

	out, err := execute(t, "validate", "--data-dir", dataDir)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, out, "Canonical header")
	assert.Contains(t, out, "men line 2: 2 fields, want 11")
}

func TestValidate_MissingFiles(t *testing.T) {
	dataDir, _ := setup(t)
	_, err := execute(t, "validate", "--data-dir", dataDir)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "load men records"))
}

func TestScrape_MissingPage(t *testing.T) {
	dataDir, _ := setup(t)
	_, err := execute(t, "scrape", "--offline", filepath.Join(dataDir, "nope.html"), "--data-dir", dataDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch")
}

func TestRoot_UnknownArgs(t *testing.T) {
	_, err := execute(t, "report", "extra")
	require.Error(t, err)
}
