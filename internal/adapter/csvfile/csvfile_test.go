package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	men := domain.RecordSet{Sex: domain.SexMen, Records: []domain.Record{
		{Event: "100 m", Performance: "9.58", Wind: "+0.9", Athlete: "Usain Bolt", Nationality: "JAM", Date: "16 Aug 2009", Meeting: "World Championships", Location: "Berlin", Country: "Germany"},
		{Event: "Marathon[e]", Performance: "2:00:35", Athlete: "Kelvin Kiptum", Nationality: "KEN", Date: "8 Oct 2023", Location: "Chicago, Illinois", Country: "United States"},
	}}
	women := domain.RecordSet{Sex: domain.SexWomen, Records: []domain.Record{
		{Event: "800 m", Performance: "1:53.28", Athlete: "Jarmila Kratochvílová", Nationality: "TCH", Date: "26 Jul 1983"},
	}}

	require.NoError(t, store.Load(context.Background(), []domain.RecordSet{men, women}))
	assert.FileExists(t, filepath.Join(dir, "world_records_men.csv"))

	got, err := store.ReadSet(domain.SexMen)
	require.NoError(t, err)
	assert.Equal(t, men.Records, got.Records)
	assert.Equal(t, domain.SexMen, got.Sex)

	got, err = store.ReadSet(domain.SexWomen)
	require.NoError(t, err)
	assert.Equal(t, women.Records, got.Records)

	tbl, err := Load(RecordSetPath(dir, domain.SexMen))
	require.NoError(t, err)
	assert.Equal(t, domain.Columns, tbl.Header)
	assert.Equal(t, "Chicago, Illinois", tbl.Rows[1].Get("Location"))
}

func TestReadRecords_MissingColumn(t *testing.T) {
	path := writeFile(t, "bad.csv", "Event,Performance\n100 m,9.58\n")
	_, err := ReadRecords(path)
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadContinents(t *testing.T) {
	path := writeFile(t, "continents.csv", "\ufeffContinent_Name,Continent_Code,Country_Name,Two_Letter_Country_Code,Three_Letter_Country_Code,Country_Number\n"+
		"Europe,EU,\"Denmark, Kingdom of\",DK,DNK,208\n"+
		"Africa,AF,\"Kenya, Republic of\",KE,KEN,404\n")

	rows, err := ReadContinents(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.Continent{Code: "DNK", CountryName: "Denmark, Kingdom of", ContinentName: "Europe"}, rows[0])

	idx := domain.NewContinentIndex(rows)
	c, ok := idx.Lookup("DEN")
	require.True(t, ok)
	assert.Equal(t, "Europe", c.ContinentName)
}

func TestReadBirthDates(t *testing.T) {
	path := writeFile(t, "dobs.csv", "Male Athlete,Male DOB,Female Athlete,Female DOB\n"+
		"Usain Bolt,21/08/1986,Florence Griffith-Joyner,21/12/1959\n"+
		"Kelvin Kiptum,02/12/1999,,\n")

	rows, err := ReadBirthDates(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.BirthDate{
		{Sex: domain.SexMen, Athlete: "Usain Bolt", DOB: "21/08/1986"},
		{Sex: domain.SexWomen, Athlete: "Florence Griffith-Joyner", DOB: "21/12/1959"},
		{Sex: domain.SexMen, Athlete: "Kelvin Kiptum", DOB: "02/12/1999"},
	}, rows)
}

func TestReadHistory(t *testing.T) {
	path := writeFile(t, "history.csv", "Date,Perf,Meeting,Indoor\n"+
		"10-Aug-24,1:56.72,Olympic Games,\n"+
		"03-Mar-23,1:58.66,European Athletics Indoor Championships,Y\n")

	rows, err := ReadHistory(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.HistoryRow{Date: "10-Aug-24", Perf: "1:56.72", Meeting: "Olympic Games"}, rows[0])
	assert.Equal(t, "Y", rows[1].Indoor)

	perfs := domain.ParseHistory(rows)
	require.Len(t, perfs, 1)
	assert.InDelta(t, 116.72, perfs[0].Seconds, 1e-9)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "empty.csv", ""))
	require.Error(t, err)
}
