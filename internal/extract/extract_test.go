package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/athletics-records-etl/internal/domain"
)

const header = `<tr><th colspan="12">Men</th></tr>
<tr><th>Perf.</th><th>Wind</th><th>Ref</th><th>Avg. speed</th><th>Pts</th><th>Athlete</th><th>Nationality</th><th>Date</th><th>Meeting</th><th>Location</th><th>Country</th></tr>`

func parseTable(t *testing.T, rows string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table class=\"wikitable\">" + header + rows + "</table>"))
	require.NoError(t, err)
	return doc.Find("table").First()
}

func row(cells ...string) string {
	var b strings.Builder
	b.WriteString("<tr>")
	for _, c := range cells {
		b.WriteString(c)
	}
	b.WriteString("</tr>")
	return b.String()
}

func td(s string) string { return "<td>" + s + "</td>" }

// dataCells returns the ten cells that follow the event column.
func dataCells(perf, athlete string) []string {
	return []string{td(perf), td("+0.9"), td("[1]"), td("23.35 (37.58)"), td(""), td(athlete), td("JAM"), td("16 Aug 2009"), td("World Championships"), td("Berlin")}
}

func TestTable_RowspanCarry(t *testing.T) {
	first := append([]string{`<td rowspan="3">100 m</td>`}, dataCells("9.58", "Usain Bolt")...)
	second := dataCells("9.58", "Usain Bolt")
	third := dataCells("9.58", "Usain Bolt")

	table := parseTable(t, row(first...)+row(second...)+row(third...))
	records, stats := Table(table)

	require.Len(t, records, 3)
	for _, r := range records {
		assert.Equal(t, "100 m", r.Event)
		assert.Equal(t, "9.58", r.Performance)
		assert.Equal(t, "Usain Bolt", r.Athlete)
	}
	assert.Equal(t, 3, stats.DataRows)
	assert.Zero(t, stats.Flagged)
}

func TestTable_CanonicalColumns(t *testing.T) {
	cells := append([]string{`<td rowspan="2">100 m</td>`}, dataCells("9.58", "Usain Bolt")...)
	cells = append(cells, td("Germany"))
	next := append(dataCells("9.69", "Usain Bolt"), td("China"))

	records, _ := Table(parseTable(t, row(cells...)+row(next...)))
	require.Len(t, records, 2)

	want := domain.Record{
		Event:       "100 m",
		Performance: "9.58",
		Wind:        "+0.9",
		AvgSpeed:    "23.35 (37.58)",
		Pts:         "",
		Athlete:     "Usain Bolt",
		Nationality: "JAM",
		Date:        "16 Aug 2009",
		Meeting:     "World Championships",
		Location:    "Berlin",
		Country:     "Germany",
	}
	assert.Equal(t, want, records[0])
	assert.Equal(t, "100 m", records[1].Event)
	assert.Equal(t, "9.69", records[1].Performance)
	assert.Equal(t, "China", records[1].Country)
	for _, r := range records {
		assert.Len(t, r.Fields(), len(domain.Columns))
	}
}

func TestTable_FreshEventWithoutRowspan(t *testing.T) {
	a := append([]string{td("200 m")}, dataCells("19.19", "Usain Bolt")...)
	b := append([]string{td("400 m")}, dataCells("43.03", "Wayde van Niekerk")...)

	records, _ := Table(parseTable(t, row(a...)+row(b...)))
	require.Len(t, records, 2)
	assert.Equal(t, "200 m", records[0].Event)
	assert.Equal(t, "400 m", records[1].Event)
	assert.Equal(t, "Wayde van Niekerk", records[1].Athlete)
}

func TestTable_Flags(t *testing.T) {
	tests := []struct {
		name    string
		rows    string
		events  []string
		flagged int
	}{
		{
			name:    "row style",
			rows:    row(append([]string{td("100 m")}, dataCells("9.58", "A")...)...) + `<tr style="background:pink">` + td("200 m") + strings.Join(dataCells("19.19", "B"), "") + "</tr>",
			events:  []string{"100 m"},
			flagged: 1,
		},
		{
			name:    "row bgcolor",
			rows:    `<tr bgcolor="#CEF6F5">` + td("100 m") + strings.Join(dataCells("9.58", "A"), "") + "</tr>" + row(append([]string{td("200 m")}, dataCells("19.19", "B")...)...),
			events:  []string{"200 m"},
			flagged: 1,
		},
		{
			name:    "single flagged cell",
			rows:    row(td("100 m"), `<td style="Background:Pink;">9.58</td>`) + row(td("200 m"), td("19.19")),
			events:  []string{"200 m"},
			flagged: 1,
		},
		{
			name:    "unrelated colour",
			rows:    `<tr style="background:#eee">` + td("100 m") + td("9.58") + "</tr>",
			events:  []string{"100 m"},
			flagged: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records, stats := Table(parseTable(t, tc.rows))
			var events []string
			for _, r := range records {
				events = append(events, r.Event)
			}
			assert.Equal(t, tc.events, events)
			assert.Equal(t, tc.flagged, stats.Flagged)
			assert.Equal(t, stats.DataRows-stats.Flagged, len(records))
		})
	}
}

func TestTable_FlaggedRowStillAdvancesRowspan(t *testing.T) {
	first := append([]string{`<td rowspan="2">Mile</td>`}, dataCells("3:43.13", "Hicham El Guerrouj")...)
	flagged := `<tr style="background:pink">` + strings.Join(dataCells("3:43.00", "Pending"), "") + "</tr>"
	after := append([]string{td("2000 m")}, dataCells("4:44.79", "Hicham El Guerrouj")...)

	records, stats := Table(parseTable(t, row(first...)+flagged+row(after...)))
	require.Len(t, records, 2)
	assert.Equal(t, "Mile", records[0].Event)
	assert.Equal(t, "2000 m", records[1].Event)
	assert.Equal(t, 1, stats.Flagged)
}

func TestTable_ShapeTolerance(t *testing.T) {
	short := row(td("Marathon"), td("2:00:35"))
	wide := row(append(append([]string{td("10 km")}, dataCells("26:24", "Rhonex Kipruto")...), td("Spain"), td("extra1"), td("extra2"))...)
	empty := "<tr></tr>"
	bad := row(`<td rowspan="x">Mile</td>`, td("3:43.13"))
	after := row(td("One hour"), td("21330 m"))

	records, stats := Table(parseTable(t, short+empty+wide+bad+after))

	require.Len(t, records, 4)
	assert.Equal(t, "Marathon", records[0].Event)
	assert.Equal(t, "2:00:35", records[0].Performance)
	assert.Empty(t, records[0].Country)
	assert.Equal(t, "Spain", records[1].Country)
	assert.Equal(t, "Mile", records[2].Event)
	assert.Equal(t, "One hour", records[3].Event)

	assert.Equal(t, 1, stats.EmptyRows)
	assert.Equal(t, 4, stats.DataRows)
	assert.Equal(t, 2, stats.Placeholder)
	assert.Equal(t, "Column_12", stats.RawColumns[12])
	assert.Equal(t, "Column_13", stats.RawColumns[13])
}

func TestTable_HeaderLabels(t *testing.T) {
	_, stats := Table(parseTable(t, row(td("100 m"), td("9.58"))))
	require.Len(t, stats.RawColumns, 12)
	assert.Equal(t, "Event", stats.RawColumns[0])
	assert.Equal(t, "Perf.", stats.RawColumns[1])
	assert.Equal(t, "Country", stats.RawColumns[11])
}

func TestIsFlagged(t *testing.T) {
	tests := []struct {
		style, bgcolor string
		want           bool
	}{
		{"background:pink", "", true},
		{"text-align:center; BACKGROUND:PINK", "", true},
		{"background: pink", "", false},
		{"", "pink", true},
		{"", " #cef6f5 ", true},
		{"", "#CEF6F5", true},
		{"", "#ffffff", false},
		{"", "", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, IsFlagged(tc.style, tc.bgcolor), "style=%q bgcolor=%q", tc.style, tc.bgcolor)
	}
}

func TestTable_CellTextNodes(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want string
	}{
		{"annotation", "43.03 <sup>A</sup>", "43.03A"},
		{"linked name", "<a>Wayde</a> <a>van Niekerk</a>", "Waydevan Niekerk"},
		{"padded nodes", "\n 9.58 \n<span> (+0.9) </span>\n", "9.58(+0.9)"},
		{"comment", "1:40.91<!-- ratified -->", "1:40.91"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, _ := Table(parseTable(t, row(td("400 m"), td(tt.cell))))
			require.Len(t, records, 1)
			assert.Equal(t, tt.want, records[0].Performance)
		})
	}
}
