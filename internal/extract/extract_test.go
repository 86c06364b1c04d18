package extract

import (
	"context"
	"errors"
	"fmt"
	"gdp-etl/internal/gdp"
	"gdp-etl/internal/telemetry"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const filler = `<table><tbody><tr><td>navigation</td></tr></tbody></table>`

func document(bodies ...string) string {
	var out strings.Builder
	out.WriteString("<html><body>")
	for _, b := range bodies {
		out.WriteString(b)
	}
	out.WriteString("</body></html>")
	return out.String()
}

func gdpTable(rows ...string) string {
	return `<table class="wikitable"><tbody>
		<tr><th>Country/Territory</th><th>UN region</th><th>IMF</th></tr>` +
		strings.Join(rows, "\n") +
		`</tbody></table>`
}

func row(country, region, value string) string {
	return fmt.Sprintf(
		`<tr><td><span class="flag"></span> <a href="/wiki/%s">%s</a></td><td>%s</td><td>%s</td></tr>`,
		country, country, region, value,
	)
}

func parse(t testing.TB, html string, opts Options) (gdp.Table, Stats, error) {
	extractor := NewExtractor(nil, opts, &telemetry.Recorder{})
	return extractor.Parse(context.Background(), strings.NewReader(html))
}

func TestParseSelectsThirdBody(t *testing.T) {
	html := document(
		filler,
		filler,
		gdpTable(
			row("United States", "Americas", "26,854,599"),
			row("Tuvalu", "Oceania", "—"),
			row("Japan", "Asia", `4,409,738<sup class="reference"><a href="#n1">[n 1]</a></sup>`),
			`<tr><td>World</td><td></td><td>105,568,776</td></tr>`,
		),
	)

	table, stats, err := parse(t, html, DefaultOptions())
	require.NoError(t, err)

	expected := gdp.Table{
		Columns: []string{gdp.CountryColumn, gdp.MillionsColumn},
		Records: []gdp.Record{
			{Country: "United States", Raw: "26,854,599"},
			{Country: "Japan", Raw: "4,409,738"},
		},
	}
	if diff := cmp.Diff(expected, table); diff != "" {
		t.Fatal(diff)
	}

	require.Equal(t, Stats{
		Table:        2,
		Rows:         5,
		Included:     2,
		NoCells:      1,
		NoLink:       1,
		MissingValue: 1,
	}, stats)
}

func TestParseExcludesMissingMarker(t *testing.T) {
	var rows []string
	for i := 0; i < 20; i++ {
		value := fmt.Sprintf("%d,000", i+1)
		if i%3 == 0 {
			value = "—"
		}
		if i%7 == 0 {
			value = "n/a —"
		}
		rows = append(rows, row(fmt.Sprintf("Country %d", i), "Region", value))
	}

	table, stats, err := parse(t, document(filler, filler, gdpTable(rows...)), DefaultOptions())
	require.NoError(t, err)

	for _, r := range table.Records {
		require.NotContains(t, r.Raw, DefaultMissingMarker)
		require.NotEmpty(t, r.Country)
	}
	require.Equal(t, 20, stats.Included+stats.MissingValue)
	require.Equal(t, 11, stats.Included)
}

func TestParseSkipsEmptyLinkText(t *testing.T) {
	html := document(filler, filler, gdpTable(
		`<tr><td><a href="/wiki/Nowhere"><img src="flag.png"></a></td><td>x</td><td>1,000</td></tr>`,
		row("France", "Europe", "3,049,016"),
	))

	table, stats, err := parse(t, html, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	require.Equal(t, "France", table.Records[0].Country)
	require.Equal(t, 1, stats.NoLink)
}

func TestParseCustomMarker(t *testing.T) {
	opts := DefaultOptions()
	opts.MissingMarker = "N/A"

	html := document(filler, filler, gdpTable(
		row("A", "r", "N/A"),
		row("B", "r", "—"),
	))

	table, _, err := parse(t, html, opts)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	require.Equal(t, "B", table.Records[0].Country)
}

func TestParseTableNotFound(t *testing.T) {
	_, _, err := parse(t, document(filler, gdpTable()), DefaultOptions())
	require.True(t, errors.Is(err, ErrTableNotFound), err)
	require.Contains(t, err.Error(), "wanted table body 2 but the document has 2")

	opts := DefaultOptions()
	opts.TableIndex = -1
	_, _, err = parse(t, document(filler), opts)
	require.True(t, errors.Is(err, ErrTableNotFound))
}

func TestParseCountsOnlyWrittenBodies(t *testing.T) {
	bare := `<table><tr><td><a href="/wiki/Decoy">Decoy</a></td><td>x</td><td>1</td></tr></table>`
	html := document(bare, filler, filler, gdpTable(
		row("Target", "Europe", "1,000"),
	))

	table, stats, err := parse(t, html, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 2, stats.Table)
	require.Equal(t, 1, table.Len())
	require.Equal(t, "Target", table.Records[0].Country)

	_, _, err = parse(t, document(bare, filler, filler), DefaultOptions())
	require.True(t, errors.Is(err, ErrTableNotFound), err)
}

func TestParseWrappedLinkText(t *testing.T) {
	html := document(filler, filler, gdpTable(
		`<tr><td><a href="/wiki/United_States">United
			States</a></td><td>Americas</td><td>26,854,599</td></tr>`,
		row("Bosnia&nbsp;and Herzegovina", "Europe", "27,055"),
	))

	table, _, err := parse(t, html, DefaultOptions())
	require.NoError(t, err)
	countries := []string{}
	for _, r := range table.Records {
		countries = append(countries, r.Country)
	}
	require.Equal(t, []string{"United States", "Bosnia and Herzegovina"}, countries)
}

func TestParseMalformedRow(t *testing.T) {
	html := document(filler, filler, gdpTable(
		row("Germany", "Europe", "4,429,838"),
		`<tr><td><a href="/wiki/Short">Short</a></td><td>Europe</td></tr>`,
	))

	_, _, err := parse(t, html, DefaultOptions())
	require.True(t, errors.Is(err, ErrMalformedRow), err)
	require.Contains(t, err.Error(), "got 2")
}

func TestParseHeaderHint(t *testing.T) {
	html := document(
		gdpTable(row("Decoy", "r", "1")),
		`<table><thead><tr><th>Rank</th><th>Economy</th></tr></thead><tbody>`+row("Other", "r", "2")+`</tbody></table>`,
		filler,
		`<table><thead><tr><th>Country / Territory</th><th>Region</th><th>GDP</th></tr></thead><tbody>`+
			row("India", "Asia", "3,732,224")+
			`</tbody></table>`,
	)

	opts := DefaultOptions()
	opts.HeaderHint = "Country/Territory"
	opts.TableIndex = 0

	table, stats, err := parse(t, html, opts)
	require.NoError(t, err)
	// both the first and the last body carry an exact header match, the
	// first one in document order wins.
	require.Equal(t, 0, stats.Table)
	require.Equal(t, "Decoy", table.Records[0].Country)

	opts.HeaderHint = "Economy"
	table, stats, err = parse(t, html, opts)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Table)
	require.Equal(t, "Other", table.Records[0].Country)

	opts.HeaderHint = "Population density"
	_, _, err = parse(t, html, opts)
	require.True(t, errors.Is(err, ErrTableNotFound))
}

func TestParseReportsCounts(t *testing.T) {
	rec := &telemetry.Recorder{}
	extractor := NewExtractor(nil, DefaultOptions(), rec)

	html := document(filler, filler, gdpTable(
		row("China", "Asia", "19,373,586"),
		row("Somalia", "Africa", "—"),
	))
	_, _, err := extractor.Parse(context.Background(), strings.NewReader(html))
	require.NoError(t, err)

	counts := rec.Counts()
	require.Equal(t, int64(1), counts["extractor.rows-included"])
	require.Equal(t, int64(2), counts["extractor.rows-skipped"])
}

func TestExtract(t *testing.T) {
	html := document(filler, filler, gdpTable(
		row("United Kingdom", "Europe", "3,332,059"),
		row("Brazil", "Americas", "2,272,400"),
	))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gdp" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	}))
	defer server.Close()

	extractor := NewExtractor(nil, DefaultOptions(), &telemetry.Recorder{})

	table, stats, err := extractor.Extract(context.Background(), server.URL+"/gdp")
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	require.Equal(t, 2, stats.Included)
	require.Equal(t, "Brazil", table.Records[1].Country)
	require.Equal(t, "2,272,400", table.Records[1].Raw)

	_, _, err = extractor.Extract(context.Background(), server.URL+"/missing")
	require.True(t, errors.Is(err, ErrFetchStatus), err)
}
