package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"gdp-etl/internal/gdp"
	"gdp-etl/internal/telemetry"
	"gdp-etl/lib/htmlutil"
	"gdp-etl/lib/textutil"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var tracer = otel.Tracer("gdp-etl.internal.extract")

const (
	report_fetch = "fetch"
	report_parse = "parse"
	report_skip  = "skipped row"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrMalformedRow  = errors.New("malformed row")
	ErrFetchStatus   = errors.New("unexpected response status")
)

const (
	// DefaultMissingMarker is the em dash the source uses for absent figures.
	DefaultMissingMarker       = "—"
	DefaultTableIndex          = 2
	DefaultMinHeaderSimilarity = 0.8
)

// Options controls which table of the document is read and which of its
// rows are kept.
type Options struct {
	Columns []string
	// TableIndex selects among every tbody in the document, in document order.
	TableIndex int
	// HeaderHint, when set, selects the tbody whose header cells best match
	// it instead of using TableIndex.
	HeaderHint          string
	MinHeaderSimilarity float64
	MissingMarker       string
}

func DefaultOptions() Options {
	return Options{
		Columns:             gdp.DefaultColumns,
		TableIndex:          DefaultTableIndex,
		MinHeaderSimilarity: DefaultMinHeaderSimilarity,
		MissingMarker:       DefaultMissingMarker,
	}
}

// Stats counts what happened to every row of the selected table.
type Stats struct {
	Table        int
	Rows         int
	Included     int
	NoCells      int
	NoLink       int
	MissingValue int
}

func (s Stats) Skipped() int {
	return s.NoCells + s.NoLink + s.MissingValue
}

type Extractor struct {
	client *resty.Client
	opts   Options
	tel    telemetry.API
}

// NewExtractor creates an Extractor, a nil client is replaced with a
// default resty client and a nil tel with telemetry.SlogAPI.
func NewExtractor(client *resty.Client, opts Options, tel telemetry.API) Extractor {
	if client == nil {
		client = resty.New()
	}
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	if opts.MissingMarker == "" {
		opts.MissingMarker = DefaultMissingMarker
	}
	if opts.MinHeaderSimilarity <= 0 {
		opts.MinHeaderSimilarity = DefaultMinHeaderSimilarity
	}
	return Extractor{
		client: client,
		opts:   opts,
		tel:    telemetry.NewScopedAPI("extractor", tel),
	}
}

// Extract fetches the page at url and parses it with Parse.
func (e Extractor) Extract(ctx context.Context, url string) (gdp.Table, Stats, error) {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	res, err := e.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		e.tel.ReportBroken(report_fetch, err, url)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return gdp.Table{}, Stats{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	if res.IsError() {
		err := fmt.Errorf("%w: %s returned %d", ErrFetchStatus, url, res.StatusCode())
		e.tel.ReportBroken(report_fetch, err)
		span.SetStatus(codes.Error, "bad status")
		return gdp.Table{}, Stats{}, err
	}

	return e.Parse(ctx, bytes.NewReader(res.Body()))
}

// Parse reads an html document and builds a table out of the rows of the
// selected tbody that pass the inclusion rule. Only tbody tags present in
// the markup are counted.
func (e Extractor) Parse(ctx context.Context, r io.Reader) (gdp.Table, Stats, error) {
	ctx, span := tracer.Start(ctx, "Parse")
	defer span.End()

	marked, err := markSourceBodies(r)
	if err != nil {
		e.tel.ReportBroken(report_parse, err)
		return gdp.Table{}, Stats{}, fmt.Errorf("tokenize html: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(marked)
	if err != nil {
		e.tel.ReportBroken(report_parse, err)
		return gdp.Table{}, Stats{}, fmt.Errorf("parse html: %w", err)
	}

	body, index, err := e.selectBody(doc)
	if err != nil {
		e.tel.ReportBroken(report_parse, err)
		span.RecordError(err)
		return gdp.Table{}, Stats{}, err
	}

	table := gdp.NewTable(e.opts.Columns)
	stats := Stats{Table: index}

	var rowErr error
	body.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		stats.Rows++
		record, reason, err := e.readRow(row)
		if err != nil {
			rowErr = fmt.Errorf("%w: row %d of table %d: %w", ErrMalformedRow, i, index, err)
			return false
		}

		switch reason {
		case skipNone:
			table.Append(record)
			stats.Included++
			return true
		case skipNoCells:
			stats.NoCells++
		case skipNoLink:
			stats.NoLink++
		case skipMissingValue:
			stats.MissingValue++
		}
		e.tel.ReportDebug(report_skip, telemetry.KV{Key: "row", Value: i}, telemetry.KV{Key: "reason", Value: reason})
		return true
	})
	if rowErr != nil {
		e.tel.ReportBroken(report_parse, rowErr)
		span.RecordError(rowErr)
		span.SetStatus(codes.Error, "malformed row")
		return gdp.Table{}, stats, rowErr
	}

	e.tel.ReportCount("rows-included", int64(stats.Included))
	e.tel.ReportCount("rows-skipped", int64(stats.Skipped()))
	span.SetAttributes(
		attribute.Int("table", index),
		attribute.Int("rows", stats.Rows),
		attribute.Int("included", stats.Included),
	)

	return table, stats, nil
}

type skipReason string

const (
	skipNone         skipReason = ""
	skipNoCells      skipReason = "no data cells"
	skipNoLink       skipReason = "no link in first cell"
	skipMissingValue skipReason = "missing value"
)

func (e Extractor) readRow(row *goquery.Selection) (gdp.Record, skipReason, error) {
	cells := row.Find("td")
	if cells.Length() == 0 {
		return gdp.Record{}, skipNoCells, nil
	}

	link := cells.Eq(0).Find("a").First()
	if link.Length() == 0 {
		return gdp.Record{}, skipNoLink, nil
	}
	if cells.Length() < 3 {
		return gdp.Record{}, skipNone, fmt.Errorf("expected at least 3 cells, got %d", cells.Length())
	}

	valueCell := cells.Eq(2)
	if strings.Contains(htmlutil.Text(valueCell), e.opts.MissingMarker) {
		return gdp.Record{}, skipMissingValue, nil
	}

	country := htmlutil.Text(link)
	if country == "" {
		return gdp.Record{}, skipNoLink, nil
	}

	return gdp.Record{
		Country: country,
		Raw:     htmlutil.FirstChildText(valueCell),
	}, skipNone, nil
}

// sourceBodyAttr marks the tbody elements written in the document, the
// parser also creates a tbody for every table that has none.
const sourceBodyAttr = "data-source-tbody"

// markSourceBodies copies the document, adding sourceBodyAttr to every
// literal tbody start tag.
func markSourceBodies(r io.Reader) (io.Reader, error) {
	var out bytes.Buffer
	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				return &out, nil
			}
			return nil, z.Err()
		}

		raw := append([]byte(nil), z.Raw()...)
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(raw)
			continue
		}
		token := z.Token()
		if token.DataAtom != atom.Tbody {
			out.Write(raw)
			continue
		}
		token.Attr = append(token.Attr, html.Attribute{Key: sourceBodyAttr})
		out.WriteString(token.String())
	}
}

func (e Extractor) selectBody(doc *goquery.Document) (*goquery.Selection, int, error) {
	bodies := doc.Find("tbody[" + sourceBodyAttr + "]")

	if e.opts.HeaderHint != "" {
		return e.selectBodyByHeader(bodies)
	}

	if e.opts.TableIndex < 0 || e.opts.TableIndex >= bodies.Length() {
		return nil, -1, fmt.Errorf(
			"%w: wanted table body %d but the document has %d",
			ErrTableNotFound, e.opts.TableIndex, bodies.Length(),
		)
	}
	return bodies.Eq(e.opts.TableIndex), e.opts.TableIndex, nil
}

func (e Extractor) selectBodyByHeader(bodies *goquery.Selection) (*goquery.Selection, int, error) {
	best := -1
	bestScore := 0.0
	bodies.Each(func(i int, body *goquery.Selection) {
		for _, header := range headerCells(body) {
			score := textutil.Similarity(e.opts.HeaderHint, header)
			if score > bestScore {
				best = i
				bestScore = score
			}
		}
	})

	if best < 0 || bestScore < e.opts.MinHeaderSimilarity {
		return nil, -1, fmt.Errorf(
			"%w: no table header matches %q (best similarity %.2f of %d bodies)",
			ErrTableNotFound, e.opts.HeaderHint, bestScore, bodies.Length(),
		)
	}
	return bodies.Eq(best), best, nil
}

// headerCells returns the text of the header cells of a tbody, looking in
// the tbody itself first and then in the thead of its table.
func headerCells(body *goquery.Selection) []string {
	cells := body.Find("th")
	if cells.Length() == 0 {
		cells = body.Parent().ChildrenFiltered("thead").Find("th")
	}

	var out []string
	cells.Each(func(_ int, th *goquery.Selection) {
		text := htmlutil.Text(th)
		if text != "" {
			out = append(out, text)
		}
	})
	return out
}
