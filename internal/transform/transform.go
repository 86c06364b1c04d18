package transform

import (
	"context"
	"errors"
	"fmt"
	"gdp-etl/internal/gdp"
	"math"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("gdp-etl.internal.transform")

var ErrMalformedValue = errors.New("malformed value")

type Options struct {
	// Rescale divides every value by 1000 so that the figures match the
	// renamed column. When false the values keep their original magnitude
	// and only the column label changes.
	Rescale bool
}

// ParseNumber converts text like "1,234.5" into a float, commas are
// treated as thousands separators and dropped.
func ParseNumber(text string) (float64, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	return strconv.ParseFloat(cleaned, 64)
}

// Transform parses the raw value of every record in place and renames the
// value column from millions to billions.
func Transform(ctx context.Context, table *gdp.Table, opts Options) error {
	_, span := tracer.Start(ctx, "Transform")
	defer span.End()
	span.SetAttributes(
		attribute.Int("rows", table.Len()),
		attribute.Bool("rescale", opts.Rescale),
	)

	for i := range table.Records {
		record := &table.Records[i]
		value, err := ParseNumber(record.Raw)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("%w: row %d (%s) has %q", ErrMalformedValue, i, record.Country, record.Raw)
		}
		if opts.Rescale {
			value = math.Round(value/1000*100) / 100
		}
		record.Value = value
	}

	table.RenameValueColumn(gdp.BillionsColumn)
	table.Parsed = true
	return nil
}
