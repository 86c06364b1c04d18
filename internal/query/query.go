package query

import (
	"context"
	"database/sql"
	"fmt"
	"gdp-etl/internal/assert"
	"gdp-etl/lib/sqliteutil"
	"io"
	"regexp"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("gdp-etl.internal.query")

var plainIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ident leaves plain names as they are and quotes everything else.
func ident(name string) string {
	if plainIdent.MatchString(name) {
		return name
	}
	return sqliteutil.QuoteIdent(name)
}

// FilterStatement builds the query that selects every row of relation
// whose column is at least threshold.
func FilterStatement(relation, column string, threshold float64) string {
	return fmt.Sprintf(
		"SELECT * from %s WHERE %s >= %s",
		ident(relation), ident(column), strconv.FormatFloat(threshold, 'f', -1, 64),
	)
}

type Result struct {
	Statement string
	Columns   []string
	Rows      [][]any
}

// Run executes the statement and collects every row it returns.
func Run(ctx context.Context, db *sql.DB, statement string) (Result, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(attribute.String("statement", statement))

	rows, err := db.QueryContext(ctx, statement)
	if err != nil {
		return Result{}, fmt.Errorf("query %q: %w", statement, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, err
	}

	result := Result{Statement: statement, Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		err = rows.Scan(pointers...)
		if err != nil {
			return Result{}, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}

	span.SetAttributes(attribute.Int("rows", len(result.Rows)))
	return result, nil
}

func formatCell(v any) any {
	switch value := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return value
	}
}

// Render prints the statement followed by the result set as a table, the
// first column is the position of each row in the result.
func Render(w io.Writer, result Result) {
	assert.NotNil("writer", w)
	fmt.Fprintln(w, result.Statement)

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)

	header := table.Row{""}
	for _, c := range result.Columns {
		header = append(header, c)
	}
	t.AppendHeader(header)

	for i, r := range result.Rows {
		row := table.Row{i}
		for _, v := range r {
			row = append(row, formatCell(v))
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d rows", len(result.Rows))})

	t.Render()
}
