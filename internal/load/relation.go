package load

import (
	"context"
	"database/sql"
	"fmt"
	"gdp-etl/internal/gdp"
	"gdp-etl/lib/sqliteutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("gdp-etl.internal.load")

// WriteRelation stores the table as the relation `name`, dropping any
// relation that already has that name. Everything happens in a single
// transaction so a failed load leaves the previous relation untouched.
func WriteRelation(ctx context.Context, db *sql.DB, name string, table gdp.Table) error {
	ctx, span := tracer.Start(ctx, "WriteRelation")
	defer span.End()
	span.SetAttributes(
		attribute.String("relation", name),
		attribute.Int("rows", table.Len()),
	)

	valueType := "TEXT"
	if table.Parsed {
		valueType = "REAL"
	}

	relation := sqliteutil.QuoteIdent(name)
	countryCol := sqliteutil.QuoteIdent(table.CountryColumn())
	valueCol := sqliteutil.QuoteIdent(table.ValueColumn())

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", relation))
	if err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	_, err = tx.ExecContext(ctx, fmt.Sprintf(
		"CREATE TABLE %s (%s TEXT, %s %s)",
		relation, countryCol, valueCol, valueType,
	))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	insert, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s, %s) VALUES (?, ?)",
		relation, countryCol, valueCol,
	))
	if err != nil {
		return err
	}
	defer insert.Close()

	for _, r := range table.Records {
		var value any = r.Raw
		if table.Parsed {
			value = r.Value
		}
		_, err = insert.ExecContext(ctx, r.Country, value)
		if err != nil {
			return fmt.Errorf("insert %s: %w", r.Country, err)
		}
	}

	return tx.Commit()
}

// CountRows returns the number of rows currently in the relation.
func CountRows(ctx context.Context, db *sql.DB, name string) (int64, error) {
	var count int64
	err := db.QueryRowContext(
		ctx,
		fmt.Sprintf("SELECT count(*) FROM %s", sqliteutil.QuoteIdent(name)),
	).Scan(&count)
	return count, err
}
