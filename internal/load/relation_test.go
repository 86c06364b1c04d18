package load

import (
	"context"
	"database/sql"
	"gdp-etl/internal/gdp"
	"gdp-etl/lib/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openMemory(t testing.TB) *sql.DB {
	return testutil.SetupDB(t, testutil.DBParams{Name: "load"})
}

func TestWriteRelation(t *testing.T) {
	db := openMemory(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err := WriteRelation(ctx, db, "Countries_by_GDP", parsedTable())
	require.NoError(t, err)

	rows, err := db.QueryContext(ctx, `SELECT "Country", "GDP_USD_billions" FROM "Countries_by_GDP"`)
	require.NoError(t, err)
	defer rows.Close()

	var countries []string
	var values []float64
	for rows.Next() {
		var country string
		var value float64
		require.NoError(t, rows.Scan(&country, &value))
		countries = append(countries, country)
		values = append(values, value)
	}
	require.NoError(t, rows.Err())
	require.Equal(t, []string{"United States", "Korea, South", "Tuvalu"}, countries)
	require.Equal(t, []float64{26854599, 1709232, 63.2}, values)
}

func TestWriteRelationReplaces(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	table := parsedTable()
	require.NoError(t, WriteRelation(ctx, db, "Countries_by_GDP", table))
	require.NoError(t, WriteRelation(ctx, db, "Countries_by_GDP", table))

	count, err := CountRows(ctx, db, "Countries_by_GDP")
	require.NoError(t, err)
	require.Equal(t, int64(table.Len()), count)

	table.Records = table.Records[:1]
	require.NoError(t, WriteRelation(ctx, db, "Countries_by_GDP", table))
	count, err = CountRows(ctx, db, "Countries_by_GDP")
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestWriteRelationColumnTypes(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	unparsed := gdp.NewTable(nil)
	unparsed.Append(gdp.Record{Country: "Japan", Raw: "4,409,738"})
	require.NoError(t, WriteRelation(ctx, db, "raw", unparsed))

	var declared string
	err := db.QueryRowContext(ctx, `SELECT type FROM pragma_table_info('raw') WHERE name = 'GDP_USD_millions'`).Scan(&declared)
	require.NoError(t, err)
	require.Equal(t, "TEXT", declared)

	require.NoError(t, WriteRelation(ctx, db, "parsed", parsedTable()))
	err = db.QueryRowContext(ctx, `SELECT type FROM pragma_table_info('parsed') WHERE name = 'GDP_USD_billions'`).Scan(&declared)
	require.NoError(t, err)
	require.Equal(t, "REAL", declared)
}
