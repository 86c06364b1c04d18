package testutil

import (
	"database/sql"
	"fmt"
	"gdp-etl/lib/sqliteutil"
	"gdp-etl/lib/telemetry"
	"testing"
)

type DBParams struct {
	Name string
	// if unspecified, it will use `:memory:`
	DbPath string
}

// SetupDB sets up telemetry for the test and opens a sqlite database that is
// closed when the test finishes.
func SetupDB(t testing.TB, params DBParams) *sql.DB {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))
	t.Cleanup(cleanup)

	dbpath := sqliteutil.Memory
	if params.DbPath != "" {
		dbpath = params.DbPath
	}
	db, err := sqliteutil.Config{File: dbpath}.OpenDB()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
