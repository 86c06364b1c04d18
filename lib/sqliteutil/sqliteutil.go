package sqliteutil

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const Memory = ":memory:"

// Config points either at a local sqlite file or, when Url is set, at a
// remote libsql database.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Config) String() string {
	if config.Url != "" {
		return config.Url
	}
	return config.File
}

func (config Config) OpenDB() (*sql.DB, error) {
	if config.Url != "" {
		return openRemote(config.Url, config.AuthToken)
	}
	if config.File == "" {
		return nil, fmt.Errorf("a database path was not specified")
	}
	return openFile(config.File)
}

func openRemote(link, authToken string) (*sql.DB, error) {
	values := url.Values{}
	if authToken != "" {
		values.Add("authToken", authToken)
	}
	dsn := link
	if len(values) > 0 {
		dsn = link + "?" + values.Encode()
	}
	return sql.Open("libsql", dsn)
}

func openFile(dbpath string) (*sql.DB, error) {
	if dbpath != Memory {
		_, statErr := os.Stat(dbpath)
		if os.IsNotExist(statErr) {
			err := os.MkdirAll(filepath.Dir(dbpath), 0777)
			if err != nil {
				return nil, err
			}
			f, err := os.Create(dbpath)
			if err != nil {
				return nil, err
			}
			f.Close()
		}
	}

	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, err
	}
	// sqlite only supports a single writer, and an in-memory database only
	// lives as long as its one connection.
	db.SetMaxOpenConns(1)

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// QuoteIdent quotes a table or column name for use in a sqlite statement.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
