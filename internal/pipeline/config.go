package pipeline

import (
	"errors"
	"fmt"
	"gdp-etl/internal/extract"
	"gdp-etl/internal/gdp"
	"gdp-etl/lib/configutil"
	"gdp-etl/lib/sqliteutil"
	"time"
)

const (
	DefaultSourceURL = "https://web.archive.org/web/20230902185326/https://en.wikipedia.org/wiki/List_of_countries_by_GDP_%28nominal%29"
	DefaultCSVPath   = "./Countries_by_GDP.csv"
	DefaultDBFile    = "World_Economies.db"
	DefaultTableName = "Countries_by_GDP"
	DefaultLogPath   = "./etl_project_log.txt"
	DefaultThreshold = 100
	// DefaultConfigFile is read from the working directory when present.
	DefaultConfigFile = "gdp-etl.json5"
)

type Config struct {
	SourceURL string   `json:"source_url"`
	Columns   []string `json:"columns"`
	// TableIndex picks the tbody to read, counting from 0 in document order.
	TableIndex    int    `json:"table_index"`
	HeaderHint    string `json:"header_hint"`
	MissingMarker string `json:"missing_marker"`

	CSVPath   string            `json:"csv_path"`
	Database  sqliteutil.Config `json:"database"`
	TableName string            `json:"table_name"`
	LogPath   string            `json:"log_path"`

	Threshold float64 `json:"threshold"`
	Rescale   bool    `json:"rescale"`

	// TimeoutSeconds bounds the page fetch, 0 waits forever.
	TimeoutSeconds int `json:"timeout_seconds"`
	// DumpHTTP is a directory that receives every request/response pair.
	DumpHTTP string `json:"dump_http"`
}

func DefaultConfig() Config {
	return Config{
		SourceURL:     DefaultSourceURL,
		Columns:       []string{gdp.CountryColumn, gdp.MillionsColumn},
		TableIndex:    extract.DefaultTableIndex,
		MissingMarker: extract.DefaultMissingMarker,
		CSVPath:       DefaultCSVPath,
		Database:      sqliteutil.Config{File: DefaultDBFile},
		TableName:     DefaultTableName,
		LogPath:       DefaultLogPath,
		Threshold:     DefaultThreshold,
	}
}

// LoadConfig merges the config file at path (and its .local override) on
// top of DefaultConfig, a missing file leaves the defaults untouched.
func LoadConfig(path string) (Config, error) {
	cfg, err := configutil.Load(path, DefaultConfig())
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) ExtractOptions() extract.Options {
	return extract.Options{
		Columns:             c.Columns,
		TableIndex:          c.TableIndex,
		HeaderHint:          c.HeaderHint,
		MinHeaderSimilarity: extract.DefaultMinHeaderSimilarity,
		MissingMarker:       c.MissingMarker,
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.SourceURL == "" {
		errs = append(errs, fmt.Errorf("source_url is empty"))
	}
	if len(c.Columns) != 2 {
		errs = append(errs, fmt.Errorf("columns must name exactly 2 columns, got %d", len(c.Columns)))
	}
	if c.TableIndex < 0 {
		errs = append(errs, fmt.Errorf("table_index must not be negative"))
	}
	if c.CSVPath == "" {
		errs = append(errs, fmt.Errorf("csv_path is empty"))
	}
	if c.Database.File == "" && c.Database.Url == "" {
		errs = append(errs, fmt.Errorf("database needs a file or url"))
	}
	if c.TableName == "" {
		errs = append(errs, fmt.Errorf("table_name is empty"))
	}
	if c.LogPath == "" {
		errs = append(errs, fmt.Errorf("log_path is empty"))
	}
	if c.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("timeout_seconds must not be negative"))
	}
	return errors.Join(errs...)
}
