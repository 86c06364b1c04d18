package commands

import (
	"gdp-etl/internal/pipeline"

	"github.com/spf13/pflag"
)

// overrides holds flag values that are applied on top of the config file
// only when they were set explicitly.
type overrides struct {
	url        string
	csv        string
	db         string
	dbUrl      string
	log        string
	table      string
	tableIndex int
	headerHint string
	threshold  float64
	rescale    bool
	timeout    int
	dumpHttp   string
}

func (o *overrides) register(flags *pflag.FlagSet, extract bool) {
	defaults := pipeline.DefaultConfig()

	flags.StringVar(&o.db, "db", defaults.Database.File, "The sqlite database file.")
	flags.StringVar(&o.dbUrl, "db-url", "", "A libsql url to use instead of a local database file.")
	flags.StringVar(&o.table, "table", defaults.TableName, "The relation the table is loaded into.")
	flags.Float64Var(&o.threshold, "threshold", defaults.Threshold, "The minimum GDP (in USD billions) the query selects.")
	if !extract {
		return
	}

	flags.StringVar(&o.url, "url", defaults.SourceURL, "The page to extract the GDP table from.")
	flags.StringVar(&o.csv, "csv", defaults.CSVPath, "The csv file the table is saved to.")
	flags.StringVar(&o.log, "log", defaults.LogPath, "The progress log file.")
	flags.IntVar(&o.tableIndex, "table-index", defaults.TableIndex, "The table body to read, counting from 0.")
	flags.StringVar(&o.headerHint, "header-hint", "", "Select the table whose header best matches this text instead of using --table-index.")
	flags.BoolVar(&o.rescale, "rescale", defaults.Rescale, "Divide values by 1000 so they really are in billions.")
	flags.IntVar(&o.timeout, "timeout", defaults.TimeoutSeconds, "The fetch timeout in seconds, 0 waits forever.")
	flags.StringVar(&o.dumpHttp, "dump-http", "", "A directory every http request/response pair is written to.")
}

func (o *overrides) apply(flags *pflag.FlagSet, cfg *pipeline.Config) {
	changed := flags.Changed
	if changed("url") {
		cfg.SourceURL = o.url
	}
	if changed("csv") {
		cfg.CSVPath = o.csv
	}
	if changed("db") {
		cfg.Database.File = o.db
	}
	if changed("db-url") {
		cfg.Database.Url = o.dbUrl
	}
	if changed("log") {
		cfg.LogPath = o.log
	}
	if changed("table") {
		cfg.TableName = o.table
	}
	if changed("table-index") {
		cfg.TableIndex = o.tableIndex
	}
	if changed("header-hint") {
		cfg.HeaderHint = o.headerHint
	}
	if changed("threshold") {
		cfg.Threshold = o.threshold
	}
	if changed("rescale") {
		cfg.Rescale = o.rescale
	}
	if changed("timeout") {
		cfg.TimeoutSeconds = o.timeout
	}
	if changed("dump-http") {
		cfg.DumpHTTP = o.dumpHttp
	}
}

func loadConfig(flags *pflag.FlagSet, o *overrides) (pipeline.Config, error) {
	cfg, err := pipeline.LoadConfig(*configPath)
	if err != nil {
		return pipeline.Config{}, err
	}
	o.apply(flags, &cfg)
	return cfg, nil
}
