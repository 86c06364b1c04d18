package pipeline

import (
	"context"
	"errors"
	"fmt"
	"gdp-etl/internal/chrono"
	"gdp-etl/internal/extract"
	"gdp-etl/internal/gdp"
	"gdp-etl/internal/load"
	"gdp-etl/internal/progress"
	"gdp-etl/internal/query"
	"gdp-etl/internal/telemetry"
	"gdp-etl/internal/transform"
	"gdp-etl/lib/restyutil"
	libtelemetry "gdp-etl/lib/telemetry"
	"io"
	"log/slog"
	"os"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("gdp-etl.internal.pipeline")
var meter = otel.Meter("gdp-etl.internal.pipeline")
var rowsExtracted, _ = meter.Int64Counter("rows_extracted")
var rowsSkipped, _ = meter.Int64Counter("rows_skipped")
var rowsLoaded, _ = meter.Int64Counter("rows_loaded")

// Deps holds the collaborators of a run, every zero field is replaced with
// its standard implementation.
type Deps struct {
	// Out receives the query text and result set, defaults to stdout.
	Out    io.Writer
	Time   chrono.TimeAPI
	Tel    telemetry.API
	Client *resty.Client
}

func (d Deps) withDefaults(cfg Config) (Deps, error) {
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Time == nil {
		d.Time = chrono.NewStandardTime()
	}
	if d.Tel == nil {
		d.Tel = telemetry.SlogAPI{}
	}
	if d.Client == nil {
		client, err := NewClient(cfg)
		if err != nil {
			return Deps{}, err
		}
		d.Client = client
	}
	return d, nil
}

// NewClient creates the http client used to fetch the source page.
func NewClient(cfg Config) (*resty.Client, error) {
	client := resty.New()
	if cfg.TimeoutSeconds > 0 {
		client.SetTimeout(cfg.Timeout())
	}

	var output restyutil.InstrumentOutput
	if cfg.DumpHTTP != "" {
		fsOutput, err := restyutil.NewFilesystemOutput(cfg.DumpHTTP)
		if err != nil {
			return nil, fmt.Errorf("prepare http dump directory: %w", err)
		}
		output = fsOutput
	}
	restyutil.InstrumentClient(client, otel.Tracer("gdp-etl.resty"), output)

	return client, nil
}

type Result struct {
	Table gdp.Table
	Stats extract.Stats
	Query query.Result
	Perf  libtelemetry.PerfStats
}

type stageError struct {
	stage string
	err   error
}

func (e stageError) Error() string {
	return fmt.Sprintf("%s: %s", e.stage, e.err.Error())
}

func (e stageError) Unwrap() error {
	return e.err
}

// Stage returns the name of the stage err failed in, if any.
func Stage(err error) string {
	var se stageError
	if errors.As(err, &se) {
		return se.stage
	}
	return ""
}

func runStage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stage failed")
		return stageError{stage: name, err: err}
	}
	return nil
}

// Run executes every stage in order: extract, transform, save to csv,
// load into the database and query it. A progress line is logged after
// each stage, the run stops at the first failure.
func Run(ctx context.Context, cfg Config, deps Deps) (Result, error) {
	err := cfg.Validate()
	if err != nil {
		return Result{}, fmt.Errorf("invalid config: %w", err)
	}
	deps, err = deps.withDefaults(cfg)
	if err != nil {
		return Result{}, err
	}

	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	logger := progress.NewLogger(cfg.LogPath, deps.Time)
	var result Result

	err = runStage(ctx, "log", func(context.Context) error {
		return logger.Log(progress.Started)
	})
	if err != nil {
		return result, err
	}

	err = runStage(ctx, "extract", func(ctx context.Context) error {
		extractor := extract.NewExtractor(deps.Client, cfg.ExtractOptions(), deps.Tel)
		table, stats, err := extractor.Extract(ctx, cfg.SourceURL)
		if err != nil {
			return err
		}
		result.Table = table
		result.Stats = stats

		rowsExtracted.Add(ctx, int64(stats.Included))
		rowsSkipped.Add(ctx, int64(stats.Skipped()))
		slog.InfoContext(
			ctx, "extracted table",
			"table", stats.Table,
			"rows", stats.Included,
			"skipped", stats.Skipped(),
		)
		return logger.Log(progress.Extracted)
	})
	if err != nil {
		return result, err
	}

	err = runStage(ctx, "transform", func(ctx context.Context) error {
		err := transform.Transform(ctx, &result.Table, transform.Options{Rescale: cfg.Rescale})
		if err != nil {
			return err
		}
		return logger.Log(progress.Transformed)
	})
	if err != nil {
		return result, err
	}

	err = runStage(ctx, "load-csv", func(ctx context.Context) error {
		err := load.WriteCSV(cfg.CSVPath, result.Table)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "saved csv", "path", cfg.CSVPath, "rows", result.Table.Len())
		return logger.Log(progress.SavedCSV)
	})
	if err != nil {
		return result, err
	}

	db, err := cfg.Database.OpenDB()
	if err != nil {
		return result, stageError{stage: "connect", err: err}
	}
	defer db.Close()
	err = runStage(ctx, "connect", func(context.Context) error {
		return logger.Log(progress.Connected)
	})
	if err != nil {
		return result, err
	}

	err = runStage(ctx, "load-db", func(ctx context.Context) error {
		err := load.WriteRelation(ctx, db, cfg.TableName, result.Table)
		if err != nil {
			return err
		}
		rowsLoaded.Add(ctx, int64(result.Table.Len()), metric.WithAttributes(
			attribute.String("relation", cfg.TableName),
		))
		slog.InfoContext(ctx, "loaded relation", "db", cfg.Database.String(), "relation", cfg.TableName)
		return logger.Log(progress.Loaded)
	})
	if err != nil {
		return result, err
	}

	err = runStage(ctx, "query", func(ctx context.Context) error {
		statement := query.FilterStatement(cfg.TableName, result.Table.ValueColumn(), cfg.Threshold)
		res, err := query.Run(ctx, db, statement)
		if err != nil {
			return err
		}
		result.Query = res
		query.Render(deps.Out, res)
		return logger.Log(progress.Complete)
	})
	if err != nil {
		return result, err
	}

	result.Perf = libtelemetry.RecordPerfStats(ctx)

	err = db.Close()
	if err != nil {
		return result, stageError{stage: "close", err: err}
	}
	return result, nil
}

// RunQuery runs only the query stage against an existing database.
func RunQuery(ctx context.Context, cfg Config, deps Deps) (query.Result, error) {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}

	db, err := cfg.Database.OpenDB()
	if err != nil {
		return query.Result{}, stageError{stage: "connect", err: err}
	}
	defer db.Close()

	var res query.Result
	err = runStage(ctx, "query", func(ctx context.Context) error {
		statement := query.FilterStatement(cfg.TableName, gdp.BillionsColumn, cfg.Threshold)
		res, err = query.Run(ctx, db, statement)
		if err != nil {
			return err
		}
		query.Render(deps.Out, res)
		return nil
	})
	return res, err
}
