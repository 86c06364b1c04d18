package main

import (
	"context"
	"gdp-etl/cmd/gdp-etl/commands"
	"gdp-etl/lib/serviceutil"
	"gdp-etl/lib/telemetry"
	"log/slog"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()

	telemetry.InitSlog(false)
	t, err := telemetry.SetupFromEnv(ctx, "gdp-etl")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}

	err = commands.ExecuteContext(ctx)

	shutdownErr := t.Shutdown(context.Background())
	if shutdownErr != nil {
		slog.Warn("failed to flush telemetry", "err", shutdownErr)
	}
	if err != nil {
		serviceutil.Fatal("gdp-etl failed", err)
	}
}
