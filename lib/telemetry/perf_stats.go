package telemetry

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("go.perf_stats")
var cpuGauge, _ = meter.Float64Gauge("cpu_usage")
var memoryGauge, _ = meter.Int64Gauge("allocated_mb")
var liveObjectsGauge, _ = meter.Int64Gauge("live_objects")

// PerfStats is a point-in-time sample of process resource usage.
type PerfStats struct {
	CpuPercent  float64
	AllocatedMB int64
	LiveObjects int64
}

// RecordPerfStats samples cpu and memory usage once, records them as gauges
// and returns the sample. a run is short-lived so there is no ticker.
func RecordPerfStats(ctx context.Context) PerfStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := PerfStats{
		AllocatedMB: int64(memStats.Alloc / 1_000_000),
		LiveObjects: int64(memStats.Mallocs) - int64(memStats.Frees),
	}

	cpuUsage, err := cpu.PercentWithContext(ctx, 0, false)
	if err == nil && len(cpuUsage) > 0 {
		stats.CpuPercent = cpuUsage[0]
		cpuGauge.Record(ctx, stats.CpuPercent)
	} else if err != nil {
		slog.DebugContext(ctx, "failed to read cpu usage", "err", err)
	}

	memoryGauge.Record(ctx, stats.AllocatedMB)
	liveObjectsGauge.Record(ctx, stats.LiveObjects)

	slog.DebugContext(
		ctx, "perf stats",
		"cpu_percent", stats.CpuPercent,
		"allocated_mb", stats.AllocatedMB,
		"live_objects", stats.LiveObjects,
	)
	return stats
}
