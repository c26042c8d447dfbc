package workspace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const meterName = "github.com/Alijeyrad/medchart/internal/workspace"

var (
	tracer trace.Tracer = otel.Tracer(meterName)

	fetchCounter metric.Int64Counter
	openTabs     metric.Int64UpDownCounter
)

func init() {
	meter := otel.Meter(meterName)

	fetchCounter, _ = meter.Int64Counter(
		"workspace_profile_fetch_total",
		metric.WithDescription("Patient profile fetches started by workspaces, by outcome"),
		metric.WithUnit("{fetch}"),
	)
	openTabs, _ = meter.Int64UpDownCounter(
		"workspace_open_tabs",
		metric.WithDescription("Patient tabs currently open across all workspaces"),
		metric.WithUnit("{tab}"),
	)
}

func recordFetch(ctx context.Context, outcome string) {
	fetchCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func recordTabs(ctx context.Context, delta int64) {
	if delta != 0 {
		openTabs.Add(ctx, delta)
	}
}
