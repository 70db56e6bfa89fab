package telemetry

import (
	"context"
	"log/slog"
	"os"

	"mangaku-backend/lib/configutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

var setupTestEnvironments = map[string]bool{}

// sets up telemetry in a testing environment, ensuring that it isn't
// set up more than once. test runs never export anywhere: the SDK
// providers are installed without exporters so tests pass offline.
func SetupForTesting(serviceName string) func() {
	if setupTestEnvironments[serviceName] {
		return func() {}
	}
	setupTestEnvironments[serviceName] = true

	InitSlog(true)
	otel.SetTracerProvider(trace.NewTracerProvider())
	otel.SetMeterProvider(metric.NewMeterProvider())

	return func() {}
}

// searches up the filesystem from the cwd to find a file
// called telemetry.json5, once found it will then use it
// as a config to setup telemetry. a missing file is not fatal,
// the process just runs uninstrumented.
func SetupFromEnv(ctx context.Context, serviceName string) error {
	c, err := configutil.ReadRecursively[config]("telemetry.json5")
	if os.IsNotExist(err) {
		slog.Debug("no telemetry.json5 found, skipping otlp export")
		return nil
	}
	if err != nil {
		return err
	}
	return Setup(ctx, serviceName, c)
}
