package main

import (
	"context"

	"mangaku-backend/cmd/mangaku-cli/commands"
	"mangaku-backend/lib/serviceutil"
	"mangaku-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	err := telemetry.SetupFromEnv(ctx, "mangaku-cli")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
