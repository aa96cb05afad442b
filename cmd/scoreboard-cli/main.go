package main

import (
	"httpd-scoreboard/cmd/scoreboard-cli/commands"
	"httpd-scoreboard/lib/serviceutil"
	"httpd-scoreboard/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "scoreboard-cli")
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
