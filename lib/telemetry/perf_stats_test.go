package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/stretchr/testify/require"
)

func TestInstrumentPerfStatsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	InstrumentPerfStats(ctx)
	cancel()
	// the sampler goroutine must exit on context cancellation; give it a
	// moment so a panic there would surface in this test
	time.Sleep(10 * time.Millisecond)
}

func TestCPUPercentReadable(t *testing.T) {
	usage, err := cpu.Percent(0, false)
	require.NoError(t, err)
	require.Len(t, usage, 1)
}
