package scoreboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusCodeRoundTrip(t *testing.T) {
	statuses := []WorkerStatus{
		StatusDead,
		StatusStarting,
		StatusReady,
		StatusBusyRead,
		StatusBusyWrite,
		StatusBusyKeepAlive,
		StatusBusyLog,
		StatusBusyDNS,
		StatusClosing,
		StatusGraceful,
		StatusIdleKill,
	}
	seen := map[rune]bool{}
	for _, s := range statuses {
		code := s.Code()
		require.False(t, seen[code], "duplicate code %q", code)
		seen[code] = true

		back, err := StatusFromCode(code)
		require.NoError(t, err)
		require.Equal(t, s, back)
	}
}

func TestStatusJSONEncoding(t *testing.T) {
	raw, err := json.Marshal(StatusBusyKeepAlive)
	require.NoError(t, err)
	require.Equal(t, `"BusyKeepAlive"`, string(raw))

	var s WorkerStatus
	err = json.Unmarshal([]byte(`"Graceful"`), &s)
	require.NoError(t, err)
	require.Equal(t, StatusGraceful, s)

	err = json.Unmarshal([]byte(`"Bogus"`), &s)
	require.Error(t, err)
}

func TestServerStatusEnvelope(t *testing.T) {
	status := ServerStatus{
		Workers: []WorkerScore{
			{
				Pid:    pid(77),
				Status: StatusReady,
			},
		},
	}
	raw, err := json.Marshal(status)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"workers":[`)
	require.Contains(t, string(raw), `"process_id":77`)
	require.Contains(t, string(raw), `"status":"Ready"`)
	require.Contains(t, string(raw), `"access_counts":{`)
}

func TestCountByStatus(t *testing.T) {
	workers := []WorkerScore{
		{Status: StatusReady},
		{Status: StatusReady},
		{Status: StatusBusyWrite},
	}
	counts := CountByStatus(workers)
	require.Equal(t, map[WorkerStatus]int{
		StatusReady:     2,
		StatusBusyWrite: 1,
	}, counts)
}
