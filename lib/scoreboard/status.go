package scoreboard

import "fmt"

// WorkerStatus is the state of one worker slot, encoded by mod_status as a
// single character in the "M" column. The set is closed; unrecognized
// characters are rejected rather than defaulted.
type WorkerStatus int

const (
	StatusDead WorkerStatus = iota
	StatusStarting
	StatusReady
	StatusBusyRead
	StatusBusyWrite
	StatusBusyKeepAlive
	StatusBusyLog
	StatusBusyDNS
	StatusClosing
	StatusGraceful
	StatusIdleKill
)

var statusNames = map[WorkerStatus]string{
	StatusDead:          "Dead",
	StatusStarting:      "Starting",
	StatusReady:         "Ready",
	StatusBusyRead:      "BusyRead",
	StatusBusyWrite:     "BusyWrite",
	StatusBusyKeepAlive: "BusyKeepAlive",
	StatusBusyLog:       "BusyLog",
	StatusBusyDNS:       "BusyDns",
	StatusClosing:       "Closing",
	StatusGraceful:      "Graceful",
	StatusIdleKill:      "IdleKill",
}

var statusCodes = map[WorkerStatus]rune{
	StatusDead:          '.',
	StatusStarting:      'S',
	StatusReady:         '_',
	StatusBusyRead:      'R',
	StatusBusyWrite:     'W',
	StatusBusyKeepAlive: 'K',
	StatusBusyLog:       'L',
	StatusBusyDNS:       'D',
	StatusClosing:       'C',
	StatusGraceful:      'G',
	StatusIdleKill:      'I',
}

var codeToStatus = func() map[rune]WorkerStatus {
	m := make(map[rune]WorkerStatus, len(statusCodes))
	for status, code := range statusCodes {
		m[code] = status
	}
	return m
}()

// StatusFromCode maps a scoreboard status character to its WorkerStatus.
func StatusFromCode(code rune) (WorkerStatus, error) {
	status, ok := codeToStatus[code]
	if !ok {
		return 0, &InvalidStatusCodeError{Code: code}
	}
	return status, nil
}

// Code returns the single-character encoding used by the status page.
func (s WorkerStatus) Code() rune {
	return statusCodes[s]
}

func (s WorkerStatus) String() string {
	name, ok := statusNames[s]
	if !ok {
		return fmt.Sprintf("WorkerStatus(%d)", int(s))
	}
	return name
}

// MarshalText encodes the status as its symbolic name, so JSON output
// carries "Ready" rather than a bare integer.
func (s WorkerStatus) MarshalText() ([]byte, error) {
	name, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown worker status %d", int(s))
	}
	return []byte(name), nil
}

func (s *WorkerStatus) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown worker status %q", string(text))
}
