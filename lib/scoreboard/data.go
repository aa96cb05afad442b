package scoreboard

// ServerStatus is the envelope handed to serialization. It has no identity
// beyond the ordered worker list; ordering matches row order in the source
// table.
type ServerStatus struct {
	Workers []WorkerScore `json:"workers"`
}

// WorkerScore describes one worker slot of the monitored httpd server, as
// reported by one row of the mod_status scoreboard table.
//
// Time and volume fields carry unit suffixes because mod_status already
// converts them (microseconds to milliseconds, bytes to KiB/MiB) before
// rendering the page; this package does no unit conversion of its own.
type WorkerScore struct {
	// Pid is nil when the slot is not backed by a live process, which
	// mod_status renders as the literal "-".
	Pid *int32 `json:"process_id"`

	// Generation counts server restarts/reconfigures; it distinguishes
	// workers across restarts.
	Generation int32 `json:"generation"`

	Status WorkerStatus `json:"status"`

	AccessCounts AccessCounts `json:"access_counts"`

	ConnKiB  float32 `json:"connection_kib"`
	ChildMiB float32 `json:"child_mib"`
	SlotMiB  float32 `json:"slot_mib"`

	RequestTimeMs       uint32 `json:"request_time_ms"`
	SecondsSinceLastUse uint32 `json:"seconds_since_last_use"`

	// CPUSeconds is zero when the server was built without high-resolution
	// timing support and the page omits the CPU column entirely.
	CPUSeconds float32 `json:"cpu_seconds"`

	RequestLine string `json:"request_line"`
	VirtualHost string `json:"virtual_host"`
	Protocol    string `json:"protocol"`
	Client      string `json:"client"`

	DurationMs uint32 `json:"duration_ms"`
}

// AccessCounts holds completed-request counters at the three scoreboard
// nesting levels: the current connection, the current child process's
// lifetime, and the slot's lifetime across process restarts. The source
// data may be mutually inconsistent; no ordering between the three is
// enforced here.
type AccessCounts struct {
	ConnectionScope uint32 `json:"connection_scope"`
	ChildScope      uint32 `json:"child_scope"`
	SlotScope       uint32 `json:"slot_scope"`
}

// CountByStatus tallies workers per status, preserving nothing about row
// order. Unlisted statuses are simply absent from the map.
func CountByStatus(workers []WorkerScore) map[WorkerStatus]int {
	counts := make(map[WorkerStatus]int)
	for _, w := range workers {
		counts[w.Status]++
	}
	return counts
}
