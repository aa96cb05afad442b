package scoreboard

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"httpd-scoreboard/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/scoreboard")

// The scoreboard is rendered as the page's only border-less table. If the
// page ever grew a second border="0" table, its rows would be concatenated
// here in document order.
const rowSelector = `table[border="0"] tr`

var expectedHeaders = []string{
	"Srv", "PID", "Acc", "M", "CPU", "SS", "Req", "Dur",
	"Conn", "Child", "Slot", "Client", "Protocol", "VHost", "Request",
}

// Header variant emitted by servers built without high-resolution timing
// support; the CPU column is missing entirely.
var expectedHeadersNoCPU = append(expectedHeaders[:4:4], expectedHeaders[5:]...)

// Parse locates the scoreboard table in doc and decodes every data row into
// a WorkerScore, in row order. The first row of the table is the header and
// must match the known column layout. Decoding is fail-fast: the first bad
// row aborts the whole batch and is returned as a RowError carrying the
// row's raw markup.
func Parse(ctx context.Context, doc *goquery.Document) ([]WorkerScore, error) {
	_, span := tracer.Start(ctx, "scoreboard:Parse")
	defer span.End()

	var workers []WorkerScore
	var failure error

	doc.Find(rowSelector).EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i == 0 {
			if err := validateHeaders(row); err != nil {
				failure = err
				return false
			}
			return true
		}
		score, err := decodeRow(row)
		if err != nil {
			markup, _ := goquery.OuterHtml(row)
			failure = &RowError{RowHTML: markup, Err: err}
			return false
		}
		workers = append(workers, score)
		return true
	})

	if failure != nil {
		span.RecordError(failure)
		span.SetStatus(codes.Error, "failed to parse scoreboard")
		return nil, failure
	}
	span.SetAttributes(attribute.Int("workers", len(workers)))
	return workers, nil
}

// validateHeaders checks the header row against the known column layouts,
// full and CPU-less. Comparison zips the row's cells with the expected
// names and only checks the overlapping prefix, so a truncated header that
// matches its own prefix passes. That mirrors the upstream page's original
// validator; tighten to an exact length check here if it ever bites.
func validateHeaders(row *goquery.Selection) error {
	cells := htmlutil.CellTexts(row)
	if headersMatch(cells, expectedHeaders) || headersMatch(cells, expectedHeadersNoCPU) {
		return nil
	}
	return ErrInvalidHeaders
}

func headersMatch(cells, expected []string) bool {
	n := len(cells)
	if len(expected) < n {
		n = len(expected)
	}
	for i := 0; i < n; i++ {
		if cells[i] != expected[i] {
			return false
		}
	}
	return true
}

// decodeRow turns one data row into a WorkerScore. Rows must have the full
// 15 cells, or 14 when the CPU column is absent; in the latter case a
// synthetic "0" is inserted so every field keeps its 15-cell offset.
func decodeRow(row *goquery.Selection) (WorkerScore, error) {
	cols := htmlutil.CellTexts(row)

	switch len(cols) {
	case 15:
	case 14:
		cols = slices.Insert(cols, 4, "0")
	default:
		markup, _ := goquery.OuterHtml(row)
		return WorkerScore{}, &InvalidCellCountError{RowHTML: markup}
	}

	_, generation, err := parseSrv(cols[0])
	if err != nil {
		return WorkerScore{}, err
	}
	pid, err := parsePid(cols[1])
	if err != nil {
		return WorkerScore{}, err
	}
	accessCounts, err := parseAcc(cols[2])
	if err != nil {
		return WorkerScore{}, err
	}
	// "M" column, the worker's mode of operation
	status, err := parseStatus(cols[3])
	if err != nil {
		return WorkerScore{}, err
	}
	cpu, err := strconv.ParseFloat(cols[4], 32)
	if err != nil {
		return WorkerScore{}, err
	}
	secondsSince, err := strconv.ParseUint(cols[5], 10, 32)
	if err != nil {
		return WorkerScore{}, err
	}
	requestTime, err := strconv.ParseUint(cols[6], 10, 32)
	if err != nil {
		return WorkerScore{}, err
	}
	duration, err := strconv.ParseUint(cols[7], 10, 32)
	if err != nil {
		return WorkerScore{}, err
	}
	connKiB, err := strconv.ParseFloat(cols[8], 32)
	if err != nil {
		return WorkerScore{}, err
	}
	childMiB, err := strconv.ParseFloat(cols[9], 32)
	if err != nil {
		return WorkerScore{}, err
	}
	slotMiB, err := strconv.ParseFloat(cols[10], 32)
	if err != nil {
		return WorkerScore{}, err
	}

	return WorkerScore{
		Pid:                 pid,
		Generation:          generation,
		Status:              status,
		AccessCounts:        accessCounts,
		ConnKiB:             float32(connKiB),
		ChildMiB:            float32(childMiB),
		SlotMiB:             float32(slotMiB),
		RequestTimeMs:       uint32(requestTime),
		SecondsSinceLastUse: uint32(secondsSince),
		CPUSeconds:          float32(cpu),
		Client:              cols[11],
		Protocol:            cols[12],
		VirtualHost:         cols[13],
		RequestLine:         cols[14],
		DurationMs:          uint32(duration),
	}, nil
}

// parseSrv splits the "Srv" column, a "<child number>-<generation>" pair.
// Only the generation survives into the record.
func parseSrv(s string) (child, generation int32, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, &SrvFormatError{Text: s}
	}
	c, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	g, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	return int32(c), int32(g), nil
}

// parsePid reads the "PID" column; "-" marks a slot with no live process.
func parsePid(s string) (*int32, error) {
	if s == "-" {
		return nil, nil
	}
	pid, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil, err
	}
	p := int32(pid)
	return &p, nil
}

// parseAcc reads the "Acc" column, three slash-separated request counters
// at connection, child and slot scope.
func parseAcc(s string) (AccessCounts, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return AccessCounts{}, &AccessCountsFieldCountError{Text: s}
	}
	connection, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return AccessCounts{}, err
	}
	child, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return AccessCounts{}, err
	}
	slot, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return AccessCounts{}, err
	}
	return AccessCounts{
		ConnectionScope: uint32(connection),
		ChildScope:      uint32(child),
		SlotScope:       uint32(slot),
	}, nil
}

// parseStatus reads the "M" column, a single status character.
func parseStatus(s string) (WorkerStatus, error) {
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, &StatusCodeLengthError{Text: s}
	}
	return StatusFromCode(runes[0])
}
