package scoreboard

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"httpd-scoreboard/lib/telemetry"

	_ "embed"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/status.html
var statusPage string

//go:embed testdata/status_nocpu.html
var statusPageNoCPU string

func mustDocument(t testing.TB, page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func pid(p int32) *int32 {
	return &p
}

func TestParseFullPage(t *testing.T) {
	defer telemetry.SetupForTesting(t, "lib/scoreboard")()

	doc := mustDocument(t, statusPage)
	workers, err := Parse(context.Background(), doc)
	require.NoError(t, err)

	expected := []WorkerScore{
		{
			Pid:        pid(1234),
			Generation: 7,
			Status:     StatusBusyWrite,
			AccessCounts: AccessCounts{
				ConnectionScope: 10,
				ChildScope:      5,
				SlotScope:       2,
			},
			ConnKiB:             1.7,
			ChildMiB:            3.2,
			SlotMiB:             12.5,
			RequestTimeMs:       11,
			SecondsSinceLastUse: 2,
			CPUSeconds:          0.03,
			Client:              "203.0.113.7",
			Protocol:            "http/1.1",
			VirtualHost:         "example.com:80",
			RequestLine:         "GET /index.html HTTP/1.1",
			DurationMs:          13,
		},
		{
			Pid:        nil,
			Generation: 7,
			Status:     StatusDead,
			AccessCounts: AccessCounts{
				ConnectionScope: 0,
				ChildScope:      0,
				SlotScope:       7,
			},
			ConnKiB:             0,
			ChildMiB:            0,
			SlotMiB:             4.1,
			RequestTimeMs:       0,
			SecondsSinceLastUse: 5,
			CPUSeconds:          0,
			Client:              "198.51.100.2",
			Protocol:            "http/1.1",
			VirtualHost:         "example.com:80",
			RequestLine:         "NULL",
			DurationMs:          0,
		},
	}

	diff := cmp.Diff(expected, workers)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestParseNoCPUPage(t *testing.T) {
	doc := mustDocument(t, statusPageNoCPU)
	workers, err := Parse(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, workers, 1)

	w := workers[0]
	require.Equal(t, float32(0), w.CPUSeconds)
	require.Equal(t, pid(4242), w.Pid)
	require.Equal(t, int32(1), w.Generation)
	require.Equal(t, StatusBusyKeepAlive, w.Status)
	require.Equal(t, AccessCounts{ConnectionScope: 1, ChildScope: 2, SlotScope: 3}, w.AccessCounts)
	require.Equal(t, uint32(7), w.RequestTimeMs)
	require.Equal(t, uint32(9), w.DurationMs)
	require.Equal(t, "POST /v1/submit HTTP/2", w.RequestLine)
}

const fullHeaderRow = `<tr><th>Srv</th><th>PID</th><th>Acc</th><th>M</th><th>CPU</th><th>SS</th><th>Req</th><th>Dur</th><th>Conn</th><th>Child</th><th>Slot</th><th>Client</th><th>Protocol</th><th>VHost</th><th>Request</th></tr>`

func pageWithRows(rows ...string) string {
	return `<html><body><table border="0">` + strings.Join(rows, "\n") + `</table></body></html>`
}

func validRow(status string) string {
	cells := []string{
		"0-1", "100", "1/1/1", status, "0.5",
		"1", "2", "3", "0.1", "0.2", "0.3",
		"203.0.113.1", "http/1.1", "example.com:80", "GET / HTTP/1.1",
	}
	var b strings.Builder
	b.WriteString("<tr>")
	for _, c := range cells {
		b.WriteString("<td>" + c + "</td>")
	}
	b.WriteString("</tr>")
	return b.String()
}

func TestParseInvalidHeaders(t *testing.T) {
	badHeader := strings.Replace(fullHeaderRow, "<th>PID</th>", "<th>Pid</th>", 1)
	doc := mustDocument(t, pageWithRows(badHeader, validRow("_")))

	workers, err := Parse(context.Background(), doc)
	require.ErrorIs(t, err, ErrInvalidHeaders)
	require.Nil(t, workers)
}

func TestParseTruncatedHeader(t *testing.T) {
	// A header matching a strict prefix of the canonical names passes; this
	// is intentional compatibility with the upstream validator.
	truncated := `<tr><th>Srv</th><th>PID</th><th>Acc</th></tr>`
	doc := mustDocument(t, pageWithRows(truncated, validRow("_")))
	workers, err := Parse(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, workers, 1)

	mismatched := `<tr><th>Srv</th><th>PID</th><th>Mode</th></tr>`
	doc = mustDocument(t, pageWithRows(mismatched, validRow("_")))
	_, err = Parse(context.Background(), doc)
	require.ErrorIs(t, err, ErrInvalidHeaders)
}

func TestParseBadRowFailsFast(t *testing.T) {
	doc := mustDocument(t, pageWithRows(fullHeaderRow, validRow("Z"), validRow("_")))

	workers, err := Parse(context.Background(), doc)
	require.Error(t, err)
	require.Nil(t, workers)

	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	require.Contains(t, rowErr.RowHTML, "<td>Z</td>")

	var statusErr *InvalidStatusCodeError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 'Z', statusErr.Code)
}

func TestParseInvalidCellCount(t *testing.T) {
	shortRow := `<tr><td>0-1</td><td>100</td><td>1/1/1</td></tr>`
	doc := mustDocument(t, pageWithRows(fullHeaderRow, shortRow))

	_, err := Parse(context.Background(), doc)
	var cellErr *InvalidCellCountError
	require.ErrorAs(t, err, &cellErr)
	require.Contains(t, cellErr.RowHTML, "<td>0-1</td>")
}

func TestParseEmptyDocument(t *testing.T) {
	doc := mustDocument(t, `<html><body><p>no scoreboard here</p></body></html>`)
	workers, err := Parse(context.Background(), doc)
	require.NoError(t, err)
	require.Empty(t, workers)
}

func TestParseConcatenatesBorderlessTables(t *testing.T) {
	// Rows of every border="0" table are yielded in document order; only
	// the very first row of the combined sequence is treated as a header.
	page := `<html><body>` +
		`<table border="0">` + fullHeaderRow + validRow("_") + `</table>` +
		`<table border="0">` + validRow("W") + `</table>` +
		`</body></html>`
	doc := mustDocument(t, page)

	workers, err := Parse(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, workers, 2)
	require.Equal(t, StatusReady, workers[0].Status)
	require.Equal(t, StatusBusyWrite, workers[1].Status)
}

func TestParseSrv(t *testing.T) {
	child, generation, err := parseSrv("3-7")
	require.NoError(t, err)
	require.Equal(t, int32(3), child)
	require.Equal(t, int32(7), generation)

	for _, text := range []string{"3-7-1", "37", ""} {
		_, _, err := parseSrv(text)
		var formatErr *SrvFormatError
		require.ErrorAs(t, err, &formatErr, "input %q", text)
		require.Equal(t, text, formatErr.Text)
	}

	_, _, err = parseSrv("a-7")
	var numErr *strconv.NumError
	require.ErrorAs(t, err, &numErr)
}

func TestParsePid(t *testing.T) {
	p, err := parsePid("-")
	require.NoError(t, err)
	require.Nil(t, p)

	p, err = parsePid("1234")
	require.NoError(t, err)
	require.Equal(t, pid(1234), p)

	_, err = parsePid("abc")
	var numErr *strconv.NumError
	require.ErrorAs(t, err, &numErr)
}

func TestParseAcc(t *testing.T) {
	counts, err := parseAcc("10/5/2")
	require.NoError(t, err)
	require.Equal(t, AccessCounts{
		ConnectionScope: 10,
		ChildScope:      5,
		SlotScope:       2,
	}, counts)

	_, err = parseAcc("10/5")
	var fieldErr *AccessCountsFieldCountError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "10/5", fieldErr.Text)

	_, err = parseAcc("a/b/c")
	var numErr *strconv.NumError
	require.ErrorAs(t, err, &numErr)
}

func TestParseStatus(t *testing.T) {
	cases := map[string]WorkerStatus{
		"_": StatusReady,
		"S": StatusStarting,
		"R": StatusBusyRead,
		"W": StatusBusyWrite,
		"K": StatusBusyKeepAlive,
		"L": StatusBusyLog,
		"D": StatusBusyDNS,
		"C": StatusClosing,
		".": StatusDead,
		"G": StatusGraceful,
		"I": StatusIdleKill,
	}
	for text, expected := range cases {
		status, err := parseStatus(text)
		require.NoError(t, err, "input %q", text)
		require.Equal(t, expected, status)
	}

	_, err := parseStatus("Z")
	var codeErr *InvalidStatusCodeError
	require.ErrorAs(t, err, &codeErr)
	require.Equal(t, 'Z', codeErr.Code)

	for _, text := range []string{"WW", ""} {
		_, err := parseStatus(text)
		var lengthErr *StatusCodeLengthError
		require.ErrorAs(t, err, &lengthErr, "input %q", text)
	}
}

func TestDecodeDeterministic(t *testing.T) {
	doc := mustDocument(t, pageWithRows(fullHeaderRow, validRow("_")))
	first, err := Parse(context.Background(), doc)
	require.NoError(t, err)
	second, err := Parse(context.Background(), doc)
	require.NoError(t, err)

	diff := cmp.Diff(first, second)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestRowErrorUnwrap(t *testing.T) {
	cause := &SrvFormatError{Text: "37"}
	err := &RowError{RowHTML: "<tr></tr>", Err: cause}
	require.ErrorIs(t, err, cause)
	require.Equal(t, cause.Error(), err.Error())
}

func TestHeadersMatchAgainstExtraCells(t *testing.T) {
	// Extra header cells past the expected list are ignored, same as a
	// truncated header; the zip only compares the overlap.
	extra := strings.Replace(
		fullHeaderRow, "</tr>", "<th>Bonus</th></tr>", 1,
	)
	doc := mustDocument(t, pageWithRows(extra, validRow("_")))
	workers, err := Parse(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, workers, 1)
}
