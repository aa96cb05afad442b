package scoreboard

import (
	"errors"
	"fmt"
)

// ErrInvalidHeaders is returned when the scoreboard table's header row does
// not match the expected column names. Nothing is decoded past it.
var ErrInvalidHeaders = errors.New("invalid headers")

// InvalidCellCountError is returned for rows that have neither the full 15
// cells nor the 14-cell CPU-less layout. RowHTML carries the row's raw
// markup for debugging against the upstream page.
type InvalidCellCountError struct {
	RowHTML string
}

func (e *InvalidCellCountError) Error() string {
	return fmt.Sprintf("invalid cell count: %s", e.RowHTML)
}

// StatusCodeLengthError is returned when the "M" column is not exactly one
// character long.
type StatusCodeLengthError struct {
	Text string
}

func (e *StatusCodeLengthError) Error() string {
	return fmt.Sprintf("status code must be exactly one character long: %q", e.Text)
}

// InvalidStatusCodeError is returned for a single-character "M" column value
// outside the recognized status set.
type InvalidStatusCodeError struct {
	Code rune
}

func (e *InvalidStatusCodeError) Error() string {
	return fmt.Sprintf("invalid status code %q", e.Code)
}

// AccessCountsFieldCountError is returned when the "Acc" column does not
// split into exactly three slash-separated counters.
type AccessCountsFieldCountError struct {
	Text string
}

func (e *AccessCountsFieldCountError) Error() string {
	return fmt.Sprintf("invalid field count when parsing %q, expected `1/2/3`", e.Text)
}

// SrvFormatError is returned when the "Srv" column is not a dash-separated
// "child-generation" pair.
type SrvFormatError struct {
	Text string
}

func (e *SrvFormatError) Error() string {
	return fmt.Sprintf(`the "Srv" column is not in format x-x: %q`, e.Text)
}

// RowError wraps any decode failure with the offending row's outer HTML.
// The CLI layer unwraps it to echo the markup on stderr; the underlying
// cause stays reachable through errors.As/Is.
type RowError struct {
	RowHTML string
	Err     error
}

func (e *RowError) Error() string {
	return e.Err.Error()
}

func (e *RowError) Unwrap() error {
	return e.Err
}
