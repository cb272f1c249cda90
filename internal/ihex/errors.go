package ihex

import (
	"errors"
	"fmt"
)

// Field identifies the part of a record that failed to parse.
type Field int

const (
	BeginningOfRecord Field = iota
	CalculatingTheSize
	CalculatingTheAddress
	CalculatingIndex
	CalculatingData
	CalculatingChecksum
)

func (f Field) String() string {
	switch f {
	case BeginningOfRecord:
		return "beginning of record"
	case CalculatingTheSize:
		return "calculating the size"
	case CalculatingTheAddress:
		return "calculating the address"
	case CalculatingIndex:
		return "calculating index"
	case CalculatingData:
		return "calculating data"
	case CalculatingChecksum:
		return "calculating checksum"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

var (
	// ErrShortRecord means the line ended before the field was complete.
	ErrShortRecord = errors.New("unexpected end of record")

	// ErrChecksumMismatch is only reported when checksum verification is enabled.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// RecordFormatError reports a malformed Intel HEX record.
type RecordFormatError struct {
	Field Field
	Err   error
}

func (e *RecordFormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("record format: %s", e.Field)
	}
	return fmt.Sprintf("record format: %s: %v", e.Field, e.Err)
}

func (e *RecordFormatError) Unwrap() error { return e.Err }

func formatError(field Field, err error) error {
	return &RecordFormatError{Field: field, Err: err}
}
