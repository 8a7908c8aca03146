package snapshot

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrOffsetOverlap      = errors.New("table offsets overlap")
	ErrOutOfBounds        = errors.New("table extends beyond data section")
	ErrTooManyTables      = errors.New("too many tables in file")
	ErrInvalidTableName   = errors.New("invalid table name")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrTruncated          = errors.New("file truncated")
	ErrCorruptPayload     = errors.New("corrupt table payload")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Type    string // Type of error (e.g., "offset_overlap", "out_of_bounds")
	Table   string // Primary table name involved
	Table2  string // Secondary table name (for overlap errors)
	Details string // Additional details
	Err     error  // Sentinel matched by errors.Is
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Table2 != "" {
		return fmt.Sprintf("%s: tables %q and %q: %s", e.Type, e.Table, e.Table2, e.Details)
	}
	if e.Table != "" {
		return fmt.Sprintf("%s: table %q: %s", e.Type, e.Table, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// Unwrap returns the sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
