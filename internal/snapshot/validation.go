package snapshot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/lpio/internal/table"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize   = 100 * 1024 * 1024 // 100MB - maximum header size
	MaxTableCount   = 100_000           // Maximum number of tables in a file
	MaxTableNameLen = 4096              // Maximum table name length

	// MaxTableRawSize bounds one decoded table: MaxCells 8-byte values plus a
	// null bitmap over MaxCells cells.
	MaxTableRawSize = int64(table.MaxCells)*8 + 1<<30
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all validation checks (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks names, types and shapes but not offsets.
	ValidationNormal
	// ValidationNone skips validation. Use only with trusted input.
	ValidationNone
)

// ValidateTableOffsets checks for overlapping table regions and out-of-bounds access.
func ValidateTableOffsets(tables []TableMeta, dataSize int64) error {
	if len(tables) > MaxTableCount {
		return &ValidationError{
			Type:    "too_many_tables",
			Details: fmt.Sprintf("got %d, max %d", len(tables), MaxTableCount),
			Err:     ErrTooManyTables,
		}
	}

	sorted := make([]TableMeta, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Table:   t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", t.Offset, t.Size),
				Err:     ErrOutOfBounds,
			}
		}

		if t.Offset > dataSize || t.Size > dataSize-t.Offset {
			return &ValidationError{
				Type:    "out_of_bounds",
				Table:   t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
				Err:     ErrOutOfBounds,
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Table:   t.Name,
					Table2:  next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
					Err: ErrOffsetOverlap,
				}
			}
		}
	}

	return nil
}

// ValidateTableName rejects empty, oversized and NUL-carrying names.
func ValidateTableName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Type: "invalid_name", Details: "empty table name", Err: ErrInvalidTableName}
	case len(name) > MaxTableNameLen:
		return &ValidationError{
			Type:    "name_too_long",
			Table:   name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTableNameLen),
			Err:     ErrInvalidTableName,
		}
	case strings.Contains(name, "\x00"):
		return &ValidationError{Type: "invalid_name", Table: name, Details: "contains null byte", Err: ErrInvalidTableName}
	}
	return nil
}

// ValidateTableMeta checks that a table's type, dims and sizes are self-consistent.
func ValidateTableMeta(t TableMeta) error {
	invalid := func(format string, args ...any) error {
		return &ValidationError{Type: "invalid_table", Table: t.Name, Details: fmt.Sprintf(format, args...), Err: ErrCorruptPayload}
	}

	dt, ok := table.ParseDataType(t.DType)
	if !ok {
		return invalid("unknown dtype %q", t.DType)
	}
	if len(t.Dims) != len(t.Shape) {
		return invalid("%d dims for %d-dimensional shape", len(t.Dims), len(t.Shape))
	}
	if err := table.Shape(t.Shape).Validate(); err != nil {
		return invalid("%v", err)
	}
	if t.RawSize < 0 || t.RawSize > MaxTableRawSize {
		return invalid("raw size %d outside [0, %d]", t.RawSize, MaxTableRawSize)
	}
	if t.NullSize < 0 || t.NullSize > t.RawSize {
		return invalid("null size %d outside raw size %d", t.NullSize, t.RawSize)
	}
	valueBytes := t.RawSize - t.NullSize
	// Strings take at least one length byte per cell.
	size := max(int64(dt.Size()), 1)
	cells, ok := cellCount(t.Shape, min(valueBytes/size, int64(table.MaxCells)))
	if !ok {
		return invalid("shape %v exceeds %d cells or %d value bytes", t.Shape, int64(table.MaxCells), valueBytes)
	}
	if dt.Size() > 0 && cells*size != valueBytes {
		return invalid("%d value bytes for %s shape %v", valueBytes, dt, t.Shape)
	}
	if !t.Compressed && t.Size != t.RawSize {
		return invalid("stored size %d != raw size %d for uncompressed table", t.Size, t.RawSize)
	}
	return nil
}

// ValidateHeader performs header validation at the given level.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	if len(h.Tables) > MaxTableCount {
		return &ValidationError{
			Type:    "too_many_tables",
			Details: fmt.Sprintf("got %d, max %d", len(h.Tables), MaxTableCount),
			Err:     ErrTooManyTables,
		}
	}

	seen := make(map[string]struct{}, len(h.Tables))
	for _, t := range h.Tables {
		if err := ValidateTableName(t.Name); err != nil {
			return err
		}
		if _, dup := seen[t.Name]; dup {
			return &ValidationError{Type: "duplicate_name", Table: t.Name, Details: "table listed twice", Err: ErrInvalidTableName}
		}
		seen[t.Name] = struct{}{}
		if err := ValidateTableMeta(t); err != nil {
			return err
		}
	}

	if level == ValidationStrict {
		if err := ValidateTableOffsets(h.Tables, dataSize); err != nil {
			return err
		}
	}

	return nil
}
