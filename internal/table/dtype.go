// Package table provides the labelled, null-aware arrays that back an optimization model.
package table

// Elem is a constraint for supported cell types.
type Elem interface {
	float64 | int64 | bool | string
}

// DataType represents runtime type information for arrays.
type DataType int

// Supported data types.
const (
	Float64 DataType = iota
	Int64
	Bool
	String
)

// Size returns the fixed byte size of the data type, or 0 for variable-length strings.
func (dt DataType) Size() int {
	switch dt {
	case Float64, Int64:
		return 8
	case Bool:
		return 1
	case String:
		return 0
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float64:
		return "float64"
	case Int64:
		return "int64"
	case Bool:
		return "bool"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// ParseDataType converts a name produced by String back to a DataType.
func ParseDataType(s string) (DataType, bool) {
	switch s {
	case "float64":
		return Float64, true
	case "int64":
		return Int64, true
	case "bool":
		return Bool, true
	case "string":
		return String, true
	default:
		return 0, false
	}
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T Elem]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case float64:
		return Float64
	case int64:
		return Int64
	case bool:
		return Bool
	case string:
		return String
	default:
		panic("unsupported type")
	}
}
