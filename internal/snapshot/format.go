package snapshot

import "time"

// Format constants.
const (
	MagicBytes      = "LPSN"
	FormatVersion   = 1
	HeaderAlignment = 64   // Table data starts on a 64-byte boundary
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// Flags for the .lpsn format.
const (
	FlagCompressedLZ4  uint32 = 1 << 0 // bit 0: table payloads are LZ4 blocks
	FlagCompressedZstd uint32 = 1 << 1 // bit 1: table payloads are zstd blocks
)

// lpioVersion is recorded in every header.
const lpioVersion = "0.1.0"

// Header represents the JSON header in a .lpsn file.
type Header struct {
	FormatVersion int               `json:"format_version"` // Version of the .lpsn format
	LpioVersion   string            `json:"lpio_version"`   // Version of lpio that wrote the file
	CreatedAt     time.Time         `json:"created_at"`     // When the file was created
	Tables        []TableMeta       `json:"tables"`         // Tables in dataset order
	Attrs         map[string]string `json:"attrs"`          // Dataset attributes
}

// TableMeta describes a table in the .lpsn file.
type TableMeta struct {
	Name       string   `json:"name"`       // Field name (e.g., "constraints_rhs-c")
	DType      string   `json:"dtype"`      // Element type (e.g., "float64")
	Dims       []string `json:"dims"`       // Dimension names
	Shape      []int    `json:"shape"`      // Dimension lengths
	Offset     int64    `json:"offset"`     // Offset in the data section
	Size       int64    `json:"size"`       // Stored bytes
	RawSize    int64    `json:"raw_size"`   // Payload bytes before compression
	NullSize   int64    `json:"null_size"`  // Trailing payload bytes holding the null bitmap
	Compressed bool     `json:"compressed"` // Whether the stored bytes are a compressed block
}

func alignedDataOffset(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	return pos + (HeaderAlignment-(pos%HeaderAlignment))%HeaderAlignment
}
