package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/lpio/internal/table"
)

// ReaderOptions configures snapshot decoding.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
	Concurrency            int             // Tables decoded at once; <= 0 means GOMAXPROCS
}

// DefaultReaderOptions returns strict validation with checksum verification.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		ValidationLevel: ValidationStrict,
		Concurrency:     runtime.GOMAXPROCS(0),
	}
}

// Info describes a snapshot without decoding its tables.
type Info struct {
	Version     uint32
	Flags       uint32
	Compression Compression
	HeaderSize  int64
	DataSize    int64
	Checksum    [ChecksumSize]byte
	Header      Header
}

// DataOffset returns where the data section starts.
func (i *Info) DataOffset() int64 {
	return alignedDataOffset(i.HeaderSize)
}

// ReadInfo parses the fixed and JSON headers from r.
func ReadInfo(r io.Reader) (*Info, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, fmt.Errorf("%w: fixed header: %w", ErrTruncated, err)
	}
	info, err := parseFixedHeader(fixed)
	if err != nil {
		return nil, err
	}
	headerBytes := make([]byte, info.HeaderSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrTruncated, err)
	}
	if err := json.Unmarshal(headerBytes, &info.Header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}
	return info, nil
}

func parseFixedHeader(fixed []byte) (*Info, error) {
	if len(fixed) < FixedHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrTruncated, len(fixed), FixedHeaderSize)
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, ErrInvalidMagic
	}

	info := &Info{
		Version: binary.LittleEndian.Uint32(fixed[4:8]),
		Flags:   binary.LittleEndian.Uint32(fixed[8:12]),
	}
	if info.Version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, info.Version, FormatVersion)
	}
	c, err := compressionFromFlags(info.Flags)
	if err != nil {
		return nil, err
	}
	info.Compression = c

	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	if dataSize > 1<<62 {
		return nil, fmt.Errorf("%w: data size %d", ErrOutOfBounds, dataSize)
	}
	info.HeaderSize = int64(headerSize)
	info.DataSize = int64(dataSize)
	copy(info.Checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])
	return info, nil
}

// Decode reads a whole snapshot from r.
func Decode(r io.Reader, opts ReaderOptions) (*table.Dataset, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return DecodeBytes(b, opts)
}

// DecodeBytes decodes a snapshot held in memory.
func DecodeBytes(b []byte, opts ReaderOptions) (*table.Dataset, error) {
	info, err := ReadInfo(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	dataOffset := info.DataOffset()
	if int64(len(b)) < dataOffset || int64(len(b))-dataOffset < info.DataSize {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrTruncated, len(b), dataOffset+info.DataSize)
	}
	data := b[dataOffset : dataOffset+info.DataSize]

	if !opts.SkipChecksumValidation {
		if err := verifyChecksum(data, info.Checksum); err != nil {
			return nil, err
		}
	}
	if err := ValidateHeader(&info.Header, info.DataSize, opts.ValidationLevel); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	vars, err := decodeTables(info, data, opts)
	if err != nil {
		return nil, err
	}

	ds := table.NewDataset()
	for i, t := range info.Header.Tables {
		ds.Set(t.Name, vars[i])
	}
	for k, v := range info.Header.Attrs {
		ds.SetAttr(k, v)
	}
	return ds, nil
}

func decodeTables(info *Info, data []byte, opts ReaderOptions) ([]table.Variable, error) {
	vars := make([]table.Variable, len(info.Header.Tables))

	var g errgroup.Group
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	for i, meta := range info.Header.Tables {
		g.Go(func() error {
			if meta.Offset < 0 || meta.Size < 0 || meta.Offset > int64(len(data)) || meta.Size > int64(len(data))-meta.Offset {
				return fmt.Errorf("%w: table %q", ErrOutOfBounds, meta.Name)
			}
			stored := data[meta.Offset : meta.Offset+meta.Size]

			payload := stored
			if meta.Compressed {
				var err error
				payload, err = decompressPayload(stored, meta.RawSize, info.Compression)
				if err != nil {
					return fmt.Errorf("table %q: %w", meta.Name, err)
				}
			}

			v, err := decodePayload(meta, payload)
			if err != nil {
				return err
			}
			vars[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vars, nil
}

// ReadFile decodes the snapshot stored at path.
func ReadFile(path string, opts ReaderOptions) (*table.Dataset, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for snapshot loading
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return DecodeBytes(b, opts)
}

// ReadFileInfo parses only the headers of the snapshot stored at path.
func ReadFileInfo(path string) (*Info, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for snapshot loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return ReadInfo(file)
}
