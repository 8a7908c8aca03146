package snapshot

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/lpio/internal/table"
)

// WriterOptions configures snapshot encoding.
type WriterOptions struct {
	Compression Compression  // Per-table block codec
	Concurrency int          // Tables encoded at once; <= 0 means GOMAXPROCS
	Logger      *slog.Logger // Defaults to a discarding logger
}

// DefaultWriterOptions returns zstd compression with CPU-based concurrency.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{
		Compression: CompressionZstd,
		Concurrency: runtime.GOMAXPROCS(0),
		Logger:      slog.New(slog.DiscardHandler),
	}
}

type encodedTable struct {
	meta TableMeta
	data []byte
}

// Encode writes ds to w in .lpsn format. Tables keep the dataset order.
func Encode(w io.Writer, ds *table.Dataset, opts WriterOptions) error {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	start := time.Now()

	names := ds.Names()
	for _, name := range names {
		if err := ValidateTableName(name); err != nil {
			return err
		}
	}

	tables, err := encodeTables(ds, names, opts)
	if err != nil {
		return err
	}

	header := Header{
		FormatVersion: FormatVersion,
		LpioVersion:   lpioVersion,
		CreatedAt:     time.Now().UTC(),
		Tables:        make([]TableMeta, 0, len(tables)),
		Attrs:         ds.Attrs(),
	}
	if header.Attrs == nil {
		header.Attrs = make(map[string]string)
	}

	var offset int64
	for i := range tables {
		tables[i].meta.Offset = offset
		offset += tables[i].meta.Size
		header.Tables = append(header.Tables, tables[i].meta)
	}
	checksum := checksumTables(tables)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], opts.Compression.flags())
	// 0x0C-0x0F reserved
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(offset))
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := bw.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	headerEnd := int64(FixedHeaderSize + len(headerJSON))
	if padding := alignedDataOffset(int64(len(headerJSON))) - headerEnd; padding > 0 {
		if _, err := bw.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}
	for _, t := range tables {
		if _, err := bw.Write(t.data); err != nil {
			return fmt.Errorf("failed to write table %s: %w", t.meta.Name, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}

	opts.Logger.Debug("snapshot encoded",
		"tables", len(tables),
		"data_bytes", offset,
		"compression", opts.Compression.String(),
		"duration", time.Since(start),
	)
	return nil
}

// encodeTables serializes and compresses every table concurrently.
func encodeTables(ds *table.Dataset, names []string, opts WriterOptions) ([]encodedTable, error) {
	tables := make([]encodedTable, len(names))

	var g errgroup.Group
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	for i, name := range names {
		v, _ := ds.Get(name)
		g.Go(func() error {
			payload, nullSize, err := encodePayload(v)
			if err != nil {
				return fmt.Errorf("table %s: %w", name, err)
			}
			stored, compressed := compressPayload(payload, opts.Compression)
			tables[i] = encodedTable{
				meta: TableMeta{
					Name:       name,
					DType:      v.DType().String(),
					Dims:       v.Dims(),
					Shape:      v.Shape(),
					Size:       int64(len(stored)),
					RawSize:    int64(len(payload)),
					NullSize:   int64(nullSize),
					Compressed: compressed,
				},
				data: stored,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// WriteFile writes ds to path, replacing any existing file.
func WriteFile(path string, ds *table.Dataset, opts WriterOptions) (err error) {
	//nolint:gosec // G304: File path comes from the caller, which is expected for snapshots
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	return Encode(file, ds, opts)
}
