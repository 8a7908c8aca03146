package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block codec applied to each table payload.
type Compression uint8

const (
	// CompressionNone stores payloads as is.
	CompressionNone Compression = iota
	// CompressionLZ4 stores LZ4 blocks (fast).
	CompressionLZ4
	// CompressionZstd stores zstd blocks (better ratio).
	CompressionZstd
)

// String returns the codec name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression converts a codec name back to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

func (c Compression) flags() uint32 {
	switch c {
	case CompressionLZ4:
		return FlagCompressedLZ4
	case CompressionZstd:
		return FlagCompressedZstd
	default:
		return 0
	}
}

func compressionFromFlags(flags uint32) (Compression, error) {
	switch flags & (FlagCompressedLZ4 | FlagCompressedZstd) {
	case 0:
		return CompressionNone, nil
	case FlagCompressedLZ4:
		return CompressionLZ4, nil
	case FlagCompressedZstd:
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("%w: both compression flags set", ErrCorruptPayload)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	return dec
}

// compressPayload returns the bytes to store and whether they are compressed.
// Payloads that do not shrink are stored raw.
func compressPayload(data []byte, c Compression) ([]byte, bool) {
	if c == CompressionNone || len(data) == 0 {
		return data, false
	}

	var out []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil || n == 0 {
			return data, false
		}
		out = buf[:n]
	case CompressionZstd:
		enc := getZstdEncoder()
		out = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return data, false
	}

	if len(out) >= len(data) {
		return data, false
	}
	return out, true
}

// lz4MaxRatio bounds how far one LZ4 block can expand: a match length grows
// by at most 255 per input byte.
const lz4MaxRatio = 255

// decompressPayload expands a stored block to exactly rawSize bytes. Memory
// grows with the decoded output, never with the declared size alone.
func decompressPayload(stored []byte, rawSize int64, c Compression) ([]byte, error) {
	if rawSize < 0 || rawSize > MaxTableRawSize {
		return nil, fmt.Errorf("%w: raw size %d outside [0, %d]", ErrCorruptPayload, rawSize, MaxTableRawSize)
	}
	switch c {
	case CompressionLZ4:
		if rawSize > int64(len(stored))*lz4MaxRatio+64 {
			return nil, fmt.Errorf("%w: lz4 block of %d bytes cannot expand to %d", ErrCorruptPayload, len(stored), rawSize)
		}
		result := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(stored, result)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", ErrCorruptPayload, err)
		}
		if int64(n) != rawSize {
			return nil, fmt.Errorf("%w: lz4 block expanded to %d bytes, want %d", ErrCorruptPayload, n, rawSize)
		}
		return result, nil
	case CompressionZstd:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		if err := dec.Reset(bytes.NewReader(stored)); err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrCorruptPayload, err)
		}
		var buf bytes.Buffer
		buf.Grow(int(min(rawSize, int64(len(stored))*8)))
		if _, err := buf.ReadFrom(io.LimitReader(dec, rawSize+1)); err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrCorruptPayload, err)
		}
		if int64(buf.Len()) != rawSize {
			return nil, fmt.Errorf("%w: zstd block expanded to %d bytes, want %d", ErrCorruptPayload, buf.Len(), rawSize)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: compressed table in uncompressed file", ErrCorruptPayload)
	}
}
