package snapshot

import (
	"crypto/sha256"
	"fmt"
)

// checksumTables hashes the stored table blocks in file order, which equals
// the SHA-256 of the data section.
func checksumTables(tables []encodedTable) [ChecksumSize]byte {
	h := sha256.New()
	for _, t := range tables {
		h.Write(t.data)
	}
	var sum [ChecksumSize]byte
	h.Sum(sum[:0])
	return sum
}

// verifyChecksum compares the data section against the checksum from the fixed header.
func verifyChecksum(data []byte, stored [ChecksumSize]byte) error {
	if computed := sha256.Sum256(data); computed != stored {
		return fmt.Errorf("%w: header %x, data %x", ErrChecksumMismatch, stored[:4], computed[:4])
	}
	return nil
}
