// Package snapshot provides the .lpsn binary format for saving and loading models losslessly.
//
//	Format Structure:
//	  [64 bytes: fixed header]
//	    0x00 magic "LPSN"
//	    0x04 version (uint32 LE)
//	    0x08 flags (uint32 LE)
//	    0x0C reserved
//	    0x10 header size (uint64 LE)
//	    0x18 data size (uint64 LE)
//	    0x20 SHA-256 of the data section (32 bytes)
//	  [Header: JSON table metadata and attributes]
//	  [Table data: per-table payloads, section 64-byte aligned]
//
// A table payload is its values (little-endian float64/int64, one byte per bool,
// uvarint-prefixed strings) followed by its null bitmap in roaring portable format.
// With a compression flag set every payload is an LZ4 or zstd block.
//
// Example usage:
//
//	// Save a model
//	if err := snapshot.WriteModel("model.lpsn", m, snapshot.DefaultWriterOptions()); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load it back
//	m, err := snapshot.ReadModel("model.lpsn")
//	if err != nil {
//	    log.Fatal(err)
//	}
package snapshot
