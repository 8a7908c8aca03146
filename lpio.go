// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package lpio

import (
	"context"
	"io"

	"github.com/born-ml/lpio/internal/blob"
	"github.com/born-ml/lpio/internal/blob/s3"
	"github.com/born-ml/lpio/internal/lpfile"
	"github.com/born-ml/lpio/internal/model"
	"github.com/born-ml/lpio/internal/snapshot"
	"github.com/born-ml/lpio/internal/table"
)

// Model is a sparse tabular linear optimization model.
type Model = model.Model

// LinearExpression is a sum of coefficient times variable terms.
type LinearExpression = model.LinearExpression

// Sentinel marks an absent variable or constraint label.
const Sentinel = model.Sentinel

// Constraint senses.
const (
	SignLessEqual    = model.SignLessEqual
	SignEqual        = model.SignEqual
	SignGreaterEqual = model.SignGreaterEqual
)

// ObjectiveTermDim is the term dimension of the objective expression.
const ObjectiveTermDim = model.ObjectiveTermDim

// NewLinearExpression pairs coefficients with variable labels over the same dims.
func NewLinearExpression(coeffs *table.Array[float64], vars *table.Array[int64]) (*LinearExpression, error) {
	return model.NewLinearExpression(coeffs, vars)
}

// NewModel creates an empty model.
func NewModel() *Model {
	return model.New()
}

// LPOptions configures LP export.
type LPOptions = lpfile.Options

// Observer receives LP section start and completion events.
type Observer = lpfile.Observer

// DefaultLPOptions returns CPU-parallel formatting with no observer.
func DefaultLPOptions() LPOptions {
	return lpfile.DefaultOptions()
}

// WriteLP exports m to path in LP format with default options.
func WriteLP(path string, m *Model) error {
	return lpfile.WriteFile(path, m, lpfile.DefaultOptions())
}

// WriteLPWithOptions exports m to path in LP format.
func WriteLPWithOptions(path string, m *Model, opts LPOptions) error {
	return lpfile.WriteFile(path, m, opts)
}

// EncodeLP writes m to w in LP format.
func EncodeLP(w io.Writer, m *Model, opts LPOptions) error {
	return lpfile.Encode(w, m, opts)
}

// Compression selects the snapshot block codec.
type Compression = snapshot.Compression

// Snapshot compression codecs.
const (
	CompressionNone = snapshot.CompressionNone
	CompressionLZ4  = snapshot.CompressionLZ4
	CompressionZstd = snapshot.CompressionZstd
)

// SnapshotWriterOptions configures snapshot encoding.
type SnapshotWriterOptions = snapshot.WriterOptions

// SnapshotReaderOptions configures snapshot decoding.
type SnapshotReaderOptions = snapshot.ReaderOptions

// WriteSnapshot saves m to path with default options.
func WriteSnapshot(path string, m *Model) error {
	return snapshot.WriteModel(path, m, snapshot.DefaultWriterOptions())
}

// WriteSnapshotWithOptions saves m to path.
func WriteSnapshotWithOptions(path string, m *Model, opts SnapshotWriterOptions) error {
	return snapshot.WriteModel(path, m, opts)
}

// ReadSnapshot loads a model saved with WriteSnapshot.
func ReadSnapshot(path string) (*Model, error) {
	return snapshot.ReadModel(path, snapshot.DefaultReaderOptions())
}

// Store is a key/value blob store for snapshots.
type Store = blob.Store

// NewLocalStore creates a filesystem store rooted at dir.
func NewLocalStore(dir string) (Store, error) {
	s, err := blob.NewLocalStore(dir)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore() Store {
	return blob.NewMemoryStore()
}

// OpenS3StoreFromEnv creates an S3 store configured by LPIO_BLOB_S3_* variables.
func OpenS3StoreFromEnv(ctx context.Context) (Store, error) {
	s, err := s3.OpenFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Save stores a snapshot of m under key.
func Save(ctx context.Context, store Store, key string, m *Model) error {
	return snapshot.SaveModel(ctx, store, key, m, snapshot.DefaultWriterOptions())
}

// Load restores a model stored with Save.
func Load(ctx context.Context, store Store, key string) (*Model, error) {
	return snapshot.LoadModel(ctx, store, key, snapshot.DefaultReaderOptions())
}
