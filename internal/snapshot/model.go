package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/born-ml/lpio/internal/blob"
	"github.com/born-ml/lpio/internal/model"
	"github.com/born-ml/lpio/internal/table"
)

// EncodeModel packs m and writes it to w.
func EncodeModel(w io.Writer, m *model.Model, opts WriterOptions) error {
	ds, err := model.Pack(m)
	if err != nil {
		return fmt.Errorf("failed to pack model: %w", err)
	}
	return Encode(w, ds, opts)
}

// DecodeModel reads a snapshot from r and unpacks it into a model.
func DecodeModel(r io.Reader, opts ReaderOptions) (*model.Model, error) {
	ds, err := Decode(r, opts)
	if err != nil {
		return nil, err
	}
	return unpack(ds)
}

// WriteModel saves m to path, replacing any existing file.
func WriteModel(path string, m *model.Model, opts WriterOptions) error {
	ds, err := model.Pack(m)
	if err != nil {
		return fmt.Errorf("failed to pack model: %w", err)
	}
	return WriteFile(path, ds, opts)
}

// ReadModel loads a model saved with WriteModel.
func ReadModel(path string, opts ReaderOptions) (*model.Model, error) {
	ds, err := ReadFile(path, opts)
	if err != nil {
		return nil, err
	}
	return unpack(ds)
}

// SaveModel encodes m in memory and stores it under key.
func SaveModel(ctx context.Context, store blob.Store, key string, m *model.Model, opts WriterOptions) error {
	var buf bytes.Buffer
	if err := EncodeModel(&buf, m, opts); err != nil {
		return err
	}
	if err := store.Put(ctx, key, &buf); err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", key, err)
	}
	return nil
}

// LoadModel fetches key from store and decodes it.
func LoadModel(ctx context.Context, store blob.Store, key string, opts ReaderOptions) (*model.Model, error) {
	rc, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	return DecodeModel(rc, opts)
}

func unpack(ds *table.Dataset) (*model.Model, error) {
	m, err := model.Unpack(ds)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack model: %w", err)
	}
	return m, nil
}
