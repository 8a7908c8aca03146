package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "model.lpsn", want: "model.lpsn"},
		{key: "runs/a/./model.lpsn", want: "runs/a/model.lpsn"},
		{key: "runs/../model.lpsn", want: "model.lpsn"},
		{key: "", wantErr: true},
		{key: "  ", wantErr: true},
		{key: "/etc/passwd", wantErr: true},
		{key: "../escape", wantErr: true},
		{key: "a/../..", wantErr: true},
		{key: `a\b`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := SanitizeKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newStores(t *testing.T) map[string]Store {
	t.Helper()
	local, err := NewLocalStore(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)
	return map[string]Store{
		"local":  local,
		"memory": NewMemoryStore(),
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, "runs/a.lpsn", strings.NewReader("first")))
			require.NoError(t, s.Put(ctx, "runs/a.lpsn", strings.NewReader("second")))
			require.NoError(t, s.Put(ctx, "runs/b.lpsn", strings.NewReader("b")))
			require.NoError(t, s.Put(ctx, "other.lpsn", strings.NewReader("o")))

			rc, err := s.Get(ctx, "runs/a.lpsn")
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, "second", string(got))

			keys, err := s.List(ctx, "runs/")
			require.NoError(t, err)
			assert.Equal(t, []string{"runs/a.lpsn", "runs/b.lpsn"}, keys)

			existed, err := s.Delete(ctx, "runs/a.lpsn")
			require.NoError(t, err)
			assert.True(t, existed)
			existed, err = s.Delete(ctx, "runs/a.lpsn")
			require.NoError(t, err)
			assert.False(t, existed)

			keys, err = s.List(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"other.lpsn", "runs/b.lpsn"}, keys)

			assert.Error(t, s.Put(ctx, "../x", strings.NewReader("x")))
		})
	}
}

func TestLocalStore_NoTempFilesLeft(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStore(root)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "a", strings.NewReader("data")))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Name())
}
