package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageDrivers(t *testing.T) {
	ctx := context.Background()

	fileStorage, err := NewFileStorage(filepath.Join(t.TempDir(), "nested", "storage.json"))
	require.NoError(t, err)

	drivers := map[string]LocalStorage{
		"memory": NewMemoryStorage(),
		"file":   fileStorage,
	}

	for name, s := range drivers {
		t.Run(name, func(t *testing.T) {
			_, found, err := s.GetItem(ctx, "user")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, s.SetItem(ctx, "user", "first"))
			require.NoError(t, s.SetItem(ctx, "user", "second"))

			value, found, err := s.GetItem(ctx, "user")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "second", value)

			require.NoError(t, s.RemoveItem(ctx, "user"))
			_, found, err = s.GetItem(ctx, "user")
			require.NoError(t, err)
			assert.False(t, found)

			assert.NoError(t, s.RemoveItem(ctx, "missing"))
		})
	}
}

func TestFileStorageSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")

	first, err := NewFileStorage(path)
	require.NoError(t, err)
	require.NoError(t, first.SetItem(ctx, "mobiblog:abc:user", "token"))

	second, err := NewFileStorage(path)
	require.NoError(t, err)

	value, found, err := second.GetItem(ctx, "mobiblog:abc:user")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "token", value)
}

func TestFileStorageRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStorage(path)
	assert.Error(t, err)
}
