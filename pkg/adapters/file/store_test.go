package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/skury/pkg/adapters/file"
	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "prefs", "preferences.json"))
	ports.RunPreferenceStoreContract(t, store)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	ctx := context.Background()

	require.NoError(t, file.New(path).Set(ctx, map[string]string{domain.KeyTheme: "light"}))

	got, err := file.New(path).Get(ctx, domain.KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "light", got[domain.KeyTheme])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should be left behind")
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := file.New(path).Get(context.Background())
	assert.Error(t, err)
}

func TestFileStore_DefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join(".skury", "preferences.json"), file.New("").Path)
}
