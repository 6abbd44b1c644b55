package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPreferenceStoreContract runs a suite of tests to verify that a PreferenceStore
// implementation adheres to the defined interface contract.
func RunPreferenceStoreContract(t *testing.T, store PreferenceStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405") + "-"
	key := prefix + "theme"
	other := prefix + "other"

	t.Run("Set and Get", func(t *testing.T) {
		err := store.Set(ctx, map[string]string{key: "light", other: "x"})
		require.NoError(t, err, "Set should not return error")

		got, err := store.Get(ctx, key, other)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, "light", got[key])
		assert.Equal(t, "x", got[other])
	})

	t.Run("Last Write Wins", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, map[string]string{key: "dark"}))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "dark", got[key])
	})

	t.Run("Missing Keys Are Absent", func(t *testing.T) {
		got, err := store.Get(ctx, prefix+"missing", key)
		require.NoError(t, err, "missing keys are not an error")
		_, ok := got[prefix+"missing"]
		assert.False(t, ok)
		assert.Equal(t, "dark", got[key])
	})

	t.Run("Get All", func(t *testing.T) {
		got, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "dark", got[key])
		assert.Equal(t, "x", got[other])
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, key, prefix+"never-set"))

		got, err := store.Get(ctx, key, other)
		require.NoError(t, err)
		_, ok := got[key]
		assert.False(t, ok, "deleted key should be absent")
		assert.Equal(t, "x", got[other])

		require.NoError(t, store.Delete(ctx, other))
	})
}
