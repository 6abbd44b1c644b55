package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/skury/pkg/adapters/memory"
	"github.com/aretw0/skury/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunPreferenceStoreContract(t, store)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := memory.NewStore(map[string]string{"a": "1"})
	got, err := store.Get(context.Background())
	require.NoError(t, err)
	got["a"] = "mutated"

	again, err := store.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "1", again["a"])
}
