package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_FallbackRoundTrip(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	mem, err := store.Load(ctx, "lead-1")
	require.NoError(t, err)
	require.Equal(t, "lead-1", mem.ConversationID)
	require.Empty(t, mem.Turns)

	mem.UpdateSlots(map[string]string{"budget": "25000"})
	require.NoError(t, store.Save(ctx, mem))

	reloaded, err := store.Load(ctx, "lead-1")
	require.NoError(t, err)
	require.Equal(t, "25000", reloaded.Slots["budget"])

	require.NoError(t, store.Delete(ctx, "lead-1"))
	cleared, err := store.Load(ctx, "lead-1")
	require.NoError(t, err)
	require.Empty(t, cleared.Slots)
}
