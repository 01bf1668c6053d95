package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConversationMemory_AddTurnTruncates(t *testing.T) {
	mem := NewConversationMemory("lead-1")
	now := time.Now()
	for i := 0; i < 8; i++ {
		mem.AddTurn("customer", "hi", now)
	}
	require.Len(t, mem.Turns, maxTurns)
}

func TestConversationMemory_ResolvePronoun_Cheaper(t *testing.T) {
	mem := NewConversationMemory("lead-1")
	vehicles := []VehicleRef{
		{ID: "v1", Make: "Honda", Model: "Civic", Year: 2021, Price: 24000},
		{ID: "v2", Make: "Honda", Model: "Accord", Year: 2022, Price: 18000},
	}

	resolved := mem.ResolvePronoun("I'll take the cheaper one", vehicles)
	require.NotNil(t, resolved)
	require.Equal(t, "v2", resolved.ID)
}

func TestConversationMemory_ResolvePronoun_First(t *testing.T) {
	mem := NewConversationMemory("lead-1")
	vehicles := []VehicleRef{
		{ID: "v1", Make: "Honda", Model: "Civic", Year: 2021, Price: 18000},
		{ID: "v2", Make: "Honda", Model: "Accord", Year: 2022, Price: 24000},
	}

	resolved := mem.ResolvePronoun("the first one please", vehicles)
	require.NotNil(t, resolved)
	require.Equal(t, "v1", resolved.ID)
}

func TestConversationMemory_ResolvePronoun_SecondFallsBackWhenOnlyOne(t *testing.T) {
	mem := NewConversationMemory("lead-1")
	vehicles := []VehicleRef{
		{ID: "v1", Make: "Honda", Model: "Civic", Year: 2021, Price: 18000},
	}

	resolved := mem.ResolvePronoun("the second one please", vehicles)
	require.NotNil(t, resolved)
	require.Equal(t, "v1", resolved.ID)
}

func TestConversationMemory_ResolvePronoun_NewerAndOlder(t *testing.T) {
	mem := NewConversationMemory("lead-1")
	vehicles := []VehicleRef{
		{ID: "v1", Year: 2018},
		{ID: "v2", Year: 2023},
		{ID: "v3", Year: 2020},
	}

	newer := mem.ResolvePronoun("the newer one", vehicles)
	require.Equal(t, "v2", newer.ID)

	older := mem.ResolvePronoun("the older one", vehicles)
	require.Equal(t, "v1", older.ID)
}

func TestConversationMemory_ResolvePronoun_NoPatternReturnsNil(t *testing.T) {
	mem := NewConversationMemory("lead-1")
	vehicles := []VehicleRef{{ID: "v1", Year: 2020}}

	resolved := mem.ResolvePronoun("tell me about financing", vehicles)
	require.Nil(t, resolved)
}

func TestConversationMemory_ResolvePronoun_FallsBackToLastMention(t *testing.T) {
	mem := NewConversationMemory("lead-1")
	mem.SetLastInventoryMention(VehicleRef{ID: "v9", Year: 2019})

	resolved := mem.ResolvePronoun("that one sounds good", nil)
	require.NotNil(t, resolved)
	require.Equal(t, "v9", resolved.ID)
}

func TestConversationMemory_ClearOldTurns(t *testing.T) {
	mem := NewConversationMemory("lead-1")
	now := time.Now()
	mem.AddTurn("customer", "old message", now.Add(-48*time.Hour))
	mem.AddTurn("customer", "recent message", now)

	mem.ClearOldTurns(24*time.Hour, now)

	require.Len(t, mem.Turns, 1)
	require.Equal(t, "recent message", mem.Turns[0].Text)
}
