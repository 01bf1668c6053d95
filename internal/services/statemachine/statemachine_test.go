package statemachine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdvance_GreetingToDiscovery(t *testing.T) {
	s := Signals{HasBudget: true}
	require.Equal(t, StateDiscovery, Advance(StateGreeting, s))
}

func TestAdvance_GreetingStaysWithoutSignal(t *testing.T) {
	require.Equal(t, StateGreeting, Advance(StateGreeting, Signals{}))
}

func TestAdvance_DiscoveryToNarrowing(t *testing.T) {
	require.Equal(t, StateNarrowing, Advance(StateDiscovery, Signals{HasVehicleType: true}))
}

func TestAdvance_NarrowingToRecommendation_SpecificModel(t *testing.T) {
	require.Equal(t, StateRecommendation, Advance(StateNarrowing, Signals{HasSpecificModel: true}))
}

func TestAdvance_NarrowingToRecommendation_TypeAndBudget(t *testing.T) {
	require.Equal(t, StateRecommendation, Advance(StateNarrowing, Signals{HasVehicleType: true, HasBudget: true}))
}

func TestAdvance_NarrowingStaysOnTypeAlone(t *testing.T) {
	require.Equal(t, StateNarrowing, Advance(StateNarrowing, Signals{HasVehicleType: true}))
}

func TestAdvance_RecommendationToSchedule(t *testing.T) {
	require.Equal(t, StateSchedule, Advance(StateRecommendation, Signals{ExplicitScheduleIntent: true}))
}

func TestAdvance_ScheduleToHandoffOnConfirmation(t *testing.T) {
	require.Equal(t, StateHandoff, Advance(StateSchedule, Signals{AppointmentConfirmed: true}))
}

func TestAdvance_LegalFinanceTradeOverridesEverything(t *testing.T) {
	require.Equal(t, StateHandoff, Advance(StateGreeting, Signals{LegalOrFinanceOrTrade: true}))
	require.Equal(t, StateHandoff, Advance(StateRecommendation, Signals{LegalOrFinanceOrTrade: true}))
}

func TestAdvance_HandoffIsTerminal(t *testing.T) {
	require.Equal(t, StateHandoff, Advance(StateHandoff, Signals{HasBudget: true}))
}

func TestRetrievalAllowed(t *testing.T) {
	require.True(t, RetrievalAllowed(StateNarrowing))
	require.True(t, RetrievalAllowed(StateRecommendation))
	require.False(t, RetrievalAllowed(StateGreeting))
	require.False(t, RetrievalAllowed(StateSchedule))
}

func TestDeriveSignals(t *testing.T) {
	s := DeriveSignals(false, false, false, "let's schedule a test drive")
	require.True(t, s.ExplicitScheduleIntent)

	s2 := DeriveSignals(false, false, false, "what's your APR on financing?")
	require.True(t, s2.LegalOrFinanceOrTrade)
}
