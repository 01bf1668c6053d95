// Package statemachine advances the conversation state machine (§4.5):
// GREETING -> DISCOVERY -> NARROWING -> RECOMMENDATION -> SCHEDULE -> HANDOFF.
package statemachine

import "strings"

// State is one of the six conversation stages.
type State string

const (
	StateGreeting       State = "GREETING"
	StateDiscovery      State = "DISCOVERY"
	StateNarrowing      State = "NARROWING"
	StateRecommendation State = "RECOMMENDATION"
	StateSchedule       State = "SCHEDULE"
	StateHandoff        State = "HANDOFF"
)

// Signals are the derived booleans driving transitions, computed from slots
// and the last five turn texts.
type Signals struct {
	HasBudget              bool
	HasSpecificModel       bool
	HasVehicleType         bool
	ExplicitScheduleIntent bool
	AppointmentConfirmed   bool
	LegalOrFinanceOrTrade  bool
}

var scheduleIntentPhrases = []string{"test drive", "come by"}
var appointmentConfirmedPhrases = []string{"see you at", "confirmed", "booked"}
var legalFinanceTradePhrases = []string{
	"financing", "apr", "credit", "monthly payment", "trade-in", "trade in",
	"legal", "policy", "terms",
}

// DeriveSignals inspects slot state and recent turn text for the boolean
// inputs the transition table reads.
func DeriveSignals(hasBudget, hasSpecificModel, hasVehicleType bool, recentText string) Signals {
	lower := strings.ToLower(recentText)
	return Signals{
		HasBudget:              hasBudget,
		HasSpecificModel:       hasSpecificModel,
		HasVehicleType:         hasVehicleType,
		ExplicitScheduleIntent: containsAny(lower, scheduleIntentPhrases),
		AppointmentConfirmed:   containsAny(lower, appointmentConfirmedPhrases),
		LegalOrFinanceOrTrade:  containsAny(lower, legalFinanceTradePhrases),
	}
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func anySignal(s Signals) bool {
	return s.HasBudget || s.HasSpecificModel || s.HasVehicleType ||
		s.ExplicitScheduleIntent || s.AppointmentConfirmed || s.LegalOrFinanceOrTrade
}

// Advance applies the deterministic transition table to one inbound
// message. Transitions never regress except via the global HANDOFF trigger.
func Advance(current State, s Signals) State {
	if s.LegalOrFinanceOrTrade {
		return StateHandoff
	}

	switch current {
	case StateGreeting:
		if anySignal(s) {
			return StateDiscovery
		}
		return StateGreeting
	case StateDiscovery:
		if s.HasSpecificModel || s.HasVehicleType || s.HasBudget {
			return StateNarrowing
		}
		return StateDiscovery
	case StateNarrowing:
		if s.HasSpecificModel || (s.HasVehicleType && s.HasBudget) {
			return StateRecommendation
		}
		return StateNarrowing
	case StateRecommendation:
		if s.ExplicitScheduleIntent {
			return StateSchedule
		}
		return StateRecommendation
	case StateSchedule:
		if s.AppointmentConfirmed {
			return StateHandoff
		}
		return StateSchedule
	case StateHandoff:
		return StateHandoff
	default:
		return StateGreeting
	}
}

// RetrievalAllowed reports whether the Vehicle Retriever may be invoked in
// the given state (§4.5: gated to NARROWING and RECOMMENDATION only).
func RetrievalAllowed(s State) bool {
	return s == StateNarrowing || s == StateRecommendation
}
