// Package memory implements the short-term conversation memory store (§4.4):
// recent turns, extracted slots, vehicle mentions, and pronoun resolution,
// backed by Redis with an in-process fallback.
package memory

import (
	"strings"
	"time"
)

const maxTurns = 5

// Turn is a single conversational exchange kept for context.
type Turn struct {
	Role string    `json:"role"` // customer | agent
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// VehicleRef is the minimal vehicle shape needed for pronoun resolution and
// recall, independent of the full domain.Vehicle record.
type VehicleRef struct {
	ID    string  `json:"id"`
	Make  string  `json:"make"`
	Model string  `json:"model"`
	Year  int     `json:"year"`
	Price float64 `json:"price"`
}

// Appointment is a confirmed test-drive slot held in memory until the
// orchestrator persists it onto the Lead record.
type Appointment struct {
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Vehicle   string    `json:"vehicle,omitempty"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationMemory is the full in-memory state kept for one lead.
type ConversationMemory struct {
	ConversationID       string             `json:"conversation_id"`
	Slots                map[string]string  `json:"slots"`
	Turns                []Turn             `json:"turns"`
	LastInventoryMention *VehicleRef        `json:"last_inventory_mention,omitempty"`
	RecentVehicles       []VehicleRef       `json:"recent_vehicles"`
	Appointment          *Appointment       `json:"appointment,omitempty"`
}

// NewConversationMemory returns an empty memory for a conversation.
func NewConversationMemory(conversationID string) *ConversationMemory {
	return &ConversationMemory{
		ConversationID: conversationID,
		Slots:          make(map[string]string),
	}
}

// AddTurn records a turn, truncating to the most recent maxTurns.
func (m *ConversationMemory) AddTurn(role, text string, at time.Time) {
	m.Turns = append(m.Turns, Turn{Role: role, Text: text, At: at})
	if len(m.Turns) > maxTurns {
		m.Turns = m.Turns[len(m.Turns)-maxTurns:]
	}
}

// UpdateSlots merges non-empty slot values into memory.
func (m *ConversationMemory) UpdateSlots(newSlots map[string]string) {
	if m.Slots == nil {
		m.Slots = make(map[string]string)
	}
	for k, v := range newSlots {
		if v != "" {
			m.Slots[k] = v
		}
	}
}

// SetLastInventoryMention records the most recently discussed vehicle.
func (m *ConversationMemory) SetLastInventoryMention(v VehicleRef) {
	m.LastInventoryMention = &v
}

var pronounPatterns = []string{
	"that one", "the first one", "the second one", "the third one",
	"the one you mentioned", "the one with", "the one that",
	"the cheaper one", "the more expensive one", "the newer one", "the older one",
}

// ContainsPronounPattern reports whether text names an ambiguous vehicle reference.
func ContainsPronounPattern(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range pronounPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// ResolvePronoun resolves an ambiguous reference against recently mentioned
// vehicles, falling back to the last inventory mention when recentVehicles is
// empty. Index rules: first->[0], second->[1], cheaper->min price,
// newer->max year, older->min year, else->[0] (§4.4).
func (m *ConversationMemory) ResolvePronoun(phrase string, recentVehicles []VehicleRef) *VehicleRef {
	lower := strings.ToLower(phrase)
	if !ContainsPronounPattern(lower) {
		return nil
	}

	if len(recentVehicles) > 0 {
		return resolveFromRecent(lower, recentVehicles)
	}
	return m.LastInventoryMention
}

func resolveFromRecent(lower string, vehicles []VehicleRef) *VehicleRef {
	switch {
	case strings.Contains(lower, "first"):
		return &vehicles[0]
	case strings.Contains(lower, "second"):
		if len(vehicles) > 1 {
			return &vehicles[1]
		}
		return &vehicles[0]
	case strings.Contains(lower, "cheaper"):
		return cheapestVehicle(vehicles)
	case strings.Contains(lower, "newer"):
		return newestVehicle(vehicles)
	case strings.Contains(lower, "older"):
		return oldestVehicle(vehicles)
	default:
		return &vehicles[0]
	}
}

func cheapestVehicle(vehicles []VehicleRef) *VehicleRef {
	best := vehicles[0]
	for _, v := range vehicles[1:] {
		if v.Price < best.Price {
			best = v
		}
	}
	return &best
}

func newestVehicle(vehicles []VehicleRef) *VehicleRef {
	best := vehicles[0]
	for _, v := range vehicles[1:] {
		if v.Year > best.Year {
			best = v
		}
	}
	return &best
}

func oldestVehicle(vehicles []VehicleRef) *VehicleRef {
	best := vehicles[0]
	for _, v := range vehicles[1:] {
		if v.Year < best.Year {
			best = v
		}
	}
	return &best
}

// SetAppointment records a confirmed test-drive appointment.
func (m *ConversationMemory) SetAppointment(date, t, vehicle string, now time.Time) {
	m.Appointment = &Appointment{
		Date:      date,
		Time:      t,
		Vehicle:   vehicle,
		Confirmed: true,
		CreatedAt: now,
	}
}

// HasAppointment reports whether a confirmed appointment is on record.
func (m *ConversationMemory) HasAppointment() bool {
	return m.Appointment != nil && m.Appointment.Confirmed
}

// ClearOldTurns drops turns older than maxAge relative to now.
func (m *ConversationMemory) ClearOldTurns(maxAge time.Duration, now time.Time) {
	cutoff := now.Add(-maxAge)
	kept := m.Turns[:0]
	for _, t := range m.Turns {
		if t.At.After(cutoff) {
			kept = append(kept, t)
		}
	}
	m.Turns = kept
}
