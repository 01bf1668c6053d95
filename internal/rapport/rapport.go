// Package rapport supplies small-talk phrase variations for greeting,
// acknowledgment, and scheduling turns, grounded on original_source's
// maqro_rag/rapport.py RapportLibrary. The orchestrator (§4.11) uses it
// for the test-drive scheduling question and the appointment confirmation;
// greeting turns are answered by the Prompt Builder, not from this package.
package rapport

import "math/rand"

// Category is one of the templated phrase buckets.
type Category string

const (
	Greeting                Category = "greeting"
	Acknowledgment          Category = "acknowledgment"
	Discovery               Category = "discovery"
	Recommendation          Category = "recommendation"
	SchedulePrompt          Category = "schedule_prompt"
	AppointmentConfirmation Category = "appointment_confirmation"
	AppointmentReminder     Category = "appointment_reminder"
	AppointmentInfo         Category = "appointment_info"
	LightResponse           Category = "light_response"
)

var library = map[Category][]string{
	Greeting: {
		"Hey! How's your day going?",
		"Hi there! What brings you in today?",
		"Hey! I'm doing well. Was there a car you were interested in?",
		"Hi! Happy to help, what can I do for you?",
	},
	Acknowledgment: {
		"Sure thing.", "Absolutely.", "Got it.", "That's a great choice.",
		"Perfect.", "Sounds good.", "Makes sense.",
	},
	Discovery: {
		"What matters most in your next car?",
		"Are you looking for something practical or sporty?",
		"What's most important to you, fuel economy, space, or features?",
		"Do you need room for family or mostly solo commutes?",
	},
	Recommendation: {
		"We've got a couple in that range.",
		"I've got a few options that might work.",
		"Let me show you what we have.",
		"Here are a couple that could be a good fit.",
	},
	SchedulePrompt: {
		"Want me to check availability for a test drive?",
		"Would you like to set up a time to see it in person?",
		"Want to swing by and take a look?",
		"Should I check what times work for a test drive?",
	},
	AppointmentConfirmation: {
		"Got it, you're locked in for %s.",
		"Perfect! I'll make sure the car's ready for you at %s.",
		"You're all set for %s. Looking forward to it!",
		"Great! I'll have everything ready for your %s appointment.",
	},
	AppointmentReminder: {
		"Do you want me to send a quick reminder tomorrow morning?",
		"I can shoot you a text reminder if you'd like.",
		"Want me to give you a heads up before your appointment?",
	},
	AppointmentInfo: {
		"You're set for %s.",
		"Your appointment is at %s.",
		"You're locked in for %s.",
		"I have you down for %s.",
	},
	LightResponse: {
		"Of course, happy to help!",
		"No problem at all!",
		"Glad I could help!",
		"You're welcome!",
		"Anytime!",
	},
}

// Library samples rapport phrases deterministically per-instance (seeded),
// mirroring the original's random.Random(seed) instance-level determinism
// rather than a single process-global RNG.
type Library struct {
	rng *rand.Rand
}

// New builds a Library seeded for reproducible phrase selection in tests.
func New(seed int64) *Library {
	return &Library{rng: rand.New(rand.NewSource(seed))}
}

// Sample returns a random phrase from category, or "" if the category is
// unknown or empty.
func (l *Library) Sample(category Category) string {
	choices := library[category]
	if len(choices) == 0 {
		return ""
	}
	return choices[l.rng.Intn(len(choices))]
}

// AppointmentConfirmationFor formats a confirmation phrase with a time string.
func (l *Library) AppointmentConfirmationFor(timeText string) string {
	return sprintfTemplate(l.Sample(AppointmentConfirmation), timeText)
}

// AppointmentInfoFor formats an appointment-status phrase with a time string.
func (l *Library) AppointmentInfoFor(timeText string) string {
	return sprintfTemplate(l.Sample(AppointmentInfo), timeText)
}

func sprintfTemplate(template, timeText string) string {
	if template == "" {
		return timeText
	}
	out := make([]byte, 0, len(template)+len(timeText))
	for i := 0; i < len(template); i++ {
		if i+1 < len(template) && template[i] == '%' && template[i+1] == 's' {
			out = append(out, timeText...)
			i++
			continue
		}
		out = append(out, template[i])
	}
	return string(out)
}
