// Package handoff implements the Handoff Router (§4.8): trigger-keyword
// classification of whether and why a conversation should transfer to a
// human salesperson, grounded on original_source's handoff_router.py.
package handoff

import (
	"regexp"
	"strings"
)

// Reason is one of the canned handoff categories (§4.8).
type Reason string

const (
	ReasonFinancing               Reason = "financing"
	ReasonTradeIn                 Reason = "trade_in"
	ReasonPricing                 Reason = "pricing"
	ReasonAppointmentScheduled    Reason = "appointment_scheduled"
	ReasonTestDriveScheduling     Reason = "test_drive_scheduling"
	ReasonTestDriveTimeConfirmed  Reason = "test_drive_time_confirmed"
	ReasonLegalCompliance         Reason = "legal_compliance"
	ReasonMediaRequests           Reason = "media_requests"
	ReasonUncertainty             Reason = "uncertainty"
	ReasonOutOfScope              Reason = "out_of_scope"
)

// Decision is the router's output for one message.
type Decision struct {
	ShouldHandoff bool
	Reason        Reason
	Reasoning     string
}

// category is a declaration-ordered trigger set, evaluated in order after
// the appointment/test-drive-time special cases.
type category struct {
	reason   Reason
	keywords []string
}

var categories = []category{
	{ReasonFinancing, []string{"financing", "apr", "interest rate", "loan", "monthly payment", "credit score", "down payment"}},
	{ReasonTradeIn, []string{"trade in", "trade-in", "trade my"}},
	{ReasonPricing, []string{"best price", "lowest price", "discount", "negotiate", "out the door price", "otd price"}},
	{ReasonLegalCompliance, []string{"legal", "policy", "terms and conditions", "warranty dispute", "lemon law"}},
	{ReasonMediaRequests, []string{"send me a video", "send a photo", "can you send pictures", "text me pictures"}},
	{ReasonUncertainty, []string{"i'm not sure", "i don't understand", "confused", "not sure what you mean"}},
	{ReasonOutOfScope, []string{"speak to a human", "talk to a person", "real person", "manager"}},
}

var appointmentTimeQueryPattern = regexp.MustCompile(`what\s+time.*appointment|when.*my\s+appointment`)
var newTestDriveRequestPattern = regexp.MustCompile(`test\s+drive|come\s+(in|by)\s+for`)
var explicitTimePattern = regexp.MustCompile(`\b([0-9]{1,2})\s*(am|pm)\b|\btomorrow\s+at\s+[0-9]{1,2}|\bmonday|\btuesday|\bwednesday|\bthursday|\bfriday|\bsaturday|\bsunday`)
var appointmentScheduledReplyPattern = regexp.MustCompile(`appointment.*(confirmed|booked|scheduled)|see you (at|on)`)

// Route decides whether to hand off, per §4.8's evaluation order:
// (1) existing appointment + time question -> no handoff; new test-drive
// request -> handoff test_drive_scheduling. (2) explicit time tokens ->
// test_drive_time_confirmed. (3) declaration-ordered categories. (4) a
// scheduled-appointment phrase in the generated reply -> appointment_scheduled.
func Route(userText, generatedReply string, hasAppointment bool) Decision {
	lowerUser := strings.ToLower(userText)
	lowerReply := strings.ToLower(generatedReply)

	if hasAppointment {
		if appointmentTimeQueryPattern.MatchString(lowerUser) && !newTestDriveRequestPattern.MatchString(lowerUser) {
			return Decision{ShouldHandoff: false, Reasoning: "existing appointment time query, no handoff"}
		}
		if newTestDriveRequestPattern.MatchString(lowerUser) {
			return Decision{ShouldHandoff: true, Reason: ReasonTestDriveScheduling, Reasoning: "new test drive requested despite existing appointment"}
		}
	}

	if explicitTimePattern.MatchString(lowerUser) {
		return Decision{ShouldHandoff: true, Reason: ReasonTestDriveTimeConfirmed, Reasoning: "explicit time token detected"}
	}

	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(lowerUser, kw) {
				return Decision{ShouldHandoff: true, Reason: c.reason, Reasoning: "matched keyword: " + kw}
			}
		}
	}

	if appointmentScheduledReplyPattern.MatchString(lowerReply) {
		return Decision{ShouldHandoff: true, Reason: ReasonAppointmentScheduled, Reasoning: "generated reply confirms an appointment"}
	}

	return Decision{ShouldHandoff: false, Reasoning: "no trigger matched"}
}

// CannedMessage returns the canned handoff message for a reason.
func CannedMessage(reason Reason) string {
	switch reason {
	case ReasonFinancing:
		return "Great question about financing! Let me connect you with one of our finance specialists who can walk you through the options."
	case ReasonTradeIn:
		return "I'd love to help with your trade-in. Let me get one of our team members to give you an accurate value."
	case ReasonPricing:
		return "For our best pricing, let me connect you with a member of our sales team."
	case ReasonAppointmentScheduled:
		return "You're all set! A member of our team will follow up to confirm the details."
	case ReasonTestDriveScheduling:
		return "I'd love to get you behind the wheel! Let me have someone from our team reach out to set up your test drive."
	case ReasonTestDriveTimeConfirmed:
		return "Got it! Let me connect you with our team to lock in that time."
	case ReasonLegalCompliance:
		return "That's a great question for our team to address directly. Connecting you now."
	case ReasonMediaRequests:
		return "Let me have one of our team members send that right over to you."
	case ReasonUncertainty:
		return "Let me connect you with one of our team members so they can help clarify."
	case ReasonOutOfScope:
		return "Of course, connecting you with a member of our team now."
	default:
		return "Let me connect you with a member of our team."
	}
}
