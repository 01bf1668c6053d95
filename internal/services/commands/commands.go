// Package commands parses a salesperson's free-text message into one of
// the tagged business-command variants named in spec §4.11 step 2. The
// REDESIGN FLAGS (§9) call out the source's "dynamic message dispatch"
// (runtime type checks on dict-shaped parses); this package replaces
// that with an exhaustive Kind enum and one struct per variant's fields,
// matched via a switch on Kind at the call site.
package commands

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/entity"
)

// Kind is the tagged variant a salesperson message parses into (§4.11, §9).
type Kind string

const (
	KindLeadCreation        Kind = "lead_creation"
	KindInventoryUpdate     Kind = "inventory_update"
	KindLeadInquiry         Kind = "lead_inquiry"
	KindInventoryInquiry    Kind = "inventory_inquiry"
	KindGeneralQuestion     Kind = "general_question"
	KindStatusUpdate        Kind = "status_update"
	KindTestDriveScheduling Kind = "test_drive_scheduling"
	KindUnknown             Kind = "unknown"
)

// sentinelUnknown is substituted for any field a lead_creation command
// fails to extract (§4.11: "defaulting missing name/phone/email/car_interest
// to sentinel unknown-like values").
const sentinelUnknown = "unknown"

// LeadCreationFields carries the extracted/default fields for a new lead.
type LeadCreationFields struct {
	Name        string
	Phone       string
	Email       string
	CarInterest string
	Incomplete  bool // true if any field fell back to the sentinel
}

// InventoryUpdateFields carries the extracted/default fields for a new
// inventory vehicle. Year defaults to 2020 and Condition to "unknown"
// when not extracted (§4.11).
type InventoryUpdateFields struct {
	Make        string
	Model       string
	Year        int
	Price       float64
	Condition   string
	Description string
	StockNumber string
}

// StatusUpdateFields carries a free-text lead identifier and the
// requested new status.
type StatusUpdateFields struct {
	LeadIdentifier string
	NewStatus      string
}

// Command is the parsed result: exactly one of the *Fields pointers is
// non-nil, matching Kind.
type Command struct {
	Kind            Kind
	RawText         string
	LeadCreation    *LeadCreationFields
	InventoryUpdate *InventoryUpdateFields
	StatusUpdate    *StatusUpdateFields
}

var (
	leadCreationTriggers    = []string{"new lead", "add lead", "create lead", "add a lead"}
	inventoryUpdateTriggers = []string{"add inventory", "new vehicle", "add car", "add a vehicle", "list a car", "add stock"}
	leadInquiryTriggers     = []string{"lead status", "status of lead", "how is lead", "check lead", "info on lead"}
	inventoryInquiryTriggers = []string{"how many", "check inventory", "do we have", "inventory count", "what's in stock", "whats in stock"}
	statusUpdateTriggers    = []string{"update status", "mark as", "change status", "set status"}
	testDriveTriggers       = []string{"schedule test drive", "book test drive", "set up test drive"}

	phonePattern = regexp.MustCompile(`(\+?1?[\s.-]?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4})`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	namePattern  = regexp.MustCompile(`(?i)name(?:\s+is|:)?\s+([A-Za-z][A-Za-z '\-]*)`)
	pricePattern = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	stockPattern = regexp.MustCompile(`(?i)stock\s*#?\s*([A-Za-z0-9\-]+)`)
)

// Parse classifies text and extracts the fields for its variant. Parsing
// never fails outright; an unrecognized message returns KindUnknown so
// the orchestrator can reply with a help message (§4.11: "on any parse
// failure respond with an error-friendly message" applies to field
// extraction within a recognized kind, not to classification itself).
func Parse(text string) Command {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, leadCreationTriggers):
		return Command{Kind: KindLeadCreation, RawText: text, LeadCreation: parseLeadCreation(text)}
	case containsAny(lower, inventoryUpdateTriggers):
		return Command{Kind: KindInventoryUpdate, RawText: text, InventoryUpdate: parseInventoryUpdate(text, lower)}
	case containsAny(lower, testDriveTriggers):
		return Command{Kind: KindTestDriveScheduling, RawText: text}
	case containsAny(lower, statusUpdateTriggers):
		return Command{Kind: KindStatusUpdate, RawText: text, StatusUpdate: parseStatusUpdate(text, lower)}
	case containsAny(lower, leadInquiryTriggers):
		return Command{Kind: KindLeadInquiry, RawText: text}
	case containsAny(lower, inventoryInquiryTriggers):
		return Command{Kind: KindInventoryInquiry, RawText: text}
	case strings.HasSuffix(strings.TrimSpace(text), "?"):
		return Command{Kind: KindGeneralQuestion, RawText: text}
	default:
		return Command{Kind: KindUnknown, RawText: text}
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

func parseLeadCreation(text string) *LeadCreationFields {
	f := &LeadCreationFields{Name: sentinelUnknown, Phone: sentinelUnknown, Email: sentinelUnknown, CarInterest: sentinelUnknown}

	if m := namePattern.FindStringSubmatch(text); m != nil {
		f.Name = strings.TrimSpace(m[1])
	}
	if m := phonePattern.FindString(text); m != "" {
		f.Phone = strings.TrimSpace(m)
	}
	if m := emailPattern.FindString(text); m != "" {
		f.Email = m
	}
	q := entity.Parse(text)
	if q.Make != "" {
		interest := q.Make
		if q.Model != "" {
			interest += " " + q.Model
		}
		f.CarInterest = interest
	}

	f.Incomplete = f.Name == sentinelUnknown || f.Phone == sentinelUnknown ||
		f.Email == sentinelUnknown || f.CarInterest == sentinelUnknown
	return f
}

func parseInventoryUpdate(text, lower string) *InventoryUpdateFields {
	f := &InventoryUpdateFields{Year: 2020, Condition: "unknown"}

	q := entity.Parse(text)
	if q.Make != "" {
		f.Make = q.Make
	}
	if q.Model != "" {
		f.Model = q.Model
	}
	if q.Year != nil {
		f.Year = *q.Year
	}
	if m := pricePattern.FindStringSubmatch(text); m != nil {
		if v, ok := parseMoney(m[1]); ok {
			f.Price = v
		}
	}
	if strings.Contains(lower, "new condition") || strings.Contains(lower, "brand new") {
		f.Condition = "new"
	} else if strings.Contains(lower, "used") || strings.Contains(lower, "pre-owned") {
		f.Condition = "used"
	}
	if m := stockPattern.FindStringSubmatch(text); m != nil {
		f.StockNumber = m[1]
	}
	f.Description = text
	return f
}

func parseStatusUpdate(text, lower string) *StatusUpdateFields {
	f := &StatusUpdateFields{}
	statuses := []string{"new", "warm", "hot", "follow-up", "cold", "appointment_booked", "deal_won", "deal_lost"}
	for _, s := range statuses {
		if strings.Contains(lower, strings.ReplaceAll(s, "_", " ")) || strings.Contains(lower, s) {
			f.NewStatus = s
			break
		}
	}
	if m := phonePattern.FindString(text); m != "" {
		f.LeadIdentifier = strings.TrimSpace(m)
	}
	return f
}

func parseMoney(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	v, err := strconv.ParseFloat(cleaned, 64)
	return v, err == nil
}
