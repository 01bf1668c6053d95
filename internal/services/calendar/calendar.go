// Package calendar implements the Calendar Service (§4.10): date/time
// phrase parsing and a Google-compatible event URL for booked test drives.
package calendar

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const eventDuration = time.Hour

// Appointment is the parsed outcome of a scheduling request.
type Appointment struct {
	When      time.Time
	EventURL  string
}

var monthDayPattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
var monthNamePattern = regexp.MustCompile(`\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+(\d{1,2})\b`)
var time12hPattern = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
var time24hPattern = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
var bareHourPattern = regexp.MustCompile(`\b(\d{1,2})\b`)

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ParseDate parses "today", "tomorrow", "next week", MM/DD, MM/DD/YYYY, and
// "Mon D" phrases, defaulting to tomorrow on failure.
func ParseDate(phrase string, now time.Time) time.Time {
	lower := strings.ToLower(strings.TrimSpace(phrase))
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case strings.Contains(lower, "today"):
		return today
	case strings.Contains(lower, "tomorrow"):
		return today.AddDate(0, 0, 1)
	case strings.Contains(lower, "next week"):
		return today.AddDate(0, 0, 7)
	}

	if m := monthDayPattern.FindStringSubmatch(lower); m != nil {
		month, errM := strconv.Atoi(m[1])
		day, errD := strconv.Atoi(m[2])
		if errM == nil && errD == nil && month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			year := now.Year()
			if m[3] != "" {
				if y, err := strconv.Atoi(m[3]); err == nil {
					if y < 100 {
						y += 2000
					}
					year = y
				}
			}
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
		}
	}

	if m := monthNamePattern.FindStringSubmatch(lower); m != nil {
		if month, ok := monthNumbers[m[1]]; ok {
			if day, err := strconv.Atoi(m[2]); err == nil {
				return time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, now.Location())
			}
		}
	}

	return today.AddDate(0, 0, 1)
}

// ParseTime parses 12-hour (am/pm, with or without minutes) and 24-hour
// HH:MM phrases, defaulting to 14:00 on failure. "2" with no suffix is
// treated as 24-hour 02:00.
func ParseTime(phrase string) (hour, minute int) {
	lower := strings.ToLower(strings.TrimSpace(phrase))

	if m := time12hPattern.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		min := 0
		if m[2] != "" {
			min, _ = strconv.Atoi(m[2])
		}
		if m[3] == "pm" && h != 12 {
			h += 12
		}
		if m[3] == "am" && h == 12 {
			h = 0
		}
		return h, min
	}

	if m := time24hPattern.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		return h, min
	}

	if m := bareHourPattern.FindStringSubmatch(lower); m != nil {
		h, err := strconv.Atoi(m[1])
		if err == nil && h >= 0 && h <= 23 {
			return h, 0
		}
	}

	return 14, 0
}

// Book parses a scheduling request and produces an Appointment with a
// Google-compatible calendar event URL.
func Book(customerName, customerPhone, vehicleText, preferredDate, preferredTime string, now time.Time) Appointment {
	date := ParseDate(preferredDate, now)
	hour, minute := ParseTime(preferredTime)
	when := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())

	title := fmt.Sprintf("Test drive: %s with %s", vehicleText, customerName)
	details := fmt.Sprintf("Customer phone: %s", customerPhone)
	eventURL := googleEventURL(title, details, when, when.Add(eventDuration))

	return Appointment{When: when, EventURL: eventURL}
}

func googleEventURL(title, details string, start, end time.Time) string {
	const layout = "20060102T150405Z"
	values := url.Values{}
	values.Set("action", "TEMPLATE")
	values.Set("text", title)
	values.Set("details", details)
	values.Set("dates", start.UTC().Format(layout)+"/"+end.UTC().Format(layout))
	return "https://calendar.google.com/calendar/render?" + values.Encode()
}
