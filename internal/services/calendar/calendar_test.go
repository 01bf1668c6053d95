package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)

func TestParseDate_Today(t *testing.T) {
	d := ParseDate("today please", fixedNow)
	require.Equal(t, 30, d.Day())
}

func TestParseDate_Tomorrow(t *testing.T) {
	d := ParseDate("tomorrow works", fixedNow)
	require.Equal(t, 31, d.Day())
}

func TestParseDate_NextWeek(t *testing.T) {
	d := ParseDate("next week sometime", fixedNow)
	require.Equal(t, 6, d.Day())
	require.Equal(t, time.August, d.Month())
}

func TestParseDate_SlashFormat(t *testing.T) {
	d := ParseDate("how about 8/15", fixedNow)
	require.Equal(t, time.August, d.Month())
	require.Equal(t, 15, d.Day())
}

func TestParseDate_MonthName(t *testing.T) {
	d := ParseDate("let's do Aug 15", fixedNow)
	require.Equal(t, time.August, d.Month())
	require.Equal(t, 15, d.Day())
}

func TestParseDate_DefaultsToTomorrowOnFailure(t *testing.T) {
	d := ParseDate("whenever works for you", fixedNow)
	require.Equal(t, 31, d.Day())
}

func TestParseTime_TwelveHourPM(t *testing.T) {
	h, m := ParseTime("2pm")
	require.Equal(t, 14, h)
	require.Equal(t, 0, m)
}

func TestParseTime_Noon(t *testing.T) {
	h, _ := ParseTime("12pm")
	require.Equal(t, 12, h)
}

func TestParseTime_Midnight(t *testing.T) {
	h, _ := ParseTime("12am")
	require.Equal(t, 0, h)
}

func TestParseTime_BareHourIs24Hour(t *testing.T) {
	h, m := ParseTime("2")
	require.Equal(t, 2, h)
	require.Equal(t, 0, m)
}

func TestParseTime_TwentyFourHour(t *testing.T) {
	h, m := ParseTime("14:30")
	require.Equal(t, 14, h)
	require.Equal(t, 30, m)
}

func TestParseTime_DefaultsOnFailure(t *testing.T) {
	h, _ := ParseTime("whenever")
	require.Equal(t, 14, h)
}

func TestBook_ProducesEventURL(t *testing.T) {
	appt := Book("Jane Doe", "+15551234567", "2021 Camry", "tomorrow", "2pm", fixedNow)
	require.Contains(t, appt.EventURL, "calendar.google.com")
	require.Equal(t, 14, appt.When.Hour())
	require.Equal(t, 31, appt.When.Day())
}
