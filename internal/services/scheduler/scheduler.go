// Package scheduler implements the Reply Scheduler (§4.9): decides instant
// vs. delayed delivery from dealership timing settings, and owns
// cancellable timer handles for delayed sends, grounded on
// original_source's reply_scheduler.py.
package scheduler

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MaqroSolutions/Dealerships-sub000/pkg/logger"
)

// Mode is the dealership's configured reply-timing mode.
type Mode string

const (
	ModeInstant       Mode = "instant"
	ModeCustomDelay   Mode = "custom_delay"
	ModeBusinessHours Mode = "business_hours"
)

const maxDelaySeconds = 300
const jitterSpreadSeconds = 15

var transactionalKeywords = []string{
	"hours", "stock", "price", "address", "phone", "location", "open",
	"closed", "directions",
}

// Settings bundles the dealership reply-timing configuration §4.9 reads.
type Settings struct {
	Mode                      Mode
	ReplyDelaySeconds         int
	BusinessHoursStart        string // HH:MM
	BusinessHoursEnd          string // HH:MM
	BusinessHoursDelaySeconds int
	Timezone                  string
}

// Decision is the scheduler's output for one message.
type Decision struct {
	Instant bool
	Delay   time.Duration
}

// IsTransactional reports whether text matches the closed keyword set that
// always forces instant delivery regardless of mode.
func IsTransactional(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range transactionalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Decide computes delivery timing for a message, given the dealership's
// settings and the current instant in the dealership's timezone.
func Decide(text string, s Settings, now time.Time) Decision {
	if IsTransactional(text) {
		return Decision{Instant: true}
	}

	switch s.Mode {
	case ModeCustomDelay:
		return Decision{Delay: clampedDelay(s.ReplyDelaySeconds)}
	case ModeBusinessHours:
		loc := loadLocation(s.Timezone)
		local := now.In(loc)
		if withinBusinessHours(local, s.BusinessHoursStart, s.BusinessHoursEnd) {
			return Decision{Delay: clampedDelay(s.BusinessHoursDelaySeconds)}
		}
		return Decision{Instant: true}
	default:
		return Decision{Instant: true}
	}
}

func clampedDelay(seconds int) time.Duration {
	clamped := seconds
	if clamped < 0 {
		clamped = 0
	}
	if clamped > maxDelaySeconds {
		clamped = maxDelaySeconds
	}
	jitter := rand.Intn(2*jitterSpreadSeconds+1) - jitterSpreadSeconds
	total := clamped + jitter
	if total < 0 {
		total = 0
	}
	return time.Duration(total) * time.Second
}

func loadLocation(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// withinBusinessHours reports whether local falls in [start, end), with
// overnight wrap when start > end.
func withinBusinessHours(local time.Time, start, end string) bool {
	startMinutes, ok1 := parseHHMM(start)
	endMinutes, ok2 := parseHHMM(end)
	if !ok1 || !ok2 {
		return false
	}
	nowMinutes := local.Hour()*60 + local.Minute()

	if startMinutes <= endMinutes {
		return nowMinutes >= startMinutes && nowMinutes < endMinutes
	}
	// overnight wrap: start > end
	return nowMinutes >= startMinutes || nowMinutes < endMinutes
}

func parseHHMM(hhmm string) (int, bool) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return h*60 + m, true
}

// Handle is a cancellable delayed-send timer owned by the scheduler.
type Handle struct {
	mu        sync.Mutex
	cancelled bool
	timer     *time.Timer
}

// Schedule enqueues a cooperative delayed send: it sleeps for delay, then
// invokes send unless Cancel was called first. Cancellation before fire
// time suppresses the send silently (§4.9, §5).
func Schedule(ctx context.Context, delay time.Duration, send func(ctx context.Context)) *Handle {
	h := &Handle{}
	h.timer = time.AfterFunc(delay, func() {
		h.mu.Lock()
		cancelled := h.cancelled
		h.mu.Unlock()
		if cancelled {
			return
		}
		select {
		case <-ctx.Done():
			logger.Base().Info("delayed send skipped: context cancelled")
			return
		default:
		}
		send(ctx)
	})
	return h
}

// Cancel suppresses the pending send if it has not already fired.
func (h *Handle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancelled = true
	h.timer.Stop()
}
