package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsTransactional(t *testing.T) {
	require.True(t, IsTransactional("what are your hours?"))
	require.True(t, IsTransactional("what's the price on that Camry"))
	require.False(t, IsTransactional("I love this car"))
}

func TestDecide_TransactionalAlwaysInstant(t *testing.T) {
	s := Settings{Mode: ModeCustomDelay, ReplyDelaySeconds: 60}
	d := Decide("what are your hours", s, time.Now())
	require.True(t, d.Instant)
}

func TestDecide_InstantMode(t *testing.T) {
	s := Settings{Mode: ModeInstant}
	d := Decide("thanks!", s, time.Now())
	require.True(t, d.Instant)
}

func TestDecide_CustomDelayClampedWithJitter(t *testing.T) {
	s := Settings{Mode: ModeCustomDelay, ReplyDelaySeconds: 1000}
	for i := 0; i < 20; i++ {
		d := Decide("thanks!", s, time.Now())
		require.False(t, d.Instant)
		require.GreaterOrEqual(t, d.Delay, time.Duration(0))
		require.LessOrEqual(t, d.Delay, time.Duration(maxDelaySeconds+jitterSpreadSeconds)*time.Second)
	}
}

func TestDecide_BusinessHoursWithinWindow(t *testing.T) {
	s := Settings{
		Mode:                      ModeBusinessHours,
		BusinessHoursStart:        "09:00",
		BusinessHoursEnd:          "17:00",
		BusinessHoursDelaySeconds: 60,
		Timezone:                  "UTC",
	}
	now := time.Date(2026, 7, 30, 10, 30, 0, 0, time.UTC)
	d := Decide("thanks!", s, now)
	require.False(t, d.Instant)
}

func TestDecide_BusinessHoursOutsideWindowIsInstant(t *testing.T) {
	s := Settings{
		Mode:                      ModeBusinessHours,
		BusinessHoursStart:        "09:00",
		BusinessHoursEnd:          "17:00",
		BusinessHoursDelaySeconds: 60,
		Timezone:                  "UTC",
	}
	now := time.Date(2026, 7, 30, 20, 0, 0, 0, time.UTC)
	d := Decide("thanks!", s, now)
	require.True(t, d.Instant)
}

func TestDecide_BusinessHoursOvernightWrap(t *testing.T) {
	s := Settings{
		Mode:                      ModeBusinessHours,
		BusinessHoursStart:        "22:00",
		BusinessHoursEnd:          "06:00",
		BusinessHoursDelaySeconds: 30,
		Timezone:                  "UTC",
	}
	late := time.Date(2026, 7, 30, 23, 0, 0, 0, time.UTC)
	require.False(t, Decide("thanks", s, late).Instant)

	earlyMorning := time.Date(2026, 7, 30, 3, 0, 0, 0, time.UTC)
	require.False(t, Decide("thanks", s, earlyMorning).Instant)

	midday := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	require.True(t, Decide("thanks", s, midday).Instant)
}

func TestSchedule_FiresSend(t *testing.T) {
	var fired int32
	done := make(chan struct{})
	Schedule(context.Background(), 10*time.Millisecond, func(ctx context.Context) {
		atomic.StoreInt32(&fired, 1)
		close(done)
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send was not invoked")
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestSchedule_CancelSuppressesSend(t *testing.T) {
	var fired int32
	h := Schedule(context.Background(), 30*time.Millisecond, func(ctx context.Context) {
		atomic.StoreInt32(&fired, 1)
	})
	h.Cancel()
	time.Sleep(80 * time.Millisecond)
	require.Equal(t, int32(0), atomic.LoadInt32(&fired))
}
