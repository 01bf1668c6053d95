package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitForStatus(t *testing.T, m *Manager, id string, want Status, timeout time.Duration) Task {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if got, ok := m.Get(id); ok && (got.Status == want) {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("task %s did not reach status %s within %s", id, want, timeout)
	return Task{}
}

func TestEnqueue_RunsRegisteredHandlerToCompletion(t *testing.T) {
	m := New()
	var seen int32
	m.RegisterHandler(KindEmbeddingBuild, func(ctx context.Context, tk *Task) error {
		atomic.AddInt32(&seen, 1)
		return nil
	})

	id := m.Enqueue(context.Background(), KindEmbeddingBuild, EmbeddingBuildPayload{VehicleID: "v1"})
	final := waitForStatus(t, m, id, StatusCompleted, time.Second)
	require.Equal(t, int32(1), atomic.LoadInt32(&seen))
	require.Equal(t, 1, final.Attempts)
}

func TestEnqueue_NoHandlerFailsImmediately(t *testing.T) {
	m := New()
	id := m.Enqueue(context.Background(), KindDelayedSend, DelayedSendPayload{})
	final := waitForStatus(t, m, id, StatusFailed, time.Second)
	require.Contains(t, final.LastError, "no handler registered")
}

func TestEnqueue_RetriesOnFailureThenSucceeds(t *testing.T) {
	m := New()
	var attempts int32
	m.RegisterHandler(KindEmbeddingDelete, func(ctx context.Context, tk *Task) error {
		n := atomic.AddInt32(&attempts, 1)
		if n < 2 {
			return errors.New("transient failure")
		}
		return nil
	})

	id := m.Enqueue(context.Background(), KindEmbeddingDelete, EmbeddingBuildPayload{VehicleID: "v1"})
	final := waitForStatus(t, m, id, StatusCompleted, 5*time.Second)
	require.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	require.Equal(t, 2, final.Attempts)
}

func TestEnqueue_FailsAfterMaxAttempts(t *testing.T) {
	m := New()
	m.RegisterHandler(KindDelayedSend, func(ctx context.Context, tk *Task) error {
		return errors.New("permanent failure")
	})

	id := m.Enqueue(context.Background(), KindDelayedSend, DelayedSendPayload{To: "+15551234567"})
	final := waitForStatus(t, m, id, StatusFailed, 8*time.Second)
	require.Equal(t, maxAttempts, final.Attempts)
	require.Equal(t, "permanent failure", final.LastError)
}

func TestGC_RemovesOnlyStaleFinishedTasks(t *testing.T) {
	m := New()
	m.RegisterHandler(KindEmbeddingBuild, func(ctx context.Context, tk *Task) error { return nil })

	id := m.Enqueue(context.Background(), KindEmbeddingBuild, EmbeddingBuildPayload{VehicleID: "v1"})
	waitForStatus(t, m, id, StatusCompleted, time.Second)

	require.Equal(t, 0, m.GC(time.Now()), "a freshly completed task is not yet stale")

	removed := m.GC(time.Now().Add(25 * time.Hour))
	require.Equal(t, 1, removed)
	_, ok := m.Get(id)
	require.False(t, ok)
}

func TestStartGCLoop_StopsOnContextCancel(t *testing.T) {
	m := New()
	ctx, cancel := context.WithCancel(context.Background())
	m.StartGCLoop(ctx, 10*time.Millisecond)
	cancel()
	time.Sleep(50 * time.Millisecond)
}
