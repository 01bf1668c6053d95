package lock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLeadLocker_SerializesSameLead(t *testing.T) {
	t.Parallel()

	l := NewLeadLocker()
	var counter int64
	var maxConcurrent int64
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.WithLock("lead-1", func() {
				n := atomic.AddInt64(&counter, 1)
				for {
					m := atomic.LoadInt64(&maxConcurrent)
					if n <= m || atomic.CompareAndSwapInt64(&maxConcurrent, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt64(&counter, -1)
			})
		}()
	}
	wg.Wait()

	require.Equal(t, int64(1), maxConcurrent, "lead-1 operations must never overlap")
}

func TestLeadLocker_AllowsDifferentLeadsConcurrently(t *testing.T) {
	t.Parallel()

	l := NewLeadLocker()
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	var wg sync.WaitGroup

	for _, lead := range []string{"lead-a", "lead-b"} {
		lead := lead
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.WithLock(lead, func() {
				started <- struct{}{}
				<-release
			})
		}()
	}

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(time.Second):
			t.Fatal("expected both distinct leads to acquire their locks concurrently")
		}
	}
	close(release)
	wg.Wait()
}
