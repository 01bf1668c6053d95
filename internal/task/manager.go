// Package task implements the Background Task Manager (§4.16): a
// process-wide registry of queued work with bounded retry, grounded on
// the teacher's internal/core/task (TaskType/SessionTask shape) but
// reworked from a Redis pub/sub bus into an in-process, lock-protected
// registry since §4.16 specifies a single "process-wide task registry",
// not a distributed bus.
package task

import (
	"context"
	"sync"
	"time"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/MaqroSolutions/Dealerships-sub000/pkg/logger"
	"go.uber.org/zap"
)

// Kind identifies the unit of work a task performs (§4.16).
type Kind string

const (
	KindEmbeddingBuild  Kind = "embedding_build"
	KindEmbeddingDelete Kind = "embedding_delete"
	KindDelayedSend     Kind = "delayed_send"
)

// Status is a task's lifecycle state: queued -> running -> {completed, retrying, failed}.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusRetrying  Status = "retrying"
	StatusFailed    Status = "failed"
)

const (
	maxAttempts      = 3
	retryDelay       = 2 * time.Second
	gcAge            = 24 * time.Hour
	maxEmbedWorkers  = 4 // fixed small pool protecting the embedding provider (§5)
)

// EmbeddingBuildPayload is the payload for KindEmbeddingBuild/KindEmbeddingDelete.
type EmbeddingBuildPayload struct {
	DealershipID string
	VehicleID    string
}

// DelayedSendPayload is the payload for KindDelayedSend: a provider send
// that failed and is being retried through the queue's retry/backoff
// bookkeeping rather than the Reply Scheduler's in-process timer (§2.16).
type DelayedSendPayload struct {
	Provider string // "sms" | "chat", keys into the Sender registry
	From     string
	To       string
	Text     string
}

// Task is one unit of enqueued work and its retry bookkeeping.
type Task struct {
	ID         string
	Kind       Kind
	Payload    interface{}
	Status     Status
	Attempts   int
	LastError  string
	CreatedAt  time.Time
	FinishedAt time.Time
}

// Handler executes one task attempt. A returned error is retried up to
// maxAttempts before the task is marked failed.
type Handler func(ctx context.Context, t *Task) error

// Manager is the process-wide task registry (§4.16, §5 "lock-protected map").
type Manager struct {
	mu       sync.Mutex
	tasks    map[string]*Task
	handlers map[Kind]Handler
	embedSem chan struct{} // bounds concurrent embedding builds
}

// New builds an empty Manager. Register handlers with RegisterHandler
// before calling Enqueue.
func New() *Manager {
	return &Manager{
		tasks:    make(map[string]*Task),
		handlers: make(map[Kind]Handler),
		embedSem: make(chan struct{}, maxEmbedWorkers),
	}
}

// RegisterHandler binds a Kind to the function that executes it.
func (m *Manager) RegisterHandler(kind Kind, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[kind] = h
}

// Enqueue records a new queued task and runs it in the background,
// returning the task id immediately.
func (m *Manager) Enqueue(ctx context.Context, kind Kind, payload interface{}) string {
	t := &Task{
		ID:        domain.NewID(),
		Kind:      kind,
		Payload:   payload,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.tasks[t.ID] = t
	m.mu.Unlock()

	go m.run(ctx, t)
	return t.ID
}

// Get returns a snapshot of a task's current state.
func (m *Manager) Get(id string) (Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

func (m *Manager) run(ctx context.Context, t *Task) {
	if t.Kind == KindEmbeddingBuild || t.Kind == KindEmbeddingDelete {
		m.embedSem <- struct{}{}
		defer func() { <-m.embedSem }()
	}

	m.mu.Lock()
	handler, ok := m.handlers[t.Kind]
	m.mu.Unlock()
	if !ok {
		m.finish(t, StatusFailed, "no handler registered for task kind")
		return
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		m.setStatus(t, StatusRunning)
		t.Attempts = attempt

		err := handler(ctx, t)
		if err == nil {
			m.finish(t, StatusCompleted, "")
			return
		}

		logger.Base().Warn("background task attempt failed",
			zap.String("task_id", t.ID), zap.String("kind", string(t.Kind)),
			zap.Int("attempt", attempt), zap.Error(err))

		if attempt == maxAttempts {
			m.finish(t, StatusFailed, err.Error())
			return
		}
		m.setLastError(t, err.Error(), StatusRetrying)
		time.Sleep(retryDelay)
	}
}

func (m *Manager) setStatus(t *Task, s Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.Status = s
}

func (m *Manager) setLastError(t *Task, msg string, s Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.LastError = msg
	t.Status = s
}

func (m *Manager) finish(t *Task, s Status, lastError string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.Status = s
	t.LastError = lastError
	t.FinishedAt = time.Now()
}

// GC removes completed/failed tasks older than gcAge, following §4.16's
// 24h garbage-collection rule. Callers invoke this periodically.
func (m *Manager) GC(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, t := range m.tasks {
		if t.Status != StatusCompleted && t.Status != StatusFailed {
			continue
		}
		if now.Sub(t.FinishedAt) > gcAge {
			delete(m.tasks, id)
			removed++
		}
	}
	return removed
}

// StartGCLoop runs GC on a fixed interval until ctx is cancelled.
func (m *Manager) StartGCLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := m.GC(now); n > 0 {
					logger.Base().Info("background task gc", zap.Int("removed", n))
				}
			}
		}
	}()
}
