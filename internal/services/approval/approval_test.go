package approval

import (
	"context"
	"testing"
	"time"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/repository"
	"github.com/stretchr/testify/require"
)

// fakeApprovalRepo is an in-memory ApprovalRepository for Store tests.
type fakeApprovalRepo struct {
	rows map[string]*domain.PendingApproval
}

func newFakeApprovalRepo() *fakeApprovalRepo {
	return &fakeApprovalRepo{rows: make(map[string]*domain.PendingApproval)}
}

func (f *fakeApprovalRepo) Create(ctx context.Context, a *domain.PendingApproval) error {
	f.rows[a.ID] = a
	return nil
}
func (f *fakeApprovalRepo) GetByID(ctx context.Context, id string) (*domain.PendingApproval, error) {
	a, ok := f.rows[id]
	if !ok {
		return nil, errApprovalNotFound
	}
	return a, nil
}
func (f *fakeApprovalRepo) ListPendingByUser(ctx context.Context, userID string) ([]*domain.PendingApproval, error) {
	var out []*domain.PendingApproval
	for _, a := range f.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}
func (f *fakeApprovalRepo) Update(ctx context.Context, a *domain.PendingApproval) error {
	f.rows[a.ID] = a
	return nil
}

var errApprovalNotFound = &notFoundErr{}

type notFoundErr struct{}

func (e *notFoundErr) Error() string { return "not found" }

// fakeRepoManager only implements Approvals(); other accessors are unused
// by the Store under test.
type fakeRepoManager struct {
	repository.RepositoryManager
	approvals *fakeApprovalRepo
}

func (f *fakeRepoManager) Approvals() repository.ApprovalRepository { return f.approvals }

func newStore() (*Store, *fakeRepoManager) {
	fr := &fakeRepoManager{approvals: newFakeApprovalRepo()}
	return New(fr), fr
}

func TestCreate_EnforcesAtMostOnePending(t *testing.T) {
	s, fr := newStore()
	now := time.Now()

	first, err := s.Create(context.Background(), "lead-1", "user-1", "dealer-1", "hi", "hello back", "+15551234567", now)
	require.NoError(t, err)

	second, err := s.Create(context.Background(), "lead-2", "user-1", "dealer-1", "hi again", "hello again", "+15551234567", now)
	require.NoError(t, err)

	require.Equal(t, domain.ApprovalStatusExpired, fr.approvals.rows[first.ID].Status)
	require.Equal(t, domain.ApprovalStatusPending, second.Status)
}

func TestGetPending_ReturnsOnlyLiveRows(t *testing.T) {
	s, _ := newStore()
	now := time.Now()

	_, err := s.Create(context.Background(), "lead-1", "user-1", "dealer-1", "hi", "hello", "+1", now)
	require.NoError(t, err)

	found, err := s.GetPending(context.Background(), "user-1", "dealer-1", now)
	require.NoError(t, err)
	require.NotNil(t, found)

	_, err = s.GetPending(context.Background(), "user-1", "dealer-1", now.Add(2*time.Hour))
	require.Error(t, err)
}

func TestUpdateStatus_IdempotentAfterTransition(t *testing.T) {
	s, fr := newStore()
	now := time.Now()

	a, err := s.Create(context.Background(), "lead-1", "user-1", "dealer-1", "hi", "hello", "+1", now)
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatus(context.Background(), a.ID, domain.ApprovalStatusApproved))
	require.Equal(t, domain.ApprovalStatusApproved, fr.approvals.rows[a.ID].Status)

	require.NoError(t, s.UpdateStatus(context.Background(), a.ID, domain.ApprovalStatusRejected))
	require.Equal(t, domain.ApprovalStatusApproved, fr.approvals.rows[a.ID].Status)
}

func TestExpireStale(t *testing.T) {
	s, fr := newStore()
	now := time.Now()

	a, err := s.Create(context.Background(), "lead-1", "user-1", "dealer-1", "hi", "hello", "+1", now)
	require.NoError(t, err)

	require.NoError(t, s.ExpireStale(context.Background(), "user-1", now.Add(2*time.Hour)))
	require.Equal(t, domain.ApprovalStatusExpired, fr.approvals.rows[a.ID].Status)
}
