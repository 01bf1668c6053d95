package invite

import (
	"context"
	"testing"
	"time"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/repository"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/roles"
	"github.com/stretchr/testify/require"
)

// fakeInviteRepo is an in-memory InviteRepository for Service tests.
type fakeInviteRepo struct {
	byHash map[string]*domain.Invite
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{byHash: make(map[string]*domain.Invite)}
}

func (f *fakeInviteRepo) Create(ctx context.Context, inv *domain.Invite) error {
	f.byHash[inv.TokenHash] = inv
	return nil
}
func (f *fakeInviteRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Invite, error) {
	inv, ok := f.byHash[tokenHash]
	if !ok {
		return nil, errNotFound
	}
	return inv, nil
}
func (f *fakeInviteRepo) ListByDealership(ctx context.Context, dealershipID string) ([]*domain.Invite, error) {
	var out []*domain.Invite
	for _, inv := range f.byHash {
		if inv.DealershipID == dealershipID {
			out = append(out, inv)
		}
	}
	return out, nil
}
func (f *fakeInviteRepo) Update(ctx context.Context, inv *domain.Invite) error {
	f.byHash[inv.TokenHash] = inv
	return nil
}

var errNotFound = &notFoundErr{}

type notFoundErr struct{}

func (e *notFoundErr) Error() string { return "not found" }

// fakeUserProfileRepo records the profiles Complete creates.
type fakeUserProfileRepo struct {
	repository.UserProfileRepository
	created []*domain.UserProfile
}

func (f *fakeUserProfileRepo) Create(ctx context.Context, u *domain.UserProfile) error {
	f.created = append(f.created, u)
	return nil
}

// fakeRepoManager only implements Invites() and UserProfiles(); other
// accessors are unused by the Service under test.
type fakeRepoManager struct {
	repository.RepositoryManager
	invites      *fakeInviteRepo
	userProfiles *fakeUserProfileRepo
}

func (f *fakeRepoManager) Invites() repository.InviteRepository           { return f.invites }
func (f *fakeRepoManager) UserProfiles() repository.UserProfileRepository { return f.userProfiles }

func newService() (*Service, *fakeRepoManager) {
	fr := &fakeRepoManager{invites: newFakeInviteRepo(), userProfiles: &fakeUserProfileRepo{}}
	return New(fr), fr
}

func TestCreate_RequiresManagerRole(t *testing.T) {
	s, _ := newService()
	_, _, err := s.Create(context.Background(), "dealer-1", "new@hire.com", string(roles.Salesperson), "user-1", roles.Salesperson, time.Now())
	require.Error(t, err)
}

func TestCreate_RejectsUnknownRole(t *testing.T) {
	s, _ := newService()
	_, _, err := s.Create(context.Background(), "dealer-1", "new@hire.com", "astronaut", "user-1", roles.Manager, time.Now())
	require.Error(t, err)
}

func TestCreate_ReturnsRawTokenOnceAndPersistsOnlyItsHash(t *testing.T) {
	s, fr := newService()
	now := time.Now()

	inv, rawToken, err := s.Create(context.Background(), "dealer-1", "new@hire.com", string(roles.Salesperson), "user-1", roles.Manager, now)
	require.NoError(t, err)
	require.NotEmpty(t, rawToken)
	require.NotEqual(t, rawToken, inv.TokenHash)
	require.Equal(t, tokenHash("dealer-1", rawToken), inv.TokenHash)

	stored, err := fr.invites.GetByTokenHash(context.Background(), inv.TokenHash)
	require.NoError(t, err)
	require.Equal(t, domain.InviteStatusPending, stored.Status)
}

func TestVerify_RejectsWrongDealershipScope(t *testing.T) {
	s, _ := newService()
	now := time.Now()

	_, rawToken, err := s.Create(context.Background(), "dealer-1", "new@hire.com", string(roles.Salesperson), "user-1", roles.Manager, now)
	require.NoError(t, err)

	_, err = s.Verify(context.Background(), "dealer-2", rawToken, now)
	require.Error(t, err)
}

func TestVerify_RejectsExpiredInvite(t *testing.T) {
	s, _ := newService()
	now := time.Now()

	_, rawToken, err := s.Create(context.Background(), "dealer-1", "new@hire.com", string(roles.Salesperson), "user-1", roles.Manager, now)
	require.NoError(t, err)

	_, err = s.Verify(context.Background(), "dealer-1", rawToken, now.Add(domain.DefaultInviteTTL+time.Hour))
	require.Error(t, err)
}

func TestComplete_CreatesProfileAndMarksAccepted(t *testing.T) {
	s, fr := newService()
	now := time.Now()

	inv, rawToken, err := s.Create(context.Background(), "dealer-1", "new@hire.com", string(roles.Salesperson), "user-1", roles.Manager, now)
	require.NoError(t, err)

	profile, err := s.Complete(context.Background(), "dealer-1", rawToken, "New Hire", "user-2", now)
	require.NoError(t, err)
	require.Equal(t, "dealer-1", profile.DealershipID)
	require.Equal(t, string(roles.Salesperson), profile.Role)
	require.Len(t, fr.userProfiles.created, 1)

	stored, err := fr.invites.GetByTokenHash(context.Background(), inv.TokenHash)
	require.NoError(t, err)
	require.Equal(t, domain.InviteStatusAccepted, stored.Status)

	_, err = s.Verify(context.Background(), "dealer-1", rawToken, now)
	require.Error(t, err, "an accepted invite is no longer pending")
}

func TestCancel_RequiresManagerRole(t *testing.T) {
	s, _ := newService()
	now := time.Now()

	inv, _, err := s.Create(context.Background(), "dealer-1", "new@hire.com", string(roles.Salesperson), "user-1", roles.Manager, now)
	require.NoError(t, err)

	err = s.Cancel(context.Background(), "dealer-1", inv.ID, roles.Salesperson)
	require.Error(t, err)
}

func TestCancel_MarksPendingInviteCancelled(t *testing.T) {
	s, fr := newService()
	now := time.Now()

	inv, _, err := s.Create(context.Background(), "dealer-1", "new@hire.com", string(roles.Salesperson), "user-1", roles.Manager, now)
	require.NoError(t, err)

	require.NoError(t, s.Cancel(context.Background(), "dealer-1", inv.ID, roles.Manager))
	require.Equal(t, domain.InviteStatusCancelled, fr.invites.byHash[inv.TokenHash].Status)

	err = s.Cancel(context.Background(), "dealer-1", inv.ID, roles.Manager)
	require.Error(t, err, "cancelling an already-cancelled invite is a conflict")
}

func TestList_ScopesToDealership(t *testing.T) {
	s, _ := newService()
	now := time.Now()

	_, _, err := s.Create(context.Background(), "dealer-1", "a@x.com", string(roles.Salesperson), "user-1", roles.Manager, now)
	require.NoError(t, err)
	_, _, err = s.Create(context.Background(), "dealer-2", "b@x.com", string(roles.Salesperson), "user-1", roles.Manager, now)
	require.NoError(t, err)

	invites, err := s.List(context.Background(), "dealer-1")
	require.NoError(t, err)
	require.Len(t, invites, 1)
	require.Equal(t, "a@x.com", invites[0].Email)
}
