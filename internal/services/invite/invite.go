// Package invite implements the staff invite flow named in SPEC_FULL.md's
// SUPPLEMENTED FEATURES (§4.15, §3's salted-token-hash invariant),
// grounded on original_source's invites.py create/verify/complete/cancel
// lifecycle.
package invite

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/apperr"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/repository"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/services/roles"
)

// Service manages the invite lifecycle: pending -> {accepted, expired, cancelled}.
type Service struct {
	repo repository.RepositoryManager
}

// New builds a Service.
func New(repo repository.RepositoryManager) *Service {
	return &Service{repo: repo}
}

// tokenHash salts the raw token with the dealership id before hashing, so
// a leaked hash from one tenant's invite table cannot be replayed against
// another tenant even if two invites happen to mint the same raw token.
func tokenHash(dealershipID, rawToken string) string {
	sum := sha256.Sum256([]byte(dealershipID + ":" + rawToken))
	return hex.EncodeToString(sum[:])
}

func generateRawToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Create mints a new invite for email at role within dealershipID. Only a
// manager or owner may invite staff (§4.13). Returns the raw token, which
// is never persisted or retrievable again after this call.
func (s *Service) Create(ctx context.Context, dealershipID, email, role, invitedBy string, actor roles.Role, now time.Time) (*domain.Invite, string, error) {
	if !actor.AtLeast(roles.Manager) {
		return nil, "", apperr.Auth("manager or owner role required to invite staff")
	}
	if roles.Level(roles.Role(role)) == 0 {
		return nil, "", apperr.Input("unknown role: " + role)
	}

	rawToken, err := generateRawToken()
	if err != nil {
		return nil, "", apperr.Fatal("failed to generate invite token", err)
	}

	inv := &domain.Invite{
		ID:           domain.NewID(),
		DealershipID: dealershipID,
		Email:        email,
		TokenHash:    tokenHash(dealershipID, rawToken),
		Role:         role,
		InvitedBy:    invitedBy,
		CreatedAt:    now,
		ExpiresAt:    now.Add(domain.DefaultInviteTTL),
		Status:       domain.InviteStatusPending,
	}
	if err := s.repo.Invites().Create(ctx, inv); err != nil {
		return nil, "", apperr.Provider("failed to create invite", err)
	}
	return inv, rawToken, nil
}

// Verify reports whether rawToken (scoped to dealershipID) resolves to a
// still-live pending invite, without consuming it.
func (s *Service) Verify(ctx context.Context, dealershipID, rawToken string, now time.Time) (*domain.Invite, error) {
	inv, err := s.repo.Invites().GetByTokenHash(ctx, tokenHash(dealershipID, rawToken))
	if err != nil {
		return nil, apperr.NotFound("invite not found")
	}
	if inv.Status != domain.InviteStatusPending {
		return nil, apperr.Conflict("invite is no longer pending")
	}
	if !inv.ExpiresAt.After(now) {
		return nil, apperr.Conflict("invite has expired")
	}
	return inv, nil
}

// Complete consumes a pending invite, creating the invited UserProfile and
// marking the invite accepted.
func (s *Service) Complete(ctx context.Context, dealershipID, rawToken, fullName, userID string, now time.Time) (*domain.UserProfile, error) {
	inv, err := s.Verify(ctx, dealershipID, rawToken, now)
	if err != nil {
		return nil, err
	}

	profile := &domain.UserProfile{
		ID:           domain.NewID(),
		UserID:       userID,
		DealershipID: inv.DealershipID,
		FullName:     fullName,
		Email:        inv.Email,
		Role:         inv.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.UserProfiles().Create(ctx, profile); err != nil {
		return nil, apperr.Provider("failed to create invited user profile", err)
	}

	inv.Status = domain.InviteStatusAccepted
	inv.UsedAt = &now
	if err := s.repo.Invites().Update(ctx, inv); err != nil {
		return nil, apperr.Provider("failed to mark invite accepted", err)
	}
	return profile, nil
}

// Cancel revokes a pending invite before it is accepted. InviteRepository
// has no by-id lookup (its only keyed read is by token hash, since that is
// all the verify/complete path ever needs), so cancellation scans the
// dealership's invite list the same way the orchestrator scans staff
// profiles by phone rather than adding a single-purpose accessor.
func (s *Service) Cancel(ctx context.Context, dealershipID, inviteID string, actor roles.Role) error {
	if !actor.AtLeast(roles.Manager) {
		return apperr.Auth("manager or owner role required to cancel invites")
	}
	invites, err := s.repo.Invites().ListByDealership(ctx, dealershipID)
	if err != nil {
		return apperr.Provider("failed to list invites", err)
	}
	for _, inv := range invites {
		if inv.ID == inviteID {
			if inv.Status != domain.InviteStatusPending {
				return apperr.Conflict("invite is no longer pending")
			}
			inv.Status = domain.InviteStatusCancelled
			if err := s.repo.Invites().Update(ctx, inv); err != nil {
				return apperr.Provider("failed to cancel invite", err)
			}
			return nil
		}
	}
	return apperr.NotFound("invite not found: " + inviteID)
}

// List returns every invite for a dealership, for the Control API's
// invite-listing endpoint.
func (s *Service) List(ctx context.Context, dealershipID string) ([]*domain.Invite, error) {
	invites, err := s.repo.Invites().ListByDealership(ctx, dealershipID)
	if err != nil {
		return nil, apperr.Provider("failed to list invites", err)
	}
	return invites, nil
}
