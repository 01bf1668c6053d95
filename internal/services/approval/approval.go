// Package approval implements the Approval Store (§4.14): pending-approval
// CRUD with status transitions and expiry.
package approval

import (
	"context"
	"time"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/apperr"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/repository"
)

// Store wraps ApprovalRepository with the invariants in §4.14/§3.
type Store struct {
	repo repository.RepositoryManager
}

// New builds a Store.
func New(repo repository.RepositoryManager) *Store {
	return &Store{repo: repo}
}

// Create enforces at-most-one pending approval per (user_id, dealership_id)
// by first expiring any existing pending row for that pair.
func (s *Store) Create(ctx context.Context, leadID, userID, dealershipID, customerMessage, generatedResponse, customerPhone string, now time.Time) (*domain.PendingApproval, error) {
	existing, err := s.GetPending(ctx, userID, dealershipID, now)
	if err == nil && existing != nil {
		existing.Status = domain.ApprovalStatusExpired
		if err := s.repo.Approvals().Update(ctx, existing); err != nil {
			return nil, apperr.Provider("failed to expire existing pending approval", err)
		}
	}

	approval := &domain.PendingApproval{
		ID:                domain.NewID(),
		LeadID:            leadID,
		UserID:            userID,
		DealershipID:      dealershipID,
		CustomerMessage:   customerMessage,
		GeneratedResponse: generatedResponse,
		CustomerPhone:     customerPhone,
		Status:            domain.ApprovalStatusPending,
		CreatedAt:         now,
		ExpiresAt:         now.Add(domain.DefaultApprovalTTL),
	}
	if err := s.repo.Approvals().Create(ctx, approval); err != nil {
		return nil, apperr.Provider("failed to create pending approval", err)
	}
	return approval, nil
}

// GetPending returns a row only if status=pending AND expires_at>now for
// the (user, dealership) pair, scoped by scanning the user's pending list.
func (s *Store) GetPending(ctx context.Context, userID, dealershipID string, now time.Time) (*domain.PendingApproval, error) {
	pending, err := s.repo.Approvals().ListPendingByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Provider("failed to list pending approvals", err)
	}
	for _, a := range pending {
		if a.DealershipID == dealershipID && a.IsLive(now) {
			return a, nil
		}
	}
	return nil, apperr.NotFound("no pending approval")
}

// UpdateStatus transitions an approval's status. Transitions are one-way
// out of pending; a transition attempted on an already-transitioned
// approval is a no-op (idempotent approve/reject/force-send).
func (s *Store) UpdateStatus(ctx context.Context, id string, status string) error {
	a, err := s.repo.Approvals().GetByID(ctx, id)
	if err != nil {
		return apperr.NotFound("approval not found: " + id)
	}
	if a.Status != domain.ApprovalStatusPending {
		return nil
	}
	a.Status = status
	if err := s.repo.Approvals().Update(ctx, a); err != nil {
		return apperr.Provider("failed to update approval status", err)
	}
	return nil
}

// ExpireStale marks all of a user's pending-but-past-expiry rows as
// expired. Expiry is not automatic; callers invoke this periodically.
func (s *Store) ExpireStale(ctx context.Context, userID string, now time.Time) error {
	pending, err := s.repo.Approvals().ListPendingByUser(ctx, userID)
	if err != nil {
		return apperr.Provider("failed to list pending approvals", err)
	}
	for _, a := range pending {
		if a.Status == domain.ApprovalStatusPending && !a.ExpiresAt.After(now) {
			a.Status = domain.ApprovalStatusExpired
			if err := s.repo.Approvals().Update(ctx, a); err != nil {
				return apperr.Provider("failed to expire stale approval", err)
			}
		}
	}
	return nil
}
