package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"gorm.io/gorm"
)

// GormApprovalRepository implements ApprovalRepository using GORM.
type GormApprovalRepository struct {
	db *gorm.DB
}

func NewGormApprovalRepository(db *gorm.DB) *GormApprovalRepository {
	return &GormApprovalRepository{db: db}
}

func (r *GormApprovalRepository) Create(ctx context.Context, a *domain.PendingApproval) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create pending approval: %w", err)
	}
	return nil
}

func (r *GormApprovalRepository) GetByID(ctx context.Context, id string) (*domain.PendingApproval, error) {
	var a domain.PendingApproval
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pending approval %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get pending approval: %w", err)
	}
	return &a, nil
}

func (r *GormApprovalRepository) ListPendingByUser(ctx context.Context, userID string) ([]*domain.PendingApproval, error) {
	var all []*domain.PendingApproval
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.ApprovalStatusPending).
		Order("created_at ASC").
		Find(&all).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}
	return all, nil
}

func (r *GormApprovalRepository) Update(ctx context.Context, a *domain.PendingApproval) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("failed to update pending approval %s: %w", a.ID, err)
	}
	return nil
}
