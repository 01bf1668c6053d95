package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"gorm.io/gorm"
)

// GormInviteRepository implements InviteRepository using GORM.
type GormInviteRepository struct {
	db *gorm.DB
}

func NewGormInviteRepository(db *gorm.DB) *GormInviteRepository {
	return &GormInviteRepository{db: db}
}

func (r *GormInviteRepository) Create(ctx context.Context, inv *domain.Invite) error {
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

func (r *GormInviteRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Invite, error) {
	var inv domain.Invite
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invite not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return &inv, nil
}

func (r *GormInviteRepository) ListByDealership(ctx context.Context, dealershipID string) ([]*domain.Invite, error) {
	var all []*domain.Invite
	if err := r.db.WithContext(ctx).Where("dealership_id = ?", dealershipID).Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return all, nil
}

func (r *GormInviteRepository) Update(ctx context.Context, inv *domain.Invite) error {
	if err := r.db.WithContext(ctx).Save(inv).Error; err != nil {
		return fmt.Errorf("failed to update invite %s: %w", inv.ID, err)
	}
	return nil
}
