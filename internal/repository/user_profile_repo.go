package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"gorm.io/gorm"
)

// GormUserProfileRepository implements UserProfileRepository using GORM.
type GormUserProfileRepository struct {
	db *gorm.DB
}

func NewGormUserProfileRepository(db *gorm.DB) *GormUserProfileRepository {
	return &GormUserProfileRepository{db: db}
}

func (r *GormUserProfileRepository) Create(ctx context.Context, u *domain.UserProfile) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("failed to create user profile: %w", err)
	}
	return nil
}

func (r *GormUserProfileRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	var u domain.UserProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user profile %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &u, nil
}

func (r *GormUserProfileRepository) GetByEmail(ctx context.Context, dealershipID, email string) (*domain.UserProfile, error) {
	var u domain.UserProfile
	err := r.db.WithContext(ctx).
		Where("dealership_id = ? AND email = ?", dealershipID, email).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user profile with email %s not found: %w", email, err)
		}
		return nil, fmt.Errorf("failed to get user profile by email: %w", err)
	}
	return &u, nil
}

func (r *GormUserProfileRepository) ListByDealership(ctx context.Context, dealershipID string) ([]*domain.UserProfile, error) {
	var all []*domain.UserProfile
	if err := r.db.WithContext(ctx).Where("dealership_id = ?", dealershipID).Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list user profiles: %w", err)
	}
	return all, nil
}

func (r *GormUserProfileRepository) Update(ctx context.Context, u *domain.UserProfile) error {
	if err := r.db.WithContext(ctx).Save(u).Error; err != nil {
		return fmt.Errorf("failed to update user profile %s: %w", u.ID, err)
	}
	return nil
}

func (r *GormUserProfileRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&domain.UserProfile{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete user profile %s: %w", id, err)
	}
	return nil
}
