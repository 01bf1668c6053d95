package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"gorm.io/gorm"
)

// GormLeadRepository implements LeadRepository using GORM.
type GormLeadRepository struct {
	db *gorm.DB
}

func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

func (r *GormLeadRepository) Create(ctx context.Context, l *domain.Lead) error {
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

func (r *GormLeadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	var l domain.Lead
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lead %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &l, nil
}

func (r *GormLeadRepository) GetByPhone(ctx context.Context, dealershipID, phone string) (*domain.Lead, error) {
	var l domain.Lead
	err := r.db.WithContext(ctx).
		Where("dealership_id = ? AND phone = ?", dealershipID, phone).
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lead with phone %s not found: %w", phone, err)
		}
		return nil, fmt.Errorf("failed to get lead by phone: %w", err)
	}
	return &l, nil
}

// GetByPhoneAnyDealership looks up a lead by phone alone, used by the
// Dealership Phone Resolver (§4.2 step 1) before a dealership is known.
func (r *GormLeadRepository) GetByPhoneAnyDealership(ctx context.Context, phone string) (*domain.Lead, error) {
	var l domain.Lead
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lead with phone %s not found: %w", phone, err)
		}
		return nil, fmt.Errorf("failed to get lead by phone: %w", err)
	}
	return &l, nil
}

func (r *GormLeadRepository) ListByAssignedUser(ctx context.Context, userID string) ([]*domain.Lead, error) {
	var all []*domain.Lead
	if err := r.db.WithContext(ctx).Where("assigned_user_id = ?", userID).Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list leads by assigned user: %w", err)
	}
	return all, nil
}

func (r *GormLeadRepository) ListByDealership(ctx context.Context, dealershipID string) ([]*domain.Lead, error) {
	var all []*domain.Lead
	if err := r.db.WithContext(ctx).Where("dealership_id = ?", dealershipID).Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list leads by dealership: %w", err)
	}
	return all, nil
}

func (r *GormLeadRepository) Update(ctx context.Context, l *domain.Lead) error {
	if err := r.db.WithContext(ctx).Save(l).Error; err != nil {
		return fmt.Errorf("failed to update lead %s: %w", l.ID, err)
	}
	return nil
}
