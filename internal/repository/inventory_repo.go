package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"gorm.io/gorm"
)

// GormInventoryRepository implements InventoryRepository using GORM.
type GormInventoryRepository struct {
	db *gorm.DB
}

func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

func (r *GormInventoryRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

func (r *GormInventoryRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("vehicle %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return &v, nil
}

func (r *GormInventoryRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	if err := r.db.WithContext(ctx).Save(v).Error; err != nil {
		return fmt.Errorf("failed to update vehicle %s: %w", v.ID, err)
	}
	return nil
}

func (r *GormInventoryRepository) ListByDealership(ctx context.Context, dealershipID string, onlyAvailable bool) ([]*domain.Vehicle, error) {
	q := r.db.WithContext(ctx).Where("dealership_id = ?", dealershipID)
	if onlyAvailable {
		q = q.Where("status = ?", domain.VehicleStatusActive)
	}
	var all []*domain.Vehicle
	if err := q.Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return all, nil
}
