package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"gorm.io/gorm"
)

// GormDealershipRepository implements DealershipRepository using GORM.
type GormDealershipRepository struct {
	db *gorm.DB
}

func NewGormDealershipRepository(db *gorm.DB) *GormDealershipRepository {
	return &GormDealershipRepository{db: db}
}

func (r *GormDealershipRepository) Create(ctx context.Context, d *domain.Dealership) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to create dealership: %w", err)
	}
	return nil
}

func (r *GormDealershipRepository) GetByID(ctx context.Context, id string) (*domain.Dealership, error) {
	var d domain.Dealership
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dealership %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get dealership: %w", err)
	}
	return &d, nil
}

// GetByIntegrationPhone scans every dealership's integration_config for a
// matching phone number under the given provider key (§4.2 phone resolver,
// slow path). Dealerships are few enough per deployment that a full scan is
// acceptable; the phone resolver checks the in-process dealership cache
// before calling this, and does not add hits from this scan to the cache.
func (r *GormDealershipRepository) GetByIntegrationPhone(ctx context.Context, provider, phone string) (*domain.Dealership, error) {
	var all []*domain.Dealership
	if err := r.db.WithContext(ctx).Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to scan dealerships: %w", err)
	}
	for _, d := range all {
		for _, n := range d.IntegrationPhoneNumbers(provider) {
			if n == phone {
				return d, nil
			}
		}
	}
	return nil, fmt.Errorf("no dealership configured for %s number %s: %w", provider, phone, gorm.ErrRecordNotFound)
}

func (r *GormDealershipRepository) GetDefault(ctx context.Context) (*domain.Dealership, error) {
	var d domain.Dealership
	if err := r.db.WithContext(ctx).Where("default_dealership = ?", true).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no default dealership configured: %w", err)
		}
		return nil, fmt.Errorf("failed to get default dealership: %w", err)
	}
	return &d, nil
}

func (r *GormDealershipRepository) Update(ctx context.Context, d *domain.Dealership) error {
	if err := r.db.WithContext(ctx).Save(d).Error; err != nil {
		return fmt.Errorf("failed to update dealership %s: %w", d.ID, err)
	}
	return nil
}

func (r *GormDealershipRepository) List(ctx context.Context) ([]*domain.Dealership, error) {
	var all []*domain.Dealership
	if err := r.db.WithContext(ctx).Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list dealerships: %w", err)
	}
	return all, nil
}
