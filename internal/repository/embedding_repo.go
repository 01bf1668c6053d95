package repository

import (
	"context"
	"fmt"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEmbeddingRepository implements EmbeddingRepository using GORM.
type GormEmbeddingRepository struct {
	db *gorm.DB
}

func NewGormEmbeddingRepository(db *gorm.DB) *GormEmbeddingRepository {
	return &GormEmbeddingRepository{db: db}
}

// Upsert inserts or replaces the embedding for a vehicle, keyed by its
// composite (dealership_id, vehicle_id) primary key.
func (r *GormEmbeddingRepository) Upsert(ctx context.Context, e *domain.VehicleEmbedding) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dealership_id"}, {Name: "vehicle_id"}},
		UpdateAll: true,
	}).Create(e).Error
	if err != nil {
		return fmt.Errorf("failed to upsert vehicle embedding: %w", err)
	}
	return nil
}

func (r *GormEmbeddingRepository) ListByDealership(ctx context.Context, dealershipID string) ([]*domain.VehicleEmbedding, error) {
	var all []*domain.VehicleEmbedding
	if err := r.db.WithContext(ctx).Where("dealership_id = ?", dealershipID).Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list vehicle embeddings: %w", err)
	}
	return all, nil
}

func (r *GormEmbeddingRepository) DeleteByVehicleID(ctx context.Context, vehicleID string) error {
	if err := r.db.WithContext(ctx).Delete(&domain.VehicleEmbedding{}, "vehicle_id = ?", vehicleID).Error; err != nil {
		return fmt.Errorf("failed to delete vehicle embedding %s: %w", vehicleID, err)
	}
	return nil
}
