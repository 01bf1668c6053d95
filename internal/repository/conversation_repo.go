package repository

import (
	"context"
	"fmt"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"gorm.io/gorm"
)

// GormConversationRepository implements ConversationRepository using GORM.
type GormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

func (r *GormConversationRepository) Append(ctx context.Context, turn *domain.ConversationTurn) error {
	if err := r.db.WithContext(ctx).Create(turn).Error; err != nil {
		return fmt.Errorf("failed to append conversation turn: %w", err)
	}
	return nil
}

// ListByLead returns the most recent turns for a lead, oldest first, capped at limit.
func (r *GormConversationRepository) ListByLead(ctx context.Context, leadID string, limit int) ([]*domain.ConversationTurn, error) {
	var recent []*domain.ConversationTurn
	q := r.db.WithContext(ctx).Where("lead_id = ?", leadID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversation turns: %w", err)
	}
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return recent, nil
}
