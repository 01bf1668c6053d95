package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository implements SettingsRepository using GORM.
type GormSettingsRepository struct {
	db *gorm.DB
}

func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// seedDefinitions is the built-in catalog of configurable settings
// (original_source settings_service.py / reply_scheduler.py constants).
var seedDefinitions = []domain.SettingDefinition{
	{
		Key:             domain.SettingReplyTimingMode,
		DataType:        domain.SettingTypeString,
		Description:     "How the reply scheduler delays outbound replies: instant, custom_delay, or business_hours.",
		DefaultValue:    "instant",
		AllowedValues:   domain.JSONSlice{"instant", "custom_delay", "business_hours"},
		DealershipLevel: true,
		UserLevel:       true,
	},
	{
		Key:             domain.SettingReplyDelaySeconds,
		DataType:        domain.SettingTypeInt,
		Description:     "Fixed delay in seconds applied when reply_timing_mode is custom_delay.",
		DefaultValue:    "30",
		DealershipLevel: true,
		UserLevel:       true,
	},
	{
		Key:             domain.SettingBusinessHoursStart,
		DataType:        domain.SettingTypeTime,
		Description:     "Start of business hours, HH:MM, local to the dealership timezone.",
		DefaultValue:    "09:00",
		DealershipLevel: true,
		UserLevel:       false,
	},
	{
		Key:             domain.SettingBusinessHoursEnd,
		DataType:        domain.SettingTypeTime,
		Description:     "End of business hours, HH:MM, local to the dealership timezone.",
		DefaultValue:    "18:00",
		DealershipLevel: true,
		UserLevel:       false,
	},
	{
		Key:             domain.SettingBusinessHoursDelaySecond,
		DataType:        domain.SettingTypeInt,
		Description:     "Delay in seconds applied to replies sent inside business hours when reply_timing_mode is business_hours.",
		DefaultValue:    "45",
		DealershipLevel: true,
		UserLevel:       true,
	},
	{
		Key:             domain.SettingAutoSendThreshold,
		DataType:        domain.SettingTypeFloat,
		Description:     "Minimum confidence score for auto-sending a drafted reply. Stored and validated only: the message flow decides auto-send from the model's auto_send flag and does not read this value.",
		DefaultValue:    "0.85",
		DealershipLevel: true,
		UserLevel:       false,
	},
	{
		Key:             domain.SettingTimezone,
		DataType:        domain.SettingTypeString,
		Description:     "IANA timezone used to interpret business hours and schedule timestamps.",
		DefaultValue:    "America/New_York",
		DealershipLevel: true,
		UserLevel:       true,
	},
}

// SeedDefinitions inserts the built-in setting catalog, leaving existing rows
// untouched on conflict so operator edits to description/default survive restarts.
func (r *GormSettingsRepository) SeedDefinitions(ctx context.Context) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&seedDefinitions).Error
	if err != nil {
		return fmt.Errorf("failed to seed setting definitions: %w", err)
	}
	return nil
}

func (r *GormSettingsRepository) Definitions(ctx context.Context) ([]*domain.SettingDefinition, error) {
	var all []*domain.SettingDefinition
	if err := r.db.WithContext(ctx).Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list setting definitions: %w", err)
	}
	return all, nil
}

func (r *GormSettingsRepository) GetDealershipValue(ctx context.Context, dealershipID, key string) (string, bool, error) {
	var s domain.DealershipSetting
	err := r.db.WithContext(ctx).
		Where("dealership_id = ? AND key = ?", dealershipID, key).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get dealership setting %s: %w", key, err)
	}
	return s.Value, true, nil
}

func (r *GormSettingsRepository) SetDealershipValue(ctx context.Context, dealershipID, key, value string) error {
	row := domain.DealershipSetting{DealershipID: dealershipID, Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dealership_id"}, {Name: "key"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to set dealership setting %s: %w", key, err)
	}
	return nil
}

func (r *GormSettingsRepository) GetUserValue(ctx context.Context, userID, key string) (string, bool, error) {
	var s domain.UserSetting
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get user setting %s: %w", key, err)
	}
	return s.Value, true, nil
}

func (r *GormSettingsRepository) SetUserValue(ctx context.Context, userID, key, value string) error {
	row := domain.UserSetting{UserID: userID, Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to set user setting %s: %w", key, err)
	}
	return nil
}

// DeleteUserValue removes a user-level override row outright, so a later
// GetUserValue reports ok=false and the resolver falls through to the
// dealership value or definition default.
func (r *GormSettingsRepository) DeleteUserValue(ctx context.Context, userID, key string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		Delete(&domain.UserSetting{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete user setting %s: %w", key, err)
	}
	return nil
}
