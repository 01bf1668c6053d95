package domain

import "time"

// SettingDataType enumerates the data types a SettingDefinition may declare.
const (
	SettingTypeString = "string"
	SettingTypeInt    = "int"
	SettingTypeFloat  = "float"
	SettingTypeBool   = "bool"
	SettingTypeTime   = "time" // HH:MM
)

// SettingDefinition is static metadata describing a configurable key.
type SettingDefinition struct {
	Key             string   `json:"key" gorm:"type:varchar(128);primary_key"`
	DataType        string   `json:"data_type" gorm:"type:varchar(16);not null"`
	Description     string   `json:"description" gorm:"type:text"`
	DefaultValue    string   `json:"default_value" gorm:"type:text"`
	AllowedValues   JSONSlice `json:"allowed_values,omitempty" gorm:"type:jsonb"`
	DealershipLevel bool     `json:"dealership_level" gorm:"default:true"`
	UserLevel       bool     `json:"user_level" gorm:"default:false"`
}

func (SettingDefinition) TableName() string { return "setting_definitions" }

// DealershipSetting is a (dealership_id, key) -> value row.
type DealershipSetting struct {
	DealershipID string    `json:"dealership_id" gorm:"type:uuid;primaryKey"`
	Key          string    `json:"key" gorm:"type:varchar(128);primaryKey"`
	Value        string    `json:"value" gorm:"type:text"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (DealershipSetting) TableName() string { return "dealership_settings" }

// UserSetting is a (user_id, key) -> value row.
type UserSetting struct {
	UserID    string    `json:"user_id" gorm:"type:varchar(255);primaryKey"`
	Key       string    `json:"key" gorm:"type:varchar(128);primaryKey"`
	Value     string    `json:"value" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserSetting) TableName() string { return "user_settings" }

// Well-known setting keys (original_source settings_service.py / reply_scheduler.py).
const (
	SettingReplyTimingMode          = "reply_timing_mode"
	SettingReplyDelaySeconds        = "reply_delay_seconds"
	SettingBusinessHoursStart       = "business_hours_start"
	SettingBusinessHoursEnd         = "business_hours_end"
	SettingBusinessHoursDelaySecond = "business_hours_delay_seconds"
	SettingAutoSendThreshold        = "auto_send_threshold"
	SettingTimezone                 = "timezone"
)

// Invite statuses (§3).
const (
	InviteStatusPending   = "pending"
	InviteStatusAccepted  = "accepted"
	InviteStatusExpired   = "expired"
	InviteStatusCancelled = "cancelled"
)

// DefaultInviteTTL is the default invite lifetime.
const DefaultInviteTTL = 7 * 24 * time.Hour

// Invite represents an outstanding invitation to join a dealership.
type Invite struct {
	ID           string     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DealershipID string     `json:"dealership_id" gorm:"type:uuid;not null;index"`
	Email        string     `json:"email" gorm:"type:varchar(255);not null"`
	TokenHash    string     `json:"token_hash" gorm:"type:varchar(128);uniqueIndex"`
	Role         string     `json:"role" gorm:"type:varchar(32);not null"`
	InvitedBy    string     `json:"invited_by" gorm:"type:varchar(255)"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	ExpiresAt    time.Time  `json:"expires_at"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	Status       string     `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
}

func (Invite) TableName() string { return "invites" }
