package domain

import (
	"time"

	"github.com/google/uuid"
)

// Dealership is the tenant root. All other domain rows are scoped to a
// Dealership via dealership_id.
type Dealership struct {
	ID                 string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name               string    `json:"name" gorm:"type:varchar(255);not null"`
	Location           string    `json:"location" gorm:"type:varchar(255)"`
	IntegrationConfig  JSONB     `json:"integration_config" gorm:"type:jsonb"`
	SubscriptionRef    *string   `json:"subscription_ref,omitempty" gorm:"type:varchar(255)"`
	DefaultDealership  bool      `json:"default_dealership" gorm:"default:false"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Dealership) TableName() string { return "dealerships" }

// IntegrationPhoneNumbers returns the configured phone numbers for a provider,
// e.g. integration_config = {"sms": {"phone_numbers": ["+15551234567"]}}.
func (d *Dealership) IntegrationPhoneNumbers(provider string) []string {
	if d.IntegrationConfig == nil {
		return nil
	}
	raw, ok := d.IntegrationConfig[provider]
	if !ok {
		return nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	nums, ok := m["phone_numbers"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(nums))
	for _, n := range nums {
		if s, ok := n.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// NewID generates an opaque entity identifier.
func NewID() string {
	return uuid.NewString()
}
