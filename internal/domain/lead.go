package domain

import "time"

// Lead statuses (§3).
const (
	LeadStatusNew               = "new"
	LeadStatusWarm              = "warm"
	LeadStatusHot               = "hot"
	LeadStatusFollowUp          = "follow-up"
	LeadStatusCold              = "cold"
	LeadStatusAppointmentBooked = "appointment_booked"
	LeadStatusDealWon           = "deal_won"
	LeadStatusDealLost          = "deal_lost"
)

// Lead is a customer opportunity, mutated on each inbound message.
type Lead struct {
	ID                  string     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DealershipID        string     `json:"dealership_id" gorm:"type:uuid;not null;uniqueIndex:idx_lead_phone_dealership,priority:1"`
	Name                string     `json:"name" gorm:"type:varchar(255)"`
	CarInterest         string     `json:"car_interest" gorm:"type:text"`
	Source              string     `json:"source" gorm:"type:varchar(64)"`
	Status              string     `json:"status" gorm:"type:varchar(32);not null;default:'new'"`
	Phone               *string    `json:"phone,omitempty" gorm:"type:varchar(32);uniqueIndex:idx_lead_phone_dealership,priority:2"`
	Email               *string    `json:"email,omitempty" gorm:"type:varchar(255)"`
	LastContactAt       time.Time  `json:"last_contact_at"`
	AssignedUserID      *string    `json:"assigned_user_id,omitempty" gorm:"type:varchar(255)"`
	AppointmentDatetime *time.Time `json:"appointment_datetime,omitempty"`
	MaxPrice            *float64   `json:"max_price,omitempty"`
	CreatedAt           time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Lead) TableName() string { return "leads" }

// ConversationTurn is an append-only event in a Lead's history.
type ConversationTurn struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LeadID    string    `json:"lead_id" gorm:"type:uuid;not null;index"`
	Sender    string    `json:"sender" gorm:"type:varchar(16);not null"` // customer | agent | system
	Message   string    `json:"message" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (ConversationTurn) TableName() string { return "conversations" }

const (
	SenderCustomer = "customer"
	SenderAgent    = "agent"
	SenderSystem   = "system"
)
