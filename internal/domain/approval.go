package domain

import "time"

// Pending approval statuses (§3). Transitions are one-way out of "pending".
const (
	ApprovalStatusPending    = "pending"
	ApprovalStatusApproved   = "approved"
	ApprovalStatusRejected   = "rejected"
	ApprovalStatusExpired    = "expired"
	ApprovalStatusForceSent  = "force_sent"
)

// DefaultApprovalTTL is the default pending-approval lifetime.
const DefaultApprovalTTL = time.Hour

// PendingApproval is a draft reply awaiting a salesperson decision.
type PendingApproval struct {
	ID                string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LeadID            string    `json:"lead_id" gorm:"type:uuid;not null;index"`
	UserID            string    `json:"user_id" gorm:"type:varchar(255);not null;index"`
	DealershipID      string    `json:"dealership_id" gorm:"type:uuid;not null;index"`
	CustomerMessage   string    `json:"customer_message" gorm:"type:text"`
	GeneratedResponse string    `json:"generated_response" gorm:"type:text"`
	CustomerPhone     string    `json:"customer_phone" gorm:"type:varchar(32)"`
	Status            string    `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	ExpiresAt         time.Time `json:"expires_at"`
}

func (PendingApproval) TableName() string { return "pending_approvals" }

// IsLive reports whether the approval is still actionable at t.
func (p *PendingApproval) IsLive(t time.Time) bool {
	return p.Status == ApprovalStatusPending && p.ExpiresAt.After(t)
}
