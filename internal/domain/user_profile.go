package domain

import "time"

// Role levels for the Role & Permission Resolver (§4.13).
const (
	RoleOwner       = "owner"
	RoleManager     = "manager"
	RoleSalesperson = "salesperson"
)

// RoleLevel maps a role name to its hierarchy level. Higher is more privileged.
func RoleLevel(role string) int {
	switch role {
	case RoleOwner:
		return 100
	case RoleManager:
		return 80
	case RoleSalesperson:
		return 40
	default:
		return 0
	}
}

// UserProfile represents a staff member's membership in a dealership.
type UserProfile struct {
	ID           string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       string    `json:"user_id" gorm:"type:varchar(255);not null;uniqueIndex:idx_user_profile_user_dealership,priority:2"`
	DealershipID string    `json:"dealership_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_profile_email_dealership,priority:1;uniqueIndex:idx_user_profile_phone_dealership,priority:1;uniqueIndex:idx_user_profile_user_dealership,priority:1"`
	FullName     string    `json:"full_name" gorm:"type:varchar(255)"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex:idx_user_profile_email_dealership,priority:2"`
	Phone        *string   `json:"phone,omitempty" gorm:"type:varchar(32);uniqueIndex:idx_user_profile_phone_dealership,priority:2"`
	Role         string    `json:"role" gorm:"type:varchar(32);not null"`
	Timezone     string    `json:"timezone" gorm:"type:varchar(64);default:'America/New_York'"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserProfile) TableName() string { return "user_profiles" }
