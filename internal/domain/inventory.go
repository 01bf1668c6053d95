package domain

import (
	"strconv"
	"time"
)

// Vehicle statuses (§3).
const (
	VehicleStatusActive  = "active"
	VehicleStatusSold    = "sold"
	VehicleStatusPending = "pending"
)

// Vehicle is an inventory item owned by a Dealership. It owns at most one
// VehicleEmbedding, tied 1:1 by (dealership_id, vehicle_id).
type Vehicle struct {
	ID           string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DealershipID string    `json:"dealership_id" gorm:"type:uuid;not null;index"`
	Make         string    `json:"make" gorm:"type:varchar(64);not null"`
	Model        string    `json:"model" gorm:"type:varchar(64);not null"`
	Year         int       `json:"year" gorm:"not null"`
	Price        float64   `json:"price" gorm:"type:numeric(12,2)"`
	Mileage      int       `json:"mileage"`
	Condition    string    `json:"condition" gorm:"type:varchar(32)"`
	Description  string    `json:"description" gorm:"type:text"`
	Features     JSONSlice `json:"features" gorm:"type:jsonb"`
	StockNumber  string    `json:"stock_number" gorm:"type:varchar(64)"`
	Status       string    `json:"status" gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Vehicle) TableName() string { return "inventory" }

// EmbeddingInputText is the text whose change triggers an embedding rebuild.
func (v *Vehicle) EmbeddingInputText() string {
	return v.Make + " " + v.Model + " " + strconv.Itoa(v.Year) + " " + v.Description + " " + v.Features.Join(" ")
}

// VehicleEmbedding is a dense vector tied 1:1 to a vehicle.
type VehicleEmbedding struct {
	DealershipID string    `json:"dealership_id" gorm:"type:uuid;primaryKey"`
	VehicleID    string    `json:"vehicle_id" gorm:"type:uuid;primaryKey"`
	Vector       Vector    `json:"vector" gorm:"type:jsonb"`
	InputText    string    `json:"input_text" gorm:"type:text"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (VehicleEmbedding) TableName() string { return "vehicle_embeddings" }
