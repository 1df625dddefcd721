package model

import (
	"time"
)

// Property listing status values.
const (
	StatusOpen   = "Open"
	StatusClosed = "Closed"
)

// Property represents a rental listing. It exists only within the owning
// user's collection; every query path filters by UserID.
type Property struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"index"`
	Address     string    `json:"address" gorm:"type:varchar(255)"`
	Near        string    `json:"near" gorm:"type:varchar(255)"`
	Description string    `json:"description" gorm:"type:text"`
	Rent        float64   `json:"rent"`
	Gender      string    `json:"gender" gorm:"type:varchar(20)"`
	Furnishing  string    `json:"furnishing" gorm:"type:varchar(50)"`
	Restriction string    `json:"restriction" gorm:"type:varchar(255)"`
	Images      []string  `json:"images" gorm:"serializer:json"`
	Status      string    `json:"status" gorm:"type:varchar(10);default:Open"`
	Wifi        bool      `json:"wifi"`
	AC          bool      `json:"ac"`
	WaterSupply bool      `json:"waterSupply"`
	PowerBackup bool      `json:"powerBackup"`
	Security    bool      `json:"security"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
