package model

import (
	"time"
)

// User roles. The role is fixed at registration.
const (
	RoleTenant = "Tenant"
	RoleBroker = "Broker"
	RoleOwner  = "Owner"
)

// User represents the user model stored in the database.
// OTPHash and OTPExpiresAt are only populated while a password reset is
// pending and are always written or cleared together.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"type:varchar(100)"`
	Email        string     `json:"email" gorm:"type:varchar(100)"`
	Mobile       string     `json:"mobile" gorm:"type:varchar(10);uniqueIndex"`
	Password     string     `json:"-" gorm:"type:varchar(255)"`
	Role         string     `json:"role" gorm:"type:varchar(20)"`
	IsActive     bool       `json:"isActive" gorm:"default:false"`
	OTPHash      *string    `json:"-" gorm:"type:varchar(255)"`
	OTPExpiresAt *time.Time `json:"-"`
	Properties   []Property `json:"properties" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
