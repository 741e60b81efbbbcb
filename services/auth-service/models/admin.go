package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin is a triage account. Reporters are anonymous and never have rows
// here; this table only holds the staff who review reports.
type Admin struct {
	ID          string         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	Name        string         `gorm:"not null" json:"name"`
	Role        string         `gorm:"default:'ADMIN'" json:"role"`
	Active      bool           `gorm:"default:true" json:"active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
