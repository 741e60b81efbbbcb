package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CategoryActive   = "ACTIVE"
	CategoryInactive = "INACTIVE"
)

// ReportCategory is an admin-managed classification ("Bribery", "Academic
// Misconduct", ...). Once a report references a category it becomes an
// immutable reference: deletion is refused while reports exist.
type ReportCategory struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Slug            string             `bson:"slug" json:"slug"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	DefaultSeverity string             `bson:"default_severity" json:"default_severity"`
	Status          string             `bson:"status" json:"status"`
	DisplayOrder    int                `bson:"display_order" json:"display_order"`
	Guidelines      string             `bson:"guidelines,omitempty" json:"guidelines,omitempty"`
	Examples        []string           `bson:"examples,omitempty" json:"examples,omitempty"`
	Icon            string             `bson:"icon,omitempty" json:"icon,omitempty"`
	Color           string             `bson:"color,omitempty" json:"color,omitempty"`
	ReportCount     int64              `bson:"report_count" json:"report_count"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

func (c *ReportCategory) IsActive() bool {
	return c.Status == CategoryActive
}
