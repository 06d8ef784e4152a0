package models

// Permission is immutable reference data seeded at setup, keyed by code.
type Permission struct {
	BaseModel

	Code   string `gorm:"uniqueIndex;not null" json:"code"`
	Name   string `gorm:"not null" json:"name"`
	Module string `gorm:"index" json:"module"`

	Roles []Role `gorm:"many2many:role_permissions;" json:"roles,omitempty"`
}
