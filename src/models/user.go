package models

import (
	"dbs/src/types"
)

type User struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `gorm:"uniqueIndex" json:"email,omitempty"`
	Role  string `gorm:"default:'student'" json:"role,omitempty"`

	Bookings []Booking `gorm:"foreignKey:student_id" json:"bookings,omitempty"`
	Dorms    []Dorm    `gorm:"foreignKey:owner_id" json:"dorms,omitempty"`

	types.Timestamps
}
