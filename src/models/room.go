package models

import (
	"dbs/src/types"
)

type Room struct {
	ID       uint    `gorm:"primarykey" json:"id"`
	DormID   uint    `gorm:"index" json:"dorm_id,omitempty"`
	RoomType string  `json:"type,omitempty"`
	Capacity uint    `json:"capacity"`
	Price    float32 `json:"price"`
	// Status is derived from the active-booking count; only the
	// reconciler writes it.
	Status types.RoomStatus `gorm:"default:'vacant'" json:"status,omitempty"`

	Dorm     Dorm      `json:"dorm,omitempty"`
	Bookings []Booking `gorm:"foreignKey:room_id" json:"bookings,omitempty"`

	Stats *RoomStats `gorm:"-" json:"stats,omitempty"`

	types.Timestamps
}

type RoomStats struct {
	RoomID uint `json:"room_id,omitempty"`
	Active uint `json:"active"`
	Free   uint `json:"free"`
}
