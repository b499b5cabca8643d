package models

import (
	"dbs/src/lib"
	"dbs/src/types"
	"log"
	"time"
)

type Booking struct {
	ID          uint                `gorm:"primarykey" json:"id"`
	RoomID      uint                `gorm:"index:idx_bookings_room_status" json:"room_id,omitempty"`
	StudentID   uint                `json:"student_id,omitempty"`
	BookingType types.BookingType   `json:"booking_type,omitempty"`
	Status      types.BookingStatus `gorm:"default:'pending';index:idx_bookings_room_status;index:idx_bookings_status_expiry" json:"status,omitempty"`
	StartDate   time.Time           `json:"start_date,omitempty"`
	EndDate     time.Time           `json:"end_date,omitempty"`
	// ExpiresAt is set only on the student-facing create path; the
	// sweeper cancels pending bookings past it.
	ExpiresAt *time.Time `gorm:"index:idx_bookings_status_expiry" json:"expires_at,omitempty"`

	Room    Room `gorm:"foreignKey:room_id" json:"room,omitempty"`
	Student User `gorm:"foreignKey:student_id" json:"student,omitempty"`

	types.Timestamps
}

func BookingStatusProducer(id uint, payload map[string]any) error {
	err := lib.KafkaProduceMessage("booking_events_producer", "booking-events", payload)
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
		return err
	}
	return nil
}
