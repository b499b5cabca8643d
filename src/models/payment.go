package models

import (
	"dbs/src/types"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payment struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`

	BookingID uint `gorm:"uniqueIndex"`
	StudentID uint
	Amount    float32
	DueDate   time.Time
	Status    types.PaymentStatus `gorm:"default:'pending'"`

	types.Timestamps

	Booking Booking `gorm:"foreignKey:booking_id" json:"-"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
