package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type RoomStatus string

const (
	ROOM_VACANT   RoomStatus = "vacant"
	ROOM_OCCUPIED RoomStatus = "occupied"
)

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_APPROVED  BookingStatus = "approved"
	BOOKING_REJECTED  BookingStatus = "rejected"
	BOOKING_CANCELLED BookingStatus = "cancelled"
	BOOKING_COMPLETED BookingStatus = "completed"
)

type BookingType string

const (
	BOOKING_WHOLE  BookingType = "whole"
	BOOKING_SHARED BookingType = "shared"
)

type PaymentStatus string

const (
	PAYMENT_PENDING   PaymentStatus = "pending"
	PAYMENT_SUBMITTED PaymentStatus = "submitted"
	PAYMENT_PAID      PaymentStatus = "paid"
	PAYMENT_OVERDUE   PaymentStatus = "overdue"
)

const (
	ROLE_STUDENT = "student"
	ROLE_OWNER   = "owner"
	ROLE_ADMIN   = "admin"
)

type CreateDormRequestBody struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
	About   string `json:"about,omitempty"`
}

type CreateRoomRequestBody struct {
	DormID   uint    `json:"dorm" binding:"required"`
	RoomType string  `json:"type" binding:"required"`
	Capacity uint    `json:"capacity" binding:"required,min=1"`
	Price    float32 `json:"price" binding:"required"`
}

type UpdateRoomRequestBody struct {
	RoomType string  `json:"type,omitempty"`
	Capacity uint    `json:"capacity,omitempty" binding:"omitempty,min=1"`
	Price    float32 `json:"price,omitempty"`
}

type CreateBookingRequestBody struct {
	RoomID    uint   `json:"room" binding:"required"`
	Type      string `json:"type" binding:"required,oneof=whole shared"`
	StartDate string `json:"start_date" binding:"required,bookabledate" time_format:"2006-01-02"`
	EndDate   string `json:"end_date,omitempty" binding:"omitempty,gtdate=StartDate" time_format:"2006-01-02"`
}

type RegisterUserRequestBody struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role,omitempty" binding:"omitempty,oneof=student owner admin"`
}

type LoginRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type RoomsQueryFilters struct {
	DormID uint `form:"dorm,omitempty"`
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
