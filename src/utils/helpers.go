package utils

import (
	"dbs/src/db"
	"dbs/src/models"
	"dbs/src/types"
	"errors"
	"log"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func GetRoomOccupancy(id uint) (active uint, free uint, err error) {
	db := db.GetDb()
	var room models.Room
	ss := db.Session(&gorm.Session{PrepareStmt: true})
	if err := ss.Where(&models.Room{ID: id}).First(&room).Error; err != nil {
		return 0, 0, errors.New("room not found")
	}
	var count int64
	if err := ss.
		Model(&models.Booking{}).
		Where(&models.Booking{RoomID: id}).
		Where("status IN ?", []types.BookingStatus{types.BOOKING_PENDING, types.BOOKING_APPROVED}).
		Count(&count).
		Error; err != nil {
		return 0, 0, err
	}
	var whole int64
	if err := ss.
		Model(&models.Booking{}).
		Where(&models.Booking{RoomID: id, BookingType: types.BOOKING_WHOLE}).
		Where("status IN ?", []types.BookingStatus{types.BOOKING_PENDING, types.BOOKING_APPROVED}).
		Count(&whole).
		Error; err != nil {
		return 0, 0, err
	}
	active = uint(count)
	// a whole-room booking leaves no free slots regardless of capacity
	if whole > 0 || active > room.Capacity {
		return active, 0, nil
	}
	return active, room.Capacity - active, nil
}

func CreateNewDorm(ownerId uint, params *types.CreateDormRequestBody) (uint, error) {
	dorm := models.Dorm{
		Name:    params.Name,
		Slug:    slug.Make(params.Name),
		Address: params.Address,
		OwnerID: ownerId,
	}
	if params.About != "" {
		dorm.About = &params.About
	}
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&dorm).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error creating Dorm: %s\n", err.Error())
		return 0, err
	}
	return dorm.ID, nil
}

func CreateNewRoom(ownerId uint, params *types.CreateRoomRequestBody) (uint, error) {
	db := db.GetDb()
	var room models.Room
	err := db.Transaction(func(tx *gorm.DB) error {
		var dorm models.Dorm
		if err := tx.
			Where(&models.Dorm{ID: params.DormID}).
			First(&dorm).
			Error; err != nil {
			return errors.New("dorm not found")
		}
		if dorm.OwnerID != ownerId {
			return errors.New("dorm is owned by another account")
		}
		room = models.Room{
			DormID:   params.DormID,
			RoomType: params.RoomType,
			Capacity: params.Capacity,
			Price:    params.Price,
			Status:   types.ROOM_VACANT,
		}
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error creating Room: %s\n", err.Error())
		return 0, err
	}
	return room.ID, nil
}

func GetOwnBookings(studentId uint) ([]models.Booking, error) {
	db := db.GetDb()
	var bookings []models.Booking
	err := db.
		Model(&models.Booking{}).
		Where(&models.Booking{StudentID: studentId}).
		Preload("Room").
		Preload("Room.Dorm").
		Order("created_at DESC").
		Limit(100).
		Find(&bookings).
		Error
	return bookings, err
}

func GetDormBookings(ownerId uint) ([]models.Booking, error) {
	db := db.GetDb()
	var bookings []models.Booking
	err := db.
		Model(&models.Booking{}).
		Joins("JOIN rooms ON rooms.id = bookings.room_id").
		Joins("JOIN dorms ON dorms.id = rooms.dorm_id").
		Where("dorms.owner_id = ?", ownerId).
		Preload("Room").
		Preload("Student").
		Order("bookings.created_at DESC").
		Limit(100).
		Find(&bookings).
		Error
	return bookings, err
}
