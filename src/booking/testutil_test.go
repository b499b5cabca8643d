package booking

import (
	"dbs/src/models"
	"dbs/src/types"
	"fmt"
	"log"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a test database", err)
	}
	inner, err := d.DB()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when accessing the inner handle", err)
	}
	// a single connection serializes transactions, so the capacity
	// re-check sees every committed insert
	inner.SetMaxOpenConns(1)
	if err := d.AutoMigrate(
		&models.User{},
		&models.Dorm{},
		&models.Room{},
		&models.Booking{},
		&models.Payment{},
	); err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	t.Cleanup(func() { inner.Close() })
	return d
}

type fixture struct {
	Owner   models.User
	Student models.User
	Dorm    models.Dorm
	Room    models.Room
}

func seedRoom(t *testing.T, d *gorm.DB, capacity uint) *fixture {
	t.Helper()
	f := &fixture{
		Owner:   models.User{Name: "Owner", Email: fmt.Sprintf("owner+%s@example.com", t.Name()), Role: types.ROLE_OWNER},
		Student: models.User{Name: "Student", Email: fmt.Sprintf("student+%s@example.com", t.Name()), Role: types.ROLE_STUDENT},
	}
	if err := d.Create(&f.Owner).Error; err != nil {
		log.Fatalf("Could not create owner: %s\n", err.Error())
	}
	if err := d.Create(&f.Student).Error; err != nil {
		log.Fatalf("Could not create student: %s\n", err.Error())
	}
	f.Dorm = models.Dorm{Name: "Test Dorm", Slug: "test-dorm", Address: "123 Test St", OwnerID: f.Owner.ID, Verified: true}
	if err := d.Create(&f.Dorm).Error; err != nil {
		log.Fatalf("Could not create dorm: %s\n", err.Error())
	}
	f.Room = models.Room{DormID: f.Dorm.ID, RoomType: "standard", Capacity: capacity, Price: 250, Status: types.ROOM_VACANT}
	if err := d.Create(&f.Room).Error; err != nil {
		log.Fatalf("Could not create room: %s\n", err.Error())
	}
	return f
}

func newTestLedger(d *gorm.DB, payments PaymentTracker) *Ledger {
	return &Ledger{
		db:           d,
		payments:     payments,
		expiryWindow: 2 * time.Hour,
		leaseMonths:  6,
	}
}
