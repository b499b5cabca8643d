package payments

import (
	"dbs/src/models"
	"dbs/src/types"
	"log"
	"time"

	"gorm.io/gorm"
)

// Tracker is the gorm-backed payment collaborator. The booking core
// only asks it whether a payment exists and to create a pending one;
// receipt upload and the paid/overdue lifecycle live outside this
// service. Both calls run inside the caller's transition transaction,
// so they take the transaction handle instead of using the pool. A
// rolled-back transition takes its payment with it.
type Tracker struct {
	db *gorm.DB
}

func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{db: db}
}

func (t *Tracker) PaymentExists(tx *gorm.DB, bookingID uint) (bool, error) {
	var count int64
	err := tx.
		Model(&models.Payment{}).
		Where(&models.Payment{BookingID: bookingID}).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (t *Tracker) CreatePendingPayment(tx *gorm.DB, bookingID, studentID uint, amount float32, dueDate time.Time) (*models.Payment, error) {
	payment := models.Payment{
		BookingID: bookingID,
		StudentID: studentID,
		Amount:    amount,
		DueDate:   dueDate,
		Status:    types.PAYMENT_PENDING,
	}
	if err := tx.Create(&payment).Error; err != nil {
		log.Printf("Error creating Payment for Booking [%d]: %s\n", bookingID, err.Error())
		return nil, err
	}
	return &payment, nil
}

func (t *Tracker) GetStudentPayments(studentID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := t.db.
		Model(&models.Payment{}).
		Where(&models.Payment{StudentID: studentID}).
		Order("created_at desc").
		Limit(100).
		Find(&payments).
		Error
	return payments, err
}
