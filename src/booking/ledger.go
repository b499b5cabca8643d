package booking

import (
	"dbs/src/config"
	"dbs/src/models"
	"dbs/src/types"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

// PaymentTracker is the payment collaborator consumed on approval. The
// ledger only needs existence checks and pending-payment creation;
// everything after that is the tracker's business. Calls receive the
// transition's transaction handle so the payment write commits and
// rolls back with the status write.
type PaymentTracker interface {
	PaymentExists(tx *gorm.DB, bookingID uint) (bool, error)
	CreatePendingPayment(tx *gorm.DB, bookingID, studentID uint, amount float32, dueDate time.Time) (*models.Payment, error)
}

type Actor struct {
	ID   uint
	Role string
}

// Ledger validates and records booking state transitions. It is the
// sole writer of Booking.Status.
type Ledger struct {
	db           *gorm.DB
	payments     PaymentTracker
	expiryWindow time.Duration
	leaseMonths  int
}

func NewLedger(db *gorm.DB, payments PaymentTracker) *Ledger {
	return &Ledger{
		db:           db,
		payments:     payments,
		expiryWindow: config.ExpiryWindow(),
		leaseMonths:  config.DefaultLeaseMonths(),
	}
}

var activeStatuses = []types.BookingStatus{types.BOOKING_PENDING, types.BOOKING_APPROVED}

func countActive(tx *gorm.DB, roomID uint) (total int64, whole int64, err error) {
	err = tx.
		Model(&models.Booking{}).
		Where(&models.Booking{RoomID: roomID}).
		Where("status IN ?", activeStatuses).
		Count(&total).
		Error
	if err != nil {
		return 0, 0, err
	}
	err = tx.
		Model(&models.Booking{}).
		Where(&models.Booking{RoomID: roomID, BookingType: types.BOOKING_WHOLE}).
		Where("status IN ?", activeStatuses).
		Count(&whole).
		Error
	if err != nil {
		return 0, 0, err
	}
	return total, whole, nil
}

// CreateBooking records a pending booking against a room after checking
// capacity and whole-room exclusivity. The room row is locked for the
// duration of the check-and-insert so concurrent requests for the last
// slot serialize instead of overshooting capacity.
func (l *Ledger) CreateBooking(roomID, studentID uint, bookingType types.BookingType, startDate, endDate time.Time) (*models.Booking, error) {
	if bookingType != types.BOOKING_WHOLE && bookingType != types.BOOKING_SHARED {
		return nil, fmt.Errorf("invalid booking type %q", bookingType)
	}
	var booking models.Booking
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := lockForUpdate(tx).
			Where(&models.Room{ID: roomID}).
			First(&room).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}
		active, whole, err := countActive(tx, roomID)
		if err != nil {
			return err
		}
		if whole > 0 {
			return ErrWholeRoomConflict
		}
		if bookingType == types.BOOKING_WHOLE && active > 0 {
			return ErrWholeRoomConflict
		}
		if active >= int64(room.Capacity) {
			return ErrRoomFull
		}

		now := time.Now()
		start := startDate
		if start.IsZero() {
			start = now
		}
		end := endDate
		if end.IsZero() {
			end = start.AddDate(0, l.leaseMonths, 0)
		}
		expiresAt := now.Add(l.expiryWindow)
		booking = models.Booking{
			RoomID:      roomID,
			StudentID:   studentID,
			BookingType: bookingType,
			Status:      types.BOOKING_PENDING,
			StartDate:   start,
			EndDate:     end,
			ExpiresAt:   &expiresAt,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		// re-check under the same transaction; a racing insert that
		// slipped past the lock rolls this one back
		recount, _, err := countActive(tx, roomID)
		if err != nil {
			return err
		}
		if recount > int64(room.Capacity) {
			return ErrConcurrencyConflict
		}

		return Reconcile(tx, roomID)
	})
	if err != nil {
		if errors.Is(err, ErrConcurrencyConflict) {
			log.Printf("CreateBooking: concurrent request filled room %d first\n", roomID)
			return nil, ErrRoomFull
		}
		return nil, err
	}
	return &booking, nil
}

var allowedTransitions = map[types.BookingStatus][]types.BookingStatus{
	types.BOOKING_PENDING:  {types.BOOKING_APPROVED, types.BOOKING_REJECTED, types.BOOKING_CANCELLED},
	types.BOOKING_APPROVED: {types.BOOKING_CANCELLED},
}

func transitionAllowed(from, to types.BookingStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func authorize(booking *models.Booking, actor Actor, target types.BookingStatus) error {
	if actor.Role == types.ROLE_ADMIN {
		return nil
	}
	if actor.Role == types.ROLE_OWNER && booking.Room.Dorm.OwnerID == actor.ID {
		return nil
	}
	// students may cancel their own bookings, nothing else
	if target == types.BOOKING_CANCELLED && booking.StudentID == actor.ID {
		return nil
	}
	return ErrUnauthorized
}

// Transition moves a booking through the owner/admin/student-facing
// state machine and reconciles the room afterwards. Approval creates a
// due payment exactly once.
func (l *Ledger) Transition(bookingID uint, actor Actor, newStatus types.BookingStatus) (*models.Booking, error) {
	var booking models.Booking
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(&models.Booking{ID: bookingID}).
			Preload("Room").
			Preload("Room.Dorm").
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		// serialize with creates and sweeps on the same room
		var room models.Room
		if err := lockForUpdate(tx).
			Where(&models.Room{ID: booking.RoomID}).
			First(&room).
			Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := authorize(&booking, actor, newStatus); err != nil {
			return err
		}
		if !transitionAllowed(booking.Status, newStatus) {
			return ErrInvalidTransition
		}
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingID}).
			Update("status", newStatus).
			Error; err != nil {
			return err
		}
		booking.Status = newStatus

		if newStatus == types.BOOKING_APPROVED {
			exists, err := l.payments.PaymentExists(tx, bookingID)
			if err != nil {
				return err
			}
			if !exists {
				due := booking.StartDate
				if due.IsZero() {
					due = time.Now().Add(7 * 24 * time.Hour)
				}
				if _, err := l.payments.CreatePendingPayment(tx, bookingID, booking.StudentID, booking.Room.Price, due); err != nil {
					return err
				}
			}
		}

		return Reconcile(tx, booking.RoomID)
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Complete marks an approved booking checked out. This is the
// system-initiated hook for the external checkout process; it is not
// reachable through Transition.
func (l *Ledger) Complete(bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where(&models.Booking{ID: bookingID}).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if booking.Status != types.BOOKING_APPROVED {
			return ErrInvalidTransition
		}
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingID}).
			Update("status", types.BOOKING_COMPLETED).
			Error; err != nil {
			return err
		}
		booking.Status = types.BOOKING_COMPLETED
		return Reconcile(tx, booking.RoomID)
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
