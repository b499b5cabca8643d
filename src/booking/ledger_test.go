package booking

import (
	"dbs/src/models"
	"dbs/src/payments"
	"dbs/src/types"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateBookingSharedCapacity(t *testing.T) {
	d := newTestDB(t)
	f := seedRoom(t, d, 2)
	ledger := newTestLedger(d, payments.NewTracker(d))

	first, err := ledger.CreateBooking(f.Room.ID, f.Student.ID, types.BOOKING_SHARED, time.Time{}, time.Time{})
	require.Nil(t, err)
	assert.Equal(t, types.BOOKING_PENDING, first.Status)
	assert.NotNil(t, first.ExpiresAt)

	var room models.Room
	require.Nil(t, d.First(&room, f.Room.ID).Error)
	assert.Equal(t, types.ROOM_VACANT, room.Status)

	_, err = ledger.CreateBooking(f.Room.ID, f.Student.ID, types.BOOKING_SHARED, time.Time{}, time.Time{})
	require.Nil(t, err)

	require.Nil(t, d.First(&room, f.Room.ID).Error)
	assert.Equal(t, types.ROOM_OCCUPIED, room.Status)

	_, err = ledger.CreateBooking(f.Room.ID, f.Student.ID, types.BOOKING_SHARED, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestCreateBookingWholeRoomExclusivity(t *testing.T) {
	d := newTestDB(t)
	f := seedRoom(t, d, 4)
	ledger := newTestLedger(d, payments.NewTracker(d))

	t.Run("whole blocks shared", func(t *testing.T) {
		_, err := ledger.CreateBooking(f.Room.ID, f.Student.ID, types.BOOKING_WHOLE, time.Time{}, time.Time{})
		require.Nil(t, err)
		_, err = ledger.CreateBooking(f.Room.ID, f.Student.ID, types.BOOKING_SHARED, time.Time{}, time.Time{})
		assert.ErrorIs(t, err, ErrWholeRoomConflict)

		// a whole booking fills the room regardless of capacity
		var room models.Room
		require.Nil(t, d.First(&room, f.Room.ID).Error)
		assert.Equal(t, types.ROOM_OCCUPIED, room.Status)
	})

	t.Run("shared blocks whole", func(t *testing.T) {
		f2 := seedRoom(t, d, 4)
		_, err := ledger.CreateBooking(f2.Room.ID, f2.Student.ID, types.BOOKING_SHARED, time.Time{}, time.Time{})
		require.Nil(t, err)
		_, err = ledger.CreateBooking(f2.Room.ID, f2.Student.ID, types.BOOKING_WHOLE, time.Time{}, time.Time{})
		assert.ErrorIs(t, err, ErrWholeRoomConflict)
	})
}

func TestCreateBookingMissingRoom(t *testing.T) {
	d := newTestDB(t)
	seedRoom(t, d, 1)
	ledger := newTestLedger(d, payments.NewTracker(d))

	_, err := ledger.CreateBooking(9999, 1, types.BOOKING_SHARED, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestCreateBookingDefaults(t *testing.T) {
	d := newTestDB(t)
	f := seedRoom(t, d, 2)
	ledger := newTestLedger(d, payments.NewTracker(d))

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	booked, err := ledger.CreateBooking(f.Room.ID, f.Student.ID, types.BOOKING_SHARED, start, time.Time{})
	require.Nil(t, err)
	assert.Equal(t, start.AddDate(0, 6, 0), booked.EndDate)
	require.NotNil(t, booked.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), *booked.ExpiresAt, time.Minute)
}

func TestCreateBookingLastSlotRace(t *testing.T) {
	d := newTestDB(t)
	f := seedRoom(t, d, 1)
	ledger := newTestLedger(d, payments.NewTracker(d))

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = ledger.CreateBooking(f.Room.ID, f.Student.ID, types.BOOKING_SHARED, time.Time{}, time.Time{})
		}(i)
	}
	wg.Wait()

	var won int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrRoomFull)
		}
	}
	assert.Equal(t, 1, won)

	var active int64
	require.Nil(t, d.
		Model(&models.Booking{}).
		Where(&models.Booking{RoomID: f.Room.ID, Status: types.BOOKING_PENDING}).
		Count(&active).
		Error)
	assert.Equal(t, int64(1), active)
}

func TestTransitionLegality(t *testing.T) {
	cases := []struct {
		from    types.BookingStatus
		to      types.BookingStatus
		allowed bool
	}{
		{types.BOOKING_PENDING, types.BOOKING_APPROVED, true},
		{types.BOOKING_PENDING, types.BOOKING_REJECTED, true},
		{types.BOOKING_PENDING, types.BOOKING_CANCELLED, true},
		{types.BOOKING_PENDING, types.BOOKING_COMPLETED, false},
		{types.BOOKING_APPROVED, types.BOOKING_CANCELLED, true},
		{types.BOOKING_APPROVED, types.BOOKING_REJECTED, false},
		{types.BOOKING_APPROVED, types.BOOKING_PENDING, false},
		{types.BOOKING_APPROVED, types.BOOKING_COMPLETED, false},
		{types.BOOKING_REJECTED, types.BOOKING_APPROVED, false},
		{types.BOOKING_REJECTED, types.BOOKING_CANCELLED, false},
		{types.BOOKING_CANCELLED, types.BOOKING_APPROVED, false},
		{types.BOOKING_COMPLETED, types.BOOKING_CANCELLED, false},
	}
	for _, c := range cases {
		assert.Equalf(t, c.allowed, transitionAllowed(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestTransitionAuthorization(t *testing.T) {
	d := newTestDB(t)
	f := seedRoom(t, d, 2)
	ledger := newTestLedger(d, payments.NewTracker(d))

	stranger := models.User{Name: "Stranger", Email: "stranger@example.com", Role: types.ROLE_STUDENT}
	require.Nil(t, d.Create(&stranger).Error)
	otherOwner := models.User{Name: "Other Owner", Email: "other-owner@example.com", Role: types.ROLE_OWNER}
	require.Nil(t, d.Create(&otherOwner).Error)

	booked, err := ledger.CreateBooking(f.Room.ID, f.Student.ID, types.BOOKING_SHARED, time.Time{}, time.Time{})
	require.Nil(t, err)

	_, err = ledger.Transition(booked.ID, Actor{ID: f.Student.ID, Role: types.ROLE_STUDENT}, types.BOOKING_APPROVED)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = ledger.Transition(booked.ID, Actor{ID: stranger.ID, Role: types.ROLE_STUDENT}, types.BOOKING_CANCELLED)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = ledger.Transition(booked.ID, Actor{ID: otherOwner.ID, Role: types.ROLE_OWNER}, types.BOOKING_APPROVED)
	assert.ErrorIs(t, err, ErrUnauthorized)

	updated, err := ledger.Transition(booked.ID, Actor{ID: f.Owner.ID, Role: types.ROLE_OWNER}, types.BOOKING_APPROVED)
	require.Nil(t, err)
	assert.Equal(t, types.BOOKING_APPROVED, updated.Status)

	updated, err = ledger.Transition(booked.ID, Actor{ID: f.Student.ID, Role: types.ROLE_STUDENT}, types.BOOKING_CANCELLED)
	require.Nil(t, err)
	assert.Equal(t, types.BOOKING_CANCELLED, updated.Status)
}

func TestTransitionMissingBooking(t *testing.T) {
	d := newTestDB(t)
	seedRoom(t, d, 1)
	ledger := newTestLedger(d, payments.NewTracker(d))

	_, err := ledger.Transition(9999, Actor{ID: 1, Role: types.ROLE_ADMIN}, types.BOOKING_APPROVED)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestApprovalCreatesPaymentOnce(t *testing.T) {
	d := newTestDB(t)
	f := seedRoom(t, d, 2)
	tracker := payments.NewTracker(d)
	ledger := newTestLedger(d, tracker)

	booked, err := ledger.CreateBooking(f.Room.ID, f.Student.ID, types.BOOKING_SHARED, time.Time{}, time.Time{})
	require.Nil(t, err)

	_, err = ledger.Transition(booked.ID, Actor{ID: f.Owner.ID, Role: types.ROLE_OWNER}, types.BOOKING_APPROVED)
	require.Nil(t, err)

	var count int64
	require.Nil(t, d.Model(&models.Payment{}).Where(&models.Payment{BookingID: booked.ID}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var payment models.Payment
	require.Nil(t, d.Where(&models.Payment{BookingID: booked.ID}).First(&payment).Error)
	assert.Equal(t, f.Student.ID, payment.StudentID)
	assert.Equal(t, f.Room.Price, payment.Amount)
	assert.Equal(t, types.PAYMENT_PENDING, payment.Status)
}

func TestApprovalSkipsExistingPayment(t *testing.T) {
	d := newTestDB(t)
	f := seedRoom(t, d, 2)
	tracker := payments.NewTracker(d)
	ledger := newTestLedger(d, tracker)

	booked, err := ledger.CreateBooking(f.Room.ID, f.Student.ID, types.BOOKING_SHARED, time.Time{}, time.Time{})
	require.Nil(t, err)

	_, err = tracker.CreatePendingPayment(d, booked.ID, f.Student.ID, f.Room.Price, time.Now())
	require.Nil(t, err)

	_, err = ledger.Transition(booked.ID, Actor{ID: f.Owner.ID, Role: types.ROLE_OWNER}, types.BOOKING_APPROVED)
	require.Nil(t, err)

	var count int64
	require.Nil(t, d.Model(&models.Payment{}).Where(&models.Payment{BookingID: booked.ID}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// brokenTracker records the payment through the caller's transaction
// and then fails, the worst case for partial state.
type brokenTracker struct {
	tracker *payments.Tracker
}

func (b *brokenTracker) PaymentExists(tx *gorm.DB, bookingID uint) (bool, error) {
	return b.tracker.PaymentExists(tx, bookingID)
}

func (b *brokenTracker) CreatePendingPayment(tx *gorm.DB, bookingID, studentID uint, amount float32, dueDate time.Time) (*models.Payment, error) {
	if _, err := b.tracker.CreatePendingPayment(tx, bookingID, studentID, amount, dueDate); err != nil {
		return nil, err
	}
	return nil, errors.New("payment store unavailable")
}

func TestApprovalFailureLeavesNoPartialState(t *testing.T) {
	d := newTestDB(t)
	f := seedRoom(t, d, 2)
	ledger := newTestLedger(d, &brokenTracker{tracker: payments.NewTracker(d)})

	booked, err := ledger.CreateBooking(f.Room.ID, f.Student.ID, types.BOOKING_SHARED, time.Time{}, time.Time{})
	require.Nil(t, err)

	_, err = ledger.Transition(booked.ID, Actor{ID: f.Owner.ID, Role: types.ROLE_OWNER}, types.BOOKING_APPROVED)
	require.NotNil(t, err)

	// the failed approval rolls back both the status write and the
	// payment written through the same transaction
	var current models.Booking
	require.Nil(t, d.First(&current, booked.ID).Error)
	assert.Equal(t, types.BOOKING_PENDING, current.Status)

	var count int64
	require.Nil(t, d.Model(&models.Payment{}).Where(&models.Payment{BookingID: booked.ID}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCancellationFreesSlot(t *testing.T) {
	d := newTestDB(t)
	f := seedRoom(t, d, 1)
	ledger := newTestLedger(d, payments.NewTracker(d))

	booked, err := ledger.CreateBooking(f.Room.ID, f.Student.ID, types.BOOKING_SHARED, time.Time{}, time.Time{})
	require.Nil(t, err)

	var room models.Room
	require.Nil(t, d.First(&room, f.Room.ID).Error)
	assert.Equal(t, types.ROOM_OCCUPIED, room.Status)

	_, err = ledger.CreateBooking(f.Room.ID, f.Student.ID, types.BOOKING_SHARED, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrRoomFull)

	_, err = ledger.Transition(booked.ID, Actor{ID: f.Student.ID, Role: types.ROLE_STUDENT}, types.BOOKING_CANCELLED)
	require.Nil(t, err)

	require.Nil(t, d.First(&room, f.Room.ID).Error)
	assert.Equal(t, types.ROOM_VACANT, room.Status)

	_, err = ledger.CreateBooking(f.Room.ID, f.Student.ID, types.BOOKING_SHARED, time.Time{}, time.Time{})
	assert.Nil(t, err)
}

func TestComplete(t *testing.T) {
	d := newTestDB(t)
	f := seedRoom(t, d, 1)
	ledger := newTestLedger(d, payments.NewTracker(d))

	booked, err := ledger.CreateBooking(f.Room.ID, f.Student.ID, types.BOOKING_SHARED, time.Time{}, time.Time{})
	require.Nil(t, err)

	// checkout requires an approved booking
	_, err = ledger.Complete(booked.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = ledger.Transition(booked.ID, Actor{ID: f.Owner.ID, Role: types.ROLE_OWNER}, types.BOOKING_APPROVED)
	require.Nil(t, err)

	updated, err := ledger.Complete(booked.ID)
	require.Nil(t, err)
	assert.Equal(t, types.BOOKING_COMPLETED, updated.Status)

	var room models.Room
	require.Nil(t, d.First(&room, f.Room.ID).Error)
	assert.Equal(t, types.ROOM_VACANT, room.Status)

	_, err = ledger.Complete(9999)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
