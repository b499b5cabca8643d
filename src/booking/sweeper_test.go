package booking

import (
	"dbs/src/models"
	"dbs/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepCancelsExpiredPending(t *testing.T) {
	d := newTestDB(t)
	f := seedRoom(t, d, 1)
	sweeper := NewSweeper(d)

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	expired := models.Booking{RoomID: f.Room.ID, StudentID: f.Student.ID, BookingType: types.BOOKING_SHARED, Status: types.BOOKING_PENDING, ExpiresAt: &past}
	require.Nil(t, d.Create(&expired).Error)
	fresh := models.Booking{RoomID: f.Room.ID, StudentID: f.Student.ID, BookingType: types.BOOKING_SHARED, Status: types.BOOKING_PENDING, ExpiresAt: &future}
	require.Nil(t, d.Create(&fresh).Error)
	approved := models.Booking{RoomID: f.Room.ID, StudentID: f.Student.ID, BookingType: types.BOOKING_SHARED, Status: types.BOOKING_APPROVED, ExpiresAt: &past}
	require.Nil(t, d.Create(&approved).Error)
	noExpiry := models.Booking{RoomID: f.Room.ID, StudentID: f.Student.ID, BookingType: types.BOOKING_SHARED, Status: types.BOOKING_PENDING}
	require.Nil(t, d.Create(&noExpiry).Error)

	report, err := sweeper.Sweep()
	require.Nil(t, err)
	assert.Equal(t, 1, report.Expired)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, report.Results, 1)
	assert.Equal(t, expired.ID, report.Results[0].BookingID)
	assert.Equal(t, types.BOOKING_PENDING, report.Results[0].From)
	assert.Equal(t, types.BOOKING_CANCELLED, report.Results[0].To)
	assert.Equal(t, []uint{f.Room.ID}, report.RoomIDs)

	statusOf := func(id uint) types.BookingStatus {
		var b models.Booking
		require.Nil(t, d.First(&b, id).Error)
		return b.Status
	}
	assert.Equal(t, types.BOOKING_CANCELLED, statusOf(expired.ID))
	assert.Equal(t, types.BOOKING_PENDING, statusOf(fresh.ID))
	assert.Equal(t, types.BOOKING_APPROVED, statusOf(approved.ID))
	assert.Equal(t, types.BOOKING_PENDING, statusOf(noExpiry.ID))
}

func TestSweepIsIdempotent(t *testing.T) {
	d := newTestDB(t)
	f := seedRoom(t, d, 2)
	sweeper := NewSweeper(d)

	past := time.Now().Add(-time.Minute)
	expired := models.Booking{RoomID: f.Room.ID, StudentID: f.Student.ID, BookingType: types.BOOKING_SHARED, Status: types.BOOKING_PENDING, ExpiresAt: &past}
	require.Nil(t, d.Create(&expired).Error)

	report, err := sweeper.Sweep()
	require.Nil(t, err)
	assert.Equal(t, 1, report.Expired)

	report, err = sweeper.Sweep()
	require.Nil(t, err)
	assert.Equal(t, 0, report.Expired)
	assert.Equal(t, 0, report.Failed)
	assert.Empty(t, report.Results)
}

func TestSweepReconcilesRoom(t *testing.T) {
	d := newTestDB(t)
	f := seedRoom(t, d, 1)
	sweeper := NewSweeper(d)

	past := time.Now().Add(-time.Minute)
	expired := models.Booking{RoomID: f.Room.ID, StudentID: f.Student.ID, BookingType: types.BOOKING_SHARED, Status: types.BOOKING_PENDING, ExpiresAt: &past}
	require.Nil(t, d.Create(&expired).Error)
	require.Nil(t, d.Model(&models.Room{}).Where(&models.Room{ID: f.Room.ID}).Update("status", types.ROOM_OCCUPIED).Error)

	_, err := sweeper.Sweep()
	require.Nil(t, err)

	var room models.Room
	require.Nil(t, d.First(&room, f.Room.ID).Error)
	assert.Equal(t, types.ROOM_VACANT, room.Status)
}

func TestSweepEmptyLedger(t *testing.T) {
	d := newTestDB(t)
	seedRoom(t, d, 1)
	sweeper := NewSweeper(d)

	report, err := sweeper.Sweep()
	require.Nil(t, err)
	assert.Equal(t, 0, report.Expired)
	assert.Empty(t, report.RoomIDs)
}
