package booking

import (
	"dbs/src/models"
	"dbs/src/types"
	"errors"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"
)

type SweepResult struct {
	BookingID uint                `json:"booking_id"`
	RoomID    uint                `json:"room_id"`
	From      types.BookingStatus `json:"from"`
	To        types.BookingStatus `json:"to"`
	Error     string              `json:"error,omitempty"`
}

type SweepReport struct {
	Expired int           `json:"expired"`
	Failed  int           `json:"failed"`
	Results []SweepResult `json:"results,omitempty"`
	RoomIDs []uint        `json:"room_ids,omitempty"`
}

// Sweeper cancels pending bookings whose payment window has elapsed.
// Transitions here are system-initiated and bypass the actor checks.
type Sweeper struct {
	db *gorm.DB
}

func NewSweeper(db *gorm.DB) *Sweeper {
	return &Sweeper{db: db}
}

// Sweep cancels every timed-out pending booking, one transaction per
// booking so a single failure cannot abort the batch, and reconciles
// each affected room inside the same transaction. Running it again
// with no new expirations is a no-op.
func (s *Sweeper) Sweep() (*SweepReport, error) {
	now := time.Now()
	var expired []models.Booking
	if err := s.db.
		Model(&models.Booking{}).
		Where("status = ?", types.BOOKING_PENDING).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Order("id asc").
		Find(&expired).
		Error; err != nil {
		return nil, err
	}

	report := &SweepReport{}
	rooms := map[uint]bool{}
	for _, b := range expired {
		res := SweepResult{
			BookingID: b.ID,
			RoomID:    b.RoomID,
			From:      b.Status,
			To:        types.BOOKING_CANCELLED,
		}
		cancelled := false
		err := s.db.Transaction(func(tx *gorm.DB) error {
			// room lock first, same order as CreateBooking, so sweep
			// and create never interleave on a room
			var room models.Room
			if err := lockForUpdate(tx).
				Where(&models.Room{ID: b.RoomID}).
				First(&room).
				Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			var current models.Booking
			if err := tx.
				Where(&models.Booking{ID: b.ID}).
				First(&current).
				Error; err != nil {
				return err
			}
			if current.Status != types.BOOKING_PENDING || current.ExpiresAt == nil || current.ExpiresAt.After(now) {
				// somebody else handled it between select and cancel
				return nil
			}
			if err := tx.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: b.ID}).
				Update("status", types.BOOKING_CANCELLED).
				Error; err != nil {
				return err
			}
			cancelled = true
			return Reconcile(tx, b.RoomID)
		})
		if err != nil {
			log.Printf("Sweep: failed to expire booking %d: %s\n", b.ID, err.Error())
			res.Error = err.Error()
			report.Failed++
			report.Results = append(report.Results, res)
			continue
		}
		if cancelled {
			report.Expired++
			report.Results = append(report.Results, res)
			rooms[b.RoomID] = true
		}
	}

	for id := range rooms {
		report.RoomIDs = append(report.RoomIDs, id)
	}
	sort.Slice(report.RoomIDs, func(i, j int) bool { return report.RoomIDs[i] < report.RoomIDs[j] })
	if report.Expired > 0 || report.Failed > 0 {
		log.Printf("Sweep: expired=%d failed=%d rooms=%v\n", report.Expired, report.Failed, report.RoomIDs)
	}
	return report, nil
}
