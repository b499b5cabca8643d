package booking

import (
	"dbs/src/models"
	"dbs/src/types"
	"errors"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate takes a row lock on the selected rows. sqlite has no
// row locks; its single-writer file lock serializes writes instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{
		Strength: "UPDATE",
		Table:    clause.Table{Name: clause.CurrentTable},
	})
}

// Reconcile recomputes a room's derived status from its active
// bookings: occupied once the active count reaches capacity or a
// whole-room booking holds the room, vacant otherwise. It is a pure
// recomputation: re-running it, or racing it with itself, converges on
// the same state. A missing room is logged and skipped rather than
// treated as an error.
func Reconcile(tx *gorm.DB, roomID uint) error {
	var room models.Room
	if err := tx.
		Where(&models.Room{ID: roomID}).
		First(&room).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Reconcile: room %d not found, skipping\n", roomID)
			return nil
		}
		return err
	}
	active, whole, err := countActive(tx, roomID)
	if err != nil {
		return err
	}
	status := types.ROOM_VACANT
	if whole > 0 || active >= int64(room.Capacity) {
		status = types.ROOM_OCCUPIED
	}
	if room.Status == status {
		return nil
	}
	return tx.
		Model(&models.Room{}).
		Where(&models.Room{ID: roomID}).
		Update("status", status).
		Error
}

// ReconcileAll runs the single-room reconcile over every room, one
// transaction each so a bad room does not abort the pass. It clears
// stale statuses left behind by partial failures.
func ReconcileAll(db *gorm.DB) error {
	var ids []uint
	if err := db.
		Model(&models.Room{}).
		Pluck("id", &ids).
		Error; err != nil {
		return err
	}
	var failed int
	for _, id := range ids {
		err := db.Transaction(func(tx *gorm.DB) error {
			return Reconcile(tx, id)
		})
		if err != nil {
			log.Printf("ReconcileAll: room %d failed: %s\n", id, err.Error())
			failed++
		}
	}
	if failed > 0 {
		return errors.New("reconcile pass completed with failures")
	}
	return nil
}
