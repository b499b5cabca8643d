package booking

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrRoomFull          = errors.New("room has no free slots")
	ErrWholeRoomConflict = errors.New("room is claimed by a whole-room booking")
	ErrInvalidTransition = errors.New("booking status transition not allowed")
	ErrUnauthorized      = errors.New("actor is not allowed to perform this transition")
	// ErrConcurrencyConflict is raised when the post-insert capacity
	// re-check detects a race; callers of CreateBooking see ErrRoomFull.
	ErrConcurrencyConflict = errors.New("capacity exceeded by concurrent booking")
)
