package main

import (
	"dbs/src/booking"
	"dbs/src/config"
	"dbs/src/db"
	"dbs/src/models"
	"dbs/src/payments"
	"dbs/src/types"
	"dbs/src/utils"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func newLedger() *booking.Ledger {
	return booking.NewLedger(db.GetDb(), payments.NewTracker(db.GetDb()))
}

func bookingErrorResponse(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrRoomNotFound), errors.Is(err, booking.ErrBookingNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrRoomFull), errors.Is(err, booking.ErrWholeRoomConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": "this room is no longer available"})
	case errors.Is(err, booking.ErrInvalidTransition):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrUnauthorized):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	default:
		log.Printf("Could not complete request: %s\n", err.Error())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please retry later"})
	}
}

func transitionHandler(newStatus types.BookingStatus) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		actor := booking.Actor{ID: ctx.GetUint("id"), Role: ctx.GetString("role")}
		updated, err := newLedger().Transition(params.ID, actor, newStatus)
		if err != nil {
			bookingErrorResponse(ctx, err)
			return
		}
		go func() {
			var student models.User
			db := db.GetDb()
			if err := db.
				Model(&models.User{}).
				Where(&models.User{ID: updated.StudentID}).
				First(&student).
				Error; err != nil {
				log.Printf("Could not load student for Booking [%d]: %s\n", updated.ID, err.Error())
				return
			}
			models.BookingStatusProducer(updated.ID, map[string]any{
				"id":     updated.ID,
				"status": string(updated.Status),
				"email":  student.Email,
			})
		}()
		ctx.JSON(http.StatusOK, gin.H{"data": updated})
	}
}

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			var data []models.Booking
			var err error
			switch role {
			case types.ROLE_OWNER:
				data, err = utils.GetDormBookings(userId)
			case types.ROLE_ADMIN:
				db := db.GetDb()
				err = db.
					Model(&models.Booking{}).
					Preload("Room").
					Preload("Student").
					Order("created_at DESC").
					Limit(100).
					Find(&data).
					Error
			default:
				data, err = utils.GetOwnBookings(userId)
			}
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var booked models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: params.ID}).
				Preload("Room").
				Preload("Room.Dorm").
				Preload("Student").
				First(&booked).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booked})
		}).
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			startDate, err := time.Parse(config.DATE_PARSE_FORMAT, body.StartDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var endDate time.Time
			if body.EndDate != "" {
				endDate, err = time.Parse(config.DATE_PARSE_FORMAT, body.EndDate)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
			}
			studentId := ctx.GetUint("id")
			created, err := newLedger().CreateBooking(body.RoomID, studentId, types.BookingType(body.Type), startDate, endDate)
			if err != nil {
				bookingErrorResponse(ctx, err)
				return
			}
			email := ctx.GetString("email")
			go models.BookingStatusProducer(created.ID, map[string]any{
				"id":     created.ID,
				"status": string(created.Status),
				"email":  email,
			})
			ctx.JSON(http.StatusCreated, gin.H{"data": created})
		}).
		PUT("/bookings/:id/approve", transitionHandler(types.BOOKING_APPROVED)).
		PUT("/bookings/:id/reject", transitionHandler(types.BOOKING_REJECTED)).
		PUT("/bookings/:id/cancel", transitionHandler(types.BOOKING_CANCELLED)).
		GET("/payments", func(ctx *gin.Context) {
			studentId := ctx.GetUint("id")
			tracker := payments.NewTracker(db.GetDb())
			data, err := tracker.GetStudentPayments(studentId)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": data, "count": len(data)})
		})
	return g
}
