package common

import (
	"dbs/src/lib"
	"dbs/src/types"
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// BookingEventsConsumer listens for booking lifecycle events and mails
// the student on approval and cancellation.
func BookingEventsConsumer() {
	topic := "booking-events"
	log.Printf("%s: Listening for messages...", topic)
	lib.KafkaConsume(topic, "booking-notifications", func(value []byte) {
		var payload types.JSONB
		if err := json.Unmarshal(value, &payload); err != nil {
			log.Printf("[%s] Error deserializing JSON: %s\n", topic, err.Error())
			return
		}
		status, _ := payload["status"].(string)
		email, _ := payload["email"].(string)
		id, _ := payload["id"].(float64)
		if email == "" {
			log.Printf("[%s] message without recipient, skipping\n", topic)
			return
		}

		var subject, body string
		switch types.BookingStatus(status) {
		case types.BOOKING_APPROVED:
			subject = fmt.Sprintf("Booking #%d approved", uint(id))
			body = "Your booking request has been approved. A payment record has been created; please settle it before the due date."
		case types.BOOKING_CANCELLED:
			subject = fmt.Sprintf("Booking #%d cancelled", uint(id))
			body = "Your booking has been cancelled. If this was due to an expired payment window you can submit a new request."
		case types.BOOKING_REJECTED:
			subject = fmt.Sprintf("Booking #%d rejected", uint(id))
			body = "Your booking request has been rejected by the dorm owner."
		default:
			return
		}
		if err := lib.SendMail(&lib.SendMailInput{
			From:     os.Getenv("MAIL_FROM"),
			FromName: "Dorm Bookings",
			To:       []string{email},
			Subject:  subject,
			Body:     body,
		}); err != nil {
			log.Printf("[%s] Could not send notification to %s: %s\n", topic, email, err.Error())
		}
	})
}
