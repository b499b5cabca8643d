package boot

import (
	"dbs/src/booking"
	"dbs/src/common"
	"dbs/src/config"
	"dbs/src/db"
	"dbs/src/lib"
	"dbs/src/models"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Dorm{},
		&models.Room{},
		&models.Booking{},
		&models.Payment{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler registers the expiry sweep on its configured cadence
// plus an hourly full reconcile, then starts the scheduler.
func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sweeper := booking.NewSweeper(db.GetDb())
	j, err := sched.NewJob(
		gocron.DurationJob(config.SweepInterval()),
		gocron.NewTask(func() {
			report, err := sweeper.Sweep()
			if err != nil {
				log.Printf("Error running sweep: %s\n", err.Error())
				return
			}
			for _, res := range report.Results {
				if res.Error != "" {
					continue
				}
				go models.BookingStatusProducer(res.BookingID, map[string]any{
					"id":     res.BookingID,
					"status": string(res.To),
					"reason": "payment window elapsed",
				})
			}
		}),
	)
	if err != nil {
		log.Printf("Error scheduling sweep job: %s\n", err.Error())
		return
	}
	log.Printf("Sweep job: %s\n", j.ID().String())

	rid, err := lib.CreateCronJob(func() {
		if err := booking.ReconcileAll(db.GetDb()); err != nil {
			log.Printf("Error on reconcile pass: %s\n", err.Error())
		}
	}, 1*time.Hour)
	if err != nil {
		log.Printf("Error scheduling reconcile job: %s\n", err.Error())
	} else {
		log.Printf("Reconcile job: %s\n", *rid)
	}
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

func InitBroker() {
	go lib.KafkaCreateTopics("booking-events")
	go common.BookingEventsConsumer()
}
