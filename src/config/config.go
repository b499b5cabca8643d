package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"
const DATE_PARSE_FORMAT = "2006-01-02"

// ExpiryWindow is how long a student has to confirm a pending booking
// before the sweeper cancels it.
func ExpiryWindow() time.Duration {
	v := os.Getenv("BOOKING_EXPIRY_WINDOW")
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 2 * time.Hour
	}
	return d
}

// DefaultLeaseMonths is applied when a booking request carries no end date.
func DefaultLeaseMonths() int {
	v := os.Getenv("DEFAULT_LEASE_MONTHS")
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 6
	}
	return n
}

func SweepInterval() time.Duration {
	v := os.Getenv("SWEEP_INTERVAL")
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}
