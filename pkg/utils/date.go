package utils

import (
	"fmt"
	"log"
	"time"
)

// GetMarketTimeLocation returns the exchange timezone for the US-listed
// instruments this service tracks.
func GetMarketTimeLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return loc
}

func TimeNowMarket() time.Time {
	return time.Now().In(GetMarketTimeLocation())
}

// TruncateToDay strips the clock part, keeping the date in its location.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func PrettyDate(date time.Time) string {
	return fmt.Sprintf("%02d %s %d - %02d:%02d %s",
		date.Day(),
		date.Month().String(),
		date.Year(),
		date.Hour(),
		date.Minute(),
		date.Format("MST"),
	)
}

// IsMarketOpen reports whether t falls inside regular trading hours
// (09:30-16:00, Monday to Friday) in t's own location.
func IsMarketOpen(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minutes := t.Hour()*60 + t.Minute()
	return minutes >= 9*60+30 && minutes < 16*60
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
