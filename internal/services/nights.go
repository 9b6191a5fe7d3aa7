package services

import (
	"math"
	"time"

	"github.com/jinzhu/now"
)

// NightCounter returns the number of billable nights for a stay, never less than one
type NightCounter func(checkIn, checkOut time.Time) int

// ElapsedNights counts whole 24-hour periods between check-in and check-out
func ElapsedNights(checkIn, checkOut time.Time) int {
	nights := int(checkOut.Sub(checkIn) / (24 * time.Hour))
	if nights < 1 {
		return 1
	}
	return nights
}

// CalendarNights counts calendar dates crossed in the hotel's time zone, so a
// late check-in and an early check-out still bill the night between them.
func CalendarNights(loc *time.Location) NightCounter {
	return func(checkIn, checkOut time.Time) int {
		start := now.With(checkIn.In(loc)).BeginningOfDay()
		end := now.With(checkOut.In(loc)).BeginningOfDay()
		// DST days are 23 or 25 hours long
		nights := int(math.Round(end.Sub(start).Hours() / 24))
		if nights < 1 {
			return 1
		}
		return nights
	}
}

// NewNightCounter selects a counting mode: "calendar" or "elapsed" (default)
func NewNightCounter(mode string, loc *time.Location) NightCounter {
	if mode == "calendar" {
		if loc == nil {
			loc = time.UTC
		}
		return CalendarNights(loc)
	}
	return ElapsedNights
}
