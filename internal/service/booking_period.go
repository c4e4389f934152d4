package service

import (
	"time"

	"shareit/internal/models"
)

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2) share
// an instant. Containment in either direction counts as overlap; touching
// endpoints do not.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// firstConflict returns the first non-rejected booking overlapping [start,end).
func firstConflict(start, end time.Time, existing []models.Booking) *models.Booking {
	for i := range existing {
		b := &existing[i]
		if b.Status == models.StatusRejected {
			continue
		}
		if Overlaps(start, end, b.Start, b.End) {
			return b
		}
	}
	return nil
}

// lastAndNext picks the latest booking started at or before now and the
// earliest one starting after now.
func lastAndNext(bookings []models.Booking, now time.Time) (last, next *models.Booking) {
	for i := range bookings {
		b := &bookings[i]
		if b.Status == models.StatusRejected {
			continue
		}
		if !b.Start.After(now) {
			if last == nil || b.Start.After(last.Start) {
				last = b
			}
			continue
		}
		if next == nil || b.Start.Before(next.Start) {
			next = b
		}
	}
	return last, next
}
