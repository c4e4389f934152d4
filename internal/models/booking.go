package models

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

type Booking struct {
	ID       int64
	BookerID int64
	ItemID   int64
	Start    time.Time
	End      time.Time
	Status   BookingStatus
}

// BookingState selects a view over a user's bookings relative to now.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// ParseBookingState accepts any letter case. An empty value means ALL.
func ParseBookingState(raw string) (BookingState, error) {
	s := BookingState(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case "":
		return StateAll, nil
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return s, nil
	default:
		return "", fmt.Errorf("Unknown state: %s", raw)
	}
}

type NewBookingDTO struct {
	ItemID int64     `json:"itemId"`
	Start  Timestamp `json:"start"`
	End    Timestamp `json:"end"`
}

type BookingDTO struct {
	ID     int64         `json:"id"`
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Status BookingStatus `json:"status"`
	Booker UserDTO       `json:"booker"`
	Item   ItemDTO       `json:"item"`
}

type ShortBookingDTO struct {
	ID       int64         `json:"id"`
	BookerID int64         `json:"bookerId"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Status   BookingStatus `json:"status"`
}
