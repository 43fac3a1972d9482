package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusRejected  ReservationStatus = "REJECTED"
)

// ActiveStatuses count against slot capacity.
var ActiveStatuses = []ReservationStatus{StatusPending, StatusConfirmed}

// IsActive reports whether the status occupies a slot.
func (s ReservationStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal reports whether no further transition is allowed.
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusRejected
}

// Valid reports whether s is a known status.
func (s ReservationStatus) Valid() bool {
	return s.IsActive() || s.IsTerminal()
}

type Reservation struct {
	ID            int64             `json:"id"`
	Date          string            `json:"date"`
	Time          string            `json:"time"`
	PartySize     int               `json:"party_size"`
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone,omitempty"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	Status        ReservationStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
