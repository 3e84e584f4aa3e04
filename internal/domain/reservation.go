package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
)

const (
	MaxSpecialRequestLength     = 500
	MaxCancellationReasonLength = 500
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCancelled, ReservationStatusCompleted:
		return true
	}
	return false
}

// HoldsSeats reports whether a reservation in this status counts towards its slot's booked seats.
func (s ReservationStatus) HoldsSeats() bool {
	return s != ReservationStatusCancelled
}

type Reservation struct {
	ID                 string            `json:"id" bson:"_id"`
	ConfirmationCode   string            `json:"confirmationCode" bson:"confirmationCode"`
	UserID             string            `json:"userId" bson:"userId"`
	RestaurantID       string            `json:"restaurantId" bson:"restaurantId"`
	TimeSlotID         string            `json:"timeSlotId" bson:"timeSlotId"`
	Date               string            `json:"date" bson:"date"`
	Time               string            `json:"time" bson:"time"`
	Guests             int               `json:"guests" bson:"guests"`
	CustomerName       string            `json:"customerName,omitempty" bson:"customerName,omitempty"`
	CustomerEmail      string            `json:"customerEmail,omitempty" bson:"customerEmail,omitempty"`
	CustomerPhone      string            `json:"customerPhone,omitempty" bson:"customerPhone,omitempty"`
	Status             ReservationStatus `json:"status" bson:"status"`
	SpecialRequest     string            `json:"specialRequest,omitempty" bson:"specialRequest,omitempty"`
	CancellationReason string            `json:"cancellationReason,omitempty" bson:"cancellationReason,omitempty"`
	CancelledAt        *time.Time        `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
	Version            int               `json:"version" bson:"version"`
	CreatedAt          time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// ReservationFilter narrows restaurant-side listings. Empty fields match everything.
type ReservationFilter struct {
	Date   string
	Status ReservationStatus
}
