package domain

import "time"

type ReservationEventType string

const (
	EventReservationCreated   ReservationEventType = "reservation_created"
	EventReservationCancelled ReservationEventType = "reservation_cancelled"
	EventReservationCompleted ReservationEventType = "reservation_completed"
)

// ReservationEvent is published after a reservation changes state. It is keyed
// by ReservationID on every transport.
type ReservationEvent struct {
	Type             ReservationEventType `json:"type"`
	ReservationID    string               `json:"reservationId"`
	ConfirmationCode string               `json:"confirmationCode"`
	UserID           string               `json:"userId"`
	RestaurantID     string               `json:"restaurantId"`
	Date             string               `json:"date"`
	Time             string               `json:"time"`
	Guests           int                  `json:"guests"`
	Status           ReservationStatus    `json:"status"`
	CustomerEmail    string               `json:"customerEmail"`
	OccurredAt       time.Time            `json:"occurredAt"`
}

func NewReservationEvent(eventType ReservationEventType, res *Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:             eventType,
		ReservationID:    res.ID,
		ConfirmationCode: res.ConfirmationCode,
		UserID:           res.UserID,
		RestaurantID:     res.RestaurantID,
		Date:             res.Date,
		Time:             res.Time,
		Guests:           res.Guests,
		Status:           res.Status,
		CustomerEmail:    res.CustomerEmail,
		OccurredAt:       at.UTC(),
	}
}
