// Package repository holds the persistence layer for time slots and reservations.
// Every backend (postgres, mongo, memory) implements the same two interfaces and
// reports failures through the sentinel errors below so that services can map
// them without knowing which storage engine is in use.
package repository

import (
	"context"
	"errors"

	"github.com/bookabite/reservations/internal/domain"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
	// ErrInsufficientCapacity is returned by IncrementBooked when the conditional
	// update did not match because the slot lacks free seats.
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	// ErrSeatsBelowBooked is returned when an update would set total seats
	// below the seats already booked.
	ErrSeatsBelowBooked = errors.New("total seats below booked seats")
	// ErrVersionConflict is returned when an optimistic save finds a different version.
	ErrVersionConflict = errors.New("version conflict")
)

type TimeSlotRepository interface {
	Find(ctx context.Context, restaurantID, date, time string) (*domain.TimeSlot, error)
	GetByID(ctx context.Context, id string) (*domain.TimeSlot, error)
	ListByRestaurantDate(ctx context.Context, restaurantID, date string) ([]domain.TimeSlot, error)
	Create(ctx context.Context, slot *domain.TimeSlot) error
	Update(ctx context.Context, restaurantID, date, time string, patch domain.TimeSlotPatch) (*domain.TimeSlot, error)
	// IncrementBooked adds delta to the slot's booked seats in one indivisible
	// operation. A positive delta only applies when the result stays within
	// total seats; otherwise the current slot is returned with
	// ErrInsufficientCapacity. A negative delta never drops below zero.
	IncrementBooked(ctx context.Context, slotID string, delta int) (*domain.TimeSlot, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	CodeExists(ctx context.Context, code string) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	GetByConfirmationCode(ctx context.Context, code string) (*domain.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error)
	ListByRestaurant(ctx context.Context, restaurantID string, filter domain.ReservationFilter) ([]domain.Reservation, error)
	// Update saves the mutable fields of reservation if the stored version
	// equals reservation.Version, then increments the version on both sides.
	Update(ctx context.Context, reservation *domain.Reservation) error
	Delete(ctx context.Context, id string) error
	CompleteBefore(ctx context.Context, date, time string) ([]domain.Reservation, error)
}
