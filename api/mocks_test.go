package api

import (
	"context"
	"time"

	"github.com/bookabite/reservations/internal/auth"
	"github.com/bookabite/reservations/internal/domain"
	"github.com/bookabite/reservations/internal/service/reservation"
	"github.com/bookabite/reservations/internal/service/timeslot"
	"github.com/stretchr/testify/mock"
)

// MockReservationUseCase is a mock implementation of reservation.ReservationUseCase
type MockReservationUseCase struct {
	mock.Mock
}

func (m *MockReservationUseCase) CreateReservation(ctx context.Context, input reservation.CreateReservationInput) (*domain.Reservation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) CancelReservation(ctx context.Context, id string, requester auth.Identity, reason string) (*domain.Reservation, error) {
	args := m.Called(ctx, id, requester, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) ListForUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) GetByConfirmationCode(ctx context.Context, code string, requester auth.Identity) (*domain.Reservation, error) {
	args := m.Called(ctx, code, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) ListForRestaurant(ctx context.Context, restaurantID string, filter domain.ReservationFilter, requester auth.Identity) ([]domain.Reservation, error) {
	args := m.Called(ctx, restaurantID, filter, requester)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) UpdateDetails(ctx context.Context, id string, requester auth.Identity, input reservation.UpdateDetailsInput) (*domain.Reservation, error) {
	args := m.Called(ctx, id, requester, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) CompletePast(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

type MockTimeSlotUseCase struct {
	mock.Mock
}

func (m *MockTimeSlotUseCase) AddTimeslot(ctx context.Context, requester auth.Identity, input timeslot.AddTimeslotInput) (*domain.TimeSlot, error) {
	args := m.Called(ctx, requester, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeSlot), args.Error(1)
}

func (m *MockTimeSlotUseCase) ListTimeslots(ctx context.Context, restaurantID, date string) ([]domain.TimeSlot, error) {
	args := m.Called(ctx, restaurantID, date)
	return args.Get(0).([]domain.TimeSlot), args.Error(1)
}

func (m *MockTimeSlotUseCase) UpdateTimeslot(ctx context.Context, requester auth.Identity, input timeslot.UpdateTimeslotInput) (*domain.TimeSlot, error) {
	args := m.Called(ctx, requester, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeSlot), args.Error(1)
}

func (m *MockTimeSlotUseCase) GetAvailability(ctx context.Context, restaurantID, date, slotTime string) (*domain.TimeSlot, error) {
	args := m.Called(ctx, restaurantID, date, slotTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeSlot), args.Error(1)
}
