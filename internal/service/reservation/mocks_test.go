package reservation

import (
	"context"

	"github.com/bookabite/reservations/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func (m *MockReservationRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetByConfirmationCode(ctx context.Context, code string) (*domain.Reservation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListByRestaurant(ctx context.Context, restaurantID string, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	args := m.Called(ctx, restaurantID, filter)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func (m *MockReservationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReservationRepository) CompleteBefore(ctx context.Context, date, slotTime string) ([]domain.Reservation, error) {
	args := m.Called(ctx, date, slotTime)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

type MockTimeSlotRepository struct {
	mock.Mock
}

func (m *MockTimeSlotRepository) Find(ctx context.Context, restaurantID, date, slotTime string) (*domain.TimeSlot, error) {
	args := m.Called(ctx, restaurantID, date, slotTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeSlot), args.Error(1)
}

func (m *MockTimeSlotRepository) GetByID(ctx context.Context, id string) (*domain.TimeSlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeSlot), args.Error(1)
}

func (m *MockTimeSlotRepository) ListByRestaurantDate(ctx context.Context, restaurantID, date string) ([]domain.TimeSlot, error) {
	args := m.Called(ctx, restaurantID, date)
	return args.Get(0).([]domain.TimeSlot), args.Error(1)
}

func (m *MockTimeSlotRepository) Create(ctx context.Context, slot *domain.TimeSlot) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *MockTimeSlotRepository) Update(ctx context.Context, restaurantID, date, slotTime string, patch domain.TimeSlotPatch) (*domain.TimeSlot, error) {
	args := m.Called(ctx, restaurantID, date, slotTime, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeSlot), args.Error(1)
}

func (m *MockTimeSlotRepository) IncrementBooked(ctx context.Context, slotID string, delta int) (*domain.TimeSlot, error) {
	args := m.Called(ctx, slotID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeSlot), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Invalidate(ctx context.Context, restaurantID, date, slotTime string) error {
	args := m.Called(ctx, restaurantID, date, slotTime)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}
