package reservation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bookabite/reservations/internal/auth"
	"github.com/bookabite/reservations/internal/domain"
	"github.com/bookabite/reservations/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func fixedCodes(codes ...string) CodeGenerator {
	i := 0
	return func() (string, error) {
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
}

func newTestService(reservations *MockReservationRepository, slots *MockTimeSlotRepository, cache Cache, producer Producer, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(reservations, slots, cache, producer, zap.NewNop(), opts...)
}

func validInput() CreateReservationInput {
	return CreateReservationInput{
		UserID:        "u1",
		RestaurantID:  "r1",
		Date:          "2026-11-01",
		Time:          "19:00",
		Guests:        2,
		CustomerEmail: "guest@example.com",
	}
}

func slotWith(total, booked int) *domain.TimeSlot {
	return &domain.TimeSlot{ID: "s1", RestaurantID: "r1", Date: "2026-11-01", Time: "19:00", TotalSeats: total, BookedSeats: booked}
}

func storedReservation(status domain.ReservationStatus) *domain.Reservation {
	return &domain.Reservation{
		ID:               "res-1",
		ConfirmationCode: "ABCD2345",
		UserID:           "u1",
		RestaurantID:     "r1",
		TimeSlotID:       "s1",
		Date:             "2026-11-01",
		Time:             "19:00",
		Guests:           2,
		Status:           status,
	}
}

func TestCreateReservation_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateReservationInput)
	}{
		{"missing user", func(in *CreateReservationInput) { in.UserID = "" }},
		{"missing restaurant", func(in *CreateReservationInput) { in.RestaurantID = "" }},
		{"missing date", func(in *CreateReservationInput) { in.Date = "" }},
		{"missing time", func(in *CreateReservationInput) { in.Time = "" }},
		{"bad date", func(in *CreateReservationInput) { in.Date = "01-11-2026" }},
		{"bad time", func(in *CreateReservationInput) { in.Time = "7pm" }},
		{"zero guests", func(in *CreateReservationInput) { in.Guests = 0 }},
		{"negative guests", func(in *CreateReservationInput) { in.Guests = -1 }},
		{"long request", func(in *CreateReservationInput) {
			in.SpecialRequest = strings.Repeat("x", domain.MaxSpecialRequestLength+1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(new(MockReservationRepository), new(MockTimeSlotRepository), nil, nil)
			in := validInput()
			tt.mutate(&in)

			res, err := svc.CreateReservation(context.Background(), in)
			assert.Nil(t, res)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestCreateReservation_SlotNotFound(t *testing.T) {
	slots := new(MockTimeSlotRepository)
	slots.On("Find", mock.Anything, "r1", "2026-11-01", "19:00").Return(nil, repository.ErrNotFound)
	svc := newTestService(new(MockReservationRepository), slots, nil, nil)

	res, err := svc.CreateReservation(context.Background(), validInput())
	assert.Nil(t, res)
	assert.Equal(t, domain.KindSlotNotFound, domain.KindOf(err))
}

func TestCreateReservation_StorageFailureIsGeneric(t *testing.T) {
	slots := new(MockTimeSlotRepository)
	slots.On("Find", mock.Anything, "r1", "2026-11-01", "19:00").Return(nil, errors.New("connection reset by peer"))
	svc := newTestService(new(MockReservationRepository), slots, nil, nil)

	_, err := svc.CreateReservation(context.Background(), validInput())
	require.Error(t, err)
	svcErr := domain.AsError(err)
	assert.Equal(t, domain.KindInternal, svcErr.Kind)
	assert.Equal(t, "internal server error", svcErr.Message)
}

func TestCreateReservation_InsufficientCapacityBeforeInsert(t *testing.T) {
	reservations := new(MockReservationRepository)
	slots := new(MockTimeSlotRepository)
	slots.On("Find", mock.Anything, "r1", "2026-11-01", "19:00").Return(slotWith(10, 8), nil)
	svc := newTestService(reservations, slots, nil, nil)

	in := validInput()
	in.Guests = 3
	_, err := svc.CreateReservation(context.Background(), in)

	svcErr := domain.AsError(err)
	assert.Equal(t, domain.KindInsufficientCapacity, svcErr.Kind)
	assert.Equal(t, 2, svcErr.AvailableSeats)
	assert.Equal(t, "Only 2 seats left", svcErr.Message)
	reservations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReservation_Success(t *testing.T) {
	reservations := new(MockReservationRepository)
	slots := new(MockTimeSlotRepository)
	cache := new(MockCache)
	producer := new(MockProducer)

	slots.On("Find", mock.Anything, "r1", "2026-11-01", "19:00").Return(slotWith(10, 8), nil)
	reservations.On("CodeExists", mock.Anything, "ABCD2345").Return(false, nil)
	reservations.On("Create", mock.Anything, mock.AnythingOfType("*domain.Reservation")).Return(nil)
	slots.On("IncrementBooked", mock.Anything, "s1", 2).Return(slotWith(10, 10), nil)
	cache.On("Invalidate", mock.Anything, "r1", "2026-11-01", "19:00").Return(nil)
	producer.On("Publish", mock.Anything, "reservation-events", mock.Anything, mock.AnythingOfType("domain.ReservationEvent")).Return(nil)
	producer.On("Publish", mock.Anything, "reservation-notifications", mock.Anything, mock.AnythingOfType("domain.ReservationEvent")).Return(nil)

	svc := newTestService(reservations, slots, cache, producer,
		WithCodeGenerator(fixedCodes("abcd2345")),
		WithTopic("reservation-events"),
		WithNotificationsTopic("reservation-notifications"),
	)

	res, err := svc.CreateReservation(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "ABCD2345", res.ConfirmationCode)
	assert.Equal(t, domain.ReservationStatusConfirmed, res.Status)
	assert.Equal(t, "s1", res.TimeSlotID)
	assert.Equal(t, 2, res.Guests)
	assert.NotEmpty(t, res.ID)

	producer.AssertNumberOfCalls(t, "Publish", 2)
	event := producer.Calls[0].Arguments.Get(3).(domain.ReservationEvent)
	assert.Equal(t, res.ID, producer.Calls[0].Arguments.String(2))
	assert.Equal(t, domain.EventReservationCreated, event.Type)
	assert.Equal(t, fixedNow, event.OccurredAt)
	cache.AssertExpectations(t)
	reservations.AssertExpectations(t)
	slots.AssertExpectations(t)
}

func TestCreateReservation_LostRaceDeletesReservation(t *testing.T) {
	reservations := new(MockReservationRepository)
	slots := new(MockTimeSlotRepository)
	cache := new(MockCache)

	slots.On("Find", mock.Anything, "r1", "2026-11-01", "19:00").Return(slotWith(10, 7), nil)
	reservations.On("CodeExists", mock.Anything, mock.Anything).Return(false, nil)
	reservations.On("Create", mock.Anything, mock.AnythingOfType("*domain.Reservation")).Return(nil)
	slots.On("IncrementBooked", mock.Anything, "s1", 2).Return(slotWith(10, 9), repository.ErrInsufficientCapacity)
	reservations.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	svc := newTestService(reservations, slots, cache, nil)

	res, err := svc.CreateReservation(context.Background(), validInput())
	assert.Nil(t, res)
	svcErr := domain.AsError(err)
	assert.Equal(t, domain.KindInsufficientCapacity, svcErr.Kind)
	assert.Equal(t, 1, svcErr.AvailableSeats)
	reservations.AssertCalled(t, "Delete", mock.Anything, mock.AnythingOfType("string"))
	cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateReservation_IncrementFailureDeletesReservation(t *testing.T) {
	reservations := new(MockReservationRepository)
	slots := new(MockTimeSlotRepository)

	slots.On("Find", mock.Anything, "r1", "2026-11-01", "19:00").Return(slotWith(10, 0), nil)
	reservations.On("CodeExists", mock.Anything, mock.Anything).Return(false, nil)
	reservations.On("Create", mock.Anything, mock.AnythingOfType("*domain.Reservation")).Return(nil)
	slots.On("IncrementBooked", mock.Anything, "s1", 2).Return(nil, errors.New("i/o timeout"))
	reservations.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	svc := newTestService(reservations, slots, nil, nil)

	_, err := svc.CreateReservation(context.Background(), validInput())
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	reservations.AssertNumberOfCalls(t, "Delete", 1)
}

func TestCreateReservation_CodeAttemptsExhausted(t *testing.T) {
	reservations := new(MockReservationRepository)
	slots := new(MockTimeSlotRepository)

	slots.On("Find", mock.Anything, "r1", "2026-11-01", "19:00").Return(slotWith(10, 0), nil)
	reservations.On("CodeExists", mock.Anything, mock.Anything).Return(true, nil)

	svc := newTestService(reservations, slots, nil, nil)

	_, err := svc.CreateReservation(context.Background(), validInput())
	assert.Equal(t, domain.KindCodeGeneration, domain.KindOf(err))
	reservations.AssertNumberOfCalls(t, "CodeExists", defaultCodeAttempts)
	reservations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	slots.AssertNotCalled(t, "IncrementBooked", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateReservation_UniqueIndexCollisionRetries(t *testing.T) {
	reservations := new(MockReservationRepository)
	slots := new(MockTimeSlotRepository)

	slots.On("Find", mock.Anything, "r1", "2026-11-01", "19:00").Return(slotWith(10, 0), nil)
	reservations.On("CodeExists", mock.Anything, mock.Anything).Return(false, nil)
	reservations.On("Create", mock.Anything, mock.AnythingOfType("*domain.Reservation")).Return(repository.ErrDuplicate).Once()
	reservations.On("Create", mock.Anything, mock.AnythingOfType("*domain.Reservation")).Return(nil).Once()
	slots.On("IncrementBooked", mock.Anything, "s1", 2).Return(slotWith(10, 2), nil)

	svc := newTestService(reservations, slots, nil, nil, WithCodeGenerator(fixedCodes("AAAA2222", "BBBB3333")))

	res, err := svc.CreateReservation(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "BBBB3333", res.ConfirmationCode)
	reservations.AssertNumberOfCalls(t, "Create", 2)
}

func TestCreateReservation_CollaboratorFailuresDoNotFailRequest(t *testing.T) {
	reservations := new(MockReservationRepository)
	slots := new(MockTimeSlotRepository)
	cache := new(MockCache)
	producer := new(MockProducer)

	slots.On("Find", mock.Anything, "r1", "2026-11-01", "19:00").Return(slotWith(10, 0), nil)
	reservations.On("CodeExists", mock.Anything, mock.Anything).Return(false, nil)
	reservations.On("Create", mock.Anything, mock.AnythingOfType("*domain.Reservation")).Return(nil)
	slots.On("IncrementBooked", mock.Anything, "s1", 2).Return(slotWith(10, 2), nil)
	cache.On("Invalidate", mock.Anything, "r1", "2026-11-01", "19:00").Return(errors.New("redis down"))
	producer.On("Publish", mock.Anything, "reservation-events", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	svc := newTestService(reservations, slots, cache, producer, WithTopic("reservation-events"), WithNotificationsTopic("reservation-notifications"))

	res, err := svc.CreateReservation(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotNil(t, res)
	producer.AssertNumberOfCalls(t, "Publish", 1)
}

func TestCancelReservation_NotFoundAndForbidden(t *testing.T) {
	reservations := new(MockReservationRepository)
	reservations.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
	reservations.On("GetByID", mock.Anything, "res-1").Return(storedReservation(domain.ReservationStatusConfirmed), nil)
	svc := newTestService(reservations, new(MockTimeSlotRepository), nil, nil)
	ctx := context.Background()

	_, err := svc.CancelReservation(ctx, "missing", auth.Identity{ID: "u1", Role: auth.RoleUser}, "")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = svc.CancelReservation(ctx, "res-1", auth.Identity{ID: "u2", Role: auth.RoleUser}, "")
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	otherAdmin := auth.Identity{ID: "a1", Role: auth.RoleAdmin, RestaurantIDs: []string{"r2"}}
	_, err = svc.CancelReservation(ctx, "res-1", otherAdmin, "")
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	_, err = svc.CancelReservation(ctx, "res-1", auth.Identity{ID: "u1"}, strings.Repeat("x", domain.MaxCancellationReasonLength+1))
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestCancelReservation_AlreadyCancelledIsNoop(t *testing.T) {
	reservations := new(MockReservationRepository)
	slots := new(MockTimeSlotRepository)
	reservations.On("GetByID", mock.Anything, "res-1").Return(storedReservation(domain.ReservationStatusCancelled), nil)
	svc := newTestService(reservations, slots, nil, nil)

	res, err := svc.CancelReservation(context.Background(), "res-1", auth.Identity{ID: "u1", Role: auth.RoleUser}, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCancelled, res.Status)
	reservations.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	slots.AssertNotCalled(t, "IncrementBooked", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelReservation_CompletedIsRejected(t *testing.T) {
	reservations := new(MockReservationRepository)
	reservations.On("GetByID", mock.Anything, "res-1").Return(storedReservation(domain.ReservationStatusCompleted), nil)
	svc := newTestService(reservations, new(MockTimeSlotRepository), nil, nil)

	_, err := svc.CancelReservation(context.Background(), "res-1", auth.Identity{ID: "u1"}, "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestCancelReservation_ByRestaurantAdmin(t *testing.T) {
	reservations := new(MockReservationRepository)
	slots := new(MockTimeSlotRepository)
	producer := new(MockProducer)

	reservations.On("GetByID", mock.Anything, "res-1").Return(storedReservation(domain.ReservationStatusConfirmed), nil)
	reservations.On("Update", mock.Anything, mock.AnythingOfType("*domain.Reservation")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Reservation).Version++ }).
		Return(nil)
	slots.On("IncrementBooked", mock.Anything, "s1", -2).Return(slotWith(10, 0), nil)
	producer.On("Publish", mock.Anything, "reservation-events", "res-1", mock.AnythingOfType("domain.ReservationEvent")).Return(nil)

	svc := newTestService(reservations, slots, nil, producer, WithTopic("reservation-events"))
	admin := auth.Identity{ID: "a1", Role: auth.RoleAdmin, RestaurantIDs: []string{"r1"}}

	res, err := svc.CancelReservation(context.Background(), "res-1", admin, "kitchen closed")
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCancelled, res.Status)
	assert.Equal(t, "kitchen closed", res.CancellationReason)
	require.NotNil(t, res.CancelledAt)
	assert.Equal(t, fixedNow, *res.CancelledAt)
	assert.Equal(t, 1, res.Version)

	event := producer.Calls[0].Arguments.Get(3).(domain.ReservationEvent)
	assert.Equal(t, domain.EventReservationCancelled, event.Type)
	slots.AssertExpectations(t)
}

func TestCancelReservation_ReleaseFailureRestoresStatus(t *testing.T) {
	reservations := new(MockReservationRepository)
	slots := new(MockTimeSlotRepository)

	var saved []domain.Reservation
	reservations.On("GetByID", mock.Anything, "res-1").Return(storedReservation(domain.ReservationStatusConfirmed), nil)
	reservations.On("Update", mock.Anything, mock.AnythingOfType("*domain.Reservation")).
		Run(func(args mock.Arguments) {
			res := args.Get(1).(*domain.Reservation)
			saved = append(saved, *res)
			res.Version++
		}).
		Return(nil)
	slots.On("IncrementBooked", mock.Anything, "s1", -2).Return(nil, errors.New("write conflict"))

	svc := newTestService(reservations, slots, nil, nil)

	_, err := svc.CancelReservation(context.Background(), "res-1", auth.Identity{ID: "u1"}, "")
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))

	require.Len(t, saved, 2)
	assert.Equal(t, domain.ReservationStatusCancelled, saved[0].Status)
	assert.Equal(t, 0, saved[0].Version)
	assert.Equal(t, domain.ReservationStatusConfirmed, saved[1].Status)
	assert.Equal(t, 1, saved[1].Version)
	assert.Nil(t, saved[1].CancelledAt)
}

func TestCancelReservation_LosingRaceToAnotherCancel(t *testing.T) {
	reservations := new(MockReservationRepository)
	slots := new(MockTimeSlotRepository)

	reservations.On("GetByID", mock.Anything, "res-1").Return(storedReservation(domain.ReservationStatusConfirmed), nil).Once()
	reservations.On("GetByID", mock.Anything, "res-1").Return(storedReservation(domain.ReservationStatusCancelled), nil).Once()
	reservations.On("Update", mock.Anything, mock.AnythingOfType("*domain.Reservation")).Return(repository.ErrVersionConflict)

	svc := newTestService(reservations, slots, nil, nil)

	res, err := svc.CancelReservation(context.Background(), "res-1", auth.Identity{ID: "u1"}, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCancelled, res.Status)
	slots.AssertNotCalled(t, "IncrementBooked", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelReservation_ConflictWithOtherChange(t *testing.T) {
	reservations := new(MockReservationRepository)
	reservations.On("GetByID", mock.Anything, "res-1").Return(storedReservation(domain.ReservationStatusConfirmed), nil).Once()
	reservations.On("GetByID", mock.Anything, "res-1").Return(storedReservation(domain.ReservationStatusConfirmed), nil).Once()
	reservations.On("Update", mock.Anything, mock.AnythingOfType("*domain.Reservation")).Return(repository.ErrVersionConflict)

	svc := newTestService(reservations, new(MockTimeSlotRepository), nil, nil)

	_, err := svc.CancelReservation(context.Background(), "res-1", auth.Identity{ID: "u1"}, "")
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestGetByConfirmationCode(t *testing.T) {
	reservations := new(MockReservationRepository)
	reservations.On("GetByConfirmationCode", mock.Anything, "abcd2345").Return(storedReservation(domain.ReservationStatusConfirmed), nil)
	reservations.On("GetByConfirmationCode", mock.Anything, "NOPE2345").Return(nil, repository.ErrNotFound)
	svc := newTestService(reservations, new(MockTimeSlotRepository), nil, nil)
	ctx := context.Background()

	res, err := svc.GetByConfirmationCode(ctx, " abcd2345 ", auth.Identity{ID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "res-1", res.ID)

	_, err = svc.GetByConfirmationCode(ctx, "abcd2345", auth.Identity{ID: "u9"})
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	res, err = svc.GetByConfirmationCode(ctx, "abcd2345", auth.Identity{ID: "a1", Role: auth.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "res-1", res.ID)

	_, err = svc.GetByConfirmationCode(ctx, "NOPE2345", auth.Identity{ID: "u1"})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = svc.GetByConfirmationCode(ctx, "  ", auth.Identity{ID: "u1"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestListForRestaurant(t *testing.T) {
	reservations := new(MockReservationRepository)
	filter := domain.ReservationFilter{Date: "2026-11-01", Status: domain.ReservationStatusConfirmed}
	reservations.On("ListByRestaurant", mock.Anything, "r1", filter).Return([]domain.Reservation{*storedReservation(domain.ReservationStatusConfirmed)}, nil)
	svc := newTestService(reservations, new(MockTimeSlotRepository), nil, nil)
	ctx := context.Background()
	admin := auth.Identity{ID: "a1", Role: auth.RoleAdmin, RestaurantIDs: []string{"r1"}}

	list, err := svc.ListForRestaurant(ctx, "r1", filter, admin)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListForRestaurant(ctx, "r1", filter, auth.Identity{ID: "u1", Role: auth.RoleUser})
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	_, err = svc.ListForRestaurant(ctx, "r2", filter, admin)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	_, err = svc.ListForRestaurant(ctx, "r1", domain.ReservationFilter{Status: "lost"}, admin)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = svc.ListForRestaurant(ctx, "r1", domain.ReservationFilter{Date: "tomorrow"}, admin)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestListForUser(t *testing.T) {
	reservations := new(MockReservationRepository)
	reservations.On("ListByUser", mock.Anything, "u1").Return([]domain.Reservation{*storedReservation(domain.ReservationStatusConfirmed)}, nil)
	reservations.On("ListByUser", mock.Anything, "u2").Return([]domain.Reservation(nil), errors.New("boom"))
	svc := newTestService(reservations, new(MockTimeSlotRepository), nil, nil)

	list, err := svc.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListForUser(context.Background(), "u2")
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))

	_, err = svc.ListForUser(context.Background(), "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestUpdateDetails(t *testing.T) {
	ctx := context.Background()
	owner := auth.Identity{ID: "u1", Role: auth.RoleUser}

	t.Run("requires version", func(t *testing.T) {
		svc := newTestService(new(MockReservationRepository), new(MockTimeSlotRepository), nil, nil)
		_, err := svc.UpdateDetails(ctx, "res-1", owner, UpdateDetailsInput{SpecialRequest: strPtr("x")})
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("stale version", func(t *testing.T) {
		reservations := new(MockReservationRepository)
		stored := storedReservation(domain.ReservationStatusConfirmed)
		stored.Version = 3
		reservations.On("GetByID", mock.Anything, "res-1").Return(stored, nil)
		svc := newTestService(reservations, new(MockTimeSlotRepository), nil, nil)

		_, err := svc.UpdateDetails(ctx, "res-1", owner, UpdateDetailsInput{Version: intPtr(2), SpecialRequest: strPtr("x")})
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		reservations.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("concurrent write", func(t *testing.T) {
		reservations := new(MockReservationRepository)
		reservations.On("GetByID", mock.Anything, "res-1").Return(storedReservation(domain.ReservationStatusConfirmed), nil)
		reservations.On("Update", mock.Anything, mock.AnythingOfType("*domain.Reservation")).Return(repository.ErrVersionConflict)
		svc := newTestService(reservations, new(MockTimeSlotRepository), nil, nil)

		_, err := svc.UpdateDetails(ctx, "res-1", owner, UpdateDetailsInput{Version: intPtr(0), SpecialRequest: strPtr("x")})
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	})

	t.Run("cancelled is immutable", func(t *testing.T) {
		reservations := new(MockReservationRepository)
		reservations.On("GetByID", mock.Anything, "res-1").Return(storedReservation(domain.ReservationStatusCancelled), nil)
		svc := newTestService(reservations, new(MockTimeSlotRepository), nil, nil)

		_, err := svc.UpdateDetails(ctx, "res-1", owner, UpdateDetailsInput{Version: intPtr(0)})
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("applies fields", func(t *testing.T) {
		reservations := new(MockReservationRepository)
		reservations.On("GetByID", mock.Anything, "res-1").Return(storedReservation(domain.ReservationStatusConfirmed), nil)
		reservations.On("Update", mock.Anything, mock.AnythingOfType("*domain.Reservation")).
			Run(func(args mock.Arguments) { args.Get(1).(*domain.Reservation).Version++ }).
			Return(nil)
		svc := newTestService(reservations, new(MockTimeSlotRepository), nil, nil)

		res, err := svc.UpdateDetails(ctx, "res-1", owner, UpdateDetailsInput{
			Version:        intPtr(0),
			SpecialRequest: strPtr("high chair"),
			CustomerPhone:  strPtr("+1 555 0100"),
		})
		require.NoError(t, err)
		assert.Equal(t, "high chair", res.SpecialRequest)
		assert.Equal(t, "+1 555 0100", res.CustomerPhone)
		assert.Equal(t, 1, res.Version)
	})
}

func TestCompletePast(t *testing.T) {
	reservations := new(MockReservationRepository)
	producer := new(MockProducer)

	first := *storedReservation(domain.ReservationStatusCompleted)
	second := *storedReservation(domain.ReservationStatusCompleted)
	second.ID = "res-2"
	reservations.On("CompleteBefore", mock.Anything, "2026-10-19", "12:00").Return([]domain.Reservation{first, second}, nil)
	producer.On("Publish", mock.Anything, "reservation-events", mock.Anything, mock.AnythingOfType("domain.ReservationEvent")).Return(nil)

	svc := newTestService(reservations, new(MockTimeSlotRepository), nil, producer, WithTopic("reservation-events"))

	completed, err := svc.CompletePast(context.Background(), fixedNow)
	require.NoError(t, err)
	assert.Len(t, completed, 2)
	producer.AssertNumberOfCalls(t, "Publish", 2)
	assert.Equal(t, "res-2", producer.Calls[1].Arguments.String(2))
}
