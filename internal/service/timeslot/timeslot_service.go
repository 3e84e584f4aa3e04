package timeslot

import (
	"context"
	"errors"
	"strings"

	"github.com/bookabite/reservations/internal/auth"
	"github.com/bookabite/reservations/internal/domain"
	"github.com/bookabite/reservations/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TimeSlotUseCase interface {
	AddTimeslot(ctx context.Context, requester auth.Identity, input AddTimeslotInput) (*domain.TimeSlot, error)
	ListTimeslots(ctx context.Context, restaurantID, date string) ([]domain.TimeSlot, error)
	UpdateTimeslot(ctx context.Context, requester auth.Identity, input UpdateTimeslotInput) (*domain.TimeSlot, error)
	GetAvailability(ctx context.Context, restaurantID, date, slotTime string) (*domain.TimeSlot, error)
}

type Cache interface {
	GetSlots(ctx context.Context, restaurantID, date string) ([]domain.TimeSlot, error)
	SetSlots(ctx context.Context, restaurantID, date string, slots []domain.TimeSlot) error
	GetSlot(ctx context.Context, restaurantID, date, slotTime string) (*domain.TimeSlot, error)
	SetSlot(ctx context.Context, slot domain.TimeSlot) error
	Invalidate(ctx context.Context, restaurantID, date, slotTime string) error
}

type Service struct {
	repo  repository.TimeSlotRepository
	cache Cache
	log   *zap.Logger
}

// NewService builds the slot service. cache may be nil, in which case every
// read goes to the store.
func NewService(repo repository.TimeSlotRepository, cache Cache, log *zap.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

type AddTimeslotInput struct {
	RestaurantID string `json:"restaurantId"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	TotalSeats   int    `json:"totalSeats"`
}

type UpdateTimeslotInput struct {
	RestaurantID string `json:"restaurantId"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	TotalSeats   *int   `json:"totalSeats"`
}

func validateKey(restaurantID, date, slotTime string) error {
	var missing []string
	if restaurantID == "" {
		missing = append(missing, "restaurantId")
	}
	if date == "" {
		missing = append(missing, "date")
	}
	if slotTime == "" {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return domain.NewValidationError("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !domain.ValidDate(date) {
		return domain.NewValidationError("date must be formatted as YYYY-MM-DD")
	}
	if !domain.ValidTime(slotTime) {
		return domain.NewValidationError("time must be formatted as HH:MM")
	}
	return nil
}

func (s *Service) AddTimeslot(ctx context.Context, requester auth.Identity, input AddTimeslotInput) (*domain.TimeSlot, error) {
	if err := validateKey(input.RestaurantID, input.Date, input.Time); err != nil {
		return nil, err
	}
	if input.TotalSeats <= 0 {
		return nil, domain.NewValidationError("totalSeats must be a positive integer")
	}
	if !requester.CanManageRestaurant(input.RestaurantID) {
		return nil, domain.NewForbiddenError()
	}

	slot := &domain.TimeSlot{
		ID:           uuid.NewString(),
		RestaurantID: input.RestaurantID,
		Date:         input.Date,
		Time:         input.Time,
		TotalSeats:   input.TotalSeats,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.NewDuplicateError("time slot")
		}
		return nil, s.internal("create slot", err)
	}
	s.invalidate(ctx, slot.RestaurantID, slot.Date, slot.Time)
	return slot, nil
}

func (s *Service) ListTimeslots(ctx context.Context, restaurantID, date string) ([]domain.TimeSlot, error) {
	if restaurantID == "" || date == "" {
		return nil, domain.NewValidationError("restaurantId and date are required")
	}
	if !domain.ValidDate(date) {
		return nil, domain.NewValidationError("date must be formatted as YYYY-MM-DD")
	}

	if s.cache != nil {
		cached, err := s.cache.GetSlots(ctx, restaurantID, date)
		if err != nil {
			s.log.Warn("availability cache read failed", zap.String("restaurant_id", restaurantID), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	slots, err := s.repo.ListByRestaurantDate(ctx, restaurantID, date)
	if err != nil {
		return nil, s.internal("list slots", err, zap.String("restaurant_id", restaurantID))
	}
	if s.cache != nil {
		if err := s.cache.SetSlots(ctx, restaurantID, date, slots); err != nil {
			s.log.Warn("availability cache write failed", zap.String("restaurant_id", restaurantID), zap.Error(err))
		}
	}
	return slots, nil
}

// UpdateTimeslot merges the patch into the slot. Shrinking totalSeats below
// the seats already booked is rejected by the store in the same write.
func (s *Service) UpdateTimeslot(ctx context.Context, requester auth.Identity, input UpdateTimeslotInput) (*domain.TimeSlot, error) {
	if err := validateKey(input.RestaurantID, input.Date, input.Time); err != nil {
		return nil, err
	}
	if input.TotalSeats != nil && *input.TotalSeats <= 0 {
		return nil, domain.NewValidationError("totalSeats must be a positive integer")
	}
	if !requester.CanManageRestaurant(input.RestaurantID) {
		return nil, domain.NewForbiddenError()
	}

	slot, err := s.repo.Update(ctx, input.RestaurantID, input.Date, input.Time, domain.TimeSlotPatch{TotalSeats: input.TotalSeats})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, domain.NewSlotNotFoundError()
		case errors.Is(err, repository.ErrSeatsBelowBooked):
			return nil, domain.NewValidationError("totalSeats cannot be lower than the seats already booked")
		}
		return nil, s.internal("update slot", err)
	}
	s.invalidate(ctx, slot.RestaurantID, slot.Date, slot.Time)
	return slot, nil
}

func (s *Service) GetAvailability(ctx context.Context, restaurantID, date, slotTime string) (*domain.TimeSlot, error) {
	if err := validateKey(restaurantID, date, slotTime); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.GetSlot(ctx, restaurantID, date, slotTime)
		if err != nil {
			s.log.Warn("availability cache read failed", zap.String("restaurant_id", restaurantID), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	slot, err := s.repo.Find(ctx, restaurantID, date, slotTime)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewSlotNotFoundError()
		}
		return nil, s.internal("find slot", err, zap.String("restaurant_id", restaurantID))
	}
	if s.cache != nil {
		if err := s.cache.SetSlot(ctx, *slot); err != nil {
			s.log.Warn("availability cache write failed", zap.String("restaurant_id", restaurantID), zap.Error(err))
		}
	}
	return slot, nil
}

func (s *Service) invalidate(ctx context.Context, restaurantID, date, slotTime string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, restaurantID, date, slotTime); err != nil {
		s.log.Warn("availability cache invalidation failed", zap.String("restaurant_id", restaurantID), zap.Error(err))
	}
}

func (s *Service) internal(op string, err error, fields ...zap.Field) error {
	s.log.Error(op+" failed", append(fields, zap.Error(err))...)
	return domain.NewInternalError(err)
}

var _ TimeSlotUseCase = (*Service)(nil)
