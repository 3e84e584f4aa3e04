package reservation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bookabite/reservations/internal/auth"
	"github.com/bookabite/reservations/internal/domain"
	"github.com/bookabite/reservations/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultCodeAttempts = 5

type ReservationUseCase interface {
	CreateReservation(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, id string, requester auth.Identity, reason string) (*domain.Reservation, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Reservation, error)
	GetByConfirmationCode(ctx context.Context, code string, requester auth.Identity) (*domain.Reservation, error)
	ListForRestaurant(ctx context.Context, restaurantID string, filter domain.ReservationFilter, requester auth.Identity) ([]domain.Reservation, error)
	UpdateDetails(ctx context.Context, id string, requester auth.Identity, input UpdateDetailsInput) (*domain.Reservation, error)
	CompletePast(ctx context.Context, now time.Time) ([]domain.Reservation, error)
}

// Cache is the part of the availability cache the manager needs: every seat
// change drops the affected entries.
type Cache interface {
	Invalidate(ctx context.Context, restaurantID, date, slotTime string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Service is the only writer of a slot's booked seats. Reservation rows and
// seat counts always change together through it.
type Service struct {
	reservations       repository.ReservationRepository
	slots              repository.TimeSlotRepository
	cache              Cache
	producer           Producer
	log                *zap.Logger
	topic              string
	notificationsTopic string
	generateCode       CodeGenerator
	codeAttempts       int
	now                func() time.Time
}

type Option func(*Service)

func WithCodeGenerator(gen CodeGenerator) Option {
	return func(s *Service) {
		s.generateCode = gen
	}
}

func WithCodeAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.codeAttempts = n
		}
	}
}

func WithTopic(topic string) Option {
	return func(s *Service) {
		s.topic = topic
	}
}

func WithNotificationsTopic(topic string) Option {
	return func(s *Service) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService wires the manager. cache and producer may be nil.
func NewService(
	reservations repository.ReservationRepository,
	slots repository.TimeSlotRepository,
	cache Cache,
	producer Producer,
	log *zap.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		reservations: reservations,
		slots:        slots,
		cache:        cache,
		producer:     producer,
		log:          log,
		generateCode: GenerateConfirmationCode,
		codeAttempts: defaultCodeAttempts,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateReservationInput struct {
	UserID         string `json:"-"`
	RestaurantID   string `json:"restaurantId"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Guests         int    `json:"guests"`
	SpecialRequest string `json:"specialRequest"`
	CustomerName   string `json:"customerName"`
	CustomerEmail  string `json:"customerEmail"`
	CustomerPhone  string `json:"customerPhone"`
}

func (in CreateReservationInput) validate() error {
	var missing []string
	if in.UserID == "" {
		missing = append(missing, "userId")
	}
	if in.RestaurantID == "" {
		missing = append(missing, "restaurantId")
	}
	if in.Date == "" {
		missing = append(missing, "date")
	}
	if in.Time == "" {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return domain.NewValidationError("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !domain.ValidDate(in.Date) {
		return domain.NewValidationError("date must be formatted as YYYY-MM-DD")
	}
	if !domain.ValidTime(in.Time) {
		return domain.NewValidationError("time must be formatted as HH:MM")
	}
	if in.Guests <= 0 {
		return domain.NewValidationError("guests must be a positive integer")
	}
	if len(in.SpecialRequest) > domain.MaxSpecialRequestLength {
		return domain.NewValidationError("specialRequest must be at most %d characters", domain.MaxSpecialRequestLength)
	}
	return nil
}

// CreateReservation books input.Guests seats on the matching slot. The row is
// inserted first and the seats are then claimed with a single conditional
// increment; if the claim fails the row is deleted again.
func (s *Service) CreateReservation(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	slot, err := s.slots.Find(ctx, input.RestaurantID, input.Date, input.Time)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewSlotNotFoundError()
		}
		return nil, s.internal("find slot", err, zap.String("restaurant_id", input.RestaurantID))
	}
	if input.Guests > slot.AvailableSeats() {
		return nil, domain.NewInsufficientCapacityError(slot.AvailableSeats())
	}

	res, err := s.insertWithUniqueCode(ctx, input, slot)
	if err != nil {
		return nil, err
	}

	updated, err := s.slots.IncrementBooked(ctx, slot.ID, input.Guests)
	if err != nil {
		s.compensateCreate(ctx, res)
		if errors.Is(err, repository.ErrInsufficientCapacity) {
			available := 0
			if updated != nil {
				available = updated.AvailableSeats()
			}
			return nil, domain.NewInsufficientCapacityError(available)
		}
		return nil, s.internal("increment booked seats", err, zap.String("slot_id", slot.ID))
	}

	s.invalidate(ctx, updated.RestaurantID, updated.Date, updated.Time)
	s.publish(ctx, domain.EventReservationCreated, res)
	return res, nil
}

// insertWithUniqueCode counts both pre-check hits and unique-index rejections
// against the attempt budget.
func (s *Service) insertWithUniqueCode(ctx context.Context, input CreateReservationInput, slot *domain.TimeSlot) (*domain.Reservation, error) {
	for attempt := 1; attempt <= s.codeAttempts; attempt++ {
		code, err := s.generateCode()
		if err != nil {
			return nil, s.internal("generate confirmation code", err)
		}
		code = strings.ToUpper(code)

		exists, err := s.reservations.CodeExists(ctx, code)
		if err != nil {
			return nil, s.internal("check confirmation code", err)
		}
		if exists {
			s.log.Debug("confirmation code collision", zap.Int("attempt", attempt))
			continue
		}

		res := &domain.Reservation{
			ID:               uuid.NewString(),
			ConfirmationCode: code,
			UserID:           input.UserID,
			RestaurantID:     slot.RestaurantID,
			TimeSlotID:       slot.ID,
			Date:             slot.Date,
			Time:             slot.Time,
			Guests:           input.Guests,
			CustomerName:     input.CustomerName,
			CustomerEmail:    input.CustomerEmail,
			CustomerPhone:    input.CustomerPhone,
			Status:           domain.ReservationStatusConfirmed,
			SpecialRequest:   input.SpecialRequest,
		}
		if err := s.reservations.Create(ctx, res); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				s.log.Debug("confirmation code rejected by unique index", zap.Int("attempt", attempt))
				continue
			}
			return nil, s.internal("create reservation", err)
		}
		return res, nil
	}
	s.log.Error("confirmation code attempts exhausted", zap.Int("attempts", s.codeAttempts))
	return nil, domain.NewCodeGenerationError(s.codeAttempts)
}

func (s *Service) compensateCreate(ctx context.Context, res *domain.Reservation) {
	// The caller's context may already be done; the delete must still run.
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.reservations.Delete(cctx, res.ID); err != nil {
		s.log.Error("failed to delete reservation after seat claim failed",
			zap.String("reservation_id", res.ID), zap.Error(err))
	}
}

// CancelReservation marks the reservation cancelled and gives its seats back.
// Cancelling twice is a no-op. The status is saved first under the version
// check, so two racing cancels release the seats once; if the release fails
// the previous status is restored.
func (s *Service) CancelReservation(ctx context.Context, id string, requester auth.Identity, reason string) (*domain.Reservation, error) {
	if len(reason) > domain.MaxCancellationReasonLength {
		return nil, domain.NewValidationError("reason must be at most %d characters", domain.MaxCancellationReasonLength)
	}

	res, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(requester, res) {
		return nil, domain.NewForbiddenError()
	}
	if res.Status == domain.ReservationStatusCancelled {
		return res, nil
	}
	if res.Status == domain.ReservationStatusCompleted {
		return nil, domain.NewValidationError("completed reservations cannot be cancelled")
	}

	previous := *res
	now := s.now().UTC()
	res.Status = domain.ReservationStatusCancelled
	res.CancellationReason = reason
	res.CancelledAt = &now
	if err := s.reservations.Update(ctx, res); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return s.resolveCancelConflict(ctx, id)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError("reservation")
		}
		return nil, s.internal("save cancellation", err, zap.String("reservation_id", id))
	}

	if _, err := s.slots.IncrementBooked(ctx, res.TimeSlotID, -res.Guests); err != nil {
		s.restoreStatus(ctx, previous, res.Version)
		return nil, s.internal("release seats", err, zap.String("reservation_id", id), zap.String("slot_id", res.TimeSlotID))
	}

	s.invalidate(ctx, res.RestaurantID, res.Date, res.Time)
	s.publish(ctx, domain.EventReservationCancelled, res)
	return res, nil
}

// resolveCancelConflict treats losing a race against another cancel as success.
func (s *Service) resolveCancelConflict(ctx context.Context, id string) (*domain.Reservation, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.ReservationStatusCancelled {
		return current, nil
	}
	return nil, domain.NewConflictError()
}

func (s *Service) restoreStatus(ctx context.Context, previous domain.Reservation, version int) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	previous.Version = version
	if err := s.reservations.Update(cctx, &previous); err != nil {
		s.log.Error("failed to restore reservation status after seat release failed",
			zap.String("reservation_id", previous.ID), zap.Error(err))
	}
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	if userID == "" {
		return nil, domain.NewValidationError("userId is required")
	}
	list, err := s.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.internal("list reservations for user", err, zap.String("user_id", userID))
	}
	return list, nil
}

func (s *Service) GetByConfirmationCode(ctx context.Context, code string, requester auth.Identity) (*domain.Reservation, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.NewValidationError("confirmation code is required")
	}
	res, err := s.reservations.GetByConfirmationCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError("reservation")
		}
		return nil, s.internal("get reservation by code", err)
	}
	if !canAccess(requester, res) {
		return nil, domain.NewForbiddenError()
	}
	return res, nil
}

func (s *Service) ListForRestaurant(ctx context.Context, restaurantID string, filter domain.ReservationFilter, requester auth.Identity) ([]domain.Reservation, error) {
	if restaurantID == "" {
		return nil, domain.NewValidationError("restaurantId is required")
	}
	if !requester.CanManageRestaurant(restaurantID) {
		return nil, domain.NewForbiddenError()
	}
	if filter.Date != "" && !domain.ValidDate(filter.Date) {
		return nil, domain.NewValidationError("date must be formatted as YYYY-MM-DD")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("unknown status %q", filter.Status)
	}
	list, err := s.reservations.ListByRestaurant(ctx, restaurantID, filter)
	if err != nil {
		return nil, s.internal("list reservations for restaurant", err, zap.String("restaurant_id", restaurantID))
	}
	return list, nil
}

// UpdateDetailsInput changes contact details and the special request. Version
// must match the stored version; nil fields are left as they are.
type UpdateDetailsInput struct {
	Version        *int    `json:"version"`
	SpecialRequest *string `json:"specialRequest"`
	CustomerName   *string `json:"customerName"`
	CustomerEmail  *string `json:"customerEmail"`
	CustomerPhone  *string `json:"customerPhone"`
}

func (s *Service) UpdateDetails(ctx context.Context, id string, requester auth.Identity, input UpdateDetailsInput) (*domain.Reservation, error) {
	if input.Version == nil {
		return nil, domain.NewValidationError("version is required")
	}
	if input.SpecialRequest != nil && len(*input.SpecialRequest) > domain.MaxSpecialRequestLength {
		return nil, domain.NewValidationError("specialRequest must be at most %d characters", domain.MaxSpecialRequestLength)
	}

	res, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(requester, res) {
		return nil, domain.NewForbiddenError()
	}
	if res.Status == domain.ReservationStatusCancelled || res.Status == domain.ReservationStatusCompleted {
		return nil, domain.NewValidationError("%s reservations cannot be modified", res.Status)
	}
	if *input.Version != res.Version {
		return nil, domain.NewConflictError()
	}

	if input.SpecialRequest != nil {
		res.SpecialRequest = *input.SpecialRequest
	}
	if input.CustomerName != nil {
		res.CustomerName = *input.CustomerName
	}
	if input.CustomerEmail != nil {
		res.CustomerEmail = *input.CustomerEmail
	}
	if input.CustomerPhone != nil {
		res.CustomerPhone = *input.CustomerPhone
	}

	if err := s.reservations.Update(ctx, res); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, domain.NewConflictError()
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError("reservation")
		}
		return nil, s.internal("update reservation", err, zap.String("reservation_id", id))
	}
	return res, nil
}

// CompletePast moves confirmed reservations whose slot started before now to
// completed. Their seats stay booked.
func (s *Service) CompletePast(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	completed, err := s.reservations.CompleteBefore(ctx, now.Format(domain.DateLayout), now.Format(domain.TimeLayout))
	if err != nil {
		return completed, s.internal("complete past reservations", err)
	}
	for i := range completed {
		s.publish(ctx, domain.EventReservationCompleted, &completed[i])
	}
	return completed, nil
}

func (s *Service) load(ctx context.Context, id string) (*domain.Reservation, error) {
	if id == "" {
		return nil, domain.NewValidationError("reservation id is required")
	}
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError("reservation")
		}
		return nil, s.internal("get reservation", err, zap.String("reservation_id", id))
	}
	return res, nil
}

func canAccess(requester auth.Identity, res *domain.Reservation) bool {
	return (requester.ID != "" && requester.ID == res.UserID) || requester.CanManageRestaurant(res.RestaurantID)
}

func (s *Service) internal(op string, err error, fields ...zap.Field) error {
	s.log.Error(op+" failed", append(fields, zap.Error(err))...)
	return domain.NewInternalError(err)
}

func (s *Service) invalidate(ctx context.Context, restaurantID, date, slotTime string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, restaurantID, date, slotTime); err != nil {
		s.log.Warn("availability cache invalidation failed",
			zap.String("restaurant_id", restaurantID), zap.String("date", date), zap.String("time", slotTime), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, eventType domain.ReservationEventType, res *domain.Reservation) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := domain.NewReservationEvent(eventType, res, s.now())
	if err := s.producer.Publish(ctx, s.topic, res.ID, event); err != nil {
		s.log.Warn("failed to publish reservation event",
			zap.String("type", string(eventType)), zap.String("reservation_id", res.ID), zap.Error(err))
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, res.ID, event); err != nil {
			s.log.Warn("failed to publish notification event",
				zap.String("type", string(eventType)), zap.String("reservation_id", res.ID), zap.Error(err))
		}
	}
}

var _ ReservationUseCase = (*Service)(nil)
