package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bookabite/reservations/internal/domain"
)

// MemoryTimeSlotRepository keeps slots in process memory. A single mutex makes
// every method, IncrementBooked in particular, indivisible.
type MemoryTimeSlotRepository struct {
	mu    sync.Mutex
	slots map[string]*domain.TimeSlot
	keys  map[string]string
}

func NewMemoryTimeSlotRepository() *MemoryTimeSlotRepository {
	return &MemoryTimeSlotRepository{
		slots: make(map[string]*domain.TimeSlot),
		keys:  make(map[string]string),
	}
}

func slotKey(restaurantID, date, slotTime string) string {
	return restaurantID + "|" + date + "|" + slotTime
}

func (r *MemoryTimeSlotRepository) Find(_ context.Context, restaurantID, date, slotTime string) (*domain.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.keys[slotKey(restaurantID, date, slotTime)]
	if !ok {
		return nil, ErrNotFound
	}
	s := *r.slots[id]
	return &s, nil
}

func (r *MemoryTimeSlotRepository) GetByID(_ context.Context, id string) (*domain.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[id]
	if !ok {
		return nil, ErrNotFound
	}
	s := *slot
	return &s, nil
}

func (r *MemoryTimeSlotRepository) ListByRestaurantDate(_ context.Context, restaurantID, date string) ([]domain.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots := make([]domain.TimeSlot, 0)
	for _, s := range r.slots {
		if s.RestaurantID == restaurantID && s.Date == date {
			slots = append(slots, *s)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })
	return slots, nil
}

func (r *MemoryTimeSlotRepository) Create(_ context.Context, slot *domain.TimeSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey(slot.RestaurantID, slot.Date, slot.Time)
	if _, exists := r.keys[key]; exists {
		return ErrDuplicate
	}
	if _, exists := r.slots[slot.ID]; exists {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	slot.CreatedAt, slot.UpdatedAt = now, now
	s := *slot
	r.slots[slot.ID] = &s
	r.keys[key] = slot.ID
	return nil
}

func (r *MemoryTimeSlotRepository) Update(_ context.Context, restaurantID, date, slotTime string, patch domain.TimeSlotPatch) (*domain.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.keys[slotKey(restaurantID, date, slotTime)]
	if !ok {
		return nil, ErrNotFound
	}
	slot := r.slots[id]
	if patch.TotalSeats != nil {
		if *patch.TotalSeats < slot.BookedSeats {
			return nil, ErrSeatsBelowBooked
		}
		slot.TotalSeats = *patch.TotalSeats
	}
	slot.Version++
	slot.UpdatedAt = time.Now().UTC()
	s := *slot
	return &s, nil
}

func (r *MemoryTimeSlotRepository) IncrementBooked(_ context.Context, slotID string, delta int) (*domain.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[slotID]
	if !ok {
		return nil, ErrNotFound
	}
	if delta > 0 && slot.BookedSeats+delta > slot.TotalSeats {
		s := *slot
		return &s, ErrInsufficientCapacity
	}
	slot.BookedSeats += delta
	if slot.BookedSeats < 0 {
		slot.BookedSeats = 0
	}
	slot.Version++
	slot.UpdatedAt = time.Now().UTC()
	s := *slot
	return &s, nil
}

var _ TimeSlotRepository = (*MemoryTimeSlotRepository)(nil)

type MemoryReservationRepository struct {
	mu           sync.Mutex
	reservations map[string]*domain.Reservation
	codes        map[string]string
	seq          int64
	order        map[string]int64
}

func NewMemoryReservationRepository() *MemoryReservationRepository {
	return &MemoryReservationRepository{
		reservations: make(map[string]*domain.Reservation),
		codes:        make(map[string]string),
		order:        make(map[string]int64),
	}
}

func (r *MemoryReservationRepository) Create(_ context.Context, res *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res.ConfirmationCode = strings.ToUpper(res.ConfirmationCode)
	if _, exists := r.codes[res.ConfirmationCode]; exists {
		return ErrDuplicate
	}
	if _, exists := r.reservations[res.ID]; exists {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	res.CreatedAt, res.UpdatedAt = now, now
	stored := *res
	r.reservations[res.ID] = &stored
	r.codes[res.ConfirmationCode] = res.ID
	r.seq++
	r.order[res.ID] = r.seq
	return nil
}

func (r *MemoryReservationRepository) CodeExists(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.codes[strings.ToUpper(code)]
	return exists, nil
}

func (r *MemoryReservationRepository) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *res
	return &out, nil
}

func (r *MemoryReservationRepository) GetByConfirmationCode(_ context.Context, code string) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.codes[strings.ToUpper(code)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *r.reservations[id]
	return &out, nil
}

func (r *MemoryReservationRepository) ListByUser(_ context.Context, userID string) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.collect(func(res *domain.Reservation) bool { return res.UserID == userID })
	sort.Slice(list, func(i, j int) bool { return r.order[list[i].ID] > r.order[list[j].ID] })
	return list, nil
}

func (r *MemoryReservationRepository) ListByRestaurant(_ context.Context, restaurantID string, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.collect(func(res *domain.Reservation) bool {
		if res.RestaurantID != restaurantID {
			return false
		}
		if filter.Date != "" && res.Date != filter.Date {
			return false
		}
		return filter.Status == "" || res.Status == filter.Status
	})
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		if list[i].Time != list[j].Time {
			return list[i].Time < list[j].Time
		}
		return r.order[list[i].ID] < r.order[list[j].ID]
	})
	return list, nil
}

func (r *MemoryReservationRepository) Update(_ context.Context, res *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.reservations[res.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != res.Version {
		return ErrVersionConflict
	}
	r.apply(stored, res)
	res.Version = stored.Version
	res.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryReservationRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.reservations[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.codes, res.ConfirmationCode)
	delete(r.reservations, id)
	delete(r.order, id)
	return nil
}

func (r *MemoryReservationRepository) CompleteBefore(_ context.Context, date, slotTime string) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	completed := make([]domain.Reservation, 0)
	for _, stored := range r.reservations {
		if stored.Status != domain.ReservationStatusConfirmed {
			continue
		}
		if stored.Date > date || (stored.Date == date && stored.Time >= slotTime) {
			continue
		}
		next := *stored
		next.Status = domain.ReservationStatusCompleted
		r.apply(stored, &next)
		completed = append(completed, *stored)
	}
	return completed, nil
}

// apply copies the mutable fields of next onto stored and bumps the version.
func (r *MemoryReservationRepository) apply(stored, next *domain.Reservation) {
	stored.CustomerName = next.CustomerName
	stored.CustomerEmail = next.CustomerEmail
	stored.CustomerPhone = next.CustomerPhone
	stored.Status = next.Status
	stored.SpecialRequest = next.SpecialRequest
	stored.CancellationReason = next.CancellationReason
	stored.CancelledAt = next.CancelledAt
	stored.Version++
	stored.UpdatedAt = time.Now().UTC()
}

func (r *MemoryReservationRepository) collect(match func(*domain.Reservation) bool) []domain.Reservation {
	list := make([]domain.Reservation, 0)
	for _, res := range r.reservations {
		if match(res) {
			list = append(list, *res)
		}
	}
	return list
}

var _ ReservationRepository = (*MemoryReservationRepository)(nil)
