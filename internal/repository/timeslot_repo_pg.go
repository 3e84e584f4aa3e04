package repository

import (
	"context"
	"errors"

	"github.com/bookabite/reservations/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const timeSlotColumns = `id, restaurant_id, slot_date, slot_time, total_seats, booked_seats, version, created_at, updated_at`

type PGTimeSlotRepository struct {
	db *pgxpool.Pool
}

func NewTimeSlotRepository(db *pgxpool.Pool) TimeSlotRepository {
	return &PGTimeSlotRepository{db: db}
}

func (r *PGTimeSlotRepository) Find(ctx context.Context, restaurantID, date, slotTime string) (*domain.TimeSlot, error) {
	row := r.db.QueryRow(ctx, `SELECT `+timeSlotColumns+` FROM time_slots WHERE restaurant_id=$1 AND slot_date=$2 AND slot_time=$3`, restaurantID, date, slotTime)
	return scanTimeSlot(row)
}

func (r *PGTimeSlotRepository) GetByID(ctx context.Context, id string) (*domain.TimeSlot, error) {
	row := r.db.QueryRow(ctx, `SELECT `+timeSlotColumns+` FROM time_slots WHERE id=$1`, id)
	return scanTimeSlot(row)
}

func (r *PGTimeSlotRepository) ListByRestaurantDate(ctx context.Context, restaurantID, date string) ([]domain.TimeSlot, error) {
	rows, err := r.db.Query(ctx, `SELECT `+timeSlotColumns+` FROM time_slots WHERE restaurant_id=$1 AND slot_date=$2 ORDER BY slot_time`, restaurantID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]domain.TimeSlot, 0)
	for rows.Next() {
		s, err := scanTimeSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *s)
	}
	return slots, rows.Err()
}

func (r *PGTimeSlotRepository) Create(ctx context.Context, slot *domain.TimeSlot) error {
	err := r.db.QueryRow(ctx, `INSERT INTO time_slots (id, restaurant_id, slot_date, slot_time, total_seats, booked_seats, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		slot.ID, slot.RestaurantID, slot.Date, slot.Time, slot.TotalSeats, slot.BookedSeats, slot.Version).
		Scan(&slot.CreatedAt, &slot.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PGTimeSlotRepository) Update(ctx context.Context, restaurantID, date, slotTime string, patch domain.TimeSlotPatch) (*domain.TimeSlot, error) {
	row := r.db.QueryRow(ctx, `UPDATE time_slots
		SET total_seats = COALESCE($4::int, total_seats), version = version + 1, updated_at = now()
		WHERE restaurant_id=$1 AND slot_date=$2 AND slot_time=$3 AND ($4::int IS NULL OR $4::int >= booked_seats)
		RETURNING `+timeSlotColumns, restaurantID, date, slotTime, patch.TotalSeats)
	slot, err := scanTimeSlot(row)
	if errors.Is(err, ErrNotFound) {
		// The guard or the key did not match; tell them apart.
		if _, findErr := r.Find(ctx, restaurantID, date, slotTime); findErr != nil {
			return nil, findErr
		}
		return nil, ErrSeatsBelowBooked
	}
	return slot, err
}

func (r *PGTimeSlotRepository) IncrementBooked(ctx context.Context, slotID string, delta int) (*domain.TimeSlot, error) {
	if delta < 0 {
		row := r.db.QueryRow(ctx, `UPDATE time_slots
			SET booked_seats = GREATEST(booked_seats + $2, 0), version = version + 1, updated_at = now()
			WHERE id=$1
			RETURNING `+timeSlotColumns, slotID, delta)
		return scanTimeSlot(row)
	}

	row := r.db.QueryRow(ctx, `UPDATE time_slots
		SET booked_seats = booked_seats + $2, version = version + 1, updated_at = now()
		WHERE id=$1 AND booked_seats + $2 <= total_seats
		RETURNING `+timeSlotColumns, slotID, delta)
	slot, err := scanTimeSlot(row)
	if errors.Is(err, ErrNotFound) {
		current, getErr := r.GetByID(ctx, slotID)
		if getErr != nil {
			return nil, getErr
		}
		return current, ErrInsufficientCapacity
	}
	return slot, err
}

func scanTimeSlot(row pgx.Row) (*domain.TimeSlot, error) {
	var s domain.TimeSlot
	err := row.Scan(&s.ID, &s.RestaurantID, &s.Date, &s.Time, &s.TotalSeats, &s.BookedSeats, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

var _ TimeSlotRepository = (*PGTimeSlotRepository)(nil)
