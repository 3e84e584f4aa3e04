package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bookabite/reservations/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reservationColumns = `id, confirmation_code, user_id, restaurant_id, time_slot_id, slot_date, slot_time, guests,
	customer_name, customer_email, customer_phone, status, special_request, cancellation_reason, cancelled_at,
	version, created_at, updated_at`

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

func (r *PGReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	res.ConfirmationCode = strings.ToUpper(res.ConfirmationCode)
	err := r.db.QueryRow(ctx, `INSERT INTO reservations (id, confirmation_code, user_id, restaurant_id, time_slot_id, slot_date, slot_time, guests,
			customer_name, customer_email, customer_phone, status, special_request, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`,
		res.ID, res.ConfirmationCode, res.UserID, res.RestaurantID, res.TimeSlotID, res.Date, res.Time, res.Guests,
		res.CustomerName, res.CustomerEmail, res.CustomerPhone, res.Status, res.SpecialRequest, res.Version).
		Scan(&res.CreatedAt, &res.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PGReservationRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reservations WHERE confirmation_code=$1)`, strings.ToUpper(code)).Scan(&exists)
	return exists, err
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id)
	return scanReservation(row)
}

func (r *PGReservationRepository) GetByConfirmationCode(ctx context.Context, code string) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE confirmation_code=$1`, strings.ToUpper(code))
	return scanReservation(row)
}

func (r *PGReservationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func (r *PGReservationRepository) ListByRestaurant(ctx context.Context, restaurantID string, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE restaurant_id=$1`
	args := []any{restaurantID}
	if filter.Date != "" {
		args = append(args, filter.Date)
		query += fmt.Sprintf(" AND slot_date=$%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status=$%d", len(args))
	}
	query += " ORDER BY slot_date, slot_time"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func (r *PGReservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	err := r.db.QueryRow(ctx, `UPDATE reservations
		SET customer_name=$3, customer_email=$4, customer_phone=$5, status=$6, special_request=$7,
			cancellation_reason=$8, cancelled_at=$9, version = version + 1, updated_at = now()
		WHERE id=$1 AND version=$2
		RETURNING version, updated_at`,
		res.ID, res.Version, res.CustomerName, res.CustomerEmail, res.CustomerPhone, res.Status, res.SpecialRequest,
		res.CancellationReason, res.CancelledAt).
		Scan(&res.Version, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, res.ID); getErr != nil {
			return getErr
		}
		return ErrVersionConflict
	}
	return err
}

func (r *PGReservationRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGReservationRepository) CompleteBefore(ctx context.Context, date, slotTime string) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `UPDATE reservations
		SET status=$1, version = version + 1, updated_at = now()
		WHERE status=$2 AND (slot_date < $3 OR (slot_date = $3 AND slot_time < $4))
		RETURNING `+reservationColumns,
		domain.ReservationStatusCompleted, domain.ReservationStatusConfirmed, date, slotTime)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()

	list := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *res)
	}
	return list, rows.Err()
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(&res.ID, &res.ConfirmationCode, &res.UserID, &res.RestaurantID, &res.TimeSlotID, &res.Date, &res.Time, &res.Guests,
		&res.CustomerName, &res.CustomerEmail, &res.CustomerPhone, &res.Status, &res.SpecialRequest, &res.CancellationReason, &res.CancelledAt,
		&res.Version, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
