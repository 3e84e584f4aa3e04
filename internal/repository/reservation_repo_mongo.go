package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bookabite/reservations/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoReservationRepository struct {
	coll *mongo.Collection
}

func NewMongoReservationRepository(db *mongo.Database) *MongoReservationRepository {
	return &MongoReservationRepository{coll: db.Collection("reservations")}
}

// EnsureIndexes creates the confirmation-code unique index and the lookup indexes.
func (r *MongoReservationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "confirmationCode", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("confirmation_code_unique"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("user_idx"),
		},
		{
			Keys:    bson.D{{Key: "restaurantId", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetName("restaurant_date_time_idx"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("status_date_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create reservation indexes: %w", err)
	}
	return nil
}

func (r *MongoReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	res.ConfirmationCode = strings.ToUpper(res.ConfirmationCode)
	now := time.Now().UTC()
	res.CreatedAt, res.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, res); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *MongoReservationRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"confirmationCode": strings.ToUpper(code)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoReservationRepository) GetByConfirmationCode(ctx context.Context, code string) (*domain.Reservation, error) {
	return r.findOne(ctx, bson.M{"confirmationCode": strings.ToUpper(code)})
}

func (r *MongoReservationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"userId": userID}, opts)
}

func (r *MongoReservationRepository) ListByRestaurant(ctx context.Context, restaurantID string, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	query := bson.M{"restaurantId": restaurantID}
	if filter.Date != "" {
		query["date"] = filter.Date
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	return r.find(ctx, query, opts)
}

func (r *MongoReservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"customerName":       res.CustomerName,
			"customerEmail":      res.CustomerEmail,
			"customerPhone":      res.CustomerPhone,
			"status":             res.Status,
			"specialRequest":     res.SpecialRequest,
			"cancellationReason": res.CancellationReason,
			"cancelledAt":        res.CancelledAt,
			"updatedAt":          now,
		},
		"$inc": bson.M{"version": 1},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": res.ID, "version": res.Version}, update)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		if _, getErr := r.GetByID(ctx, res.ID); getErr != nil {
			return getErr
		}
		return ErrVersionConflict
	}
	res.Version++
	res.UpdatedAt = now
	return nil
}

func (r *MongoReservationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteBefore cannot return the documents touched by an UpdateMany, so each
// candidate is flipped with its own version-guarded update.
func (r *MongoReservationRepository) CompleteBefore(ctx context.Context, date, slotTime string) ([]domain.Reservation, error) {
	candidates, err := r.find(ctx, bson.M{
		"status": domain.ReservationStatusConfirmed,
		"$or": bson.A{
			bson.M{"date": bson.M{"$lt": date}},
			bson.M{"date": date, "time": bson.M{"$lt": slotTime}},
		},
	}, options.Find())
	if err != nil {
		return nil, err
	}

	completed := make([]domain.Reservation, 0, len(candidates))
	for _, res := range candidates {
		res.Status = domain.ReservationStatusCompleted
		if err := r.Update(ctx, &res); err != nil {
			if errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrNotFound) {
				continue
			}
			return completed, err
		}
		completed = append(completed, res)
	}
	return completed, nil
}

func (r *MongoReservationRepository) findOne(ctx context.Context, filter bson.M) (*domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	var res domain.Reservation
	if err := r.coll.FindOne(ctx, filter).Decode(&res); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	return &res, nil
}

func (r *MongoReservationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reservations: %w", err)
	}
	defer cursor.Close(ctx)

	list := make([]domain.Reservation, 0)
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("error decoding reservations: %w", err)
	}
	return list, nil
}

var _ ReservationRepository = (*MongoReservationRepository)(nil)
