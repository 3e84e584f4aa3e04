package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookabite/reservations/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoOpTimeout = 5 * time.Second

type MongoTimeSlotRepository struct {
	coll *mongo.Collection
}

func NewMongoTimeSlotRepository(db *mongo.Database) *MongoTimeSlotRepository {
	return &MongoTimeSlotRepository{coll: db.Collection("timeslots")}
}

// EnsureIndexes creates the unique (restaurantId, date, time) index backing slot identity.
func (r *MongoTimeSlotRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "restaurantId", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("restaurant_date_time_unique"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create timeslot indexes: %w", err)
	}
	return nil
}

func (r *MongoTimeSlotRepository) Find(ctx context.Context, restaurantID, date, slotTime string) (*domain.TimeSlot, error) {
	return r.findOne(ctx, bson.M{"restaurantId": restaurantID, "date": date, "time": slotTime})
}

func (r *MongoTimeSlotRepository) GetByID(ctx context.Context, id string) (*domain.TimeSlot, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoTimeSlotRepository) ListByRestaurantDate(ctx context.Context, restaurantID, date string) ([]domain.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "time", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"restaurantId": restaurantID, "date": date}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timeslots: %w", err)
	}
	defer cursor.Close(ctx)

	slots := make([]domain.TimeSlot, 0)
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding timeslots: %w", err)
	}
	return slots, nil
}

func (r *MongoTimeSlotRepository) Create(ctx context.Context, slot *domain.TimeSlot) error {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	now := time.Now().UTC()
	slot.CreatedAt, slot.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, slot); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *MongoTimeSlotRepository) Update(ctx context.Context, restaurantID, date, slotTime string, patch domain.TimeSlotPatch) (*domain.TimeSlot, error) {
	filter := bson.M{"restaurantId": restaurantID, "date": date, "time": slotTime}
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.TotalSeats != nil {
		filter["bookedSeats"] = bson.M{"$lte": *patch.TotalSeats}
		set["totalSeats"] = *patch.TotalSeats
	}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}

	slot, err := r.findOneAndUpdate(ctx, filter, update)
	if errors.Is(err, ErrNotFound) {
		if _, findErr := r.Find(ctx, restaurantID, date, slotTime); findErr != nil {
			return nil, findErr
		}
		return nil, ErrSeatsBelowBooked
	}
	return slot, err
}

func (r *MongoTimeSlotRepository) IncrementBooked(ctx context.Context, slotID string, delta int) (*domain.TimeSlot, error) {
	now := time.Now().UTC()
	if delta < 0 {
		pipeline := mongo.Pipeline{
			{{Key: "$set", Value: bson.M{
				"bookedSeats": bson.M{"$max": bson.A{bson.M{"$add": bson.A{"$bookedSeats", delta}}, 0}},
				"version":     bson.M{"$add": bson.A{"$version", 1}},
				"updatedAt":   now,
			}}},
		}
		return r.findOneAndUpdate(ctx, bson.M{"_id": slotID}, pipeline)
	}

	filter := bson.M{
		"_id": slotID,
		"$expr": bson.M{"$lte": bson.A{
			bson.M{"$add": bson.A{"$bookedSeats", delta}},
			"$totalSeats",
		}},
	}
	update := bson.M{
		"$inc": bson.M{"bookedSeats": delta, "version": 1},
		"$set": bson.M{"updatedAt": now},
	}
	slot, err := r.findOneAndUpdate(ctx, filter, update)
	if errors.Is(err, ErrNotFound) {
		current, getErr := r.GetByID(ctx, slotID)
		if getErr != nil {
			return nil, getErr
		}
		return current, ErrInsufficientCapacity
	}
	return slot, err
}

func (r *MongoTimeSlotRepository) findOne(ctx context.Context, filter bson.M) (*domain.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	var slot domain.TimeSlot
	if err := r.coll.FindOne(ctx, filter).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find timeslot: %w", err)
	}
	return &slot, nil
}

func (r *MongoTimeSlotRepository) findOneAndUpdate(ctx context.Context, filter bson.M, update any) (*domain.TimeSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var slot domain.TimeSlot
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update timeslot: %w", err)
	}
	return &slot, nil
}

var _ TimeSlotRepository = (*MongoTimeSlotRepository)(nil)
