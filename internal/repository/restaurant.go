package repository

import (
	"context"
	"errors"
	"fmt"

	"tablebook/pkg/config"
	"tablebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoRestaurantRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRestaurantRepository(cfg *config.Config) RestaurantRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRestaurantRepository{
		cfg:        cfg,
		collection: db.Collection(RestaurantsCollection),
	}
}

func (r *mongoRestaurantRepository) Create(ctx context.Context, restaurant *model.Restaurant) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	restaurant.CreatedAt = now()
	restaurant.UpdatedAt = restaurant.CreatedAt
	if _, err := r.collection.InsertOne(ctx, restaurant); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: restaurant slug %s", ErrDuplicate, restaurant.Slug)
		}
		return fmt.Errorf("failed to create restaurant: %w", err)
	}
	return nil
}

func (r *mongoRestaurantRepository) FindByID(ctx context.Context, id string) (*model.Restaurant, error) {
	return r.findOne(ctx, bson.M{"_id": id}, id)
}

func (r *mongoRestaurantRepository) FindBySlug(ctx context.Context, slug string) (*model.Restaurant, error) {
	return r.findOne(ctx, bson.M{"slug": slug}, slug)
}

func (r *mongoRestaurantRepository) findOne(ctx context.Context, filter bson.M, key string) (*model.Restaurant, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var restaurant model.Restaurant
	err := r.collection.FindOne(ctx, filter).Decode(&restaurant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: restaurant %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to find restaurant: %w", err)
	}
	return &restaurant, nil
}

func (r *mongoRestaurantRepository) Update(ctx context.Context, restaurant *model.Restaurant) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	restaurant.UpdatedAt = now()
	update := bson.M{
		"$set": bson.M{
			"name":                     restaurant.Name,
			"working_hours_start":      restaurant.WorkingHoursStart,
			"working_hours_end":        restaurant.WorkingHoursEnd,
			"reservation_slot_minutes": restaurant.ReservationSlotMinutes,
			"reservations_enabled":     restaurant.ReservationsEnabled,
			"time_zone":                restaurant.TimeZone,
			"updated_at":               restaurant.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": restaurant.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update restaurant: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: restaurant %s", ErrNotFound, restaurant.ID)
	}
	return nil
}

func (r *mongoRestaurantRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"slug": slug})
	if err != nil {
		return false, fmt.Errorf("failed to check restaurant slug: %w", err)
	}
	return count > 0, nil
}
