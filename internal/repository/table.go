package repository

import (
	"context"
	"errors"
	"fmt"

	"tablebook/pkg/config"
	"tablebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTableRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTableRepository(cfg *config.Config) TableRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTableRepository{
		cfg:        cfg,
		collection: db.Collection(TablesCollection),
	}
}

func (r *mongoTableRepository) Create(ctx context.Context, table *model.Table) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	table.CreatedAt = now()
	table.UpdatedAt = table.CreatedAt
	if _, err := r.collection.InsertOne(ctx, table); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: table number %s", ErrDuplicate, table.Number)
		}
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (r *mongoTableRepository) FindByID(ctx context.Context, id string) (*model.Table, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var table model.Table
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&table)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: table %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find table: %w", err)
	}
	return &table, nil
}

func (r *mongoTableRepository) FindByRestaurant(ctx context.Context, restaurantID string, activeOnly bool) ([]*model.Table, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"restaurant_id": restaurantID}
	if activeOnly {
		filter["is_active"] = true
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "sort_order", Value: 1},
		{Key: "number", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer cursor.Close(ctx)

	tables := []*model.Table{}
	if err = cursor.All(ctx, &tables); err != nil {
		return nil, fmt.Errorf("failed to decode tables: %w", err)
	}
	return tables, nil
}

func (r *mongoTableRepository) Update(ctx context.Context, table *model.Table) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	table.UpdatedAt = now()
	update := bson.M{
		"$set": bson.M{
			"number":     table.Number,
			"capacity":   table.Capacity,
			"zone":       table.Zone,
			"is_active":  table.IsActive,
			"sort_order": table.SortOrder,
			"updated_at": table.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": table.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: table number %s", ErrDuplicate, table.Number)
		}
		return fmt.Errorf("failed to update table: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: table %s", ErrNotFound, table.ID)
	}
	return nil
}
