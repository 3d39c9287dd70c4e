package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type lockDocument struct {
	ID        string    `bson:"_id"`
	Owner     string    `bson:"owner"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// MongoLocker stores one advisory lock document per key. The unique _id makes
// the insert the acquisition; a TTL index on expires_at reaps documents left
// by crashed holders.
type MongoLocker struct {
	collection    *mongo.Collection
	ttl           time.Duration
	retryInterval time.Duration
}

func NewMongoLocker(collection *mongo.Collection, ttl, retryInterval time.Duration) *MongoLocker {
	return &MongoLocker{
		collection:    collection,
		ttl:           ttl,
		retryInterval: retryInterval,
	}
}

func (l *MongoLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	owner := uuid.NewString()
	delay := l.retryInterval

	for {
		now := time.Now().UTC()
		_, err := l.collection.InsertOne(ctx, lockDocument{
			ID:        key,
			Owner:     owner,
			CreatedAt: now,
			ExpiresAt: now.Add(l.ttl),
		})
		if err == nil {
			return l.release(key, owner), nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}

		// The TTL monitor runs about once a minute, so expired holders are
		// cleared here as well.
		if _, err := l.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lt": now}}); err != nil {
			return nil, fmt.Errorf("failed to clear expired lock %s: %w", key, err)
		}

		if err := wait(ctx, delay); err != nil {
			return nil, err
		}
		delay = backoff(delay)
	}
}

func (l *MongoLocker) release(key, owner string) ReleaseFunc {
	return func(ctx context.Context) error {
		if _, err := l.collection.DeleteOne(ctx, bson.M{"_id": key, "owner": owner}); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		return nil
	}
}
