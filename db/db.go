package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store holds the collection handles. It is constructed once in main and
// injected into every service; no package-level collection state.
type Store struct {
	Users           *mongo.Collection
	Catalog         *mongo.Collection
	AddedClasses    *mongo.Collection
	Selections      *mongo.Collection
	Payments        *mongo.Collection
	Idempotency     *mongo.Collection
	Reconciliations *mongo.Collection
}

func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

func NewStore(client *mongo.Client, database string) *Store {
	d := client.Database(database)
	return &Store{
		Users:           d.Collection("users"),
		Catalog:         d.Collection("classes"),
		AddedClasses:    d.Collection("addedClasses"),
		Selections:      d.Collection("selectedClasses"),
		Payments:        d.Collection("payments"),
		Idempotency:     d.Collection("idempotency"),
		Reconciliations: d.Collection("reconciliations"),
	}
}

// EnsureIndexes creates the indexes the store relies on: unique user email,
// unique payment selection ref (the duplicate-settlement guard), and the
// unique + TTL pair for idempotency records.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true).SetName("unique_email"),
	})
	if err != nil {
		return err
	}

	_, err = s.Payments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"selection_id": 1},
		Options: options.Index().SetUnique(true).SetName("unique_selection"),
	})
	if err != nil {
		return err
	}

	_, err = s.Idempotency.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.M{"key": 1},
			Options: options.Index().SetUnique(true).SetName("unique_key"),
		},
		{
			Keys:    bson.M{"expires_at": 1},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at"),
		},
	})
	return err
}

// IsDup reports whether err is a Mongo duplicate-key write error.
func IsDup(err error) bool {
	if err == nil {
		return false
	}
	if we, ok := err.(mongo.WriteException); ok {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}

// ConnectTimeout bounds the startup round trips to Mongo.
const ConnectTimeout = 10 * time.Second
