package audit

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

const MongoCollection = "routing_audit_events"

// MongoRepo appends events with InsertOne; _id is the event ID.
type MongoRepo struct {
	coll *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{coll: db.Collection(MongoCollection)}
}

func (r *MongoRepo) Append(ctx context.Context, e Event) error {
	if _, err := r.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("audit: append: %w", err)
	}
	return nil
}
