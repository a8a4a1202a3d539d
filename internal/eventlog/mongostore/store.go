package mongostore

import (
	"context"
	"errors"
	"strings"
	"time"

	"chatbot-platform/internal/eventlog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName holds one document per workspace: _id is the workspace ID
// and each configured kind is an optional string field named by Kind.Key().
// An absent field means "not configured".
const CollectionName = "workspaces"

// Store persists routing tables in MongoDB.
type Store struct {
	coll  *mongo.Collection
	clock func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(CollectionName), clock: time.Now}
}

func (s *Store) GetOrCreate(ctx context.Context, workspaceID string) (eventlog.RoutingConfig, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return eventlog.RoutingConfig{}, eventlog.ErrInvalidArgument
	}
	filter := bson.M{"_id": workspaceID}
	update := bson.M{"$setOnInsert": bson.M{"created_at": s.clock().UTC()}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc document
	err := retryDuplicate(func() error {
		return s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	})
	if err != nil {
		return eventlog.RoutingConfig{}, eventlog.WrapUnavailable(err)
	}
	return doc.config(), nil
}

func (s *Store) SetDestination(ctx context.Context, workspaceID string, kind eventlog.Kind, channelID string) error {
	if err := eventlog.ValidateSet(workspaceID, kind, channelID); err != nil {
		return err
	}
	update := destinationUpdate(kind, channelID, s.clock().UTC())
	err := retryDuplicate(func() error {
		_, err := s.coll.UpdateOne(ctx, bson.M{"_id": workspaceID}, update, options.Update().SetUpsert(true))
		return err
	})
	if err != nil {
		return eventlog.WrapUnavailable(err)
	}
	return nil
}

// Ping reports whether the deployment is reachable.
func (s *Store) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.coll.Database().Client().Ping(pingCtx, nil)
}

// destinationUpdate sets or unsets exactly one kind's field.
func destinationUpdate(kind eventlog.Kind, channelID string, now time.Time) bson.M {
	if channelID == "" {
		return bson.M{
			"$unset":       bson.M{kind.Key(): ""},
			"$set":         bson.M{"updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		}
	}
	return bson.M{
		"$set":         bson.M{kind.Key(): channelID, "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
}

// retryDuplicate retries once when two upserts for a new _id race and the
// loser fails on the unique index; the retry finds the winner's document.
func retryDuplicate(op func() error) error {
	err := op()
	if err != nil && mongo.IsDuplicateKeyError(err) {
		err = op()
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Upsert with ReturnDocument(After) always yields a document.
		return errors.New("mongostore: upsert returned no document")
	}
	return err
}
