package mongostore

import (
	"errors"
	"testing"
	"time"

	"chatbot-platform/internal/eventlog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestDestinationUpdate_SetsOneField(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	u := destinationUpdate(eventlog.KindEdited, "c1", now)

	set, ok := u["$set"].(bson.M)
	if !ok {
		t.Fatalf("expected $set, got %v", u)
	}
	if set["edited"] != "c1" {
		t.Fatalf("expected edited=c1, got %v", set)
	}
	if len(set) != 2 {
		t.Fatalf("expected only the kind and updated_at, got %v", set)
	}
	if _, ok := u["$unset"]; ok {
		t.Fatalf("did not expect $unset")
	}
}

func TestDestinationUpdate_ClearUnsetsField(t *testing.T) {
	u := destinationUpdate(eventlog.KindLeft, "", time.Now())
	unset, ok := u["$unset"].(bson.M)
	if !ok {
		t.Fatalf("expected $unset, got %v", u)
	}
	if _, ok := unset["left"]; !ok || len(unset) != 1 {
		t.Fatalf("expected only left unset, got %v", unset)
	}
	if set := u["$set"].(bson.M); set["left"] != nil {
		t.Fatalf("did not expect left in $set")
	}
}

func TestRetryDuplicate_RetriesOnce(t *testing.T) {
	calls := 0
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	err := retryDuplicate(func() error {
		calls++
		if calls == 1 {
			return dup
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("expected one retry and success, got calls=%d err=%v", calls, err)
	}

	other := errors.New("server selection timeout")
	calls = 0
	if err := retryDuplicate(func() error { calls++; return other }); !errors.Is(err, other) || calls != 1 {
		t.Fatalf("expected no retry for other errors, got calls=%d err=%v", calls, err)
	}
}

func TestRoutingConfig_DecodesDocument(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"_id": "w", "joined": "c1", "created_at": time.Now()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var cfg eventlog.RoutingConfig
	if err := bson.Unmarshal(raw, &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.WorkspaceID != "w" || cfg.Joined != "c1" || cfg.Left != "" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestDocument_DecodesLegacyIntegerIDs(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"_id":    "w",
		"joined": int64(1066358019164901376),
		"left":   int32(42),
		"edited": "c3",
		"unused": true,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc document
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	cfg := doc.config()
	if cfg.Joined != "1066358019164901376" || cfg.Left != "42" || cfg.Edited != "c3" || cfg.Deleted != "" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestDocument_RejectsLossyIDs(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"_id": "w", "joined": 1.5})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc document
	if err := bson.Unmarshal(raw, &doc); err == nil {
		t.Fatalf("expected error for a floating point id")
	}
}
