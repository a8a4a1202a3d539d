package utils

import (
	"context"
	"testing"
	"time"
)

func TestMongoConfig_Defaults(t *testing.T) {
	got := MongoConfig{MinPoolSize: 80}.withDefaults()
	if got.MaxPoolSize != 50 || got.MinPoolSize != 50 {
		t.Fatalf("unexpected pool sizes: %+v", got)
	}
	if got.ConnectTimeout != 5*time.Second || got.PingTimeout != 2*time.Second {
		t.Fatalf("unexpected timeouts: %+v", got)
	}
}

func TestMongoConfig_ClientOptions(t *testing.T) {
	opts := MongoConfig{URI: "mongodb://localhost:27017"}.withDefaults().clientOptions()
	if opts.MaxPoolSize == nil || *opts.MaxPoolSize != 50 {
		t.Fatalf("expected max pool size applied")
	}
	if len(opts.Hosts) != 1 || opts.Hosts[0] != "localhost:27017" {
		t.Fatalf("expected uri hosts applied, got %v", opts.Hosts)
	}
}

func TestOpenMongo_RequiresURI(t *testing.T) {
	if _, err := OpenMongo(context.Background(), MongoConfig{}); err == nil {
		t.Fatalf("expected error for empty uri")
	}
	if err := CloseMongo(nil, time.Second); err != nil {
		t.Fatalf("closing nil client should be a no-op: %v", err)
	}
}
