package utils

import (
	"context"
	"database/sql"
	"testing"
	"time"
)

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	got := PostgresPoolConfig{}.withDefaults()
	if got.MaxOpenConns != 10 || got.MaxIdleConns != 10 {
		t.Fatalf("unexpected pool sizes: %+v", got)
	}
	if got.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected ping timeout: %v", got.PingTimeout)
	}

	got = PostgresPoolConfig{MaxOpenConns: 4, MaxIdleConns: 9}.withDefaults()
	if got.MaxIdleConns != 4 {
		t.Fatalf("idle conns must not exceed open conns, got %d", got.MaxIdleConns)
	}
}

func TestWithTx_NilDB(t *testing.T) {
	called := false
	err := WithTx(context.Background(), nil, nil, func(context.Context, *sql.Tx) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Fatalf("expected error without running fn, got err=%v called=%v", err, called)
	}
	if err := HealthCheck(context.Background(), nil, time.Second); err == nil {
		t.Fatalf("expected health check error for nil db")
	}
}
