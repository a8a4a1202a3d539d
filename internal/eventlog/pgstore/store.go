package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"chatbot-platform/internal/eventlog"
	"chatbot-platform/pkg/utils"

	"github.com/jackc/pgx/v5"
)

// Store persists routing tables in Postgres, one row per workspace.
//
// Every write is a single statement upsert keyed by workspace_id, so writes
// never need a prior read and concurrent writers cannot create two rows.
type Store struct {
	db    *sql.DB
	clock func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, clock: time.Now}
}

const schema = `
CREATE TABLE IF NOT EXISTS workspace_routing (
  workspace_id TEXT PRIMARY KEY,
  joined       TEXT NULL,
  "left"       TEXT NULL,
  edited       TEXT NULL,
  deleted      TEXT NULL,
  created      TEXT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)
`

// EnsureSchema creates the routing table if it is missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("pgstore: ensure schema: %w", err)
	}
	return nil
}

// column returns the quoted column holding kind's destination.
// "left" is a reserved word, so every column goes through pgx quoting.
func column(kind eventlog.Kind) string {
	return pgx.Identifier{kind.Key()}.Sanitize()
}

func selectColumns() string {
	cols := make([]string, 0, len(eventlog.Kinds)+1)
	cols = append(cols, "workspace_id")
	for _, k := range eventlog.Kinds {
		cols = append(cols, column(k))
	}
	return strings.Join(cols, ", ")
}

func (s *Store) GetOrCreate(ctx context.Context, workspaceID string) (eventlog.RoutingConfig, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return eventlog.RoutingConfig{}, eventlog.ErrInvalidArgument
	}

	const insert = `
INSERT INTO workspace_routing (workspace_id, created_at, updated_at)
VALUES ($1, $2, $2)
ON CONFLICT (workspace_id) DO NOTHING
`
	query := `SELECT ` + selectColumns() + ` FROM workspace_routing WHERE workspace_id = $1`

	var out eventlog.RoutingConfig
	now := s.clock().UTC()
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		// A concurrent insert of the same workspace blocks here until it
		// commits, after which the SELECT below sees its row.
		if _, err := tx.ExecContext(ctx, insert, workspaceID, now); err != nil {
			return err
		}
		dest := make([]sql.NullString, len(eventlog.Kinds))
		targets := make([]any, 0, len(dest)+1)
		targets = append(targets, &out.WorkspaceID)
		for i := range dest {
			targets = append(targets, &dest[i])
		}
		if err := tx.QueryRowContext(ctx, query, workspaceID).Scan(targets...); err != nil {
			return err
		}
		for i, k := range eventlog.Kinds {
			out = out.WithDestination(k, dest[i].String)
		}
		return nil
	})
	if err != nil {
		return eventlog.RoutingConfig{}, eventlog.WrapUnavailable(err)
	}
	return out, nil
}

func (s *Store) SetDestination(ctx context.Context, workspaceID string, kind eventlog.Kind, channelID string) error {
	if err := eventlog.ValidateSet(workspaceID, kind, channelID); err != nil {
		return err
	}
	col := column(kind)
	q := `
INSERT INTO workspace_routing (workspace_id, ` + col + `, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (workspace_id)
DO UPDATE SET ` + col + ` = EXCLUDED.` + col + `,
              updated_at = EXCLUDED.updated_at
`
	value := sql.NullString{String: channelID, Valid: channelID != ""}
	if _, err := s.db.ExecContext(ctx, q, workspaceID, value, s.clock().UTC()); err != nil {
		return eventlog.WrapUnavailable(err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return utils.HealthCheck(ctx, s.db, 2*time.Second)
}
