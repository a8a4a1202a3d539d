package audit

import (
	"context"
	"database/sql"
	"fmt"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS routing_audit_events (
  id           UUID PRIMARY KEY,
  workspace_id TEXT NOT NULL,
  type         TEXT NOT NULL,
  kind         TEXT NOT NULL,
  channel_id   TEXT NULL,
  actor_id     TEXT NULL,
  actor_role   TEXT NULL,
  source       TEXT NOT NULL,
  ip_address   TEXT NULL,
  created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS routing_audit_events_workspace_idx
  ON routing_audit_events (workspace_id, created_at DESC);
`

const postgresInsert = `
INSERT INTO routing_audit_events
  (id, workspace_id, type, kind, channel_id, actor_id, actor_role, source, ip_address, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

// PostgresRepo appends events to an INSERT-only table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("audit: ensure schema: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, postgresInsert,
		e.ID, e.WorkspaceID, string(e.Type), e.Kind,
		nullable(e.ChannelID), nullable(e.ActorID), nullable(e.ActorRole),
		string(e.Source), nullable(e.IPAddress), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: append: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
