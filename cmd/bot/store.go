package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chatbot-platform/internal/audit"
	"chatbot-platform/internal/config"
	"chatbot-platform/internal/eventlog"
	"chatbot-platform/internal/eventlog/mongostore"
	"chatbot-platform/internal/eventlog/pgstore"
	"chatbot-platform/pkg/utils"
)

// backend is the persistence selected by STORE_BACKEND: the routing store and
// the audit trail share one connection.
type backend struct {
	Store eventlog.Store
	Audit audit.Repository
	Close func()
}

func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (backend, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := utils.OpenPostgres(ctx, cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			return backend{}, err
		}
		s := pgstore.New(db)
		trail := audit.NewPostgresRepo(db)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return backend{}, err
		}
		if err := trail.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return backend{}, err
		}
		return backend{Store: s, Audit: trail, Close: func() { _ = db.Close() }}, nil

	case config.BackendMongo:
		client, err := utils.OpenMongo(ctx, utils.MongoConfig{URI: cfg.Mongo.URI})
		if err != nil {
			return backend{}, err
		}
		db := client.Database(cfg.Mongo.Database)
		return backend{
			Store: mongostore.New(db),
			Audit: audit.NewMongoRepo(db),
			Close: func() {
				if err := utils.CloseMongo(client, 5*time.Second); err != nil {
					log.Warn("mongo disconnect failed", "err", err)
				}
			},
		}, nil

	case config.BackendMemory:
		log.Warn("using in-memory routing store; settings are lost on restart")
		return backend{Store: eventlog.NewMemoryStore(), Audit: audit.NewMemoryRepo(), Close: func() {}}, nil
	}
	return backend{}, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
