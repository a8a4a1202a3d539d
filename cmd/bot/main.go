package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatbot-platform/internal/audit"
	"chatbot-platform/internal/auth"
	"chatbot-platform/internal/config"
	"chatbot-platform/internal/discord"
	"chatbot-platform/internal/eventlog"
	"chatbot-platform/internal/httpapi"
	"chatbot-platform/internal/msgcache"
	"chatbot-platform/pkg/logger"
	"chatbot-platform/pkg/tracing"
	"chatbot-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const serviceName = "chatbot-platform"

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env, serviceName)
	slog.SetDefault(log)

	if err := run(rootCtx, stop, cfg, log); err != nil {
		log.Error("bot stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stop context.CancelFunc, cfg config.Config, log *slog.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracing, err := tracing.Setup(ctx, serviceName, cfg.Telemetry.OTLPEndpoint, cfg.App.Env)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("tracing flush failed", "err", err)
		}
	}()

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		return err
	}

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer be.Close()
	store := be.Store
	trail := audit.NewService(be.Audit)

	var rdb *redis.Client
	if addr := cfg.RedisAddr(); addr != "" {
		rdb, err = utils.OpenRedis(ctx, utils.RedisConfig{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	session, err := discord.NewSession(cfg.Discord.Token, cfg.Discord.StateMaxMessages)
	if err != nil {
		return err
	}

	var cache msgcache.Cache = msgcache.NewMemory(cfg.Dispatch.MessageCacheTTL, 0)
	var joins msgcache.JoinTimes = msgcache.NewMemoryJoins(0)
	var limiter discord.Limiter
	if rdb != nil {
		cache = msgcache.NewRedis(rdb, cfg.Dispatch.MessageCacheTTL)
		joins = msgcache.NewRedisJoins(rdb)
		if cfg.Dispatch.MaxInFlight > 0 {
			limiter = discord.NewSlotLimiter(rdb, cfg.Dispatch.MaxInFlight, cfg.Dispatch.EventTimeout)
		}
	}

	dir := discord.NewDirectory(session)
	router := eventlog.NewRouter(store, eventlog.NewResolver(dir), discord.NewDeliverer(session, limiter))
	dispatcher := eventlog.NewDispatcher(router, eventlog.DispatcherConfig{
		Workers:   cfg.Dispatch.Workers,
		QueueSize: cfg.Dispatch.QueueSize,
		Timeout:   cfg.Dispatch.EventTimeout,
	}, log)
	dispatcher.Start(ctx)

	bot := discord.NewBot(session, dispatcher, eventlog.NewCommands(store), cache, dir,
		discord.BotConfig{CommandGuildID: cfg.Discord.CommandGuildID}, log).
		WithAudit(trail).
		WithJoinTimes(joins)
	if err := bot.Open(ctx); err != nil {
		dispatcher.Stop()
		return err
	}

	handlers := httpapi.Handlers{
		Auth:     authManager,
		Store:    store,
		Settings: eventlog.NewSettings(store),
		Resolver: eventlog.NewResolver(dir),
		Audit:    trail,
	}
	if p, ok := store.(httpapi.Pinger); ok {
		handlers.Health = p
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           httpapi.NewRouter(log, handlers),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("admin api listening", "addr", srv.Addr, "env", cfg.App.Env, "store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	// Stop gateway intake before draining queued events.
	if err := bot.Close(); err != nil {
		log.Error("discord close failed", "err", err)
	}
	dispatcher.Stop()
	return nil
}
