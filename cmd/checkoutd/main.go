package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/omnibus/ticket-checkout/internal/api"
	"github.com/omnibus/ticket-checkout/internal/api/handler"
	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/core/service"
	"github.com/omnibus/ticket-checkout/internal/infrastructure/backend"
	mongodb "github.com/omnibus/ticket-checkout/internal/infrastructure/db/mongo"
	redisdb "github.com/omnibus/ticket-checkout/internal/infrastructure/db/redis"
	"github.com/omnibus/ticket-checkout/internal/infrastructure/presenter"
	"github.com/omnibus/ticket-checkout/internal/infrastructure/queue"
	"github.com/omnibus/ticket-checkout/internal/pkg/config"
	"github.com/omnibus/ticket-checkout/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Development(), Service: "checkoutd"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()
	store := redisdb.NewKVStore(rdb, cfg.Redis.Prefix)
	guard := redisdb.NewPurchaseGuard(rdb, cfg.Redis.Prefix)

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	repo := mongodb.NewCheckoutRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("checkout audit indexes")
	}

	// --- Core ---
	inbox := presenter.NewInbox(logger.Component("presenter"))
	client := backend.New(backend.Config{BaseURL: cfg.Backend.BaseURL, Timeout: cfg.Backend.Timeout}, store,
		logger.Component("backend"))

	monitor := service.NewSessionMonitor(store, inbox, service.SessionMonitorConfig{
		CheckInterval:     cfg.Session.CheckInterval,
		ForbiddenIsExpiry: cfg.Session.ForbiddenIsExpiry,
	}, logger.Component("session"))
	client.SetUnauthorizedHandler(monitor)

	push := service.NewPushTokenService(client, store, logger.Component("push"))
	auth := service.NewAuthService(client, store, monitor, push, inbox, logger.Component("auth"))
	monitor.SetLogoutCallback(auth.Logout)
	tickets := service.NewTicketService(client, store)

	checkouts := service.NewCheckoutService(service.CoordinatorDeps{
		Backend:   client,
		Surface:   inbox,
		Presenter: inbox,
		Repo:      repo,
		Guard:     guard,
		Classifier: service.NewURLClassifier(service.DefaultPatternTable().
			WithReturnPaths(cfg.Checkout.ReturnSuccessPath, cfg.Checkout.ReturnCancelPath)),
	}, store, monitor, logger.Component("checkout"))

	dispatcher := queue.NewDispatcher(cfg.Checkout.DispatchWorkers, checkouts, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	// A credential surviving a restart is monitored right away.
	if _, err := store.Get(ctx, domain.KeyAuthToken); err == nil {
		monitor.Start(ctx)
	}
	defer monitor.Stop()

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Auth:       auth,
		Session:    monitor,
		Checkouts:  checkouts,
		Tickets:    tickets,
		Push:       push,
		Store:      store,
		Inbox:      inbox,
		Dispatcher: dispatcher,
		Health: map[string]handler.HealthCheck{
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
		},
	}, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("checkout bridge listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}
