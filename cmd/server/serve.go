package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coworking-reservation-server/internal/config"
	"coworking-reservation-server/internal/handler"
	"coworking-reservation-server/internal/metrics"
	"coworking-reservation-server/internal/middleware"
	"coworking-reservation-server/internal/notification"
	"coworking-reservation-server/internal/repository"
	"coworking-reservation-server/internal/service"
	"coworking-reservation-server/internal/websocket"
	"coworking-reservation-server/pkg/hash"
	"coworking-reservation-server/pkg/logger"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log := logger.New(cfg.Logging.Level, cfg.Server.Env)

	pool, store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	checks := map[string]handler.Check{"postgres": store.Ping}

	var workspaceRepo repository.WorkspaceRepository = repository.NewWorkspaceRepository(store)
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, cache will miss until it recovers")
		}
		workspaceRepo = repository.NewCachedWorkspaceRepository(workspaceRepo, rdb, cfg.Redis.CacheTTL, log)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	reservationRepo := repository.NewReservationRepository(store)
	userRepo := repository.NewUserRepository(store)

	var notificationRepo repository.NotificationRepository
	if cfg.Notifications.CouchDBURL != "" {
		couch, err := kivik.New("couch", cfg.Notifications.CouchDBURL)
		if err != nil {
			return fmt.Errorf("connect to couchdb: %w", err)
		}
		defer couch.Close()
		if err := repository.EnsureCouchDB(ctx, couch, cfg.Notifications.CouchDBName); err != nil {
			return err
		}
		notificationRepo = repository.NewNotificationRepository(couch, cfg.Notifications.CouchDBName)
		checks["couchdb"] = func(ctx context.Context) error {
			_, err := couch.Ping(ctx)
			return err
		}
	}

	if cfg.Metrics.Enabled {
		metrics.Register()
	}

	wsManager := websocket.NewManager(websocket.Options{
		MaxConnPerUser: cfg.WebSocket.MaxConnPerUser,
		WriteWait:      cfg.WebSocket.WriteWait,
		PongWait:       cfg.WebSocket.PongWait,
		PingPeriod:     cfg.WebSocket.PingPeriod,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
	}, log)
	wsCtx, stopWS := context.WithCancel(context.Background())
	defer stopWS()
	go wsManager.Run(wsCtx)

	userService := service.NewUserService(userRepo, log)

	sinks := []notification.Sink{notification.NewLogSink(log), notification.NewWebSocketSink(wsManager)}
	if notificationRepo != nil {
		sinks = append(sinks, notification.NewStoreSink(notificationRepo))
	}
	dispatcher := notification.NewDispatcher(notification.Options{
		QueueSize: cfg.Notifications.QueueSize,
		Workers:   cfg.Notifications.Workers,
		Timeout:   cfg.Notifications.Timeout,
	}, userService, log, sinks...)
	dispatcher.Start()

	locks := service.NewWorkspaceLocks()
	authService := service.NewAuthService(userRepo, hash.Bcrypt{}, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshTokenExpiration, log)
	workspaceService := service.NewWorkspaceService(workspaceRepo, dispatcher, locks, log)
	reservationService := service.NewReservationService(store, workspaceRepo, reservationRepo, dispatcher, locks, log)
	reportService := service.NewReportService(workspaceRepo, reservationRepo)

	deps := handler.RouterDeps{
		Logger:        log,
		JWTSecret:     cfg.JWT.Secret,
		CORS:          cfg.CORS,
		Auth:          handler.NewAuthHandler(authService),
		Users:         handler.NewUserHandler(userService),
		Workspaces:    handler.NewWorkspaceHandler(workspaceService, reservationService),
		Reservations:  handler.NewReservationHandler(reservationService, userService),
		Reports:       handler.NewReportHandler(reportService),
		Notifications: handler.NewNotificationHandler(notificationRepo),
		WebSocket:     handler.NewWebSocketHandler(wsManager, cfg.JWT.Secret, cfg.WebSocket.ReadBufferSize, cfg.WebSocket.WriteBufferSize, log),
		Health:        handler.NewHealthHandler(checks),
	}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		deps.RateLimiter = limiter
		go sweepLimiter(ctx, limiter)
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = promhttp.Handler()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Server.Env).Msg("starting coworking reservation server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	return shutdown(srv, dispatcher, stopWS, cfg.Server.ShutdownTimeout, log)
}

// shutdown stops intake first, then drains pending notifications, then closes
// websocket clients so the last confirmations still reach them.
func shutdown(srv *http.Server, dispatcher *notification.Dispatcher, stopWS context.CancelFunc, timeout time.Duration, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := dispatcher.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("notifications still pending at shutdown")
	}
	stopWS()

	log.Info().Msg("server stopped gracefully")
	return nil
}

func sweepLimiter(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Cleanup()
		}
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, *repository.PostgresStore, error) {
	pool, err := repository.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, nil, err
	}
	store := repository.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pool, store, nil
}
