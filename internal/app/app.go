// Package app wires the server's dependencies together with fx. Each constructor here
// takes what it needs as parameters and registers its own start and stop hooks, so
// cmd/server only has to run the Module.
package app

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trentd187/golf-match-tracker/internal/config"
	"github.com/trentd187/golf-match-tracker/internal/database"
	"github.com/trentd187/golf-match-tracker/internal/events"
	"github.com/trentd187/golf-match-tracker/internal/handlers"
	"github.com/trentd187/golf-match-tracker/internal/logger"
	"github.com/trentd187/golf-match-tracker/internal/middleware"
	"github.com/trentd187/golf-match-tracker/internal/services"
)

// ShutdownTimeout bounds how long in-flight requests get to finish on stop.
const ShutdownTimeout = 5 * time.Second

// Module provides every server dependency and starts the HTTP listener.
var Module = fx.Options(
	fx.Provide(NewConfig),
	fx.Provide(NewLogger),
	fx.Provide(NewDB),
	fx.Provide(services.New),
	fx.Provide(events.NewHub),
	fx.Provide(NewServer),
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log.Named("fx")}
	}),
	fx.Invoke(Listen),
)

// NewConfig loads and validates the configuration.
func NewConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewLogger builds the JSON logger and installs it as zap's global, which handlers
// fall back to outside a request.
func NewLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.Debug)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("env", cfg.Env))
	zap.ReplaceGlobals(log)
	lc.Append(fx.StopHook(func() {
		// Sync fails on stdout/stderr on some platforms; nothing useful to do with it.
		_ = log.Sync()
	}))
	return log, nil
}

// NewDB applies pending migrations and then opens the connection pool.
func NewDB(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.PostgresDSN()
	if err := database.RunMigrations(cfg.MigrationsURL, dsn); err != nil {
		return nil, err
	}
	log.Info("migrations applied", zap.String("source", cfg.MigrationsURL))

	db, err := database.Connect(dsn, cfg.Debug)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return database.Close(db)
		},
	})
	return db, nil
}

// NewServer builds the fiber app with global middleware, the public health check, and
// the authenticated /api/v1 routes.
func NewServer(cfg *config.Config, log *zap.Logger, db *gorm.DB, svc *services.Services, hub *events.Hub) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Golf Match Tracker API",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.HeaderRequestID,
	}))
	if cfg.Debug {
		app.Use(fiberlogger.New())
	}
	app.Use(middleware.RequestLogger(log.Named("http")))

	app.Get("/health", handlers.HealthCheck(db))

	api := app.Group("/api/v1", middleware.Auth(cfg, log.Named("auth")))
	handlers.Register(api, svc, hub)
	return app
}

// Listen runs the event hub and binds the port on start, so a taken port fails
// startup. On stop the hub goes first: that closes every open event stream, which would
// otherwise hold the shutdown open until the timeout.
func Listen(lc fx.Lifecycle, app *fiber.App, hub *events.Hub, cfg *config.Config, log *zap.Logger) {
	hubCtx, stopHub := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", ":"+cfg.Port)
			if err != nil {
				stopHub()
				return err
			}
			go hub.Run(hubCtx)
			go func() {
				log.Info("server starting", zap.String("addr", ln.Addr().String()))
				if err := app.Listener(ln); err != nil && !errors.Is(err, net.ErrClosed) {
					log.Error("server stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			stopHub()
			select {
			case <-hub.Done():
			case <-ctx.Done():
				log.Warn("event hub did not stop in time")
			}
			if err := app.ShutdownWithTimeout(ShutdownTimeout); err != nil {
				log.Error("server shutdown failed", zap.Error(err))
				return err
			}
			log.Info("server stopped gracefully")
			return nil
		},
	})
}
