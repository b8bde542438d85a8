// Package bootstrap assembles the application graph from configuration:
// stores, delivery workers, core services and the HTTP router.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/clinicreserve/reservation-system/internal/api"
	"github.com/clinicreserve/reservation-system/internal/api/middleware"
	"github.com/clinicreserve/reservation-system/internal/console"
	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
	"github.com/clinicreserve/reservation-system/internal/core/service"
	"github.com/clinicreserve/reservation-system/internal/infrastructure/config"
	"github.com/clinicreserve/reservation-system/internal/infrastructure/db/mongo"
	"github.com/clinicreserve/reservation-system/internal/infrastructure/db/postgres"
	redisstore "github.com/clinicreserve/reservation-system/internal/infrastructure/db/redis"
	"github.com/clinicreserve/reservation-system/internal/infrastructure/http/handlers"
	"github.com/clinicreserve/reservation-system/internal/infrastructure/notify"
	"github.com/clinicreserve/reservation-system/internal/infrastructure/queue"
	"github.com/clinicreserve/reservation-system/internal/infrastructure/remote"
	"github.com/clinicreserve/reservation-system/internal/infrastructure/sentry"
	"github.com/clinicreserve/reservation-system/pkg/logger"
)

const appName = "clinicd"

// App owns every long-lived resource. Close releases them in reverse order.
type App struct {
	Config *config.Config
	Log    zerolog.Logger

	Pool        *pgxpool.Pool
	MongoClient *mongodriver.Client
	Mongo       *mongodriver.Database
	Redis       *redis.Client
	Sentry      *sentry.Service
	Dispatcher  *queue.Dispatcher

	Identity      *service.IdentityService
	Clinics       *service.ClinicService
	Appointments  *service.AppointmentService
	Notifications *service.NotificationService
	Admin         *service.AdminService
	Feed          *service.FeedService
}

// New connects to PostgreSQL (required) and, when configured, MongoDB and
// Redis, then wires the core services.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	a.Sentry = sentry.New(sentry.Config{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Env,
		Release:     appName,
		SampleRate:  cfg.Sentry.SampleRate,
	}, logger.Component("sentry"))

	pool, err := postgres.Connect(ctx, postgres.Config{
		URL:      cfg.Postgres.URL,
		MaxConns: cfg.Postgres.MaxConns,
		MinConns: cfg.Postgres.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	a.Pool = pool

	var events ports.EventRepository = noopEvents{}
	if cfg.Mongo.URI != "" {
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  appName,
		})
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
		a.MongoClient, a.Mongo = client, db
		repo := mongo.NewEventRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to ensure audit indexes")
		}
		events = repo
	} else {
		log.Info().Msg("MONGO_URI not set, audit trail disabled")
	}

	var cache ports.FeedCache
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
		a.Redis = rdb
		cache = redisstore.NewFeedCache(rdb)
	} else {
		log.Info().Msg("REDIS_ADDR not set, feed cache disabled")
	}

	a.Dispatcher = queue.NewDispatcher(cfg.Workers, notify.NewLogGateway(logger.Component("delivery")), logger.Component("dispatcher"))

	users := postgres.NewUserRepository(pool)
	clinicRepo := postgres.NewClinicRepository(pool)

	a.Identity = service.NewIdentityService(users, a.Dispatcher, service.IdentityConfig{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		OTPTTL:    cfg.OTPTTL,
	}, logger.Component("identity"))
	a.Clinics = service.NewClinicService(clinicRepo, logger.Component("clinics"))
	a.Notifications = service.NewNotificationService(
		postgres.NewNotificationRepository(pool), a.Dispatcher, logger.Component("notifications"))
	a.Appointments = service.NewAppointmentService(
		postgres.NewAppointmentRepository(pool),
		clinicRepo,
		users,
		postgres.NewTransactor(pool),
		a.Notifications,
		events,
		logger.Component("appointments"),
	)
	a.Feed = service.NewFeedService(remote.NewFeedClient(remote.Config{
		BaseURL:  cfg.Feed.BaseURL,
		SlotsURL: cfg.Feed.SlotsURL,
		Timeout:  cfg.Feed.Timeout,
	}), cache, cfg.Feed.CacheTTL, logger.Component("feed"))
	a.Admin = service.NewAdminService(
		users, a.Clinics, a.Appointments, a.Notifications, events, a.Feed, logger.Component("admin"))

	return a, nil
}

// Migrate applies pending schema migrations.
func (a *App) Migrate(ctx context.Context) (int, error) {
	return postgres.NewMigrator(a.Pool).Up(ctx)
}

// Start launches the delivery workers; they stop when ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	a.Dispatcher.Start(ctx)
}

// Router builds the HTTP API. The auth rate limiter's sweeper stops with ctx.
func (a *App) Router(ctx context.Context) *echo.Echo {
	limiter := middleware.NewRateLimiter(a.Config.RateLimit.AuthRPS, a.Config.RateLimit.AuthBurst)
	go limiter.Run(ctx.Done())

	return api.NewRouter(api.Deps{
		Identity:      a.Identity,
		Clinics:       a.Clinics,
		Appointments:  a.Appointments,
		Notifications: a.Notifications,
		Admin:         a.Admin,
		Feed:          a.Feed,
		Readiness:     handlers.NewHealthDependenciesHandler(a.Pool, a.Mongo, a.Redis),
		AuthLimiter:   limiter,
		Reporter:      a.Sentry,
		JWTSecret:     a.Config.JWTSecret,
		Log:           logger.Component("http"),
	})
}

// ConsoleDeps exposes the services to the interactive console.
func (a *App) ConsoleDeps() console.Deps {
	return console.Deps{
		Identity:      a.Identity,
		Clinics:       a.Clinics,
		Appointments:  a.Appointments,
		Notifications: a.Notifications,
		Log:           logger.Component("console"),
	}
}

// Close flushes error reports and releases connections. Safe to call on a
// partially built App.
func (a *App) Close(ctx context.Context) {
	if a.Sentry != nil {
		a.Sentry.Flush(2 * time.Second)
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn().Err(err).Msg("redis close failed")
		}
	}
	if a.MongoClient != nil {
		if err := a.MongoClient.Disconnect(ctx); err != nil {
			a.Log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// noopEvents stands in for the audit trail when MongoDB is not configured.
type noopEvents struct{}

func (noopEvents) InsertEvent(context.Context, *domain.AppointmentEvent) error { return nil }

func (noopEvents) ListByAppointment(context.Context, int64) ([]*domain.AppointmentEvent, error) {
	return []*domain.AppointmentEvent{}, nil
}
