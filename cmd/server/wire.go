//go:build wireinject

package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/janhq/library-api/internal/config"
	"github.com/janhq/library-api/internal/domain"
	domainauth "github.com/janhq/library-api/internal/domain/auth"
	"github.com/janhq/library-api/internal/domain/catalog"
	"github.com/janhq/library-api/internal/domain/loan"
	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/domain/notification"
	"github.com/janhq/library-api/internal/domain/reminder"
	"github.com/janhq/library-api/internal/domain/review"
	"github.com/janhq/library-api/internal/domain/stats"
	"github.com/janhq/library-api/internal/domain/user"
	"github.com/janhq/library-api/internal/infrastructure/cache"
	"github.com/janhq/library-api/internal/infrastructure/database"
	"github.com/janhq/library-api/internal/infrastructure/database/repository/loanrepo"
	"github.com/janhq/library-api/internal/infrastructure/database/repository/mediarepo"
	"github.com/janhq/library-api/internal/infrastructure/database/repository/reviewrepo"
	"github.com/janhq/library-api/internal/infrastructure/database/repository/statsrepo"
	"github.com/janhq/library-api/internal/infrastructure/database/repository/userrepo"
	"github.com/janhq/library-api/internal/infrastructure/database/transaction"
	"github.com/janhq/library-api/internal/infrastructure/logger"
	"github.com/janhq/library-api/internal/infrastructure/metrics"
	"github.com/janhq/library-api/internal/infrastructure/queue"
	"github.com/janhq/library-api/internal/interfaces/httpserver"
	"github.com/janhq/library-api/internal/interfaces/httpserver/handlers"
	"github.com/janhq/library-api/internal/interfaces/httpserver/middlewares"
)

var repositorySet = wire.NewSet(
	transaction.NewDatabase,
	wire.Bind(new(domain.Transactor), new(*transaction.Database)),
	userrepo.NewUserGormRepository,
	wire.Bind(new(user.Repository), new(*userrepo.UserGormRepository)),
	wire.Bind(new(loan.UserReader), new(*userrepo.UserGormRepository)),
	mediarepo.NewMediaGormRepository,
	wire.Bind(new(media.Repository), new(*mediarepo.MediaGormRepository)),
	wire.Bind(new(loan.MediaStore), new(*mediarepo.MediaGormRepository)),
	wire.Bind(new(review.MediaReader), new(*mediarepo.MediaGormRepository)),
	loanrepo.NewLoanGormRepository,
	wire.Bind(new(loan.Repository), new(*loanrepo.LoanGormRepository)),
	wire.Bind(new(media.LoanStore), new(*loanrepo.LoanGormRepository)),
	wire.Bind(new(reminder.Ledger), new(*loanrepo.LoanGormRepository)),
	reviewrepo.NewReviewGormRepository,
	wire.Bind(new(review.Repository), new(*reviewrepo.ReviewGormRepository)),
	wire.Bind(new(media.ReviewStore), new(*reviewrepo.ReviewGormRepository)),
	statsrepo.NewStatsGormRepository,
	wire.Bind(new(stats.Source), new(*statsrepo.StatsGormRepository)),
	newOutbox,
	wire.Bind(new(notification.Outbox), new(*queue.PostgresOutbox)),
)

var serviceSet = wire.NewSet(
	user.NewService,
	wire.Bind(new(user.Service), new(*user.DefaultService)),
	wire.Bind(new(domainauth.Authenticator), new(*user.DefaultService)),
	newTokenIssuer,
	newRevocationStore,
	domainauth.NewService,
	wire.Bind(new(domainauth.Service), new(*domainauth.DefaultService)),
	newCoverStorage,
	newMediaConfig,
	media.NewService,
	wire.Bind(new(media.Service), new(*media.DefaultService)),
	review.NewService,
	wire.Bind(new(review.Service), new(*review.DefaultService)),
	newLoanConfig,
	loan.NewService,
	wire.Bind(new(loan.Service), new(*loan.DefaultService)),
	newStatsService,
	wire.Bind(new(stats.Service), new(*stats.DefaultService)),
	newCatalogService,
	wire.Bind(new(catalog.Service), new(*catalog.DefaultService)),
	newScheduler,
	wire.Bind(new(handlers.ReminderRunner), new(*reminder.Scheduler)),
)

var handlerSet = wire.NewSet(
	handlers.NewAuthHandler,
	handlers.NewUserHandler,
	handlers.NewMediaHandler,
	handlers.NewReviewHandler,
	newCoverURL,
	handlers.NewLoanHandler,
	handlers.NewAdminHandler,
	handlers.NewProvider,
)

// BuildApplication assembles the HTTP side of the library service with Wire.
// The notification worker pool and the reminder crontab are started from main.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		newOptionalRedis,
		repositorySet,
		serviceSet,
		handlerSet,
		newAuthn,
		readinessChecks,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func newOptionalRedis(ctx context.Context, cfg *config.Config, log zerolog.Logger) (redis.UniversalClient, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	return cache.NewRedisClient(ctx, cfg.RedisURL, log)
}

func newOutbox(db *transaction.Database, cfg *config.Config, log zerolog.Logger) *queue.PostgresOutbox {
	return queue.NewPostgresOutbox(db, cfg.NotifyMaxAttempts, log)
}

func newMediaConfig(cfg *config.Config) media.Config {
	return media.Config{CoverMaxBytes: cfg.CoverMaxBytes}
}

func newLoanConfig(cfg *config.Config) loan.Config {
	return loan.Config{LoanPeriod: cfg.LoanPeriod(), LateFeePerDay: cfg.LateFee()}
}

func newStatsService(source stats.Source, cfg *config.Config, log zerolog.Logger) *stats.DefaultService {
	return stats.NewService(source, cfg.LateFee(), log)
}

func newCatalogService(cfg *config.Config, log zerolog.Logger) (*catalog.DefaultService, error) {
	return catalog.NewService(newCatalogProviders(cfg, log), cfg.CatalogCacheSize, cfg.CatalogCacheTTL, log)
}

func newScheduler(ledger reminder.Ledger, outbox notification.Outbox, tx domain.Transactor, redisClient redis.UniversalClient, cfg *config.Config, log zerolog.Logger) *reminder.Scheduler {
	scheduler := reminder.NewScheduler(ledger, outbox, tx, reminder.Config{Location: cfg.Location()}, log).
		WithRecorder(metrics.NewCollector())
	if redisClient != nil {
		scheduler = scheduler.WithLocker(cache.NewRedisLocker(redisClient, log))
	}
	return scheduler
}

func newCoverURL(service media.Service) handlers.CoverURLFunc {
	return func(key string) string {
		return service.CoverURL(&media.Media{CoverKey: key})
	}
}

func newAuthn(ctx context.Context, cfg *config.Config, authService domainauth.Service, log zerolog.Logger) (gin.HandlerFunc, error) {
	validator, err := newTokenValidator(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if validator == nil {
		return middlewares.AuthMiddleware(nil, authService, log), nil
	}
	return middlewares.AuthMiddleware(validator, authService, log), nil
}
