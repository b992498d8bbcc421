package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	_ "github.com/janhq/library-api/docs/swagger"
	"github.com/janhq/library-api/internal/config"
	domainauth "github.com/janhq/library-api/internal/domain/auth"
	"github.com/janhq/library-api/internal/domain/catalog"
	"github.com/janhq/library-api/internal/domain/loan"
	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/domain/notification"
	"github.com/janhq/library-api/internal/domain/reminder"
	"github.com/janhq/library-api/internal/domain/retry"
	"github.com/janhq/library-api/internal/domain/review"
	"github.com/janhq/library-api/internal/domain/stats"
	"github.com/janhq/library-api/internal/domain/user"
	"github.com/janhq/library-api/internal/infrastructure/auth"
	"github.com/janhq/library-api/internal/infrastructure/cache"
	"github.com/janhq/library-api/internal/infrastructure/catalogclient"
	"github.com/janhq/library-api/internal/infrastructure/crontab"
	"github.com/janhq/library-api/internal/infrastructure/database"
	"github.com/janhq/library-api/internal/infrastructure/database/repository/loanrepo"
	"github.com/janhq/library-api/internal/infrastructure/database/repository/mediarepo"
	"github.com/janhq/library-api/internal/infrastructure/database/repository/reviewrepo"
	"github.com/janhq/library-api/internal/infrastructure/database/repository/statsrepo"
	"github.com/janhq/library-api/internal/infrastructure/database/repository/userrepo"
	"github.com/janhq/library-api/internal/infrastructure/database/transaction"
	"github.com/janhq/library-api/internal/infrastructure/logger"
	"github.com/janhq/library-api/internal/infrastructure/mailer"
	"github.com/janhq/library-api/internal/infrastructure/metrics"
	"github.com/janhq/library-api/internal/infrastructure/observability"
	"github.com/janhq/library-api/internal/infrastructure/queue"
	"github.com/janhq/library-api/internal/infrastructure/storage"
	"github.com/janhq/library-api/internal/interfaces/httpserver"
	"github.com/janhq/library-api/internal/interfaces/httpserver/handlers"
	"github.com/janhq/library-api/internal/interfaces/httpserver/middlewares"
	"github.com/janhq/library-api/internal/worker"
)

// @title Library API
// @version 1.0
// @description Media library backend: catalog, members, loans, reviews and due-date reminders.
// @contact.name Jan Server Team
// @contact.url https://github.com/janhq/jan-server
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(newDatabaseConfig(cfg), log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	var redisClient redis.UniversalClient
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		defer redisClient.Close()
	}

	txDB := transaction.NewDatabase(db)
	userRepository := userrepo.NewUserGormRepository(txDB)
	mediaRepository := mediarepo.NewMediaGormRepository(txDB)
	loanRepository := loanrepo.NewLoanGormRepository(txDB)
	reviewRepository := reviewrepo.NewReviewGormRepository(txDB)
	statsRepository := statsrepo.NewStatsGormRepository(txDB)
	outbox := queue.NewPostgresOutbox(txDB, cfg.NotifyMaxAttempts, log)

	userService := user.NewService(userRepository, log)
	if err := bootstrapAdmin(ctx, cfg, userRepository, userService, log); err != nil {
		log.Fatal().Err(err).Msg("promote bootstrap admin")
	}

	issuer, err := newTokenIssuer(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize token issuer")
	}
	authService := domainauth.NewService(userService, issuer, newRevocationStore(redisClient), log)

	covers, err := newCoverStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize cover storage")
	}
	mediaService := media.NewService(mediaRepository, loanRepository, reviewRepository, covers, txDB, media.Config{CoverMaxBytes: cfg.CoverMaxBytes}, log)
	reviewService := review.NewService(reviewRepository, mediaRepository, log)
	loanService := loan.NewService(loanRepository, mediaRepository, userRepository, outbox, txDB, loan.Config{
		LoanPeriod:    cfg.LoanPeriod(),
		LateFeePerDay: cfg.LateFee(),
	}, log)
	statsService := stats.NewService(statsRepository, cfg.LateFee(), log)

	catalogService, err := catalog.NewService(newCatalogProviders(cfg, log), cfg.CatalogCacheSize, cfg.CatalogCacheTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize catalog search")
	}

	collector := metrics.NewCollector()
	scheduler := reminder.NewScheduler(loanRepository, outbox, txDB, reminder.Config{Location: cfg.Location()}, log).
		WithRecorder(collector)
	if redisClient != nil {
		scheduler = scheduler.WithLocker(cache.NewRedisLocker(redisClient, log))
	}

	// Initialize notification delivery
	workerPool := worker.NewPool(
		outbox,
		notification.NewDispatcher(newNotifier(cfg, log)),
		worker.Config{
			WorkerCount:  cfg.NotifyWorkerCount,
			PollInterval: cfg.NotifyPollInterval,
			BatchSize:    cfg.NotifyBatchSize,
			SendTimeout:  cfg.NotifySendTimeout,
			StopTimeout:  cfg.WorkerStopTimeout,
			Policy:       notifyPolicy(cfg),
		},
		log,
	).WithObserver(collector)

	if err := workerPool.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("start worker pool")
	}
	defer func() {
		log.Info().Msg("stopping worker pool")
		workerPool.Stop()
	}()

	if cfg.ReminderEnabled {
		reminderCron := crontab.NewCrontab(scheduler, crontab.Config{
			Location: cfg.Location(),
			Hour:     cfg.ReminderHour,
			Minute:   cfg.ReminderMinute,
			Timeout:  cfg.ReminderJobTimeout,
		}, log)
		go func() {
			if err := reminderCron.Run(ctx); err != nil {
				log.Error().Err(err).Msg("reminder crontab stopped")
			}
		}()
	}

	validator, err := newTokenValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}
	var tokenValidator middlewares.TokenValidator
	if validator != nil {
		defer validator.Close()
		tokenValidator = validator
	}

	coverURL := func(key string) string {
		return mediaService.CoverURL(&media.Media{CoverKey: key})
	}
	handlerProvider := handlers.NewProvider(
		handlers.NewAuthHandler(authService, userService, log),
		handlers.NewUserHandler(userService, log),
		handlers.NewMediaHandler(mediaService, log),
		handlers.NewReviewHandler(reviewService, log),
		handlers.NewLoanHandler(loanService, coverURL, log),
		handlers.NewAdminHandler(statsService, scheduler, catalogService, log),
	)

	httpServer := httpserver.New(
		cfg,
		log,
		handlerProvider,
		middlewares.AuthMiddleware(tokenValidator, authService, log),
		readinessChecks(db, redisClient, covers),
	)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DatabaseURL: cfg.DatabaseURL,
		MaxIdle:     cfg.DBMaxIdleConns,
		MaxOpen:     cfg.DBMaxOpenConns,
		MaxLifetime: cfg.DBConnLifetime,
		LogLevel:    gormlogger.Warn,
	}
}

func newTokenIssuer(cfg *config.Config, log zerolog.Logger) (domainauth.TokenIssuer, error) {
	if cfg.AuthSecret == "" {
		log.Warn().Msg("AUTH_JWT_SECRET not set, password login disabled")
		return disabledIssuer{}, nil
	}
	return auth.NewIssuer(cfg.AuthSecret, cfg.AuthIssuer, cfg.AuthAudience, cfg.AuthTokenTTL)
}

// disabledIssuer is used when tokens come from an external identity provider.
type disabledIssuer struct{}

func (disabledIssuer) Issue(context.Context, *user.User) (*domainauth.Token, error) {
	return nil, errors.New("token issuing is not configured")
}

// newTokenValidator returns nil when authentication is disabled.
func newTokenValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	if !cfg.AuthEnabled {
		return nil, nil
	}
	return auth.NewValidator(ctx, auth.ValidatorConfig{
		Secret:   cfg.AuthSecret,
		JWKSURL:  cfg.AuthJWKSURL,
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
	}, log)
}

func newRevocationStore(client redis.UniversalClient) domainauth.RevocationStore {
	if client == nil {
		return cache.NewMemoryRevocationStore()
	}
	return cache.NewRedisRevocationStore(client)
}

// newCoverStorage returns a nil storage when no bucket is configured; uploads are then rejected.
func newCoverStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (media.CoverStorage, error) {
	if !storage.Configured(cfg) {
		log.Warn().Msg("MEDIA_S3_BUCKET not set, cover uploads disabled")
		return nil, nil
	}
	s3, err := storage.NewS3Storage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return s3, nil
}

func newNotifier(cfg *config.Config, log zerolog.Logger) notification.Notifier {
	if cfg.SMTPHost == "" {
		log.Warn().Msg("SMTP_HOST not set, notifications are written to the log")
		return mailer.NewLogNotifier(cfg.Location(), log)
	}
	return mailer.NewSMTPNotifier(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
		UseTLS:   cfg.SMTPUseTLS,
		Location: cfg.Location(),
	}, log)
}

func notifyPolicy(cfg *config.Config) retry.Policy {
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.NotifyMaxAttempts
	return policy
}

func newCatalogProviders(cfg *config.Config, log zerolog.Logger) map[media.Type]catalog.Provider {
	base := catalogclient.Config{
		UserAgent:     cfg.CatalogUserAgent,
		Timeout:       cfg.CatalogTimeout,
		RatePerSecond: cfg.CatalogRatePerSec,
	}

	books := base
	books.BaseURL = cfg.GoogleBooksURL
	books.APIKey = cfg.GoogleBooksAPIKey

	music := base
	music.BaseURL = cfg.MusicBrainzURL

	providers := map[media.Type]catalog.Provider{
		media.TypeBook:  catalogclient.NewGoogleBooks(books, log),
		media.TypeMusic: catalogclient.NewMusicBrainz(music, log),
	}

	if cfg.TMDBAPIKey == "" {
		log.Warn().Msg("TMDB_API_KEY not set, movie and tv lookups disabled")
		return providers
	}
	screen := base
	screen.BaseURL = cfg.TMDBURL
	screen.APIKey = cfg.TMDBAPIKey
	tmdb := catalogclient.NewTMDB(screen, log)
	providers[media.TypeMovie] = tmdb
	providers[media.TypeTV] = tmdb
	return providers
}

// bootstrapAdmin promotes the configured account to admin once it has registered.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, repo user.Repository, users user.Service, log zerolog.Logger) error {
	if cfg.AuthAdminEmail == "" {
		return nil
	}
	u, err := repo.FindByEmail(ctx, cfg.AuthAdminEmail)
	if err != nil {
		log.Warn().Str("email", cfg.AuthAdminEmail).Msg("bootstrap admin has not registered yet")
		return nil
	}
	if u.Role == user.RoleAdmin {
		return nil
	}
	if _, err := users.SetRole(ctx, u.ID, user.RoleAdmin); err != nil {
		return err
	}
	log.Info().Str("user_id", u.ID).Msg("bootstrap admin promoted")
	return nil
}

type pinger interface {
	Health(ctx context.Context) error
}

func readinessChecks(db *gorm.DB, redisClient redis.UniversalClient, covers media.CoverStorage) map[string]httpserver.ReadinessCheck {
	checks := map[string]httpserver.ReadinessCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if p, ok := covers.(pinger); ok {
		checks["storage"] = func(ctx context.Context) error {
			healthCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return p.Health(healthCtx)
		}
	}
	return checks
}
