// @title                       Care Home CMS API
// @version                     1.0
// @description                 Content management backend for the care home group websites, admin panel and visitor kiosk.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	_ "github.com/bellavista/carehome-cms/docs"
	"github.com/bellavista/carehome-cms/internal/api"
	"github.com/bellavista/carehome-cms/internal/api/metrics"
	"github.com/bellavista/carehome-cms/internal/core/ports"
	"github.com/bellavista/carehome-cms/internal/core/service"
	"github.com/bellavista/carehome-cms/internal/infrastructure/config"
	"github.com/bellavista/carehome-cms/internal/infrastructure/db/mongo"
	"github.com/bellavista/carehome-cms/internal/infrastructure/db/postgres"
	"github.com/bellavista/carehome-cms/internal/infrastructure/db/redis"
	"github.com/bellavista/carehome-cms/internal/infrastructure/http/handlers"
	"github.com/bellavista/carehome-cms/internal/infrastructure/mail"
	"github.com/bellavista/carehome-cms/internal/infrastructure/memory"
	"github.com/bellavista/carehome-cms/internal/infrastructure/places"
	"github.com/bellavista/carehome-cms/internal/infrastructure/queue"
	"github.com/bellavista/carehome-cms/internal/infrastructure/scheduler"
	"github.com/bellavista/carehome-cms/internal/infrastructure/storage"
	"github.com/bellavista/carehome-cms/pkg/logger"
)

const (
	serviceName     = "carehome-cms"
	shutdownTimeout = 10 * time.Second
	janitorInterval = time.Minute

	reviewImportJob = "review-import"
	homeBackupJob   = "home-backup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx)
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: serviceName,
		Env:     cfg.Env,
	})
	if cfg.Auth.GeneratedSecret {
		log.Warn().Msg("JWT_SECRET not set; using a generated secret, sessions will not survive a restart")
	}

	// --- Storage ---
	db, err := postgres.Open(ctx, postgres.Config{Driver: cfg.Database.Driver, URL: cfg.Database.URL}, logger.Component("postgres"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open content database")
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate content database")
	}

	var (
		mongoClient *gomongo.Client
		mongoDB     *gomongo.Database
		auditSink   ports.AuditSink = memory.NewAuditSink(0)
	)
	if cfg.Mongo.AuditSink == "mongo" {
		mongoClient, mongoDB, err = mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to audit database")
		}
		repo := mongo.NewAuditRepository(mongoDB)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to create audit indexes")
		}
		auditSink = repo
	}

	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	}

	var (
		windows ports.WindowStore
		tokens  ports.TokenStore
	)
	if cfg.Auth.WindowStore == "redis" {
		windows = redis.NewWindowStore(rdb)
		tokens = redis.NewTokenStore(rdb)
	} else {
		memWindows, memTokens := memory.NewWindowStore(), memory.NewTokenStore()
		go memWindows.Run(ctx, janitorInterval)
		go memTokens.Run(ctx, janitorInterval)
		windows, tokens = memWindows, memTokens
		log.Warn().Msg("lockout and rate-limit state is kept in process memory; use WINDOW_STORE=redis when running several instances")
	}

	blobs, uploadDir := openBlobStore(ctx, cfg, log)

	// --- Background work ---
	dispatcher := queue.NewDispatcher(cfg.Workers, logger.Component("queue"))
	dispatcher.Start(ctx)

	var mailer ports.Mailer
	mailCfg := mail.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		Sender:   cfg.Mail.Sender,
	}
	if mailCfg.Enabled() {
		mailer = mail.NewSMTPMailer(mailCfg)
	} else {
		log.Warn().Msg("SMTP not configured; notification emails will only be logged")
	}

	// --- Repositories and services ---
	homesRepo := postgres.NewHomeRepository(db)
	usersRepo := postgres.NewUserRepository(db)
	reviewsRepo := postgres.NewReviewRepository(db)

	audit := service.NewAuditLog(auditSink, log).OnWriteFailure(metrics.AuditWriteFailuresTotal.Inc)
	notifier := service.NewNotifier(mailer, dispatcher, homesRepo, cfg.Mail.AdminEmail, log)

	tokenSvc := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	lockout := service.NewLockoutGuard(windows, service.LockoutPolicy{
		MaxAttempts: cfg.Auth.MaxAttempts,
		Window:      cfg.Auth.Window,
		Duration:    cfg.Auth.LockoutDuration,
	}, log)
	creds := service.NewCredentialService(usersRepo, homesRepo, audit, log)
	homes := service.NewHomeService(homesRepo, blobs, audit, log)

	if err := creds.Bootstrap(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, cfg.IsProduction()); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap admin user")
	}

	importer := service.NewReviewImporter(reviewsRepo, places.NewClient(cfg.Reviews.PlacesAPIKey, logger.Component("places")), cfg.Reviews.Locations, log).
		OnImported(func(location string, n int) {
			metrics.ReviewsImportedTotal.WithLabelValues(location).Add(float64(n))
		})

	sched := scheduler.New(dispatcher, logger.Component("scheduler"))
	if err := sched.Add(reviewImportJob, cfg.Reviews.Schedule, ports.Job{
		Kind: reviewImportJob,
		Key:  reviewImportJob,
		Run: func(ctx context.Context) error {
			res, err := importer.Run(ctx)
			if err != nil {
				return err
			}
			log.Info().
				Int("imported", res.Imported).
				Int("skipped", res.Skipped).
				Int("failed", res.Failed).
				Msg("review import finished")
			return nil
		},
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule review import")
	}
	if cfg.Backup.Schedule != "" {
		if err := sched.Add(homeBackupJob, cfg.Backup.Schedule, ports.Job{
			Kind: homeBackupJob,
			Key:  homeBackupJob,
			Run: func(ctx context.Context) error {
				_, err := homes.Backup(ctx)
				return err
			},
		}); err != nil {
			log.Fatal().Err(err).Msg("failed to schedule home backups")
		}
	}
	sched.Start()

	health := handlers.NewHealthHandler(
		handlers.PostgresCheck(db),
		handlers.MongoCheck(mongoDB),
		handlers.RedisCheck(rdb),
	)

	e := api.NewRouter(api.Deps{
		Log: log,
		Options: api.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowAnyOrigin: cfg.CORS.AllowAnyOrigin,
			MaxUploadMB:    cfg.Upload.MaxMB,
			CSRFEnabled:    cfg.CSRF.Enabled,
			HSTS:           cfg.IsProduction(),
			UploadDir:      uploadDir,
		},
		Tokens: tokenSvc,
		Auth:   service.NewAuthService(usersRepo, tokenSvc, lockout, audit, log),
		Users:  creds,
		CSRF:   service.NewCSRFManager(tokens, cfg.CSRF.TTL, log),
		Audit:  audit,

		Homes:     homes,
		News:      service.NewNewsService(postgres.NewNewsRepository(db), audit, log),
		FAQs:      service.NewFAQService(postgres.NewFAQRepository(db), audit, log),
		Events:    service.NewEventService(postgres.NewEventRepository(db), audit, log),
		Vacancies: service.NewVacancyService(postgres.NewVacancyRepository(db), postgres.NewApplicationRepository(db), notifier, audit, log),
		Visits:    service.NewVisitService(postgres.NewTourRepository(db), postgres.NewEnquiryRepository(db), notifier, audit, log),
		Reviews:   service.NewReviewService(reviewsRepo, audit, log),
		Meals:     service.NewMealPlanService(postgres.NewMealPlanRepository(db), homesRepo, audit, log),
		Kiosk:     service.NewKioskService(postgres.NewKioskRepository(db), audit, log),
		Uploads:   service.NewUploadService(blobs, log),

		ImportReviews: func() bool { return sched.RunNow(reviewImportJob) },

		LoginLimiter:  service.NewRateLimiter("login", windows, service.LoginRateLimit(), log),
		SubmitLimiter: service.NewRateLimiter("public_submit", windows, service.SubmissionRateLimit(), log),

		Health: health,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	<-sched.Stop().Done()
	dispatcher.Stop()

	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("audit database disconnect failed")
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}
	if err := postgres.Close(db); err != nil {
		log.Error().Err(err).Msg("content database close failed")
	}
	log.Info().Msg("stopped")
}

// openBlobStore picks S3 when a bucket is configured and local disk
// otherwise. The returned directory is non-empty only for local disk.
func openBlobStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.BlobStore, string) {
	if cfg.S3.Bucket != "" {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PublicURL: cfg.S3.PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure S3 storage")
		}
		return store, ""
	}

	store, err := storage.NewLocalStore(cfg.Upload.Dir, "/uploads")
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Upload.Dir).Msg("failed to prepare upload directory")
	}
	return store, cfg.Upload.Dir
}
