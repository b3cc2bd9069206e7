package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"jobfit-backend/internal/analyses"
	googleauth "jobfit-backend/internal/auth"
	"jobfit-backend/internal/jobs"
	"jobfit-backend/internal/queue"
	"jobfit-backend/internal/resumes"
	"jobfit-backend/internal/services/health"
	"jobfit-backend/internal/shared/auth"
	"jobfit-backend/internal/shared/cache"
	"jobfit-backend/internal/shared/config"
	"jobfit-backend/internal/shared/server"
	"jobfit-backend/internal/shared/storage/db"
	"jobfit-backend/internal/shared/storage/object"
	localstore "jobfit-backend/internal/shared/storage/object/local"
	s3store "jobfit-backend/internal/shared/storage/object/s3"
	"jobfit-backend/internal/shared/telemetry"
	"jobfit-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client
	Cache  cache.Cache
	Tokens *auth.TokenService
	Health *health.Service

	UsersRepo    users.Repo
	ResumesRepo  resumes.Repo
	JobsRepo     jobs.Repo
	AnalysesRepo analyses.Repo

	UsersService    *users.Service
	ResumesService  *resumes.Service
	JobsService     *jobs.Service
	AnalysesService *analyses.Service

	UsersHandler    *users.Handler
	ResumesHandler  *resumes.Handler
	JobsHandler     *jobs.Handler
	AnalysisHandler *analyses.Handler
	GoogleAuth      *googleauth.GoogleService

	closers []func() error
}

// Build prepares every dependency and the HTTP router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	telemetry.Configure(telemetry.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	ctx := context.Background()

	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil && !db.IsLambdaRuntime() {
		app.closers = append(app.closers, sqlDB.Close)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, cfg.Env)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("token service: %w", err)
	}
	app.Tokens = tokens

	app.Cache = buildCache(ctx, app)

	queueClient, err := buildQueue(ctx, app)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Queue = queueClient

	buildServices(app)

	checks := map[string]health.Pinger{}
	if app.DB != nil {
		checks["database"] = app.DB
	}
	if r, ok := app.Cache.(*cache.Redis); ok && r.Available() {
		checks["cache"] = r
	}
	app.Health = health.NewService(checks)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Tokens:          app.Tokens,
		Health:          app.Health,
		UserHandler:     app.UsersHandler,
		ResumeHandler:   app.ResumesHandler,
		JobHandler:      app.JobsHandler,
		AnalysisHandler: app.AnalysisHandler,
		GoogleAuth:      app.GoogleAuth,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"database":     app.DB != nil,
		"object_store": app.Store.Provider(),
		"queue":        cfg.QueueBackend,
		"cache":        app.Cache != nil,
	})
	return app, nil
}

// Close releases connections opened by Build.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			telemetry.Warn("bootstrap.close_failed", map[string]any{"error": err})
		}
	}
	a.closers = nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.RuntimeProfile())
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "database connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}

	// Production schemas are applied by cmd/migrate.
	if cfg.IsDevLike() {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "migrations failed", "error": err})
			return nil, nil
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildCache prefers Redis, falls back to process memory in dev, and
// otherwise disables caching.
func buildCache(ctx context.Context, app *App) cache.Cache {
	cfg := app.Config
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		r := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisTTL)
		app.closers = append(app.closers, r.Close)
		return r
	}
	if cfg.IsDevLike() {
		return cache.NewMemory()
	}
	return nil
}

func buildQueue(ctx context.Context, app *App) (queue.Client, error) {
	cfg := app.Config
	switch cfg.QueueBackend {
	case "sqs":
		if strings.TrimSpace(cfg.SQSQueueURL) == "" {
			return nil, errors.New("QUEUE_BACKEND=sqs requires SQS_QUEUE_URL")
		}
		return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.SQSQueueURL)
	case "amqp":
		client, err := queue.NewAMQPClient(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		return client, nil
	default:
		return nil, nil
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.JobsRepo = &jobs.PGRepo{DB: app.DB}
		app.AnalysesRepo = &analyses.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.JobsRepo = jobs.NewMemoryRepo()
		app.AnalysesRepo = analyses.NewMemoryRepo()
	}

	app.UsersService = users.NewService(app.UsersRepo, app.Tokens)
	app.ResumesService = &resumes.Service{
		Store: app.Store,
		Repo:  app.ResumesRepo,
		Queue: app.Queue,
	}
	app.JobsService = &jobs.Service{
		Repo:     app.JobsRepo,
		Cache:    app.Cache,
		CacheTTL: app.Config.RedisTTL,
	}
	app.AnalysesService = &analyses.Service{
		Repo:    app.AnalysesRepo,
		Resumes: app.ResumesService,
		Jobs:    app.JobsService,
	}

	app.UsersHandler = users.NewHandler(app.UsersService)
	app.ResumesHandler = resumes.NewHandler(app.ResumesService)
	app.JobsHandler = jobs.NewHandler(app.JobsService)
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		app.UsersService,
	)
}
