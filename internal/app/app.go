package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "whisperbox/docs"
	"whisperbox/internal/config"
	"whisperbox/internal/handlers"
	"whisperbox/internal/jobs"
	"whisperbox/internal/logging"
	"whisperbox/internal/middleware"
	"whisperbox/internal/observability"
	"whisperbox/internal/repositories"
	"whisperbox/internal/routes"
	"whisperbox/internal/services"
	"whisperbox/migrations"
)

const shutdownTimeout = 10 * time.Second

// App owns every long-lived resource of the server.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	router  *gin.Engine
	db      *sql.DB
	redis   *redis.Client
	sweeper *jobs.CodeSweeper
}

// Run loads the configuration, serves HTTP and blocks until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sentryEnabled, err := observability.InitSentry(cfg.Sentry, cfg.Env)
	if err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
	}
	if sentryEnabled {
		defer observability.Flush()
	}

	a, err := New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.sweeper.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

// New opens storage and builds the router. Callers must Close the result.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	// === Storage ===
	var (
		userRepo    repositories.UserRepository
		messageRepo repositories.MessageRepository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err := openPostgres(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		userRepo = repositories.NewUserRepository(db)
		messageRepo = repositories.NewMessageRepository(db)
	case "memory":
		logger.Warn("using in-memory storage, data is lost on restart")
		userRepo = repositories.NewMemoryUserRepository()
		messageRepo = repositories.NewMemoryMessageRepository()
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limits fall back to memory until it recovers", zap.Error(err))
		}
		cancel()
	}

	// === Services ===
	otp := services.NewOTPStore(cfg.OTP.TTL)
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	emailService, err := services.NewEmailService(cfg.Email, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	userService := services.NewUserService(userRepo, otp, emailService, authService, logger)
	verificationService := services.NewVerificationService(userRepo, otp, emailService, logger)
	resetService := services.NewPasswordResetService(userRepo, otp, emailService, authService, cfg.App.ResetPasswordURL(), logger)
	messageService := services.NewMessageService(userRepo, messageRepo, logger)

	// === Handlers ===
	if err := handlers.RegisterValidators(); err != nil {
		a.Close()
		return nil, err
	}
	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(userService, logger),
		Verify:        handlers.NewVerifyHandler(verificationService, logger),
		PasswordReset: handlers.NewPasswordResetHandler(resetService, logger),
		Messages:      handlers.NewMessageHandler(messageService, cfg.Messages.MaxLength, logger),
		Health:        handlers.NewHealthHandler(a.healthChecks()),
	}

	// === Gin ===
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.TelemetryMiddleware())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS())

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Requests: cfg.RateLimit.Requests,
		Window:   cfg.RateLimit.Window,
	}, a.redis, logger)
	routes.SetupRoutes(router, h, authService, limiter)
	a.router = router

	a.sweeper = jobs.NewCodeSweeper(userRepo, cfg.OTP.SweepSchedule, logger)
	return a, nil
}

func openPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := migrations.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *App) healthChecks() map[string]handlers.HealthCheck {
	checks := make(map[string]handlers.HealthCheck)
	if a.db != nil {
		checks["database"] = a.db.PingContext
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}
	}
	return checks
}

func (a *App) Handler() http.Handler {
	return a.router
}

// Serve listens on the configured port until ctx is cancelled, then drains
// in-flight requests.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close stops the sweeper and releases storage connections.
func (a *App) Close() {
	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close database", zap.Error(err))
		}
	}
}
