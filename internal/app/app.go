package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/hamzamohiuddin1/msaconnect/internal/auth"
	"github.com/hamzamohiuddin1/msaconnect/internal/classes"
	"github.com/hamzamohiuddin1/msaconnect/internal/config"
	"github.com/hamzamohiuddin1/msaconnect/internal/db"
	"github.com/hamzamohiuddin1/msaconnect/internal/health"
	"github.com/hamzamohiuddin1/msaconnect/internal/logger"
	"github.com/hamzamohiuddin1/msaconnect/internal/mailer"
	"github.com/hamzamohiuddin1/msaconnect/internal/metrics"
	"github.com/hamzamohiuddin1/msaconnect/internal/middleware"
	"github.com/hamzamohiuddin1/msaconnect/internal/notify"
	"github.com/hamzamohiuddin1/msaconnect/internal/telemetry"
	"github.com/hamzamohiuddin1/msaconnect/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type App struct {
	config        *config.Config
	router        chi.Router
	server        *http.Server
	logger        *slog.Logger
	database      *bun.DB
	meterProvider *sdkmetric.MeterProvider
	producer      *notify.Producer
	consumer      *notify.Consumer
	rateLimiter   *middleware.RateLimiter
	consumerStop  context.CancelFunc
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses the structured format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	ctx := context.Background()

	// Metric export is optional; the collectors fall back to no-ops.
	meterProvider, err := telemetry.InitMeterProvider(ctx, ServiceName, Version, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize telemetry", "error", err)
	}
	app.meterProvider = meterProvider

	m, err := metrics.New(ctx, ServiceName)
	if err != nil {
		slogLogger.Warn("failed to initialize metrics collectors", "error", err)
		m = metrics.NewMock()
	}

	app.database = db.New(cfg.Database)
	if err := db.RunMigrations(ctx, app.database, (*user.User)(nil)); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	userRepo := user.NewRepository(app.database, m)

	// Email provider setup. Missing credentials degrade to log-only
	// notifications so local development works without SendGrid.
	var accountMailer *mailer.SendGridMailer
	accountMailer, err = mailer.New(cfg.Email, slogLogger)
	if err != nil {
		slogLogger.Warn("email provider not configured, notifications will be logged only", "error", err)
		accountMailer = nil
	}

	publisher := app.setupNotifications(accountMailer, m, slogLogger)

	// Auth setup
	var confirmationMailer auth.Mailer
	if accountMailer != nil {
		confirmationMailer = accountMailer
	}
	authService := auth.NewService(userRepo, confirmationMailer, cfg.Auth, slogLogger, m)
	authHandler := auth.NewHandler(authService, slogLogger)

	// Classes setup
	classService := classes.NewService(userRepo, publisher, slogLogger, m)
	classHandler := classes.NewHandler(classService, slogLogger)

	// Throttle the endpoints reachable without a token
	app.rateLimiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())

	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	app.router.Group(func(r chi.Router) {
		r.Use(app.rateLimiter.Middleware())
		authHandler.RegisterRoutes(r)
	})

	app.router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(slogLogger))
		authHandler.RegisterProtectedRoutes(r)
		classHandler.RegisterRoutes(r)
	})

	slogLogger.Info("application initialized successfully")

	return app
}

// setupNotifications picks the notification pipeline: NATS fan-out with an
// in-process consumer when a broker is configured, direct goroutine dispatch
// when only the mailer is available, log-only otherwise.
func (a *App) setupNotifications(accountMailer *mailer.SendGridMailer, m *metrics.Metrics, slogLogger *slog.Logger) notify.Publisher {
	if accountMailer == nil {
		return notify.NewLogPublisher(slogLogger)
	}

	if a.config.NATS.URL == "" {
		return notify.NewDirectDispatcher(accountMailer, slogLogger, m)
	}

	producer, err := notify.NewProducer(a.config.NATS.URL, a.config.NATS.Subject, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize NATS producer, using direct dispatch", "error", err)
		return notify.NewDirectDispatcher(accountMailer, slogLogger, m)
	}
	a.producer = producer

	consumer, err := notify.NewConsumer(a.config.NATS.URL, a.config.NATS.Subject, accountMailer, slogLogger, m)
	if err != nil {
		slogLogger.Warn("failed to initialize NATS consumer, using direct dispatch", "error", err)
		producer.Close()
		a.producer = nil
		return notify.NewDirectDispatcher(accountMailer, slogLogger, m)
	}
	a.consumer = consumer

	consumerCtx, cancel := context.WithCancel(context.Background())
	a.consumerStop = cancel
	go func() {
		if err := consumer.Start(consumerCtx); err != nil && consumerCtx.Err() == nil {
			slogLogger.Error("notification consumer stopped", "error", err)
		}
	}()

	slogLogger.Info("NATS notification pipeline initialized", "subject", a.config.NATS.Subject)
	return producer
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	if a.consumerStop != nil {
		a.consumerStop()
	}
	if a.consumer != nil {
		a.consumer.Close()
	}
	if a.producer != nil {
		a.producer.Close()
	}
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	if err := telemetry.Shutdown(ctx, a.meterProvider, a.logger); err != nil {
		a.logger.Warn("telemetry shutdown failed", "error", err)
	}

	err := a.server.Shutdown(ctx)
	db.Close(a.database)
	return err
}
