package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/gym/backend/internal/application/identity"
	"github.com/gym/backend/internal/bootstrap"
	"github.com/gym/backend/internal/infrastructure/auth"
	"github.com/gym/backend/internal/infrastructure/config"
	"github.com/gym/backend/internal/infrastructure/logger"
	"github.com/gym/backend/internal/infrastructure/scheduler"
	"github.com/gym/backend/internal/infrastructure/telemetry"
	"github.com/gym/backend/internal/interfaces/http/handler"
	"github.com/gym/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/gym/backend/docs"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 30 * time.Second
)

//	@title			Gym Reports API
//	@version		1.0
//	@description	Generates financial, product, membership and transaction PDF reports for the gym.

//	@contact.name	Gym IT
//	@contact.email	it@gym.local

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	bootLog, err := newLogger(cfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// OTLP log export goes through a second zap core, so the final logger is
	// built once the provider exists
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log := bootLog
	if logProvider.IsEnabled() {
		log, err = newLogger(cfg, logger.WithCore(logProvider.ZapCore(zapcore.InfoLevel)))
		if err != nil {
			bootLog.Fatal("Failed to initialize logger", zap.Error(err))
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting gym report server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("engine", cfg.Report.Engine),
	)

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meters, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	metrics := telemetry.NewNoopReportMetrics()
	if meters.IsEnabled() {
		metrics, err = telemetry.NewReportMetrics(meters.Meter(telemetry.TracerName))
		if err != nil {
			log.Fatal("Failed to register report metrics", zap.Error(err))
		}
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServerURL,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracer.EnableSpanProfiles()
	}

	reporting, err := bootstrap.NewReporting(ctx, cfg, log, metrics)
	if err != nil {
		log.Fatal("Failed to initialize report pipeline", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(reporting.Repos.Users, jwtService, reporting.Cache.TokenBlacklist(), log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.NewEngine(router.EngineConfig{
		HTTP:          cfg.HTTP,
		Swagger:       cfg.Swagger,
		Telemetry:     cfg.Telemetry,
		Authenticator: authService,
		Logger:        log,
	}, router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Report: handler.NewReportHandler(reporting.Service, reporting.Outputs),
		System: handler.NewSystemHandler(cfg.App.Name, version, reporting.DB),
	})

	jobs, trigger, err := newNightlyJobs(cfg, reporting, log)
	if err != nil {
		log.Fatal("Failed to configure nightly jobs", zap.Error(err))
	}
	if err := jobs.Start(ctx); err != nil {
		log.Fatal("Failed to start job scheduler", zap.Error(err))
	}
	if err := trigger.Start(ctx); err != nil {
		log.Fatal("Failed to start cron trigger", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := trigger.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping cron trigger", zap.Error(err))
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping job scheduler", zap.Error(err))
	}
	if err := reporting.Close(); err != nil {
		log.Error("Error releasing report pipeline", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meters.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing metrics", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing traces", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing logs", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func newLogger(cfg *config.Config, opts ...logger.Option) (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, opts...)
}

// newNightlyJobs builds the worker pool and the daily trigger. Expired files
// are cleaned up every night; reports are generated only when enabled.
func newNightlyJobs(cfg *config.Config, reporting *bootstrap.Reporting, log *zap.Logger) (*scheduler.Scheduler, *scheduler.CronTrigger, error) {
	hour, minute, err := scheduler.ParseCronSchedule(cfg.Scheduler.DailySchedule)
	if err != nil {
		return nil, nil, err
	}
	var reports []scheduler.NightlyReport
	if cfg.Scheduler.Enabled {
		if reports, err = scheduler.ParseNightlyReports(cfg.Scheduler.Reports); err != nil {
			return nil, nil, err
		}
	}

	executor := scheduler.NewReportExecutor(reporting.Service, reporting.Outputs, cfg.Scheduler.Requester,
		scheduler.WithArchive(reporting.Archive != nil),
		scheduler.WithLogger(log),
	)
	jobs := scheduler.NewScheduler(scheduler.SchedulerConfig{
		MaxConcurrentJobs: cfg.Scheduler.Workers,
		JobTimeout:        cfg.Scheduler.JobTimeout,
		RetryAttempts:     cfg.Scheduler.RetryAttempts,
		RetryDelay:        cfg.Scheduler.RetryDelay,
	}, executor, log)

	trigger := scheduler.NewCronTrigger(scheduler.CronTriggerConfig{
		DailyHour:     hour,
		DailyMinute:   minute,
		CheckInterval: time.Minute,
		Reports:       reports,
	}, jobs, log)
	return jobs, trigger, nil
}
