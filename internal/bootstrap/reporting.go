// Package bootstrap wires the report pipeline from configuration. The HTTP
// server and the report CLI share it.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	reportapp "github.com/gym/backend/internal/application/report"
	"github.com/gym/backend/internal/infrastructure/cache"
	"github.com/gym/backend/internal/infrastructure/config"
	"github.com/gym/backend/internal/infrastructure/logger"
	"github.com/gym/backend/internal/infrastructure/migration"
	"github.com/gym/backend/internal/infrastructure/persistence"
	"github.com/gym/backend/internal/infrastructure/printing"
	"github.com/gym/backend/internal/infrastructure/storage"
	"github.com/gym/backend/internal/infrastructure/telemetry"
	"github.com/gym/backend/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Reporting holds the report pipeline and the resources behind it
type Reporting struct {
	DB       *persistence.Database
	Repos    Repositories
	Cache    *cache.Factory
	Renderer printing.PDFRenderer
	Outputs  *printing.OutputStore
	Archive  *storage.S3ReportArchive
	Service  *reportapp.ReportService

	closers []func() error
}

// Repositories are the gorm repositories over the shared connection
type Repositories struct {
	Transactions *persistence.GormTransactionRepository
	Memberships  *persistence.GormMembershipRepository
	Products     *persistence.GormProductRepository
	Users        *persistence.GormUserRepository
}

// NewReporting connects to the database, Redis and the optional archive and
// builds the report service. Call Close when done.
func NewReporting(ctx context.Context, cfg *config.Config, log *zap.Logger, metrics *telemetry.ReportMetrics) (_ *Reporting, err error) {
	r := &Reporting{}
	defer func() {
		if err != nil {
			_ = r.Close()
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := migrate(&cfg.Database, log); err != nil {
			return nil, err
		}
	}

	dbOpts := []persistence.Option{
		persistence.WithLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh),
	}
	if cfg.Telemetry.DBTraceEnabled {
		dbOpts = append(dbOpts, persistence.WithTracing(telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBName:          cfg.Database.DBName,
		}, log)))
	}
	r.DB, err = persistence.NewDatabase(&cfg.Database, dbOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	r.closers = append(r.closers, r.DB.Close)
	log.Info("Database connected", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	r.Repos = Repositories{
		Transactions: persistence.NewGormTransactionRepository(r.DB.DB),
		Memberships:  persistence.NewGormMembershipRepository(r.DB.DB),
		Products:     persistence.NewGormProductRepository(r.DB.DB),
		Users:        persistence.NewGormUserRepository(r.DB.DB),
	}

	r.Cache = cache.NewFactory(cfg.Redis, cfg.Report.ProductCacheTTL, cache.WithLogger(log))
	if _, err := r.Cache.Connect(ctx); err != nil {
		return nil, err
	}
	r.closers = append(r.closers, r.Cache.Close)

	pageSetup := printing.DefaultPageSetup()
	paper, err := printing.ParsePaperSize(cfg.Report.PaperSize)
	if err != nil {
		return nil, err
	}
	pageSetup.PaperSize = paper

	templates, err := printing.NewTemplateEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to load report templates: %w", err)
	}

	r.Renderer, err = printing.NewPDFRenderer(printing.RendererConfig{
		Engine:          cfg.Report.Engine,
		Timeout:         cfg.Report.Timeout,
		ChromeRemoteURL: cfg.Report.ChromeRemoteURL,
		ChromeNoSandbox: cfg.Report.ChromeNoSandbox,
		WkhtmltopdfPath: cfg.Report.WkhtmltopdfPath,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to start PDF renderer: %w", err)
	}
	r.closers = append(r.closers, r.Renderer.Close)

	r.Outputs, err = printing.NewOutputStore(&printing.OutputStoreConfig{
		BasePath:      cfg.Report.OutputDir,
		RetentionDays: cfg.Report.RetentionDays,
		Logger:        log,
	})
	if err != nil {
		return nil, err
	}

	opts := []reportapp.Option{
		reportapp.WithLogger(log),
		reportapp.WithMetrics(metrics),
		reportapp.WithProductNameCache(r.Cache.ProductNameCache()),
		reportapp.WithPageSetup(pageSetup),
		reportapp.WithRenderTimeout(cfg.Report.Timeout),
		reportapp.WithEngineName(cfg.Report.Engine),
	}
	if cfg.Storage.Enabled() {
		r.Archive, err = storage.NewS3ReportArchive(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return nil, err
		}
		if err := r.Archive.EnsureBucket(ctx); err != nil {
			log.Warn("Report bucket check failed, archiving may fail", zap.Error(err))
		}
		opts = append(opts, reportapp.WithArchive(r.Archive))
		log.Info("Report archive enabled", zap.String("bucket", r.Archive.Bucket()))
	}

	r.Service = reportapp.NewReportService(
		r.Repos.Transactions,
		r.Repos.Memberships,
		r.Repos.Products,
		templates,
		r.Renderer,
		opts...,
	)
	return r, nil
}

// Close releases resources in reverse order of acquisition
func (r *Reporting) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

func migrate(cfg *config.DatabaseConfig, log *zap.Logger) error {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("open database for migrations: %w", err)
	}
	defer db.Close()

	m, err := migration.New(db, migration.Source{FS: migrations.FS}, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
