package report

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gym/backend/internal/domain/report"
	"github.com/gym/backend/internal/infrastructure/cache"
	"github.com/gym/backend/internal/infrastructure/logger"
	"github.com/gym/backend/internal/infrastructure/printing"
	"github.com/gym/backend/internal/infrastructure/storage"
	"github.com/gym/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultRenderTimeout = 60 * time.Second
	reportFileMode       = 0o644
)

// DocumentTemplate turns a laid out document into a complete HTML page
type DocumentTemplate interface {
	RenderDocument(ctx context.Context, doc *report.Document, setup printing.PageSetup) (string, error)
	PageFooterHTML() string
}

// Archiver uploads finished reports to long-term storage
type Archiver interface {
	Archive(ctx context.Context, in storage.ArchiveInput) (*storage.ArchivedReport, error)
}

// ReportService runs the report pipeline: validate, resolve the period,
// fetch, build the document, render it and write the file.
type ReportService struct {
	transactions report.TransactionRepository
	memberships  report.MembershipRepository
	products     report.ProductRepository
	templates    DocumentTemplate
	renderer     printing.PDFRenderer

	archive       Archiver
	productNames  cache.ProductNameCache
	metrics       *telemetry.ReportMetrics
	logger        *zap.Logger
	clock         func() time.Time
	pageSetup     printing.PageSetup
	renderTimeout time.Duration
	engine        string
}

// Option configures a ReportService
type Option func(*ReportService)

// WithClock overrides the clock used for period resolution and timestamps
func WithClock(clock func() time.Time) Option {
	return func(s *ReportService) {
		s.clock = clock
	}
}

// WithArchive enables uploading reports whose request asks for it
func WithArchive(a Archiver) Option {
	return func(s *ReportService) {
		s.archive = a
	}
}

// WithProductNameCache caches the product filter options
func WithProductNameCache(c cache.ProductNameCache) Option {
	return func(s *ReportService) {
		s.productNames = c
	}
}

func WithMetrics(m *telemetry.ReportMetrics) Option {
	return func(s *ReportService) {
		s.metrics = m
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *ReportService) {
		s.logger = l
	}
}

func WithPageSetup(setup printing.PageSetup) Option {
	return func(s *ReportService) {
		s.pageSetup = setup
	}
}

// WithRenderTimeout bounds the HTML to PDF conversion
func WithRenderTimeout(d time.Duration) Option {
	return func(s *ReportService) {
		if d > 0 {
			s.renderTimeout = d
		}
	}
}

// WithEngineName labels spans with the configured PDF engine
func WithEngineName(name string) Option {
	return func(s *ReportService) {
		s.engine = name
	}
}

// NewReportService creates a report service
func NewReportService(
	transactions report.TransactionRepository,
	memberships report.MembershipRepository,
	products report.ProductRepository,
	templates DocumentTemplate,
	renderer printing.PDFRenderer,
	opts ...Option,
) *ReportService {
	s := &ReportService{
		transactions:  transactions,
		memberships:   memberships,
		products:      products,
		templates:     templates,
		renderer:      renderer,
		logger:        zap.NewNop(),
		clock:         time.Now,
		pageSetup:     printing.DefaultPageSetup(),
		renderTimeout: defaultRenderTimeout,
		engine:        printing.EngineChromedp,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces one report file. Fetch failures do not abort the run:
// the affected section renders empty and a warning is returned with the result.
// Validation failures abort before anything is fetched, and render or write
// failures leave no file at OutputPath.
func (s *ReportService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	started := s.clock()
	reportID := uuid.New().String()
	ctx, log := logger.WithReportID(ctx, s.logger, reportID)

	ctx, span := telemetry.StartSpan(ctx, "report.generate",
		telemetry.AttrReportType.String(string(req.Type)),
		telemetry.AttrReportPeriod.String(req.Period),
		telemetry.AttrReportEngine.String(s.engine),
	)
	defer span.End()

	domainReq := req.domain()
	if err := domainReq.Validate(); err != nil {
		return nil, s.fail(ctx, span, log, req.Type, telemetry.OutcomeValidationError, started, err)
	}

	period := report.ResolvePeriod(req.Period, started)
	if period.Start.After(period.End) {
		err := report.NewValidationError(report.ErrCodeInvalidRange,
			"Data początkowa nie może być późniejsza niż końcowa", nil)
		return nil, s.fail(ctx, span, log, req.Type, telemetry.OutcomeValidationError, started, err)
	}
	filter := domainReq.EffectiveProductFilter()
	span.SetAttributes(telemetry.AttrReportFilter.String(filter))

	log.Info("Generating report",
		zap.String("type", string(req.Type)),
		zap.String("period", period.Token),
		zap.Time("start", period.Start),
		zap.Time("end", period.End),
		zap.String("product_filter", filter),
	)

	data, warnings := s.fetch(ctx, log, req.Type, period, filter)

	doc := report.BuildDocument(report.DocumentInput{
		Type:              req.Type,
		ProductFilter:     filter,
		Requester:         req.Requester,
		PeriodDescription: report.DescribePeriod(req.Period, started),
		GeneratedAt:       started,
	}, data)

	html, err := s.templates.RenderDocument(ctx, doc, s.pageSetup)
	if err != nil {
		renderErr := report.NewRenderError(report.ErrCodeRender, "failed to lay out report", err)
		return nil, s.fail(ctx, span, log, req.Type, telemetry.OutcomeRenderError, started, renderErr)
	}

	renderCtx, cancel := context.WithTimeout(ctx, s.renderTimeout)
	defer cancel()
	rendered, err := s.renderer.Render(renderCtx, &printing.RenderRequest{
		HTML:       html,
		Page:       s.pageSetup,
		Title:      doc.Title,
		FooterHTML: s.templates.PageFooterHTML(),
		Timeout:    s.renderTimeout,
	})
	if err != nil {
		renderErr := report.NewRenderError(report.ErrCodeRender, "failed to render PDF", err)
		return nil, s.fail(ctx, span, log, req.Type, telemetry.OutcomeRenderError, started, renderErr)
	}

	if err := printing.WriteFileAtomic(ctx, req.OutputPath, rendered.PDFData, reportFileMode); err != nil {
		writeErr := report.NewRenderError(report.ErrCodeWrite, "failed to write report file", err)
		return nil, s.fail(ctx, span, log, req.Type, telemetry.OutcomeRenderError, started, writeErr)
	}

	result := &GenerateResult{
		ReportID:          reportID,
		Type:              req.Type,
		Title:             doc.Title,
		OutputPath:        req.OutputPath,
		FileName:          filepath.Base(req.OutputPath),
		PeriodStart:       period.Start,
		PeriodEnd:         period.End,
		PeriodDescription: doc.PeriodDescription,
		ProductFilter:     filter,
		Rows:              doc.RowCount(),
		Pages:             rendered.PageCount,
		Bytes:             len(rendered.PDFData),
		GeneratedAt:       started,
		Warnings:          warnings,
	}

	if req.Archive && s.archive != nil {
		result.Archive, result.Warnings = s.archiveFile(ctx, log, req, started, result.Warnings)
	}

	result.Duration = s.clock().Sub(started)
	span.SetAttributes(
		telemetry.AttrReportRows.Int(result.Rows),
		telemetry.AttrReportPages.Int(result.Pages),
		telemetry.AttrReportBytes.Int(result.Bytes),
		telemetry.AttrReportOutcome.String(telemetry.OutcomeSuccess),
	)
	s.metrics.RecordGeneration(ctx, string(req.Type), telemetry.OutcomeSuccess, result.Duration)
	s.metrics.RecordSize(ctx, string(req.Type), result.Bytes)

	log.Info("Report generated",
		zap.String("path", req.OutputPath),
		zap.Int("rows", result.Rows),
		zap.Int("pages", result.Pages),
		zap.Int("bytes", result.Bytes),
		zap.Int("warnings", len(result.Warnings)),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// fetch loads the sections the report type needs. Every failed fetch is
// replaced by an empty slice and reported as a warning.
func (s *ReportService) fetch(ctx context.Context, log *zap.Logger, t report.ReportType, period report.Period, productFilter string) (*report.Dataset, []Warning) {
	data := report.NewDataset()
	warnings := []Warning{}
	degrade := func(entity string, err error) {
		warnings = append(warnings, Warning{Entity: entity, Message: err.Error()})
		log.Warn("Report section fetch failed, rendering it empty",
			zap.String("entity", entity),
			zap.Error(err),
		)
		s.metrics.RecordWarning(ctx, string(t), entity)
		telemetry.AddEvent(ctx, "report.fetch.degraded",
			telemetry.AttrFetchEntity.String(entity),
			attribute.String("error", err.Error()),
		)
	}

	loadTransactions := func(filter report.RangeFilter) {
		rows, err := s.transactions.FindByPeriod(ctx, filter)
		if err != nil {
			degrade(report.EntityTransactions, err)
			return
		}
		if rows != nil {
			data.Transactions = rows
		}
	}
	loadMemberships := func() {
		rows, err := s.memberships.FindByPeriod(ctx, report.FilterFor(period, ""))
		if err != nil {
			degrade(report.EntityMemberships, err)
			return
		}
		if rows != nil {
			data.Memberships = rows
		}
	}

	switch t {
	case report.ReportTypeFinancial:
		loadTransactions(report.FilterFor(period, ""))
		loadMemberships()
	case report.ReportTypeProducts:
		rows, err := s.products.FindAll(ctx)
		if err != nil {
			degrade(report.EntityProducts, err)
		} else if rows != nil {
			data.AllProducts = rows
			data.Products = filterProducts(rows, productFilter)
		}
		loadTransactions(report.FilterFor(period, productFilter))
	case report.ReportTypeMemberships:
		loadMemberships()
	case report.ReportTypeTransactions:
		loadTransactions(report.FilterFor(period, ""))
	}
	return data, warnings
}

func filterProducts(products []report.ProductRecord, name string) []report.ProductRecord {
	if name == "" {
		return products
	}
	out := []report.ProductRecord{}
	for _, p := range products {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}

func (s *ReportService) archiveFile(ctx context.Context, log *zap.Logger, req GenerateRequest, at time.Time, warnings []Warning) (*ArchiveInfo, []Warning) {
	archived, err := s.archive.Archive(ctx, storage.ArchiveInput{
		LocalPath:   req.OutputPath,
		ReportType:  string(req.Type),
		Requester:   req.Requester,
		GeneratedAt: at,
	})
	if err != nil {
		log.Warn("Report archive upload failed", zap.Error(err))
		telemetry.AddEvent(ctx, "report.archive.failed", attribute.String("error", err.Error()))
		return nil, append(warnings, Warning{Entity: "archive", Message: err.Error()})
	}
	return &ArchiveInfo{
		Bucket:      archived.Bucket,
		Key:         archived.Key,
		DownloadURL: archived.DownloadURL,
		ExpiresAt:   archived.ExpiresAt,
	}, warnings
}

func (s *ReportService) fail(ctx context.Context, span trace.Span, log *zap.Logger, t report.ReportType, outcome string, started time.Time, err error) error {
	span.SetAttributes(telemetry.AttrReportOutcome.String(outcome))
	s.metrics.RecordGeneration(ctx, string(t), outcome, s.clock().Sub(started))
	telemetry.RecordError(span, err)

	var validationErr *report.ValidationError
	if errors.As(err, &validationErr) {
		log.Info("Report request rejected", zap.String("code", validationErr.Code), zap.String("reason", validationErr.Message))
		return err
	}
	log.Error("Report generation failed", zap.Error(err))
	return err
}

// ProductNames returns the product filter options, "Wszystkie" first.
// A storage failure yields just the "Wszystkie" option.
func (s *ReportService) ProductNames(ctx context.Context) ([]string, error) {
	if s.productNames != nil {
		names, ok, err := s.productNames.Get(ctx)
		if err != nil {
			s.logger.Warn("Product name cache read failed", zap.Error(err))
		} else if ok {
			return withAllProducts(names), nil
		}
	}

	names, err := s.products.FindNames(ctx)
	if err != nil {
		s.logger.Warn("Failed to load product names", zap.Error(err))
		return []string{report.AllProducts}, err
	}
	if s.productNames != nil {
		if err := s.productNames.Set(ctx, names); err != nil {
			s.logger.Warn("Product name cache write failed", zap.Error(err))
		}
	}
	return withAllProducts(names), nil
}

// InvalidateProductNames drops cached filter options after the catalog changes
func (s *ReportService) InvalidateProductNames(ctx context.Context) error {
	if s.productNames == nil {
		return nil
	}
	return s.productNames.Invalidate(ctx)
}

func withAllProducts(names []string) []string {
	out := make([]string, 0, len(names)+1)
	out = append(out, report.AllProducts)
	return append(out, names...)
}

// ReportTypes lists the report types in display order
func (s *ReportService) ReportTypes() []ReportTypeOption {
	types := report.AllReportTypes()
	out := make([]ReportTypeOption, 0, len(types))
	for _, t := range types {
		out = append(out, ReportTypeOption{
			Type:                  t,
			Title:                 t.Title(""),
			SupportsProductFilter: t == report.ReportTypeProducts,
		})
	}
	return out
}

// PeriodOptions lists the period presets resolved against today
func (s *ReportService) PeriodOptions() []PeriodOption {
	today := s.clock()
	presets := report.PeriodPresets()
	out := make([]PeriodOption, 0, len(presets))
	for _, p := range presets {
		resolved := report.ResolvePeriod(p.Label, today)
		out = append(out, PeriodOption{
			Label:       p.Label,
			Alias:       p.Alias,
			Start:       resolved.Start,
			End:         resolved.End,
			Description: report.DescribePeriod(p.Label, today),
		})
	}
	return out
}

// SuggestedFileName returns the default file name for a report generated today
func (s *ReportService) SuggestedFileName(t report.ReportType, productFilter string) string {
	return t.SuggestedFileName(productFilter, s.clock())
}
