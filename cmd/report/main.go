package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	reportapp "github.com/gym/backend/internal/application/report"
	"github.com/gym/backend/internal/bootstrap"
	"github.com/gym/backend/internal/domain/report"
	"github.com/gym/backend/internal/infrastructure/config"
	"github.com/gym/backend/internal/infrastructure/logger"
	"github.com/gym/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type options struct {
	reportType string
	period     string
	start      string
	end        string
	out        string
	requester  string
	product    string
	archive    bool
	list       bool
	logLevel   string
}

func main() {
	var opts options
	flag.StringVar(&opts.reportType, "type", "", "Report type (financial, products, memberships, transactions)")
	flag.StringVar(&opts.period, "period", "", `Period label or alias, e.g. "Ostatni miesiąc" or last-month`)
	flag.StringVar(&opts.start, "start", "", "Custom period start (YYYY-MM-DD), used with -end")
	flag.StringVar(&opts.end, "end", "", "Custom period end (YYYY-MM-DD), used with -start")
	flag.StringVar(&opts.out, "out", "", "Output PDF path (default: suggested file name in the current directory)")
	flag.StringVar(&opts.requester, "requester", "", "Email of the user generating the report")
	flag.StringVar(&opts.product, "product", report.AllProducts, "Product filter for the products report")
	flag.BoolVar(&opts.archive, "archive", false, "Upload the finished report to the configured bucket")
	flag.BoolVar(&opts.list, "list", false, "Print report types, periods and products, then exit")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      opts.logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, log); err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, log *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	reporting, err := bootstrap.NewReporting(ctx, cfg, log, telemetry.NewNoopReportMetrics())
	if err != nil {
		return err
	}
	defer func() {
		if err := reporting.Close(); err != nil {
			log.Warn("Error releasing report pipeline", zap.Error(err))
		}
	}()

	if opts.list {
		return printOptions(ctx, os.Stdout, reporting.Service, log)
	}

	period, err := resolvePeriod(opts)
	if err != nil {
		return err
	}
	reportType := report.ReportType(opts.reportType)
	out := opts.out
	if out == "" && reportType.IsValid() {
		out = reporting.Service.SuggestedFileName(reportType, opts.product)
	}

	result, err := reporting.Service.Generate(ctx, reportapp.GenerateRequest{
		Type:          reportType,
		Period:        period,
		OutputPath:    out,
		Requester:     opts.requester,
		ProductFilter: opts.product,
		Archive:       opts.archive,
	})
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, result)
}

func resolvePeriod(opts options) (string, error) {
	if opts.start == "" && opts.end == "" {
		return opts.period, nil
	}
	start, err := parseDate(opts.start)
	if err != nil {
		return "", err
	}
	end, err := parseDate(opts.end)
	if err != nil {
		return "", err
	}
	return report.CustomPeriodToken(start, end)
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return &t, nil
}

// reportCatalog lists what the report service can generate
type reportCatalog interface {
	ReportTypes() []reportapp.ReportTypeOption
	PeriodOptions() []reportapp.PeriodOption
	ProductNames(ctx context.Context) ([]string, error)
}

// printOptions writes the generation options. An unreachable product catalog
// still lists the "all products" entry the service falls back to.
func printOptions(ctx context.Context, w io.Writer, svc reportCatalog, log *zap.Logger) error {
	products, err := svc.ProductNames(ctx)
	if err != nil {
		log.Warn("Product list unavailable, listing the default filter only", zap.Error(err))
		if len(products) == 0 {
			products = []string{report.AllProducts}
		}
	}
	return writeJSON(w, map[string]any{
		"types":    svc.ReportTypes(),
		"periods":  svc.PeriodOptions(),
		"products": products,
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: report -type TYPE [-period PERIOD | -start DATE -end DATE] [options]

Generates a gym report PDF and prints a JSON summary on stdout.
Configuration is read from config.toml and GYM_* environment variables.

Examples:
  report -type financial -period "Ostatni miesiąc" -out ./finanse.pdf -requester admin@gym.local
  report -type products -period current-year -product Woda
  report -type transactions -start 2024-01-01 -end 2024-01-31
  report -list

Options:
`)
	flag.PrintDefaults()
}
