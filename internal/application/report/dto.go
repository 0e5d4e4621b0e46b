package report

import (
	"time"

	"github.com/gym/backend/internal/domain/report"
)

// GenerateRequest is the input of one report run
type GenerateRequest struct {
	Type       report.ReportType
	Period     string
	OutputPath string
	Requester  string
	// ProductFilter is a product name or "Wszystkie"; only the products report accepts one
	ProductFilter string
	// Archive uploads the finished file when an archive is configured
	Archive bool
}

func (r GenerateRequest) domain() report.Request {
	return report.Request{
		Type:          r.Type,
		Period:        r.Period,
		OutputPath:    r.OutputPath,
		Requester:     r.Requester,
		ProductFilter: r.ProductFilter,
	}
}

// Warning is a non-fatal degradation surfaced with the result
type Warning struct {
	Entity  string `json:"entity"`
	Message string `json:"message"`
}

// ArchiveInfo locates the archived copy of a report
type ArchiveInfo struct {
	Bucket      string    `json:"bucket"`
	Key         string    `json:"key"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// GenerateResult describes a written report
type GenerateResult struct {
	ReportID          string            `json:"report_id"`
	Type              report.ReportType `json:"type"`
	Title             string            `json:"title"`
	OutputPath        string            `json:"-"`
	FileName          string            `json:"file_name"`
	PeriodStart       time.Time         `json:"period_start"`
	PeriodEnd         time.Time         `json:"period_end"`
	PeriodDescription string            `json:"period_description"`
	ProductFilter     string            `json:"product_filter,omitempty"`
	Rows              int               `json:"rows"`
	Pages             int               `json:"pages"`
	Bytes             int               `json:"bytes"`
	GeneratedAt       time.Time         `json:"generated_at"`
	Duration          time.Duration     `json:"duration_ns"`
	Warnings          []Warning         `json:"warnings"`
	Archive           *ArchiveInfo      `json:"archive,omitempty"`
}

// ReportTypeOption is a report type as offered to clients
type ReportTypeOption struct {
	Type                  report.ReportType `json:"type"`
	Title                 string            `json:"title"`
	SupportsProductFilter bool              `json:"supports_product_filter"`
}

// PeriodOption is a period preset with its resolved range for today
type PeriodOption struct {
	Label       string    `json:"label"`
	Alias       string    `json:"alias"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description"`
}
