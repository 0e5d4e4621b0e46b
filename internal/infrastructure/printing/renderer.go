package printing

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Supported renderer engines
const (
	EngineChromedp    = "chromedp"
	EngineWkhtmltopdf = "wkhtmltopdf"
)

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	HTML  string
	Page  PageSetup
	Title string
	// FooterHTML is repeated at the bottom of every page (optional)
	FooterHTML string
	// Timeout overrides the renderer default
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer converts a complete HTML document into PDF bytes
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during HTML or PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeBinaryNotFound   = "BINARY_NOT_FOUND"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeUnknownEngine    = "UNKNOWN_ENGINE"
	ErrCodeStorageFailed    = "STORAGE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// RendererConfig selects and configures a PDF engine
type RendererConfig struct {
	Engine          string
	Timeout         time.Duration
	ChromeRemoteURL string
	ChromeNoSandbox bool
	WkhtmltopdfPath string
	TempDir         string
}

// NewPDFRenderer builds the renderer named by cfg.Engine
func NewPDFRenderer(cfg RendererConfig, logger *zap.Logger) (PDFRenderer, error) {
	switch strings.ToLower(cfg.Engine) {
	case "", EngineChromedp:
		r, err := NewChromedpRenderer(&ChromedpConfig{
			DefaultTimeout: cfg.Timeout,
			RemoteURL:      cfg.ChromeRemoteURL,
			NoSandbox:      cfg.ChromeNoSandbox,
			Logger:         logger,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	case EngineWkhtmltopdf:
		r, err := NewWkhtmltopdfRenderer(&WkhtmltopdfConfig{
			BinaryPath:     cfg.WkhtmltopdfPath,
			DefaultTimeout: cfg.Timeout,
			TempDir:        cfg.TempDir,
			Logger:         logger,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, NewRenderError(ErrCodeUnknownEngine, fmt.Sprintf("unknown PDF engine %q", cfg.Engine), nil)
}

// validateRequest performs the checks shared by all engines
func validateRequest(req *RenderRequest) error {
	if req == nil {
		return NewRenderError(ErrCodeInvalidHTML, "render request is nil", nil)
	}
	if strings.TrimSpace(req.HTML) == "" {
		return NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	if !req.Page.PaperSize.IsValid() {
		return NewRenderError(ErrCodeInvalidPaperSize, "invalid paper size: "+string(req.Page.PaperSize), nil)
	}
	return nil
}

// estimatePageCount counts page objects in the PDF.
// "/Type /Pages" also matches "/Type /Page", so parents are subtracted.
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page"))
	count -= bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(count, 1)
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}
