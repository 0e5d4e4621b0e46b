package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBinaryPath = "wkhtmltopdf"
	defaultTimeout    = 30 * time.Second
	defaultDPI        = 96
)

// WkhtmltopdfConfig contains configuration for the wkhtmltopdf renderer
type WkhtmltopdfConfig struct {
	// BinaryPath is an absolute path or a name looked up in PATH
	BinaryPath     string
	DefaultTimeout time.Duration
	TempDir        string
	DPI            int
	Logger         *zap.Logger
}

// WkhtmltopdfRenderer renders HTML to PDF using the wkhtmltopdf command-line tool
type WkhtmltopdfRenderer struct {
	config *WkhtmltopdfConfig
	logger *zap.Logger
}

// NewWkhtmltopdfRenderer creates a wkhtmltopdf-based PDF renderer.
// It fails when the binary cannot be found.
func NewWkhtmltopdfRenderer(config *WkhtmltopdfConfig) (*WkhtmltopdfRenderer, error) {
	if config == nil {
		config = &WkhtmltopdfConfig{}
	}
	if config.BinaryPath == "" {
		config.BinaryPath = defaultBinaryPath
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultTimeout
	}
	if config.TempDir == "" {
		config.TempDir = os.TempDir()
	}
	if config.DPI == 0 {
		config.DPI = defaultDPI
	}

	binaryPath, err := resolveBinaryPath(config.BinaryPath)
	if err != nil {
		return nil, NewRenderError(ErrCodeBinaryNotFound,
			fmt.Sprintf("wkhtmltopdf binary not found: %s", config.BinaryPath), err)
	}
	config.BinaryPath = binaryPath

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WkhtmltopdfRenderer{config: config, logger: logger}, nil
}

func resolveBinaryPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}
	return exec.LookPath(path)
}

// Render converts HTML content to PDF through temporary files
func (r *WkhtmltopdfRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	started := time.Now()
	timeout := req.Timeout
	if timeout == 0 {
		timeout = r.config.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	workDir, err := os.MkdirTemp(r.config.TempDir, "report-render-*")
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to create work directory", err)
	}
	defer os.RemoveAll(workDir)

	htmlPath := filepath.Join(workDir, "document.html")
	if err := os.WriteFile(htmlPath, []byte(req.HTML), 0600); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to write HTML to temp file", err)
	}
	footerPath := ""
	if req.FooterHTML != "" {
		footerPath = filepath.Join(workDir, "footer.html")
		if err := os.WriteFile(footerPath, []byte(wrapFragment(req.FooterHTML)), 0600); err != nil {
			return nil, NewRenderError(ErrCodeRenderFailed, "failed to write footer to temp file", err)
		}
	}
	pdfPath := filepath.Join(workDir, "document.pdf")

	args := r.buildArgs(req, htmlPath, footerPath, pdfPath)
	r.logger.Debug("executing wkhtmltopdf",
		zap.String("binary", r.config.BinaryPath),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, r.config.BinaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("PDF rendering timed out after %v", timeout), err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
		}
		r.logger.Error("wkhtmltopdf failed", zap.Error(err), zap.String("stderr", stderr.String()))
		return nil, NewRenderError(ErrCodeRenderFailed, "wkhtmltopdf execution failed: "+stderr.String(), err)
	}

	pdfData, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to read generated PDF", err)
	}
	if len(pdfData) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	result := &RenderResult{
		PDFData:        pdfData,
		PageCount:      estimatePageCount(pdfData),
		RenderDuration: time.Since(started),
	}
	r.logger.Debug("PDF rendered",
		zap.String("engine", EngineWkhtmltopdf),
		zap.Int("bytes", len(pdfData)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration))
	return result, nil
}

// buildArgs constructs the command-line arguments for wkhtmltopdf
func (r *WkhtmltopdfRenderer) buildArgs(req *RenderRequest, htmlPath, footerPath, pdfPath string) []string {
	m := req.Page.Margins
	args := []string{
		"--quiet",
		"--encoding", "UTF-8",
		"--dpi", strconv.Itoa(r.config.DPI),
		"--page-size", pageSizeArg(req.Page.PaperSize),
		"--orientation", orientationArg(req.Page.Orientation),
		"--margin-top", fmt.Sprintf("%dmm", m.Top),
		"--margin-right", fmt.Sprintf("%dmm", m.Right),
		"--margin-bottom", fmt.Sprintf("%dmm", m.Bottom),
		"--margin-left", fmt.Sprintf("%dmm", m.Left),
		"--disable-javascript",
		"--disable-local-file-access",
	}
	if req.Title != "" {
		args = append(args, "--title", req.Title)
	}
	if footerPath != "" {
		args = append(args, "--footer-html", footerPath)
	}
	return append(args, htmlPath, pdfPath)
}

func pageSizeArg(p PaperSize) string {
	switch p {
	case PaperSizeA5:
		return "A5"
	case PaperSizeLetter:
		return "Letter"
	default:
		return "A4"
	}
}

func orientationArg(o Orientation) string {
	if o == OrientationLandscape {
		return "Landscape"
	}
	return "Portrait"
}

// wrapFragment turns a footer fragment into the standalone page wkhtmltopdf expects
func wrapFragment(fragment string) string {
	return "<!DOCTYPE html><html><head><meta charset=\"UTF-8\"></head><body>" + fragment + "</body></html>"
}

// Close is a no-op; every render spawns its own process
func (r *WkhtmltopdfRenderer) Close() error {
	return nil
}

var _ PDFRenderer = (*WkhtmltopdfRenderer)(nil)
