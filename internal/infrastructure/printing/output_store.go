package printing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// WriteFileAtomic writes data to path through a temporary file in the same
// directory followed by a rename, so readers never observe a partial file
// and a failed write leaves nothing behind.
func WriteFileAtomic(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	select {
	case <-ctx.Done():
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", ctx.Err())
	default:
	}
	if len(data) == 0 {
		return NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return NewRenderError(ErrCodeStorageFailed, fmt.Sprintf("failed to create directory: %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return NewRenderError(ErrCodeStorageFailed, "failed to create temp file", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return NewRenderError(ErrCodeStorageFailed, "failed to write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return NewRenderError(ErrCodeStorageFailed, "failed to sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "failed to close temp file", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "failed to set file mode", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "failed to move file into place", err)
	}
	committed = true
	return nil
}

// OutputStoreConfig configures the directory served to HTTP clients
type OutputStoreConfig struct {
	// BasePath is the directory generated reports are written to
	BasePath string
	// RetentionDays removes older reports on Cleanup (0 keeps them forever)
	RetentionDays int
	Logger        *zap.Logger
}

// OutputStore manages generated reports inside a single base directory
type OutputStore struct {
	config *OutputStoreConfig
	logger *zap.Logger
}

// NewOutputStore creates the base directory if needed
func NewOutputStore(config *OutputStoreConfig) (*OutputStore, error) {
	if config == nil {
		config = &OutputStoreConfig{}
	}
	if config.BasePath == "" {
		config.BasePath = "./reports"
	}
	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", config.BasePath), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutputStore{config: config, logger: logger}, nil
}

// BasePath returns the configured directory
func (s *OutputStore) BasePath() string {
	return s.config.BasePath
}

// PathFor returns the absolute location for a file name inside the store
func (s *OutputStore) PathFor(name string) (string, error) {
	return s.resolve(name)
}

// Open opens a stored report for reading
func (s *OutputStore) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	select {
	case <-ctx.Done():
		return nil, 0, NewRenderError(ErrCodeStorageFailed, "operation cancelled", ctx.Err())
	default:
	}

	fullPath, err := s.resolve(name)
	if err != nil {
		return nil, 0, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, NewRenderError(ErrCodeStorageFailed, "report not found", err)
		}
		return nil, 0, NewRenderError(ErrCodeStorageFailed, "failed to open report", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, NewRenderError(ErrCodeStorageFailed, "failed to stat report", err)
	}
	return file, info.Size(), nil
}

// Cleanup removes reports older than the retention period
func (s *OutputStore) Cleanup(ctx context.Context, now time.Time) (int, error) {
	if s.config.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := now.AddDate(0, 0, -s.config.RetentionDays)
	deleted := 0

	entries, err := os.ReadDir(s.config.BasePath)
	if err != nil {
		return 0, NewRenderError(ErrCodeStorageFailed, "failed to list reports", err)
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pdf" {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.config.BasePath, entry.Name())); err == nil {
			deleted++
		}
	}

	s.logger.Info("report cleanup completed",
		zap.Int("deleted", deleted),
		zap.Int("retention_days", s.config.RetentionDays))
	return deleted, nil
}

// resolve maps a plain file name to a path under BasePath, rejecting
// anything that could escape it. Only visible .pdf files are addressable;
// dot-prefixed names are the temp files of in-progress writes.
func (s *OutputStore) resolve(name string) (string, error) {
	clean := filepath.Clean(name)
	if name == "" || filepath.IsAbs(clean) || containsDotDot(name) || strings.ContainsAny(name, `/\`) ||
		strings.HasPrefix(name, ".") || filepath.Ext(name) != ".pdf" {
		s.logger.Warn("blocked report path", zap.String("name", name))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid report name", nil)
	}

	absBase, err := filepath.Abs(s.config.BasePath)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve base path", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.config.BasePath, clean))
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve file path", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		s.logger.Warn("path escape attempt blocked",
			zap.String("name", name),
			zap.String("absPath", absPath))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid report name", nil)
	}
	return absPath, nil
}

// containsDotDot checks the raw path for ".." components
func containsDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	return slices.Contains(parts, "..")
}
