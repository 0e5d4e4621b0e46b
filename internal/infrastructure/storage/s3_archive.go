// Package storage archives generated report files in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gym/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	pdfContentType        = "application/pdf"
	defaultPresignExpiry  = 15 * time.Minute
	defaultRegion         = "eu-central-1"
	metadataRequesterKey  = "requester"
	metadataReportTypeKey = "report-type"
)

// ArchivedReport locates an uploaded report
type ArchivedReport struct {
	Bucket      string
	Key         string
	DownloadURL string
	ExpiresAt   time.Time
}

// ArchiveInput describes a report file to upload
type ArchiveInput struct {
	LocalPath  string
	ReportType string
	Requester  string
	// GeneratedAt places the object under a yyyy/mm/ key prefix
	GeneratedAt time.Time
}

// S3ReportArchive uploads report PDFs and hands out presigned download links.
// It works with AWS S3, MinIO and other S3-compatible stores.
type S3ReportArchive struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	prefix        string
	presignExpiry time.Duration
	logger        *zap.Logger
}

// Option configures an S3ReportArchive
type Option func(*S3ReportArchive)

// WithLogger sets the archive logger
func WithLogger(logger *zap.Logger) Option {
	return func(a *S3ReportArchive) {
		a.logger = logger
	}
}

// NewS3ReportArchive builds an archive from configuration. Static credentials are
// used when both keys are set, otherwise the default AWS credential chain.
func NewS3ReportArchive(ctx context.Context, cfg *config.StorageConfig, opts ...Option) (*S3ReportArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return nil, errors.New("storage access key id and secret access key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	a := &S3ReportArchive{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		prefix:        normalizePrefix(cfg.Prefix),
		presignExpiry: cfg.PresignExpiry,
		logger:        zap.NewNop(),
	}
	if a.presignExpiry <= 0 {
		a.presignExpiry = defaultPresignExpiry
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// ObjectKey returns the key a report file is stored under
func (a *S3ReportArchive) ObjectKey(in ArchiveInput) string {
	at := in.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}
	return a.prefix + path.Join(at.Format("2006/01"), filepath.Base(in.LocalPath))
}

// EnsureBucket creates the bucket when it does not exist yet
func (a *S3ReportArchive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	a.logger.Info("Creating report bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive uploads the file at in.LocalPath and returns a presigned download link
func (a *S3ReportArchive) Archive(ctx context.Context, in ArchiveInput) (*ArchivedReport, error) {
	if in.LocalPath == "" {
		return nil, errors.New("report path is required")
	}
	f, err := os.Open(in.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	key := a.ObjectKey(in)
	metadata := map[string]string{}
	if in.ReportType != "" {
		metadata[metadataReportTypeKey] = in.ReportType
	}
	if in.Requester != "" {
		metadata[metadataRequesterKey] = in.Requester
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(pdfContentType),
		Metadata:    metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}

	url, expiresAt, err := a.DownloadURL(ctx, key)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Report archived",
		zap.String("bucket", a.bucket),
		zap.String("key", key),
	)
	return &ArchivedReport{Bucket: a.bucket, Key: key, DownloadURL: url, ExpiresAt: expiresAt}, nil
}

// DownloadURL presigns a GET for key. Presigning is local and makes no request.
func (a *S3ReportArchive) DownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("object key is required")
	}
	req, err := a.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(a.presignExpiry))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, time.Now().Add(a.presignExpiry), nil
}

// Bucket returns the bucket name
func (a *S3ReportArchive) Bucket() string {
	return a.bucket
}
