// Package s3 stores uploaded photos in an S3 bucket
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/pastaboard/pastaboard/internal/infrastructure/config"
	"github.com/pastaboard/pastaboard/internal/ports/outbound"
	"github.com/pastaboard/pastaboard/pkg/filename"
)

// ImageStorage implements outbound.ImageStorage on an S3 bucket.
// Objects live under prefix and are named by the sanitized filename.
type ImageStorage struct {
	client  s3iface.S3API
	bucket  string
	prefix  string
	baseURL string
	logger  *zap.Logger
}

// NewClient creates an S3 client from storage configuration. A custom
// endpoint switches to path-style addressing for S3-compatible servers.
func NewClient(cfg config.StorageConfig) (s3iface.S3API, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.S3Region),
	}
	if cfg.S3Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.S3Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return awss3.New(sess), nil
}

// NewImageStorage wraps client for bucket. When publicBaseURL is empty
// the virtual-hosted bucket URL is used.
func NewImageStorage(client s3iface.S3API, cfg config.StorageConfig, logger *zap.Logger) (*ImageStorage, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("s3 storage: bucket is required")
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}

	prefix := strings.Trim(cfg.S3Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &ImageStorage{
		client:  client,
		bucket:  cfg.S3Bucket,
		prefix:  prefix,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.Named("s3-storage"),
	}, nil
}

var _ outbound.ImageStorage = (*ImageStorage)(nil)

// Save uploads r as prefix+name, replacing any existing object
func (s *ImageStorage) Save(ctx context.Context, name string, r io.Reader) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("s3 storage: invalid image name %q", name)
	}

	body, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("s3 storage: read image: %w", err)
		}
		body = bytes.NewReader(data)
	}

	input := &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + name),
		Body:   body,
	}
	contentType, err := detectContentType(name, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		return fmt.Errorf("s3 storage: put %s: %w", name, err)
	}

	s.logger.Debug("image uploaded", zap.String("bucket", s.bucket), zap.String("key", s.prefix+name))
	return nil
}

// detectContentType prefers the extension and falls back to sniffing the
// body, which is rewound afterwards
func detectContentType(name string, body io.ReadSeeker) (string, error) {
	if contentType := mime.TypeByExtension(strings.ToLower(path.Ext(name))); contentType != "" {
		return contentType, nil
	}

	detected, err := mimetype.DetectReader(body)
	if _, seekErr := body.Seek(0, io.SeekStart); seekErr != nil {
		return "", fmt.Errorf("s3 storage: rewind image: %w", seekErr)
	}
	if err != nil {
		return "", nil
	}
	return detected.String(), nil
}

// List returns image object names directly under prefix, sorted
func (s *ImageStorage) List(ctx context.Context) ([]string, error) {
	input := &awss3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(s.prefix),
		Delimiter: aws.String("/"),
	}

	var names []string
	err := s.client.ListObjectsV2PagesWithContext(ctx, input, func(page *awss3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.StringValue(obj.Key), s.prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			if filename.IsImage(name) {
				names = append(names, name)
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("s3 storage: list %s: %w", s.bucket, err)
	}

	sort.Strings(names)
	return names, nil
}

// URL returns the public address of the object
func (s *ImageStorage) URL(name string) string {
	return s.baseURL + "/" + s.prefix + url.PathEscape(name)
}

// Ping checks the bucket is reachable
func (s *ImageStorage) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucketWithContext(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 storage: head bucket %s: %w", s.bucket, err)
	}
	return nil
}
