// Package storage keeps media cover images in S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/config"
	"github.com/janhq/library-api/internal/domain/media"
)

// S3Storage stores cover images in a bucket.
type S3Storage struct {
	bucket        string
	region        string
	endpoint      string
	usePathStyle  bool
	publicBaseURL string
	client        *s3.Client
	log           zerolog.Logger
}

var _ media.CoverStorage = (*S3Storage)(nil)

// Configured reports whether cover storage settings are present.
func Configured(cfg *config.Config) bool {
	return strings.TrimSpace(cfg.S3Bucket) != "" &&
		strings.TrimSpace(cfg.S3AccessKeyID) != "" &&
		strings.TrimSpace(cfg.S3SecretKey) != ""
}

// NewS3Storage creates the S3 client. Callers check Configured first.
func NewS3Storage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*S3Storage, error) {
	storage := newS3Storage(cfg, log)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			strings.TrimSpace(cfg.S3AccessKeyID), strings.TrimSpace(cfg.S3SecretKey), "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	storage.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
		if storage.endpoint != "" {
			o.BaseEndpoint = aws.String(storage.endpoint)
		}
	})

	storage.log.Info().Str("bucket", storage.bucket).Str("endpoint", storage.endpoint).Msg("cover storage initialized")
	return storage, nil
}

func newS3Storage(cfg *config.Config, log zerolog.Logger) *S3Storage {
	return &S3Storage{
		bucket:        strings.TrimSpace(cfg.S3Bucket),
		region:        cfg.S3Region,
		endpoint:      strings.TrimRight(strings.TrimSpace(cfg.S3Endpoint), "/"),
		usePathStyle:  cfg.S3UsePathStyle,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(cfg.S3PublicBaseURL), "/"),
		log:           log.With().Str("component", "s3-storage").Logger(),
	}
}

// Upload writes the object.
func (s *S3Storage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// Delete removes the object. Missing objects are not an error.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the address clients use to fetch the object.
func (s *S3Storage) PublicURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	switch {
	case s.publicBaseURL != "":
		return s.publicBaseURL + "/" + escaped
	case s.endpoint != "" && s.usePathStyle:
		return s.endpoint + "/" + s.bucket + "/" + escaped
	case s.endpoint != "":
		u, err := url.Parse(s.endpoint)
		if err != nil {
			return s.endpoint + "/" + s.bucket + "/" + escaped
		}
		return u.Scheme + "://" + s.bucket + "." + u.Host + "/" + escaped
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
	}
}

// Health checks that the bucket is reachable.
func (s *S3Storage) Health(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}
