package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 persists each key as one object in an S3 bucket.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	st := store.NewS3(s3.NewFromConfig(cfg), "my-bucket")
//	sig := filament.NewSignal(rt, Settings{},
//		filament.WithPersistence[Settings](st, "settings"))
type S3 struct {
	client *s3.Client
	bucket string
	prefix string

	mu     sync.Mutex
	closed bool
}

// S3Option configures the S3 store.
type S3Option func(*s3Config)

type s3Config struct {
	prefix string
}

// WithS3Prefix sets the object key prefix. Default: "filament/".
func WithS3Prefix(prefix string) S3Option {
	return func(c *s3Config) { c.prefix = prefix }
}

// NewS3 creates an S3-backed store on an existing client.
func NewS3(client *s3.Client, bucket string, opts ...S3Option) *S3 {
	cfg := &s3Config{prefix: "filament/"}
	for _, opt := range opts {
		opt(cfg)
	}
	return &S3{client: client, bucket: bucket, prefix: cfg.prefix}
}

// objectKey joins the prefix and key. Slashes in keys map onto S3's
// virtual directories unchanged.
func (s *S3) objectKey(key string) string {
	return s.prefix + strings.TrimPrefix(key, "/")
}

// Load returns the value under key.
func (s *S3) Load(ctx context.Context, key string) (string, bool, error) {
	if s.isClosed() {
		return "", false, ErrClosed
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("store: s3 get %q: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", false, fmt.Errorf("store: s3 read %q: %w", key, err)
	}
	return string(data), true, nil
}

// Save stores value under key.
func (s *S3) Save(ctx context.Context, key, value string) error {
	if s.isClosed() {
		return ErrClosed
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   strings.NewReader(value),
	})
	if err != nil {
		return fmt.Errorf("store: s3 put %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *S3) Delete(ctx context.Context, key string) error {
	if s.isClosed() {
		return ErrClosed
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("store: s3 delete %q: %w", key, err)
	}
	return nil
}

// Close marks the store closed. The underlying client is not closed, as
// it may be shared with other components.
func (s *S3) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *S3) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

var _ Store = (*S3)(nil)
