package storage

import (
	"context"
	"io"
	"time"
)

// Service stores and serves user avatar objects.
type Service interface {
	PutObject(ctx context.Context, bucket, key, contentType string, body io.Reader) error
	PresignGet(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
}
