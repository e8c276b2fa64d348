package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStoreConfig holds S3-compatible object store settings. Works against
// Cloudflare R2, AWS S3 and MinIO alike.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Publisher uploads the aggregated timetable document to an object store.
type Publisher struct {
	client *minio.Client
	bucket string
}

// NewPublisher creates a publisher for the configured bucket.
func NewPublisher(cfg ObjectStoreConfig) (*Publisher, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("object store client: %w", err)
	}
	return &Publisher{client: client, bucket: cfg.Bucket}, nil
}

// Publish overwrites the document under key. The object is marked
// non-cacheable: consumers poll the same key and must always see the latest
// sync.
func (p *Publisher) Publish(ctx context.Context, key string, body []byte) error {
	_, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{
			ContentType:  "application/json; charset=utf-8",
			CacheControl: "no-cache, no-store, must-revalidate",
		})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}
