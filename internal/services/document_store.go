package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const pdfContentType = "application/pdf"

// DocumentStore persists invoice PDFs and returns their public URLs.
type DocumentStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL maps a URL produced by Put back to its object key.
	KeyFromURL(url string) (string, bool)
	EnsureBucket(ctx context.Context) error
}

type MinioOptions struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

type minioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewMinioStore(opts MinioOptions) (DocumentStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &minioStore{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: strings.TrimRight(opts.PublicBaseURL, "/"),
	}, nil
}

func (m *minioStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: pdfContentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return m.baseURL + "/" + key, nil
}

func (m *minioStore) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

func (m *minioStore) KeyFromURL(url string) (string, bool) {
	return keyFromURL(m.baseURL, url)
}

func (m *minioStore) EnsureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func keyFromURL(baseURL, url string) (string, bool) {
	prefix := baseURL + "/"
	if url == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}
