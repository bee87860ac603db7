package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const codeNoSuchBucket = "NoSuchBucket"

type objectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts miniogo.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts miniogo.PutObjectOptions) (miniogo.UploadInfo, error)
	FPutObject(ctx context.Context, bucket, key, filePath string, opts miniogo.PutObjectOptions) (miniogo.UploadInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts miniogo.GetObjectOptions) (*miniogo.Object, error)
	FGetObject(ctx context.Context, bucket, key, filePath string, opts miniogo.GetObjectOptions) error
}

// Storage keeps every object in a single bucket.
type Storage struct {
	client objectAPI
	bucket string
	logger *zap.Logger
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

func NewStorage(cfg StorageConfig, logger *zap.Logger) (*Storage, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Storage{
		client: client,
		bucket: cfg.Bucket,
		logger: logger.With(zap.String("component", "minio.storage"), zap.String("bucket", cfg.Bucket)),
	}, nil
}

func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
		s.logger.Info("bucket created")
	}
	return nil
}

// withBucket runs put once more after creating the bucket if the first attempt failed
// because the bucket does not exist yet.
func (s *Storage) withBucket(ctx context.Context, key string, put func() error) error {
	err := put()
	if err == nil || miniogo.ToErrorResponse(err).Code != codeNoSuchBucket {
		return err
	}

	s.logger.Warn("bucket missing on upload, creating it", zap.String("key", key))
	if err := s.EnsureBucket(ctx); err != nil {
		return err
	}
	return put()
}

func (s *Storage) UploadFile(ctx context.Context, key string, data []byte, contentType string) error {
	err := s.withBucket(ctx, key, func() error {
		_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), miniogo.PutObjectOptions{
			ContentType: contentType,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (s *Storage) UploadFileFromPath(ctx context.Context, key, path, contentType string) error {
	err := s.withBucket(ctx, key, func() error {
		_, err := s.client.FPutObject(ctx, s.bucket, key, path, miniogo.PutObjectOptions{
			ContentType: contentType,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("upload %s from %s: %w", key, path, err)
	}
	return nil
}

func (s *Storage) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *Storage) DownloadFileToPath(ctx context.Context, key, targetPath string) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", targetPath, err)
	}
	if err := s.client.FGetObject(ctx, s.bucket, key, targetPath, miniogo.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download %s: %w", key, err)
	}
	return nil
}
