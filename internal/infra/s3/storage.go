package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fiapx/fiapx-video-events/internal/infra/awsclient"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type objectAPI interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

type StorageConfig struct {
	AWS    awsclient.Config
	Bucket string
}

type Storage struct {
	client objectAPI
	bucket string
	logger *zap.Logger
}

// NewStorage builds an S3-backed storage. A custom endpoint switches to path-style
// addressing so local S3 emulators work.
func NewStorage(ctx context.Context, cfg StorageConfig, logger *zap.Logger) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	awsCfg, err := awsclient.Load(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.BaseEndpoint = cfg.AWS.BaseEndpoint()
		o.UsePathStyle = cfg.AWS.Endpoint != ""
	})

	return &Storage{
		client: client,
		bucket: cfg.Bucket,
		logger: logger.With(zap.String("component", "s3.storage"), zap.String("bucket", cfg.Bucket)),
	}, nil
}

func (s *Storage) put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	s.logger.Debug("object uploaded", zap.String("key", key), zap.Int64("size", size))
	return nil
}

func (s *Storage) UploadFile(ctx context.Context, key string, data []byte, contentType string) error {
	return s.put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
}

func (s *Storage) UploadFileFromPath(ctx context.Context, key, path, contentType string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return s.put(ctx, key, f, info.Size(), contentType)
}

func (s *Storage) get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return out.Body, nil
}

func (s *Storage) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	body, err := s.get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// createTarget opens the local file a download is written to.
var createTarget = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// DownloadFileToPath streams the object to targetPath. A failed close is reported,
// since the file may be truncated.
func (s *Storage) DownloadFileToPath(ctx context.Context, key, targetPath string) (err error) {
	body, err := s.get(ctx, key)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", targetPath, err)
	}
	f, err := createTarget(targetPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", targetPath, err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	if _, err := io.Copy(f, body); err != nil {
		return fmt.Errorf("write %s: %w", targetPath, err)
	}
	return nil
}
