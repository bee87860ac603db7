package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/fiapx/fiapx-video-events/internal/domain/port"
	"github.com/fiapx/fiapx-video-events/internal/infra/minio"
	"github.com/fiapx/fiapx-video-events/internal/infra/s3"
	"go.uber.org/zap"
)

const (
	AdapterMinIO = "minio"
	AdapterS3    = "s3"
)

type Options struct {
	Adapter string
	MinIO   minio.StorageConfig
	S3      s3.StorageConfig
}

// New builds the selected FileStorage. Unlike the messaging factory there is no fallback:
// an unknown adapter is an error.
func New(ctx context.Context, opts Options, logger *zap.Logger) (port.FileStorage, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Adapter)) {
	case AdapterMinIO:
		st, err := minio.NewStorage(opts.MinIO, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	case AdapterS3:
		st, err := s3.NewStorage(ctx, opts.S3, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage adapter %q", opts.Adapter)
	}
}
