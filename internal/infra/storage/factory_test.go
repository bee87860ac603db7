package storage

import (
	"context"
	"testing"

	"github.com/fiapx/fiapx-video-events/internal/infra/awsclient"
	"github.com/fiapx/fiapx-video-events/internal/infra/minio"
	"github.com/fiapx/fiapx-video-events/internal/infra/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSelectsAdapter(t *testing.T) {
	ctx := context.Background()

	st, err := New(ctx, Options{
		Adapter: "minio",
		MinIO:   minio.StorageConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "videos"},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &minio.Storage{}, st)

	st, err = New(ctx, Options{
		Adapter: "S3",
		S3: s3.StorageConfig{
			AWS:    awsclient.Config{Region: "us-east-1", AccessKeyID: "a", SecretAccessKey: "b"},
			Bucket: "videos",
		},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &s3.Storage{}, st)
}

func TestNewRejectsUnknownAdapter(t *testing.T) {
	_, err := New(context.Background(), Options{Adapter: "gcs"}, zap.NewNop())
	assert.ErrorContains(t, err, `unknown storage adapter "gcs"`)
}
