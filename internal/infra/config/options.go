package config

import (
	"github.com/fiapx/fiapx-video-events/internal/infra/awsclient"
	"github.com/fiapx/fiapx-video-events/internal/infra/broker"
	"github.com/fiapx/fiapx-video-events/internal/infra/minio"
	"github.com/fiapx/fiapx-video-events/internal/infra/rabbitmq"
	"github.com/fiapx/fiapx-video-events/internal/infra/s3"
	"github.com/fiapx/fiapx-video-events/internal/infra/sqs"
	"github.com/fiapx/fiapx-video-events/internal/infra/storage"
)

func (c *Config) aws(endpoint string) awsclient.Config {
	return awsclient.Config{
		Region:          c.AWSRegion,
		Endpoint:        endpoint,
		AccessKeyID:     c.AWSAccessKeyID,
		SecretAccessKey: c.AWSSecretAccessKey,
	}
}

// BrokerOptions configures both transports; listenQueueURL is the SQS queue this
// process consumes from and is ignored by rabbitmq.
func (c *Config) BrokerOptions(listenQueueURL string) broker.Options {
	return broker.Options{
		Adapter: c.MessagingAdapter,
		RabbitMQ: rabbitmq.Config{
			URL:      c.RabbitMQURL,
			Exchange: c.RabbitMQExchange,
			Prefetch: c.RabbitMQPrefetch,
		},
		SQS:         c.aws(c.SQSEndpoint),
		SQSRoutes:   sqs.DefaultRoutes(c.SQSUploadsQueueURL, c.SQSProcessedQueueURL),
		SQSQueueURL: listenQueueURL,
	}
}

func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Adapter: c.StorageAdapter,
		MinIO: minio.StorageConfig{
			Endpoint:  c.MinIOEndpoint,
			AccessKey: c.MinIOAccessKey,
			SecretKey: c.MinIOSecretKey,
			UseSSL:    c.MinIOUseSSL,
			Bucket:    c.MinIOBucket,
		},
		S3: s3.StorageConfig{
			AWS:    c.aws(c.S3Endpoint),
			Bucket: c.S3Bucket,
		},
	}
}
