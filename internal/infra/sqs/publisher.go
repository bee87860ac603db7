package sqs

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/fiapx/fiapx-video-events/internal/domain/entity"
	"github.com/fiapx/fiapx-video-events/internal/infra/metrics"
	"github.com/fiapx/fiapx-video-events/internal/messaging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Route sends every event type starting with Prefix to QueueURL.
type Route struct {
	Prefix   string
	QueueURL string
}

// DefaultRoutes maps upload events to the uploads queue and processing results to the
// processed queue.
func DefaultRoutes(uploadsQueueURL, processedQueueURL string) []Route {
	return []Route{
		{Prefix: entity.EventVideoProcessed, QueueURL: processedQueueURL},
		{Prefix: entity.EventVideoUploaded, QueueURL: uploadsQueueURL},
	}
}

type Publisher struct {
	cfg       ClientConfig
	routes    []Route
	newClient clientFactory
	logger    *zap.Logger

	mu     sync.RWMutex
	client API
}

func NewPublisher(cfg ClientConfig, routes []Route, logger *zap.Logger) *Publisher {
	return &Publisher{
		cfg:       cfg,
		routes:    routes,
		newClient: NewClient,
		logger:    logger.With(zap.String("component", "sqs.publisher")),
	}
}

// Connect only builds the client; SQS has no persistent link to open.
func (p *Publisher) Connect(ctx context.Context) error {
	client, err := p.newClient(ctx, p.cfg)
	if err != nil {
		metrics.ConnectAttemptsTotal.WithLabelValues(transportName, "failure").Inc()
		p.logger.Error("failed to create sqs client", zap.Error(err))
		return &messaging.ConnectionError{Transport: transportName, Attempts: 1, Err: err}
	}
	metrics.ConnectAttemptsTotal.WithLabelValues(transportName, "success").Inc()

	p.mu.Lock()
	p.client = client
	p.mu.Unlock()

	p.logger.Info("publisher connected")
	return nil
}

func (p *Publisher) queueFor(eventType string) (string, error) {
	for _, r := range p.routes {
		if strings.HasPrefix(eventType, r.Prefix) {
			if r.QueueURL == "" {
				return "", fmt.Errorf("%w: queue url for %s events", messaging.ErrMissingConfig, r.Prefix)
			}
			return r.QueueURL, nil
		}
	}
	return "", fmt.Errorf("%w: %q", messaging.ErrUnknownEventType, eventType)
}

func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) error {
	p.mu.RLock()
	client := p.client
	p.mu.RUnlock()
	if client == nil {
		return messaging.ErrNotConnected
	}

	queueURL, err := p.queueFor(eventType)
	if err != nil {
		p.logger.Error("no destination for event", zap.String("event_type", eventType), zap.Error(err))
		return err
	}

	env, err := messaging.NewEnvelope(eventType, payload)
	if err != nil {
		return err
	}
	body, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	videoID := env.VideoID()
	if videoID == "" {
		videoID = "unknown"
	}

	ctx, span := otel.Tracer("sqs").Start(ctx, "sqs.publish", trace.WithSpanKind(trace.SpanKindProducer))
	span.SetAttributes(
		attribute.String("messaging.system", transportName),
		attribute.String("messaging.destination", queueURL),
		attribute.String("messaging.event_type", eventType),
	)
	defer span.End()

	_, err = client.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(eventType)},
			"videoId":   {DataType: aws.String("String"), StringValue: aws.String(videoID)},
		},
	})
	if err != nil {
		span.RecordError(err)
		metrics.MessagesPublishedTotal.WithLabelValues(transportName, eventType, "failure").Inc()
		p.logger.Error("failed to publish message",
			zap.String("event_type", eventType),
			zap.String("video_id", videoID),
			zap.Error(err),
		)
		return fmt.Errorf("send %s: %w", eventType, err)
	}

	metrics.MessagesPublishedTotal.WithLabelValues(transportName, eventType, "success").Inc()
	p.logger.Info("message published",
		zap.String("event_type", eventType),
		zap.String("video_id", videoID),
		zap.String("queue_url", queueURL),
	)
	return nil
}

// Disconnect drops the client. It never fails.
func (p *Publisher) Disconnect() {
	p.mu.Lock()
	p.client = nil
	p.mu.Unlock()
	p.logger.Info("publisher disconnected")
}
