package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fiapx/fiapx-video-events/internal/infra/metrics"
	"github.com/fiapx/fiapx-video-events/internal/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Publisher broadcasts envelopes on a durable fanout exchange.
type Publisher struct {
	cfg    Config
	dial   dialFunc
	logger *zap.Logger

	mu   sync.RWMutex
	link *link
}

func NewPublisher(cfg Config, logger *zap.Logger) *Publisher {
	return &Publisher{
		cfg:    cfg,
		dial:   dialAMQP,
		logger: logger.With(zap.String("component", "rabbitmq.publisher"), zap.String("exchange", cfg.Exchange)),
	}
}

// Connect (re)establishes the link. A failed call leaves the publisher unusable.
func (p *Publisher) Connect(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.link != nil {
		p.link.close(p.logger)
		p.link = nil
	}

	l, err := openLink(p.dial, p.cfg)
	if err != nil {
		metrics.ConnectAttemptsTotal.WithLabelValues(transportName, "failure").Inc()
		p.logger.Error("failed to connect publisher", zap.Error(err))
		return &messaging.ConnectionError{Transport: transportName, Attempts: 1, Err: err}
	}
	metrics.ConnectAttemptsTotal.WithLabelValues(transportName, "success").Inc()

	p.link = l
	p.logger.Info("publisher connected")
	return nil
}

func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) error {
	p.mu.RLock()
	l := p.link
	p.mu.RUnlock()
	if l == nil {
		return messaging.ErrNotConnected
	}

	env, err := messaging.NewEnvelope(eventType, payload)
	if err != nil {
		return err
	}
	body, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	ctx, span := otel.Tracer("rabbitmq").Start(ctx, "rabbitmq.publish", trace.WithSpanKind(trace.SpanKindProducer))
	span.SetAttributes(
		attribute.String("messaging.system", transportName),
		attribute.String("messaging.destination", p.cfg.Exchange),
		attribute.String("messaging.event_type", eventType),
	)
	defer span.End()

	err = l.ch.PublishWithContext(ctx,
		p.cfg.Exchange,
		"",
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Type:         eventType,
			Body:         body,
		},
	)
	if err != nil {
		span.RecordError(err)
		metrics.MessagesPublishedTotal.WithLabelValues(transportName, eventType, "failure").Inc()
		p.logger.Error("failed to publish message",
			zap.String("event_type", eventType),
			zap.String("video_id", env.VideoID()),
			zap.Error(err),
		)
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	metrics.MessagesPublishedTotal.WithLabelValues(transportName, eventType, "success").Inc()
	p.logger.Info("message published",
		zap.String("event_type", eventType),
		zap.String("video_id", env.VideoID()),
	)
	return nil
}

// Disconnect releases the channel and connection. It never fails.
func (p *Publisher) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.link.close(p.logger)
	p.link = nil
	p.logger.Info("publisher disconnected")
}
