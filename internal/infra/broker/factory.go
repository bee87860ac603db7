package broker

import (
	"strings"

	"github.com/fiapx/fiapx-video-events/internal/domain/port"
	"github.com/fiapx/fiapx-video-events/internal/infra/rabbitmq"
	"github.com/fiapx/fiapx-video-events/internal/infra/sqs"
	"github.com/fiapx/fiapx-video-events/internal/messaging"
	"go.uber.org/zap"
)

const (
	AdapterRabbitMQ = "rabbitmq"
	AdapterSQS      = "sqs"
)

var aliases = map[string]string{
	AdapterRabbitMQ: AdapterRabbitMQ,
	"fanout":        AdapterRabbitMQ,
	"fanout-broker": AdapterRabbitMQ,
	AdapterSQS:      AdapterSQS,
	"polling-queue": AdapterSQS,
}

type Options struct {
	Adapter  string
	RabbitMQ rabbitmq.Config
	SQS      sqs.ClientConfig

	// SQSRoutes maps event types to destination queues for publishing.
	SQSRoutes []sqs.Route
	// SQSQueueURL is the queue the consumer polls.
	SQSQueueURL string
}

// Resolve maps an adapter name or alias to its canonical name. Unknown names resolve
// to rabbitmq with ok=false.
func Resolve(name string) (adapter string, ok bool) {
	adapter, ok = aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return AdapterRabbitMQ, false
	}
	return adapter, true
}

func resolve(name string, logger *zap.Logger) string {
	adapter, ok := Resolve(name)
	if !ok {
		logger.Warn("unknown messaging adapter, falling back to rabbitmq",
			zap.String("adapter", name),
		)
	}
	return adapter
}

func NewPublisher(opts Options, logger *zap.Logger) port.MessagePublisher {
	if resolve(opts.Adapter, logger) == AdapterSQS {
		return sqs.NewPublisher(opts.SQS, opts.SQSRoutes, logger)
	}
	return rabbitmq.NewPublisher(opts.RabbitMQ, logger)
}

func NewConsumer(opts Options, dispatcher messaging.Dispatcher, logger *zap.Logger) port.MessageConsumer {
	if resolve(opts.Adapter, logger) == AdapterSQS {
		return sqs.NewConsumer(opts.SQS, sqs.ConsumerConfig{QueueURL: opts.SQSQueueURL}, dispatcher, logger)
	}
	return rabbitmq.NewConsumer(opts.RabbitMQ, dispatcher, logger)
}
