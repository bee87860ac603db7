package broker

import (
	"testing"

	"github.com/fiapx/fiapx-video-events/internal/infra/rabbitmq"
	"github.com/fiapx/fiapx-video-events/internal/infra/sqs"
	"github.com/fiapx/fiapx-video-events/internal/messaging"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"rabbitmq", AdapterRabbitMQ, true},
		{"fanout", AdapterRabbitMQ, true},
		{"fanout-broker", AdapterRabbitMQ, true},
		{"sqs", AdapterSQS, true},
		{"SQS", AdapterSQS, true},
		{"polling-queue", AdapterSQS, true},
		{"kafka", AdapterRabbitMQ, false},
		{"", AdapterRabbitMQ, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.name)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestFactorySelectsTransport(t *testing.T) {
	reg := messaging.NewRegistry(zap.NewNop())

	assert.IsType(t, &rabbitmq.Publisher{}, NewPublisher(Options{Adapter: "fanout"}, zap.NewNop()))
	assert.IsType(t, &rabbitmq.Consumer{}, NewConsumer(Options{Adapter: "rabbitmq"}, reg, zap.NewNop()))
	assert.IsType(t, &sqs.Publisher{}, NewPublisher(Options{Adapter: "sqs"}, zap.NewNop()))
	assert.IsType(t, &sqs.Consumer{}, NewConsumer(Options{Adapter: "polling-queue"}, reg, zap.NewNop()))
}

func TestFactoryFallsBackWithWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	p := NewPublisher(Options{Adapter: "kafka"}, logger)
	c := NewConsumer(Options{Adapter: "kafka"}, messaging.NewRegistry(zap.NewNop()), logger)

	assert.IsType(t, &rabbitmq.Publisher{}, p)
	assert.IsType(t, &rabbitmq.Consumer{}, c)
	assert.Equal(t, messaging.StateUninitialized, c.State())

	entries := logs.FilterMessage("unknown messaging adapter, falling back to rabbitmq").All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "kafka", entries[0].ContextMap()["adapter"])
}
