package port

import (
	"context"

	"github.com/fiapx/fiapx-video-events/internal/messaging"
)

// MessagePublisher sends event envelopes to the configured transport.
type MessagePublisher interface {
	Connect(ctx context.Context) error
	Publish(ctx context.Context, eventType string, payload any) error
	Disconnect()
}

// MessageConsumer receives event envelopes and hands them to a dispatcher.
type MessageConsumer interface {
	Connect(ctx context.Context) error
	StartListening(ctx context.Context) error
	Disconnect()
	State() messaging.State
}
