package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	"github.com/fiapx/fiapx-video-events/internal/infra/metrics"
	"github.com/fiapx/fiapx-video-events/internal/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer receives every message broadcast on the fanout exchange through its own
// exclusive queue.
type Consumer struct {
	cfg        Config
	dispatcher messaging.Dispatcher
	dial       dialFunc
	retry      messaging.RetryPolicy
	logger     *zap.Logger

	mu     sync.Mutex
	link   *link
	state  messaging.State
	cancel context.CancelFunc
	done   chan struct{}
}

func NewConsumer(cfg Config, dispatcher messaging.Dispatcher, logger *zap.Logger) *Consumer {
	return &Consumer{
		cfg:        cfg,
		dispatcher: dispatcher,
		dial:       dialAMQP,
		retry:      messaging.DefaultConnectRetry,
		logger:     logger.With(zap.String("component", "rabbitmq.consumer"), zap.String("exchange", cfg.Exchange)),
		state:      messaging.StateUninitialized,
	}
}

func (c *Consumer) State() messaging.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the broker and declares the exchange, retrying per the connect policy.
// Calling it again drops the current link and listening loop first.
func (c *Consumer) Connect(ctx context.Context) error {
	c.teardown()

	l, attempts, err := c.openWithRetry(ctx)
	if err != nil {
		c.mu.Lock()
		c.state = messaging.StateUninitialized
		c.mu.Unlock()

		c.logger.Error("failed to connect consumer", zap.Int("attempts", attempts), zap.Error(err))
		return &messaging.ConnectionError{Transport: transportName, Attempts: attempts, Err: err}
	}

	c.mu.Lock()
	c.link = l
	c.state = messaging.StateConnected
	c.mu.Unlock()

	c.logger.Info("consumer connected", zap.Int("attempts", attempts))
	return nil
}

func (c *Consumer) openWithRetry(ctx context.Context) (*link, int, error) {
	var l *link
	attempts, err := messaging.Retry(ctx, c.retry, c.logger, func(context.Context) error {
		var err error
		l, err = openLink(c.dial, c.cfg)
		if err != nil {
			metrics.ConnectAttemptsTotal.WithLabelValues(transportName, "failure").Inc()
			return err
		}
		metrics.ConnectAttemptsTotal.WithLabelValues(transportName, "success").Inc()
		return nil
	})
	return l, attempts, err
}

// StartListening binds an exclusive, auto-deleted queue to the exchange and starts
// delivering messages to the dispatcher in the background.
func (c *Consumer) StartListening(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == messaging.StateListening {
		return nil
	}
	if c.state != messaging.StateConnected || c.link == nil {
		return messaging.ErrNotConnected
	}
	if c.cfg.Exchange == "" {
		return fmt.Errorf("%w: exchange name", messaging.ErrMissingConfig)
	}

	ch := c.link.ch
	if c.cfg.Prefetch > 0 {
		if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
			return fmt.Errorf("set qos: %w", err)
		}
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", c.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", q.Name, err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	deliveries, err := ch.ConsumeWithContext(loopCtx, q.Name, "", false, false, false, false, nil)
	if err != nil {
		cancel()
		return fmt.Errorf("consume: %w", err)
	}

	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.state = messaging.StateListening

	go c.run(ctx, loopCtx, deliveries, done)

	c.logger.Info("listening for messages", zap.String("queue", q.Name))
	return nil
}

// run consumes until the loop context is cancelled. A message already handed to the
// dispatcher runs to completion under a context Disconnect does not cancel.
func (c *Consumer) run(parent, ctx context.Context, deliveries <-chan amqp.Delivery, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() == nil {
					c.relink(parent, done)
				}
				return
			}
			if ctx.Err() != nil {
				if err := d.Nack(false, true); err != nil {
					c.logger.Warn("failed to return message on shutdown", zap.Uint64("delivery_tag", d.DeliveryTag), zap.Error(err))
				}
				return
			}
			c.handleDelivery(context.WithoutCancel(ctx), d)
		}
	}
}

// relink replaces a link the broker dropped. The consumer reports DISCONNECTED
// until a new link is listening again.
func (c *Consumer) relink(parent context.Context, done chan struct{}) {
	c.mu.Lock()
	if c.done != done {
		c.mu.Unlock()
		return
	}
	stop, l := c.cancel, c.link
	rctx, cancel := context.WithCancel(parent)
	rdone := make(chan struct{})
	c.link, c.cancel, c.done = nil, cancel, rdone
	c.state = messaging.StateDisconnected
	c.mu.Unlock()

	stop()
	l.close(c.logger)
	c.logger.Warn("delivery channel closed by broker, reconnecting")

	go c.reconnect(parent, rctx, cancel, rdone)
}

func (c *Consumer) reconnect(parent, ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	defer close(done)
	defer cancel()

	l, attempts, err := c.openWithRetry(ctx)
	if err != nil {
		c.logger.Error("failed to reconnect consumer", zap.Int("attempts", attempts), zap.Error(err))
		return
	}

	c.mu.Lock()
	if ctx.Err() != nil || c.done != done {
		c.mu.Unlock()
		l.close(c.logger)
		return
	}
	c.link, c.cancel, c.done = l, nil, nil
	c.state = messaging.StateConnected
	c.mu.Unlock()

	if err := c.StartListening(parent); err != nil {
		c.logger.Error("failed to resume listening", zap.Error(err))
		return
	}
	c.logger.Info("consumer reconnected", zap.Int("attempts", attempts))
}

// handleDelivery acks on success and nacks without requeue on any failure, so a
// failing message is never redelivered by this transport.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	if err := c.dispatcher.Dispatch(ctx, d.Body); err != nil {
		c.logger.Warn("message processing failed, nacking",
			zap.Uint64("delivery_tag", d.DeliveryTag),
			zap.Error(err),
		)
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.Error("failed to nack message", zap.Uint64("delivery_tag", d.DeliveryTag), zap.Error(nackErr))
		}
		return
	}

	if err := d.Ack(false); err != nil {
		c.logger.Error("failed to ack message", zap.Uint64("delivery_tag", d.DeliveryTag), zap.Error(err))
	}
}

// teardown stops taking deliveries and releases the link, waiting for an in-flight
// message to settle first.
func (c *Consumer) teardown() {
	c.mu.Lock()
	cancel, done, l := c.cancel, c.done, c.link
	c.cancel, c.done, c.link = nil, nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	l.close(c.logger)
}

// Disconnect is valid from any state and always succeeds.
func (c *Consumer) Disconnect() {
	c.teardown()

	c.mu.Lock()
	c.state = messaging.StateDisconnected
	c.mu.Unlock()

	c.logger.Info("consumer disconnected")
}
