package rabbitmq

import (
	"context"
	"fmt"

	"github.com/fiapx/fiapx-video-events/internal/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const transportName = "rabbitmq"

type Config struct {
	URL      string
	Exchange string
	Prefetch int
}

// amqpChannel is the subset of *amqp.Channel used by the publisher and consumer.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type amqpConnection interface {
	Channel() (amqpChannel, error)
	Close() error
}

type dialFunc func(url string) (amqpConnection, error)

type connAdapter struct {
	conn *amqp.Connection
}

func (c *connAdapter) Channel() (amqpChannel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (c *connAdapter) Close() error {
	return c.conn.Close()
}

func dialAMQP(url string) (amqpConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return &connAdapter{conn: conn}, nil
}

// link is a connection plus the channel opened on it. Both belong to exactly one
// publisher or consumer.
type link struct {
	conn amqpConnection
	ch   amqpChannel
}

// openLink dials the broker, opens a channel and declares the durable fanout exchange.
func openLink(dial dialFunc, cfg Config) (*link, error) {
	if cfg.Exchange == "" {
		return nil, fmt.Errorf("%w: exchange name", messaging.ErrMissingConfig)
	}

	conn, err := dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	return &link{conn: conn, ch: ch}, nil
}

// close releases whatever part of the link exists. Close failures are logged and dropped.
func (l *link) close(log *zap.Logger) {
	if l == nil {
		return
	}
	if l.ch != nil {
		if err := l.ch.Close(); err != nil {
			log.Warn("failed to close channel", zap.Error(err))
		}
	}
	if l.conn != nil {
		if err := l.conn.Close(); err != nil {
			log.Warn("failed to close connection", zap.Error(err))
		}
	}
}
