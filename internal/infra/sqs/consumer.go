package sqs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/fiapx/fiapx-video-events/internal/infra/metrics"
	"github.com/fiapx/fiapx-video-events/internal/messaging"
	"go.uber.org/zap"
)

const (
	defaultPollInterval = time.Second
	defaultMaxMessages  = 10
	defaultWaitSeconds  = 20
)

type ConsumerConfig struct {
	QueueURL     string
	PollInterval time.Duration
	MaxMessages  int32
	WaitSeconds  int32
}

func (c ConsumerConfig) withDefaults() ConsumerConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.MaxMessages <= 0 {
		c.MaxMessages = defaultMaxMessages
	}
	if c.WaitSeconds <= 0 {
		c.WaitSeconds = defaultWaitSeconds
	}
	return c
}

// Consumer long-polls one queue and dispatches each received batch concurrently.
// Failed messages are left in the queue so its visibility timeout and redrive policy apply.
type Consumer struct {
	clientCfg  ClientConfig
	cfg        ConsumerConfig
	dispatcher messaging.Dispatcher
	newClient  clientFactory
	retry      messaging.RetryPolicy
	logger     *zap.Logger

	mu     sync.Mutex
	client API
	state  messaging.State
	cancel context.CancelFunc
	done   chan struct{}
}

func NewConsumer(clientCfg ClientConfig, cfg ConsumerConfig, dispatcher messaging.Dispatcher, logger *zap.Logger) *Consumer {
	return &Consumer{
		clientCfg:  clientCfg,
		cfg:        cfg.withDefaults(),
		dispatcher: dispatcher,
		newClient:  NewClient,
		retry:      messaging.DefaultConnectRetry,
		logger:     logger.With(zap.String("component", "sqs.consumer"), zap.String("queue_url", cfg.QueueURL)),
		state:      messaging.StateUninitialized,
	}
}

func (c *Consumer) State() messaging.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Consumer) Connect(ctx context.Context) error {
	c.teardown()

	var client API
	attempts, err := messaging.Retry(ctx, c.retry, c.logger, func(ctx context.Context) error {
		var err error
		client, err = c.newClient(ctx, c.clientCfg)
		if err != nil {
			metrics.ConnectAttemptsTotal.WithLabelValues(transportName, "failure").Inc()
			return err
		}
		metrics.ConnectAttemptsTotal.WithLabelValues(transportName, "success").Inc()
		return nil
	})
	if err != nil {
		c.mu.Lock()
		c.state = messaging.StateUninitialized
		c.mu.Unlock()

		c.logger.Error("failed to connect consumer", zap.Int("attempts", attempts), zap.Error(err))
		return &messaging.ConnectionError{Transport: transportName, Attempts: attempts, Err: err}
	}

	c.mu.Lock()
	c.client = client
	c.state = messaging.StateConnected
	c.mu.Unlock()

	c.logger.Info("consumer connected", zap.Int("attempts", attempts))
	return nil
}

func (c *Consumer) StartListening(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == messaging.StateListening {
		return nil
	}
	if c.state != messaging.StateConnected || c.client == nil {
		return messaging.ErrNotConnected
	}
	if c.cfg.QueueURL == "" {
		return fmt.Errorf("%w: queue url", messaging.ErrMissingConfig)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.state = messaging.StateListening

	go c.poll(loopCtx, c.client, done)

	c.logger.Info("listening for messages",
		zap.Duration("interval", c.cfg.PollInterval),
		zap.Int32("max_messages", c.cfg.MaxMessages),
	)
	return nil
}

func (c *Consumer) poll(ctx context.Context, client API, done chan struct{}) {
	defer close(done)
	for {
		c.pollOnce(ctx, client)

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

// pollOnce receives one batch and waits for every message of it to settle. A failing
// message never affects the others. Only the receive call is cut short by Disconnect;
// a received batch always runs to completion.
func (c *Consumer) pollOnce(ctx context.Context, client API) {
	out, err := client.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.cfg.QueueURL),
		MaxNumberOfMessages:   c.cfg.MaxMessages,
		WaitTimeSeconds:       c.cfg.WaitSeconds,
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error("failed to receive messages", zap.Error(err))
		}
		return
	}
	if len(out.Messages) == 0 {
		return
	}

	c.logger.Debug("received messages", zap.Int("count", len(out.Messages)))

	settle := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	for _, m := range out.Messages {
		wg.Add(1)
		go func(m types.Message) {
			defer wg.Done()
			c.processMessage(settle, client, m)
		}(m)
	}
	wg.Wait()
}

func (c *Consumer) processMessage(ctx context.Context, client API, m types.Message) {
	if m.Body == nil || m.ReceiptHandle == nil {
		c.logger.Warn("skipping message without body or receipt handle", zap.String("message_id", aws.ToString(m.MessageId)))
		return
	}

	log := c.logger.With(zap.String("message_id", aws.ToString(m.MessageId)))

	if err := c.dispatcher.Dispatch(ctx, []byte(*m.Body)); err != nil {
		log.Warn("message processing failed, leaving it for redelivery", zap.Error(err))
		return
	}

	_, err := client.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.cfg.QueueURL),
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		log.Error("failed to delete message", zap.Error(err))
	}
}

func (c *Consumer) teardown() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done, c.client = nil, nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Disconnect stops the poll loop and drops the client. It is valid from any state.
func (c *Consumer) Disconnect() {
	c.teardown()

	c.mu.Lock()
	c.state = messaging.StateDisconnected
	c.mu.Unlock()

	c.logger.Info("consumer disconnected")
}
