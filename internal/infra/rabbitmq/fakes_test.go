package rabbitmq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type declaredExchange struct {
	name       string
	kind       string
	durable    bool
	autoDelete bool
}

type declaredQueue struct {
	name       string
	durable    bool
	autoDelete bool
	exclusive  bool
}

type binding struct {
	queue    string
	key      string
	exchange string
}

type publishedMsg struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu sync.Mutex

	exchangeErr error
	consumeErr  error
	publishErr  error
	closeErr    error

	exchanges  []declaredExchange
	queues     []declaredQueue
	binds      []binding
	prefetch   int
	published  []publishedMsg
	deliveries chan amqp.Delivery
	closed     bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{deliveries: make(chan amqp.Delivery, 8)}
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, _, _ bool, _ amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanges = append(f.exchanges, declaredExchange{name: name, kind: kind, durable: durable, autoDelete: autoDelete})
	return f.exchangeErr
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, _ bool, _ amqp.Table) (amqp.Queue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queues = append(f.queues, declaredQueue{name: name, durable: durable, autoDelete: autoDelete, exclusive: exclusive})
	return amqp.Queue{Name: "amq.gen-test"}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.binds = append(f.binds, binding{queue: name, key: key, exchange: exchange})
	return nil
}

func (f *fakeChannel) Qos(prefetchCount, _ int, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefetch = prefetchCount
	return nil
}

func (f *fakeChannel) ConsumeWithContext(_ context.Context, _, _ string, _, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	return f.deliveries, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, publishedMsg{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.closeErr
}

func (f *fakeChannel) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeConnection struct {
	mu         sync.Mutex
	channel    *fakeChannel
	channelErr error
	closeErr   error
	closed     bool
}

func (f *fakeConnection) Channel() (amqpChannel, error) {
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	return f.channel, nil
}

func (f *fakeConnection) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.closeErr
}

func (f *fakeConnection) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeDialer struct {
	mu    sync.Mutex
	calls int
	urls  []string
	err   error
	conn  *fakeConnection
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{conn: &fakeConnection{channel: newFakeChannel()}}
}

func (d *fakeDialer) dial(url string) (amqpConnection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.urls = append(d.urls, url)
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

func (d *fakeDialer) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type ackResult struct {
	tag     uint64
	ack     bool
	requeue bool
}

// fakeAcknowledger stands in for the channel a delivery arrived on.
type fakeAcknowledger struct {
	results chan ackResult
}

func newFakeAcknowledger() *fakeAcknowledger {
	return &fakeAcknowledger{results: make(chan ackResult, 8)}
}

func (a *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	a.results <- ackResult{tag: tag, ack: true}
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	a.results <- ackResult{tag: tag, requeue: requeue}
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	a.results <- ackResult{tag: tag, requeue: requeue}
	return nil
}
