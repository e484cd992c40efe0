// Package kafkabroker maps the exchange/queue model onto Kafka: the exchange is the
// topic, the queue is the consumer group, and the routing key travels in a header.
package kafkabroker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"pagesync/internal/infrastructure/broker"
)

const (
	HeaderRoutingKey = "routing-key"
	HeaderMessageID  = "message-id"
)

type Config struct {
	Brokers     []string
	StartOffset int64
	// MaxRetries bounds in-process retries of a failing delivery before it is dropped.
	MaxRetries   uint64
	RetryBackoff time.Duration
	DialTimeout  time.Duration
	// HandlerTimeout bounds each handler attempt.
	HandlerTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.StartOffset == 0 {
		c.StartOffset = kafka.FirstOffset
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 5
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = time.Second
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = 30 * time.Second
	}
}

type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Broker struct {
	cfg Config
	log *zap.Logger

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	readers []reader
	cancel  context.CancelFunc
	ctx     context.Context
	wg      sync.WaitGroup
	closed  bool
}

var _ broker.Broker = (*Broker)(nil)

func New(cfg Config, log *zap.Logger) *Broker {
	cfg.setDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Broker{
		cfg:     cfg,
		log:     log,
		writers: map[string]*kafka.Writer{},
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (b *Broker) Subscribe(ctx context.Context, bind broker.Binding, h broker.Handler) error {
	if err := bind.Validate(); err != nil {
		return err
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.cfg.Brokers,
		Topic:       bind.Exchange,
		GroupID:     bind.Queue,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
		StartOffset: b.cfg.StartOffset,
		Dialer: &kafka.Dialer{
			Timeout:   b.cfg.DialTimeout,
			DualStack: true,
		},
	})

	return b.start(bind, r, h)
}

func (b *Broker) start(bind broker.Binding, r reader, h broker.Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		_ = r.Close()
		return broker.ErrClosed
	}
	b.readers = append(b.readers, r)

	log := b.log.With(zap.String("queue", bind.Queue), zap.String("exchange", bind.Exchange))
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.run(b.ctx, bind, r, h, log)
	}()
	log.Info("subscribed", zap.Strings("routing_keys", bind.RoutingKeys))
	return nil
}

// run processes one message at a time so that offsets are committed in order.
func (b *Broker) run(ctx context.Context, bind broker.Binding, r reader, h broker.Handler, log *zap.Logger) {
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("failed to fetch message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		b.process(ctx, bind, msg, h, log)
		if ctx.Err() != nil {
			return
		}

		if err := r.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Error("failed to commit kafka message", zap.Error(err))
		}
	}
}

func (b *Broker) process(ctx context.Context, bind broker.Binding, msg kafka.Message, h broker.Handler, log *zap.Logger) {
	d := broker.Delivery{
		MessageID:  header(msg, HeaderMessageID),
		Exchange:   bind.Exchange,
		RoutingKey: header(msg, HeaderRoutingKey),
		Payload:    msg.Value,
	}
	if !bind.Matches(d.RoutingKey) {
		return
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = b.cfg.RetryBackoff
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, b.cfg.MaxRetries), ctx)

	op := func() error {
		d.Attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, b.cfg.HandlerTimeout)
		defer cancel()
		err := h(attemptCtx, d)
		if broker.Classify(err) == broker.Drop {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Error("processing failed, retrying", zap.String("routing_key", d.RoutingKey),
			zap.Int("attempt", d.Attempt), zap.Duration("backoff", wait), zap.Error(err))
	}

	err := backoff.RetryNotify(op, policy, notify)
	if err == nil || ctx.Err() != nil {
		return
	}

	if broker.Classify(err) == broker.Drop {
		log.Warn("dropping message", zap.String("routing_key", d.RoutingKey),
			zap.Int64("offset", msg.Offset), zap.Error(err))
		return
	}
	log.Error("dropping message after retries", zap.String("routing_key", d.RoutingKey),
		zap.Int64("offset", msg.Offset), zap.Uint64("retries", b.cfg.MaxRetries), zap.Error(err))
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (b *Broker) writer(topic string) *kafka.Writer {
	b.mu.Lock()
	defer b.mu.Unlock()

	if w, ok := b.writers[topic]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(b.cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
	}
	b.writers[topic] = w
	return w
}

// Publish keys messages by payload so that every change of one item lands on the
// same partition and keeps its relative order.
func (b *Broker) Publish(ctx context.Context, exchange, routingKey string, payload []byte) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return broker.ErrClosed
	}

	err := b.writer(exchange).WriteMessages(ctx, kafka.Message{
		Key:   payload,
		Value: payload,
		Headers: []kafka.Header{
			{Key: HeaderRoutingKey, Value: []byte(routingKey)},
			{Key: HeaderMessageID, Value: []byte(uuid.NewString())},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.cancel()
	readers := b.readers
	writers := b.writers
	b.readers, b.writers = nil, map[string]*kafka.Writer{}
	b.mu.Unlock()

	b.wg.Wait()

	var errs []error
	for _, r := range readers {
		errs = append(errs, r.Close())
	}
	for _, w := range writers {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}
