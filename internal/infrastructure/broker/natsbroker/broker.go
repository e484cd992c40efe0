// Package natsbroker maps the exchange/queue model onto JetStream: one stream per
// exchange capturing "<exchange>.>", one durable pull consumer per queue filtered to
// the bound routing keys.
package natsbroker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"pagesync/internal/infrastructure/async"
	"pagesync/internal/infrastructure/broker"
)

type Config struct {
	StreamPrefix string
	AckWait      time.Duration
	MaxDeliver   int
	// RetryDelay is the base nak delay; it doubles per delivery up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	MaxAckPending int
	Storage       jetstream.StorageType
}

func (c *Config) setDefaults() {
	if c.AckWait <= 0 {
		c.AckWait = 30 * time.Second
	}
	if c.MaxDeliver == 0 {
		c.MaxDeliver = 10
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 500 * time.Millisecond
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = 30 * time.Second
	}
	if c.MaxAckPending <= 0 {
		c.MaxAckPending = 256
	}
}

type Broker struct {
	js   jetstream.JetStream
	pool *async.WorkerPool
	cfg  Config
	log  *zap.Logger

	mu     sync.Mutex
	subs   []jetstream.ConsumeContext
	closed bool
}

var _ broker.Broker = (*Broker)(nil)

func New(nc *nats.Conn, pool *async.WorkerPool, cfg Config, log *zap.Logger) (*Broker, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	cfg.setDefaults()
	return &Broker{js: js, pool: pool, cfg: cfg, log: log}, nil
}

// StreamName derives a valid JetStream stream name from an exchange name.
func (b *Broker) StreamName(exchange string) string {
	return sanitize(b.cfg.StreamPrefix + exchange)
}

func (b *Broker) ensureStream(ctx context.Context, exchange string) (string, error) {
	name := b.StreamName(exchange)
	_, err := b.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       name,
		Subjects:   []string{exchange + ".>"},
		Storage:    b.cfg.Storage,
		Duplicates: 2 * time.Minute,
	})
	if err != nil {
		return "", fmt.Errorf("ensure stream %s: %w", name, err)
	}
	return name, nil
}

func (b *Broker) Subscribe(ctx context.Context, bind broker.Binding, h broker.Handler) error {
	if err := bind.Validate(); err != nil {
		return err
	}

	filters := make([]string, 0, len(bind.RoutingKeys))
	for _, k := range bind.RoutingKeys {
		subj, err := subject(bind.Exchange, k)
		if err != nil {
			return err
		}
		filters = append(filters, subj)
	}

	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return broker.ErrClosed
	}

	stream, err := b.ensureStream(ctx, bind.Exchange)
	if err != nil {
		return err
	}

	cons, err := b.js.CreateOrUpdateConsumer(ctx, stream, jetstream.ConsumerConfig{
		Durable:        sanitize(bind.Queue),
		FilterSubjects: filters,
		AckPolicy:      jetstream.AckExplicitPolicy,
		AckWait:        b.cfg.AckWait,
		MaxDeliver:     b.cfg.MaxDeliver,
		MaxAckPending:  b.cfg.MaxAckPending,
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return fmt.Errorf("ensure consumer %s: %w", bind.Queue, err)
	}

	log := b.log.With(zap.String("queue", bind.Queue), zap.String("exchange", bind.Exchange))
	cc, err := cons.Consume(func(msg jetstream.Msg) {
		if !b.pool.Submit(func(taskCtx context.Context) {
			b.handle(taskCtx, bind, h, msg, log)
		}) {
			// Pool is shutting down; leave the message unacked for redelivery.
			log.Debug("delivery not accepted, pool closed", zap.String("subject", msg.Subject()))
		}
	}, jetstream.ConsumeErrHandler(func(_ jetstream.ConsumeContext, err error) {
		log.Warn("consume error", zap.Error(err))
	}))
	if err != nil {
		return fmt.Errorf("consume %s: %w", bind.Queue, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		cc.Stop()
		return broker.ErrClosed
	}
	b.subs = append(b.subs, cc)
	log.Info("subscribed", zap.Strings("subjects", filters))
	return nil
}

func (b *Broker) handle(ctx context.Context, bind broker.Binding, h broker.Handler, msg jetstream.Msg, log *zap.Logger) {
	d := broker.Delivery{
		Exchange:   bind.Exchange,
		RoutingKey: strings.TrimPrefix(msg.Subject(), bind.Exchange+"."),
		Payload:    msg.Data(),
		Attempt:    1,
	}
	if msg.Headers() != nil {
		d.MessageID = msg.Headers().Get(nats.MsgIdHdr)
	}
	if md, err := msg.Metadata(); err == nil {
		d.Attempt = int(md.NumDelivered)
	}

	if !bind.Matches(d.RoutingKey) {
		_ = msg.Ack()
		return
	}

	err := h(ctx, d)
	switch broker.Classify(err) {
	case broker.Ack:
		if err := msg.Ack(); err != nil {
			log.Warn("ack failed", zap.Error(err))
		}
	case broker.Drop:
		log.Warn("dropping message", zap.String("routing_key", d.RoutingKey),
			zap.Int("attempt", d.Attempt), zap.Error(err))
		if err := msg.Term(); err != nil {
			log.Warn("term failed", zap.Error(err))
		}
	case broker.Retry:
		delay := b.retryDelay(d.Attempt)
		log.Error("handler failed, redelivering", zap.String("routing_key", d.RoutingKey),
			zap.Int("attempt", d.Attempt), zap.Duration("delay", delay), zap.Error(err))
		if err := msg.NakWithDelay(delay); err != nil {
			log.Warn("nak failed", zap.Error(err))
		}
	}
}

func (b *Broker) retryDelay(attempt int) time.Duration {
	d := b.cfg.RetryDelay
	for i := 1; i < attempt && d < b.cfg.MaxRetryDelay; i++ {
		d *= 2
	}
	if d > b.cfg.MaxRetryDelay {
		d = b.cfg.MaxRetryDelay
	}
	return d
}

func (b *Broker) Publish(ctx context.Context, exchange, routingKey string, payload []byte) error {
	subj, err := subject(exchange, routingKey)
	if err != nil {
		return err
	}
	if strings.ContainsAny(routingKey, "*#") {
		return fmt.Errorf("%w: wildcard routing key %q", broker.ErrInvalidBinding, routingKey)
	}
	if _, err := b.ensureStream(ctx, exchange); err != nil {
		return err
	}
	if _, err := b.js.Publish(ctx, subj, payload, jetstream.WithMsgID(uuid.NewString())); err != nil {
		return fmt.Errorf("publish %s: %w", subj, err)
	}
	return nil
}

// Close stops all consumers. The NATS connection is owned by the caller.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, cc := range b.subs {
		cc.Stop()
	}
	b.subs = nil
	return nil
}

// subject maps a routing key pattern onto a NATS subject under the exchange.
// "#" is only expressible as a trailing wildcard.
func subject(exchange, routingKey string) (string, error) {
	words := strings.Split(routingKey, ".")
	for i, w := range words {
		if w == "#" {
			if i != len(words)-1 {
				return "", fmt.Errorf("%w: %q has a non-trailing #", broker.ErrInvalidBinding, routingKey)
			}
			words[i] = ">"
		}
	}
	return exchange + "." + strings.Join(words, "."), nil
}

func sanitize(name string) string {
	r := strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_", "/", "_", "\\", "_")
	return strings.ToUpper(r.Replace(name))
}
