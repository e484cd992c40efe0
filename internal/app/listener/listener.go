// Package listener binds the catalog item queues to the page sync consumer.
package listener

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pagesync/internal/domain"
	"pagesync/internal/infrastructure/broker"
	"pagesync/internal/infrastructure/metrics"
)

const (
	Exchange = "ly.item.exchange"

	UpsertQueue = "page.item.upsert.queue"
	DeleteQueue = "page.item.delete.queue"

	RoutingKeyInsert = "item.insert"
	RoutingKeyUpdate = "item.update"
	RoutingKeyDelete = "item.delete"
)

var (
	UpsertBinding = broker.Binding{
		Queue:       UpsertQueue,
		Exchange:    Exchange,
		RoutingKeys: []string{RoutingKeyInsert, RoutingKeyUpdate},
	}
	DeleteBinding = broker.Binding{
		Queue:       DeleteQueue,
		Exchange:    Exchange,
		RoutingKeys: []string{RoutingKeyDelete},
	}
)

// Consumer is the page sync contract the listener drives.
type Consumer interface {
	OnUpsert(ctx context.Context, itemID *int64) error
	OnDelete(ctx context.Context, itemID *int64) error
}

type Listener struct {
	consumer Consumer
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func New(c Consumer, m *metrics.Metrics, log *zap.Logger) *Listener {
	return &Listener{consumer: c, metrics: m, log: log}
}

// Register subscribes both item queues. It must be called once during startup.
func (l *Listener) Register(ctx context.Context, sub broker.Subscriber) error {
	if err := sub.Subscribe(ctx, UpsertBinding, l.HandleUpsert); err != nil {
		return fmt.Errorf("subscribe %s: %w", UpsertQueue, err)
	}
	if err := sub.Subscribe(ctx, DeleteBinding, l.HandleDelete); err != nil {
		return fmt.Errorf("subscribe %s: %w", DeleteQueue, err)
	}
	return nil
}

func (l *Listener) HandleUpsert(ctx context.Context, d broker.Delivery) error {
	return l.handle(ctx, d, domain.ChangeUpsert, l.consumer.OnUpsert)
}

func (l *Listener) HandleDelete(ctx context.Context, d broker.Delivery) error {
	return l.handle(ctx, d, domain.ChangeDelete, l.consumer.OnDelete)
}

func (l *Listener) handle(
	ctx context.Context,
	d broker.Delivery,
	kind domain.ChangeKind,
	apply func(ctx context.Context, itemID *int64) error,
) error {
	started := time.Now()
	log := l.log.With(
		zap.String("kind", string(kind)),
		zap.String("routing_key", d.RoutingKey),
		zap.String("message_id", d.MessageID),
		zap.Int("attempt", d.Attempt),
	)

	ev, err := decode(d, kind)
	if err != nil {
		log.Warn("ignoring malformed item event", zap.ByteString("payload", d.Payload), zap.Error(err))
		l.observe(kind, metrics.OutcomeIgnored, started)
		return nil
	}
	if ev.ItemID == nil {
		log.Debug("ignoring item event without id")
		l.observe(kind, metrics.OutcomeIgnored, started)
		return nil
	}

	if err := apply(ctx, ev.ItemID); err != nil {
		l.observe(kind, metrics.OutcomeFailed, started)
		return err
	}

	l.observe(kind, metrics.OutcomeOK, started)
	log.Debug("item event applied", zap.Int64("item_id", *ev.ItemID))
	return nil
}

func decode(d broker.Delivery, kind domain.ChangeKind) (domain.ItemChangeEvent, error) {
	id, err := broker.DecodeItemID(d.Payload)
	if err != nil {
		return domain.ItemChangeEvent{}, err
	}
	return domain.ItemChangeEvent{ItemID: id, Kind: kind}, nil
}

func (l *Listener) observe(kind domain.ChangeKind, outcome string, started time.Time) {
	if l.metrics == nil {
		return
	}
	l.metrics.Events.WithLabelValues(string(kind), outcome).Inc()
	l.metrics.EventDuration.WithLabelValues(string(kind)).Observe(time.Since(started).Seconds())
}
