package kafkabroker

import (
	"context"

	"github.com/segmentio/kafka-go"

	"pagesync/internal/infrastructure/broker"
)

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func (b *Broker) StartWithReader(bind broker.Binding, r Reader, h broker.Handler) error {
	return b.start(bind, r, h)
}
