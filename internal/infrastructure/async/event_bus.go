package async

import (
	"context"

	"go.uber.org/zap"

	"pagesync/internal/domain"
	"pagesync/internal/infrastructure/metrics"
)

type AsyncEventBus struct {
	pool    *WorkerPool
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewAsyncEventBus(ctx context.Context, poolSize int, m *metrics.Metrics, log *zap.Logger) *AsyncEventBus {
	return &AsyncEventBus{
		pool:    NewWorkerPool(ctx, poolSize, 0, log),
		log:     log,
		metrics: m,
	}
}

func (b *AsyncEventBus) Publish(ctx context.Context, e domain.Event) {
	b.pool.Submit(func(_ context.Context) {
		if b.metrics != nil {
			b.metrics.DomainEvents.WithLabelValues(e.Type).Inc()
		}
		b.log.Info("domain_event",
			zap.String("type", e.Type),
			zap.Any("payload", e.Payload),
		)
	})
}

func (b *AsyncEventBus) Close() {
	b.pool.Shutdown()
}
