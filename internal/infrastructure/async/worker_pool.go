package async

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Task func(ctx context.Context)

// WorkerPool runs tasks on a fixed set of goroutines. Submit blocks while every
// worker is busy, which gives broker deliveries natural backpressure.
type WorkerPool struct {
	tasks   chan Task
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
	timeout time.Duration
	once    sync.Once
}

func NewWorkerPool(parent context.Context, size int, timeout time.Duration, log *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	ctx, cancel := context.WithCancel(parent)
	p := &WorkerPool{
		tasks:   make(chan Task),
		ctx:     ctx,
		cancel:  cancel,
		log:     log,
		timeout: timeout,
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}

			safeCtx, cancel := context.WithTimeout(p.ctx, p.timeout)
			func() {
				defer func() {
					if r := recover(); r != nil {
						p.log.Error("task panicked", zap.Int("worker", id), zap.Any("panic", r))
					}
				}()
				task(safeCtx)
			}()
			cancel()
		}
	}
}

// Submit hands task to a worker. It returns false if the pool is shutting down
// and the task was not accepted.
func (p *WorkerPool) Submit(task Task) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.tasks <- task:
		return true
	}
}

func (p *WorkerPool) Shutdown() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}
