package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"pagesync/internal/app/config"
	httpapi "pagesync/internal/app/http"
	"pagesync/internal/app/http/handler"
	"pagesync/internal/app/listener"
	"pagesync/internal/domain/page"
	"pagesync/internal/domain/stats"
	"pagesync/internal/infrastructure/async"
	"pagesync/internal/infrastructure/broker"
	"pagesync/internal/infrastructure/broker/kafkabroker"
	"pagesync/internal/infrastructure/broker/natsbroker"
	"pagesync/internal/infrastructure/db/pg"
	"pagesync/internal/infrastructure/logging"
	"pagesync/internal/infrastructure/metrics"
	"pagesync/internal/infrastructure/render"
	"pagesync/internal/infrastructure/storage/fsstore"
	"pagesync/internal/infrastructure/storage/redisstore"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := pg.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("db open error", zap.Error(err))
	}
	defer db.Close()

	if err := pg.Migrate(db, cfg.MigrationsDir); err != nil {
		log.Fatal("migrate error", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	eventBus := async.NewAsyncEventBus(ctx, 1, m, log.Named("events"))
	defer eventBus.Close()

	store, closeStore, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("page store error", zap.Error(err))
	}
	defer closeStore()

	tmpl, err := render.New(cfg.Page.Template)
	if err != nil {
		log.Fatal("page template error", zap.Error(err))
	}

	uow := pg.NewTxManager(db)
	pageSvc := page.NewService(
		uow,
		pg.NewItemRepository(db),
		pg.NewArtifactRepository(db),
		store,
		tmpl,
		eventBus,
	)
	statsSvc := stats.NewService(pg.NewStatsRepository(db))

	pool := async.NewWorkerPool(ctx, cfg.Workers, cfg.HandlerTimeout, log.Named("workers"))

	b, closeBroker, err := newBroker(cfg, pool, log.Named("broker"))
	if err != nil {
		log.Fatal("broker error", zap.Error(err))
	}

	l := listener.New(page.NewConsumer(pageSvc), m, log.Named("listener"))
	if err := l.Register(ctx, b); err != nil {
		log.Fatal("listener register error", zap.Error(err))
	}

	h := handler.New(pageSvc, statsSvc, b, log.Named("http"))
	router := httpapi.NewRouter(h, reg, log.Named("http"))

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTPAddr), zap.String("broker", cfg.Broker))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	log.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	if err := b.Close(); err != nil {
		log.Error("broker close error", zap.Error(err))
	}
	pool.Shutdown()
	closeBroker()
}

func newBroker(cfg config.Config, pool *async.WorkerPool, log *zap.Logger) (broker.Broker, func(), error) {
	if cfg.Broker == config.BrokerKafka {
		b := kafkabroker.New(kafkabroker.Config{
			Brokers:        cfg.Kafka.Brokers,
			MaxRetries:     cfg.Kafka.MaxRetries,
			HandlerTimeout: cfg.HandlerTimeout,
		}, log)
		return b, func() {}, nil
	}

	nc, err := nats.Connect(cfg.NATS.URL,
		nats.Name("pagesync"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, nil, err
	}

	b, err := natsbroker.New(nc, pool, natsbroker.Config{
		StreamPrefix: cfg.NATS.StreamPrefix,
		AckWait:      cfg.NATS.AckWait,
		MaxDeliver:   cfg.NATS.MaxDeliver,
	}, log)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	return b, func() { _ = nc.Drain() }, nil
}

func newStore(ctx context.Context, cfg config.Config, log *zap.Logger) (page.Store, func(), error) {
	if cfg.Page.Store == config.StoreRedis {
		client, err := redisstore.NewClient(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info("page store", zap.String("kind", "redis"), zap.String("addr", cfg.Redis.Addr))
		return redisstore.New(client), func() { _ = client.Close() }, nil
	}

	s, err := fsstore.New(cfg.Page.Dir)
	if err != nil {
		return nil, nil, err
	}
	log.Info("page store", zap.String("kind", "fs"), zap.String("dir", cfg.Page.Dir))
	return s, func() {}, nil
}
