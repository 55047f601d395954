package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"taskboard/internal/config"
	"taskboard/internal/mqhandler"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/pkg/db"
	"taskboard/pkg/logger"
	"taskboard/pkg/mq"
	redisclient "taskboard/pkg/redis"
	"taskboard/pkg/util"
)

const (
	historyLoggedQueue = "tarefa.history.logged.q"
	taskUpdatedQueue   = "tarefa.updated.q"
)

func main() {
	log := logger.NewLogger("taskboard-worker")
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Config load failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting worker service...")

	// Init Redis
	rdb, err := redisclient.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, cfg.Worker.DedupTTL, log)
	retries := util.NewRetryCounter(rdb, time.Hour)

	// Init DB
	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer pool.Close()

	log.Info("Database connection established")

	// Init Repositories
	taskRepo := repository.NewTaskRepository(pool, log)
	historyRepo := repository.NewHistoryRepository(pool, log)

	// the worker only consumes, so the history service gets no publisher
	summaryCache := service.NewRedisSummaryCache(rdb, cfg.Cache.TTL, log)
	historySvc := service.NewHistoryService(taskRepo, historyRepo, nil, summaryCache, log)

	// Init Handlers
	historyLogged := mqhandler.NewHistoryLoggedHandler(historySvc, deduper, log)
	taskUpdated := mqhandler.NewTaskUpdatedHandler(historySvc, log)

	consumers := []struct {
		queue      string
		routingKey string
		handle     mq.MessageHandler
	}{
		{historyLoggedQueue, mq.RoutingKeyHistoryLogged, historyLogged.Handle},
		{taskUpdatedQueue, mq.RoutingKeyTaskUpdated, taskUpdated.Handle},
	}

	var wg sync.WaitGroup
	started := make([]*mq.Consumer, 0, len(consumers))
	for _, qc := range consumers {
		log.Info("Initializing consumer", zap.String("queue", qc.queue))
		consumer, err := mq.NewConsumer(cfg.MQ.URL, qc.queue, qc.routingKey, log)
		if err != nil {
			log.Fatal("Failed to init consumer", zap.String("queue", qc.queue), zap.Error(err))
		}
		consumer.SetHandler(qc.handle)
		consumer.SetRetryCounter(retries, cfg.Worker.MaxRetries)
		started = append(started, consumer)

		wg.Add(1)
		go func(queue string) {
			defer wg.Done()
			runConsumer(ctx, queue, consumer.StartConsuming, stop, log)
		}(qc.queue)
	}

	metricsSrv := &http.Server{
		Addr:              ":" + cfg.Worker.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", zap.Error(err))
		}
	}()

	log.Info("All consumers started, worker is ready to process messages")
	<-ctx.Done()
	log.Info("Shutting down, draining consumers")

	for _, c := range started {
		c.Stop()
	}
	wg.Wait()
	for _, c := range started {
		c.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("Worker stopped")
}
