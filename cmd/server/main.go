package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/httpserver"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/pkg/db"
	"taskboard/pkg/logger"
	"taskboard/pkg/mq"
	redisclient "taskboard/pkg/redis"
)

func main() {
	log := logger.NewLogger("taskboard-api")
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Config load failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting taskboard API...")

	// Init DB
	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool, log); err != nil {
		log.Fatal("Schema migration failed", zap.Error(err))
	}

	// Init Redis
	rdb, err := redisclient.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	// Init MQ
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("MQ publisher initialization failed", zap.Error(err))
	}
	defer publisher.Close()

	// Init Repositories
	projectRepo := repository.NewProjectRepository(pool, log)
	taskRepo := repository.NewTaskRepository(pool, log)
	stepRepo := repository.NewStepRepository(pool, log)
	typeRepo := repository.NewTypeRepository(pool, log)
	teamRepo := repository.NewTeamRepository(pool, log)
	historyRepo := repository.NewHistoryRepository(pool, log)
	userRepo := repository.NewUserRepository(pool, log)
	tokenRepo := repository.NewCLITokenRepository(pool, log)

	// Init Services
	summaryCache := service.NewRedisSummaryCache(rdb, cfg.Cache.TTL, log)
	projectSvc := service.NewProjectService(projectRepo, log)
	taskSvc := service.NewTaskService(projectRepo, taskRepo, stepRepo, typeRepo, publisher, summaryCache, log)
	historySvc := service.NewHistoryService(taskRepo, historyRepo, publisher, summaryCache, log)
	teamSvc := service.NewTeamService(projectRepo, teamRepo, taskRepo, log)
	authSvc := service.NewAuthService(userRepo, tokenRepo, cfg.JWT.Secret, cfg.JWT.TTL, log)

	// Init Handlers
	handlers := httpserver.Handlers{
		Auth:     handler.NewAuthHandler(authSvc, log),
		Projects: handler.NewProjectHandler(projectSvc, taskSvc, log),
		Tasks:    handler.NewTaskHandler(taskSvc, log),
		History:  handler.NewHistoryHandler(historySvc, log),
		Teams:    handler.NewTeamHandler(teamSvc, log),
	}
	checks := []httpserver.ReadyCheck{
		{Name: "db", Check: pool.Ping},
		{Name: "mq", Check: func(context.Context) error {
			if !publisher.IsConnected() {
				return mq.ErrNotConnected
			}
			return nil
		}},
	}

	router := httpserver.NewRouter(handlers, authSvc, checks, log)
	server := httpserver.NewServer(cfg.Server.Port, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	log.Info("API stopped")
}
