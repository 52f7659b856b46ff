package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/traveldesk/internal/audit"
	"github.com/xela07ax/traveldesk/internal/handler"
	"github.com/xela07ax/traveldesk/internal/infra"
	"github.com/xela07ax/traveldesk/internal/infra/auth"
	"github.com/xela07ax/traveldesk/internal/lifecycle"
	"github.com/xela07ax/traveldesk/internal/notify"
	"github.com/xela07ax/traveldesk/internal/repository/postgres"
	"github.com/xela07ax/traveldesk/internal/server"
	"github.com/xela07ax/traveldesk/internal/service"
	"github.com/xela07ax/traveldesk/internal/storage"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// RSA-ключи: приватный подписывает токены, публичный их проверяет
	publicKey, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
	if err != nil {
		logger.Fatal("failed to parse public key", zap.Error(err))
	}
	privateKey, err := auth.ParseRSAPrivateKey(cfg.Auth.PrivateKey)
	if err != nil {
		logger.Fatal("failed to parse private key", zap.Error(err))
	}

	// 2. Инфраструктура и ресурсы
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	repo, err := postgres.New(pingCtx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to init postgres", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.Ping(pingCtx); err != nil {
		logger.Fatal("postgres is unreachable", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Метрики
	registry := prometheus.NewRegistry()
	metrics := infra.NewMetrics(registry)

	// Журнал переходов: буферизованный, пишет в базу пачками
	trail := audit.NewTrail(repo, logger, audit.TrailOptions{
		BufferSize:    cfg.Audit.BufferSize,
		BatchSize:     cfg.Audit.BatchSize,
		FlushInterval: cfg.Audit.FlushInterval,
		BufferGauge:   metrics.AuditBufferFill,
	})
	trail.Start()

	// Канал уведомлений: Redis publish за предохранителем и ретраями
	notifier := notify.NewReliableNotifier(notify.NewRedisNotifier(rdb, logger), cfg.Engine)

	// 3. Ядро: движок жизненного цикла и сервисы
	engine := lifecycle.NewEngine(
		lifecycle.WithStrictDisapprove(cfg.Engine.StrictDisapprove),
	)

	travelService := service.NewTravelService(engine, repo, notifier, trail, metrics, logger)
	authService := service.NewAuthService(repo, privateKey, cfg.Auth.TokenTTL, logger)
	userService := service.NewUserService(repo, cfg.Auth.BcryptCost, logger)
	documentService := service.NewDocumentService(repo, storage.NewLocalStore(cfg.Storage.UploadsDir), logger)

	// 4. HTTP-слой
	validator := auth.NewBaseValidator(publicKey)

	travelH := handler.NewTravelHandler(travelService, logger)
	authH := handler.NewAuthHandler(authService, userService, cfg.Auth.LoginRatePerMin, logger)
	commentH := handler.NewCommentHandler(travelService)
	documentH := handler.NewDocumentHandler(documentService, logger)
	userH := handler.NewUserHandler(userService, logger)

	api := server.New(cfg, logger, metrics, registry, validator,
		authH, travelH, commentH, documentH, userH)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 5. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("traveldesk API started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-stop // Ждем сигнал
	logger.Info("traveldesk stopping...")

	// Даем 5 секунд на завершение запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	// Журнал дописывает буфер уже после остановки входящего трафика
	trail.Stop()
	logger.Info("traveldesk exited properly")
}
