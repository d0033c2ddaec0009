package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mail-dispatch-service/internal/config"
	"mail-dispatch-service/internal/docstore"
	"mail-dispatch-service/internal/handler"
	"mail-dispatch-service/internal/httpserver"
	"mail-dispatch-service/internal/mailer"
	"mail-dispatch-service/internal/model"
	"mail-dispatch-service/internal/provider"
	"mail-dispatch-service/internal/repository"
	"mail-dispatch-service/internal/service/dispatch"
	"mail-dispatch-service/internal/service/reconcile"
	"mail-dispatch-service/pkg/db"
	"mail-dispatch-service/pkg/logger"
	"mail-dispatch-service/pkg/mq"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logger.NewLogger()
	defer logger.Sync()

	// Init DB (failure-audit records)
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init document store
	rdb := docstore.NewRedisClient(cfg.Redis)
	defer rdb.Close()
	store := docstore.NewRedisStore(rdb)

	// Init RabbitMQ publisher (optional; dispatch works without it)
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		logger.Warn("MQ publisher unavailable, dispatch events will not be published", zap.Error(err))
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Init delivery provider client
	providerClient, err := provider.NewClient(provider.Config{
		APIKey:         cfg.Provider.APIKey,
		BaseURL:        cfg.Provider.BaseURL,
		TimeoutSeconds: cfg.Provider.TimeoutSeconds,
	})
	if err != nil {
		logger.Fatal("provider client initialization failed", zap.Error(err))
	}

	// Init services
	auditRepo := repository.NewAuditRepository(dbConn)
	builder := mailer.NewBuilder(model.SenderIdentity{
		Email: cfg.Provider.DoNotReply.Email,
		Name:  cfg.Provider.DoNotReply.Name,
	})

	dispatchService := dispatch.NewService(store, providerClient, builder, auditRepo, eventPublisher(publisher), logger)
	reconcileService := reconcile.NewService(store, logger)

	// Init handlers
	dispatchHandler := handler.NewDispatchHandler(dispatchService)
	webhookHandler := handler.NewWebhookHandler(reconcileService, logger)

	// Router
	router := httpserver.NewRouter(dispatchHandler, webhookHandler, cfg, dbConn, rdb, publisher)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router.Engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting mail dispatch service", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}

// eventPublisher keeps a nil *mq.Publisher from becoming a non-nil interface.
func eventPublisher(p *mq.Publisher) dispatch.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
