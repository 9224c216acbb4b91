package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carelab-io/recordforms/pkg/audit"
	"github.com/carelab-io/recordforms/pkg/common/config"
	"github.com/carelab-io/recordforms/pkg/common/database"
	"github.com/carelab-io/recordforms/pkg/common/kafka"
	"github.com/carelab-io/recordforms/pkg/common/logger"
	"github.com/carelab-io/recordforms/pkg/observability/metrics"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init("audit-service")
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	repo := audit.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate audit tables")
	}

	service := audit.NewService(repo)
	handler := audit.NewHandler(repo)

	consumer := kafka.NewConsumer(cfg.AuditTopic, cfg.KafkaGroupID)
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		logger.Log.WithField("topic", cfg.AuditTopic).Info("Audit consumer started")
		if err := consumer.Consume(ctx, service.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.WithError(err).Error("Audit consumer stopped")
		}
	}()

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	handler.Register(api)

	address := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithField("addr", address).Info("Audit service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start audit service")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down audit service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Audit service forced to shutdown")
	}

	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		logger.Log.Warn("Audit consumer did not stop in time")
	}

	database.ClosePostgres()
	logger.Log.Info("Audit service stopped")
}
