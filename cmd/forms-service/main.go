package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carelab-io/recordforms/pkg/common/config"
	"github.com/carelab-io/recordforms/pkg/common/database"
	"github.com/carelab-io/recordforms/pkg/common/kafka"
	"github.com/carelab-io/recordforms/pkg/common/logger"
	"github.com/carelab-io/recordforms/pkg/forms"
	"github.com/carelab-io/recordforms/pkg/observability/metrics"
	"github.com/carelab-io/recordforms/pkg/records"
	"github.com/carelab-io/recordforms/pkg/schema"
	"github.com/carelab-io/recordforms/pkg/server/auth"
	"github.com/carelab-io/recordforms/pkg/server/middleware"
	"github.com/carelab-io/recordforms/pkg/storage"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init("forms-service")
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	recordRepo := records.NewRepository(db)
	if err := recordRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate record tables")
	}

	catalog, err := schema.LoadLabelCatalog(cfg.EnumLabelOverrides)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load enum label catalog")
	}

	reader := schema.NewReader(db)
	resolver := schema.NewResolver(db, catalog)

	renderer := forms.NewRenderer(resolver)
	formService := forms.NewService(reader, renderer)
	formHandler := forms.NewHandler(formService, resolver)

	var signer records.DocumentSigner
	if cfg.DocumentBucket != "" {
		store, err := storage.NewDocumentStore(context.Background(), storage.Config{
			Bucket:    cfg.DocumentBucket,
			Region:    cfg.DocumentRegion,
			Endpoint:  cfg.DocumentEndpoint,
			PathStyle: cfg.DocumentPathStyle,
			URLTTL:    cfg.DocumentURLTTL,
		})
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to initialize document store")
		}
		signer = store
	} else {
		logger.Log.Warn("No document bucket configured, serving stored document URLs")
	}

	producer := kafka.NewProducer(cfg.AuditTopic)
	defer producer.Close()

	recordService := records.NewService(recordRepo, signer, producer)
	recordHandler := records.NewHandler(recordService)

	validator, err := buildValidator(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to configure authentication")
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(r.Context()) != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(
		middleware.Recovery,
		middleware.Logging,
		middleware.CORS,
		middleware.BodyLimit(cfg.MaxRequestBody),
		middleware.RateLimit(database.GetRedis(), cfg.RateLimitRPS),
		middleware.Authenticate(validator),
	)
	formHandler.Register(api)
	recordHandler.Register(api)

	address := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithField("addr", address).Info("Forms service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start forms service")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down forms service...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Forms service forced to shutdown")
	}
	database.CloseRedis()
	database.ClosePostgres()
	logger.Log.Info("Forms service stopped")
}

// buildValidator picks the token validator: OIDC when an issuer is
// configured, the local HMAC JWT manager otherwise.
func buildValidator(cfg *config.Config) (middleware.TokenValidator, error) {
	if cfg.OIDCIssuer != "" {
		return auth.NewOIDCAuthenticator(cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret)
	}
	return auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)
}
