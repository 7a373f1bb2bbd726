package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"botpedidos/internal/audit"
	"botpedidos/internal/config"
	"botpedidos/internal/database"
	"botpedidos/internal/handlers"
	"botpedidos/internal/whatsapp"
)

func main() {
	// 1. Application logger to stderr.
	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	logger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 2. Configuration: defaults, optional YAML file, env overrides.
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	// 3. Audit log for raw webhook payloads. Best effort: a broken sink
	// must not take the service down.
	auditLog, err := audit.Init(cfg.WebhookLogPath)
	if err != nil {
		logger.Warn("audit log unavailable, payload trail disabled", zap.Error(err))
		auditLog = zap.NewNop()
	}

	// 4. Catalog store.
	db, err := database.Open(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer db.Close()

	// 5. Outbound gateway: constructed only when fully configured.
	var client *whatsapp.Client
	if cfg.GatewayConfigured() {
		client = whatsapp.NewClient(cfg.APIURL, cfg.Token, logger)
	} else {
		logger.Warn("whatsapp gateway not configured, webhook deliveries will be refused")
	}

	// 6. Router.
	r := mux.NewRouter()
	r.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/webhook", handlers.VerifyWebhook(cfg, auditLog)).Methods(http.MethodGet)
	r.HandleFunc("/webhook", handlers.HandleWebhook(db, client, auditLog)).Methods(http.MethodPost)

	// 7. Serve.
	logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}
