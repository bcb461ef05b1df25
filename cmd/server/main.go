package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"garagelog/internal/app"
	"garagelog/internal/auth"
	"garagelog/internal/config"
	"garagelog/internal/events"
	"garagelog/internal/server"
	"garagelog/internal/storage"
	"garagelog/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	var files storage.ObjectStore
	switch {
	case cfg.MinioEndpoint != "":
		files, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init object storage: %v", err)
		}
	case cfg.StorageDir != "":
		files, err = storage.NewFileStore(cfg.StorageDir)
		if err != nil {
			log.Fatalf("failed to init file storage: %v", err)
		}
	}

	var publisher app.Publisher
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.EventsExchange)
		if err != nil {
			log.Fatalf("failed to init event publisher: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	appCore, err := app.New(app.Config{
		DatabaseURL: cfg.DatabaseURL,
		Files:       files,
		Events:      publisher,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	var authenticator *auth.Authenticator
	if cfg.TokenSecret != "" && cfg.OperatorPasswordHash != "" {
		authenticator, err = auth.New(cfg.TokenSecret, cfg.OperatorPasswordHash, sessionTTL)
		if err != nil {
			log.Fatalf("failed to init auth: %v", err)
		}
	}

	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                     appCore,
		Auth:                    authenticator,
		RedisAddr:               cfg.RedisAddr,
		RedisPassword:           cfg.RedisPassword,
		WriteRateLimitPerMinute: cfg.WriteRateLimitPerMinute,
		MaxUploadBytes:          cfg.MaxUploadBytes,
		TrustedProxies:          trustedProxies,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
