package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spacelink-gateway/internal/config"
	"spacelink-gateway/internal/infrastructure/database"
	"spacelink-gateway/internal/ingestion"
	"spacelink-gateway/internal/logger"
	"spacelink-gateway/internal/routes"
	pkgmqtt "spacelink-gateway/pkg/mqtt"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	logger.Info("Starting application",
		zap.String("environment", env),
		zap.String("version", cfg.Server.Version),
		zap.String("storage", cfg.Storage.Driver),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repos, err := database.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := repos.Close(); err != nil {
			logger.Error("Failed to close storage", zap.Error(err))
		}
	}()

	services := routes.NewServices(cfg, repos)
	if err := services.Auth.EnsureAdmin(ctx, cfg.Bootstrap); err != nil {
		logger.Fatal("Failed to seed bootstrap admin", zap.Error(err))
	}

	var (
		processor  *ingestion.Processor
		mqttClient *ingestion.MQTTIngestionClient
	)
	if cfg.MQTT.Enabled {
		processor = ingestion.NewProcessor(services.Auth, services.Telemetry, cfg.MQTT.Workers, cfg.MQTT.BufferSize)
		processor.Start(ctx)

		mqttClient, err = ingestion.NewMQTTIngestionClient(&ingestion.MQTTIngestionConfig{
			ClientConfig: &pkgmqtt.Config{
				Broker:               cfg.MQTT.Broker,
				ClientID:             cfg.MQTT.ClientID,
				Username:             cfg.MQTT.Username,
				Password:             cfg.MQTT.Password,
				CleanSession:         true,
				KeepAlive:            30,
				ConnectTimeout:       10,
				AutoReconnect:        true,
				MaxReconnectInterval: time.Minute,
			},
			TelemetryTopic: cfg.MQTT.TelemetryTopic,
			QoS:            byte(cfg.MQTT.QoS),
		}, processor)
		if err != nil {
			logger.Fatal("Failed to configure MQTT ingestion", zap.Error(err))
		}
		if err := mqttClient.Start(); err != nil {
			logger.Fatal("Failed to start MQTT ingestion", zap.Error(err))
		}
	}

	router := routes.SetupRoutes(ctx, cfg, repos, services)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
	}

	if mqttClient != nil {
		mqttClient.Stop()
	}
	if processor != nil {
		processor.Stop()
	}
	stop()

	logger.Info("Server exited properly")
}
