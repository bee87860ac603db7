package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fiapx/fiapx-video-events/internal/handler"
	"github.com/fiapx/fiapx-video-events/internal/infra/broker"
	"github.com/fiapx/fiapx-video-events/internal/infra/config"
	"github.com/fiapx/fiapx-video-events/internal/infra/metrics"
	"github.com/fiapx/fiapx-video-events/internal/infra/postgres"
	"github.com/fiapx/fiapx-video-events/internal/infra/tracing"
	"github.com/fiapx/fiapx-video-events/internal/messaging"
	"github.com/fiapx/fiapx-video-events/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const serviceName = "fiapx-video-status"

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")
	fatalOnErr(cfg.RequireDatabase(), "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting "+serviceName, zap.String("messaging_adapter", cfg.MessagingAdapter))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := tracing.InitTracer(ctx, serviceName, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(context.Background())
	}

	fatalOnErr(postgres.RunMigrations(ctx, cfg.DatabaseURL), "run migrations")

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	registry := messaging.NewRegistry(log)
	registry.OnDispatch(metrics.RecordDispatch)
	handler.NewVideoProcessed(postgres.NewVideoRepository(pool), log).Register(registry)

	consumer := broker.NewConsumer(cfg.BrokerOptions(cfg.SQSProcessedQueueURL), registry, log)

	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, func() bool {
		return consumer.State() == messaging.StateListening
	}, log)

	fatalOnErr(consumer.Connect(ctx), "connect consumer")
	fatalOnErr(consumer.StartListening(ctx), "start consumer")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info(serviceName+" started, consuming messages", zap.Strings("event_types", registry.EventTypes()))

	sig := <-sigCh
	log.Info("received shutdown signal", zap.String("signal", sig.String()))

	consumer.Disconnect()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	log.Info(serviceName + " stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
