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
	"github.com/fiapx/fiapx-video-events/internal/infra/ffmpeg"
	"github.com/fiapx/fiapx-video-events/internal/infra/metrics"
	"github.com/fiapx/fiapx-video-events/internal/infra/storage"
	"github.com/fiapx/fiapx-video-events/internal/infra/tracing"
	"github.com/fiapx/fiapx-video-events/internal/messaging"
	"github.com/fiapx/fiapx-video-events/internal/usecase"
	"github.com/fiapx/fiapx-video-events/pkg/logger"
	"go.uber.org/zap"
)

const serviceName = "fiapx-video-worker"

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting "+serviceName, zap.String("messaging_adapter", cfg.MessagingAdapter), zap.String("storage_adapter", cfg.StorageAdapter))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if Jaeger unavailable)
	tp, err := tracing.InitTracer(ctx, serviceName, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(context.Background())
	}

	fileStorage, err := storage.New(ctx, cfg.StorageOptions(), log)
	fatalOnErr(err, "create storage")

	brokerOpts := cfg.BrokerOptions(cfg.SQSUploadsQueueURL)

	publisher := broker.NewPublisher(brokerOpts, log)
	fatalOnErr(publisher.Connect(ctx), "connect publisher")
	defer publisher.Disconnect()

	uc := usecase.NewProcessVideoUseCase(
		fileStorage,
		ffmpeg.NewExtractor(cfg.FFmpegBinary, cfg.FFmpegFPS, log),
		ffmpeg.NewZipCreator(),
		publisher,
		log,
		usecase.ProcessVideoConfig{TempDir: cfg.TempDir},
	)

	registry := messaging.NewRegistry(log)
	registry.OnDispatch(metrics.RecordDispatch)
	handler.NewVideoUploaded(uc, log).Register(registry)

	consumer := broker.NewConsumer(brokerOpts, registry, log)

	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, func() bool {
		return consumer.State() == messaging.StateListening
	}, log)

	fatalOnErr(consumer.Connect(ctx), "connect consumer")
	fatalOnErr(consumer.StartListening(ctx), "start consumer")

	// Graceful shutdown
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
