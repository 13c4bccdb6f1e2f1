package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Akash-RK/federal-register-rag/internal/stats"
	"github.com/Akash-RK/federal-register-rag/pkg/config"
	"github.com/Akash-RK/federal-register-rag/pkg/kafka"
	"github.com/Akash-RK/federal-register-rag/pkg/logger"
	"github.com/Akash-RK/federal-register-rag/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := stats.NewRecorder(db)
	if err := recorder.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.DayIngested, recorder.Handler())
	defer consumer.Close()

	slog.Info("stats consumer starting", "topic", cfg.Kafka.Topics.DayIngested)
	if err := consumer.Start(ctx); err != nil {
		slog.Error("consumer stopped with error", "error", err)
		os.Exit(1)
	}
}
