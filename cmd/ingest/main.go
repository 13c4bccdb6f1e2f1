package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/Akash-RK/federal-register-rag/internal/ingest"
	"github.com/Akash-RK/federal-register-rag/internal/ingest/source"
	"github.com/Akash-RK/federal-register-rag/internal/ingest/staging"
	"github.com/Akash-RK/federal-register-rag/internal/ingest/store"
	"github.com/Akash-RK/federal-register-rag/internal/query"
	"github.com/Akash-RK/federal-register-rag/pkg/config"
	"github.com/Akash-RK/federal-register-rag/pkg/kafka"
	"github.com/Akash-RK/federal-register-rag/pkg/logger"
	"github.com/Akash-RK/federal-register-rag/pkg/metrics"
	"github.com/Akash-RK/federal-register-rag/pkg/postgres"
	pkgredis "github.com/Akash-RK/federal-register-rag/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	startFlag := flag.String("start", "", "first day to ingest (YYYY-MM-DD, default yesterday)")
	endFlag := flag.String("end", "", "last day to ingest (YYYY-MM-DD, default start)")
	force := flag.Bool("force", false, "refetch days that already have staged raw snapshots")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	start, end, err := resolveRange(*startFlag, *endFlag)
	if err != nil {
		slog.Error("invalid date range", "error", err)
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(ctx)
		}()
	}

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	docStore := store.NewPostgres(db)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := docStore.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	pipeline := ingest.NewPipeline(
		source.NewRetrier(source.NewClient(cfg.Source), cfg.Ingest, m),
		staging.New(cfg.Ingest.StagingDir),
		docStore,
	)
	pipeline.Force = *force
	pipeline.Metrics = m

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DayIngested)
		defer producer.Close()
		pipeline.Events = ingest.NewKafkaEvents(producer)
		slog.Info("event publishing enabled", "topic", cfg.Kafka.Topics.DayIngested)
	}

	scheduler := ingest.NewScheduler(pipeline, cfg.Ingest.MaxConcurrentDays)
	report, err := scheduler.Run(ctx, start, end)
	if err != nil {
		slog.Error("run rejected", "error", err)
		os.Exit(1)
	}

	printReport(report)
	invalidateQueryCache(ctx, cfg, report)

	if failed := report.FailedDays(); len(failed) > 0 {
		os.Exit(1)
	}
}

// resolveRange defaults to yesterday when no start is given and to a
// single-day run when no end is given.
func resolveRange(startFlag, endFlag string) (ingest.Day, ingest.Day, error) {
	if startFlag == "" {
		day := ingest.DayOf(time.Now().UTC().AddDate(0, 0, -1))
		return day, day, nil
	}
	start, err := ingest.ParseDay(startFlag)
	if err != nil {
		return ingest.Day{}, ingest.Day{}, err
	}
	if endFlag == "" {
		return start, start, nil
	}
	end, err := ingest.ParseDay(endFlag)
	if err != nil {
		return ingest.Day{}, ingest.Day{}, err
	}
	return start, end, nil
}

func printReport(report ingest.RunReport) {
	days := make([]string, 0, len(report.PerDay))
	for day := range report.PerDay {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		res := report.PerDay[day]
		if res.Err != nil {
			slog.Error("day result", "day", day, "error", res.Err)
		} else {
			slog.Info("day result", "day", day, "documents", res.Count)
		}
	}
	slog.Info("run summary",
		"days", len(days),
		"failed", len(report.FailedDays()),
		"documents", report.Documents(),
	)
}

// invalidateQueryCache drops cached query answers after new documents land
// so the serving layer does not keep answering from stale retrievals. Redis
// being down only means colder caches, never a failed run.
func invalidateQueryCache(ctx context.Context, cfg *config.Config, report ingest.RunReport) {
	if report.Documents() == 0 {
		return
	}
	rdb, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Debug("redis unavailable, skipping query cache invalidation", "error", err)
		return
	}
	defer rdb.Close()
	deleted, err := rdb.FlushByPattern(ctx, query.KeyPrefix+"*")
	if err != nil {
		slog.Warn("query cache invalidation incomplete", "deleted", deleted, "error", err)
		return
	}
	slog.Info("query cache invalidated", "deleted", deleted)
}
