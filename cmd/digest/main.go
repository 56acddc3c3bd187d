package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"news-digest/internal/config"
	"news-digest/internal/domain/entity"
	"news-digest/internal/infra/fetcher"
	"news-digest/internal/infra/notifier"
	"news-digest/internal/infra/renderer"
	"news-digest/internal/infra/scraper"
	"news-digest/internal/infra/summarizer"
	workerPkg "news-digest/internal/infra/worker"
	"news-digest/internal/observability/logging"
	"news-digest/internal/resilience/circuitbreaker"
	"news-digest/internal/usecase/aggregate"
	"news-digest/internal/usecase/digest"
	"news-digest/internal/usecase/extract"
)

// cliFlags holds the command line switches.
type cliFlags struct {
	schedule    bool
	dryRun      bool
	sourcesFile string
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.BoolVar(&f.schedule, "schedule", false, "stay resident and run on CRON_SCHEDULE")
	flag.BoolVar(&f.dryRun, "dry-run", false, "print the digest to stdout instead of posting it")
	flag.StringVar(&f.sourcesFile, "sources", "", "YAML feed source table (default: SOURCES_FILE or built-in sources)")
	flag.Parse()
	return f
}

func main() {
	os.Exit(run())
}

func run() int {
	flags := parseFlags()

	// .envは任意
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	logger := initLogger()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister(prometheus.DefaultRegisterer)
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		return 1
	}

	channel := workerConfig.Channel
	if flags.dryRun {
		channel = notifier.ChannelStdout
	}

	summarizerConfig := summarizer.LoadConfigFromEnv(logger)
	notifyConfig := notifier.LoadConfigFromEnv(logger, channel)
	apiKey := strings.TrimSpace(os.Getenv(summarizer.APIKeyEnv(summarizerConfig.Type)))

	// 必須の秘密情報はネットワークアクセス前に確認する
	if err := checkSecrets(summarizerConfig.Type, apiKey, channel, notifyConfig.WebhookURL); err != nil {
		logger.Error("missing required configuration", slog.Any("error", err))
		return 1
	}

	sourcesFile := flags.sourcesFile
	if sourcesFile == "" {
		sourcesFile = os.Getenv("SOURCES_FILE")
	}
	sources, err := config.ResolveSources(sourcesFile)
	if err != nil {
		logger.Error("failed to load feed sources", slog.String("file", sourcesFile), slog.Any("error", err))
		return 1
	}

	logger.Info("digest configuration loaded",
		slog.Int("sources", len(sources)),
		slog.String("channel", channel),
		slog.String("summarizer", summarizerConfig.Type),
		slog.Int("per_feed_limit", workerConfig.PerFeedLimit),
		slog.Int("max_content_chars", workerConfig.MaxContentChars),
		slog.Duration("recency_window", workerConfig.RecencyWindow),
		slog.Duration("inter_article_delay", workerConfig.InterArticleDelay),
		slog.Bool("schedule", flags.schedule))

	app, err := buildApp(logger, workerConfig, sources, summarizerConfig, apiKey, channel, notifyConfig)
	if err != nil {
		logger.Error("failed to initialize digest pipeline", slog.Any("error", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !flags.schedule {
		return runOnce(ctx, logger, app, workerConfig, workerMetrics, nil)
	}
	return runScheduled(ctx, logger, app, workerConfig, workerMetrics)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.New(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	slog.SetDefault(logger)
	return logger
}

// checkSecrets verifies the credentials a run needs before anything touches the network.
func checkSecrets(summarizerType, apiKey, channel, webhookURL string) error {
	if env := summarizer.APIKeyEnv(summarizerType); env != "" && apiKey == "" {
		return fmt.Errorf("%s is required when SUMMARIZER_TYPE=%s", env, summarizerType)
	}
	if env := notifier.WebhookEnv(channel); env != "" {
		if webhookURL == "" {
			return fmt.Errorf("%s is required when DIGEST_CHANNEL=%s", env, channel)
		}
		if err := notifier.ValidateWebhookURL(webhookURL); err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}
	return nil
}

// app bundles the wired pipeline and the breakers exposed on /health/breakers.
type app struct {
	service  *digest.Service
	breakers []*circuitbreaker.CircuitBreaker
}

type breakerSource interface {
	CircuitBreaker() *circuitbreaker.CircuitBreaker
}

func buildApp(
	logger *slog.Logger,
	cfg *workerPkg.DigestConfig,
	sources []entity.Source,
	summarizerConfig summarizer.Config,
	apiKey string,
	channel string,
	notifyConfig notifier.WebhookConfig,
) (*app, error) {
	a := &app{}

	feedFetcher := scraper.NewRSSFetcher(nil)
	aggregator := aggregate.NewService(feedFetcher, aggregate.Options{
		RecencyWindow:   cfg.RecencyWindow,
		FeedConcurrency: cfg.FeedConcurrency,
	})

	pageFetcher := fetcher.NewStaticFetcher(fetcher.LoadConfigFromEnv(logger))

	var pageRenderer extract.Renderer
	renderConfig := renderer.LoadConfigFromEnv(logger)
	if renderConfig.Enabled {
		chrome := renderer.NewChrome(renderConfig)
		pageRenderer = chrome
		a.breakers = append(a.breakers, chrome.CircuitBreaker())
		logger.Info("headless rendering enabled",
			slog.Duration("timeout", renderConfig.Timeout),
			slog.Duration("settle_delay", renderConfig.SettleDelay))
	} else {
		logger.Info("headless rendering disabled")
	}

	extractor := extract.NewExtractor(pageFetcher, pageRenderer, extract.Options{
		MaxContentChars: cfg.MaxContentChars,
	})

	sum, err := summarizer.New(summarizerConfig, apiKey)
	if err != nil {
		return nil, fmt.Errorf("create summarizer: %w", err)
	}
	if bs, ok := sum.(breakerSource); ok {
		a.breakers = append(a.breakers, bs.CircuitBreaker())
	}

	notify, err := notifier.New(channel, notifyConfig)
	if err != nil {
		return nil, fmt.Errorf("create notifier: %w", err)
	}

	a.service = digest.NewService(aggregator, extractor, sum, notify, digest.Options{
		Sources:           sources,
		PerFeedLimit:      cfg.PerFeedLimit,
		InterArticleDelay: cfg.InterArticleDelay,
		Concurrency:       cfg.ArticleConcurrency,
		Location:          cfg.Location(),
		Footer:            os.Getenv("DIGEST_FOOTER"),
	})
	return a, nil
}

// runOnce executes a single run and maps its outcome to an exit code.
// No new articles is a normal outcome.
func runOnce(ctx context.Context, logger *slog.Logger, a *app, cfg *workerPkg.DigestConfig, metrics *workerPkg.WorkerMetrics, health *workerPkg.HealthServer) int {
	_, err := runDigestJob(ctx, logger, a.service, cfg, metrics, health)
	if err != nil && !errors.Is(err, digest.ErrNoArticles) {
		return 1
	}
	return 0
}

// runScheduled keeps the process resident and runs the job on the cron schedule.
func runScheduled(ctx context.Context, logger *slog.Logger, a *app, cfg *workerPkg.DigestConfig, metrics *workerPkg.WorkerMetrics) int {
	startMetricsServer(ctx, logger, cfg.MetricsPort, a.breakers)

	healthAddr := fmt.Sprintf(":%d", cfg.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	c := cron.New(cron.WithLocation(cfg.Location()))
	_, err := c.AddFunc(cfg.CronSchedule, func() {
		_, _ = runDigestJob(ctx, logger, a.service, cfg, metrics, healthServer)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		return 1
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutdown signal received, waiting for running job")
	healthServer.SetReady(false)
	<-c.Stop().Done()
	logger.Info("worker stopped")
	return 0
}

// runDigestJob executes a single run with timeout, run id and metrics.
func runDigestJob(ctx context.Context, logger *slog.Logger, svc *digest.Service, cfg *workerPkg.DigestConfig, metrics *workerPkg.WorkerMetrics, health *workerPkg.HealthServer) (*digest.RunStats, error) {
	startTime := time.Now()
	runID := uuid.New().String()

	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()
	ctx, runLogger := logging.WithRunID(ctx, logger, runID)

	runLogger.Info("digest run started")
	stats, err := svc.Run(ctx)
	duration := time.Since(startTime)

	status := "success"
	switch {
	case errors.Is(err, digest.ErrNoArticles):
		status = "no_articles"
		runLogger.Info("no new articles today")
	case err != nil:
		status = "failure"
		runLogger.Error("digest run failed", slog.Any("error", err))
	case stats.DeliveryError != nil:
		status = "delivery_failed"
	}

	metrics.RecordRun(status, duration.Seconds())
	if stats != nil {
		metrics.RecordArticlesProcessed(stats.Articles)
	}
	if status == "success" || status == "no_articles" {
		metrics.RecordLastSuccess()
	}

	if health != nil {
		report := workerPkg.RunReport{
			RunID:      runID,
			Status:     status,
			StartedAt:  startTime.UTC(),
			DurationMS: duration.Milliseconds(),
		}
		if stats != nil {
			report.Articles = stats.Articles
			report.Delivered = stats.Delivered
		}
		if err != nil && !errors.Is(err, digest.ErrNoArticles) {
			report.Error = err.Error()
		} else if stats != nil && stats.DeliveryError != nil {
			report.Error = stats.DeliveryError.Error()
		}
		health.RecordRun(report)
	}

	if stats != nil {
		runLogger.Info("digest run finished",
			slog.String("status", status),
			slog.Int("articles", stats.Articles),
			slog.Int("no_content", stats.NoContent),
			slog.Int("summarized", stats.Summarized),
			slog.Int("summary_failed", stats.SummaryFailed),
			slog.Bool("delivered", stats.Delivered),
			slog.Duration("duration", duration))
	}
	return stats, err
}
