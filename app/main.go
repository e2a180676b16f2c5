package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/rss-buddy/app/cfg"
	"github.com/lysyi3m/rss-buddy/app/classifier"
	"github.com/lysyi3m/rss-buddy/app/feed"
	"github.com/lysyi3m/rss-buddy/app/output"
	"github.com/lysyi3m/rss-buddy/app/state"
	"github.com/lysyi3m/rss-buddy/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting RSS Buddy", "version", appCfg.Version, "days_lookback", appCfg.DaysLookback, "workers", appCfg.WorkerCount)

	credentialsCache := feed.NewCredentialsCache(appCfg.FeedsDir)
	if err := credentialsCache.Run(); err != nil {
		slog.Error("Failed to load feed credentials", "error", err)
		os.Exit(1)
	}

	enabled := credentialsCache.GetEnabled()
	if len(enabled) == 0 {
		slog.Warn("No enabled feeds found, nothing to do", "feeds_dir", appCfg.FeedsDir)
		return
	}
	slog.Info("Feed credentials loaded", "total", len(credentialsCache.GetAll()), "enabled", len(enabled))

	// Load the decision cache and drop decisions made under other criteria
	store := state.Load(appCfg.StateFile)
	store.Reconcile(appCfg.GlobalFilterCriteria, credentialsCache.CriteriaByURL())
	slog.Info("Decision cache ready", "path", appCfg.StateFile, "feeds", store.FeedCount())

	httpClient := &http.Client{Timeout: 60 * time.Second}
	parser := feed.NewParser()
	fetcher := feed.NewFetcher(httpClient, parser, appCfg.UserAgent)
	extractor := feed.NewContentExtractor()
	processor := feed.NewProcessor(appCfg.DaysLookback)
	assembler := feed.NewAssembler()
	generator := output.NewGenerator()
	pages := output.NewPages(appCfg.OutputDir)
	cls := classifier.New(appCfg.AnthropicAPIKey, appCfg.Model)
	filterer := feed.NewFilterer(store, cls, appCfg.GlobalFilterCriteria)

	taskList := make([]tasks.TaskInterface, 0, len(enabled))
	processTasks := make([]*tasks.ProcessFeedTask, 0, len(enabled))
	for _, credentials := range enabled {
		task := tasks.NewProcessFeedTask(credentials, httpClient, fetcher, extractor,
			processor, filterer, assembler, generator, pages, store,
			appCfg.OutputDir, appCfg.UserAgent)
		taskList = append(taskList, task)
		processTasks = append(processTasks, task)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := tasks.NewRunner(appCfg.WorkerCount)
	runner.Run(ctx, taskList)

	if ctx.Err() != nil {
		// Leave the previously persisted state untouched on cancellation
		slog.Warn("Run cancelled, state not saved")
		os.Exit(1)
	}

	// Single atomic write after all workers join. A failure here is fatal:
	// losing the cache silently would force reclassification on every run.
	if err := store.Save(); err != nil {
		slog.Error("Failed to save state", "error", err)
		os.Exit(1)
	}

	summaries := make([]output.FeedSummary, 0, len(processTasks))
	for _, task := range processTasks {
		if task.Summary != nil {
			summaries = append(summaries, *task.Summary)
		}
	}
	if err := pages.WriteIndex(summaries); err != nil {
		slog.Error("Failed to write index pages", "error", err)
		os.Exit(1)
	}

	slog.Info("RSS processing complete", "feeds_processed", len(summaries), "feeds_total", len(enabled))
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
