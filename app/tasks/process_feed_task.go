package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/lysyi3m/rss-buddy/app/feed"
	"github.com/lysyi3m/rss-buddy/app/output"
	"github.com/lysyi3m/rss-buddy/app/state"
)

// ProcessFeedTask runs the whole pipeline for a single feed: fetch, optional
// content extraction, classification with the decision cache, digest
// assembly, rendering, and finally recording the feed's slice of the cache.
// The state file itself is written once by main after every task joins.
type ProcessFeedTask struct {
	Task
	Credentials *feed.Credentials
	httpClient  *http.Client
	fetcher     *feed.Fetcher
	extractor   *feed.ContentExtractor
	processor   *feed.Processor
	filterer    feed.FiltererInterface
	assembler   *feed.Assembler
	generator   *output.Generator
	pages       *output.Pages
	store       *state.Store
	outputDir   string
	userAgent   string

	// Set on success, collected by main for the index page
	Summary *output.FeedSummary
}

func NewProcessFeedTask(credentials *feed.Credentials, httpClient *http.Client,
	fetcher *feed.Fetcher, extractor *feed.ContentExtractor, processor *feed.Processor,
	filterer feed.FiltererInterface, assembler *feed.Assembler, generator *output.Generator,
	pages *output.Pages, store *state.Store, outputDir, userAgent string) *ProcessFeedTask {
	return &ProcessFeedTask{
		Task:        NewTask(TaskTypeProcessFeed, credentials.Name),
		Credentials: credentials,
		httpClient:  httpClient,
		fetcher:     fetcher,
		extractor:   extractor,
		processor:   processor,
		filterer:    filterer,
		assembler:   assembler,
		generator:   generator,
		pages:       pages,
		store:       store,
		outputDir:   outputDir,
		userAgent:   userAgent,
	}
}

func (t *ProcessFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Credentials.Settings.Enabled {
		slog.Debug("Feed disabled, skipping", "feed", t.FeedName)
		return nil
	}

	f, err := t.fetcher.Run(ctx, *t.Credentials)
	if err != nil {
		var fetchErr *feed.FetchError
		if errors.As(err, &fetchErr) {
			// A broken feed never fails the run, only this feed
			slog.Error("Feed fetch failed, skipping this run", "feed", t.FeedName, "status", fetchErr.StatusCode)
			return nil
		}
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	if t.Credentials.Settings.ExtractContent {
		t.extractContent(ctx, f)
	}

	processed := t.processor.Run(ctx, f, t.filterer)
	outputFeed := t.assembler.Run(processed)

	if err := t.writeFeed(outputFeed); err != nil {
		return err
	}

	summary, err := t.pages.WriteFeedPage(outputFeed)
	if err != nil {
		return fmt.Errorf("failed to write feed page: %w", err)
	}
	t.Summary = &summary

	t.store.RecordFeedResult(t.Credentials.URL, t.Credentials.FilterCriteria,
		sortedGUIDs(processed.PassedItemGUIDs), sortedGUIDs(processed.FailedItemGUIDs))

	digestCount := 0
	for _, item := range outputFeed.Items {
		if item.IsDigest() {
			digestCount++
		}
	}

	slog.Info("Task completed",
		"type", "ProcessFeed",
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"total", len(f.Items),
		"passed", len(processed.PassedItemGUIDs),
		"failed", len(processed.FailedItemGUIDs),
		"digests", digestCount)

	return nil
}

// extractContent swaps teaser descriptions for the readable article body
// before classification. Items already decided in the cache are skipped;
// their description never reaches the classifier again. Extraction failures
// degrade to the original description.
func (t *ProcessFeedTask) extractContent(ctx context.Context, f *feed.Feed) {
	for i := range f.Items {
		if t.store.PreviousResult(f.Credentials.URL, f.Items[i].GUID) != feed.CacheUnknown {
			continue
		}
		if f.Items[i].Link == "" {
			continue
		}

		data, err := t.fetchPage(ctx, f.Items[i].Link)
		if err != nil {
			slog.Debug("Page fetch failed, keeping original description", "feed", t.FeedName, "link", f.Items[i].Link, "error", err)
			continue
		}

		content, err := t.extractor.Run(data)
		if err != nil {
			slog.Debug("Content extraction failed, keeping original description", "feed", t.FeedName, "link", f.Items[i].Link, "error", err)
			continue
		}

		f.Items[i].Description = content
	}
}

func (t *ProcessFeedTask) fetchPage(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (t *ProcessFeedTask) writeFeed(outputFeed *feed.OutputFeed) error {
	rss, err := t.generator.Run(outputFeed)
	if err != nil {
		return fmt.Errorf("failed to generate RSS: %w", err)
	}

	if err := os.MkdirAll(t.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(t.outputDir, t.Credentials.Name+".xml")
	if err := os.WriteFile(path, []byte(rss), 0o644); err != nil {
		return fmt.Errorf("failed to write feed file: %w", err)
	}

	return nil
}

func sortedGUIDs(set map[string]bool) []string {
	guids := make([]string, 0, len(set))
	for guid := range set {
		guids = append(guids, guid)
	}
	sort.Strings(guids)
	return guids
}
