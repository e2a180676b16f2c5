package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/lysyi3m/rss-buddy/app/feed"
)

const globalCriteriaKey = "global_filter_criteria"

var _ feed.DecisionCacheInterface = (*Store)(nil)

// Store is the decision cache: per feed URL, the GUIDs previously classified
// as passed or failed together with the criteria that produced them.
// Lifecycle: load at start, reconcile, mutate in memory, save once at the
// end of a successful run.
type Store struct {
	path           string
	globalCriteria string
	feeds          map[string]*feedEntry
	mu             sync.RWMutex
}

type feedEntry struct {
	filterCriteria string
	passed         map[string]bool
	failed         map[string]bool
}

type feedEntryJSON struct {
	FilterCriteria  string   `json:"filter_criteria"`
	PassedItemGUIDs []string `json:"passed_item_guids"`
	FailedItemGUIDs []string `json:"failed_item_guids"`
}

// Load reads the state file. A missing or corrupt file yields an empty
// store (full reclassification), never an error.
func Load(path string) *Store {
	store := &Store{
		path:  path,
		feeds: make(map[string]*feedEntry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read state file, starting empty", "path", path, "error", err)
		}
		return store
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("State file is corrupt, starting empty", "path", path, "error", err)
		return store
	}

	for key, value := range raw {
		if key == globalCriteriaKey {
			if err := json.Unmarshal(value, &store.globalCriteria); err != nil {
				slog.Warn("Invalid global criteria in state file, starting empty", "path", path, "error", err)
				return &Store{path: path, feeds: make(map[string]*feedEntry)}
			}
			continue
		}

		var entry feedEntryJSON
		if err := json.Unmarshal(value, &entry); err != nil {
			slog.Warn("Invalid feed entry in state file, skipping", "feed_url", key, "error", err)
			continue
		}

		store.feeds[key] = &feedEntry{
			filterCriteria: entry.FilterCriteria,
			passed:         toSet(entry.PassedItemGUIDs),
			failed:         toSet(entry.FailedItemGUIDs),
		}
	}

	slog.Debug("State loaded", "path", path, "feeds", len(store.feeds))
	return store
}

// Reconcile invalidates stale decisions before any lookups. A changed
// global criteria clears the whole cache; a changed per-feed criteria
// clears that feed's entry only. Feeds absent from the current credential
// set are left untouched.
func (s *Store) Reconcile(globalCriteria string, criteriaByURL map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.globalCriteria != globalCriteria {
		if len(s.feeds) > 0 {
			slog.Info("Global filter criteria changed, clearing decision cache", "feeds", len(s.feeds))
		}
		s.feeds = make(map[string]*feedEntry)
		s.globalCriteria = globalCriteria
		return
	}

	for url, criteria := range criteriaByURL {
		entry, ok := s.feeds[url]
		if !ok {
			continue
		}
		if entry.filterCriteria != criteria {
			slog.Info("Feed filter criteria changed, clearing its decisions", "feed_url", url)
			delete(s.feeds, url)
		}
	}
}

// PreviousResult answers whether the item was already decided for this feed.
func (s *Store) PreviousResult(feedURL, itemGUID string) feed.CacheResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.feeds[feedURL]
	if !ok {
		return feed.CacheUnknown
	}
	if entry.passed[itemGUID] {
		return feed.CachePassed
	}
	if entry.failed[itemGUID] {
		return feed.CacheFailed
	}
	return feed.CacheUnknown
}

// RecordFeedResult replaces the feed's entry wholesale; the latest
// processing pass is authoritative for that feed's slice of the cache.
func (s *Store) RecordFeedResult(feedURL, filterCriteria string, passedGUIDs, failedGUIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feeds[feedURL] = &feedEntry{
		filterCriteria: filterCriteria,
		passed:         toSet(passedGUIDs),
		failed:         toSet(failedGUIDs),
	}
}

// Save writes the state atomically (temp file + rename), so a crash mid-run
// leaves the previous file intact. A write failure is surfaced to the
// caller; swallowing it would silently force reclassification on every run.
func (s *Store) Save() error {
	s.mu.RLock()
	payload := make(map[string]any, len(s.feeds)+1)
	payload[globalCriteriaKey] = s.globalCriteria
	for url, entry := range s.feeds {
		payload[url] = feedEntryJSON{
			FilterCriteria:  entry.filterCriteria,
			PassedItemGUIDs: toSorted(entry.passed),
			FailedItemGUIDs: toSorted(entry.failed),
		}
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	slog.Debug("State saved", "path", s.path, "feeds", len(s.feeds))
	return nil
}

// FeedCount reports how many feeds have recorded decisions.
func (s *Store) FeedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.feeds)
}

func toSet(guids []string) map[string]bool {
	set := make(map[string]bool, len(guids))
	for _, guid := range guids {
		set[guid] = true
	}
	return set
}

func toSorted(set map[string]bool) []string {
	guids := make([]string, 0, len(set))
	for guid := range set {
		guids = append(guids, guid)
	}
	sort.Strings(guids)
	return guids
}
