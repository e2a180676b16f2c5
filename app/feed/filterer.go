package feed

import (
	"context"
	"log/slog"
	"strings"
)

var _ FiltererInterface = (*Filterer)(nil)

// Filterer asks the decision cache first and only invokes the classifier on
// unknown items, so classification cost is paid once per item ever.
type Filterer struct {
	cache          DecisionCacheInterface
	classifier     ClassifierInterface
	globalCriteria string
}

func NewFilterer(cache DecisionCacheInterface, classifier ClassifierInterface, globalCriteria string) *Filterer {
	return &Filterer{
		cache:          cache,
		classifier:     classifier,
		globalCriteria: globalCriteria,
	}
}

func (f *Filterer) IsPassed(ctx context.Context, fd *Feed, item Item) bool {
	switch f.cache.PreviousResult(fd.Credentials.URL, item.GUID) {
	case CachePassed:
		return true
	case CacheFailed:
		return false
	}

	verdict, err := f.classifier.Run(ctx, item, f.combineCriteria(fd.Credentials.FilterCriteria))
	if err != nil {
		// Fail open: never drop content because the classifier misbehaved
		slog.Error("Classifier failed, item passes the filter", "feed", fd.Credentials.Name, "guid", item.GUID, "error", err)
		return true
	}

	return verdict == VerdictPass
}

func (f *Filterer) combineCriteria(feedCriteria string) string {
	parts := make([]string, 0, 2)
	if f.globalCriteria != "" {
		parts = append(parts, f.globalCriteria)
	}
	if feedCriteria != "" {
		parts = append(parts, feedCriteria)
	}
	return strings.Join(parts, "\n\n")
}
