package feed

import "context"

// ClassifierInterface is the pluggable classification step. Implementations
// may be called concurrently across feeds and items.
type ClassifierInterface interface {
	Run(ctx context.Context, item Item, criteria string) (Verdict, error)
}

// CacheResult is a memoized prior decision for a (feed, item) pair.
type CacheResult int

const (
	CacheUnknown CacheResult = iota
	CachePassed
	CacheFailed
)

// DecisionCacheInterface answers whether an item has already been decided.
// Implemented by state.Store.
type DecisionCacheInterface interface {
	PreviousResult(feedURL, itemGUID string) CacheResult
}

// FiltererInterface is the pass/fail oracle consulted by the Processor.
type FiltererInterface interface {
	IsPassed(ctx context.Context, f *Feed, item Item) bool
}
