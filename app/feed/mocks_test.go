package feed

import (
	"context"
	"errors"
)

// Deterministic classifier for tests: verdicts keyed by item GUID, with an
// optional forced error and a call counter.
type mockClassifier struct {
	verdicts map[string]Verdict
	err      error
	calls    int
}

func (m *mockClassifier) Run(ctx context.Context, item Item, criteria string) (Verdict, error) {
	m.calls++
	if m.err != nil {
		return VerdictFail, m.err
	}
	verdict, ok := m.verdicts[item.GUID]
	if !ok {
		return VerdictFail, errors.New("no verdict configured")
	}
	return verdict, nil
}

type mockCache struct {
	results map[string]CacheResult // keyed by feedURL + "|" + itemGUID
}

func (m *mockCache) PreviousResult(feedURL, itemGUID string) CacheResult {
	return m.results[feedURL+"|"+itemGUID]
}

// funcFilterer adapts a plain predicate into a FiltererInterface.
type funcFilterer func(item Item) bool

func (f funcFilterer) IsPassed(ctx context.Context, fd *Feed, item Item) bool {
	return f(item)
}
