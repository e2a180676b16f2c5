package feed

import (
	"context"
	"log/slog"
	"time"
)

// Processor applies the lookback window and the filter oracle to partition
// a feed's items into passed and failed GUID sets. It never mutates the feed.
type Processor struct {
	lookbackDays int
	now          func() time.Time
}

func NewProcessor(lookbackDays int) *Processor {
	return &Processor{
		lookbackDays: lookbackDays,
		now:          time.Now,
	}
}

func (p *Processor) Run(ctx context.Context, f *Feed, filterer FiltererInterface) *ProcessedFeed {
	cutoff := p.now().UTC().AddDate(0, 0, -p.lookbackDays)

	processed := &ProcessedFeed{
		Feed:            f,
		PassedItemGUIDs: make(map[string]bool),
		FailedItemGUIDs: make(map[string]bool),
	}

	skipped := 0
	for _, item := range f.Items {
		// Unparsed dates are zero and land outside the window
		if !item.PublishedAt.After(cutoff) {
			skipped++
			continue
		}

		if filterer.IsPassed(ctx, f, item) {
			processed.PassedItemGUIDs[item.GUID] = true
		} else {
			processed.FailedItemGUIDs[item.GUID] = true
		}
	}

	slog.Debug("Feed processed",
		"feed", f.Credentials.Name,
		"total", len(f.Items),
		"passed", len(processed.PassedItemGUIDs),
		"failed", len(processed.FailedItemGUIDs),
		"outside_lookback", skipped)

	return processed
}
