package feed

import (
	"sort"
)

// Assembler merges passed items and day-bucketed digests into one output
// sequence. Batching is by contiguous run within a calendar day (UTC): a
// passed item between two failed items of the same day closes the batch, so
// each digest stays co-located with that day's full items. Digests are
// emitted at the position their run ended, never re-sorted afterwards.
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

func (a *Assembler) Run(processed *ProcessedFeed) *OutputFeed {
	items := make([]Item, len(processed.Feed.Items))
	copy(items, processed.Feed.Items)

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})

	output := &OutputFeed{
		Credentials: processed.Feed.Credentials,
		Metadata:    processed.Feed.Metadata,
		Items:       make([]OutputItem, 0, len(items)),
	}

	var batch []Item
	var batchDay int64

	flush := func() {
		if len(batch) == 0 {
			return
		}
		digest := NewDigestItem(batch[0].PublishedAt, batch)
		output.Items = append(output.Items, OutputItem{Digest: &digest})
		batch = nil
	}

	for i := range items {
		item := items[i]

		switch {
		case processed.PassedItemGUIDs[item.GUID]:
			flush()
			output.Items = append(output.Items, OutputItem{Item: &items[i]})

		case processed.FailedItemGUIDs[item.GUID]:
			day := startOfDay(item.PublishedAt).Unix()
			if len(batch) > 0 && day != batchDay {
				flush()
			}
			batch = append(batch, item)
			batchDay = day

		default:
			// Outside the lookback window, not part of the output
		}
	}

	flush()

	return output
}
