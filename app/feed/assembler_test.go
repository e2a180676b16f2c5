package feed

import (
	"testing"
	"time"
)

func assemblerFeed(items []Item, passed, failed []string) *ProcessedFeed {
	processed := &ProcessedFeed{
		Feed: &Feed{
			Credentials: Credentials{Name: "test", URL: "https://example.com/feed.xml"},
			Items:       items,
		},
		PassedItemGUIDs: make(map[string]bool),
		FailedItemGUIDs: make(map[string]bool),
	}
	for _, guid := range passed {
		processed.PassedItemGUIDs[guid] = true
	}
	for _, guid := range failed {
		processed.FailedItemGUIDs[guid] = true
	}
	return processed
}

// Concrete scenario from the processing contract: a passed item, two failed
// items of the same day, then an older passed item must come out as
// [pass, digest(2), pass] in walk order.
func TestAssembler_Run_DigestInterleaved(t *testing.T) {
	day1 := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2023, 6, 14, 0, 0, 0, 0, time.UTC)

	items := []Item{
		{GUID: "id1", Title: "One", PublishedAt: day1.Add(20 * time.Hour)},
		{GUID: "id2", Title: "Two", PublishedAt: day1.Add(15 * time.Hour)},
		{GUID: "id3", Title: "Three", PublishedAt: day1.Add(10 * time.Hour)},
		{GUID: "id4", Title: "Four", PublishedAt: day2.Add(12 * time.Hour)},
	}

	assembler := NewAssembler()
	outputFeed := assembler.Run(assemblerFeed(items, []string{"id1", "id4"}, []string{"id2", "id3"}))

	if len(outputFeed.Items) != 3 {
		t.Fatalf("Expected 3 output items, got %d", len(outputFeed.Items))
	}

	if outputFeed.Items[0].IsDigest() || outputFeed.Items[0].Item.GUID != "id1" {
		t.Errorf("Expected id1 first, got %+v", outputFeed.Items[0])
	}

	if !outputFeed.Items[1].IsDigest() {
		t.Fatalf("Expected digest second, got %+v", outputFeed.Items[1])
	}
	digest := outputFeed.Items[1].Digest
	if len(digest.Items) != 2 || digest.Items[0].GUID != "id2" || digest.Items[1].GUID != "id3" {
		t.Errorf("Expected digest members [id2 id3] in descending order, got %+v", digest.Items)
	}

	if outputFeed.Items[2].IsDigest() || outputFeed.Items[2].Item.GUID != "id4" {
		t.Errorf("Expected id4 last, got %+v", outputFeed.Items[2])
	}
}

// Three days, day 2 mixed: output must stay in strict descending-time walk
// order with digests at the position their run ended, never grouped at the
// end.
func TestAssembler_Run_MultiDayOrdering(t *testing.T) {
	day := func(d, h int) time.Time {
		return time.Date(2023, 6, d, h, 0, 0, 0, time.UTC)
	}

	items := []Item{
		{GUID: "d3-pass", PublishedAt: day(17, 10)},
		{GUID: "d3-fail", PublishedAt: day(17, 9)},
		{GUID: "d2-pass", PublishedAt: day(16, 12)},
		{GUID: "d2-fail-a", PublishedAt: day(16, 11)},
		{GUID: "d2-fail-b", PublishedAt: day(16, 10)},
		{GUID: "d1-fail", PublishedAt: day(15, 8)},
	}

	assembler := NewAssembler()
	outputFeed := assembler.Run(assemblerFeed(items,
		[]string{"d3-pass", "d2-pass"},
		[]string{"d3-fail", "d2-fail-a", "d2-fail-b", "d1-fail"}))

	expected := []string{"d3-pass", "digest:2023-06-17", "d2-pass", "digest:2023-06-16", "digest:2023-06-15"}

	if len(outputFeed.Items) != len(expected) {
		t.Fatalf("Expected %d output items, got %d", len(expected), len(outputFeed.Items))
	}

	for i, want := range expected {
		got := outputFeed.Items[i]
		if got.IsDigest() {
			day := got.Digest.PublishedAt.Format("2006-01-02")
			if want != "digest:"+day {
				t.Errorf("Position %d: expected %s, got digest for %s", i, want, day)
			}
		} else {
			if want != got.Item.GUID {
				t.Errorf("Position %d: expected %s, got %s", i, want, got.Item.GUID)
			}
		}
	}
}

// A passed item between failed items of the same day closes the batch:
// batching is by contiguous run, not a global group-by-day.
func TestAssembler_Run_PassedItemSplitsSameDayRun(t *testing.T) {
	day := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)

	items := []Item{
		{GUID: "fail-late", PublishedAt: day.Add(20 * time.Hour)},
		{GUID: "pass-mid", PublishedAt: day.Add(15 * time.Hour)},
		{GUID: "fail-early", PublishedAt: day.Add(10 * time.Hour)},
	}

	assembler := NewAssembler()
	outputFeed := assembler.Run(assemblerFeed(items, []string{"pass-mid"}, []string{"fail-late", "fail-early"}))

	if len(outputFeed.Items) != 3 {
		t.Fatalf("Expected 3 output items (two single-member digests), got %d", len(outputFeed.Items))
	}

	if !outputFeed.Items[0].IsDigest() || len(outputFeed.Items[0].Digest.Items) != 1 {
		t.Errorf("Expected single-member digest first, got %+v", outputFeed.Items[0])
	}
	if outputFeed.Items[1].IsDigest() || outputFeed.Items[1].Item.GUID != "pass-mid" {
		t.Errorf("Expected pass-mid second, got %+v", outputFeed.Items[1])
	}
	if !outputFeed.Items[2].IsDigest() || len(outputFeed.Items[2].Digest.Items) != 1 {
		t.Errorf("Expected single-member digest last, got %+v", outputFeed.Items[2])
	}

	if outputFeed.Items[0].Digest.GUID == outputFeed.Items[2].Digest.GUID {
		t.Error("Expected the two same-day digests to have different GUIDs")
	}
}

func TestAssembler_Run_EmptyFeed(t *testing.T) {
	assembler := NewAssembler()
	outputFeed := assembler.Run(assemblerFeed(nil, nil, nil))

	if len(outputFeed.Items) != 0 {
		t.Errorf("Expected empty output feed, got %d items", len(outputFeed.Items))
	}
}

func TestAssembler_Run_AllPass(t *testing.T) {
	day := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)

	items := []Item{
		{GUID: "b", PublishedAt: day.Add(10 * time.Hour)},
		{GUID: "a", PublishedAt: day.Add(20 * time.Hour)},
	}

	assembler := NewAssembler()
	outputFeed := assembler.Run(assemblerFeed(items, []string{"a", "b"}, nil))

	if len(outputFeed.Items) != 2 {
		t.Fatalf("Expected 2 output items, got %d", len(outputFeed.Items))
	}
	if outputFeed.Items[0].Item.GUID != "a" || outputFeed.Items[1].Item.GUID != "b" {
		t.Error("Expected passed items in descending date order")
	}
	for _, item := range outputFeed.Items {
		if item.IsDigest() {
			t.Error("Expected zero digests when all items pass")
		}
	}
}

func TestAssembler_Run_ItemsOutsideLookbackSkipped(t *testing.T) {
	day := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)

	items := []Item{
		{GUID: "kept", PublishedAt: day.Add(10 * time.Hour)},
		{GUID: "excluded", PublishedAt: day.Add(-100 * 24 * time.Hour)},
	}

	assembler := NewAssembler()
	outputFeed := assembler.Run(assemblerFeed(items, []string{"kept"}, nil))

	if len(outputFeed.Items) != 1 {
		t.Fatalf("Expected 1 output item, got %d", len(outputFeed.Items))
	}
	if outputFeed.Items[0].Item.GUID != "kept" {
		t.Errorf("Expected only the in-window item, got %q", outputFeed.Items[0].Item.GUID)
	}
}
