package feed

import (
	"strings"
	"testing"
	"time"
)

func digestMembers() []Item {
	day := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	return []Item{
		{GUID: "m2", Title: "Second Story", Link: "https://example.com/2", Description: "Later story", PublishedAt: day.Add(18 * time.Hour)},
		{GUID: "m1", Title: "First Story", Link: "https://example.com/1", Description: "Earlier story", PublishedAt: day.Add(9 * time.Hour)},
	}
}

func TestNewDigestItem_TitleAndDate(t *testing.T) {
	members := digestMembers()
	digest := NewDigestItem(members[0].PublishedAt, members)

	if digest.Title != "Daily Digest for 15 June 2023" {
		t.Errorf("Unexpected digest title: %q", digest.Title)
	}

	expected := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	if !digest.PublishedAt.Equal(expected) {
		t.Errorf("Expected midnight UTC pub date, got %v", digest.PublishedAt)
	}
}

func TestNewDigestItem_Deterministic(t *testing.T) {
	members := digestMembers()

	first := NewDigestItem(members[0].PublishedAt, members)
	second := NewDigestItem(members[0].PublishedAt, members)

	if first.GUID != second.GUID {
		t.Errorf("Expected identical membership to reproduce the GUID, got %q and %q", first.GUID, second.GUID)
	}
	if first.Description != second.Description {
		t.Error("Expected identical membership to reproduce the description")
	}
}

func TestNewDigestItem_MembershipChangesGUID(t *testing.T) {
	members := digestMembers()
	full := NewDigestItem(members[0].PublishedAt, members)
	partial := NewDigestItem(members[0].PublishedAt, members[:1])

	if full.GUID == partial.GUID {
		t.Error("Expected membership change to change the GUID")
	}

	// Same size, different member
	swapped := make([]Item, len(members))
	copy(swapped, members)
	swapped[1].GUID = "m3"
	other := NewDigestItem(members[0].PublishedAt, swapped)
	if full.GUID == other.GUID {
		t.Error("Expected swapped member to change the GUID even with equal count")
	}
}

func TestNewDigestItem_GUIDOrderIndependent(t *testing.T) {
	members := digestMembers()
	reversed := []Item{members[1], members[0]}

	a := NewDigestItem(members[0].PublishedAt, members)
	b := NewDigestItem(members[0].PublishedAt, reversed)

	if a.GUID != b.GUID {
		t.Errorf("Expected GUID to depend on sorted membership, got %q and %q", a.GUID, b.GUID)
	}
}

func TestNewDigestItem_GUIDFormat(t *testing.T) {
	members := digestMembers()
	digest := NewDigestItem(members[0].PublishedAt, members)

	if !strings.HasPrefix(digest.GUID, "daily-digest-2023-06-15-") {
		t.Errorf("Unexpected GUID format: %q", digest.GUID)
	}
}

func TestNewDigestItem_Description(t *testing.T) {
	members := digestMembers()
	digest := NewDigestItem(members[0].PublishedAt, members)

	if !strings.Contains(digest.Description, `<a href="https://example.com/2">Second Story</a>`) {
		t.Errorf("Expected anchor for member, got %q", digest.Description)
	}

	// Oldest member last
	newest := strings.Index(digest.Description, "Second Story")
	oldest := strings.Index(digest.Description, "First Story")
	if newest == -1 || oldest == -1 || newest > oldest {
		t.Errorf("Expected oldest member last in description: %q", digest.Description)
	}
}

func TestTruncateDescription(t *testing.T) {
	long := strings.Repeat("a", 250)
	truncated := truncateDescription(long, 200)

	if len([]rune(truncated)) != 203 {
		t.Errorf("Expected 200 runes plus ellipsis, got %d", len([]rune(truncated)))
	}
	if !strings.HasSuffix(truncated, "...") {
		t.Errorf("Expected ellipsis suffix, got %q", truncated)
	}

	short := "short description"
	if got := truncateDescription(short, 200); got != short {
		t.Errorf("Expected short description unchanged, got %q", got)
	}
}

func TestTruncateDescription_StripsMarkup(t *testing.T) {
	marked := "<p>First paragraph</p><p>Second <b>bold</b> paragraph</p>"
	got := truncateDescription(marked, 200)

	if strings.ContainsAny(got, "<>") {
		t.Errorf("Expected markup stripped, got %q", got)
	}
	if got != "First paragraph Second bold paragraph" {
		t.Errorf("Unexpected stripped description: %q", got)
	}
}
