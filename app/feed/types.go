package feed

import (
	"time"
)

// Feed processing types

type Metadata struct {
	Title         string
	Link          string
	Description   string
	Language      string
	LastBuildDate *time.Time
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	PublishedAt time.Time // UTC; zero value means the date could not be parsed
}

type Feed struct {
	Credentials Credentials
	Metadata    Metadata
	Items       []Item
}

// ProcessedFeed partitions the GUIDs of items inside the lookback window.
// The two sets are disjoint; items outside the window appear in neither.
type ProcessedFeed struct {
	Feed            *Feed
	PassedItemGUIDs map[string]bool
	FailedItemGUIDs map[string]bool
}

// DigestItem aggregates a contiguous same-day run of failed items.
type DigestItem struct {
	GUID        string
	Title       string
	Description string
	PublishedAt time.Time
	Items       []Item
}

// OutputItem is either a pass-through original or a synthesized digest.
// Exactly one of Item and Digest is set.
type OutputItem struct {
	Item   *Item
	Digest *DigestItem
}

func (o OutputItem) IsDigest() bool {
	return o.Digest != nil
}

type OutputFeed struct {
	Credentials Credentials
	Metadata    Metadata
	Items       []OutputItem
}

// Configuration types

type Credentials struct {
	Name           string             `yaml:"-"` // Derived from filename (without .yml extension)
	URL            string             `yaml:"url"`
	FilterCriteria string             `yaml:"filter_criteria"`
	Settings       CredentialSettings `yaml:"settings"`
}

type CredentialSettings struct {
	Enabled        bool `yaml:"enabled"`
	ExtractContent bool `yaml:"extract_content"` // enable content extraction
	Timeout        int  `yaml:"timeout"`         // seconds
}

// Verdict is the classifier outcome for a single item.
type Verdict int

const (
	VerdictFail Verdict = iota
	VerdictPass
)
