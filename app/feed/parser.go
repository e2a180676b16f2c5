package feed

import (
	"bytes"
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(credentials Credentials, data []byte) (*Feed, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := Metadata{
		Title:       parsed.Title,
		Link:        parsed.Link,
		Description: parsed.Description,
		Language:    parsed.Language,
	}

	if parsed.UpdatedParsed != nil {
		metadata.LastBuildDate = parsed.UpdatedParsed
	} else if parsed.PublishedParsed != nil {
		metadata.LastBuildDate = parsed.PublishedParsed
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		items = append(items, p.normalizeItem(item))
	}

	return &Feed{
		Credentials: credentials,
		Metadata:    metadata,
		Items:       items,
	}, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:        cmp.Or(item.GUID, item.Link),
		Title:       item.Title,
		Link:        item.Link,
		Description: cmp.Or(item.Description, item.Content),
	}

	// Items without an ID or link get a stable hash of link+title
	if normalized.GUID == "" {
		normalized.GUID = p.generateGUID(normalized)
	}

	if item.PublishedParsed != nil {
		normalized.PublishedAt = item.PublishedParsed.UTC()
	} else if published := cmp.Or(item.Published, item.Updated); published != "" {
		// gofeed gave up on the raw date, run it through our fallbacks
		if t, ok := NormalizeDate(published); ok {
			normalized.PublishedAt = t
		}
	} else if item.UpdatedParsed != nil {
		normalized.PublishedAt = item.UpdatedParsed.UTC()
	}

	return normalized
}

func (p *Parser) generateGUID(item Item) string {
	content := fmt.Sprintf("%s|%s", item.Link, item.Title)

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
