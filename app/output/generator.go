package output

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/rss-buddy/app/cfg"
	"github.com/lysyi3m/rss-buddy/app/feed"
)

// Generator renders an OutputFeed as RSS 2.0. Digest entries carry a
// non-permalink GUID, a <consolidated> marker and the member article list,
// so downstream consumers can tell them apart from pass-through items.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Run(f *feed.OutputFeed) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	title := f.Metadata.Title
	if title == "" {
		title = f.Credentials.Name
	}
	g.writeElement(&buf, "title", fmt.Sprintf("%s (Processed)", title), 4)
	g.writeElement(&buf, "link", cmp.Or(f.Metadata.Link, f.Credentials.URL), 4)

	description := f.Metadata.Description
	if description == "" {
		description = fmt.Sprintf("Processed feed from %s", f.Credentials.URL)
	}
	g.writeElement(&buf, "description", description, 4)

	lastBuildDate := time.Now().In(time.Local)
	if f.Metadata.LastBuildDate != nil {
		lastBuildDate = *f.Metadata.LastBuildDate
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("RSS-Buddy/%s", cfg.Get().Version), 4)

	if f.Metadata.Language != "" {
		g.writeElement(&buf, "language", f.Metadata.Language, 4)
	}

	for _, item := range f.Items {
		if item.IsDigest() {
			g.writeDigest(&buf, item.Digest)
		} else {
			g.writeItem(&buf, item.Item)
		}
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, item *feed.Item) {
	buf.WriteString("    <item>\n")

	if item.GUID != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(item.GUID)))
		xml.EscapeText(buf, []byte(item.GUID))
		buf.WriteString("</guid>\n")
	}

	if item.Title != "" {
		g.writeElement(buf, "title", item.Title, 6)
	}

	if item.Link != "" {
		g.writeElement(buf, "link", item.Link, 6)
	}

	g.writeElement(buf, "description", cmp.Or(item.Description, "No description available"), 6)

	if !item.PublishedAt.IsZero() {
		g.writeElement(buf, "pubDate", item.PublishedAt.Format(time.RFC1123Z), 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeDigest(buf *bytes.Buffer, digest *feed.DigestItem) {
	buf.WriteString("    <item>\n")

	buf.WriteString(`      <guid isPermaLink="false">`)
	xml.EscapeText(buf, []byte(digest.GUID))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", digest.Title, 6)
	g.writeElement(buf, "description", digest.Description, 6)
	g.writeElement(buf, "pubDate", digest.PublishedAt.Format(time.RFC1123Z), 6)
	g.writeElement(buf, "consolidated", "true", 6)

	titles := make([]string, 0, len(digest.Items))
	for _, member := range digest.Items {
		titles = append(titles, member.Title)
	}
	g.writeElement(buf, "includedArticles", strings.Join(titles, ", "), 6)

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return (len(s) > 7 && s[:7] == "http://") || (len(s) > 8 && s[:8] == "https://")
}
