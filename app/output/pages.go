package output

import (
	"cmp"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/lysyi3m/rss-buddy/app/feed"
)

// Pages renders browsable HTML alongside the RSS files: one page per feed,
// an index over all of them, and JSON summaries of the run.
type Pages struct {
	outputDir string
}

type FeedSummary struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	HTMLURL      string `json:"html_url"`
	Description  string `json:"description"`
	LastUpdated  string `json:"lastUpdated"`
	RegularItems int    `json:"regularItems"`
	DigestItems  int    `json:"digestItems"`
}

type feedPageData struct {
	Title       string
	Description string
	LastUpdated string
	Items       []feedPageItem
}

type feedPageItem struct {
	Title       string
	Link        string
	Description template.HTML
	PubDate     string
	IsDigest    bool
}

type indexPageData struct {
	Feeds     []FeedSummary
	FeedCount int
	Generated string
}

func NewPages(outputDir string) *Pages {
	return &Pages{outputDir: outputDir}
}

// WriteFeedPage renders the HTML page for one output feed and returns its
// summary for the index.
func (p *Pages) WriteFeedPage(f *feed.OutputFeed) (FeedSummary, error) {
	data := feedPageData{
		Title:       cmp.Or(f.Metadata.Title, f.Credentials.Name),
		Description: f.Metadata.Description,
	}
	if f.Metadata.LastBuildDate != nil {
		data.LastUpdated = f.Metadata.LastBuildDate.Format(time.RFC1123Z)
	}

	summary := FeedSummary{
		Title:       data.Title,
		URL:         f.Credentials.Name + ".xml",
		HTMLURL:     f.Credentials.Name + ".html",
		Description: f.Metadata.Description,
		LastUpdated: data.LastUpdated,
	}

	for _, item := range f.Items {
		if item.IsDigest() {
			summary.DigestItems++
			data.Items = append(data.Items, feedPageItem{
				Title: item.Digest.Title,
				// Digest descriptions are assembled from escaped fragments
				Description: template.HTML(item.Digest.Description),
				PubDate:     item.Digest.PublishedAt.Format(time.RFC1123Z),
				IsDigest:    true,
			})
		} else {
			summary.RegularItems++
			data.Items = append(data.Items, feedPageItem{
				Title:       item.Item.Title,
				Link:        item.Item.Link,
				Description: template.HTML(template.HTMLEscapeString(item.Item.Description)),
				PubDate:     item.Item.PublishedAt.Format(time.RFC1123Z),
			})
		}
	}

	path := filepath.Join(p.outputDir, f.Credentials.Name+".html")
	if err := p.renderToFile(path, feedPageTmpl, data); err != nil {
		return FeedSummary{}, err
	}

	return summary, nil
}

// WriteIndex renders the index page plus feeds.json and metadata.json.
func (p *Pages) WriteIndex(summaries []FeedSummary) error {
	data := indexPageData{
		Feeds:     summaries,
		FeedCount: len(summaries),
		Generated: time.Now().UTC().Format(time.RFC1123Z),
	}

	if err := p.renderToFile(filepath.Join(p.outputDir, "index.html"), indexPageTmpl, data); err != nil {
		return err
	}

	feedsJSON, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal feeds summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(p.outputDir, "feeds.json"), feedsJSON, 0o644); err != nil {
		return fmt.Errorf("failed to write feeds.json: %w", err)
	}

	metadata := map[string]any{
		"last_processed": time.Now().UTC().Format(time.RFC3339),
		"feed_count":     len(summaries),
	}
	metadataJSON, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(p.outputDir, "metadata.json"), metadataJSON, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata.json: %w", err)
	}

	return nil
}

func (p *Pages) renderToFile(path string, tmpl *template.Template, data any) error {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create page file: %w", err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}

	return nil
}

var feedPageTmpl = template.Must(template.New("feed").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; line-height: 1.6; }
h1 { border-bottom: 1px solid #eee; padding-bottom: 10px; }
a { color: #0366d6; text-decoration: none; }
a:hover { text-decoration: underline; }
.article { margin: 20px 0; padding: 15px; background-color: #f9f9f9; border-radius: 5px; }
.digest { margin: 30px 0; padding: 20px; background-color: #e6f7ff; border-left: 4px solid #1890ff; border-radius: 5px; }
.article-meta { font-size: 0.8rem; color: #666; margin-bottom: 10px; }
.back-link { display: inline-block; margin-bottom: 20px; padding: 5px 10px; background-color: #f0f0f0; border-radius: 3px; }
</style>
</head>
<body>
<a href="index.html" class="back-link">Back to all feeds</a>
<h1>{{.Title}}</h1>
<p>{{.Description}}</p>
<p><small>Last updated: {{.LastUpdated}}</small></p>
<div>
{{range .Items}}{{if .IsDigest}}<div class="digest">
<h2>{{.Title}}</h2>
<div class="article-meta">{{.PubDate}}</div>
<div>{{.Description}}</div>
</div>
{{else}}<div class="article">
<h2><a href="{{.Link}}">{{.Title}}</a></h2>
<div class="article-meta">{{.PubDate}}</div>
<div>{{.Description}}</div>
</div>
{{end}}{{end}}</div>
</body>
</html>
`))

var indexPageTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>rss-buddy processed feeds</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; line-height: 1.6; }
h1 { border-bottom: 1px solid #eee; padding-bottom: 10px; }
ul { list-style-type: none; padding: 0; }
li { margin: 10px 0; padding: 10px; background-color: #f5f5f5; border-radius: 5px; }
a { color: #0366d6; text-decoration: none; }
a:hover { text-decoration: underline; }
.feed-description { font-size: 0.9rem; color: #666; margin-top: 5px; }
.updated { font-size: 0.8rem; color: #888; margin-top: 5px; }
.explanation { margin: 20px 0; padding: 15px; background-color: #f9f9f9; border-radius: 5px; border-left: 4px solid #4caf50; }
</style>
</head>
<body>
<h1>rss-buddy Processed Feeds</h1>
<div class="explanation">
<p>These feeds are processed with AI to prioritize content:</p>
<ul style="list-style-type: disc; padding-left: 20px;">
<li><strong>Important articles</strong> are shown individually in full</li>
<li><strong>Other articles</strong> are consolidated into daily digest items</li>
</ul>
</div>
<ul>
{{range .Feeds}}<li>
<a href="{{.HTMLURL}}">{{.Title}}</a>
<div class="feed-description">{{.Description}}</div>
<div class="feed-description">{{.RegularItems}} focused articles and {{.DigestItems}} digest items</div>
<div class="updated">Last updated: {{.LastUpdated}}</div>
</li>
{{end}}</ul>
<div class="updated">Generated: {{.Generated}} ({{.FeedCount}} feeds)</div>
</body>
</html>
`))
