package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lysyi3m/rss-buddy/app/feed"
)

const (
	maxRetries     = 3
	initialBackoff = time.Second
	maxBackoff     = 15 * time.Second
)

var _ feed.ClassifierInterface = (*Classifier)(nil)

// Classifier evaluates items against filter criteria through the Anthropic
// API. The verdict protocol is a single character: "1" passes, "0" fails;
// anything else is an error and the caller decides what to do with it
// (the Filterer fails open).
type Classifier struct {
	client *anthropic.Client
	model  string
}

func New(apiKey, model string) *Classifier {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Classifier{
		client: &client,
		model:  model,
	}
}

func (c *Classifier) Run(ctx context.Context, item feed.Item, criteria string) (feed.Verdict, error) {
	prompt := c.buildPrompt(item)

	var response *anthropic.Message
	err := c.retryWithBackoff(ctx, func(attemptCtx context.Context) error {
		resp, apiErr := c.client.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: 8,
			System: []anthropic.TextBlockParam{
				{Text: c.buildSystemPrompt(criteria)},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return feed.VerdictFail, fmt.Errorf("classification request failed: %w", err)
	}

	var responseText string
	for _, block := range response.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	return ParseVerdict(responseText)
}

// ParseVerdict accepts exactly "1" or "0" (surrounding whitespace ignored).
func ParseVerdict(response string) (feed.Verdict, error) {
	switch strings.TrimSpace(response) {
	case "1":
		return feed.VerdictPass, nil
	case "0":
		return feed.VerdictFail, nil
	default:
		return feed.VerdictFail, fmt.Errorf("unparseable classifier verdict: %q", response)
	}
}

func (c *Classifier) buildSystemPrompt(criteria string) string {
	return fmt.Sprintf(`You are an RSS feed filtering assistant. Your task is to evaluate RSS feed items against specific criteria.

Filter criteria:
%s

Instructions:
1. Analyze the RSS feed item provided to you
2. Determine if the item matches the filter criteria
3. Return ONLY a single integer as your response:
   - Return 1 if the item matches the criteria and deserves full display
   - Return 0 if the item does not match the criteria and should be folded into a digest

<example_response>
1
</example_response>`, criteria)
}

func (c *Classifier) buildPrompt(item feed.Item) string {
	return fmt.Sprintf(`Evaluate this RSS feed item against the filter criteria:
<item_to_filter>
Title: %s
Link: %s
Published: %s
Description: %s
</item_to_filter>`,
		item.Title, item.Link, item.PublishedAt.Format(time.RFC1123Z), item.Description)
}

func (c *Classifier) retryWithBackoff(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, time.Minute)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == maxRetries {
			break
		}

		slog.Warn("Classifier API call failed, retrying", "attempt", attempt+1, "backoff", backoff.String(), "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	return lastErr
}
