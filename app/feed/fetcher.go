package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultFetchTimeout = 30 * time.Second

// FetchError reports a non-success transport status. Callers skip the feed
// for this run instead of failing the whole process.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch feed %s: HTTP %d", e.URL, e.StatusCode)
}

type Fetcher struct {
	httpClient *http.Client
	parser     *Parser
	userAgent  string
}

func NewFetcher(httpClient *http.Client, parser *Parser, userAgent string) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
	}
}

func (f *Fetcher) Run(ctx context.Context, credentials Credentials) (*Feed, error) {
	timeout := defaultFetchTimeout
	if credentials.Settings.Timeout > 0 {
		timeout = time.Duration(credentials.Settings.Timeout) * time.Second
	}

	data, err := f.fetch(ctx, credentials.URL, timeout)
	if err != nil {
		return nil, err
	}

	return f.parser.Run(credentials, data)
}

func (f *Fetcher) fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
