package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const (
	httpTimeout  = 15 * time.Second
	maxPageBytes = 4 << 20
	userAgent    = "Mozilla/5.0 (compatible; ScholarshipRadar/1.0)"
)

// Fetcher downloads and parses HTML pages.
type Fetcher struct {
	client *http.Client
}

// NewFetcher constructs a fetcher. A nil client gets a default with a
// timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}
	return &Fetcher{client: client}
}

// Fetch GETs pageURL, decodes it to UTF-8 and parses the response as HTML.
// Non-200 responses are errors.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s returned %d", pageURL, resp.StatusCode)
	}

	// Many Korean boards still serve EUC-KR.
	body, err := charset.NewReader(io.LimitReader(resp.Body, maxPageBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	doc, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}
