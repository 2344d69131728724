package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

// maxPageBytes caps how much of a fetched page is read.
const maxPageBytes = 5 << 20

// WebpageFetcher downloads a page and converts it to markdown for ingestion
type WebpageFetcher struct {
	client *http.Client
	logger arbor.ILogger
}

// FetchedPage is the converted result of one page fetch
type FetchedPage struct {
	Title    string
	Markdown string
	Size     int64
}

// NewWebpageFetcher creates a new webpage fetcher
func NewWebpageFetcher(logger arbor.ILogger) *WebpageFetcher {
	return &WebpageFetcher{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Fetch downloads the page and converts its content to markdown. Script,
// style and navigation chrome are stripped before conversion.
func (f *WebpageFetcher) Fetch(ctx context.Context, url string) (*FetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "second-brain/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}

	title := f.extractTitle(doc)
	doc.Find("script, style, nav, footer, aside").Remove()

	html, err := doc.Find("body").Html()
	if err != nil {
		return nil, fmt.Errorf("failed to extract body from %s: %w", url, err)
	}

	converter := md.NewConverter(url, true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s to markdown: %w", url, err)
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return nil, fmt.Errorf("page %s produced no text content", url)
	}

	f.logger.Debug().
		Str("url", url).
		Str("title", title).
		Int("markdown_length", len(markdown)).
		Msg("Webpage fetched and converted")

	return &FetchedPage{
		Title:    title,
		Markdown: markdown,
		Size:     int64(len(body)),
	}, nil
}

func (f *WebpageFetcher) extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		if title := strings.TrimSpace(ogTitle); title != "" {
			return title
		}
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return "Untitled"
}
