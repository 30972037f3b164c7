package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
	"github.com/sadanews/sada/internal/models"
)

// RSSAdapter pulls candidates from a list of RSS/Atom feeds.
type RSSAdapter struct {
	client   *resty.Client
	parser   *gofeed.Parser
	feedURLs []string
}

func NewRSSAdapter(feedURLs []string, timeout time.Duration) *RSSAdapter {
	return &RSSAdapter{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(2).
			SetRetryWaitTime(2 * time.Second),
		parser:   gofeed.NewParser(),
		feedURLs: feedURLs,
	}
}

func (a *RSSAdapter) Name() string { return "RSS" }

// Fetch retrieves every configured feed. Individual feed failures are
// collected; the adapter only errors when no feed produced anything.
func (a *RSSAdapter) Fetch(ctx context.Context) ([]models.Candidate, error) {
	var candidates []models.Candidate
	var errs []error

	for _, url := range a.feedURLs {
		items, err := a.fetchFeed(ctx, url)
		if err != nil {
			errs = append(errs, fmt.Errorf("feed %s: %w", url, err))
			continue
		}
		candidates = append(candidates, items...)
	}

	if len(candidates) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("all %d feeds failed, first error: %w", len(errs), errs[0])
	}
	return candidates, nil
}

func (a *RSSAdapter) fetchFeed(ctx context.Context, url string) ([]models.Candidate, error) {
	resp, err := a.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode())
	}

	feed, err := a.parser.ParseString(string(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	source := feed.Title
	if source == "" {
		source = url
	}

	candidates := make([]models.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		candidates = append(candidates, mapFeedItem(item, source))
	}
	return candidates, nil
}

func mapFeedItem(item *gofeed.Item, source string) models.Candidate {
	c := models.Candidate{
		Title:        strings.TrimSpace(item.Title),
		Content:      firstNonEmpty(item.Content, item.Description),
		RawBody:      firstNonEmpty(item.Content, item.Description),
		Source:       source,
		OriginalLink: item.Link,
		Date:         time.Now(),
	}

	if item.PublishedParsed != nil {
		c.Date = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		c.Date = *item.UpdatedParsed
	}

	if item.Image != nil {
		c.Image = item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") {
			c.EnclosureURL = enc.URL
			break
		}
	}

	return c
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
