package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsPoster/internal/domain"
)

const rssName = "rss"

// RSSScanner reads an RSS or Atom feed given by the variant's "url" parameter.
type RSSScanner struct {
	parser *gofeed.Parser
}

// NewRSSScanner builds a scanner; a nil client gets a 10s timeout.
func NewRSSScanner(client *http.Client) *RSSScanner {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "NewsPoster/1.0"
	return &RSSScanner{parser: parser}
}

// Name identifies the strategy inside the registry.
func (r *RSSScanner) Name() string {
	return rssName
}

// Scan fetches and parses the feed.
func (r *RSSScanner) Scan(ctx context.Context, variant domain.QueryVariant) ([]domain.Article, error) {
	feedURL := variant.Param("url", "")
	if feedURL == "" {
		return nil, &domain.FeedUnavailableError{Variant: variant.Name, Status: http.StatusBadRequest, Err: fmt.Errorf("rss variant has no url")}
	}

	parsed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &domain.FeedUnavailableError{Variant: variant.Name, Status: httpErr.StatusCode, Err: err}
		}
		return nil, &domain.FeedUnavailableError{Variant: variant.Name, Err: fmt.Errorf("parse feed: %w", err)}
	}

	source := variant.Param("source", parsed.Title)
	articles := make([]domain.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		raw := domain.RawArticle{
			Title:       item.Title,
			Description: cleanText(item.Description),
			Body:        cleanText(item.Content),
			URL:         item.Link,
			Source:      source,
		}
		if item.PublishedParsed != nil {
			raw.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, domain.NewArticle(raw))
	}
	return articles, nil
}
