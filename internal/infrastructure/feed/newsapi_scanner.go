package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsPoster/internal/domain"
)

const (
	newsAPIName           = "newsapi"
	defaultNewsAPIBaseURL = "https://newsapi.org/v2"
	defaultEndpoint       = "top-headlines"
)

// truncatedSuffixExpr matches the "[+1234 chars]" marker NewsAPI appends to content.
var truncatedSuffixExpr = regexp.MustCompile(`\s*\[\+\d+ chars\]\s*$`)

var newsAPIParams = []string{"category", "country", "sources", "q", "language", "sortBy", "pageSize"}

// NewsAPIScanner queries a NewsAPI-shaped search service.
type NewsAPIScanner struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewNewsAPIScanner wires an HTTP client; baseURL defaults to the public endpoint.
func NewNewsAPIScanner(client *http.Client, baseURL, apiKey string) *NewsAPIScanner {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultNewsAPIBaseURL
	}
	return &NewsAPIScanner{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// Name identifies the strategy inside the registry.
func (n *NewsAPIScanner) Name() string {
	return newsAPIName
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	URL         *string `json:"url"`
	PublishedAt *string `json:"publishedAt"`
	Source      *struct {
		Name *string `json:"name"`
	} `json:"source"`
}

// Scan performs one query for the variant and converts the response into articles.
func (n *NewsAPIScanner) Scan(ctx context.Context, variant domain.QueryVariant) ([]domain.Article, error) {
	endpoint, err := n.buildURL(variant)
	if err != nil {
		return nil, &domain.FeedUnavailableError{Variant: variant.Name, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &domain.FeedUnavailableError{Variant: variant.Name, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("X-Api-Key", n.apiKey)
	req.Header.Set("User-Agent", "NewsPoster/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, &domain.FeedUnavailableError{Variant: variant.Name, Err: fmt.Errorf("request articles: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &domain.FeedUnavailableError{
			Variant: variant.Name,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("newsapi returned %s", resp.Status),
		}
	}

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &domain.FeedUnavailableError{Variant: variant.Name, Err: fmt.Errorf("decode response: %w", err)}
	}
	if payload.Status != "" && payload.Status != "ok" {
		return nil, &domain.FeedUnavailableError{
			Variant: variant.Name,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("newsapi error %s: %s", payload.Code, payload.Message),
		}
	}

	articles := make([]domain.Article, 0, len(payload.Articles))
	for _, item := range payload.Articles {
		raw := domain.RawArticle{
			Title:       deref(item.Title),
			Description: cleanText(deref(item.Description)),
			Body:        cleanText(deref(item.Content)),
			URL:         deref(item.URL),
		}
		if item.Source != nil {
			raw.Source = deref(item.Source.Name)
		}
		if ts := deref(item.PublishedAt); ts != "" {
			if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
				raw.PublishedAt = parsed
			}
		}
		articles = append(articles, domain.NewArticle(raw))
	}
	return articles, nil
}

func (n *NewsAPIScanner) buildURL(variant domain.QueryVariant) (string, error) {
	path := strings.Trim(variant.Param("endpoint", defaultEndpoint), "/")
	parsed, err := url.Parse(n.baseURL + "/" + path)
	if err != nil {
		return "", fmt.Errorf("invalid newsapi url: %w", err)
	}

	query := parsed.Query()
	for _, key := range newsAPIParams {
		if v := variant.Param(key, ""); v != "" {
			query.Set(key, v)
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// cleanText removes markup and the provider truncation marker.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<>&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	s = truncatedSuffixExpr.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
