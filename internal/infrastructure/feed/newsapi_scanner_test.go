package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsPoster/internal/domain"
)

const newsAPIPayload = `{
  "status": "ok",
  "totalResults": 3,
  "articles": [
    {
      "source": {"id": null, "name": "Example Wire"},
      "title": "Markets rally as inflation cools further",
      "description": "<p>Stocks <b>rose</b> on Tuesday.</p>",
      "content": "Investors cheered the data. Analysts expect more gains… [+2104 chars]",
      "url": "https://example.com/markets%2Drally",
      "publishedAt": "2025-06-03T10:00:00Z"
    },
    {
      "source": null,
      "title": null,
      "description": null,
      "content": null,
      "url": null,
      "publishedAt": null
    },
    {
      "title": "Short",
      "url": "https://example.com/short"
    }
  ]
}`

func TestNewsAPIScannerScan(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey, gotCountry, gotCategory, gotSources string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		gotCountry = r.URL.Query().Get("country")
		gotCategory = r.URL.Query().Get("category")
		gotSources = r.URL.Query().Get("sources")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(newsAPIPayload))
	}))
	t.Cleanup(server.Close)

	scanner := NewNewsAPIScanner(server.Client(), server.URL+"/v2/", "secret")
	variant := domain.QueryVariant{
		Name:    "general-us",
		Scanner: "newsapi",
		Params:  map[string]string{"endpoint": "top-headlines", "category": "general", "country": "us"},
	}

	articles, err := scanner.Scan(context.Background(), variant)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	if gotPath != "/v2/top-headlines" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("api key header not sent, got %q", gotKey)
	}
	if gotCountry != "us" || gotCategory != "general" || gotSources != "" {
		t.Fatalf("unexpected query: country=%q category=%q sources=%q", gotCountry, gotCategory, gotSources)
	}

	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "Markets rally as inflation cools further" {
		t.Fatalf("unexpected title: %s", first.Title)
	}
	if first.Description != "Stocks rose on Tuesday." {
		t.Fatalf("markup not stripped: %q", first.Description)
	}
	if first.Body != "Investors cheered the data. Analysts expect more gains…" {
		t.Fatalf("truncation marker not stripped: %q", first.Body)
	}
	if first.URL != "https://example.com/markets-rally" {
		t.Fatalf("url not decoded: %s", first.URL)
	}
	if first.Source != "Example Wire" {
		t.Fatalf("unexpected source: %s", first.Source)
	}
	if first.PublishedAt.IsZero() {
		t.Fatalf("publishedAt not parsed")
	}

	empty := articles[1]
	if empty.Title != "" || empty.URL != "" || empty.Body != "" {
		t.Fatalf("null fields should become empty strings: %+v", empty)
	}
	if empty.Eligible(0) || articles[2].Eligible(0) {
		t.Fatalf("null and short-title articles must not be eligible")
	}
}

func TestNewsAPIScannerNonOK(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"error","code":"apiKeyInvalid"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	scanner := NewNewsAPIScanner(server.Client(), server.URL, "bad")
	_, err := scanner.Scan(context.Background(), domain.QueryVariant{Name: "general"})

	var unavailable *domain.FeedUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected FeedUnavailableError, got %v", err)
	}
	if unavailable.Status != http.StatusUnauthorized || unavailable.Variant != "general" {
		t.Fatalf("unexpected error fields: %+v", unavailable)
	}
	if unavailable.Temporary() {
		t.Fatalf("401 must not be temporary")
	}
}

func TestNewsAPIScannerErrorStatusInBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","code":"rateLimited","message":"slow down"}`))
	}))
	t.Cleanup(server.Close)

	scanner := NewNewsAPIScanner(server.Client(), server.URL, "k")
	_, err := scanner.Scan(context.Background(), domain.QueryVariant{Name: "everything"})
	if err == nil {
		t.Fatalf("expected error for status=error payload")
	}
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                                   "",
		"  plain   text  ":                   "plain text",
		"<ul><li>One</li> <li>Two</li></ul>": "One Two",
		"Fish &amp; chips [+12 chars]":       "Fish & chips",
	}
	for in, want := range cases {
		if got := cleanText(in); got != want {
			t.Fatalf("cleanText(%q) = %q, want %q", in, got, want)
		}
	}
}
