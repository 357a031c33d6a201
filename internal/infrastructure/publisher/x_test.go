package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"NewsPoster/internal/config"
	"NewsPoster/internal/domain"
)

func testXConfig(endpoint string) config.XConfig {
	return config.XConfig{
		Endpoint:          endpoint,
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "as",
	}
}

func TestXPublisherSignsAndParsesID(t *testing.T) {
	t.Parallel()

	var gotAuth, gotText, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		var body struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotText = body.Text

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1790000000000000000","text":"ok"}}`))
	}))
	t.Cleanup(server.Close)

	pub := NewXPublisher(testXConfig(server.URL+"/2/tweets"), server.Client(), time.Second, nil)
	outcome := pub.Publish(context.Background(), "Hello world https://x.test/a")

	if !outcome.Success() {
		t.Fatalf("expected OK, got %+v", outcome)
	}
	if outcome.PostID != "1790000000000000000" {
		t.Fatalf("unexpected post id: %s", outcome.PostID)
	}
	if !strings.HasPrefix(gotAuth, "OAuth ") || !strings.Contains(gotAuth, `oauth_consumer_key="ck"`) || !strings.Contains(gotAuth, `oauth_signature_method="HMAC-SHA1"`) {
		t.Fatalf("request not OAuth1-signed: %s", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type: %s", gotContentType)
	}
	if gotText != "Hello world https://x.test/a" {
		t.Fatalf("unexpected text: %s", gotText)
	}
	if pub.Name() != "x" {
		t.Fatalf("unexpected name: %s", pub.Name())
	}
}

func TestXPublisherRateLimited(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"title":"Too Many Requests","detail":"Too Many Requests","status":429}`))
	}))
	t.Cleanup(server.Close)

	outcome := NewXPublisher(testXConfig(server.URL), server.Client(), time.Second, nil).Publish(context.Background(), "post")
	if outcome.Kind != domain.OutcomeRateLimited || outcome.Status != http.StatusTooManyRequests {
		t.Fatalf("expected RATE_LIMITED, got %+v", outcome)
	}
}

func TestXPublisherBlockedByChallengePage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<!DOCTYPE html><html><head><title>Attention Required!</title></head><body>challenge</body></html>`))
	}))
	t.Cleanup(server.Close)

	outcome := NewXPublisher(testXConfig(server.URL), server.Client(), time.Second, nil).Publish(context.Background(), "post")
	if outcome.Kind != domain.OutcomeBlocked {
		t.Fatalf("expected BLOCKED, got %+v", outcome)
	}
	if outcome.Detail != "Attention Required!" {
		t.Fatalf("unexpected detail: %q", outcome.Detail)
	}
}

func TestXPublisherTimeoutIsTransient(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	pub := NewXPublisher(testXConfig(server.URL), server.Client(), 50*time.Millisecond, nil)
	outcome := pub.Publish(context.Background(), "post")
	if outcome.Kind != domain.OutcomeTransient {
		t.Fatalf("expected TRANSIENT, got %+v", outcome)
	}
}
