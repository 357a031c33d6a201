package publisher

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"NewsPoster/internal/config"
	"NewsPoster/internal/domain"
)

func TestTelegramPublisherSendsMessage(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":42,"chat":{"id":-100}}}`))
	}))
	t.Cleanup(server.Close)

	pub := NewTelegramPublisher(config.TelegramConfig{Endpoint: server.URL + "/", BotToken: "TOKEN", ChatID: "-100"}, server.Client(), time.Second, nil)
	outcome := pub.Publish(context.Background(), "Hello\nhttps://x.test/a")

	if !outcome.Success() || outcome.PostID != "42" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if gotPath != "/botTOKEN/sendMessage" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotChat != "-100" || gotText != "Hello\nhttps://x.test/a" {
		t.Fatalf("unexpected form: chat=%s text=%q", gotChat, gotText)
	}
}

func TestTelegramPublisherErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 7"}`))
	}))
	t.Cleanup(server.Close)

	pub := NewTelegramPublisher(config.TelegramConfig{Endpoint: server.URL, BotToken: "T", ChatID: "1"}, server.Client(), time.Second, nil)
	outcome := pub.Publish(context.Background(), "post")
	if outcome.Kind != domain.OutcomeRateLimited || outcome.Detail != "Too Many Requests: retry after 7" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}

	misconfigured := NewTelegramPublisher(config.TelegramConfig{}, nil, 0, nil)
	if got := misconfigured.Publish(context.Background(), "post"); got.Kind != domain.OutcomeAuthError {
		t.Fatalf("expected AUTH_ERROR for missing token, got %+v", got)
	}
}

func TestTelegramTransportErrorHidesToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	pub := NewTelegramPublisher(config.TelegramConfig{Endpoint: url, BotToken: "SECRET", ChatID: "1"}, nil, time.Second, nil)
	outcome := pub.Publish(context.Background(), "post")
	if outcome.Kind != domain.OutcomeTransient {
		t.Fatalf("expected TRANSIENT, got %+v", outcome)
	}
	if strings.Contains(outcome.Detail, "SECRET") {
		t.Fatalf("token leaked into detail: %s", outcome.Detail)
	}
}

func TestStdoutPublisher(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	pub := NewStdoutPublisher(&buf, nil)
	outcome := pub.Publish(context.Background(), "dry post")

	if !outcome.Success() || !strings.HasPrefix(outcome.PostID, "dry-run-") {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if buf.String() != "dry post\n---\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
