package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"NewsPoster/internal/config"
	"NewsPoster/internal/domain"
	"NewsPoster/internal/ports"
)

const defaultTelegramEndpoint = "https://api.telegram.org"

// TelegramPublisher sends posts to a Telegram chat via the bot API.
type TelegramPublisher struct {
	endpoint string
	botToken string
	chatID   string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.Publisher = (*TelegramPublisher)(nil)

// NewTelegramPublisher registers bot token and chat identifier.
func NewTelegramPublisher(cfg config.TelegramConfig, client *http.Client, timeout time.Duration, logger *slog.Logger) *TelegramPublisher {
	if client == nil {
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultTelegramEndpoint
	}
	return &TelegramPublisher{
		endpoint: strings.TrimRight(endpoint, "/"),
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		client:   client,
		logger:   logger,
	}
}

// Name identifies the publisher in logs and metrics.
func (n *TelegramPublisher) Name() string {
	return "telegram"
}

// Publish posts a plain-text message with link previews enabled.
func (n *TelegramPublisher) Publish(ctx context.Context, text string) domain.PublishOutcome {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return domain.PublishOutcome{Kind: domain.OutcomeAuthError, Detail: "telegram publisher misconfigured"}
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.endpoint, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.PublishOutcome{Kind: domain.OutcomeFatal, Detail: fmt.Sprintf("new request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		// The request URL carries the bot token; keep only the cause.
		if uerr, ok := err.(*url.Error); ok {
			err = uerr.Err
		}
		return transportFailure(err)
	}
	defer resp.Body.Close()

	outcome, body := readResponse(resp)
	if outcome.Success() {
		var sent struct {
			OK     bool `json:"ok"`
			Result struct {
				MessageID int64 `json:"message_id"`
			} `json:"result"`
		}
		if err := json.Unmarshal(body, &sent); err == nil && sent.Result.MessageID != 0 {
			outcome.PostID = strconv.FormatInt(sent.Result.MessageID, 10)
		}
	}
	if n.logger != nil {
		n.logger.Debug("telegram response", "status", resp.StatusCode, "kind", outcome.Kind)
	}
	return outcome
}
