package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"

	"NewsPoster/internal/config"
	"NewsPoster/internal/domain"
	"NewsPoster/internal/ports"
)

const defaultXEndpoint = "https://api.twitter.com/2/tweets"

// XPublisher posts to a v2-style short-post endpoint signed with OAuth1.
type XPublisher struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.Publisher = (*XPublisher)(nil)

// NewXPublisher builds a signing client; base may be nil.
func NewXPublisher(cfg config.XConfig, base *http.Client, timeout time.Duration, logger *slog.Logger) *XPublisher {
	if base == nil {
		base = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultXEndpoint
	}

	oauthCfg := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret)
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, base)
	client := oauthCfg.Client(ctx, token)
	client.Timeout = timeout

	return &XPublisher{endpoint: endpoint, client: client, logger: logger}
}

// Name identifies the publisher in logs and metrics.
func (x *XPublisher) Name() string {
	return "x"
}

// Publish sends {"text": text} and classifies the response.
func (x *XPublisher) Publish(ctx context.Context, text string) domain.PublishOutcome {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return domain.PublishOutcome{Kind: domain.OutcomeFatal, Detail: fmt.Sprintf("marshal post: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.PublishOutcome{Kind: domain.OutcomeFatal, Detail: fmt.Sprintf("new request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.client.Do(req)
	if err != nil {
		x.debug("post request failed", "error", err)
		return transportFailure(err)
	}
	defer resp.Body.Close()

	outcome, body := readResponse(resp)
	if outcome.Success() {
		var created struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &created); err == nil {
			outcome.PostID = created.Data.ID
		}
	}
	x.debug("post response", "status", resp.StatusCode, "kind", outcome.Kind, "post_id", outcome.PostID)
	return outcome
}

func (x *XPublisher) debug(msg string, args ...interface{}) {
	if x.logger != nil {
		x.logger.Debug(msg, args...)
	}
}
