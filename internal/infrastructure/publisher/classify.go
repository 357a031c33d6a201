package publisher

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsPoster/internal/domain"
)

const maxBodyBytes = 64 << 10

// Classify maps a posting-service response onto the outcome taxonomy.
// The checks run in order: 2xx, markup body, 429, duplicate 403, 401/403, 5xx.
func Classify(status int, contentType string, body []byte) domain.PublishOutcome {
	outcome := domain.PublishOutcome{Status: status}

	switch {
	case status >= 200 && status < 300:
		outcome.Kind = domain.OutcomeOK
	case isMarkup(contentType, body):
		outcome.Kind = domain.OutcomeBlocked
		outcome.Detail = pageTitle(body)
	case status == http.StatusTooManyRequests:
		outcome.Kind = domain.OutcomeRateLimited
	case status == http.StatusForbidden && mentionsDuplicate(body):
		outcome.Kind = domain.OutcomeDuplicate
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		outcome.Kind = domain.OutcomeAuthError
	case status >= 500:
		outcome.Kind = domain.OutcomeTransient
	default:
		outcome.Kind = domain.OutcomeFatal
	}

	if outcome.Detail == "" && outcome.Kind != domain.OutcomeOK {
		outcome.Detail = errorDetail(body)
	}
	return outcome
}

// transportFailure classifies errors that happen before a response arrives.
func transportFailure(err error) domain.PublishOutcome {
	return domain.PublishOutcome{Kind: domain.OutcomeTransient, Detail: err.Error()}
}

// readResponse drains a bounded body and classifies it.
func readResponse(resp *http.Response) (domain.PublishOutcome, []byte) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil && len(body) == 0 {
		return transportFailure(err), nil
	}
	return Classify(resp.StatusCode, resp.Header.Get("Content-Type"), body), body
}

func isMarkup(contentType string, body []byte) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml") {
		return true
	}
	return bytes.HasPrefix(bytes.TrimSpace(body), []byte("<"))
}

func mentionsDuplicate(body []byte) bool {
	return bytes.Contains(bytes.ToLower(body), []byte("duplicate"))
}

func pageTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "markup response"
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return "markup response"
}

// errorDetail pulls a human-readable message out of the common JSON error shapes.
func errorDetail(body []byte) string {
	var payload struct {
		Detail      string `json:"detail"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Errors      []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Detail != "":
			return payload.Detail
		case payload.Description != "":
			return payload.Description
		case len(payload.Errors) > 0 && payload.Errors[0].Message != "":
			return payload.Errors[0].Message
		case payload.Title != "":
			return payload.Title
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
