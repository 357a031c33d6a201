package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"NewsPoster/internal/config"
	"NewsPoster/internal/domain"
	"NewsPoster/internal/ports"
)

const maxSummaryTokens = 200

// ChatGPTSummarizer implements ports.Summarizer backed by OpenAI-compatible APIs.
type ChatGPTSummarizer struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

var _ ports.Summarizer = (*ChatGPTSummarizer)(nil)

// NewChatGPTSummarizer builds a client from configuration.
func NewChatGPTSummarizer(cfg config.ChatGPTConfig) (*ChatGPTSummarizer, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("chatgpt client misconfigured")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &ChatGPTSummarizer{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		systemPrompt: safePrompt(cfg.SystemPrompt),
	}, nil
}

// Summarize asks the model for a two or three sentence summary of the article.
func (c *ChatGPTSummarizer) Summarize(ctx context.Context, article domain.Article) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("chatgpt client is nil")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxSummaryTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(article)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	summary := strings.Join(strings.Fields(resp.Choices[0].Message.Content), " ")
	if summary == "" {
		return "", fmt.Errorf("chat completion returned empty content")
	}
	return summary, nil
}

func userPrompt(article domain.Article) string {
	var b strings.Builder
	b.WriteString("Summarize this news article in two or three complete, factual sentences. ")
	b.WriteString("Do not include hashtags, links or emojis.\n\n")
	b.WriteString("Title: ")
	b.WriteString(article.Title)
	if article.Description != "" {
		b.WriteString("\nDescription: ")
		b.WriteString(article.Description)
	}
	if article.Body != "" {
		b.WriteString("\nText: ")
		b.WriteString(article.Body)
	}
	return b.String()
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You write short, factual news summaries for social media."
	}
	return prompt
}
