// Package anthropic implements the Intelligence capability over the
// Anthropic messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"assistente/internal/infra"
)

type ChatClient struct {
	apiKey       string
	httpClient   *http.Client
	baseURL      string
	model        string
	systemPrompt string
	policy       infra.Policy
	logger       *slog.Logger
}

func NewChatClient(apiKey, model, systemPrompt string, policy infra.Policy, logger *slog.Logger) *ChatClient {
	return NewChatClientWithURL(apiKey, model, systemPrompt, policy, logger, "https://api.anthropic.com/v1")
}

func NewChatClientWithURL(apiKey, model, systemPrompt string, policy infra.Policy, logger *slog.Logger, baseURL string) *ChatClient {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &ChatClient{
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      baseURL,
		model:        model,
		systemPrompt: systemPrompt,
		policy:       policy,
		logger:       logger,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type response struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *ChatClient) Process(ctx context.Context, text string) string {
	var reply string
	err := c.policy.Do(ctx, func() error {
		r, err := c.complete(ctx, text)
		if err != nil {
			return err
		}
		reply = r
		return nil
	})

	if err != nil {
		if infra.IsTransient(err) {
			c.logger.Warn("claude unavailable after retries", "error", err)
			return infra.UnavailableMessage
		}
		c.logger.Error("claude request failed", "error", err)
		return "Erro na IA: " + infra.ErrorDetail(err)
	}

	return reply
}

func (c *ChatClient) complete(ctx context.Context, text string) (string, error) {
	reqBody := request{
		Model:     c.model,
		MaxTokens: 512,
		System:    c.systemPrompt,
		Messages: []message{
			{Role: "user", Content: text},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return "", &infra.StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("empty response from claude")
	}

	return strings.TrimSpace(result.Content[0].Text), nil
}
