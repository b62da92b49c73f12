// Package openai talks to the OpenAI HTTP API: chat completions for the
// assistant replies and Whisper for audio transcription.
package openai

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
	return NewChatClientWithURL(apiKey, model, systemPrompt, policy, logger, "https://api.openai.com/v1")
}

func NewChatClientWithURL(apiKey, model, systemPrompt string, policy infra.Policy, logger *slog.Logger, baseURL string) *ChatClient {
	if model == "" {
		model = "gpt-4o-mini"
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

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Process sends the utterance with the static system instruction and returns
// the reply text. Every failure path returns text suitable for synthesis;
// transient gateway failures are retried under the policy first.
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
			c.logger.Warn("chat completion unavailable after retries", "error", err)
			return infra.UnavailableMessage
		}
		c.logger.Error("chat completion failed", "error", err)
		return "Erro na IA: " + infra.ErrorDetail(err)
	}

	return reply
}

func (c *ChatClient) complete(ctx context.Context, text string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: text},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return "", &infra.StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty response from chat completion")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
