// Package gemini implements the Intelligence capability over the Google
// Generative Language API.
package gemini

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

type Client struct {
	apiKey       string
	httpClient   *http.Client
	baseURL      string
	model        string
	systemPrompt string
	policy       infra.Policy
	logger       *slog.Logger
}

func NewClient(apiKey, model, systemPrompt string, policy infra.Policy, logger *slog.Logger) *Client {
	return NewClientWithURL(apiKey, model, systemPrompt, policy, logger, "https://generativelanguage.googleapis.com/v1beta")
}

func NewClientWithURL(apiKey, model, systemPrompt string, policy infra.Policy, logger *slog.Logger, baseURL string) *Client {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Client{
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      baseURL,
		model:        model,
		systemPrompt: systemPrompt,
		policy:       policy,
		logger:       logger,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content  `json:"system_instruction,omitempty"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) Process(ctx context.Context, text string) string {
	var reply string
	err := c.policy.Do(ctx, func() error {
		r, err := c.generate(ctx, text)
		if err != nil {
			return err
		}
		reply = r
		return nil
	})

	if err != nil {
		if infra.IsTransient(err) {
			c.logger.Warn("gemini unavailable after retries", "error", err)
			return infra.UnavailableMessage
		}
		c.logger.Error("gemini request failed", "error", err)
		return "Erro na IA: " + infra.ErrorDetail(err)
	}

	return reply
}

func (c *Client) generate(ctx context.Context, text string) (string, error) {
	reqBody := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: c.systemPrompt}}},
		Contents: []content{
			{Role: "user", Parts: []part{{Text: text}}},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return "", &infra.StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	return strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text), nil
}
