// Package gtts synthesizes speech with the Google Translate TTS endpoint.
package gtts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"assistente/internal/infra"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	language   string
}

func NewClient(language string) *Client {
	return NewClientWithURL(language, "https://translate.google.com")
}

func NewClientWithURL(language, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		language:   language,
	}
}

// Synthesize returns MP3 audio for the given text.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", c.language)
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/translate_tts?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &infra.StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio response")
	}

	return data, nil
}

// MP3Player plays an MP3 payload.
type MP3Player interface {
	Play(ctx context.Context, data []byte, ext string) error
}

// Speaker implements the TextToSpeech capability: synthesize, play, and
// degrade to text-only output when either step fails.
type Speaker struct {
	client *Client
	player MP3Player
	out    io.Writer
	logger *slog.Logger
}

func NewSpeaker(client *Client, player MP3Player, logger *slog.Logger) *Speaker {
	return &Speaker{
		client: client,
		player: player,
		out:    os.Stdout,
		logger: logger,
	}
}

func (s *Speaker) Speak(ctx context.Context, text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(s.out, "🤖 Assistente: %s\n", text)

	data, err := s.client.Synthesize(ctx, text)
	if err != nil {
		s.logger.Warn("speech synthesis failed, text-only fallback", "error", err)
		return
	}

	if err := s.player.Play(ctx, data, ".mp3"); err != nil {
		s.logger.Warn("audio playback failed, text-only fallback", "error", err)
	}
}
