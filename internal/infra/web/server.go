// Package web exposes the one-shot execute contract over HTTP for thin
// front-ends: execute an utterance, synthesize a reply, read or clear the
// conversation history.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"assistente/internal/application"
)

// Synthesizer produces audio bytes for a reply, for the /api/tts endpoint.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type Server struct {
	addr      string
	authToken string
	assistant *application.Assistant
	synth     Synthesizer // nil disables /api/tts
	limiter   *rateLimiter
	logger    *slog.Logger

	mu      sync.Mutex
	server  *http.Server
	mux     *http.ServeMux
	running bool
}

func NewServer(addr, authToken string, assistant *application.Assistant, synth Synthesizer, logger *slog.Logger) *Server {
	s := &Server{
		addr:      addr,
		authToken: authToken,
		assistant: assistant,
		synth:     synth,
		limiter:   newRateLimiter(30, time.Minute),
		logger:    logger,
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /api/execute", s.limiter.middleware(s.withAuth(s.handleExecute)))
	s.mux.HandleFunc("POST /api/tts", s.limiter.middleware(s.withAuth(s.handleTTS)))
	s.mux.HandleFunc("GET /api/history", s.limiter.middleware(s.handleHistory))
	s.mux.HandleFunc("POST /api/history/clear", s.limiter.middleware(s.withAuth(s.handleClear)))
	// No rate limiting on health checks.
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Info("web server starting", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("web server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if err := s.server.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}

	s.running = false
	return nil
}

func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken != "" && r.Header.Get("X-Auth-Token") != s.authToken {
			s.logger.Warn("unauthorized request", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

type textRequest struct {
	Text string `json:"text"`
}

func decodeText(w http.ResponseWriter, r *http.Request) (string, error) {
	var req textRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(&req); err != nil {
		return "", fmt.Errorf("decoding body: %w", err)
	}
	return req.Text, nil
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	text, err := decodeText(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "corpo inválido"})
		return
	}

	result := s.assistant.ExecuteOnce(r.Context(), text)
	s.logger.Info("executed", "text", text, "success", result.Success, "local", result.HandledLocally)

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	if s.synth == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "message": "síntese de voz indisponível"})
		return
	}

	text, err := decodeText(w, r)
	if err != nil || strings.TrimSpace(text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Texto vazio"})
		return
	}

	data, err := s.synth.Synthesize(r.Context(), text)
	if err != nil {
		s.logger.Error("synthesis failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Falha ao gerar áudio"})
		return
	}

	// Scoped temp file: written for this response only, removed right after.
	path := filepath.Join(os.TempDir(), "assistente-tts-"+uuid.NewString()+".mp3")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		s.logger.Error("writing tts file", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Falha ao gerar áudio"})
		return
	}
	defer os.Remove(path)

	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, r, path)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"turns": s.assistant.History()})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.assistant.ClearHistory()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"running":       running,
		"history_turns": s.assistant.HistoryLen(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
