package gtts_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"assistente/internal/infra/gtts"
)

func TestClient_Synthesize(t *testing.T) {
	var gotLang, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate_tts" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		gotLang = r.URL.Query().Get("tl")
		gotText = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("fake mp3 bytes"))
	}))
	defer server.Close()

	client := gtts.NewClientWithURL("pt", server.URL)

	data, err := client.Synthesize(context.Background(), "Olá mundo")
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if !bytes.Equal(data, []byte("fake mp3 bytes")) {
		t.Errorf("data: %q", data)
	}
	if gotLang != "pt" || gotText != "Olá mundo" {
		t.Errorf("query: tl=%q q=%q", gotLang, gotText)
	}
}

func TestClient_SynthesizeEmptyText(t *testing.T) {
	client := gtts.NewClientWithURL("pt", "http://unused")
	if _, err := client.Synthesize(context.Background(), ""); err == nil {
		t.Error("expected error for empty text")
	}
}

type fakePlayer struct {
	played [][]byte
	err    error
}

func (f *fakePlayer) Play(_ context.Context, data []byte, _ string) error {
	f.played = append(f.played, data)
	return f.err
}

func TestSpeaker_Speak(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp3"))
	}))
	defer server.Close()

	player := &fakePlayer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	speaker := gtts.NewSpeaker(gtts.NewClientWithURL("pt", server.URL), player, logger)

	speaker.Speak(context.Background(), "Até logo!")

	if len(player.played) != 1 {
		t.Errorf("played %d times, want 1", len(player.played))
	}
}

func TestSpeaker_SynthesisFailureDoesNotPanic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	player := &fakePlayer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	speaker := gtts.NewSpeaker(gtts.NewClientWithURL("pt", server.URL), player, logger)

	// Best-effort contract: no panic, no playback, loop continues.
	speaker.Speak(context.Background(), "olá")

	if len(player.played) != 0 {
		t.Errorf("playback attempted after failed synthesis")
	}
}
