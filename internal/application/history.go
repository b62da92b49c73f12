package application

import (
	"sync"

	"assistente/internal/domain"
)

// History is the append-only ordered record of conversation turns. The
// orchestrator is its only writer and appends a completed (user, assistant)
// pair in one critical section, so readers never observe a half pair.
type History struct {
	mu    sync.Mutex
	turns []domain.Turn
}

func NewHistory() *History {
	return &History{}
}

// Append records one completed dispatch cycle: the user utterance followed
// by the assistant reply.
func (h *History) Append(user, assistant string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns,
		domain.Turn{Role: domain.RoleUser, Content: user},
		domain.Turn{Role: domain.RoleAssistant, Content: assistant},
	)
}

// Turns returns a copy of the recorded turns in insertion order.
func (h *History) Turns() []domain.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

// Clear truncates the history. It exists for presentation layers; the
// conversation loop itself never truncates.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}
