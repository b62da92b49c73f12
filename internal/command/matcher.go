package command

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/pkg/browser"

	"assistente/internal/domain"
)

// Normalize prepares raw input for matching: lowercase and trimmed. The
// second return is false for empty or whitespace-only input, which callers
// treat as a no-op cycle. The original casing stays with the caller for
// echoes and history.
func Normalize(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}
	return s, true
}

// Opener triggers the "open URI" side effect owned by the host environment.
type Opener interface {
	Open(url string) error
}

// BrowserOpener opens URLs in the system default browser.
type BrowserOpener struct{}

func (BrowserOpener) Open(url string) error {
	return browser.OpenURL(url)
}

// Matcher recognizes the closed set of local command intents. Rules are
// evaluated in fixed priority order, first match wins.
type Matcher struct {
	opener Opener
	logger *slog.Logger
}

func NewMatcher(opener Opener, logger *slog.Logger) *Matcher {
	return &Matcher{opener: opener, logger: logger}
}

// Match dispatches normalized text against the rule list. The second return
// is false when no rule applies and the caller should fall through to the
// remote intelligence.
func (m *Matcher) Match(text string) (domain.DispatchResult, bool) {
	if strings.Contains(text, "wikipedia") {
		query := extractQuery(text, "wikipedia")
		if query == "" {
			return domain.DispatchResult{Message: "O que devo pesquisar na Wikipedia?", HandledLocally: true}, true
		}
		m.open(domain.WikipediaSearchURL + url.QueryEscape(query))
		return domain.DispatchResult{
			Success:        true,
			Message:        fmt.Sprintf("Pesquisando '%s' na Wikipedia", query),
			HandledLocally: true,
		}, true
	}

	if strings.Contains(text, "youtube") || strings.Contains(text, "vídeo") || strings.Contains(text, "video") {
		query := extractQuery(text, "youtube", "vídeo", "video")
		if query == "" {
			return domain.DispatchResult{Message: "O que devo pesquisar no YouTube?", HandledLocally: true}, true
		}
		m.open(domain.YouTubeSearchURL + url.QueryEscape(query))
		return domain.DispatchResult{
			Success:        true,
			Message:        fmt.Sprintf("Pesquisando '%s' no YouTube", query),
			HandledLocally: true,
		}, true
	}

	if strings.Contains(text, "farmácia") || strings.Contains(text, "farmacia") {
		m.open(domain.PharmacyMapURL)
		return domain.DispatchResult{
			Success:        true,
			Message:        "Abrindo mapa de farmácias próximas",
			HandledLocally: true,
		}, true
	}

	return domain.DispatchResult{}, false
}

func (m *Matcher) open(url string) {
	if err := m.opener.Open(url); err != nil {
		m.logger.Error("opening url", "url", url, "error", err)
	}
}

// extractQuery removes every occurrence of the rule tokens plus the
// "pesquisar" filler and collapses the remaining whitespace.
func extractQuery(text string, tokens ...string) string {
	for _, token := range append(tokens, "pesquisar") {
		text = strings.ReplaceAll(text, token, "")
	}
	return strings.Join(strings.Fields(text), " ")
}
