package command_test

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"assistente/internal/command"
)

type recordingOpener struct {
	urls []string
}

func (r *recordingOpener) Open(url string) error {
	r.urls = append(r.urls, url)
	return nil
}

func newMatcher() (*command.Matcher, *recordingOpener) {
	opener := &recordingOpener{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return command.NewMatcher(opener, logger), opener
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Pesquisar Wikipedia Python", "pesquisar wikipedia python", true},
		{"  SAIR  ", "sair", true},
		{"", "", false},
		{"   \t ", "", false},
	}

	for _, tc := range cases {
		got, ok := command.Normalize(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Normalize(%q): got (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestMatch_Wikipedia(t *testing.T) {
	matcher, opener := newMatcher()

	result, ok := matcher.Match("pesquisar wikipedia python")
	if !ok {
		t.Fatal("expected a match")
	}
	if !result.Success || !result.HandledLocally {
		t.Errorf("result: %+v", result)
	}
	if !strings.Contains(result.Message, "python") || !strings.Contains(result.Message, "Wikipedia") {
		t.Errorf("message: %q", result.Message)
	}
	if len(opener.urls) != 1 {
		t.Fatalf("opened %d urls, want 1", len(opener.urls))
	}
	if opener.urls[0] != "https://pt.wikipedia.org/wiki/Special:Search?search=python" {
		t.Errorf("url: %q", opener.urls[0])
	}
}

func TestMatch_WikipediaBeatsYouTube(t *testing.T) {
	// Priority order, not longest match: rule 1 always wins when its token
	// is present.
	matcher, opener := newMatcher()

	result, ok := matcher.Match("wikipedia youtube golang")
	if !ok {
		t.Fatal("expected a match")
	}
	if !strings.Contains(result.Message, "Wikipedia") {
		t.Errorf("message: %q", result.Message)
	}
	if !strings.HasPrefix(opener.urls[0], "https://pt.wikipedia.org/") {
		t.Errorf("url: %q", opener.urls[0])
	}
}

func TestMatch_WikipediaEmptyQuery(t *testing.T) {
	matcher, opener := newMatcher()

	result, ok := matcher.Match("pesquisar wikipedia")
	if !ok {
		t.Fatal("expected a match")
	}
	if result.Success {
		t.Error("clarifying result must not be a success")
	}
	if !result.HandledLocally {
		t.Error("clarifying result is still handled locally")
	}
	if result.Message != "O que devo pesquisar na Wikipedia?" {
		t.Errorf("message: %q", result.Message)
	}
	if len(opener.urls) != 0 {
		t.Errorf("no url should be opened, got %v", opener.urls)
	}
}

func TestMatch_YouTube(t *testing.T) {
	matcher, opener := newMatcher()

	result, ok := matcher.Match("pesquisar youtube tutorial de go")
	if !ok || !result.Success {
		t.Fatalf("result: %+v ok=%v", result, ok)
	}
	if !strings.Contains(result.Message, "YouTube") {
		t.Errorf("message: %q", result.Message)
	}
	if opener.urls[0] != "https://www.youtube.com/results?search_query=tutorial+de+go" {
		t.Errorf("url: %q", opener.urls[0])
	}
}

func TestMatch_VideoTokens(t *testing.T) {
	matcher, _ := newMatcher()

	for _, in := range []string{"vídeo de gatos", "video de gatos"} {
		result, ok := matcher.Match(in)
		if !ok || !result.Success {
			t.Errorf("Match(%q): %+v ok=%v", in, result, ok)
		}
		if !strings.Contains(result.Message, "gatos") {
			t.Errorf("Match(%q) message: %q", in, result.Message)
		}
	}
}

func TestMatch_StripsAllOccurrences(t *testing.T) {
	matcher, _ := newMatcher()

	result, ok := matcher.Match("youtube youtube pesquisar gatos pesquisar")
	if !ok {
		t.Fatal("expected a match")
	}
	if !strings.Contains(result.Message, "'gatos'") {
		t.Errorf("message: %q", result.Message)
	}
}

func TestMatch_Pharmacy(t *testing.T) {
	matcher, opener := newMatcher()

	result, ok := matcher.Match("farmácia")
	if !ok || !result.Success || !result.HandledLocally {
		t.Fatalf("result: %+v ok=%v", result, ok)
	}
	if result.Message != "Abrindo mapa de farmácias próximas" {
		t.Errorf("message: %q", result.Message)
	}
	if len(opener.urls) != 1 || opener.urls[0] != "https://www.google.com/maps/search/farmacia+perto+de+mim" {
		t.Errorf("urls: %v", opener.urls)
	}

	// Unaccented spelling matches the same rule.
	if _, ok := matcher.Match("onde tem farmacia aberta"); !ok {
		t.Error("expected unaccented farmacia to match")
	}
}

func TestMatch_NoMatch(t *testing.T) {
	matcher, opener := newMatcher()

	_, ok := matcher.Match("bom dia")
	if ok {
		t.Error("expected no match")
	}
	if len(opener.urls) != 0 {
		t.Errorf("urls: %v", opener.urls)
	}
}

func TestMatch_ExtractionIdempotent(t *testing.T) {
	matcher, _ := newMatcher()

	first, ok := matcher.Match("pesquisar wikipedia linguagem go")
	if !ok {
		t.Fatal("expected a match")
	}

	// Re-running the matcher over a message built from the stripped query
	// yields the same query.
	second, ok := matcher.Match("wikipedia linguagem go")
	if !ok {
		t.Fatal("expected a match")
	}
	if first.Message != second.Message {
		t.Errorf("extraction not idempotent: %q vs %q", first.Message, second.Message)
	}
}
