package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one half of a conversation exchange. Turns are immutable and are
// always appended to history in (user, assistant) pairs.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// DispatchResult is the outcome of dispatching a single utterance, produced
// by either the local command matcher or the remote intelligence, never both.
type DispatchResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	HandledLocally bool   `json:"handled_locally"`
}

// Search URL templates for the local commands. The query is appended
// already encoded.
const (
	WikipediaSearchURL = "https://pt.wikipedia.org/wiki/Special:Search?search="
	YouTubeSearchURL   = "https://www.youtube.com/results?search_query="
	PharmacyMapURL     = "https://www.google.com/maps/search/farmacia+perto+de+mim"
)
