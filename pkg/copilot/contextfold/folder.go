package contextfold

import (
	"strings"
	"unicode/utf8"

	"knowledge-copilot-be/internal/constant"
)

// Turn is one question/answer exchange from the active conversation.
type Turn struct {
	Role string
	Text string
}

// Folder rewrites a follow-up question into a standalone retrieval query by
// folding in recent conversation turns. History is passed explicitly so the
// pipeline stays stateless.
type Folder struct {
	maxTurns int
	maxChars int
}

func NewFolder(maxTurns int) *Folder {
	if maxTurns <= 0 {
		maxTurns = constant.HistoryWindowTurns
	}
	return &Folder{
		maxTurns: maxTurns,
		maxChars: 2000, // embedding input cap; also limits topic drift
	}
}

// followupMarkers are openings that only make sense relative to an earlier
// turn ("what about for Arabic speakers?").
var followupMarkers = []string{
	"what about", "how about", "and for", "and what", "what if",
	"is that", "does that", "do they", "can it", "why not",
	"ماذا عن", "وماذا عن", "وهل",
}

// standalonePronouns signal an unresolved referent when the question is
// otherwise short.
var standalonePronouns = map[string]bool{
	"it": true, "that": true, "this": true, "those": true, "these": true,
	"they": true, "them": true, "he": true, "she": true, "one": true,
}

// Fold returns the retrieval query for a new question. Self-contained
// questions pass through untouched; follow-ups are prefixed with the most
// recent user questions inside the window, newest last, bounded in size.
func (f *Folder) Fold(history []Turn, question string) string {
	question = strings.TrimSpace(question)
	if len(history) == 0 || !f.isFollowup(question) {
		return question
	}

	window := history
	if len(window) > f.maxTurns {
		window = window[len(window)-f.maxTurns:]
	}

	var parts []string
	for _, turn := range window {
		if turn.Role != constant.HistoryRoleUser {
			continue
		}
		text := strings.TrimSpace(turn.Text)
		if text != "" {
			parts = append(parts, text)
		}
	}
	parts = append(parts, question)

	query := strings.Join(parts, " ")
	if len(query) > f.maxChars {
		// Keep the tail: the newest turns carry the current topic. The cut
		// advances to a rune boundary so Arabic text is never split mid-rune.
		cut := len(query) - f.maxChars
		for cut < len(query) && !utf8.RuneStart(query[cut]) {
			cut++
		}
		query = query[cut:]
	}
	return query
}

func (f *Folder) isFollowup(question string) bool {
	lower := strings.ToLower(question)
	for _, marker := range followupMarkers {
		if strings.HasPrefix(lower, marker) {
			return true
		}
	}

	words := strings.Fields(lower)
	if len(words) > 8 {
		return false
	}
	for _, w := range words {
		if standalonePronouns[strings.Trim(w, "?.,!")] {
			return true
		}
	}
	return false
}
