package ai

import (
	"github.com/debunkbot/debunkbot/internal/model/chat"
)

// Upstream turn roles. The generative upstream labels assistant turns
// "model" rather than "assistant".
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one role-tagged entry sent to the generative upstream.
type Turn struct {
	Role string
	Text string
}

// Window is the bounded conversational context for a single upstream
// request. It is built fresh per request and never persisted.
type Window struct {
	PriorTurns []Turn
	Query      string
}

// BuildWindow keeps the size most recent history entries in their original
// chronological order and pairs them with the new query. The bound is by
// message count only; individual message length is not budgeted, so a
// pathologically long message can still exceed the upstream's input limit.
func BuildWindow(history []chat.Message, query string, size int) Window {
	if size < 0 {
		size = 0
	}

	start := 0
	if len(history) > size {
		start = len(history) - size
	}

	turns := make([]Turn, 0, len(history)-start)
	for _, msg := range history[start:] {
		role := RoleModel
		if msg.IsFromUser {
			role = RoleUser
		}
		turns = append(turns, Turn{Role: role, Text: msg.Text})
	}

	return Window{PriorTurns: turns, Query: query}
}
