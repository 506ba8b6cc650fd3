package ai

import (
	"fmt"
	"testing"

	"github.com/debunkbot/debunkbot/internal/model/chat"
)

func makeHistory(n int) []chat.Message {
	msgs := make([]chat.Message, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, chat.Message{
			Text:       fmt.Sprintf("message %d", i),
			IsFromUser: i%2 == 0,
		})
	}
	return msgs
}

func TestBuildWindowBound(t *testing.T) {
	for _, size := range []int{0, 3, 5, 100} {
		history := makeHistory(size)
		win := BuildWindow(history, "query", 5)
		if len(win.PriorTurns) > 5 {
			t.Fatalf("history of %d produced %d prior turns, want at most 5", size, len(win.PriorTurns))
		}
	}
}

func TestBuildWindowDropsOldest(t *testing.T) {
	history := []chat.Message{
		{Text: "A", IsFromUser: true},
		{Text: "B", IsFromUser: false},
		{Text: "C", IsFromUser: true},
		{Text: "D", IsFromUser: false},
		{Text: "E", IsFromUser: true},
		{Text: "F", IsFromUser: false},
	}

	win := BuildWindow(history, "G", 5)

	if len(win.PriorTurns) != 5 {
		t.Fatalf("expected 5 prior turns, got %d", len(win.PriorTurns))
	}
	wantTexts := []string{"B", "C", "D", "E", "F"}
	wantRoles := []string{RoleModel, RoleUser, RoleModel, RoleUser, RoleModel}
	for i, turn := range win.PriorTurns {
		if turn.Text != wantTexts[i] {
			t.Fatalf("turn %d text %q, want %q", i, turn.Text, wantTexts[i])
		}
		if turn.Role != wantRoles[i] {
			t.Fatalf("turn %d role %q, want %q", i, turn.Role, wantRoles[i])
		}
	}
	if win.Query != "G" {
		t.Fatalf("unexpected query %q", win.Query)
	}
}

func TestBuildWindowPreservesOrderWhenUnderLimit(t *testing.T) {
	history := makeHistory(3)
	win := BuildWindow(history, "q", 5)

	if len(win.PriorTurns) != 3 {
		t.Fatalf("expected 3 prior turns, got %d", len(win.PriorTurns))
	}
	for i, turn := range win.PriorTurns {
		want := fmt.Sprintf("message %d", i)
		if turn.Text != want {
			t.Fatalf("turn %d text %q, want %q", i, turn.Text, want)
		}
	}
}

func TestBuildWindowEmptyHistory(t *testing.T) {
	win := BuildWindow(nil, "hello", 5)
	if len(win.PriorTurns) != 0 {
		t.Fatalf("expected no prior turns, got %d", len(win.PriorTurns))
	}
	if win.Query != "hello" {
		t.Fatalf("unexpected query %q", win.Query)
	}
}
