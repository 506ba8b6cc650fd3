package chat

import "time"

// Message is one persisted turn in a user's conversation. Messages are
// immutable once created; the ledger only ever appends them or clears a
// user's history wholesale.
type Message struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	IsFromUser      bool      `json:"isFromUser"`
	AudioSegmentRef *string   `json:"audioSegmentRef,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}
