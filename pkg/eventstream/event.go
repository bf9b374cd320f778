package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnAnswered is emitted after a query has been answered and
	// both turns recorded in history.
	EventTypeTurnAnswered = "jarvis.turn.answered"
)

// TurnEvent is a transport-neutral event payload for an answered query.
type TurnEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Source        EventSource `json:"source"`
	Turn          Turn        `json:"turn"`
}

// EventSource identifies the assistant that answered.
type EventSource struct {
	Assistant string `json:"assistant"`
	Owner     string `json:"owner,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Model     string `json:"model,omitempty"`
}

// Turn captures the query, its reply and timing.
type Turn struct {
	Query       string    `json:"query"`
	Reply       string    `json:"reply"`
	ReplySource string    `json:"reply_source"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
}

// NewTurnEvent stamps a v1 event with a fresh ID.
func NewTurnEvent(source EventSource, turn Turn, now time.Time) *TurnEvent {
	if turn.DurationMs == 0 && !turn.CompletedAt.IsZero() {
		turn.DurationMs = turn.CompletedAt.Sub(turn.StartedAt).Milliseconds()
	}

	return &TurnEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnAnswered,
		EventID:       uuid.NewString(),
		EmittedAt:     now.UTC(),
		Source:        source,
		Turn:          turn,
	}
}
