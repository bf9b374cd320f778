package memory

import (
	"encoding/json"
	"strings"

	"github.com/papercomputeco/jarvis/pkg/llm"
)

// Role is the speaker of a turn.
type Role = llm.Role

const (
	RoleUser  = llm.RoleUser
	RoleModel = llm.RoleModel
)

// NormalizeRole maps any label to one of the two roles. "user" in any case,
// surrounded by any whitespace, is the user; everything else, including
// "assistant" and the empty string, is the model.
func NormalizeRole(label string) Role {
	if strings.EqualFold(strings.TrimSpace(label), string(RoleUser)) {
		return RoleUser
	}
	return RoleModel
}

// Entry is one turn in the conversation.
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UnmarshalJSON normalizes the role and treats a null or missing content as "".
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Role = NormalizeRole(raw.Role)
	e.Content = ""
	if raw.Content != nil {
		e.Content = *raw.Content
	}
	return nil
}

// Message converts the entry for a language model call.
func (e Entry) Message() llm.Message {
	return llm.NewTextMessage(NormalizeRole(string(e.Role)), e.Content)
}

// History is an ordered, append-only log of turns. The zero value is empty and
// ready to use. History is not safe for concurrent use; Memory guards it.
type History struct {
	entries []Entry
}

// NewHistory copies entries into a new History, normalizing each role.
func NewHistory(entries []Entry) *History {
	h := &History{entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		h.entries = append(h.entries, Entry{Role: NormalizeRole(string(e.Role)), Content: e.Content})
	}
	return h
}

// Append adds a turn and returns the stored entry.
func (h *History) Append(role, content string) Entry {
	e := Entry{Role: NormalizeRole(role), Content: content}
	h.entries = append(h.entries, e)
	return e
}

// Len returns the number of turns.
func (h *History) Len() int {
	return len(h.entries)
}

// LastTwo returns the newest entry and the one before it. ok is false when
// fewer than two entries exist; newest is still set when there is exactly one.
func (h *History) LastTwo() (prev, newest Entry, ok bool) {
	switch n := len(h.entries); {
	case n == 0:
		return Entry{}, Entry{}, false
	case n == 1:
		return Entry{}, h.entries[0], false
	default:
		return h.entries[n-2], h.entries[n-1], true
	}
}

// Tail returns a copy of the last n entries in chronological order. It returns
// every entry when fewer than n exist and none when n <= 0.
func (h *History) Tail(n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	start := max(len(h.entries)-n, 0)
	out := make([]Entry, len(h.entries)-start)
	copy(out, h.entries[start:])
	return out
}

// Entries returns a copy of every entry.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}
