package memory

import "strings"

// NormalizeQuestion is the QACache key for a question: trimmed and lowercased.
func NormalizeQuestion(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// QACache maps a normalized question to the answer that followed its most
// recent asking. It is derived from History and never persisted.
type QACache struct {
	answers map[string]string
}

// NewQACache returns an empty cache.
func NewQACache() *QACache {
	return &QACache{answers: make(map[string]string)}
}

// BuildQACache replays entries into a fresh cache.
func BuildQACache(entries []Entry) *QACache {
	c := NewQACache()
	for i := 1; i < len(entries); i++ {
		c.Fold(entries[i-1], entries[i])
	}
	return c
}

// Fold records newest as the answer to prev when prev is a user turn and
// newest a model turn. It reports whether the cache changed. Questions that
// normalize to "" are skipped.
func (c *QACache) Fold(prev, newest Entry) bool {
	if NormalizeRole(string(prev.Role)) != RoleUser || NormalizeRole(string(newest.Role)) != RoleModel {
		return false
	}

	q := NormalizeQuestion(prev.Content)
	if q == "" {
		return false
	}

	c.answers[q] = newest.Content
	return true
}

// Lookup returns the cached answer for question, normalizing it first.
func (c *QACache) Lookup(question string) (string, bool) {
	q := NormalizeQuestion(question)
	if q == "" {
		return "", false
	}
	a, ok := c.answers[q]
	return a, ok
}

// Len returns the number of cached questions.
func (c *QACache) Len() int {
	return len(c.answers)
}

// Snapshot returns a copy of the cache contents.
func (c *QACache) Snapshot() map[string]string {
	out := make(map[string]string, len(c.answers))
	for q, a := range c.answers {
		out[q] = a
	}
	return out
}
