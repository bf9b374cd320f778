package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/papercomputeco/jarvis/pkg/llm"
	"github.com/papercomputeco/jarvis/pkg/logger"
	"github.com/papercomputeco/jarvis/pkg/storage"
)

// Config configures a Memory.
type Config struct {
	// Driver holds the four collections. Required.
	Driver storage.Driver

	// Logger receives load and save warnings.
	Logger *slog.Logger

	// Assembler controls persona, top-k and window for BuildContext.
	Assembler Assembler
}

// Memory is the assistant's single owned memory aggregate. It is safe for
// concurrent use; every method returns copies.
type Memory struct {
	mu sync.RWMutex

	driver    storage.Driver
	log       *slog.Logger
	assembler Assembler

	history   *History
	facts     *Facts
	local     map[string]string
	biography Node

	knowledge []string
	cache     *QACache
}

// Stats summarizes the current memory.
type Stats struct {
	Turns           int `json:"turns"`
	Facts           int `json:"facts"`
	Snippets        int `json:"snippets"`
	CachedQuestions int `json:"cached_questions"`
	LocalAnswers    int `json:"local_answers"`

	FactKeys []string `json:"fact_keys"`
}

// New loads every collection from the driver and derives UnifiedKnowledge and
// the QACache. Missing or malformed collections start empty.
func New(ctx context.Context, c Config) (*Memory, error) {
	if c.Driver == nil {
		return nil, ErrNilStore
	}

	m := &Memory{
		driver:    c.Driver,
		log:       logger.Component(c.Logger, "memory"),
		assembler: c.Assembler.withDefaults(),
	}

	l := loader{driver: m.driver, log: m.log}
	m.history, _ = l.history(ctx)
	m.facts, _ = l.facts(ctx)
	m.local, _ = l.localKnowledge(ctx)
	m.biography, _ = l.biography(ctx)

	m.knowledge = BuildKnowledge(m.facts, m.biography)
	m.cache = BuildQACache(m.history.entries)

	m.log.Debug("memory loaded",
		"turns", m.history.Len(),
		"facts", m.facts.Len(),
		"snippets", len(m.knowledge),
		"cached_questions", m.cache.Len(),
		"local_answers", len(m.local),
	)

	return m, nil
}

// Append adds a turn, folds it into the QACache and saves history and facts.
// Save failures are logged, never returned.
func (m *Memory) Append(ctx context.Context, role, content string) Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.history.Append(role, content)
	if prev, newest, ok := m.history.LastTwo(); ok {
		m.cache.Fold(prev, newest)
	}

	m.save(ctx)
	return e
}

// SetFact stores a fact, rebuilds UnifiedKnowledge and saves.
func (m *Memory) SetFact(ctx context.Context, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.facts.Set(key, value)
	m.knowledge = BuildKnowledge(m.facts, m.biography)

	m.save(ctx)
}

// Reload re-reads facts, local knowledge and the biography and rebuilds
// UnifiedKnowledge. A collection that cannot be read or decoded keeps its
// current value. History and the QACache are untouched. The lock is held
// across the reads so a concurrent SetFact is never overwritten by older facts.
func (m *Memory) Reload(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := loader{driver: m.driver, log: m.log}
	facts, factsOK := l.facts(ctx)
	local, localOK := l.localKnowledge(ctx)
	bio, bioOK := l.biography(ctx)

	if factsOK {
		m.facts = facts
	}
	if localOK {
		m.local = local
	}
	if bioOK {
		m.biography = bio
	}
	m.knowledge = BuildKnowledge(m.facts, m.biography)

	m.log.Info("memory reloaded",
		"facts", m.facts.Len(),
		"snippets", len(m.knowledge),
		"local_answers", len(m.local),
	)
}

// LocalAnswer returns the canned LocalKnowledge value for query. The value may
// be a directive such as DirectiveTime.
func (m *Memory) LocalAnswer(query string) (string, bool) {
	q := NormalizeQuestion(query)
	if q == "" {
		return "", false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.local[q]
	return a, ok
}

// CachedAnswer returns the QACache answer for query.
func (m *Memory) CachedAnswer(query string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.Lookup(query)
}

// FindRelevant ranks UnifiedKnowledge against query. topK of 0 uses the
// configured default.
func (m *Memory) FindRelevant(query string, topK int) []string {
	if topK == 0 {
		topK = m.assembler.TopK
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return FindRelevant(query, m.knowledge, topK)
}

// BuildContext assembles the model messages for query from the current
// knowledge and history.
func (m *Memory) BuildContext(query string) []llm.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.assembler.Build(query, m.knowledge, m.history.Tail(m.assembler.Window))
}

// History returns a copy of every turn.
func (m *Memory) History() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.history.Entries()
}

// Tail returns a copy of the last n turns.
func (m *Memory) Tail(n int) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.history.Tail(n)
}

// Knowledge returns a copy of UnifiedKnowledge.
func (m *Memory) Knowledge() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string{}, m.knowledge...)
}

// Facts returns a copy of the facts.
func (m *Memory) Facts() *Facts {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.facts.Clone()
}

// Persona returns the configured persona.
func (m *Memory) Persona() Persona {
	return m.assembler.Persona
}

// Stats returns collection sizes.
func (m *Memory) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		Turns:           m.history.Len(),
		Facts:           m.facts.Len(),
		Snippets:        len(m.knowledge),
		CachedQuestions: m.cache.Len(),
		LocalAnswers:    len(m.local),
		FactKeys:        m.facts.Keys(),
	}
}

// CachedAnswers returns a copy of the QACache, keyed by normalized question.
func (m *Memory) CachedAnswers() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.cache.Snapshot()
}

// save writes history and facts. Callers hold m.mu.
func (m *Memory) save(ctx context.Context) {
	docs, err := m.documents()
	if err != nil {
		m.log.Warn("failed to encode memory", "error", err)
		return
	}
	if err := m.driver.PutBatch(ctx, docs); err != nil {
		m.log.Warn("failed to save memory", "error", err)
	}
}

func (m *Memory) documents() ([]storage.Document, error) {
	history, err := json.MarshalIndent(m.history.entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding history: %w", err)
	}
	if m.history.entries == nil {
		history = []byte("[]")
	}

	facts, err := m.facts.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding facts: %w", err)
	}

	return []storage.Document{
		{Name: CollectionHistory, Data: history},
		{Name: CollectionFacts, Data: facts},
	}, nil
}
