// Package assistant answers user queries from memory, falling back to a
// language model.
//
// A query is answered, in order, from LocalKnowledge, from the QACache, and
// finally by the model with an assembled context. Every answered query leaves
// a user turn and a model turn in history, adjacent to each other.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/papercomputeco/jarvis/pkg/eventstream"
	"github.com/papercomputeco/jarvis/pkg/llm"
	"github.com/papercomputeco/jarvis/pkg/logger"
	"github.com/papercomputeco/jarvis/pkg/memory"
	"github.com/papercomputeco/jarvis/pkg/utils"
	"github.com/papercomputeco/jarvis/pkg/worker"
)

// Fixed replies.
const (
	EmptyQueryReply = "I didn't receive a command."
	ModelErrorReply = "I'm sorry, I encountered an error with the AI."
	NoModelReply    = "The AI model is not initialized. Please check the server logs."
)

// ErrNilMemory is returned when the assistant has no memory.
var ErrNilMemory = errors.New("assistant: memory is nil")

// Source says where a reply came from.
type Source string

const (
	SourceLocal    Source = "local"
	SourceCache    Source = "cache"
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Reply is the answer to one query.
type Reply struct {
	Text   string `json:"reply"`
	Source Source `json:"source"`

	// Err is the model failure behind a fallback reply.
	Err error `json:"-"`
}

// EventSink accepts turn events for asynchronous publishing. *worker.Pool
// satisfies it.
type EventSink interface {
	Enqueue(job worker.Job) bool
}

// Config configures an Assistant.
type Config struct {
	// Memory is the assistant's memory. Required.
	Memory *memory.Memory

	// Client reaches the language model. Nil answers model-bound queries
	// with NoModelReply.
	Client llm.Client

	// Provider and Model label turn events.
	Provider string
	Model    string

	// Events receives a TurnEvent per answered query. Optional.
	Events EventSink

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	Logger *slog.Logger
}

// Assistant handles queries. It is safe for concurrent use; queries are
// answered one at a time.
type Assistant struct {
	// turn serializes HandleQuery so a user turn and its reply are always
	// adjacent in history.
	turn sync.Mutex

	memory   *memory.Memory
	client   llm.Client
	events   EventSink
	clock    func() time.Time
	log      *slog.Logger
	provider string
	model    string
}

// New creates an Assistant.
func New(c Config) (*Assistant, error) {
	if c.Memory == nil {
		return nil, ErrNilMemory
	}

	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Assistant{
		memory:   c.Memory,
		client:   c.Client,
		events:   c.Events,
		clock:    clock,
		log:      logger.Component(c.Logger, "assistant"),
		provider: c.Provider,
		model:    c.Model,
	}, nil
}

// Memory returns the assistant's memory.
func (a *Assistant) Memory() *memory.Memory {
	return a.memory
}

// HasModel reports whether a language model client is configured.
func (a *Assistant) HasModel() bool {
	return a.client != nil
}

// HandleQuery answers text. Model failures never surface as errors: they
// produce ModelErrorReply, recorded in history like any other reply. A blank
// query gets EmptyQueryReply and leaves history untouched.
func (a *Assistant) HandleQuery(ctx context.Context, text string) (Reply, error) {
	if a == nil || a.memory == nil {
		return Reply{}, ErrNilMemory
	}

	if strings.TrimSpace(text) == "" {
		return Reply{Text: EmptyQueryReply, Source: SourceFallback}, nil
	}

	a.turn.Lock()
	defer a.turn.Unlock()

	started := a.clock()
	a.memory.Append(ctx, string(memory.RoleUser), text)

	reply := a.answer(ctx, text, started)
	a.memory.Append(ctx, string(memory.RoleModel), reply.Text)

	a.log.Debug("query answered",
		"query", utils.Truncate(text, 60),
		"source", reply.Source,
		"duration", a.clock().Sub(started),
	)
	a.publish(text, reply, started)

	return reply, nil
}

func (a *Assistant) answer(ctx context.Context, text string, now time.Time) Reply {
	if value, ok := a.memory.LocalAnswer(text); ok {
		return Reply{Text: ResolveDirective(value, now), Source: SourceLocal}
	}

	if cached, ok := a.memory.CachedAnswer(text); ok {
		return Reply{Text: cached, Source: SourceCache}
	}

	if a.client == nil {
		a.log.Warn("no model client configured")
		return Reply{Text: NoModelReply, Source: SourceFallback}
	}

	out, err := a.client.Generate(ctx, a.memory.BuildContext(text))
	if err != nil {
		a.log.Error("model generation failed", "provider", a.provider, "error", err)
		return Reply{Text: ModelErrorReply, Source: SourceFallback, Err: err}
	}

	return Reply{Text: strings.TrimSpace(out), Source: SourceModel}
}

func (a *Assistant) publish(query string, reply Reply, started time.Time) {
	if a.events == nil {
		return
	}

	persona := a.memory.Persona()
	turn := eventstream.Turn{
		Query:       query,
		Reply:       reply.Text,
		ReplySource: string(reply.Source),
		StartedAt:   started,
		CompletedAt: a.clock(),
	}
	if reply.Err != nil {
		turn.Error = reply.Err.Error()
	}

	event := eventstream.NewTurnEvent(eventstream.EventSource{
		Assistant: persona.Name,
		Owner:     persona.Owner,
		Provider:  a.provider,
		Model:     a.model,
	}, turn, a.clock())

	a.events.Enqueue(worker.Job{Event: event})
}
