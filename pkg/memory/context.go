package memory

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/jarvis/pkg/llm"
)

const (
	// DefaultContextWindow is the number of trailing turns sent to the model.
	DefaultContextWindow = 6

	// NoContextFound replaces the context block when nothing is relevant.
	NoContextFound = "No specific context found in memory."

	contextHeader = "--- Relevant Context ---"
	contextFooter = "--------------------"
)

// Persona names the assistant and the person it works for.
type Persona struct {
	Name  string
	Owner string
}

// DefaultPersona is Jarvis working for Aarush.
var DefaultPersona = Persona{Name: "Jarvis", Owner: "Aarush"}

// Preamble returns the persona statement wrapped around block.
func (p Persona) Preamble(block string) string {
	return fmt.Sprintf(
		"You are %s, a helpful AI assistant for %s. Answer the user's current query concisely. "+
			"Use the following contextually relevant information from your memory if it helps.\n\n%s\n%s\n%s",
		p.Name, p.Owner, contextHeader, block, contextFooter,
	)
}

// Acknowledgment is the model-side reply affirming the persona.
func (p Persona) Acknowledgment() string {
	return fmt.Sprintf("Understood. I will act as %s and use the provided context.", p.Name)
}

// Assembler builds the message sequence handed to the language model.
// Zero fields take their defaults.
type Assembler struct {
	Persona Persona
	TopK    int
	Window  int
}

func (a Assembler) withDefaults() Assembler {
	if a.Persona.Name == "" {
		a.Persona.Name = DefaultPersona.Name
	}
	if a.Persona.Owner == "" {
		a.Persona.Owner = DefaultPersona.Owner
	}
	if a.TopK == 0 {
		a.TopK = DefaultTopK
	}
	if a.Window == 0 {
		a.Window = DefaultContextWindow
	}
	return a
}

// Block returns the relevant snippets for query joined by newlines, or
// NoContextFound.
func (a Assembler) Block(query string, knowledge []string) string {
	a = a.withDefaults()
	snippets := FindRelevant(query, knowledge, a.TopK)
	if len(snippets) == 0 {
		return NoContextFound
	}
	return strings.Join(snippets, "\n")
}

// Build returns the preamble as a user message, the acknowledgment as a model
// message, then the last Window history entries in order.
func (a Assembler) Build(query string, knowledge []string, history []Entry) []llm.Message {
	a = a.withDefaults()

	recent := history
	if a.Window >= 0 && len(recent) > a.Window {
		recent = recent[len(recent)-a.Window:]
	}
	if a.Window < 0 {
		recent = nil
	}

	msgs := make([]llm.Message, 0, 2+len(recent))
	msgs = append(msgs,
		llm.NewTextMessage(llm.RoleUser, a.Persona.Preamble(a.Block(query, knowledge))),
		llm.NewTextMessage(llm.RoleModel, a.Persona.Acknowledgment()),
	)
	for _, e := range recent {
		msgs = append(msgs, e.Message())
	}
	return msgs
}

// BuildContext assembles with the default persona, top-k and window.
func BuildContext(query string, knowledge []string, history []Entry) []llm.Message {
	return Assembler{}.Build(query, knowledge, history)
}
