// Package llm defines the provider-agnostic message types and the client
// contract used to reach a hosted language model.
package llm

// Role identifies the speaker of a message. Only two speakers exist: the user
// and the model.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message represents a single message in a conversation.
// Content is stored as an array of ContentBlocks so providers with block-based
// APIs can be mapped without loss.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock represents a single piece of content within a message.
type ContentBlock struct {
	Type string `json:"type"` // "text"
	Text string `json:"text,omitempty"`
}

// NewTextMessage creates a simple text message with the given role and content.
func NewTextMessage(role Role, text string) Message {
	return Message{
		Role: role,
		Content: []ContentBlock{
			{Type: "text", Text: text},
		},
	}
}

// GetText returns the concatenated text content from all text blocks in the message.
func (m *Message) GetText() string {
	var result string
	for _, block := range m.Content {
		if block.Type == "text" {
			result += block.Text
		}
	}
	return result
}
