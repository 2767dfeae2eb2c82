package model

import "encoding/json"

// Roles understood by every provider binding.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Part kinds carried inside a message.
const (
	PartText  = "text"
	PartImage = "image"
)

// Part is one typed content element of a conversational turn. Image parts
// carry a base64-encoded PNG data URI.
type Part struct {
	Kind     string
	Text     string
	ImageURL string
}

// TextPart builds a text content part.
func TextPart(text string) Part {
	return Part{Kind: PartText, Text: text}
}

// ImagePart builds an image content part from a data URI.
func ImagePart(dataURI string) Part {
	return Part{Kind: PartImage, ImageURL: dataURI}
}

// Message represents a single conversational turn exchanged with a model.
type Message struct {
	Role      string
	Parts     []Part
	ToolCalls []ToolCall
}

// Text concatenates all text parts of the message.
func (m Message) Text() string {
	var out string
	for _, p := range m.Parts {
		if p.Kind == PartText {
			out += p.Text
		}
	}
	return out
}

// TextMessage builds a message holding a single text part.
func TextMessage(role, text string) Message {
	return Message{Role: role, Parts: []Part{TextPart(text)}}
}

// ToolCall captures a tool invocation emitted by an assistant message. The
// arguments stay raw until a dispatcher decodes them against the tool's
// schema.
type ToolCall struct {
	ID      string
	Name    string
	RawArgs json.RawMessage
}

// ToolSpec advertises one callable tool to the model. Schema must marshal to
// a JSON Schema object.
type ToolSpec struct {
	Name        string
	Description string
	Schema      any
}

// Request is a single reasoning-service round: an optional system prompt, the
// ordered turns, and the tool vocabulary offered for automatic selection.
type Request struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}
