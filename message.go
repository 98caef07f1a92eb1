// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package agent

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/typedai/agent/embedded"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type (
	// Message is one turn in the conversation history of a run.
	Message struct {
		Role    Role
		Content []Content
		// ToolCalls is set on assistant messages that request tool execution
		// instead of giving a final answer.
		ToolCalls []ToolCall
		// ToolCallID links a tool result message to the call that produced it.
		ToolCallID string
	}

	Content interface {
		embedded.Content
	}

	// Text content that is part of a message.
	Text struct {
		embedded.Content

		Text string
	}

	// ToolCall is a model request to invoke one catalog tool.
	ToolCall struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
)

// TextMessage builds a message from text segments.
func TextMessage(role Role, texts ...string) Message {
	message := Message{Role: role}
	for _, text := range texts {
		message.Content = append(message.Content, Text{Text: text})
	}

	return message
}

// text concatenates the textual content of the message.
func (m Message) text() string {
	var builder strings.Builder
	for _, content := range m.Content {
		if text, ok := content.(Text); ok {
			builder.WriteString(text.Text)
		}
	}

	return builder.String()
}

func (m Message) MarshalJSON() ([]byte, error) {
	wire := struct {
		Role       Role       `json:"role"`
		Content    []string   `json:"content,omitempty"`
		ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
		ToolCallID string     `json:"tool_call_id,omitempty"`
	}{
		Role:       m.Role,
		ToolCalls:  m.ToolCalls,
		ToolCallID: m.ToolCallID,
	}
	for _, content := range m.Content {
		if text, ok := content.(Text); ok {
			wire.Content = append(wire.Content, text.Text)
		}
	}

	return json.Marshal(wire)
}

// toMessage serializes an arbitrary value into a message of the given role.
// Strings pass through unchanged; everything else is JSON-encoded.
func toMessage(role Role, value any) (Message, error) {
	if text, ok := value.(string); ok {
		return TextMessage(role, text), nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return Message{}, fmt.Errorf("marshal message content: %w", err)
	}

	return TextMessage(role, string(encoded)), nil
}

// fromOutput converts the final textual output into the requested result
// type: string passes through as raw text, bool is parsed from the text,
// everything else is decoded as JSON.
func fromOutput[R any](text string) (R, error) {
	var result R
	switch target := any(&result).(type) {
	case *string:
		*target = text

		return result, nil
	case *bool:
		parsed, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return result, fmt.Errorf("unmarshal output: %w", err)
		}
		*target = parsed

		return result, nil
	default:
		if err := json.Unmarshal([]byte(text), &result); err != nil {
			return result, fmt.Errorf("unmarshal output: %w", err)
		}

		return result, nil
	}
}
