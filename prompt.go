// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/typedai/agent/schema"
)

type (
	// PromptFunc computes one dynamic prompt segment per run. It must
	// resolve to a string; any other result is a ConfigError.
	PromptFunc func(ctx context.Context) (any, error)

	// Translator renders a synthesized schema as model-facing instruction
	// text. The default renders an annotated JSON schema block; providers
	// may substitute their own phrasing.
	Translator interface {
		Translate(s *schema.Schema) (string, error)
	}

	TranslatorFunc func(s *schema.Schema) (string, error)
)

func (f TranslatorFunc) Translate(s *schema.Schema) (string, error) { return f(s) }

//nolint:gochecknoglobals
var defaultTranslator Translator = TranslatorFunc(func(s *schema.Schema) (string, error) {
	rendered, err := json.MarshalIndent(s.Def, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render schema %s: %w", s.Name, err)
	}

	var builder strings.Builder
	builder.WriteString("Respond with a single JSON object conforming to the schema")
	if s.Name != "" {
		builder.WriteString(" " + s.Name)
	}
	builder.WriteString(".")
	if s.Description != "" {
		builder.WriteString(" " + s.Description)
	}
	builder.WriteString("\n")
	builder.Write(rendered)

	return builder.String(), nil
})

// promptFor assembles the system prompt: static segments in declaration
// order, then dynamic segments in declaration order, then the rendered
// output schema description.
func promptFor(ctx context.Context, a *Agent, output *schema.Schema, translator Translator) (string, error) {
	parts := make([]string, 0, len(a.Instructions)+len(a.Dynamic)+1)
	parts = append(parts, a.Instructions...)

	for i, dynamic := range a.Dynamic {
		value, err := dynamic(ctx)
		if err != nil {
			return "", &PromptGenerationError{Cause: fmt.Errorf("dynamic segment %d: %w", i, err)}
		}
		text, ok := value.(string)
		if !ok {
			return "", &ConfigError{Reason: fmt.Sprintf("dynamic segment %d resolved to %T, want string", i, value)}
		}
		parts = append(parts, text)
	}

	if output != nil {
		if translator == nil {
			translator = defaultTranslator
		}
		rendered, err := translator.Translate(output)
		if err != nil {
			return "", &PromptGenerationError{Cause: err}
		}
		parts = append(parts, rendered)
	}

	return strings.Join(parts, "\n\n"), nil
}

// Shot is an example request/response pair used to steer output formatting.
type Shot struct {
	Request  any
	Response any
}

// shotMessages renders shots as synthetic history: for each shot a user turn
// with the serialized request, then an assistant turn framed as a call to
// the output tool with the serialized response. N shots yield 2N messages.
func shotMessages(shots []Shot, toolName string) ([]Message, error) {
	if toolName == "" {
		toolName = "respond"
	}

	messages := make([]Message, 0, 2*len(shots))
	for i, shot := range shots {
		request, err := toMessage(RoleUser, shot.Request)
		if err != nil {
			return nil, fmt.Errorf("serialize shot %d request: %w", i, err)
		}
		messages = append(messages, request)

		response, err := json.Marshal(shot.Response)
		if err != nil {
			return nil, fmt.Errorf("serialize shot %d response: %w", i, err)
		}
		messages = append(messages, Message{
			Role: RoleAssistant,
			ToolCalls: []ToolCall{{
				ID:        fmt.Sprintf("shot-%d", i),
				Name:      toolName,
				Arguments: response,
			}},
		})
	}

	return messages, nil
}

// EstimateTokens counts prompt tokens with the encoding of the given model,
// falling back to cl100k_base for unknown models. It is used for
// debug-level prompt accounting when enabled via WithTokenAccounting.
func EstimateTokens(model, text string) (int, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		if encoding, err = tiktoken.GetEncoding("cl100k_base"); err != nil {
			return 0, fmt.Errorf("load token encoding: %w", err)
		}
	}

	return len(encoding.Encode(text, nil, nil)), nil
}
