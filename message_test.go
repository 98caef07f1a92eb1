// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package agent_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typedai/agent"
)

func TestTextMessage(t *testing.T) {
	message := agent.TextMessage(agent.RoleUser, "first", "second")

	assert.Equal(t, agent.RoleUser, message.Role)
	require.Len(t, message.Content, 2)
	assert.Equal(t, "first", message.Content[0].(agent.Text).Text)
	assert.Equal(t, "second", message.Content[1].(agent.Text).Text)
}

func TestMessage_MarshalJSON(t *testing.T) {
	encoded, err := agent.TextMessage(agent.RoleUser, "What's the weather in San Francisco?").MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"role": "user", "content": ["What's the weather in San Francisco?"]}`, string(encoded))
}

func TestMessage_MarshalJSONToolCall(t *testing.T) {
	message := agent.Message{
		Role: agent.RoleAssistant,
		ToolCalls: []agent.ToolCall{
			{ID: "call-1", Name: "get_temperature", Arguments: json.RawMessage(`{"city": "SF"}`)},
		},
	}

	encoded, err := message.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"role": "assistant", "tool_calls": [{"id": "call-1", "name": "get_temperature", "arguments": {"city": "SF"}}]}`,
		string(encoded))
}
