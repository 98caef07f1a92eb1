// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package agent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typedai/agent"
	"github.com/typedai/agent/internal/handlertest"
)

func TestRunStream_FragmentsInFieldOrder(t *testing.T) {
	handler := handlertest.New(handlertest.Final(validReport))
	weatherBot := &agent.Agent{Name: "weather-bot", Output: reportSchema(t), Handler: handler}

	var fragments []string
	for fragment, err := range agent.RunStream(context.Background(), weatherBot, "weather?") {
		require.NoError(t, err)
		fragments = append(fragments, string(fragment))
	}

	require.Len(t, fragments, 2, "one fragment per top-level field")
	assert.JSONEq(t, `{"city": "San Francisco"}`, fragments[0])
	assert.JSONEq(t, `{"temperature": 72}`, fragments[1])
}

func TestRunStream_EarlyAbandonment(t *testing.T) {
	handler := handlertest.New(handlertest.Final(validReport))
	weatherBot := &agent.Agent{Name: "weather-bot", Output: reportSchema(t), Handler: handler}

	var fragments []string
	for fragment, err := range agent.RunStream(context.Background(), weatherBot, "weather?") {
		require.NoError(t, err)
		fragments = append(fragments, string(fragment))

		break
	}

	assert.Len(t, fragments, 1)
}

func TestRunStream_RawText(t *testing.T) {
	handler := handlertest.New(handlertest.Final("plain answer"))
	bot := &agent.Agent{Name: "untyped", Handler: handler}

	var fragments []string
	for fragment, err := range agent.RunStream(context.Background(), bot, "hello") {
		require.NoError(t, err)
		fragments = append(fragments, string(fragment))
	}

	require.Len(t, fragments, 1)
	assert.JSONEq(t, `"plain answer"`, fragments[0])
}

func TestRunStream_SurfacesRunFailure(t *testing.T) {
	handler := handlertest.New(handlertest.Final(`{"city": ""}`))
	weatherBot := &agent.Agent{Name: "weather-bot", Output: reportSchema(t), Handler: handler}

	var streamErr error
	for _, err := range agent.RunStream(
		context.Background(), weatherBot, "weather?", agent.WithMaxCorrections(0),
	) {
		streamErr = err
	}

	var invalid *agent.OutputValidationError
	require.ErrorAs(t, streamErr, &invalid)
}

func TestRunStream_NotRestartable(t *testing.T) {
	handler := handlertest.New(handlertest.Final(validReport))
	weatherBot := &agent.Agent{Name: "weather-bot", Output: reportSchema(t), Handler: handler}

	stream := agent.RunStream(context.Background(), weatherBot, "weather?")
	for range stream { //nolint:revive
	}

	var restartErr error
	for _, err := range stream {
		restartErr = err
	}

	var config *agent.ConfigError
	require.ErrorAs(t, restartErr, &config)
}
