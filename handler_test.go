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

func TestRun_ProviderSelection(t *testing.T) {
	handler := handlertest.New(handlertest.Final("hello from stub"))
	agent.RegisterProvider("stub", func(model string) (agent.Handler, error) {
		assert.Equal(t, "stub-1", model)

		return handler, nil
	})

	bot := &agent.Agent{Name: "bot", Model: "stub:stub-1"}

	result, err := agent.Run[string](context.Background(), bot, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello from stub", result)
}

func TestRun_FactoryInvokedOncePerRun(t *testing.T) {
	var factoryCalls int
	handler := handlertest.New(handlertest.Final("ok"))
	agent.RegisterProvider("counting", func(string) (agent.Handler, error) {
		factoryCalls++

		return handler, nil
	})

	bot := &agent.Agent{Name: "bot", Model: "counting:m1"}

	require.NoError(t, bot.Validate())
	assert.Equal(t, 0, factoryCalls, "Validate checks registration without building a handler")

	_, err := agent.Run[string](context.Background(), bot, "hi")
	require.NoError(t, err)
	assert.Equal(t, 1, factoryCalls)
}

func TestAgent_ValidateUnknownProvider(t *testing.T) {
	bot := &agent.Agent{Name: "bot", Model: "ghost:m1"}

	err := bot.Validate()

	var config *agent.ConfigError
	require.ErrorAs(t, err, &config)
	assert.Contains(t, config.Reason, "ghost")
}

func TestAgent_ValidateBadSelector(t *testing.T) {
	bot := &agent.Agent{Name: "bot", Model: "missing-colon"}

	var config *agent.ConfigError
	require.ErrorAs(t, bot.Validate(), &config)
}

func TestSetDefaultHandler(t *testing.T) {
	handler := handlertest.New(handlertest.Final("default answer"))
	agent.SetDefaultHandler(handler)

	bot := &agent.Agent{Name: "bot"}

	result, err := agent.Run[string](context.Background(), bot, "hi")
	require.NoError(t, err)
	assert.Equal(t, "default answer", result)
}
