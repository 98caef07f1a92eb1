// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Package handlertest provides a scripted model handler for orchestrator
// tests.
package handlertest

import (
	"context"
	"errors"
	"sync"

	"github.com/typedai/agent"
)

// Step produces the model response for one round given the request.
type Step func(req agent.Request) (agent.Message, error)

// Handler replays a script of model turns and records every request it saw.
type Handler struct {
	mu       sync.Mutex
	script   []Step
	requests []agent.Request
}

var _ agent.Handler = (*Handler)(nil)

func New(steps ...Step) *Handler {
	return &Handler{script: steps}
}

func (h *Handler) ProcessQuery(_ context.Context, req agent.Request) (agent.Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.requests = append(h.requests, req)
	if len(h.script) == 0 {
		return agent.Message{}, errors.New("handlertest: script exhausted")
	}
	step := h.script[0]
	h.script = h.script[1:]

	return step(req)
}

// Requests returns the recorded requests in call order.
func (h *Handler) Requests() []agent.Request {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]agent.Request(nil), h.requests...)
}

// Final scripts a candidate final answer.
func Final(text string) Step {
	return func(agent.Request) (agent.Message, error) {
		return agent.TextMessage(agent.RoleAssistant, text), nil
	}
}

// Calls scripts a round that requests the given tool calls.
func Calls(calls ...agent.ToolCall) Step {
	return func(agent.Request) (agent.Message, error) {
		return agent.Message{Role: agent.RoleAssistant, ToolCalls: calls}, nil
	}
}

// Fail scripts a transport failure.
func Fail(err error) Step {
	return func(agent.Request) (agent.Message, error) {
		return agent.Message{}, err
	}
}
