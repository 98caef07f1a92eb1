// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Package agent runs typed agents: a model configuration, a system prompt,
// an optional structured input/output contract and a set of callable tools,
// exposed through a single Run operation that drives a multi-turn
// conversation with the model until a validated structured result is
// produced.
package agent

import (
	"strings"

	"go.uber.org/zap"

	"github.com/typedai/agent/schema"
)

// Agent is a purpose-built AI that uses models and calls tools.
// It can be used to run on different goroutines simultaneously; its injected
// dependencies are fixed for its lifetime.
type Agent struct {
	Name        string
	Description string
	// Model selects the provider and model as "<provider>:<model>".
	Model string

	// Instructions are the static system prompt segments, in order.
	Instructions []string
	// Dynamic segments are computed per run, after the static segments.
	Dynamic []PromptFunc
	// Translator overrides the default schema-to-text rendering.
	Translator Translator

	// Input and Output are the optional structured contracts. A nil Output
	// makes Run return the raw model text.
	Input  *schema.Schema
	Output *schema.Schema

	Tools []Tool
	Shots []Shot

	// Handler overrides the provider selected through Model and the default
	// handler set by SetDefaultHandler.
	Handler Handler
	Logger  *zap.Logger

	// Options provides defaults for all runs by this Agent,
	// and can be overridden by options passed to Run.
	Options []RunOption
}

// Validate checks the agent configuration before any network activity.
// It never invokes provider factories; handler construction happens per run.
func (a *Agent) Validate() error {
	if a.Name == "" {
		return &ConfigError{Reason: "agent name is required"}
	}
	if a.Handler == nil {
		if a.Model == "" {
			if defaultHandler.Load() == nil {
				return &ConfigError{Reason: "agent declares neither a model selector nor a handler"}
			}
		} else if err := checkSelector(a.Model); err != nil {
			return err
		}
	}
	if _, err := newToolset(a.Tools); err != nil {
		return err
	}

	return nil
}

func (a *Agent) handler(override Handler) (Handler, error) { //nolint:ireturn
	if override != nil {
		return override, nil
	}
	if a.Handler != nil {
		return a.Handler, nil
	}
	if a.Model != "" {
		return handlerFor(a.Model)
	}
	if handler := defaultHandler.Load(); handler != nil {
		return *handler, nil
	}

	return nil, &ConfigError{Reason: "no handler configured"}
}

func (a *Agent) logger(override *zap.Logger) *zap.Logger {
	if override != nil {
		return override
	}
	if a.Logger != nil {
		return a.Logger
	}

	return zap.NewNop()
}

// modelName strips the provider prefix for logging and token accounting.
func (a *Agent) modelName() string {
	if _, model, ok := strings.Cut(a.Model, ":"); ok {
		return model
	}

	return a.Model
}
