// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package agent

import (
	"fmt"

	"github.com/typedai/agent/schema"
)

// Setup and validation error kinds shared with the schema package.
type (
	ConfigError       = schema.ConfigError
	TypeConflictError = schema.TypeConflictError
	ValidationError   = schema.ValidationError
)

// PromptGenerationError wraps a failure while rendering the system prompt.
type PromptGenerationError struct {
	Cause error
}

func (e *PromptGenerationError) Error() string {
	return "Failed to generate prompt: " + e.Cause.Error()
}

func (e *PromptGenerationError) Unwrap() error { return e.Cause }

// ToolNotFoundError reports a model-requested tool that is not in the
// catalog. It is returned to the model as an observation, never thrown.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q is not registered", e.Name)
}

// ToolExecutionError reports a tool body failure. Like ToolNotFoundError it
// becomes an observation for the model to act on.
type ToolExecutionError struct {
	Name string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Name, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// OutputValidationError is terminal: the final answer still failed the
// output schema after the correction budget was spent.
type OutputValidationError struct {
	RunID       string
	Rounds      int
	Corrections int
	LastOutput  string
	Cause       error
}

func (e *OutputValidationError) Error() string {
	return fmt.Sprintf("run %s: output failed validation after %d rounds and %d corrections: %v",
		e.RunID, e.Rounds, e.Corrections, e.Cause)
}

func (e *OutputValidationError) Unwrap() error { return e.Cause }

// MaxRoundsExceededError is terminal: the model did not converge within the
// configured round budget.
type MaxRoundsExceededError struct {
	RunID       string
	Rounds      int
	Corrections int
	LastOutput  string
}

func (e *MaxRoundsExceededError) Error() string {
	return fmt.Sprintf("run %s: no final answer after %d rounds (%d corrections)",
		e.RunID, e.Rounds, e.Corrections)
}

// TransportError wraps a handler failure. The orchestrator never retries it.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "model handler: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }
