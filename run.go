// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// runState is the transient per-invocation state of the orchestrator.
// It is created at Run entry and discarded at exit; nothing is shared
// across concurrent runs.
type runState struct {
	id          string
	rounds      int
	corrections int
	history     []Message
	lastOutput  string
}

// Run drives a conversation with the configured model until a validated
// result is produced: it builds the prompt and tool catalog, exchanges
// rounds with the handler, executes requested tools, and validates the
// final answer against the output schema. R may be string, bool, or any
// JSON-decodable type conforming to the output schema.
func Run[R any](ctx context.Context, a *Agent, input any, opts ...RunOption) (R, error) { //nolint:ireturn
	output, _, err := a.run(ctx, input, applyOptions(a, opts))
	if err != nil {
		return *new(R), err
	}

	return fromOutput[R](output)
}

//nolint:cyclop,funlen
func (a *Agent) run(ctx context.Context, input any, options runOptions) (string, *runState, error) {
	state := &runState{id: uuid.NewString()}
	if a.Name == "" {
		return "", state, &ConfigError{Reason: "agent name is required"}
	}

	// Handler resolution and toolset construction double as the pre-network
	// configuration checks; the provider factory runs exactly once per run.
	handler, err := a.handler(options.handler)
	if err != nil {
		return "", state, err
	}
	tools, err := newToolset(a.Tools)
	if err != nil {
		return "", state, err
	}
	catalog, err := tools.schemas()
	if err != nil {
		return "", state, err
	}

	translator := options.translator
	if translator == nil {
		translator = a.Translator
	}
	prompt, err := promptFor(ctx, a, a.Output, translator)
	if err != nil {
		return "", state, err
	}

	logger := a.logger(options.logger).With(zap.String("run_id", state.id), zap.String("agent", a.Name))
	if options.countTokens {
		if count, err := EstimateTokens(a.modelName(), prompt); err == nil {
			logger.Debug("assembled prompt", zap.Int("prompt_tokens", count))
		}
	}

	if err := a.seedHistory(state, input); err != nil {
		return "", state, err
	}

	request := Request{
		Model:        a.modelName(),
		Instructions: prompt,
		Tools:        catalog,
		OutputSchema: a.Output,
	}
	if a.Output != nil {
		request.SchemaName = a.Output.Name
		request.SchemaDescription = a.Output.Description
	}

	for state.rounds < options.maxRounds {
		// Cancellation halts further model invocations.
		if err := ctx.Err(); err != nil {
			return "", state, fmt.Errorf("run canceled: %w", err)
		}

		request.Messages = state.history
		response, err := handler.ProcessQuery(ctx, request)
		if err != nil {
			return "", state, &TransportError{Err: err}
		}
		state.rounds++

		if len(response.ToolCalls) > 0 {
			logger.Debug("executing tool calls",
				zap.Int("round", state.rounds), zap.Int("calls", len(response.ToolCalls)))
			state.history = append(state.history, response)
			// In-flight tool calls complete even if the caller cancels,
			// to avoid partially applied side effects.
			results := tools.invokeAll(context.WithoutCancel(ctx), response.ToolCalls)
			state.history = append(state.history, results...)

			continue
		}

		candidate := response.text()
		state.lastOutput = candidate
		if a.Output == nil {
			logger.Debug("run finished", zap.Int("rounds", state.rounds))

			return candidate, state, nil
		}

		validationErr := a.Output.Validate([]byte(candidate))
		if validationErr == nil {
			logger.Debug("run finished",
				zap.Int("rounds", state.rounds), zap.Int("corrections", state.corrections))

			return candidate, state, nil
		}

		if state.corrections >= options.maxCorrections {
			return "", state, &OutputValidationError{
				RunID:       state.id,
				Rounds:      state.rounds,
				Corrections: state.corrections,
				LastOutput:  candidate,
				Cause:       validationErr,
			}
		}
		state.corrections++
		logger.Debug("re-prompting with validation feedback",
			zap.Int("correction", state.corrections), zap.Error(validationErr))
		state.history = append(state.history, response, TextMessage(RoleUser, fmt.Sprintf(
			"The previous response failed validation: %v. Respond again with a corrected JSON object that conforms to the schema.",
			validationErr,
		)))
	}

	return "", state, &MaxRoundsExceededError{
		RunID:       state.id,
		Rounds:      state.rounds,
		Corrections: state.corrections,
		LastOutput:  state.lastOutput,
	}
}

// seedHistory validates and serializes the caller input, preceded by the
// agent's shot examples.
func (a *Agent) seedHistory(state *runState, input any) error {
	toolName := "respond"
	if a.Output != nil && a.Output.Name != "" {
		toolName = a.Output.Name
	}
	shots, err := shotMessages(a.Shots, toolName)
	if err != nil {
		return err
	}
	state.history = append(state.history, shots...)

	message, err := toMessage(RoleUser, input)
	if err != nil {
		return err
	}
	if a.Input != nil {
		if err := a.Input.Validate([]byte(message.text())); err != nil {
			return fmt.Errorf("input does not conform to %s: %w", a.Input.Name, err)
		}
	}
	state.history = append(state.history, message)

	return nil
}

// invokeAll executes the requested calls of one round. Independent calls run
// concurrently but results are joined and returned in request order, keeping
// the history deterministic for the model's next turn.
func (t *toolset) invokeAll(ctx context.Context, calls []ToolCall) []Message {
	results := make([]Message, len(calls))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, call := range calls {
		group.Go(func() error {
			results[i] = t.invoke(groupCtx, call)

			return nil
		})
	}
	_ = group.Wait() // Tool failures are observations, never group errors.

	return results
}
