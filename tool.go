// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/typedai/agent/embedded"
	"github.com/typedai/agent/schema"
)

type Tool interface {
	embedded.Tool
}

// Function describes a callable capability to the model and dispatches
// validated calls against it. The bound Go function keeps access to whatever
// dependencies its closure or receiver carries.
type Function[A, R any] struct {
	embedded.Tool

	// The name the model calls the function by.
	// Must be a-z, A-Z, 0-9, or contain underscores and dashes, with a maximum length of 64.
	Name string
	// A description of what the function does, used by the model to choose when and how to call it.
	Description string
	// Parameter overrides the schema synthesized from A via reflection.
	Parameter *schema.Schema
	// The real function attached to the tool.
	Function func(ctx context.Context, argument A) (R, error)
}

// ToolSchema is one entry of the model-facing tool catalog.
type ToolSchema struct {
	Name        string
	Description string
	Parameter   *schema.Schema
}

type functional[A, R any] interface {
	func(context.Context, A) (R, error) | *Agent
}

// FunctionFor creates a function tool for either a plain function or a
// sub-agent. Function names default to the Go symbol name.
func FunctionFor[A, R any, S functional[A, R]](s S) Function[A, R] {
	switch from := any(s).(type) {
	case *Agent:
		return Function[A, R]{
			Name:        from.Name,
			Description: from.Description,
			Function: func(ctx context.Context, argument A) (R, error) {
				return Run[R](ctx, from, argument)
			},
		}
	case func(context.Context, A) (R, error):
		name := runtime.FuncForPC(reflect.ValueOf(from).Pointer()).Name()
		name = name[strings.LastIndex(name, ".")+1:]

		return Function[A, R]{
			Name:     name,
			Function: from,
		}
	default:
		return Function[A, R]{} // Should not happen.
	}
}

type callable interface {
	ID() string
	Schema() (ToolSchema, error)
	Call(ctx context.Context, argument string) (Message, error)
}

func (f Function[A, R]) ID() string { return f.Name }

func (f Function[A, R]) Schema() (ToolSchema, error) {
	parameter := f.Parameter
	if parameter == nil {
		var err error
		if parameter, err = schema.For[A](); err != nil {
			return ToolSchema{}, fmt.Errorf("generate parameter schema: %w", err)
		}
	}

	return ToolSchema{
		Name:        f.Name,
		Description: f.Description,
		Parameter:   parameter,
	}, nil
}

func (f Function[A, R]) Call(ctx context.Context, argument string) (Message, error) {
	toolSchema, err := f.Schema()
	if err != nil {
		return Message{}, &ToolExecutionError{Name: f.Name, Err: err}
	}
	if toolSchema.Parameter != nil {
		if err := toolSchema.Parameter.Validate([]byte(argument)); err != nil {
			return Message{}, err
		}
	}

	var a A
	if err := json.Unmarshal([]byte(argument), &a); err != nil {
		return Message{}, &ValidationError{Issues: []schema.Issue{
			{Path: "$", Reason: "unmarshal arguments: " + err.Error()},
		}}
	}
	result, err := f.Function(ctx, a)
	if err != nil {
		return Message{}, &ToolExecutionError{Name: f.Name, Err: err}
	}

	return toMessage(RoleTool, result)
}

// toolset is the ordered catalog of an agent's tools.
type toolset struct {
	order  []string
	byName map[string]callable
}

func newToolset(tools []Tool) (*toolset, error) {
	set := &toolset{byName: make(map[string]callable, len(tools))}
	for _, tool := range tools {
		call, ok := tool.(callable)
		if !ok {
			return nil, &ConfigError{Reason: fmt.Sprintf("tool %T is not callable", tool)}
		}
		name := call.ID()
		if name == "" {
			return nil, &ConfigError{Reason: "tool with empty name"}
		}
		if _, ok := set.byName[name]; ok {
			return nil, &ConfigError{Reason: fmt.Sprintf("duplicate tool name %q", name)}
		}
		set.order = append(set.order, name)
		set.byName[name] = call
	}

	return set, nil
}

// schemas returns the model-facing catalog in registration order.
func (t *toolset) schemas() ([]ToolSchema, error) {
	catalog := make([]ToolSchema, 0, len(t.order))
	for _, name := range t.order {
		toolSchema, err := t.byName[name].Schema()
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, toolSchema)
	}

	return catalog, nil
}

// invoke executes one requested call. Failures become observation messages
// returned to the model so it can self-correct within the round budget.
func (t *toolset) invoke(ctx context.Context, call ToolCall) Message {
	function, ok := t.byName[call.Name]
	if !ok {
		return observation(call.ID, &ToolNotFoundError{Name: call.Name})
	}

	message, err := function.Call(ctx, string(call.Arguments))
	if err != nil {
		return observation(call.ID, err)
	}
	message.Role = RoleTool
	message.ToolCallID = call.ID

	return message
}

func observation(callID string, err error) Message {
	encoded, _ := json.Marshal(map[string]string{"error": err.Error()}) //nolint:errchkjson

	return Message{
		Role:       RoleTool,
		ToolCallID: callID,
		Content:    []Content{Text{Text: string(encoded)}},
	}
}
