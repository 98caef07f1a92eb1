// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/typedai/agent/schema"
)

type (
	// Request is one round sent to a model handler: the assembled prompt,
	// the conversation so far, the tool catalog and the output contract.
	Request struct {
		Model        string
		Instructions string
		Messages     []Message
		Tools        []ToolSchema
		// Output contract, if the agent declares one.
		SchemaName        string
		SchemaDescription string
		OutputSchema      *schema.Schema
	}

	// Handler is the uniform boundary to whichever model provider is
	// configured. Implementations must be stateless beyond their immutable
	// configuration so that concurrent calls on one handler are safe.
	Handler interface {
		ProcessQuery(ctx context.Context, req Request) (Message, error)
	}

	// ProviderFactory builds a handler for one model of its provider.
	ProviderFactory func(model string) (Handler, error)
)

//nolint:gochecknoglobals
var (
	providerMu sync.RWMutex
	providers  = make(map[string]ProviderFactory)

	defaultHandler atomic.Pointer[Handler]
)

// RegisterProvider makes a provider selectable through the
// "<provider>:<model>" selector. Concrete providers live outside this module
// and register themselves at startup.
func RegisterProvider(name string, factory ProviderFactory) {
	providerMu.Lock()
	defer providerMu.Unlock()

	providers[name] = factory
}

// SetDefaultHandler sets the handler used by agents without a model
// selector or explicit handler. A nil handler leaves the default unchanged.
func SetDefaultHandler(handler Handler) {
	if handler != nil {
		defaultHandler.Store(&handler)
	}
}

// checkSelector verifies a "<provider>:<model>" selector names a registered
// provider without invoking its factory, so Validate stays side-effect free.
func checkSelector(selector string) error {
	provider, model, ok := strings.Cut(selector, ":")
	if !ok || provider == "" || model == "" {
		return &ConfigError{Reason: fmt.Sprintf("model selector %q is not of the form provider:model", selector)}
	}

	providerMu.RLock()
	_, ok = providers[provider]
	providerMu.RUnlock()
	if !ok {
		return &ConfigError{Reason: fmt.Sprintf("unknown provider %q", provider)}
	}

	return nil
}

// handlerFor resolves a "<provider>:<model>" selector. An unknown provider
// is a ConfigError raised before any network activity.
func handlerFor(selector string) (Handler, error) { //nolint:ireturn
	if err := checkSelector(selector); err != nil {
		return nil, err
	}
	provider, model, _ := strings.Cut(selector, ":")

	providerMu.RLock()
	factory := providers[provider]
	providerMu.RUnlock()

	return factory(model)
}
