// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package agent

import "go.uber.org/zap"

const (
	defaultMaxRounds      = 10
	defaultMaxCorrections = 2
)

type (
	RunOption  func(*runOptions)
	runOptions struct {
		maxRounds      int
		maxCorrections int
		handler        Handler
		translator     Translator
		logger         *zap.Logger
		countTokens    bool
	}
)

func defaultRunOptions() runOptions {
	return runOptions{
		maxRounds:      defaultMaxRounds,
		maxCorrections: defaultMaxCorrections,
	}
}

// applyOptions layers per-run options over the agent's defaults.
func applyOptions(a *Agent, opts []RunOption) runOptions {
	options := defaultRunOptions()
	for _, opt := range a.Options {
		opt(&options)
	}
	for _, opt := range opts {
		opt(&options)
	}

	return options
}

// WithMaxRounds bounds the number of model exchanges in a run.
func WithMaxRounds(rounds int) RunOption {
	return func(options *runOptions) {
		options.maxRounds = rounds
	}
}

// WithMaxCorrections bounds how many times a run re-prompts with validation
// feedback after an invalid final answer.
func WithMaxCorrections(corrections int) RunOption {
	return func(options *runOptions) {
		options.maxCorrections = corrections
	}
}

func WithHandler(handler Handler) RunOption {
	return func(options *runOptions) {
		options.handler = handler
	}
}

func WithTranslator(translator Translator) RunOption {
	return func(options *runOptions) {
		options.translator = translator
	}
}

func WithLogger(logger *zap.Logger) RunOption {
	return func(options *runOptions) {
		options.logger = logger
	}
}

// WithTokenAccounting logs an estimated prompt token count at debug level
// when the run starts.
func WithTokenAccounting() RunOption {
	return func(options *runOptions) {
		options.countTokens = true
	}
}
