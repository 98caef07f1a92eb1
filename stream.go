// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package agent

import (
	"context"
	"encoding/json"
	"iter"
)

// Fragment is one partial piece of a streamed structured result: a JSON
// object carrying a single top-level field of the final output.
type Fragment = json.RawMessage

// RunStream runs the same state machine as Run but delivers the terminal
// round's output as a lazily produced, finite, non-restartable sequence of
// fragments, one per top-level field in schema field order. The run does not
// start until the sequence is iterated; abandoning it (or canceling ctx)
// stops further model calls, though tool side effects already committed are
// not rolled back. Agents without an output schema yield the raw text as a
// single fragment.
func RunStream(ctx context.Context, a *Agent, input any, opts ...RunOption) iter.Seq2[Fragment, error] {
	var started bool

	return func(yield func(Fragment, error) bool) {
		if started {
			yield(nil, &ConfigError{Reason: "stream already consumed"})

			return
		}
		started = true

		output, _, err := a.run(ctx, input, applyOptions(a, opts))
		if err != nil {
			yield(nil, err)

			return
		}

		if a.Output == nil {
			encoded, err := json.Marshal(output)
			if err != nil {
				yield(nil, err)

				return
			}
			yield(Fragment(encoded), nil)

			return
		}

		if a.Output.Def.Properties == nil {
			yield(Fragment(output), nil)

			return
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(output), &fields); err != nil {
			yield(nil, err)

			return
		}
		// Emit fragments in schema field order, which equals declaration order.
		for pair := a.Output.Def.Properties.Oldest(); pair != nil; pair = pair.Next() {
			value, ok := fields[pair.Key]
			if !ok {
				continue
			}
			fragment, err := json.Marshal(map[string]json.RawMessage{pair.Key: value})
			if err != nil {
				yield(nil, err)

				return
			}
			if !yield(Fragment(fragment), nil) {
				return
			}
		}
	}
}
