// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package schema

import (
	"fmt"
	"strings"

	"github.com/typedai/agent/meta"
)

// ConfigError reports a bad declaration: an empty enum value set, an
// unresolvable array item type, an unknown type name. It is fatal at
// synthesis time and never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Reason
}

// TypeConflictError reports two incompatible rule families attached to the
// same property. The conflict is never silently resolved.
type TypeConflictError struct {
	Type     string
	Property string
	Families []meta.Family
}

func (e *TypeConflictError) Error() string {
	families := make([]string, 0, len(e.Families))
	for _, family := range e.Families {
		families = append(families, string(family))
	}

	return fmt.Sprintf("conflicting rule families [%s] on property %s.%s",
		strings.Join(families, ", "), e.Type, e.Property)
}

type (
	// Issue is a single validation diagnostic with the path of the
	// offending value.
	Issue struct {
		Path   string
		Reason string
	}

	// ValidationError reports a JSON document that does not conform to a
	// synthesized schema. It carries every diagnostic found, not just the
	// first, so it can serve as corrective feedback.
	ValidationError struct {
		Issues []Issue
	}
)

func (e *ValidationError) Error() string {
	reasons := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		reasons = append(reasons, issue.Path+": "+issue.Reason)
	}

	return "validation failed: " + strings.Join(reasons, "; ")
}
