// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
)

//nolint:gochecknoglobals
var (
	formats = validator.New()

	patternMu sync.Mutex
	patterns  = make(map[string]*regexp.Regexp)
)

// multipleOfEpsilon absorbs float64 rounding in the multipleOf check.
const multipleOfEpsilon = 1e-9

// Validate checks a JSON document against the schema. It returns nil on
// conformance, a *ValidationError carrying every diagnostic found otherwise.
func (s *Schema) Validate(data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return &ValidationError{Issues: []Issue{{Path: "$", Reason: "invalid JSON: " + err.Error()}}}
	}

	var issues []Issue
	validateValue("$", s.Def, value, &issues)
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}

	return nil
}

func report(issues *[]Issue, path, format string, args ...any) {
	*issues = append(*issues, Issue{Path: path, Reason: fmt.Sprintf(format, args...)})
}

//nolint:cyclop
func validateValue(path string, def *jsonschema.Schema, value any, issues *[]Issue) {
	if def == nil {
		return
	}

	if len(def.Enum) > 0 {
		validateEnum(path, def, value, issues)

		return
	}

	switch def.Type {
	case typeObject:
		validateObject(path, def, value, issues)
	case typeString:
		validateString(path, def, value, issues)
	case typeNumber, typeInteger:
		validateNumber(path, def, value, issues)
	case typeArray:
		validateArray(path, def, value, issues)
	case typeBoolean:
		if _, ok := value.(bool); !ok {
			report(issues, path, "expected boolean, got %T", value)
		}
	default:
		// Opaque property: any value conforms.
	}
}

func validateEnum(path string, def *jsonschema.Schema, value any, issues *[]Issue) {
	for _, allowed := range def.Enum {
		if equalJSON(allowed, value) {
			return
		}
	}

	allowed, _ := json.Marshal(def.Enum)
	report(issues, path, "value %v is not one of %s", value, allowed)
}

// equalJSON compares through the JSON encoding so that declared enum values
// of any Go numeric type match decoded float64 values.
func equalJSON(a, b any) bool {
	left, err := json.Marshal(a)
	if err != nil {
		return false
	}
	right, err := json.Marshal(b)
	if err != nil {
		return false
	}

	return string(left) == string(right)
}

func validateObject(path string, def *jsonschema.Schema, value any, issues *[]Issue) {
	object, ok := value.(map[string]any)
	if !ok {
		report(issues, path, "expected object, got %T", value)

		return
	}

	for _, name := range def.Required {
		if _, ok := object[name]; !ok {
			report(issues, path, "missing required property %q", name)
		}
	}

	if def.Properties == nil {
		return
	}
	// Walk declared properties in schema order so diagnostics are deterministic.
	for pair := def.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if fieldValue, ok := object[pair.Key]; ok {
			validateValue(path+"."+pair.Key, pair.Value, fieldValue, issues)
		}
	}
	for name := range object {
		if _, ok := def.Properties.Get(name); !ok && def.AdditionalProperties == jsonschema.FalseSchema {
			report(issues, path, "unknown property %q", name)
		}
	}
}

//nolint:cyclop
func validateString(path string, def *jsonschema.Schema, value any, issues *[]Issue) {
	text, ok := value.(string)
	if !ok {
		report(issues, path, "expected string, got %T", value)

		return
	}

	length := uint64(len([]rune(text)))
	if def.MinLength != nil && length < *def.MinLength {
		report(issues, path, "length %d is less than minimum %d", length, *def.MinLength)
	}
	if def.MaxLength != nil && length > *def.MaxLength {
		report(issues, path, "length %d exceeds maximum %d", length, *def.MaxLength)
	}
	if def.Pattern != "" {
		expr, err := compiled(def.Pattern)
		if err != nil {
			report(issues, path, "invalid pattern %q: %v", def.Pattern, err)
		} else if !expr.MatchString(text) {
			report(issues, path, "value does not match pattern %q", def.Pattern)
		}
	}
	if def.Format != "" {
		if tag, ok := formatTags[def.Format]; ok {
			if err := formats.Var(text, tag); err != nil {
				report(issues, path, "value is not a valid %s", def.Format)
			}
		}
	}
}

//nolint:gochecknoglobals
var formatTags = map[string]string{
	"email":     "email",
	"uri":       "url",
	"uuid":      "uuid",
	"ip":        "ip",
	"date-time": "datetime=" + time.RFC3339,
}

func compiled(pattern string) (*regexp.Regexp, error) {
	patternMu.Lock()
	defer patternMu.Unlock()

	if expr, ok := patterns[pattern]; ok {
		return expr, nil
	}
	expr, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patterns[pattern] = expr

	return expr, nil
}

//nolint:cyclop
func validateNumber(path string, def *jsonschema.Schema, value any, issues *[]Issue) {
	number, ok := value.(float64)
	if !ok {
		report(issues, path, "expected %s, got %T", def.Type, value)

		return
	}

	if def.Type == typeInteger && number != math.Trunc(number) {
		report(issues, path, "expected integer, got %v", number)
	}
	if bound, ok := boundOf(def.Minimum); ok && number < bound {
		report(issues, path, "value %v is less than minimum %v", number, bound)
	}
	if bound, ok := boundOf(def.Maximum); ok && number > bound {
		report(issues, path, "value %v exceeds maximum %v", number, bound)
	}
	if bound, ok := boundOf(def.ExclusiveMinimum); ok && number <= bound {
		report(issues, path, "value %v is not greater than exclusive minimum %v", number, bound)
	}
	if bound, ok := boundOf(def.ExclusiveMaximum); ok && number >= bound {
		report(issues, path, "value %v is not less than exclusive maximum %v", number, bound)
	}
	if multiple, ok := boundOf(def.MultipleOf); ok && multiple > 0 {
		if remainder := math.Abs(math.Mod(number, multiple)); remainder > multipleOfEpsilon &&
			math.Abs(remainder-multiple) > multipleOfEpsilon {
			report(issues, path, "value %v is not a multiple of %v", number, multiple)
		}
	}
}

func boundOf(number json.Number) (float64, bool) {
	if number == "" {
		return 0, false
	}
	bound, err := number.Float64()
	if err != nil {
		return 0, false
	}

	return bound, true
}

func validateArray(path string, def *jsonschema.Schema, value any, issues *[]Issue) {
	items, ok := value.([]any)
	if !ok {
		report(issues, path, "expected array, got %T", value)

		return
	}

	count := uint64(len(items))
	if def.MinItems != nil && count < *def.MinItems {
		report(issues, path, "item count %d is less than minimum %d", count, *def.MinItems)
	}
	if def.MaxItems != nil && count > *def.MaxItems {
		report(issues, path, "item count %d exceeds maximum %d", count, *def.MaxItems)
	}
	if def.UniqueItems {
		seen := make(map[string]int, len(items))
		for i, item := range items {
			encoded, err := json.Marshal(item)
			if err != nil {
				continue
			}
			if j, ok := seen[string(encoded)]; ok {
				report(issues, path, "items %d and %d are duplicates", j, i)
			} else {
				seen[string(encoded)] = i
			}
		}
	}
	if def.Items != nil {
		for i, item := range items {
			validateValue(fmt.Sprintf("%s[%d]", path, i), def.Items, item, issues)
		}
	}
}
