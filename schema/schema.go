// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Package schema synthesizes runtime-checkable JSON schemas from declared
// property metadata or from Go types, and validates JSON documents against
// them. Synthesized schemas are immutable and cached per type.
package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/typedai/agent/meta"
)

const (
	typeBoolean = "boolean"
	typeInteger = "integer"
	typeNumber  = "number"
	typeString  = "string"
	typeArray   = "array"
	typeObject  = "object"
)

// cuidPattern stands in for the cuid format, which JSON schema does not name.
const cuidPattern = "^c[a-z0-9]{8,}$"

// Schema is an immutable synthesized schema. Field order in Def equals
// property declaration order.
type Schema struct {
	Name        string
	Description string
	Def         *jsonschema.Schema
}

// MarshalJSON renders the underlying schema definition.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Def)
}

type synthEntry struct {
	once   sync.Once
	schema *Schema
	err    error
}

//nolint:gochecknoglobals
var (
	synthMu    sync.Mutex
	synthCache = make(map[*meta.Registry]map[string]*synthEntry)
)

// Synthesize converts the metadata registered for the named type into a
// Schema. The result is cached per (registry, type name); repeated calls are
// free after the first and two syntheses from identical metadata are
// value-equal. The registry is never mutated.
func Synthesize(registry *meta.Registry, typeName string) (*Schema, error) {
	synthMu.Lock()
	byName, ok := synthCache[registry]
	if !ok {
		byName = make(map[string]*synthEntry)
		synthCache[registry] = byName
	}
	entry, ok := byName[typeName]
	if !ok {
		entry = &synthEntry{}
		byName[typeName] = entry
	}
	synthMu.Unlock()

	entry.once.Do(func() {
		entry.schema, entry.err = synthesize(registry, typeName, map[string]struct{}{typeName: {}})
	})

	return entry.schema, entry.err
}

func synthesize(registry *meta.Registry, typeName string, visiting map[string]struct{}) (*Schema, error) {
	typ, ok := registry.Lookup(typeName)
	if !ok {
		return nil, &ConfigError{Reason: fmt.Sprintf("type %q is not registered", typeName)}
	}

	def := &jsonschema.Schema{
		Title:                typeName,
		Description:          typ.Description,
		Type:                 typeObject,
		Properties:           orderedmap.New[string, *jsonschema.Schema](),
		AdditionalProperties: jsonschema.FalseSchema,
	}
	for _, property := range typ.Properties() {
		propertySchema, err := synthesizeProperty(registry, typeName, property, visiting)
		if err != nil {
			return nil, err
		}
		def.Properties.Set(property.Name, propertySchema)
		if !property.Optional {
			def.Required = append(def.Required, property.Name)
		}
	}

	return &Schema{Name: typeName, Description: typ.Description, Def: def}, nil
}

//nolint:cyclop
func synthesizeProperty(
	registry *meta.Registry,
	typeName string,
	property meta.Property,
	visiting map[string]struct{},
) (*jsonschema.Schema, error) {
	family, err := inferFamily(typeName, property)
	if err != nil {
		return nil, err
	}

	def := &jsonschema.Schema{Description: property.Description}
	if property.Example != nil {
		def.Examples = []any{property.Example}
	}

	switch family {
	case meta.FamilyEnum:
		if len(property.EnumValues) == 0 {
			return nil, &ConfigError{
				Reason: fmt.Sprintf("property %s.%s declares an empty enum value set", typeName, property.Name),
			}
		}
		def.Enum = property.EnumValues
		if kind, uniform := uniformEnumKind(property.EnumValues); uniform {
			def.Type = kind
		}
	case meta.FamilyString:
		def.Type = typeString
	case meta.FamilyNumber:
		def.Type = typeNumber
	case meta.FamilyArray:
		def.Type = typeArray
		items, err := resolveItems(registry, typeName, property, visiting)
		if err != nil {
			return nil, err
		}
		def.Items = items
	case "":
		// No rules: an opaque property that still carries its description.
	}

	for _, rule := range property.Rules {
		if err := applyRule(def, rule); err != nil {
			return nil, &ConfigError{
				Reason: fmt.Sprintf("property %s.%s: %v", typeName, property.Name, err),
			}
		}
	}

	return def, nil
}

// inferFamily determines the base kind of a property from the rule families
// present. Conflicting families are a hard synthesis error.
func inferFamily(typeName string, property meta.Property) (meta.Family, error) {
	var families []meta.Family
	seen := make(map[meta.Family]struct{})
	for _, rule := range property.Rules {
		family := rule.Kind.Family()
		if _, ok := seen[family]; ok {
			continue
		}
		seen[family] = struct{}{}
		families = append(families, family)
	}
	if property.ItemType != "" {
		if _, ok := seen[meta.FamilyArray]; !ok {
			seen[meta.FamilyArray] = struct{}{}
			families = append(families, meta.FamilyArray)
		}
	}

	if len(families) > 1 {
		return "", &TypeConflictError{Type: typeName, Property: property.Name, Families: families}
	}
	if len(families) == 0 {
		return "", nil
	}

	return families[0], nil
}

func resolveItems(
	registry *meta.Registry,
	typeName string,
	property meta.Property,
	visiting map[string]struct{},
) (*jsonschema.Schema, error) {
	switch property.ItemType {
	case "":
		return nil, &ConfigError{
			Reason: fmt.Sprintf("array property %s.%s declares no item type", typeName, property.Name),
		}
	case typeString, typeNumber, typeInteger, typeBoolean:
		return &jsonschema.Schema{Type: property.ItemType}, nil
	default:
		if _, ok := visiting[property.ItemType]; ok {
			return nil, &ConfigError{
				Reason: fmt.Sprintf("array property %s.%s refers to %q recursively",
					typeName, property.Name, property.ItemType),
			}
		}
		if _, ok := registry.Lookup(property.ItemType); !ok {
			return nil, &ConfigError{
				Reason: fmt.Sprintf("array property %s.%s refers to unresolvable item type %q",
					typeName, property.Name, property.ItemType),
			}
		}

		visiting[property.ItemType] = struct{}{}
		defer delete(visiting, property.ItemType)
		item, err := synthesize(registry, property.ItemType, visiting)
		if err != nil {
			return nil, err
		}

		return item.Def, nil
	}
}

// applyRule lowers one rule onto the schema definition. A missing or
// malformed rule parameter is a hard error; constraints are never dropped.
//
//nolint:cyclop,funlen
func applyRule(def *jsonschema.Schema, rule meta.Rule) error {
	var err error
	switch rule.Kind {
	case meta.KindEmail:
		def.Format = "email"
	case meta.KindURL:
		def.Format = "uri"
	case meta.KindUUID:
		def.Format = "uuid"
	case meta.KindDateTime:
		def.Format = "date-time"
	case meta.KindIP:
		def.Format = "ip"
	case meta.KindCUID:
		def.Pattern = cuidPattern
	case meta.KindPattern:
		def.Pattern, err = stringParam(rule)
	case meta.KindMin:
		def.MinLength, err = uintParam(rule)
	case meta.KindMax:
		def.MaxLength, err = uintParam(rule)
	case meta.KindMinimum:
		def.Minimum, err = numberParam(rule)
	case meta.KindMaximum:
		def.Maximum, err = numberParam(rule)
	case meta.KindExclusiveMinimum:
		def.ExclusiveMinimum, err = numberParam(rule)
	case meta.KindExclusiveMaximum:
		def.ExclusiveMaximum, err = numberParam(rule)
	case meta.KindMultipleOf:
		def.MultipleOf, err = numberParam(rule)
	case meta.KindInteger:
		def.Type = typeInteger
	case meta.KindMinItems:
		def.MinItems, err = uintParam(rule)
	case meta.KindMaxItems:
		def.MaxItems, err = uintParam(rule)
	case meta.KindUniqueItems:
		def.UniqueItems = true
	case meta.KindEnum:
		// Enum values are carried on the property record.
	}

	return err
}

func uniformEnumKind(values []any) (string, bool) {
	kind := ""
	for _, value := range values {
		var current string
		switch value.(type) {
		case string:
			current = typeString
		case int, int32, int64, float32, float64, json.Number:
			current = typeNumber
		case bool:
			current = typeBoolean
		default:
			return "", false
		}
		if kind == "" {
			kind = current
		} else if kind != current {
			return "", false
		}
	}

	return kind, kind != ""
}

//nolint:err113
func stringParam(rule meta.Rule) (string, error) {
	if len(rule.Params) == 0 {
		return "", fmt.Errorf("rule %s is missing its parameter", rule.Kind)
	}

	return fmt.Sprintf("%v", rule.Params[0]), nil
}

//nolint:err113
func uintParam(rule meta.Rule) (*uint64, error) {
	if len(rule.Params) == 0 {
		return nil, fmt.Errorf("rule %s is missing its parameter", rule.Kind)
	}
	value, err := strconv.ParseUint(fmt.Sprintf("%v", rule.Params[0]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("rule %s has invalid parameter %v", rule.Kind, rule.Params[0])
	}

	return &value, nil
}

//nolint:err113
func numberParam(rule meta.Rule) (json.Number, error) {
	if len(rule.Params) == 0 {
		return "", fmt.Errorf("rule %s is missing its parameter", rule.Kind)
	}
	number := json.Number(fmt.Sprintf("%v", rule.Params[0]))
	if _, err := number.Float64(); err != nil {
		return "", fmt.Errorf("rule %s has invalid parameter %v", rule.Kind, rule.Params[0])
	}

	return number, nil
}
