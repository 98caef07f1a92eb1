// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Package meta holds declared property metadata for agent input, output and
// tool parameter types. Types and their properties are recorded in
// first-registration order, which downstream schema synthesis preserves.
//
// Registration performs no validation; rule-family consistency is checked at
// synthesis time so the attachment order on a single property is irrelevant.
package meta

import (
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type (
	// Property is the metadata record of one declared property.
	Property struct {
		Name        string
		Description string
		Optional    bool
		Rules       []Rule
		EnumValues  []any
		// ItemType names the element type of an array property. It is either
		// a primitive name (string, number, integer, boolean) or the name of
		// another registered type.
		ItemType string
		Example  any
	}

	// Type is the ordered collection of properties declared for one type.
	Type struct {
		Name        string
		Description string

		properties *orderedmap.OrderedMap[string, *Property]
	}

	// Registry is a process-wide, read-mostly store of Type records.
	Registry struct {
		mu    sync.RWMutex
		types *orderedmap.OrderedMap[string, *Type]
	}
)

// Properties returns value snapshots of the properties in declaration order.
// Callers cannot mutate the registry through the returned slice.
func (t *Type) Properties() []Property {
	properties := make([]Property, 0, t.properties.Len())
	for pair := t.properties.Oldest(); pair != nil; pair = pair.Next() {
		property := *pair.Value
		property.Rules = append([]Rule(nil), pair.Value.Rules...)
		property.EnumValues = append([]any(nil), pair.Value.EnumValues...)
		properties = append(properties, property)
	}

	return properties
}

func NewRegistry() *Registry {
	return &Registry{types: orderedmap.New[string, *Type]()}
}

// Lookup returns the type record registered under the given name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typ, ok := r.types.Get(name)

	return typ, ok
}

// Define starts (or resumes) declaring properties for the named type.
func (r *Registry) Define(name string) *TypeBuilder {
	r.mu.Lock()
	defer r.mu.Unlock()

	typ, ok := r.types.Get(name)
	if !ok {
		typ = &Type{Name: name, properties: orderedmap.New[string, *Property]()}
		r.types.Set(name, typ)
	}

	return &TypeBuilder{registry: r, typ: typ}
}

//nolint:gochecknoglobals
var defaultRegistry = NewRegistry()

// Default returns the package-level registry used by Define.
func Default() *Registry { return defaultRegistry }

// Define declares a type on the package-level registry.
func Define(name string) *TypeBuilder { return defaultRegistry.Define(name) }

type (
	// TypeBuilder declares properties of one type.
	TypeBuilder struct {
		registry *Registry
		typ      *Type
	}

	// PropertyBuilder attaches metadata and validation rules to one property.
	// Scalar attributes are last-write-wins; rules accumulate.
	PropertyBuilder struct {
		builder  *TypeBuilder
		property *Property
	}
)

func (b *TypeBuilder) Description(description string) *TypeBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()

	b.typ.Description = description

	return b
}

// Property registers the named property, recording first-seen order.
// Registering the same name again returns a builder for the existing record.
func (b *TypeBuilder) Property(name string) *PropertyBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()

	property, ok := b.typ.properties.Get(name)
	if !ok {
		property = &Property{Name: name}
		b.typ.properties.Set(name, property)
	}

	return &PropertyBuilder{builder: b, property: property}
}

// Property moves on to declaring another property of the same type.
func (p *PropertyBuilder) Property(name string) *PropertyBuilder {
	return p.builder.Property(name)
}

func (p *PropertyBuilder) set(fn func(*Property)) *PropertyBuilder {
	p.builder.registry.mu.Lock()
	defer p.builder.registry.mu.Unlock()

	fn(p.property)

	return p
}

func (p *PropertyBuilder) Description(description string) *PropertyBuilder {
	return p.set(func(property *Property) { property.Description = description })
}

func (p *PropertyBuilder) Optional() *PropertyBuilder {
	return p.set(func(property *Property) { property.Optional = true })
}

func (p *PropertyBuilder) Example(example any) *PropertyBuilder {
	return p.set(func(property *Property) { property.Example = example })
}

func (p *PropertyBuilder) Enum(values ...any) *PropertyBuilder {
	return p.set(func(property *Property) {
		property.EnumValues = values
		property.Rules = append(property.Rules, Rule{Kind: KindEnum})
	})
}

// Items sets the element type of an array property.
func (p *PropertyBuilder) Items(itemType string) *PropertyBuilder {
	return p.set(func(property *Property) { property.ItemType = itemType })
}

func (p *PropertyBuilder) rule(kind Kind, params ...any) *PropertyBuilder {
	return p.set(func(property *Property) {
		property.Rules = append(property.Rules, Rule{Kind: kind, Params: params})
	})
}

// String-family rules.

func (p *PropertyBuilder) Email() *PropertyBuilder    { return p.rule(KindEmail) }
func (p *PropertyBuilder) URL() *PropertyBuilder      { return p.rule(KindURL) }
func (p *PropertyBuilder) UUID() *PropertyBuilder     { return p.rule(KindUUID) }
func (p *PropertyBuilder) CUID() *PropertyBuilder     { return p.rule(KindCUID) }
func (p *PropertyBuilder) DateTime() *PropertyBuilder { return p.rule(KindDateTime) }
func (p *PropertyBuilder) IP() *PropertyBuilder       { return p.rule(KindIP) }

func (p *PropertyBuilder) Pattern(pattern string) *PropertyBuilder {
	return p.rule(KindPattern, pattern)
}

// Min constrains the minimum string length.
func (p *PropertyBuilder) Min(length int) *PropertyBuilder { return p.rule(KindMin, length) }

// Max constrains the maximum string length.
func (p *PropertyBuilder) Max(length int) *PropertyBuilder { return p.rule(KindMax, length) }

// Number-family rules.

func (p *PropertyBuilder) Minimum(minimum float64) *PropertyBuilder {
	return p.rule(KindMinimum, minimum)
}

func (p *PropertyBuilder) Maximum(maximum float64) *PropertyBuilder {
	return p.rule(KindMaximum, maximum)
}

func (p *PropertyBuilder) ExclusiveMinimum(minimum float64) *PropertyBuilder {
	return p.rule(KindExclusiveMinimum, minimum)
}

func (p *PropertyBuilder) ExclusiveMaximum(maximum float64) *PropertyBuilder {
	return p.rule(KindExclusiveMaximum, maximum)
}

func (p *PropertyBuilder) MultipleOf(multiple float64) *PropertyBuilder {
	return p.rule(KindMultipleOf, multiple)
}

func (p *PropertyBuilder) Integer() *PropertyBuilder { return p.rule(KindInteger) }

// Array-family rules.

func (p *PropertyBuilder) MinItems(count int) *PropertyBuilder { return p.rule(KindMinItems, count) }
func (p *PropertyBuilder) MaxItems(count int) *PropertyBuilder { return p.rule(KindMaxItems, count) }
func (p *PropertyBuilder) UniqueItems() *PropertyBuilder       { return p.rule(KindUniqueItems) }
