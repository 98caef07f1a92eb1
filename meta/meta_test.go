// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package meta_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typedai/agent/meta"
)

func TestRegistry_PropertyOrder(t *testing.T) {
	registry := meta.NewRegistry()
	registry.Define("Report").
		Property("title").
		Property("summary").
		Property("score")

	typ, ok := registry.Lookup("Report")
	require.True(t, ok)

	properties := typ.Properties()
	require.Len(t, properties, 3)
	assert.Equal(t, "title", properties[0].Name)
	assert.Equal(t, "summary", properties[1].Name)
	assert.Equal(t, "score", properties[2].Name)
}

func TestRegistry_RegisterPropertyIdempotent(t *testing.T) {
	registry := meta.NewRegistry()
	builder := registry.Define("Report")
	builder.Property("title").Description("first")
	builder.Property("summary")
	// Re-registering keeps the first-seen order.
	builder.Property("title").Description("second")

	typ, _ := registry.Lookup("Report")
	properties := typ.Properties()
	require.Len(t, properties, 2)
	assert.Equal(t, "title", properties[0].Name)
	assert.Equal(t, "second", properties[0].Description, "description is last-write-wins")
}

func TestRegistry_RulesAccumulate(t *testing.T) {
	registry := meta.NewRegistry()
	registry.Define("Report").
		Property("title").Min(5).Max(10).Pattern("^[A-Z]")

	typ, _ := registry.Lookup("Report")
	properties := typ.Properties()
	require.Len(t, properties, 1)

	rules := properties[0].Rules
	require.Len(t, rules, 3)
	assert.Equal(t, meta.KindMin, rules[0].Kind)
	assert.Equal(t, meta.KindMax, rules[1].Kind)
	assert.Equal(t, meta.KindPattern, rules[2].Kind)
}

func TestRegistry_SnapshotDoesNotMutate(t *testing.T) {
	registry := meta.NewRegistry()
	registry.Define("Report").Property("title").Min(5)

	typ, _ := registry.Lookup("Report")
	snapshot := typ.Properties()
	snapshot[0].Rules = append(snapshot[0].Rules, meta.Rule{Kind: meta.KindMax})
	snapshot[0].Description = "mutated"

	fresh := typ.Properties()
	assert.Len(t, fresh[0].Rules, 1)
	assert.Empty(t, fresh[0].Description)
}

func TestKind_Family(t *testing.T) {
	testcases := []struct {
		kind   meta.Kind
		family meta.Family
	}{
		{meta.KindEmail, meta.FamilyString},
		{meta.KindPattern, meta.FamilyString},
		{meta.KindDateTime, meta.FamilyString},
		{meta.KindMinimum, meta.FamilyNumber},
		{meta.KindInteger, meta.FamilyNumber},
		{meta.KindMinItems, meta.FamilyArray},
		{meta.KindUniqueItems, meta.FamilyArray},
		{meta.KindEnum, meta.FamilyEnum},
	}

	for _, testcase := range testcases {
		assert.Equal(t, testcase.family, testcase.kind.Family(), string(testcase.kind))
	}
}
