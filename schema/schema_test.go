// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typedai/agent/meta"
	"github.com/typedai/agent/schema"
)

func fieldNames(s *schema.Schema) []string {
	var names []string
	for pair := s.Def.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}

	return names
}

func TestSynthesize_FieldOrder(t *testing.T) {
	registry := meta.NewRegistry()
	builder := registry.Define("Profile")
	builder.Property("name")
	builder.Property("email")
	builder.Property("age")
	// Rules attached in reverse order must not affect field order.
	builder.Property("age").Integer().Minimum(0)
	builder.Property("email").Email()
	builder.Property("name").Min(1)

	synthesized, err := schema.Synthesize(registry, "Profile")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "email", "age"}, fieldNames(synthesized))
}

func TestSynthesize_Idempotent(t *testing.T) {
	registry := meta.NewRegistry()
	registry.Define("Profile").
		Property("email").Email().
		Property("age").Integer().Minimum(0).Maximum(150)

	first, err := schema.Synthesize(registry, "Profile")
	require.NoError(t, err)
	second, err := schema.Synthesize(registry, "Profile")
	require.NoError(t, err)

	assert.Same(t, first, second, "synthesis is cached per type")

	left, err := json.Marshal(first)
	require.NoError(t, err)
	right, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(left), string(right))
}

func TestSynthesize_BaseKinds(t *testing.T) {
	registry := meta.NewRegistry()
	registry.Define("Mixed").
		Property("title").Min(5).Max(10).
		Property("score").Minimum(0).Maximum(1).
		Property("count").Integer().
		Property("tags").Items("string").MinItems(1).UniqueItems().
		Property("status").Enum("open", "closed").
		Property("note").Description("free form")

	synthesized, err := schema.Synthesize(registry, "Mixed")
	require.NoError(t, err)

	title, _ := synthesized.Def.Properties.Get("title")
	assert.Equal(t, "string", title.Type)
	require.NotNil(t, title.MinLength)
	assert.Equal(t, uint64(5), *title.MinLength)
	require.NotNil(t, title.MaxLength)
	assert.Equal(t, uint64(10), *title.MaxLength)

	score, _ := synthesized.Def.Properties.Get("score")
	assert.Equal(t, "number", score.Type)
	assert.Equal(t, json.Number("0"), score.Minimum)
	assert.Equal(t, json.Number("1"), score.Maximum)

	count, _ := synthesized.Def.Properties.Get("count")
	assert.Equal(t, "integer", count.Type)

	tags, _ := synthesized.Def.Properties.Get("tags")
	assert.Equal(t, "array", tags.Type)
	require.NotNil(t, tags.Items)
	assert.Equal(t, "string", tags.Items.Type)
	assert.True(t, tags.UniqueItems)

	status, _ := synthesized.Def.Properties.Get("status")
	assert.Equal(t, []any{"open", "closed"}, status.Enum)

	note, _ := synthesized.Def.Properties.Get("note")
	assert.Empty(t, note.Type, "a property with no rules stays opaque")
	assert.Equal(t, "free form", note.Description)
}

func TestSynthesize_RequiredUnlessOptional(t *testing.T) {
	registry := meta.NewRegistry()
	registry.Define("Profile").
		Property("name").Min(1).
		Property("nickname").Optional()

	synthesized, err := schema.Synthesize(registry, "Profile")
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, synthesized.Def.Required)
}

func TestSynthesize_ConflictingFamilies(t *testing.T) {
	registry := meta.NewRegistry()
	registry.Define("Broken").
		Property("value").Min(1).Minimum(0)

	_, err := schema.Synthesize(registry, "Broken")

	var conflict *schema.TypeConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Broken", conflict.Type)
	assert.Equal(t, "value", conflict.Property)
	assert.ElementsMatch(t, []meta.Family{meta.FamilyString, meta.FamilyNumber}, conflict.Families)
}

func TestSynthesize_EmptyEnum(t *testing.T) {
	registry := meta.NewRegistry()
	registry.Define("Broken").Property("status").Enum()

	_, err := schema.Synthesize(registry, "Broken")

	var config *schema.ConfigError
	require.ErrorAs(t, err, &config)
	assert.Contains(t, config.Reason, "empty enum")
}

func TestSynthesize_InvalidRuleParameter(t *testing.T) {
	registry := meta.NewRegistry()
	registry.Define("Doc").Property("title").Min(-5)

	_, err := schema.Synthesize(registry, "Doc")

	var config *schema.ConfigError
	require.ErrorAs(t, err, &config)
	assert.Contains(t, config.Reason, "Doc.title")
	assert.Contains(t, config.Reason, "min")
}

func TestSynthesize_InvalidArrayRuleParameter(t *testing.T) {
	registry := meta.NewRegistry()
	registry.Define("List").Property("tags").Items("string").MaxItems(-1)

	_, err := schema.Synthesize(registry, "List")

	var config *schema.ConfigError
	require.ErrorAs(t, err, &config)
	assert.Contains(t, config.Reason, "maxItems")
}

func TestSynthesize_UnresolvableItemType(t *testing.T) {
	registry := meta.NewRegistry()
	registry.Define("Broken").Property("entries").Items("Missing")

	_, err := schema.Synthesize(registry, "Broken")

	var config *schema.ConfigError
	require.ErrorAs(t, err, &config)
	assert.Contains(t, config.Reason, "Missing")
}

func TestSynthesize_NestedItemType(t *testing.T) {
	registry := meta.NewRegistry()
	registry.Define("Entry").
		Property("id").UUID().
		Property("label")
	registry.Define("Batch").
		Property("entries").Items("Entry").MinItems(1)

	synthesized, err := schema.Synthesize(registry, "Batch")
	require.NoError(t, err)

	entries, _ := synthesized.Def.Properties.Get("entries")
	require.NotNil(t, entries.Items)
	assert.Equal(t, "object", entries.Items.Type)
	id, ok := entries.Items.Properties.Get("id")
	require.True(t, ok)
	assert.Equal(t, "uuid", id.Format)
}

func TestSynthesize_UnknownType(t *testing.T) {
	_, err := schema.Synthesize(meta.NewRegistry(), "Nowhere")

	var config *schema.ConfigError
	require.ErrorAs(t, err, &config)
}

func TestFor_Struct(t *testing.T) {
	type location struct {
		City  string `json:"city"`
		State string `json:"state,omitempty"`
	}

	synthesized, err := schema.For[location]()
	require.NoError(t, err)
	assert.Equal(t, "location", synthesized.Name)
	assert.Equal(t, []string{"city", "state"}, fieldNames(synthesized))
	assert.Equal(t, []string{"city"}, synthesized.Def.Required)
}

func TestFor_Cached(t *testing.T) {
	type payload struct {
		Value string `json:"value"`
	}

	first, err := schema.For[payload]()
	require.NoError(t, err)
	second, err := schema.For[payload]()
	require.NoError(t, err)
	assert.Same(t, first, second)
}
