// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package meta

// Family groups rule kinds by the base kind they imply for a property.
type Family string

const (
	FamilyString Family = "string"
	FamilyNumber Family = "number"
	FamilyArray  Family = "array"
	FamilyEnum   Family = "enum"
)

// Kind identifies a single validation rule.
type Kind string

const (
	// String family.
	KindEmail    Kind = "email"
	KindURL      Kind = "url"
	KindPattern  Kind = "pattern"
	KindMin      Kind = "min"
	KindMax      Kind = "max"
	KindUUID     Kind = "uuid"
	KindCUID     Kind = "cuid"
	KindDateTime Kind = "datetime"
	KindIP       Kind = "ip"

	// Number family.
	KindMinimum          Kind = "minimum"
	KindMaximum          Kind = "maximum"
	KindExclusiveMinimum Kind = "exclusiveMinimum"
	KindExclusiveMaximum Kind = "exclusiveMaximum"
	KindMultipleOf       Kind = "multipleOf"
	KindInteger          Kind = "integer"

	// Array family.
	KindMinItems    Kind = "minItems"
	KindMaxItems    Kind = "maxItems"
	KindUniqueItems Kind = "uniqueItems"

	KindEnum Kind = "enum"
)

//nolint:cyclop
func (k Kind) Family() Family {
	switch k {
	case KindEmail, KindURL, KindPattern, KindMin, KindMax, KindUUID, KindCUID, KindDateTime, KindIP:
		return FamilyString
	case KindMinimum, KindMaximum, KindExclusiveMinimum, KindExclusiveMaximum, KindMultipleOf, KindInteger:
		return FamilyNumber
	case KindMinItems, KindMaxItems, KindUniqueItems:
		return FamilyArray
	case KindEnum:
		return FamilyEnum
	default:
		return ""
	}
}

// Rule is one validation rule attached to a property.
// Rules accumulate in attachment order and are applied in that order.
type Rule struct {
	Kind   Kind
	Params []any
}
