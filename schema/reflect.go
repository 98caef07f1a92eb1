// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package schema

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/invopop/jsonschema"
)

//nolint:gochecknoglobals
var (
	reflectMu    sync.Mutex
	reflectCache = make(map[reflect.Type]*reflectEntry)
)

type reflectEntry struct {
	once   sync.Once
	schema *Schema
	err    error
}

// For generates a Schema for the given Go type using reflection. Struct
// fields keep their declaration order and start as required; the `omitempty`
// JSON tag makes a field optional. The result is cached per type.
func For[T any]() (*Schema, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()

	reflectMu.Lock()
	entry, ok := reflectCache[typ]
	if !ok {
		entry = &reflectEntry{}
		reflectCache[typ] = entry
	}
	reflectMu.Unlock()

	entry.once.Do(func() {
		// Panic recovery simplifies error handling for unsupported types.
		defer func() {
			if r := recover(); r != nil {
				var ok bool
				if entry.err, ok = r.(error); !ok {
					entry.err = fmt.Errorf("%v", r) //nolint:err113
				}
			}
		}()

		reflector := jsonschema.Reflector{
			DoNotReference: true,
			ExpandedStruct: typ.Kind() == reflect.Struct,
		}
		def := reflector.ReflectFromType(typ)
		def.Version = ""
		entry.schema = &Schema{Name: typ.Name(), Description: def.Description, Def: def}
	})

	return entry.schema, entry.err
}
