// Copyright (c) 2024 the authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Package embedded provides marker interfaces that seal the Tool and Content
// type sets. Implementations embed the interface instead of implementing
// the unexported method.
package embedded

type Tool interface {
	tool()
}

type Content interface {
	content()
}
