/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package pathx compiles dotted path expressions into getters and setters
// over Go values.
//
// A path such as "b.c[0].d.value" names a chain of members and indices
// starting at a root type. Member names match case-insensitively;
// properties (getter methods) are preferred over fields. Indices are signed
// integers or bare keys, and select slice and array elements, map entries,
// or the result of an Item method.
//
// # Design
//
// pathx is layered:
//
//   - path parses path text into segments. Parsing keeps no shared state.
//
//   - schema holds member-descriptor tables: one *schema.Type per Go type,
//     listing its properties, fields and indexers with their writability.
//     Tables are built once and stay mutable; a changed table is a drifted
//     type.
//
//   - resolver and strategy build those tables. A Catalog describes each Go
//     type once through an ordered strategy chain: explicit declarations,
//     schema.Describer implementations, collection and Item indexers,
//     getter methods, struct fields.
//
//   - trie records registered paths per root type and re-checks them
//     against the live tables.
//
//   - accessor compiles a resolved path into a step chain walked on every
//     call. Writability is decided at compile time.
//
//   - registry ties these together and caches compiled accessors by type
//     identity and normalized path text.
//
// An Engine owns one configuration together with the catalog and registry
// built for it. There is no package-level state: the host creates an Engine
// and passes it to the code that needs it.
//
//	e := pathx.New()
//	_ = pathx.Register[A](e, "b.c[0].d.value")
//	_ = pathx.Set(e, &a, "b.c[0].value", 1000)
//	v, _ := pathx.Get[int](e, &a, "b.c[0].value")
//
// # Concurrency model
//
// Reads through an Engine load its current snapshot atomically and never
// block. Registry reads of cached accessors are lock-free; trie mutation and
// cache insertion are serialized by a reader-biased lock. Concurrent first
// resolutions of the same path compile once.
//
// Writers (SetConfig, SetBuilder, SetRegistry) take a short build mutex,
// assemble a new snapshot and publish it. Reconfiguring rebuilds the catalog
// and registry and registers the old paths again against the new
// descriptions; paths that no longer resolve are reported.
//
// # Pinning
//
// SetRegistry installs a registry and pins it: later reconfigurations keep
// it, together with the catalog its types come from, until UnpinRegistry.
//
// # Drift
//
// Member tables can change after paths were registered (see
// schema.Type.RenameMember). RemoveInvalidPaths revalidates the registered
// and cached paths of a type against its live table and drops the ones that
// no longer resolve.
package pathx
