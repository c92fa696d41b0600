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

package apis

import "dirpx.dev/pathx/schema"

// PathKey names one cached accessor.
type PathKey struct {
	// Type is the display name of the root type.
	Type string
	// Path is the normalized path text.
	Path string
}

// Stats counts accessor resolutions.
type Stats struct {
	// Hits are resolutions served from the cache.
	Hits uint64
	// Misses are resolutions that had to compile.
	Misses uint64
	// Compiles are successful compilations.
	Compiles uint64
	// Types is the number of root types with registered paths.
	Types int
	// Cached is the number of cached path keys.
	Cached int
}

// Registry tracks registered paths per root type and caches the accessors
// compiled for them.
type Registry interface {
	// AddPath registers p under t. Nothing is stored when p does not resolve.
	AddPath(t *schema.Type, p string) error
	// RemovePath unregisters p and prunes what became unreachable. Cached
	// accessors are kept.
	RemovePath(t *schema.Type, p string) error
	// IsValidPath reports whether p is a registered endpoint of t.
	IsValidPath(t *schema.Type, p string) bool
	// RemoveInvalidPaths drops registered and cached paths of t that no
	// longer resolve against its live description and returns their keys.
	RemoveInvalidPaths(t *schema.Type) ([]string, error)

	// ResolveGetter returns the getter for p on t, compiling it on a miss.
	ResolveGetter(t *schema.Type, p string) (Getter, error)
	// ResolveSetter returns the setter for p on t, compiling it on a miss.
	ResolveSetter(t *schema.Type, p string) (Setter, error)

	// Invalidate drops the cached accessor of p on t.
	Invalidate(t *schema.Type, p string) bool
	// Reset forgets every root and cached accessor.
	Reset()

	// Types returns the root types with registered paths, ordered by name.
	Types() []*schema.Type
	// Paths returns the registered paths of t, normalized and sorted.
	Paths(t *schema.Type) []string
	// CachedPaths returns every cached key ordered by type name, then path.
	CachedPaths() []PathKey
	// Stats returns resolution counters.
	Stats() Stats
}
