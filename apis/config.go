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

// Config carries read-only knobs that influence type description, compilation
// and caching. It is passed by value and should be treated as immutable by
// implementations.
type Config struct {
	// CachePolicy selects whether compiled accessors are memoized.
	CachePolicy CachePolicy

	// MaxUnwrap limits pointer dereferencing when a Go type is normalized
	// before description. Acts as a safety guard against pathological nesting.
	MaxUnwrap int

	// IncludeUnexported makes unexported struct fields resolvable by path.
	// Such fields are assignable while WriteUnexported is set.
	IncludeUnexported bool

	// WriteUnexported allows setters on unexported struct fields.
	WriteUnexported bool
}
