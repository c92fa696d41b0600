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

// Getter reads the value addressed by a compiled path. target is the root
// value or a pointer to it.
type Getter func(target any) (any, error)

// Setter assigns value at the location addressed by a compiled path. target
// must be a non-nil pointer to the root value.
type Setter func(target, value any) error

// Accessor is a compiled getter/setter pair. Either half may be nil until it
// is first requested. Accessors are never mutated once published.
type Accessor struct {
	Get Getter
	Set Setter
}
