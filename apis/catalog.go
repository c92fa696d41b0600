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

import (
	"reflect"

	"dirpx.dev/pathx/schema"
)

// Entry pairs a Go type with its description.
type Entry struct {
	GoType reflect.Type
	Type   *schema.Type
}

// Catalog describes Go types once and hands out the same *schema.Type for
// every later request. A Catalog is the schema.Resolver of the types it
// creates, so member types are described lazily through it.
type Catalog interface {
	schema.Resolver

	// Lookup returns the description whose display name is name. It reports
	// false when nothing or more than one description carries that name.
	Lookup(name string) (*schema.Type, bool)
	// Entries returns a snapshot for diagnostics/docs (order is unspecified).
	Entries() []Entry
	// Count returns the number of described types.
	Count() int
	// Reset forgets every description.
	Reset()
}
