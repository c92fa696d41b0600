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

package strategy

import (
	"reflect"
	"sync"

	"dirpx.dev/pathx/apis"
	"dirpx.dev/pathx/schema"
)

// Declarations holds member declarations for Go types that cannot implement
// schema.Describer themselves, typically types from other modules.
// It is safe for concurrent use.
type Declarations struct {
	m sync.Map // map[reflect.Type]func(*schema.Declaration)
}

// Declare registers fn as the member declaration of rt. It must happen before
// rt is first described by a catalog; later calls affect new catalogs only.
// A nil rt or fn is ignored.
func (d *Declarations) Declare(rt reflect.Type, fn func(*schema.Declaration)) {
	if rt == nil || fn == nil {
		return
	}
	d.m.Store(rt, fn)
}

// Lookup returns the declaration registered for rt.
func (d *Declarations) Lookup(rt reflect.Type) (func(*schema.Declaration), bool) {
	if d == nil || rt == nil {
		return nil, false
	}
	v, ok := d.m.Load(rt)
	if !ok {
		return nil, false
	}
	return v.(func(*schema.Declaration)), true
}

// Len returns the number of registered declarations.
func (d *Declarations) Len() int {
	n := 0
	d.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// NewDeclarationsStrategy creates an apis.Strategy that consults decls.
func NewDeclarationsStrategy(decls *Declarations) apis.Strategy {
	return &declarationsStrategy{decls: decls}
}

// declarationsStrategy consults a provided Declarations table (reflection-free).
type declarationsStrategy struct {
	decls *Declarations
}

// Ensure declarationsStrategy implements apis.Strategy.
var _ apis.Strategy = (*declarationsStrategy)(nil)

// TryDescribe applies the declaration registered for t's Go type and stops
// the chain.
func (s *declarationsStrategy) TryDescribe(t *schema.Type, _ apis.Config) (bool, error) {
	fn, ok := s.decls.Lookup(t.GoType())
	if !ok {
		return false, nil
	}
	d := schema.NewDeclaration(t)
	fn(d)
	return true, d.Err()
}
