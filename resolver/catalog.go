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

package resolver

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"dirpx.dev/pathx/apis"
	"dirpx.dev/pathx/config"
	"dirpx.dev/pathx/schema"
	uref "dirpx.dev/pathx/utils/reflect"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("pathx(resolver): nil reflect.Type provided")
	// ErrNilResolver is returned by catalogs created without a Resolver.
	ErrNilResolver = errors.New("pathx(resolver): nil resolver")
)

// NewCatalog constructs a Catalog that describes types with res according to
// cfg. Pointer types are described as the type they point to.
func NewCatalog(cfg apis.Config, res apis.Resolver) apis.Catalog {
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = config.DefaultMaxUnwrap
	}
	return &catalog{cfg: cfg, res: res, byName: make(map[string][]*schema.Type)}
}

// catalog is a Catalog backed by sync.Map. Reads are lock-free; descriptions
// are built under mu so each Go type is described exactly once.
type catalog struct {
	// cfg is the configuration strategies describe with.
	cfg apis.Config
	// res runs the strategy chain.
	res apis.Resolver
	// mu guards description, byName and count.
	mu sync.Mutex
	// m maps the normalized reflect.Type to its description.
	m sync.Map // map[reflect.Type]*schema.Type
	// byName indexes descriptions by display name.
	byName map[string][]*schema.Type
	// count tracks the number of described types.
	count int
}

// TypeOf returns the description of rt, describing it on first use.
// Failed descriptions are not retained.
func (c *catalog) TypeOf(rt reflect.Type) (*schema.Type, error) {
	if rt == nil {
		return nil, ErrNilType
	}
	// Fast read path: rt is usually already normalized.
	if v, ok := c.m.Load(rt); ok {
		return v.(*schema.Type), nil
	}
	nt, err := uref.Normalize(rt, c.cfg)
	if err != nil {
		return nil, err
	}
	if v, ok := c.m.Load(nt); ok {
		return v.(*schema.Type), nil
	}
	if c.res == nil {
		return nil, ErrNilResolver
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check under lock in case another goroutine described it meanwhile.
	if v, ok := c.m.Load(nt); ok {
		return v.(*schema.Type), nil
	}

	t := schema.New(nt.PkgPath(), uref.DisplayName(nt), kindOf(nt), nt, c)
	if err := c.res.Describe(t, c.cfg); err != nil {
		return nil, fmt.Errorf("pathx(resolver): describing %s: %w", t.Name(), err)
	}
	c.m.Store(nt, t)
	c.byName[t.Name()] = append(c.byName[t.Name()], t)
	c.count++
	return t, nil
}

// Lookup returns the single description named name.
func (c *catalog) Lookup(name string) (*schema.Type, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.byName[name]
	if len(ts) != 1 {
		return nil, false
	}
	return ts[0], true
}

// Entries returns a snapshot for diagnostics/docs (order is unspecified).
func (c *catalog) Entries() []apis.Entry {
	entries := make([]apis.Entry, 0, c.Count())
	c.m.Range(func(key, value any) bool {
		entries = append(entries, apis.Entry{
			GoType: key.(reflect.Type),
			Type:   value.(*schema.Type),
		})
		return true
	})
	return entries
}

// Count returns the number of described types.
func (c *catalog) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Reset forgets every description. Types handed out earlier stay usable but
// are no longer returned by TypeOf.
func (c *catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m.Clear()
	c.byName = make(map[string][]*schema.Type)
	c.count = 0
}

func kindOf(rt reflect.Type) schema.Kind {
	switch rt.Kind() {
	case reflect.Struct:
		return schema.Struct
	case reflect.Slice, reflect.Array:
		return schema.Sequence
	case reflect.Map:
		return schema.Map
	case reflect.Interface:
		return schema.Interface
	default:
		return schema.Scalar
	}
}
