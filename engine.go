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

package pathx

import (
	"errors"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"dirpx.dev/pathx/apis"
	"dirpx.dev/pathx/builder"
	"dirpx.dev/pathx/config"
	"dirpx.dev/pathx/manifest"
	"dirpx.dev/pathx/schema"
	"dirpx.dev/pathx/strategy"
)

var (
	// ErrNilCatalog is returned when a builder returns a nil catalog.
	ErrNilCatalog = errors.New("pathx: builder returned nil catalog")
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("pathx: builder returned nil registry")
	// ErrNilTarget is returned when a nil target is given to Get or Set.
	ErrNilTarget = errors.New("pathx: nil target")
)

// Option configures an Engine at construction.
type Option func(*options)

type options struct {
	cfg   apis.Config
	bld   apis.Builder
	log   *slog.Logger
	decls *strategy.Declarations
}

// WithConfig sets the initial configuration.
func WithConfig(cfg apis.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithBuilder replaces the default builder. Declarations made through the
// Engine only reach builders created by the Engine itself.
func WithBuilder(b apis.Builder) Option {
	return func(o *options) { o.bld = b }
}

// WithLogger sets the logger handed to the default builder.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithDeclarations shares a declaration table with the default builder.
func WithDeclarations(d *strategy.Declarations) Option {
	return func(o *options) {
		if d != nil {
			o.decls = d
		}
	}
}

// Engine owns a configuration, the catalog of type descriptions built for
// it, and the registry of paths over that catalog.
//
// Readers load an immutable snapshot without locking. Writers build a new
// snapshot under a mutex and publish it atomically, migrating registered
// paths to the new catalog.
type Engine struct {
	// buildMu serializes writers so partially built snapshots are never
	// published.
	buildMu sync.Mutex
	st      atomic.Pointer[state]
	decls   *strategy.Declarations
}

// state is an Engine snapshot. Published states are never mutated.
type state struct {
	cfg apis.Config
	cat apis.Catalog
	reg apis.Registry
	bld apis.Builder
	// preg is set while the registry (and with it the catalog its types
	// come from) is pinned.
	preg bool
}

// New creates an Engine. It panics with ErrNilCatalog or ErrNilRegistry
// when a custom builder returns nil.
func New(opts ...Option) *Engine {
	o := options{cfg: config.DefaultConfig(), decls: &strategy.Declarations{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.bld == nil {
		o.bld = builder.New(builder.WithDeclarations(o.decls), builder.WithLogger(o.log))
	}
	e := &Engine{decls: o.decls}
	s, err := rebuild(&state{}, o.cfg, o.bld)
	if s == nil {
		panic(err)
	}
	e.st.Store(s)
	return e
}

// rebuild derives the snapshot for cfg and b from old. Unless pinned, the
// catalog and registry are rebuilt and old registrations migrated. A
// migration error is returned along with a usable snapshot.
func rebuild(old *state, cfg apis.Config, b apis.Builder) (*state, error) {
	next := &state{cfg: cfg, bld: b, cat: old.cat, reg: old.reg, preg: old.preg}
	if old.preg {
		return next, nil
	}
	cat := b.BuildCatalog(cfg, old.cat)
	if cat == nil {
		return nil, ErrNilCatalog
	}
	reg, err := b.BuildRegistry(cfg, cat, old.reg)
	if reg == nil {
		return nil, ErrNilRegistry
	}
	next.cat, next.reg = cat, reg
	return next, err
}

// Config returns the current configuration.
func (e *Engine) Config() apis.Config {
	return e.st.Load().cfg
}

// SetConfig switches to cfg, rebuilding the catalog and registry unless the
// registry is pinned. Paths that no longer resolve under cfg are reported;
// the new snapshot is published regardless.
func (e *Engine) SetConfig(cfg apis.Config) error {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	old := e.st.Load()
	next, err := rebuild(old, cfg, old.bld)
	if next != nil {
		e.st.Store(next)
	}
	return err
}

// Builder returns the current builder.
func (e *Engine) Builder() apis.Builder {
	return e.st.Load().bld
}

// SetBuilder switches to b and rebuilds like SetConfig. A nil b is ignored.
func (e *Engine) SetBuilder(b apis.Builder) error {
	if b == nil {
		return nil
	}
	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	old := e.st.Load()
	next, err := rebuild(old, old.cfg, b)
	if next != nil {
		e.st.Store(next)
	}
	return err
}

// Catalog returns the current catalog.
func (e *Engine) Catalog() apis.Catalog {
	return e.st.Load().cat
}

// Registry returns the current registry.
func (e *Engine) Registry() apis.Registry {
	return e.st.Load().reg
}

// SetRegistry installs reg and pins it. reg must describe its types with the
// current Catalog. A nil reg is ignored.
func (e *Engine) SetRegistry(reg apis.Registry) {
	if reg == nil {
		return
	}
	e.swap(func(s *state) {
		s.reg = reg
		s.preg = true
	})
}

// IsRegistryPinned reports whether the registry is pinned.
func (e *Engine) IsRegistryPinned() bool {
	return e.st.Load().preg
}

// PinRegistry keeps the registry and catalog across SetConfig and SetBuilder.
func (e *Engine) PinRegistry() {
	e.swap(func(s *state) { s.preg = true })
}

// UnpinRegistry lets the next SetConfig or SetBuilder rebuild again.
func (e *Engine) UnpinRegistry() {
	e.swap(func(s *state) { s.preg = false })
}

// swap publishes a modified copy of the current snapshot.
func (e *Engine) swap(fn func(*state)) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	next := *e.st.Load()
	fn(&next)
	e.st.Store(&next)
}

// Declare registers the member declaration of rt with the Engine's default
// builder. It must precede the first description of rt.
func (e *Engine) Declare(rt reflect.Type, fn func(*schema.Declaration)) {
	e.decls.Declare(rt, fn)
}

// TypeOf returns the current description of rt.
func (e *Engine) TypeOf(rt reflect.Type) (*schema.Type, error) {
	return e.st.Load().cat.TypeOf(rt)
}

// AddPath registers p under rt.
func (e *Engine) AddPath(rt reflect.Type, p string) error {
	s := e.st.Load()
	t, err := s.cat.TypeOf(rt)
	if err != nil {
		return err
	}
	return s.reg.AddPath(t, p)
}

// RemovePath unregisters p under rt.
func (e *Engine) RemovePath(rt reflect.Type, p string) error {
	s := e.st.Load()
	t, err := s.cat.TypeOf(rt)
	if err != nil {
		return err
	}
	return s.reg.RemovePath(t, p)
}

// IsValidPath reports whether p is registered under rt.
func (e *Engine) IsValidPath(rt reflect.Type, p string) bool {
	s := e.st.Load()
	t, err := s.cat.TypeOf(rt)
	if err != nil {
		return false
	}
	return s.reg.IsValidPath(t, p)
}

// RemoveInvalidPaths drops paths of rt that no longer resolve.
func (e *Engine) RemoveInvalidPaths(rt reflect.Type) ([]string, error) {
	s := e.st.Load()
	t, err := s.cat.TypeOf(rt)
	if err != nil {
		return nil, err
	}
	return s.reg.RemoveInvalidPaths(t)
}

// ResolveGetter returns the getter for p on rt.
func (e *Engine) ResolveGetter(rt reflect.Type, p string) (apis.Getter, error) {
	s := e.st.Load()
	t, err := s.cat.TypeOf(rt)
	if err != nil {
		return nil, err
	}
	return s.reg.ResolveGetter(t, p)
}

// ResolveSetter returns the setter for p on rt.
func (e *Engine) ResolveSetter(rt reflect.Type, p string) (apis.Setter, error) {
	s := e.st.Load()
	t, err := s.cat.TypeOf(rt)
	if err != nil {
		return nil, err
	}
	return s.reg.ResolveSetter(t, p)
}

// Invalidate drops the cached accessor of p on rt.
func (e *Engine) Invalidate(rt reflect.Type, p string) bool {
	s := e.st.Load()
	t, err := s.cat.TypeOf(rt)
	if err != nil {
		return false
	}
	return s.reg.Invalidate(t, p)
}

// ApplyManifest registers the paths listed in m.
func (e *Engine) ApplyManifest(m *manifest.Manifest) error {
	s := e.st.Load()
	return m.Apply(s.reg, s.cat)
}
