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

// Package builder composes catalogs and registries from a Config.
package builder

import (
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"dirpx.dev/pathx/apis"
	"dirpx.dev/pathx/registry"
	"dirpx.dev/pathx/resolver"
	"dirpx.dev/pathx/strategy"
)

// Option configures a builder.
type Option func(*builder)

// WithLogger sets the logger handed to built registries.
func WithLogger(l *slog.Logger) Option {
	return func(b *builder) { b.log = l }
}

// WithDeclarations sets the declaration table consulted before any other
// strategy.
func WithDeclarations(d *strategy.Declarations) Option {
	return func(b *builder) {
		if d != nil {
			b.decls = d
		}
	}
}

// New creates and returns a new instance of an apis.Builder.
func New(opts ...Option) apis.Builder {
	b := &builder{decls: &strategy.Declarations{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// builder holds what every built catalog and registry shares.
type builder struct {
	log   *slog.Logger
	decls *strategy.Declarations
}

// Compile-time check.
var _ apis.Builder = (*builder)(nil)

// BuildCatalog builds a Catalog describing types with the default strategy
// chain: declarations, describers, collection and Item indexers, properties,
// fields. Descriptions depend on cfg, so prev is not reused; types are
// described again on first use.
func (b *builder) BuildCatalog(cfg apis.Config, _ apis.Catalog) apis.Catalog {
	return resolver.NewCatalog(cfg, resolver.New(
		strategy.NewDeclarationsStrategy(b.decls),
		strategy.NewDescriberStrategy(),
		strategy.NewCollectionStrategy(),
		strategy.NewItemStrategy(),
		strategy.NewPropertyStrategy(),
		strategy.NewFieldStrategy(),
	))
}

// BuildRegistry builds a Registry over cat. Paths registered in prev are
// registered again against the descriptions of cat; cached accessors are
// not carried over. Paths that no longer resolve are reported together and
// the new registry is returned regardless.
func (b *builder) BuildRegistry(cfg apis.Config, cat apis.Catalog, prev apis.Registry) (apis.Registry, error) {
	nreg := registry.New(cfg, registry.WithLogger(b.log))
	if prev == nil || cat == nil {
		return nreg, nil
	}
	var errs error
	for _, t := range prev.Types() {
		nt, err := cat.TypeOf(t.GoType())
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("pathx(builder): migrate %s: %w", t.Name(), err))
			continue
		}
		for _, p := range prev.Paths(t) {
			if err := nreg.AddPath(nt, p); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("pathx(builder): migrate %s: %w", t.Name(), err))
			}
		}
	}
	return nreg, errs
}
