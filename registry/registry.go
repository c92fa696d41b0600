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

// Package registry tracks registered paths per root type and caches the
// accessors compiled for them.
//
// Every root type owns a trie of registered paths. Accessors are compiled on
// demand against the live type description and cached by the type's
// identity and the normalized path text, so same-named types never share an
// entry. Trie mutation and cache insertion are serialized by one
// reader-biased lock; cached accessors are read without locking.
package registry

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/tidwall/btree"
	"golang.org/x/sync/singleflight"

	"dirpx.dev/pathx/accessor"
	"dirpx.dev/pathx/apis"
	"dirpx.dev/pathx/errdefs"
	"dirpx.dev/pathx/logging"
	"dirpx.dev/pathx/path"
	"dirpx.dev/pathx/schema"
	"dirpx.dev/pathx/trie"
)

// ErrNilType is returned when a nil type description is provided.
var ErrNilType = errors.New("pathx(registry): nil type provided")

// Option configures a registry.
type Option func(*registry)

// WithLogger sets the logger the registry reports to. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(r *registry) {
		if l != nil {
			r.log = l
		}
	}
}

// New constructs a Registry. Only cfg.CachePolicy is used here.
func New(cfg apis.Config, opts ...Option) apis.Registry {
	r := &registry{
		policy: cfg.CachePolicy,
		log:    logging.Discard(),
		mu:     xsync.NewRBMutex(),
		roots:  make(map[schema.Identity]*trie.Node),
		index:  make(map[schema.Identity]*btree.Set[string]),
		cache:  xsync.NewMapOf[cacheKey, *apis.Accessor](),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// cacheKey addresses one cached accessor.
type cacheKey struct {
	id   schema.Identity
	path string
}

// half selects the getter or the setter of an accessor.
type half uint8

const (
	getHalf half = iota
	setHalf
)

func (h half) String() string {
	if h == setHalf {
		return "setter"
	}
	return "getter"
}

func (h half) in(a *apis.Accessor) bool {
	if h == setHalf {
		return a.Set != nil
	}
	return a.Get != nil
}

// registry is the default Registry.
type registry struct {
	policy apis.CachePolicy
	log    *slog.Logger

	// mu guards roots and index, and serializes cache writes.
	mu    *xsync.RBMutex
	roots map[schema.Identity]*trie.Node
	// index orders the cached path keys of each root type.
	index map[schema.Identity]*btree.Set[string]
	// cache holds immutable accessors; filling a half stores a new value.
	cache *xsync.MapOf[cacheKey, *apis.Accessor]
	// group coalesces concurrent compilations of one key.
	group singleflight.Group

	hits, misses, compiles atomic.Uint64
}

// Ensure registry implements apis.Registry.
var _ apis.Registry = (*registry)(nil)

// AddPath registers p under t, creating t's root on first use. Nothing is
// stored when p does not resolve.
func (r *registry) AddPath(t *schema.Type, p string) error {
	if t == nil {
		return ErrNilType
	}
	pp, err := path.Parse(p)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	root, ok := r.roots[t.ID()]
	if !ok {
		root = trie.NewRoot(t)
	}
	if err := root.AddPath(pp); err != nil {
		r.log.Debug("path rejected", "type", t.Name(), "path", p, "kind", errdefs.KindOf(err).String(), "error", err)
		return err
	}
	r.roots[t.ID()] = root
	r.log.Debug("path added", "type", t.Name(), "path", pp.Key())
	return nil
}

// RemovePath unregisters p. Removing a path that is not registered is a
// no-op; a type that never had paths is unknown.
func (r *registry) RemovePath(t *schema.Type, p string) error {
	if t == nil {
		return ErrNilType
	}
	pp, err := path.Parse(p)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	root, ok := r.roots[t.ID()]
	if !ok {
		return unknownType(t, p)
	}
	if root.RemovePath(pp) {
		r.log.Debug("path removed", "type", t.Name(), "path", pp.Key())
	}
	return nil
}

// IsValidPath reports whether p is a registered endpoint of t. Malformed
// paths are never valid.
func (r *registry) IsValidPath(t *schema.Type, p string) bool {
	if t == nil {
		return false
	}
	pp, err := path.Parse(p)
	if err != nil {
		return false
	}
	tok := r.mu.RLock()
	defer r.mu.RUnlock(tok)
	root, ok := r.roots[t.ID()]
	return ok && root.IsValidPath(pp)
}

// RemoveInvalidPaths revalidates every cached key and registered endpoint of
// t against its live description. Paths that no longer resolve are dropped
// from the trie and the cache. The removed keys are returned sorted.
func (r *registry) RemoveInvalidPaths(t *schema.Type) ([]string, error) {
	if t == nil {
		return nil, ErrNilType
	}
	id := t.ID()
	r.mu.Lock()
	defer r.mu.Unlock()

	root := r.roots[id]
	var keys []string
	if set := r.index[id]; set != nil {
		set.Scan(func(k string) bool {
			keys = append(keys, k)
			return true
		})
	}
	if root != nil {
		keys = append(keys, root.Endpoints()...)
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	var removed []string
	for _, key := range keys {
		pp, err := path.Parse(key)
		if err == nil {
			err = trie.ValidatePathStructure(pp, t)
		}
		if err == nil {
			continue
		}
		r.cache.Delete(cacheKey{id: id, path: key})
		if set := r.index[id]; set != nil {
			set.Delete(key)
		}
		if root != nil && pp != nil {
			root.RemovePath(pp)
		}
		removed = append(removed, key)
		r.log.Warn("path no longer resolves", "type", t.Name(), "path", key, "kind", errdefs.KindOf(err).String())
	}
	if root != nil {
		if n := root.Prune(); n > 0 {
			r.log.Debug("pruned stale nodes", "type", t.Name(), "nodes", n)
		}
	}
	return removed, nil
}

// ResolveGetter returns the getter for p on t, compiling it on a miss.
func (r *registry) ResolveGetter(t *schema.Type, p string) (apis.Getter, error) {
	a, err := r.resolve(t, p, getHalf)
	if err != nil {
		return nil, err
	}
	return a.Get, nil
}

// ResolveSetter returns the setter for p on t, compiling it on a miss.
func (r *registry) ResolveSetter(t *schema.Type, p string) (apis.Setter, error) {
	a, err := r.resolve(t, p, setHalf)
	if err != nil {
		return nil, err
	}
	return a.Set, nil
}

func (r *registry) resolve(t *schema.Type, p string, h half) (*apis.Accessor, error) {
	if t == nil {
		return nil, ErrNilType
	}
	pp, err := path.Parse(p)
	if err != nil {
		return nil, err
	}
	key := cacheKey{id: t.ID(), path: pp.Key()}
	if r.policy == apis.Memo {
		if a, ok := r.cache.Load(key); ok && h.in(a) {
			r.hits.Add(1)
			return a, nil
		}
	}
	r.misses.Add(1)

	flight := fmt.Sprintf("%d/%s/%s", key.id.Serial(), h, key.path)
	v, err, _ := r.group.Do(flight, func() (any, error) {
		return r.compile(t, pp, key, h)
	})
	if err != nil {
		return nil, err
	}
	return v.(*apis.Accessor), nil
}

// compile builds the requested half and, under the memo policy, stores it
// next to the other half if that one is cached already.
func (r *registry) compile(t *schema.Type, pp path.Path, key cacheKey, h half) (*apis.Accessor, error) {
	if r.policy == apis.Memo {
		// A flight that finished just before this one may have stored it.
		if a, ok := r.cache.Load(key); ok && h.in(a) {
			return a, nil
		}
	}

	tok := r.mu.RLock()
	_, ok := r.roots[key.id]
	r.mu.RUnlock(tok)
	if !ok {
		return nil, unknownType(t, pp.String())
	}

	var fresh apis.Accessor
	var err error
	if h == setHalf {
		fresh.Set, err = accessor.CompileSetter(t, pp)
	} else {
		fresh.Get, err = accessor.CompileGetter(t, pp)
	}
	if err != nil {
		r.log.Debug("compile failed", "type", t.Name(), "path", key.path, "half", h.String(), "kind", errdefs.KindOf(err).String(), "error", err)
		return nil, err
	}
	r.compiles.Add(1)
	r.log.Debug("compiled", "type", t.Name(), "path", key.path, "half", h.String())

	if r.policy != apis.Memo {
		return &fresh, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// A Reset or RemoveInvalidPaths may have run since the root check.
	if _, ok := r.roots[key.id]; !ok {
		return nil, unknownType(t, pp.String())
	}
	if err := trie.ValidatePathStructure(pp, t); err != nil {
		return nil, err
	}
	a, _ := r.cache.Compute(key, func(old *apis.Accessor, loaded bool) (*apis.Accessor, bool) {
		next := fresh
		if loaded {
			next = *old
			if h == setHalf {
				next.Set = fresh.Set
			} else {
				next.Get = fresh.Get
			}
		}
		return &next, false
	})
	set, ok := r.index[key.id]
	if !ok {
		set = new(btree.Set[string])
		r.index[key.id] = set
	}
	set.Insert(key.path)
	return a, nil
}

func unknownType(t *schema.Type, p string) error {
	return errdefs.WithPath(errdefs.Newf(errdefs.KindUnknownType, t.Name(), "no paths registered for %s", t.Name()), p)
}

// Invalidate drops the cached accessor of p on t and reports whether one
// was cached.
func (r *registry) Invalidate(t *schema.Type, p string) bool {
	if t == nil {
		return false
	}
	k, err := path.Normalize(p)
	if err != nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cache.LoadAndDelete(cacheKey{id: t.ID(), path: k})
	if set := r.index[t.ID()]; set != nil {
		set.Delete(k)
		if set.Len() == 0 {
			delete(r.index, t.ID())
		}
	}
	return ok
}

// Reset forgets every root and cached accessor. Counters are kept.
func (r *registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roots = make(map[schema.Identity]*trie.Node)
	r.index = make(map[schema.Identity]*btree.Set[string])
	r.cache.Clear()
}

// Types returns the root types ordered by name, ties broken by creation.
func (r *registry) Types() []*schema.Type {
	tok := r.mu.RLock()
	out := make([]*schema.Type, 0, len(r.roots))
	for _, root := range r.roots {
		out = append(out, root.Type())
	}
	r.mu.RUnlock(tok)
	slices.SortFunc(out, func(a, b *schema.Type) int { return compareIDs(a.ID(), b.ID()) })
	return out
}

// Paths returns the registered paths of t, normalized and sorted.
func (r *registry) Paths(t *schema.Type) []string {
	if t == nil {
		return nil
	}
	tok := r.mu.RLock()
	defer r.mu.RUnlock(tok)
	root, ok := r.roots[t.ID()]
	if !ok {
		return nil
	}
	return root.Endpoints()
}

// CachedPaths returns every cached key ordered by type name, then path.
func (r *registry) CachedPaths() []apis.PathKey {
	tok := r.mu.RLock()
	defer r.mu.RUnlock(tok)
	ids := make([]schema.Identity, 0, len(r.index))
	for id := range r.index {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareIDs)

	var out []apis.PathKey
	for _, id := range ids {
		r.index[id].Scan(func(p string) bool {
			out = append(out, apis.PathKey{Type: id.Name, Path: p})
			return true
		})
	}
	return out
}

// Stats returns resolution counters and current sizes.
func (r *registry) Stats() apis.Stats {
	tok := r.mu.RLock()
	types := len(r.roots)
	r.mu.RUnlock(tok)
	return apis.Stats{
		Hits:     r.hits.Load(),
		Misses:   r.misses.Load(),
		Compiles: r.compiles.Load(),
		Types:    types,
		Cached:   r.cache.Size(),
	}
}

func compareIDs(a, b schema.Identity) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.Serial(), b.Serial())
}
