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

// Package schema describes the member shape of Go types.
//
// A Type is a member-descriptor table: properties and fields keyed
// case-insensitively, plus indexers keyed by index kind. Tables are built once
// per Go type (see resolver.Catalog) and are consulted by the trie and the
// accessor compiler instead of reflecting over the type on every lookup.
//
// Tables stay mutable through AddMember, RemoveMember, RenameMember and
// RemoveIndexer. A changed table is a drifted type: paths registered against
// the old shape are detected and dropped by registry.RemoveInvalidPaths.
package schema

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"dirpx.dev/pathx/path"
)

var (
	// ErrNilMember is returned when a nil member is added.
	ErrNilMember = errors.New("pathx(schema): nil member")
	// ErrEmptyMemberName is returned when a member without a name is added.
	ErrEmptyMemberName = errors.New("pathx(schema): empty member name")
	// ErrNoGetter is returned when a member or indexer lacks a Get function.
	ErrNoGetter = errors.New("pathx(schema): missing getter")
	// ErrNoResolver is returned when a member type must be resolved on a
	// Type created without a Resolver.
	ErrNoResolver = errors.New("pathx(schema): no type resolver")
)

// Kind is the structural class of a Type.
type Kind uint8

const (
	// Scalar types have no members reachable by path (numbers, strings, funcs...).
	Scalar Kind = iota
	// Struct types expose fields and, possibly, properties.
	Struct
	// Sequence types are Go slices and arrays, indexed by integers.
	Sequence
	// Map types are Go maps, indexed by their key kind.
	Map
	// Interface types expose nothing statically.
	Interface
)

// String returns a short name of the kind.
func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Struct:
		return "struct"
	case Sequence:
		return "sequence"
	case Map:
		return "map"
	case Interface:
		return "interface"
	default:
		return "unknown"
	}
}

// Resolver turns Go types into descriptions. Types use it to resolve the
// declared types of their members lazily.
type Resolver interface {
	TypeOf(rt reflect.Type) (*Type, error)
}

var serials atomic.Uint64

// Identity distinguishes types beyond their display name. Module is the
// defining package path, Name the display name; the serial is assigned when
// the description is created, so two descriptions never share an Identity
// even if both names match.
type Identity struct {
	Module string
	Name   string
	serial uint64
}

// Serial returns the process-unique sequence number of the identity.
func (id Identity) Serial() uint64 { return id.serial }

// IsZero reports whether id was never assigned.
func (id Identity) IsZero() bool { return id.serial == 0 }

// String returns the display name.
func (id Identity) String() string { return id.Name }

// Type is the member-descriptor table of one Go type.
type Type struct {
	id     Identity
	kind   Kind
	goType reflect.Type
	res    Resolver

	mu       sync.RWMutex
	props    table
	fields   table
	indexers map[path.IndexKind]*Indexer
}

// New creates an empty description of goType. module and name form the
// display part of its Identity. res resolves member types lazily and may be
// nil when every member carries an explicit Type.
func New(module, name string, kind Kind, goType reflect.Type, res Resolver) *Type {
	return &Type{
		id:     Identity{Module: module, Name: name, serial: serials.Add(1)},
		kind:   kind,
		goType: goType,
		res:    res,
	}
}

// ID returns the identity of t.
func (t *Type) ID() Identity { return t.id }

// Name returns the display name of t.
func (t *Type) Name() string { return t.id.Name }

// String returns the display name of t.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.id.Name
}

// Kind returns the structural class of t.
func (t *Type) Kind() Kind { return t.kind }

// GoType returns the Go type described by t.
func (t *Type) GoType() reflect.Type { return t.goType }

// TypeOf resolves rt through the resolver t was created with.
func (t *Type) TypeOf(rt reflect.Type) (*Type, error) {
	if t.res == nil {
		return nil, ErrNoResolver
	}
	return t.res.TypeOf(rt)
}

// MemberType returns the navigation type of m: m.Type when set, otherwise
// the description of m.GoType.
func (t *Type) MemberType(m *Member) (*Type, error) {
	if m.Type != nil {
		return m.Type, nil
	}
	return t.TypeOf(m.GoType)
}

// ElemType returns the navigation type of the elements reached through ix.
func (t *Type) ElemType(ix *Indexer) (*Type, error) {
	if ix.Elem != nil {
		return ix.Elem, nil
	}
	return t.TypeOf(ix.ElemGoType)
}

// Member resolves name case-insensitively, preferring properties over
// fields. When several members of one table fold to the same name, the
// first declared wins.
func (t *Type) Member(name string) (*Member, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	key := strings.ToLower(name)
	if m, ok := t.props.byName[key]; ok {
		return m, true
	}
	m, ok := t.fields.byName[key]
	return m, ok
}

// Members returns a snapshot of all members, properties first, each table
// in declaration order.
func (t *Type) Members() []*Member {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Member, 0, len(t.props.list)+len(t.fields.list))
	out = append(out, t.props.list...)
	return append(out, t.fields.list...)
}

// AddMember appends m to the property or field table according to m.Kind.
func (t *Type) AddMember(m *Member) error {
	if m == nil {
		return ErrNilMember
	}
	if m.Name == "" {
		return ErrEmptyMemberName
	}
	if m.Get == nil {
		return ErrNoGetter
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tableOf(m.Kind).add(m)
	return nil
}

// RemoveMember removes every property and field whose name folds to name.
// It reports whether anything was removed.
func (t *Type) RemoveMember(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	a := t.props.remove(name)
	b := t.fields.remove(name)
	return a || b
}

// RenameMember renames every member whose name folds to from.
// It reports whether anything was renamed.
func (t *Type) RenameMember(from, to string) bool {
	if to == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	a := t.props.rename(from, to)
	b := t.fields.rename(from, to)
	return a || b
}

// Indexer returns the indexer accepting k, if any.
func (t *Type) Indexer(k path.IndexKind) (*Indexer, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ix, ok := t.indexers[k]
	return ix, ok
}

// Indexers returns a snapshot of the indexers of t ordered by key kind.
func (t *Type) Indexers() []*Indexer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Indexer, 0, len(t.indexers))
	for _, ix := range t.indexers {
		out = append(out, ix)
	}
	slices.SortFunc(out, func(a, b *Indexer) int { return int(a.Key) - int(b.Key) })
	return out
}

// SetIndexer installs ix for its key kind, replacing any previous one.
func (t *Type) SetIndexer(ix *Indexer) error {
	if ix == nil || ix.Get == nil {
		return ErrNoGetter
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.indexers == nil {
		t.indexers = make(map[path.IndexKind]*Indexer, 1)
	}
	t.indexers[ix.Key] = ix
	return nil
}

// RemoveIndexer drops the indexer accepting k and reports whether one existed.
func (t *Type) RemoveIndexer(k path.IndexKind) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.indexers[k]; !ok {
		return false
	}
	delete(t.indexers, k)
	return true
}

func (t *Type) tableOf(k MemberKind) *table {
	if k == PropertyMember {
		return &t.props
	}
	return &t.fields
}

// table keeps members in declaration order plus a case-folded index of the
// first member per folded name.
type table struct {
	list   []*Member
	byName map[string]*Member
}

func (tb *table) add(m *Member) {
	tb.list = append(tb.list, m)
	if tb.byName == nil {
		tb.byName = make(map[string]*Member)
	}
	key := strings.ToLower(m.Name)
	if _, ok := tb.byName[key]; !ok {
		tb.byName[key] = m
	}
}

func (tb *table) remove(name string) bool {
	n := len(tb.list)
	tb.list = slices.DeleteFunc(tb.list, func(m *Member) bool { return strings.EqualFold(m.Name, name) })
	if len(tb.list) == n {
		return false
	}
	tb.reindex()
	return true
}

func (tb *table) rename(from, to string) bool {
	changed := false
	for i, m := range tb.list {
		if strings.EqualFold(m.Name, from) {
			c := *m
			c.Name = to
			tb.list[i] = &c
			changed = true
		}
	}
	if changed {
		tb.reindex()
	}
	return changed
}

func (tb *table) reindex() {
	tb.byName = make(map[string]*Member, len(tb.list))
	for _, m := range tb.list {
		key := strings.ToLower(m.Name)
		if _, ok := tb.byName[key]; !ok {
			tb.byName[key] = m
		}
	}
}
