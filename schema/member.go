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

package schema

import (
	"reflect"

	"dirpx.dev/pathx/path"
)

// MemberKind tells properties from fields.
type MemberKind uint8

const (
	// FieldMember is a struct field.
	FieldMember MemberKind = iota
	// PropertyMember is a getter method, optionally paired with a setter.
	PropertyMember
)

// String returns a short name of the kind.
func (k MemberKind) String() string {
	if k == PropertyMember {
		return "property"
	}
	return "field"
}

// Access is the writability of a member.
type Access uint8

const (
	// ReadWrite members can be assigned.
	ReadWrite Access = iota
	// ReadOnly members can be read but not assigned.
	ReadOnly
	// Constant members hold a fixed value.
	Constant
)

// String returns a short name of the access.
func (a Access) String() string {
	switch a {
	case ReadWrite:
		return "read-write"
	case ReadOnly:
		return "read-only"
	case Constant:
		return "constant"
	default:
		return "unknown"
	}
}

// Getter reads a member from an addressable target.
type Getter func(target reflect.Value) (reflect.Value, error)

// Setter assigns value to a member of an addressable target. value has
// already been narrowed to the member's GoType.
type Setter func(target, value reflect.Value) error

// Member describes one property or field. Members are immutable once added
// to a Type.
type Member struct {
	// Name is the declared name. Lookups fold case.
	Name string
	// Kind is PropertyMember or FieldMember.
	Kind MemberKind
	// GoType is the declared Go type of the member.
	GoType reflect.Type
	// Type optionally pins the navigation type; when nil it is resolved
	// from GoType by the owning Type's Resolver.
	Type *Type
	// Access is the declared writability.
	Access Access
	// Temporary marks members whose reads yield copies, so writes into the
	// result would be lost.
	Temporary bool
	// Get reads the member. Required.
	Get Getter
	// Set assigns the member. Nil for members that cannot be assigned.
	Set Setter
}

// Writable reports whether m can be assigned.
func (m *Member) Writable() bool {
	return m.Access == ReadWrite && m.Set != nil
}

// ElemMode tells whether elements reached through an indexer are storage
// that can be written through.
type ElemMode uint8

const (
	// ElemShared elements are always addressable (slice elements).
	ElemShared ElemMode = iota
	// ElemInherit elements are addressable iff the container is (arrays).
	ElemInherit
	// ElemCopy elements are copies (map values, Item results).
	ElemCopy
)

// IndexGetter reads the element at key.
type IndexGetter func(target, key reflect.Value) (reflect.Value, error)

// IndexSetter assigns value at key. value has already been narrowed to the
// indexer's ElemGoType.
type IndexSetter func(target, key, value reflect.Value) error

// Indexer describes keyed access into a type.
type Indexer struct {
	// Key is the index kind the indexer accepts.
	Key path.IndexKind
	// KeyType is the Go type keys are converted to.
	KeyType reflect.Type
	// ElemGoType is the Go type of the elements.
	ElemGoType reflect.Type
	// Elem optionally pins the navigation type of elements.
	Elem *Type
	// Mode tells whether elements can be written through.
	Mode ElemMode
	// SetNeedsAddr is set when Set only works on an addressable container
	// (arrays, pointer-receiver SetItem methods).
	SetNeedsAddr bool
	// Get reads an element. Required.
	Get IndexGetter
	// Set assigns an element. Nil for read-only indexers.
	Set IndexSetter
}

// Writable reports whether elements can be assigned through ix.
func (ix *Indexer) Writable() bool { return ix.Set != nil }
