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

// Package accessor compiles resolved paths into getters and setters.
//
// Compilation resolves every segment once against the type descriptions and
// keeps the resulting step chain. Invoking a compiled accessor walks that
// chain over reflect.Values: no member names are looked up at call time.
//
// Writability is decided at compile time. A setter is refused when the final
// member or indexer cannot be assigned, or when the location is reached
// through a temporary (a property result or a map value held by value),
// since the write would be lost. Failures that depend on the data (index out
// of range, nil in the chain, a value that cannot be narrowed) are reported
// by the compiled accessor on each call.
package accessor

import (
	"reflect"

	"dirpx.dev/pathx/apis"
	"dirpx.dev/pathx/errdefs"
	"dirpx.dev/pathx/path"
	"dirpx.dev/pathx/schema"
	"dirpx.dev/pathx/trie"
)

// op is a step with its index key converted once.
type op struct {
	trie.Step
	key reflect.Value
}

func compile(root *schema.Type, p path.Path) ([]op, error) {
	steps, err := trie.ResolvePath(root, p)
	if err != nil {
		return nil, err
	}
	ops := make([]op, len(steps))
	for i, st := range steps {
		ops[i] = op{Step: st}
		switch st.Segment.Index.Kind {
		case path.IntIndex:
			ops[i].key = reflect.ValueOf(st.Segment.Index.Int)
		case path.KeyIndex:
			ops[i].key = reflect.ValueOf(st.Segment.Index.Key)
		}
	}
	return ops, nil
}

// CompileGetter compiles a getter for p on root. The getter accepts a root
// value or a pointer to one and returns the addressed value as declared,
// pointers included.
func CompileGetter(root *schema.Type, p path.Path) (apis.Getter, error) {
	ops, err := compile(root, p)
	if err != nil {
		return nil, err
	}
	rt, name, text := root.GoType(), root.Name(), p.String()
	return func(target any) (any, error) {
		v, err := rootValue(target, rt, name, false)
		if err != nil {
			return nil, errdefs.WithPath(err, text)
		}
		for _, o := range ops {
			if v, err = o.walk(v); err != nil {
				return nil, errdefs.WithPath(err, text)
			}
		}
		return v.Interface(), nil
	}, nil
}

// CompileSetter compiles a setter for p on root. A single-segment path
// assigns a member of the root itself. When the last segment is indexed the
// element is assigned through the indexer.
func CompileSetter(root *schema.Type, p path.Path) (apis.Setter, error) {
	ops, err := compile(root, p)
	if err != nil {
		return nil, err
	}
	prefix, last := ops[:len(ops)-1], ops[len(ops)-1]
	text := p.String()

	// The root is reached through a pointer, so it is addressable.
	addr := true
	for _, o := range prefix {
		addr = o.addressable(addr)
	}

	var assign func(v, value reflect.Value) error
	var want reflect.Type
	if !last.Indexed() {
		m := last.Member
		if !m.Writable() {
			return nil, errdefs.WithPath(errdefs.Newf(errdefs.KindNotWritable, last.Owner.Name(), "member %s is %s", m.Name, m.Access), text)
		}
		if !addr {
			return nil, errdefs.WithPath(errdefs.Newf(errdefs.KindNotWritable, last.Owner.Name(), "member %s is reached through a temporary", m.Name), text)
		}
		want = m.GoType
		assign = func(v, value reflect.Value) error {
			v, err := deref(v, last.Owner)
			if err != nil {
				return err
			}
			return m.Set(v, value)
		}
	} else {
		ix := last.Indexer
		if !ix.Writable() {
			return nil, errdefs.WithPath(errdefs.Newf(errdefs.KindNotWritable, last.MemberType.Name(), "indexer of %s is read-only", last.Member.Name), text)
		}
		if ix.SetNeedsAddr && !memberAddressable(last.Step, addr) {
			return nil, errdefs.WithPath(errdefs.Newf(errdefs.KindNotWritable, last.MemberType.Name(), "elements of %s are reached through a temporary", last.Member.Name), text)
		}
		want = ix.ElemGoType
		assign = func(v, value reflect.Value) error {
			c, err := last.container(v)
			if err != nil {
				return err
			}
			return ix.Set(c, last.key, value)
		}
	}

	rt, name := root.GoType(), root.Name()
	return func(target, value any) error {
		v, err := rootValue(target, rt, name, true)
		if err != nil {
			return errdefs.WithPath(err, text)
		}
		nv, err := narrow(value, want, name)
		if err != nil {
			return errdefs.WithPath(err, text)
		}
		for _, o := range prefix {
			if v, err = o.walk(v); err != nil {
				return errdefs.WithPath(err, text)
			}
		}
		return errdefs.WithPath(assign(v, nv), text)
	}, nil
}

// rootValue unwraps target down to a value of rt. Setters need a non-nil
// pointer so the assignment is visible to the caller.
func rootValue(target any, rt reflect.Type, name string, write bool) (reflect.Value, error) {
	v := reflect.ValueOf(target)
	if !v.IsValid() {
		if write {
			return reflect.Value{}, errdefs.New(errdefs.KindNotWritable, name, "target is nil")
		}
		return reflect.Value{}, errdefs.New(errdefs.KindNilTraversal, name, "target is nil")
	}
	for v.Type() != rt && v.Kind() == reflect.Pointer {
		if v.IsNil() {
			if write {
				return reflect.Value{}, errdefs.Newf(errdefs.KindNotWritable, name, "target is a nil %s", v.Type())
			}
			return reflect.Value{}, errdefs.Newf(errdefs.KindNilTraversal, name, "target is a nil %s", v.Type())
		}
		v = v.Elem()
	}
	if v.Type() != rt {
		return reflect.Value{}, errdefs.Newf(errdefs.KindTypeMismatch, name, "target is %s", reflect.TypeOf(target))
	}
	if write && !v.CanAddr() {
		return reflect.Value{}, errdefs.Newf(errdefs.KindNotWritable, name, "target must be a pointer, got %s", v.Type())
	}
	return v, nil
}

// walk applies one step to v.
func (o op) walk(v reflect.Value) (reflect.Value, error) {
	if !o.Indexed() {
		v, err := deref(v, o.Owner)
		if err != nil {
			return reflect.Value{}, err
		}
		return o.Member.Get(v)
	}
	c, err := o.container(v)
	if err != nil {
		return reflect.Value{}, err
	}
	return o.Indexer.Get(c, o.key)
}

// container reads the member an indexed step indexes into.
func (o op) container(v reflect.Value) (reflect.Value, error) {
	v, err := deref(v, o.Owner)
	if err != nil {
		return reflect.Value{}, err
	}
	mv, err := o.Member.Get(v)
	if err != nil {
		return reflect.Value{}, err
	}
	return deref(mv, o.MemberType)
}

// deref follows pointers and interfaces until v has the Go type of t.
func deref(v reflect.Value, t *schema.Type) (reflect.Value, error) {
	want := t.GoType()
	for v.Type() != want {
		switch v.Kind() {
		case reflect.Pointer, reflect.Interface:
			if v.IsNil() {
				return reflect.Value{}, errdefs.Newf(errdefs.KindNilTraversal, t.Name(), "nil %s", v.Type())
			}
			v = v.Elem()
		default:
			return reflect.Value{}, errdefs.Newf(errdefs.KindTypeMismatch, t.Name(), "value is %s", v.Type())
		}
	}
	return v, nil
}

// memberAddressable reports whether the member value read by st is storage
// that can be written through, given whether its owner is.
func memberAddressable(st trie.Step, owner bool) bool {
	switch {
	case st.Member.GoType.Kind() == reflect.Pointer:
		return true
	case st.Member.Temporary:
		return false
	default:
		return owner
	}
}

// addressable reports whether the value reached by o is storage that can be
// written through, given whether o's input is.
func (o op) addressable(in bool) bool {
	a := memberAddressable(o.Step, in)
	if !o.Indexed() {
		return a
	}
	if o.Indexer.ElemGoType.Kind() == reflect.Pointer {
		return true
	}
	switch o.Indexer.Mode {
	case schema.ElemShared:
		return true
	case schema.ElemInherit:
		return a
	default:
		return false
	}
}
