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

	"go.uber.org/multierr"

	"dirpx.dev/pathx/errdefs"
)

// Describer is implemented by types that declare their member table
// explicitly instead of having it derived from their Go shape.
//
//	func (*Account) DescribeMembers(d *schema.Declaration) {
//		schema.Field(d, "Balance", func(a *Account) *int64 { return &a.balance }, schema.ReadWrite)
//		schema.Property(d, "Owner", (*Account).Owner, nil)
//	}
type Describer interface {
	DescribeMembers(d *Declaration)
}

// Declaration collects members declared by a Describer.
type Declaration struct {
	t   *Type
	err error
}

// NewDeclaration starts a declaration that adds members to t.
func NewDeclaration(t *Type) *Declaration {
	return &Declaration{t: t}
}

// Type returns the type being declared.
func (d *Declaration) Type() *Type { return d.t }

// Err returns every error met while declaring, combined.
func (d *Declaration) Err() error { return d.err }

// Add adds a hand-built member.
func (d *Declaration) Add(m *Member) {
	d.err = multierr.Append(d.err, d.t.AddMember(m))
}

// AddIndexer installs a hand-built indexer.
func (d *Declaration) AddIndexer(ix *Indexer) {
	d.err = multierr.Append(d.err, d.t.SetIndexer(ix))
}

// Property declares a property named name. get reads it; set assigns it and
// may be nil for a read-only property.
func Property[T, V any](d *Declaration, name string, get func(*T) V, set func(*T, V)) {
	m := &Member{
		Name:      name,
		Kind:      PropertyMember,
		GoType:    reflect.TypeFor[V](),
		Access:    ReadOnly,
		Temporary: true,
		Get: func(target reflect.Value) (reflect.Value, error) {
			p, err := receiver[T](target, false)
			if err != nil {
				return reflect.Value{}, err
			}
			v := get(p)
			return reflect.ValueOf(&v).Elem(), nil
		},
	}
	if set != nil {
		m.Access = ReadWrite
		m.Set = func(target, value reflect.Value) error {
			p, err := receiver[T](target, true)
			if err != nil {
				return err
			}
			set(p, unwrap[V](value))
			return nil
		}
	}
	d.Add(m)
}

// Field declares a field named name stored at the location returned by ref.
// access decides whether the field can be assigned.
func Field[T, V any](d *Declaration, name string, ref func(*T) *V, access Access) {
	m := &Member{
		Name:   name,
		Kind:   FieldMember,
		GoType: reflect.TypeFor[V](),
		Access: access,
		Get: func(target reflect.Value) (reflect.Value, error) {
			p, err := receiver[T](target, false)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(ref(p)).Elem(), nil
		},
	}
	if access == ReadWrite {
		m.Set = func(target, value reflect.Value) error {
			p, err := receiver[T](target, true)
			if err != nil {
				return err
			}
			*ref(p) = unwrap[V](value)
			return nil
		}
	}
	d.Add(m)
}

// Const declares a field named name that always reads as value.
func Const[T, V any](d *Declaration, name string, value V) {
	d.Add(&Member{
		Name:      name,
		Kind:      FieldMember,
		GoType:    reflect.TypeFor[V](),
		Access:    Constant,
		Temporary: true,
		Get: func(target reflect.Value) (reflect.Value, error) {
			if _, err := receiver[T](target, false); err != nil {
				return reflect.Value{}, err
			}
			v := value
			return reflect.ValueOf(&v).Elem(), nil
		},
	})
}

// receiver returns target as *T. Reads from a non-addressable target work on
// a copy; writes require an addressable target.
func receiver[T any](target reflect.Value, write bool) (*T, error) {
	want := reflect.TypeFor[T]()
	if !target.IsValid() || target.Type() != want {
		return nil, errdefs.Newf(errdefs.KindTypeMismatch, want.String(), "receiver is %s", describe(target))
	}
	if target.CanAddr() {
		return target.Addr().Interface().(*T), nil
	}
	if write {
		return nil, errdefs.New(errdefs.KindNotWritable, want.String(), "receiver is not addressable")
	}
	c := reflect.New(want)
	c.Elem().Set(target)
	return c.Interface().(*T), nil
}

func unwrap[V any](value reflect.Value) V {
	var v V
	if value.IsValid() {
		reflect.ValueOf(&v).Elem().Set(value)
	}
	return v
}

func describe(v reflect.Value) string {
	if !v.IsValid() {
		return "invalid"
	}
	return v.Type().String()
}
