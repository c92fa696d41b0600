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
	"strings"
	"unsafe"

	"dirpx.dev/pathx/apis"
	"dirpx.dev/pathx/errdefs"
	"dirpx.dev/pathx/schema"
)

// TagName is the struct tag consulted for fields:
//
//	Name  string `pathx:"-"`            // not addressable by path
//	ID    int    `pathx:",readonly"`    // readable, not assignable
//	Kind  string `pathx:",const"`       // constant
//	Total int    `pathx:"sum"`          // addressed as "sum"
const TagName = "pathx"

// NewFieldStrategy creates an apis.Strategy that exposes struct fields,
// promoted fields of embedded structs included.
//
// Unexported fields are exposed when cfg.IncludeUnexported is set; clearing
// cfg.WriteUnexported makes them read-only.
func NewFieldStrategy() apis.Strategy {
	return fieldStrategy{}
}

type fieldStrategy struct{}

// Ensure fieldStrategy implements apis.Strategy.
var _ apis.Strategy = (*fieldStrategy)(nil)

// TryDescribe adds one field member per visible field of a struct and stops
// the chain.
func (fieldStrategy) TryDescribe(t *schema.Type, cfg apis.Config) (bool, error) {
	rt := t.GoType()
	if rt.Kind() != reflect.Struct {
		return false, nil
	}
	for _, f := range reflect.VisibleFields(rt) {
		if !f.IsExported() && !cfg.IncludeUnexported {
			continue
		}
		tag := f.Tag.Get(TagName)
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		access := schema.ReadWrite
		switch {
		case opts == "const":
			access = schema.Constant
		case opts == "readonly":
			access = schema.ReadOnly
		case !f.IsExported() && !cfg.WriteUnexported:
			access = schema.ReadOnly
		}
		if err := t.AddMember(field(t.Name(), name, f, access)); err != nil {
			return true, err
		}
	}
	return true, nil
}

func field(typ, name string, f reflect.StructField, access schema.Access) *schema.Member {
	mem := &schema.Member{
		Name:   name,
		Kind:   schema.FieldMember,
		GoType: f.Type,
		Access: access,
		Get: func(target reflect.Value) (reflect.Value, error) {
			v, err := target.FieldByIndexErr(f.Index)
			if err != nil {
				return reflect.Value{}, errdefs.Newf(errdefs.KindNilTraversal, typ, "field %s: %v", f.Name, err)
			}
			if v.CanInterface() {
				return v, nil
			}
			if !v.CanAddr() {
				// Unexported fields are reached through their address.
				v, _ = pointerTo(target).Elem().FieldByIndexErr(f.Index)
			}
			return exposed(v), nil
		},
	}
	if access != schema.ReadWrite {
		return mem
	}
	mem.Set = func(target, value reflect.Value) error {
		v, err := target.FieldByIndexErr(f.Index)
		if err != nil {
			return errdefs.Newf(errdefs.KindNilTraversal, typ, "field %s: %v", f.Name, err)
		}
		if !v.CanAddr() {
			return errdefs.Newf(errdefs.KindNotWritable, typ, "field %s is not addressable", f.Name)
		}
		if !v.CanSet() {
			v = exposed(v)
		}
		v.Set(value)
		return nil
	}
	return mem
}

// exposed lifts the read-only flag reflect puts on addressable unexported fields.
func exposed(v reflect.Value) reflect.Value {
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}
