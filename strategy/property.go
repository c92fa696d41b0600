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

	"dirpx.dev/pathx/apis"
	"dirpx.dev/pathx/errdefs"
	"dirpx.dev/pathx/schema"
)

// skipped are method names never treated as properties.
var skipped = map[string]bool{
	"DescribeMembers": true,
	"Item":            true,
	"SetItem":         true,
}

// NewPropertyStrategy creates an apis.Strategy that exposes exported
// zero-argument methods as properties:
//
//	func (T) Owner() string              // or (string, error)
//	func (*T) SetOwner(v string)         // optional, or returning error
//
// Methods of both the value and the pointer method set are considered.
// Property results are temporaries: writes into a struct returned by a
// property would be lost, so the accessor compiler refuses them.
func NewPropertyStrategy() apis.Strategy {
	return propertyStrategy{}
}

type propertyStrategy struct{}

// Ensure propertyStrategy implements apis.Strategy.
var _ apis.Strategy = (*propertyStrategy)(nil)

// TryDescribe adds one property per getter method. The chain continues.
func (propertyStrategy) TryDescribe(t *schema.Type, _ apis.Config) (bool, error) {
	rt := t.GoType()
	if rt.Kind() == reflect.Interface || rt.Kind() == reflect.Pointer {
		return false, nil
	}
	pt := reflect.PointerTo(rt)
	name := t.Name()
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if skipped[m.Name] || m.Type.NumIn() != 1 || !resultShape(m.Type) {
			continue
		}
		if err := t.AddMember(property(name, rt, pt, m)); err != nil {
			return false, err
		}
	}
	return false, nil
}

func property(typ string, rt, pt reflect.Type, get reflect.Method) *schema.Member {
	mem := &schema.Member{
		Name:      get.Name,
		Kind:      schema.PropertyMember,
		GoType:    get.Type.Out(0),
		Access:    schema.ReadOnly,
		Temporary: true,
		Get: func(target reflect.Value) (reflect.Value, error) {
			out := get.Func.Call([]reflect.Value{pointerTo(target)})
			if err := callErr(out, errdefs.KindUnknown, typ, get.Name); err != nil {
				return reflect.Value{}, err
			}
			return out[0], nil
		},
	}

	set, ok := pt.MethodByName("Set" + get.Name)
	if !ok || !setterShape(set.Type, 1) || set.Type.In(1) != mem.GoType {
		return mem
	}
	_, onValue := rt.MethodByName(set.Name)
	mem.Access = schema.ReadWrite
	mem.Set = func(target, value reflect.Value) error {
		if !onValue && !target.CanAddr() {
			return errdefs.Newf(errdefs.KindNotWritable, typ, "%s needs an addressable receiver", set.Name)
		}
		out := set.Func.Call([]reflect.Value{pointerTo(target), value})
		return callErr(out, errdefs.KindTypeMismatch, typ, set.Name)
	}
	return mem
}
