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
	"dirpx.dev/pathx/path"
	"dirpx.dev/pathx/schema"
)

// NewItemStrategy creates an apis.Strategy that turns an Item method into an
// indexer:
//
//	func (T) Item(k K) V            // or (V, error)
//	func (*T) SetItem(k K, v V)     // optional, or returning error
//
// K must be a string or integer kind; it selects the index kind the indexer
// accepts. Intrinsic indexers of the same kind take precedence.
func NewItemStrategy() apis.Strategy {
	return itemStrategy{}
}

type itemStrategy struct{}

// Ensure itemStrategy implements apis.Strategy.
var _ apis.Strategy = (*itemStrategy)(nil)

// TryDescribe installs the Item indexer, if any. The chain continues.
func (itemStrategy) TryDescribe(t *schema.Type, _ apis.Config) (bool, error) {
	rt := t.GoType()
	if rt.Kind() == reflect.Interface || rt.Kind() == reflect.Pointer {
		return false, nil
	}
	pt := reflect.PointerTo(rt)
	get, ok := pt.MethodByName("Item")
	if !ok || get.Type.NumIn() != 2 || !resultShape(get.Type) {
		return false, nil
	}
	kt, et := get.Type.In(1), get.Type.Out(0)
	kk := keyKind(kt)
	if kk == path.NoIndex {
		return false, nil
	}
	if _, exists := t.Indexer(kk); exists {
		return false, nil
	}

	name := t.Name()
	ix := &schema.Indexer{
		Key:        kk,
		KeyType:    kt,
		ElemGoType: et,
		Mode:       schema.ElemCopy,
		Get: func(target, key reflect.Value) (reflect.Value, error) {
			k, err := convertKey(key, kt, name)
			if err != nil {
				return reflect.Value{}, err
			}
			out := get.Func.Call([]reflect.Value{pointerTo(target), k})
			if err := callErr(out, errdefs.KindOutOfRange, name, "Item"); err != nil {
				return reflect.Value{}, err
			}
			return out[0], nil
		},
	}

	if set, ok := pt.MethodByName("SetItem"); ok && setterShape(set.Type, 2) &&
		set.Type.In(1) == kt && set.Type.In(2) == et {
		_, onValue := rt.MethodByName("SetItem")
		ix.SetNeedsAddr = !onValue
		ix.Set = func(target, key, value reflect.Value) error {
			if !onValue && !target.CanAddr() {
				return errdefs.New(errdefs.KindNotWritable, name, "SetItem needs an addressable receiver")
			}
			k, err := convertKey(key, kt, name)
			if err != nil {
				return err
			}
			out := set.Func.Call([]reflect.Value{pointerTo(target), k, value})
			return callErr(out, errdefs.KindTypeMismatch, name, "SetItem")
		}
	}
	return false, t.SetIndexer(ix)
}

// resultShape reports whether ft returns V or (V, error) with V not error.
func resultShape(ft reflect.Type) bool {
	switch ft.NumOut() {
	case 1:
		return ft.Out(0) != errorType
	case 2:
		return ft.Out(0) != errorType && ft.Out(1) == errorType
	default:
		return false
	}
}

// setterShape reports whether ft (a method type, receiver included) takes
// args arguments and returns nothing or a single error.
func setterShape(ft reflect.Type, args int) bool {
	if ft.NumIn() != args+1 {
		return false
	}
	switch ft.NumOut() {
	case 0:
		return true
	case 1:
		return ft.Out(0) == errorType
	default:
		return false
	}
}
