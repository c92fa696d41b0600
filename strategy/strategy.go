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

// Package strategy provides the member discovery strategies run by the
// resolver chain when the catalog describes a Go type.
//
// Strategies, in the order the default builder chains them:
//
//   - declarations: member tables registered for types the host does not own
//   - describer:    types implementing schema.Describer declare their own members
//   - collection:   intrinsic indexers of slices, arrays and maps
//   - item:         Item(k) / SetItem(k, v) method indexers
//   - property:     zero-argument methods, paired with SetX setters
//   - field:        struct fields, including promoted and (optionally) unexported ones
package strategy

import (
	"fmt"
	"reflect"

	"dirpx.dev/pathx/errdefs"
	"dirpx.dev/pathx/path"
)

var (
	errorType = reflect.TypeFor[error]()
	int64Type = reflect.TypeFor[int64]()
)

// pointerTo returns a pointer to target. Non-addressable targets are copied
// first, so writes through the result are lost.
func pointerTo(target reflect.Value) reflect.Value {
	if target.CanAddr() {
		return target.Addr()
	}
	p := reflect.New(target.Type())
	p.Elem().Set(target)
	return p
}

// keyKind returns the path index kind accepted for keys of type kt.
func keyKind(kt reflect.Type) path.IndexKind {
	switch kt.Kind() {
	case reflect.String:
		return path.KeyIndex
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return path.IntIndex
	default:
		return path.NoIndex
	}
}

// convertKey converts a raw segment key (int64 or string) to kt.
// Integers that do not fit kt are out of range.
func convertKey(key reflect.Value, kt reflect.Type, typ string) (reflect.Value, error) {
	switch kt.Kind() {
	case reflect.String:
		if key.Kind() != reflect.String {
			return reflect.Value{}, errdefs.Newf(errdefs.KindTypeMismatch, typ, "key %v is not a string", key)
		}
		return key.Convert(kt), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if key.Kind() != reflect.Int64 {
			return reflect.Value{}, errdefs.Newf(errdefs.KindTypeMismatch, typ, "key %v is not an integer", key)
		}
		k := reflect.New(kt).Elem()
		if k.OverflowInt(key.Int()) {
			return reflect.Value{}, errdefs.Newf(errdefs.KindOutOfRange, typ, "key %d overflows %s", key.Int(), kt)
		}
		k.SetInt(key.Int())
		return k, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if key.Kind() != reflect.Int64 {
			return reflect.Value{}, errdefs.Newf(errdefs.KindTypeMismatch, typ, "key %v is not an integer", key)
		}
		k := reflect.New(kt).Elem()
		if key.Int() < 0 || k.OverflowUint(uint64(key.Int())) {
			return reflect.Value{}, errdefs.Newf(errdefs.KindOutOfRange, typ, "key %d overflows %s", key.Int(), kt)
		}
		k.SetUint(uint64(key.Int()))
		return k, nil
	default:
		return reflect.Value{}, errdefs.Newf(errdefs.KindUnsupportedIndexer, typ, "keys of kind %s", kt.Kind())
	}
}

// callErr turns the trailing error result of a user method into a pathx
// error of the given kind. KindUnknown wraps the error without classifying it.
func callErr(out []reflect.Value, kind errdefs.Kind, typ, method string) error {
	if len(out) == 0 {
		return nil
	}
	last := out[len(out)-1]
	if last.Type() != errorType || last.IsNil() {
		return nil
	}
	err := last.Interface().(error)
	if errdefs.KindOf(err) != errdefs.KindUnknown {
		return err
	}
	if kind == errdefs.KindUnknown {
		return fmt.Errorf("pathx: %s.%s: %w", typ, method, err)
	}
	return &errdefs.Error{Kind: kind, Type: typ, Offset: -1, Msg: fmt.Sprintf("%s failed", method), Err: err}
}
