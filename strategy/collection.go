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

// NewCollectionStrategy creates an apis.Strategy that installs the intrinsic
// indexers of slices, arrays and maps.
//
// Slices and arrays take integer indices. Maps take integer or string keys
// depending on their key kind; maps keyed by anything else get no indexer.
// The chain continues afterwards so named collection types can still expose
// properties.
func NewCollectionStrategy() apis.Strategy {
	return collectionStrategy{}
}

type collectionStrategy struct{}

// Ensure collectionStrategy implements apis.Strategy.
var _ apis.Strategy = (*collectionStrategy)(nil)

// TryDescribe installs the indexer matching t's Go kind.
func (collectionStrategy) TryDescribe(t *schema.Type, _ apis.Config) (bool, error) {
	rt := t.GoType()
	switch rt.Kind() {
	case reflect.Slice:
		return false, t.SetIndexer(sequenceIndexer(t.Name(), rt, schema.ElemShared))
	case reflect.Array:
		return false, t.SetIndexer(sequenceIndexer(t.Name(), rt, schema.ElemInherit))
	case reflect.Map:
		if keyKind(rt.Key()) == path.NoIndex {
			return false, nil
		}
		return false, t.SetIndexer(mapIndexer(t.Name(), rt))
	default:
		return false, nil
	}
}

func sequenceIndexer(name string, rt reflect.Type, mode schema.ElemMode) *schema.Indexer {
	at := func(target, key reflect.Value) (reflect.Value, error) {
		i, n := key.Int(), target.Len()
		if i < 0 || i >= int64(n) {
			return reflect.Value{}, errdefs.Newf(errdefs.KindOutOfRange, name, "index %d out of range [0,%d)", i, n)
		}
		return target.Index(int(i)), nil
	}
	return &schema.Indexer{
		Key:          path.IntIndex,
		KeyType:      int64Type,
		ElemGoType:   rt.Elem(),
		Mode:         mode,
		SetNeedsAddr: mode == schema.ElemInherit,
		Get:          at,
		Set: func(target, key, value reflect.Value) error {
			e, err := at(target, key)
			if err != nil {
				return err
			}
			if !e.CanSet() {
				return errdefs.New(errdefs.KindNotWritable, name, "element is not addressable")
			}
			e.Set(value)
			return nil
		},
	}
}

func mapIndexer(name string, rt reflect.Type) *schema.Indexer {
	kt := rt.Key()
	return &schema.Indexer{
		Key:        keyKind(kt),
		KeyType:    kt,
		ElemGoType: rt.Elem(),
		Mode:       schema.ElemCopy,
		Get: func(target, key reflect.Value) (reflect.Value, error) {
			k, err := convertKey(key, kt, name)
			if err != nil {
				return reflect.Value{}, err
			}
			v := target.MapIndex(k)
			if !v.IsValid() {
				return reflect.Value{}, errdefs.Newf(errdefs.KindOutOfRange, name, "key %v not present", key)
			}
			return v, nil
		},
		Set: func(target, key, value reflect.Value) error {
			if target.IsNil() {
				return errdefs.New(errdefs.KindNilTraversal, name, "assignment to entry in nil map")
			}
			k, err := convertKey(key, kt, name)
			if err != nil {
				return err
			}
			target.SetMapIndex(k, value)
			return nil
		},
	}
}
