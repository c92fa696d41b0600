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

package pathx

import (
	"reflect"

	"go.uber.org/multierr"

	"dirpx.dev/pathx/errdefs"
)

// Register describes T and registers paths under it. Every path is tried;
// failures are returned combined.
func Register[T any](e *Engine, paths ...string) error {
	rt := reflect.TypeFor[T]()
	if _, err := e.TypeOf(rt); err != nil {
		return err
	}
	var errs error
	for _, p := range paths {
		errs = multierr.Append(errs, e.AddPath(rt, p))
	}
	return errs
}

// Get reads p from target, which is a root value or a pointer to one, and
// returns the result as V.
func Get[V any](e *Engine, target any, p string) (V, error) {
	var zero V
	if target == nil {
		return zero, ErrNilTarget
	}
	get, err := e.ResolveGetter(reflect.TypeOf(target), p)
	if err != nil {
		return zero, err
	}
	v, err := get(target)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(V)
	if !ok {
		return zero, errdefs.WithPath(errdefs.Newf(errdefs.KindTypeMismatch, reflect.TypeFor[V]().String(), "value is %T", v), p)
	}
	return out, nil
}

// Set assigns value at p in target, which must be a pointer to a root value.
func Set(e *Engine, target any, p string, value any) error {
	if target == nil {
		return ErrNilTarget
	}
	set, err := e.ResolveSetter(reflect.TypeOf(target), p)
	if err != nil {
		return err
	}
	return set(target, value)
}
