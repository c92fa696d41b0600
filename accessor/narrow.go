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

package accessor

import (
	"math"
	"reflect"

	"dirpx.dev/pathx/errdefs"
)

// narrow converts value to the static type to. It accepts values assignable
// to to, nil for nillable kinds, same-kind conversions of strings and bools,
// and numeric conversions that lose nothing.
func narrow(value any, to reflect.Type, typ string) (reflect.Value, error) {
	if value == nil {
		switch to.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
			return reflect.Zero(to), nil
		}
		return reflect.Value{}, errdefs.Newf(errdefs.KindTypeMismatch, typ, "nil cannot be assigned to %s", to)
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(to) {
		return v, nil
	}
	switch {
	case numeric(v.Kind()) && numeric(to.Kind()):
		if c, ok := lossless(v, to); ok {
			return c, nil
		}
		return reflect.Value{}, errdefs.Newf(errdefs.KindTypeMismatch, typ, "%v (%s) does not fit %s", value, v.Type(), to)
	case v.Kind() == to.Kind() && (to.Kind() == reflect.String || to.Kind() == reflect.Bool):
		return v.Convert(to), nil
	}
	return reflect.Value{}, errdefs.Newf(errdefs.KindTypeMismatch, typ, "%s cannot be assigned to %s", v.Type(), to)
}

func lossless(v reflect.Value, to reflect.Type) (reflect.Value, bool) {
	switch {
	case isInt(v.Kind()) && isUint(to.Kind()) && v.Int() < 0:
		return reflect.Value{}, false
	case isUint(v.Kind()) && isInt(to.Kind()) && v.Uint() > math.MaxInt64:
		return reflect.Value{}, false
	case isFloat(v.Kind()) && !isFloat(to.Kind()) && (math.IsNaN(v.Float()) || math.IsInf(v.Float(), 0)):
		return reflect.Value{}, false
	case isFloat(v.Kind()) && isUint(to.Kind()) && v.Float() < 0:
		return reflect.Value{}, false
	case isFloat(v.Kind()) && isFloat(to.Kind()):
		// Float to float rounds; only overflow is refused.
		if reflect.Zero(to).OverflowFloat(v.Float()) {
			return reflect.Value{}, false
		}
		return v.Convert(to), true
	}
	c := v.Convert(to)
	if !c.Convert(v.Type()).Equal(v) {
		return reflect.Value{}, false
	}
	return c, true
}

func numeric(k reflect.Kind) bool { return isInt(k) || isUint(k) || isFloat(k) }

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
