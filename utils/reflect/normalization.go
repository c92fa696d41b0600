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

package reflect

import (
	"errors"
	"path"
	"reflect"
	"strings"

	"dirpx.dev/pathx/apis"
	"dirpx.dev/pathx/config"
)

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectTooDeep is returned when a type is still a pointer after
	// MaxUnwrap dereferences.
	ErrReflectTooDeep = errors.New("reflect: pointer nesting exceeds MaxUnwrap")
)

// Normalize strips pointer indirections from t and returns the type values
// are ultimately stored as. Collections are kept as they are: a []T is
// described as a sequence, not as T.
//
// At most cfg.MaxUnwrap pointers are removed. If MaxUnwrap <= 0,
// config.DefaultMaxUnwrap is used.
func Normalize(t reflect.Type, cfg apis.Config) (reflect.Type, error) {
	if t == nil {
		return nil, ErrReflectNilType
	}
	maxUnwrap := cfg.MaxUnwrap
	if maxUnwrap <= 0 {
		maxUnwrap = config.DefaultMaxUnwrap
	}
	for i := 0; t.Kind() == reflect.Pointer; i++ {
		if i == maxUnwrap {
			return nil, ErrReflectTooDeep
		}
		t = t.Elem()
	}
	return t, nil
}

// DisplayName returns the short name used to show t to people:
// "pkg.Type" for named types (generic instantiation parameters stripped),
// the bare name for predeclared types and t.String() for unnamed ones.
//
// Display names are not unique. Two packages may both define "model.User";
// identity is carried by schema.Identity, not by this name.
func DisplayName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	name := t.Name()
	if name == "" {
		return t.String()
	}
	name = StripTypeParams(name)
	if p := t.PkgPath(); p != "" {
		return path.Base(p) + "." + name
	}
	return name
}

// StripTypeParams removes generic type instantiation suffix: "T[int,string]" -> "T".
func StripTypeParams(s string) string {
	if i := strings.IndexByte(s, '['); i >= 0 {
		return s[:i]
	}
	return s
}
