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

package reflect_test

import (
	"errors"
	"reflect"
	"runtime"
	"sync"
	"testing"

	"dirpx.dev/pathx/apis"
	uref "dirpx.dev/pathx/utils/reflect"
)

// Local test types.
type A struct{}
type G[T any] struct{}

func cfg(maxUnwrap int) apis.Config {
	return apis.Config{MaxUnwrap: maxUnwrap}
}

func TestNormalize_Pointers(t *testing.T) {
	pa := &A{}
	cases := []struct {
		name string
		typ  reflect.Type
		want reflect.Type
	}{
		{"plain", reflect.TypeOf(A{}), reflect.TypeOf(A{})},
		{"ptr", reflect.TypeOf(&A{}), reflect.TypeOf(A{})},
		{"ptr ptr", reflect.TypeOf(&pa), reflect.TypeOf(A{})},
		{"slice kept", reflect.TypeOf([]A{}), reflect.TypeOf([]A{})},
		{"ptr to slice", reflect.TypeOf(&[]A{}), reflect.TypeOf([]A{})},
		{"map kept", reflect.TypeOf(map[string]*A{}), reflect.TypeOf(map[string]*A{})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := uref.Normalize(tc.typ, cfg(8))
			if err != nil {
				t.Fatalf("Normalize(%v) returned error: %v", tc.typ, err)
			}
			if got != tc.want {
				t.Fatalf("Normalize(%v) = %v, want %v", tc.typ, got, tc.want)
			}
		})
	}
}

func TestNormalize_MaxUnwrap(t *testing.T) {
	ppp := reflect.TypeOf((***A)(nil))

	if _, err := uref.Normalize(ppp, cfg(2)); !errors.Is(err, uref.ErrReflectTooDeep) {
		t.Fatalf("Normalize(***A, 2) error = %v, want ErrReflectTooDeep", err)
	}
	got, err := uref.Normalize(ppp, cfg(3))
	if err != nil || got != reflect.TypeOf(A{}) {
		t.Fatalf("Normalize(***A, 3) = %v, %v", got, err)
	}
	// Zero falls back to the default depth.
	if _, err := uref.Normalize(ppp, cfg(0)); err != nil {
		t.Fatalf("Normalize(***A, 0): %v", err)
	}
}

func TestNormalize_Errors(t *testing.T) {
	if _, err := uref.Normalize(nil, cfg(8)); !errors.Is(err, uref.ErrReflectNilType) {
		t.Fatalf("Normalize(nil) error = %v, want ErrReflectNilType", err)
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		typ  reflect.Type
		want string
	}{
		{reflect.TypeOf(A{}), "reflect_test.A"},
		{reflect.TypeOf(G[int]{}), "reflect_test.G"},
		{reflect.TypeOf(0), "int"},
		{reflect.TypeOf([]A{}), "[]reflect_test.A"},
		{reflect.TypeOf(struct{ X int }{}), "struct { X int }"},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := uref.DisplayName(tc.typ); got != tc.want {
			t.Fatalf("DisplayName(%v) = %q, want %q", tc.typ, got, tc.want)
		}
	}
}

func TestStripTypeParams(t *testing.T) {
	if got := uref.StripTypeParams("T[int,string]"); got != "T" {
		t.Fatalf("StripTypeParams = %q", got)
	}
	if got := uref.StripTypeParams("T"); got != "T" {
		t.Fatalf("StripTypeParams = %q", got)
	}
}

func TestNormalize_Concurrent(t *testing.T) {
	types := []reflect.Type{
		reflect.TypeOf(&A{}),
		reflect.TypeOf([]A{}),
		reflect.TypeOf(&G[int]{}),
	}
	workers := runtime.GOMAXPROCS(0) * 4
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				typ := types[(i+id)%len(types)]
				got, err := uref.Normalize(typ, cfg(8))
				if err != nil || got.Kind() == reflect.Pointer {
					t.Errorf("Normalize(%v) = %v, %v", typ, got, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()
}

func BenchmarkNormalize(b *testing.B) {
	typ := reflect.TypeOf(&A{})
	c := cfg(8)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = uref.Normalize(typ, c)
	}
}
