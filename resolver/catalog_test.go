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

package resolver_test

import (
	"errors"
	"reflect"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/pathx/apis"
	"dirpx.dev/pathx/config"
	"dirpx.dev/pathx/resolver"
	"dirpx.dev/pathx/schema"
	"dirpx.dev/pathx/strategy"
)

type Node struct {
	Value int
	Next  *Node
	Kids  []Node
}

func newCatalog() apis.Catalog {
	return resolver.NewCatalog(config.DefaultConfig(), resolver.New(
		strategy.NewCollectionStrategy(),
		strategy.NewPropertyStrategy(),
		strategy.NewFieldStrategy(),
	))
}

func TestCatalog_TypeOfIsStable(t *testing.T) {
	cat := newCatalog()

	a, err := cat.TypeOf(reflect.TypeFor[Node]())
	require.NoError(t, err)
	b, err := cat.TypeOf(reflect.TypeFor[*Node]())
	require.NoError(t, err)
	assert.Same(t, a, b, "pointers are described as their element")
	assert.Equal(t, "resolver_test.Node", a.Name())
	assert.Equal(t, schema.Struct, a.Kind())
	assert.Equal(t, 1, cat.Count())
}

func TestCatalog_MemberTypesResolveLazily(t *testing.T) {
	cat := newCatalog()
	node, err := cat.TypeOf(reflect.TypeFor[Node]())
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Count(), "members are not described eagerly")

	next, ok := node.Member("next")
	require.True(t, ok)
	nt, err := node.MemberType(next)
	require.NoError(t, err)
	assert.Same(t, node, nt, "recursive types resolve to the same description")

	kids, _ := node.Member("kids")
	kt, err := node.MemberType(kids)
	require.NoError(t, err)
	assert.Equal(t, schema.Sequence, kt.Kind())
	assert.Equal(t, 2, cat.Count())
}

func TestCatalog_LookupAndIdentity(t *testing.T) {
	cat := newCatalog()
	first := func() reflect.Type {
		type Local struct{ A int }
		return reflect.TypeFor[Local]()
	}()
	second := func() reflect.Type {
		type Local struct{ B int }
		return reflect.TypeFor[Local]()
	}()

	a, err := cat.TypeOf(first)
	require.NoError(t, err)
	_, ok := cat.Lookup("resolver_test.Local")
	assert.True(t, ok)

	b, err := cat.TypeOf(second)
	require.NoError(t, err)
	assert.Equal(t, a.Name(), b.Name())
	assert.NotEqual(t, a.ID(), b.ID())

	_, ok = cat.Lookup("resolver_test.Local")
	assert.False(t, ok, "ambiguous display names do not resolve")
	_, ok = cat.Lookup("missing.Type")
	assert.False(t, ok)
	assert.Len(t, cat.Entries(), 2)
}

type broken struct{}

func (*broken) DescribeMembers(d *schema.Declaration) {
	d.Add(&schema.Member{Name: ""})
}

func TestCatalog_FailedDescriptionNotRetained(t *testing.T) {
	cat := resolver.NewCatalog(apis.Config{}, resolver.New(strategy.NewDescriberStrategy()))
	_, err := cat.TypeOf(reflect.TypeFor[broken]())
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrEmptyMemberName))
	assert.Equal(t, 0, cat.Count())
}

func TestCatalog_Errors(t *testing.T) {
	cat := newCatalog()
	_, err := cat.TypeOf(nil)
	assert.ErrorIs(t, err, resolver.ErrNilType)

	nores := resolver.NewCatalog(apis.Config{}, nil)
	_, err = nores.TypeOf(reflect.TypeFor[Node]())
	assert.ErrorIs(t, err, resolver.ErrNilResolver)
}

func TestCatalog_Reset(t *testing.T) {
	cat := newCatalog()
	a, err := cat.TypeOf(reflect.TypeFor[Node]())
	require.NoError(t, err)
	cat.Reset()
	assert.Equal(t, 0, cat.Count())
	assert.Empty(t, cat.Entries())

	b, err := cat.TypeOf(reflect.TypeFor[Node]())
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

// TestCatalog_Concurrent verifies that concurrent first use describes each
// type exactly once.
func TestCatalog_Concurrent(t *testing.T) {
	cat := newCatalog()
	types := []reflect.Type{
		reflect.TypeFor[Node](),
		reflect.TypeFor[*Node](),
		reflect.TypeFor[[]Node](),
		reflect.TypeFor[map[string]Node](),
	}

	workers := runtime.GOMAXPROCS(0) * 4
	results := make([][]*schema.Type, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			out := make([]*schema.Type, len(types))
			for i, rt := range types {
				typ, err := cat.TypeOf(rt)
				if err != nil {
					t.Errorf("TypeOf(%v): %v", rt, err)
					return
				}
				out[i] = typ
			}
			results[id] = out
		}(w)
	}
	wg.Wait()

	for _, r := range results[1:] {
		for i := range r {
			if r[i] != results[0][i] {
				t.Fatalf("TypeOf(%v) returned different descriptions", types[i])
			}
		}
	}
	if got := cat.Count(); got != 3 {
		t.Fatalf("Count() = %d, want 3", got)
	}
}
