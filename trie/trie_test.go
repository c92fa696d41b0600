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

package trie_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/pathx/apis"
	"dirpx.dev/pathx/config"
	"dirpx.dev/pathx/errdefs"
	"dirpx.dev/pathx/path"
	"dirpx.dev/pathx/resolver"
	"dirpx.dev/pathx/schema"
	"dirpx.dev/pathx/strategy"
	"dirpx.dev/pathx/trie"
)

type A struct{ B B }
type B struct {
	C    []C
	Tags map[string]D
	Pair [2]D
}
type C struct {
	D     D
	Value int
}
type D struct{ Value int }

func catalog() apis.Catalog {
	return resolver.NewCatalog(config.DefaultConfig(), resolver.New(
		strategy.NewCollectionStrategy(),
		strategy.NewItemStrategy(),
		strategy.NewPropertyStrategy(),
		strategy.NewFieldStrategy(),
	))
}

func typeOf[T any](t *testing.T, cat apis.Catalog) *schema.Type {
	t.Helper()
	typ, err := cat.TypeOf(reflect.TypeFor[T]())
	require.NoError(t, err)
	return typ
}

func TestResolve(t *testing.T) {
	cat := catalog()
	a := typeOf[A](t, cat)

	steps, err := trie.ResolvePath(a, path.MustParse("b.c[0].d.value"))
	require.NoError(t, err)
	require.Len(t, steps, 4)
	assert.False(t, steps[0].Indexed())
	assert.True(t, steps[1].Indexed())
	assert.Equal(t, "[]trie_test.C", steps[1].MemberType.Name())
	assert.Equal(t, "trie_test.C", steps[1].Type.Name())
	assert.Equal(t, "int", steps[3].Type.Name())

	steps, err = trie.ResolvePath(a, path.MustParse("B.Tags[x].VALUE"))
	require.NoError(t, err)
	assert.Equal(t, "trie_test.D", steps[1].Type.Name())
}

func TestResolveErrors(t *testing.T) {
	cat := catalog()
	a := typeOf[A](t, cat)

	cases := []struct {
		path string
		want error
	}{
		{"b.missing", errdefs.ErrMemberNotFound},
		{"b.c[key]", errdefs.ErrUnsupportedIndexer},
		{"b.tags[1]", errdefs.ErrUnsupportedIndexer},
		{"b[0]", errdefs.ErrUnsupportedIndexer},
		{"b.c[0].value.x", errdefs.ErrMemberNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			err := trie.ValidatePathStructure(path.MustParse(tc.path), a)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var e *errdefs.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tc.path, e.Path)
		})
	}

	err := trie.ValidatePathStructure(path.MustParse("b.tags[1]"), a)
	assert.Contains(t, err.Error(), "takes key indices, not int")
	assert.NoError(t, trie.ValidatePathStructure(path.MustParse("b.pair[1].value"), a))
}

func TestAddPathAndIsValidPath(t *testing.T) {
	cat := catalog()
	root := trie.NewRoot(typeOf[A](t, cat))

	require.NoError(t, root.AddPath(path.MustParse("b.c[0].d.value")))
	assert.True(t, root.IsValidPath(path.MustParse("b.c[0].d.value")))
	assert.True(t, root.IsValidPath(path.MustParse("B.C[0].D.VALUE")), "names fold case")
	assert.False(t, root.IsValidPath(path.MustParse("b.c[0].d")), "prefix is not an endpoint")
	assert.True(t, root.IsValidPath(path.MustParse("b.c[1].d.value")), "index values are not part of the shape")
	assert.False(t, root.IsValidPath(path.MustParse("b.c.d.value")), "index kinds are")
	assert.False(t, root.IsValidPath(path.MustParse("b.c[k].d.value")))
	assert.Equal(t, 5, root.Len())

	c, ok := root.Child(path.MustParse("b")[0])
	require.True(t, ok)
	assert.Equal(t, "trie_test.B", c.Type().Name())
	assert.False(t, c.IsEndpoint())

	// Registering the prefix too makes it an endpoint of its own.
	require.NoError(t, root.AddPath(path.MustParse("b.c[0].d")))
	assert.True(t, root.IsValidPath(path.MustParse("b.c[0].d")))
	assert.Equal(t, []string{"b.c[0].d", "b.c[0].d.value"}, root.Endpoints())
}

func TestIndexVariantsShareNodes(t *testing.T) {
	cat := catalog()
	root := trie.NewRoot(typeOf[A](t, cat))

	for _, p := range []string{"b.c[0].d.value", "b.c[1].d.value", "B.C[2].D.Value"} {
		require.NoError(t, root.AddPath(path.MustParse(p)))
	}
	assert.Equal(t, 5, root.Len())
	assert.Equal(t, []string{"b.c[0].d.value"}, root.Endpoints(), "first registration names the shape")

	c, ok := root.Child(path.MustParse("b")[0])
	require.True(t, ok)
	_, ok = c.Child(path.MustParse("c[9]")[0])
	assert.True(t, ok)
	_, ok = c.Child(path.MustParse("c")[0])
	assert.False(t, ok)

	assert.True(t, root.RemovePath(path.MustParse("b.c[5].d.value")))
	assert.Empty(t, root.Endpoints())
}

func TestIndexKindConflict(t *testing.T) {
	cat := catalog()
	root := trie.NewRoot(typeOf[A](t, cat))
	require.NoError(t, root.AddPath(path.MustParse("b.c[0].value")))
	before := root.Len()

	err := root.AddPath(path.MustParse("b.c"))
	require.ErrorIs(t, err, errdefs.ErrUnsupportedIndexer)
	var e *errdefs.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "b.c", e.Path)
	assert.Contains(t, e.Msg, "registered with int index, not none")
	assert.Equal(t, before, root.Len())
	assert.False(t, root.IsValidPath(path.MustParse("b.c")))

	// The unindexed shape is fine on a fresh trie.
	other := trie.NewRoot(typeOf[A](t, cat))
	require.NoError(t, other.AddPath(path.MustParse("b.c")))
	assert.ErrorIs(t, other.AddPath(path.MustParse("b.c[0].value")), errdefs.ErrUnsupportedIndexer)
}

func TestAddPathFailureLeavesTrieUnchanged(t *testing.T) {
	cat := catalog()
	root := trie.NewRoot(typeOf[A](t, cat))
	require.NoError(t, root.AddPath(path.MustParse("b.c[0].value")))
	before := root.Len()

	err := root.AddPath(path.MustParse("b.c[0].d.nope"))
	assert.ErrorIs(t, err, errdefs.ErrMemberNotFound)
	assert.Equal(t, before, root.Len())
}

func TestRemovePathPrunes(t *testing.T) {
	cat := catalog()
	root := trie.NewRoot(typeOf[A](t, cat))
	require.NoError(t, root.AddPath(path.MustParse("b.c[0].d.value")))
	require.NoError(t, root.AddPath(path.MustParse("b.tags[x].value")))

	assert.True(t, root.RemovePath(path.MustParse("B.C[0].D.Value")))
	assert.False(t, root.IsValidPath(path.MustParse("b.c[0].d.value")))
	_, ok := root.Child(path.MustParse("b")[0])
	assert.True(t, ok, "b still leads to b.tags[x].value")
	assert.Equal(t, 4, root.Len())

	assert.False(t, root.RemovePath(path.MustParse("b.c[0].d.value")), "already removed")

	assert.True(t, root.RemovePath(path.MustParse("b.tags[x].value")))
	assert.Equal(t, 1, root.Len(), "no node of the subtree remains reachable")
	assert.False(t, root.IsValid())
	assert.Empty(t, root.Endpoints())
}

func TestDriftPrune(t *testing.T) {
	cat := catalog()
	a := typeOf[A](t, cat)
	root := trie.NewRoot(a)
	require.NoError(t, root.AddPath(path.MustParse("b.c[0].d.value")))
	require.NoError(t, root.AddPath(path.MustParse("b.c[0].value")))

	ctype := typeOf[C](t, cat)
	require.True(t, ctype.RenameMember("d", "delta"))

	// Structure is not consulted by the exact walk, the live check is.
	assert.True(t, root.IsValidPath(path.MustParse("b.c[0].d.value")))
	assert.ErrorIs(t, trie.ValidatePathStructure(path.MustParse("b.c[0].d.value"), a), errdefs.ErrMemberNotFound)

	removed := root.Prune()
	assert.Equal(t, 2, removed)
	assert.False(t, root.IsValidPath(path.MustParse("b.c[0].d.value")))
	assert.True(t, root.IsValidPath(path.MustParse("b.c[0].value")))
	assert.Equal(t, []string{"b.c[0].value"}, root.Endpoints())
}

func TestResolveNilRoot(t *testing.T) {
	_, err := trie.ResolvePath(nil, path.MustParse("a"))
	assert.ErrorIs(t, err, errdefs.ErrUnknownType)
}
