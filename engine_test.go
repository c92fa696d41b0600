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

package pathx_test

import (
	"reflect"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/pathx"
	"dirpx.dev/pathx/apis"
	"dirpx.dev/pathx/builder"
	"dirpx.dev/pathx/config"
	"dirpx.dev/pathx/errdefs"
	"dirpx.dev/pathx/manifest"
	"dirpx.dev/pathx/schema"
)

type A struct{ B B }
type B struct{ C []C }
type C struct {
	D     D
	Value int
}
type D struct{ Value int }

type secret struct {
	Name string
	pin  int
}

var typeA = reflect.TypeFor[A]()

// countingBuilder wraps the default builder and records what it was asked.
type countingBuilder struct {
	mu      sync.Mutex
	inner   apis.Builder
	lastCfg apis.Config
	cats    int
	regs    int
	nilCat  bool
}

func newCountingBuilder() *countingBuilder {
	return &countingBuilder{inner: builder.New()}
}

func (b *countingBuilder) BuildCatalog(cfg apis.Config, prev apis.Catalog) apis.Catalog {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastCfg = cfg
	b.cats++
	if b.nilCat {
		return nil
	}
	return b.inner.BuildCatalog(cfg, prev)
}

func (b *countingBuilder) BuildRegistry(cfg apis.Config, cat apis.Catalog, prev apis.Registry) (apis.Registry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.regs++
	return b.inner.BuildRegistry(cfg, cat, prev)
}

func (b *countingBuilder) counts() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cats, b.regs
}

func TestSetConfigRebuildsUnpinned(t *testing.T) {
	b := newCountingBuilder()
	e := pathx.New(pathx.WithBuilder(b))
	reg1, cat1 := e.Registry(), e.Catalog()

	cfg := config.NewConfig(config.WithCachePolicy(apis.None), config.WithMaxUnwrap(4))
	require.NoError(t, e.SetConfig(cfg))

	assert.NotSame(t, reg1, e.Registry())
	assert.NotSame(t, cat1, e.Catalog())
	assert.Equal(t, cfg, e.Config())
	b.mu.Lock()
	assert.Equal(t, cfg, b.lastCfg)
	b.mu.Unlock()
	cats, regs := b.counts()
	assert.Equal(t, 2, cats)
	assert.Equal(t, 2, regs)
}

func TestSetConfigMigratesPaths(t *testing.T) {
	e := pathx.New()
	require.NoError(t, pathx.Register[A](e, "b.c[0].d.value"))
	old, err := e.TypeOf(typeA)
	require.NoError(t, err)

	require.NoError(t, e.SetConfig(config.NewConfig(config.WithCachePolicy(apis.None))))
	cur, err := e.TypeOf(typeA)
	require.NoError(t, err)
	assert.NotEqual(t, old.ID(), cur.ID())
	assert.True(t, e.IsValidPath(typeA, "B.C[0].D.VALUE"))
}

func TestSetConfigReportsLostPaths(t *testing.T) {
	e := pathx.New()
	rt := reflect.TypeFor[secret]()
	require.NoError(t, pathx.Register[secret](e, "name", "pin"))

	err := e.SetConfig(config.NewConfig(config.WithIncludeUnexported(false)))
	assert.ErrorIs(t, err, errdefs.ErrMemberNotFound)
	assert.False(t, e.Config().IncludeUnexported, "the snapshot is published regardless")
	assert.True(t, e.IsValidPath(rt, "name"))
	assert.False(t, e.IsValidPath(rt, "pin"))
}

func TestSetRegistryPins(t *testing.T) {
	b := newCountingBuilder()
	e := pathx.New(pathx.WithBuilder(b))
	custom, err := builder.New().BuildRegistry(e.Config(), e.Catalog(), nil)
	require.NoError(t, err)

	e.SetRegistry(custom)
	assert.True(t, e.IsRegistryPinned())
	cat := e.Catalog()

	require.NoError(t, e.SetConfig(config.NewConfig(config.WithMaxUnwrap(2))))
	assert.Same(t, custom, e.Registry())
	assert.Same(t, cat, e.Catalog(), "a pinned registry keeps its catalog")
	assert.Equal(t, 2, e.Config().MaxUnwrap)

	e.UnpinRegistry()
	require.NoError(t, e.SetConfig(config.DefaultConfig()))
	assert.NotSame(t, custom, e.Registry())

	e.PinRegistry()
	before := e.Registry()
	require.NoError(t, e.SetBuilder(newCountingBuilder()))
	assert.Same(t, before, e.Registry())

	e.SetRegistry(nil)
	assert.Same(t, before, e.Registry())
}

func TestSetBuilderRebuilds(t *testing.T) {
	e := pathx.New()
	require.NoError(t, pathx.Register[A](e, "b.c"))
	reg := e.Registry()

	b := newCountingBuilder()
	require.NoError(t, e.SetBuilder(b))
	assert.Same(t, b, e.Builder())
	assert.NotSame(t, reg, e.Registry())
	assert.True(t, e.IsValidPath(typeA, "b.c"))

	require.NoError(t, e.SetBuilder(nil))
	assert.Same(t, b, e.Builder())
}

func TestNilCatalog(t *testing.T) {
	b := newCountingBuilder()
	b.nilCat = true
	assert.PanicsWithValue(t, pathx.ErrNilCatalog, func() { pathx.New(pathx.WithBuilder(b)) })

	ok := newCountingBuilder()
	e := pathx.New(pathx.WithBuilder(ok))
	reg := e.Registry()
	ok.mu.Lock()
	ok.nilCat = true
	ok.mu.Unlock()
	assert.ErrorIs(t, e.SetConfig(config.DefaultConfig()), pathx.ErrNilCatalog)
	assert.Same(t, reg, e.Registry(), "nothing is published on failure")
}

func TestDeclare(t *testing.T) {
	e := pathx.New()
	e.Declare(reflect.TypeFor[secret](), func(d *schema.Declaration) {
		schema.Field(d, "Code", func(s *secret) *int { return &s.pin }, schema.ReadWrite)
	})

	s := &secret{Name: "x"}
	require.NoError(t, pathx.Register[secret](e, "code"))
	require.NoError(t, pathx.Set(e, s, "CODE", 1234))
	assert.Equal(t, 1234, s.pin)

	_, err := pathx.Get[string](e, s, "name")
	assert.ErrorIs(t, err, errdefs.ErrMemberNotFound, "declarations replace the derived table")
}

func TestGetSet(t *testing.T) {
	e := pathx.New()
	require.NoError(t, pathx.Register[A](e, "b.c[0].d.value"))

	a := &A{B: B{C: []C{{}}}}
	require.NoError(t, pathx.Set(e, a, "b.c[0].value", 1000))
	v, err := pathx.Get[int](e, a, "b.c[0].value")
	require.NoError(t, err)
	assert.Equal(t, 1000, v)

	// Values work as getter targets.
	v, err = pathx.Get[int](e, *a, "B.C[0].Value")
	require.NoError(t, err)
	assert.Equal(t, 1000, v)

	_, err = pathx.Get[string](e, a, "b.c[0].value")
	assert.ErrorIs(t, err, errdefs.ErrTypeMismatch)
	_, err = pathx.Get[int](e, nil, "b")
	assert.ErrorIs(t, err, pathx.ErrNilTarget)
	assert.ErrorIs(t, pathx.Set(e, nil, "b", 1), pathx.ErrNilTarget)
	assert.ErrorIs(t, pathx.Set(e, *a, "b.c[0].value", 1), errdefs.ErrNotWritable)

	err = pathx.Register[A](e, "b.nope", "b.c[0]", "b..c")
	assert.ErrorIs(t, err, errdefs.ErrMemberNotFound)
	assert.ErrorIs(t, err, errdefs.ErrSyntax)
	assert.True(t, e.IsValidPath(typeA, "b.c[0]"))
}

func TestEngineDrift(t *testing.T) {
	e := pathx.New()
	require.NoError(t, pathx.Register[A](e, "b.c[0].d.value", "b.c[0].value"))
	_, err := e.ResolveGetter(typeA, "b.c[0].d.value")
	require.NoError(t, err)

	c, err := e.TypeOf(reflect.TypeFor[C]())
	require.NoError(t, err)
	require.True(t, c.RemoveMember("D"))

	removed, err := e.RemoveInvalidPaths(typeA)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.c[0].d.value"}, removed)
	assert.False(t, e.IsValidPath(typeA, "b.c[0].d.value"))
	assert.True(t, e.IsValidPath(typeA, "b.c[0].value"))
	assert.False(t, e.Invalidate(typeA, "b.c[0].d.value"))

	require.NoError(t, e.RemovePath(typeA, "b.c[0].value"))
	a, err := e.TypeOf(typeA)
	require.NoError(t, err)
	assert.Empty(t, e.Registry().Paths(a))
}

func TestApplyManifest(t *testing.T) {
	e := pathx.New()
	_, err := e.TypeOf(typeA)
	require.NoError(t, err)
	m := &manifest.Manifest{Types: []manifest.Entry{{Type: "pathx_test.A", Paths: []string{"b.c[0].value"}}}}
	require.NoError(t, e.ApplyManifest(m))
	assert.True(t, e.IsValidPath(typeA, "b.c[0].value"))

	set, err := e.ResolveSetter(typeA, "b.c[0].value")
	require.NoError(t, err)
	a := &A{B: B{C: []C{{}}}}
	require.NoError(t, set(a, 7))
	assert.Equal(t, 7, a.B.C[0].Value)
}

func TestResolveConcurrentWithSetConfig(t *testing.T) {
	e := pathx.New()
	require.NoError(t, pathx.Register[A](e, "b.c[0].value"))

	done := make(chan struct{})
	var wg sync.WaitGroup
	readers := runtime.GOMAXPROCS(0) * 4
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			a := &A{B: B{C: []C{{Value: 3}}}}
			for j := 0; j < 1000; j++ {
				v, err := pathx.Get[int](e, a, "b.c[0].value")
				if err != nil || v != 3 {
					t.Errorf("Get = %v, %v", v, err)
					return
				}
			}
		}()
	}

	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			policy := apis.Memo
			if i%2 == 0 {
				policy = apis.None
			}
			if err := e.SetConfig(config.NewConfig(config.WithCachePolicy(policy), config.WithMaxUnwrap(4+i%5))); err != nil {
				t.Errorf("SetConfig: %v", err)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	wg.Wait()
	<-done
}
