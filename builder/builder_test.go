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

package builder_test

import (
	"reflect"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"dirpx.dev/pathx/apis"
	"dirpx.dev/pathx/builder"
	"dirpx.dev/pathx/config"
	"dirpx.dev/pathx/errdefs"
	"dirpx.dev/pathx/schema"
	"dirpx.dev/pathx/strategy"
)

// plain is described from its Go shape.
type plain struct {
	Value  int
	hidden int
}

// declared describes itself; its Go fields are not exposed.
type declared struct {
	secret int
	Public int
}

func (*declared) DescribeMembers(d *schema.Declaration) {
	schema.Field(d, "Amount", func(x *declared) *int { return &x.secret }, schema.ReadWrite)
}

// foreign gets its members from a Declarations table.
type foreign struct{ n int }

func TestBuildCatalogStrategyOrder(t *testing.T) {
	decls := &strategy.Declarations{}
	decls.Declare(reflect.TypeFor[foreign](), func(d *schema.Declaration) {
		schema.Property(d, "N", func(f *foreign) int { return f.n }, nil)
	})
	cat := builder.New(builder.WithDeclarations(decls)).BuildCatalog(config.DefaultConfig(), nil)

	p, err := cat.TypeOf(reflect.TypeFor[*plain]())
	require.NoError(t, err)
	_, ok := p.Member("value")
	assert.True(t, ok)
	_, ok = p.Member("hidden")
	assert.True(t, ok, "unexported fields are included by default")

	d, err := cat.TypeOf(reflect.TypeFor[declared]())
	require.NoError(t, err)
	_, ok = d.Member("amount")
	assert.True(t, ok)
	_, ok = d.Member("public")
	assert.False(t, ok, "a describer replaces the derived table")

	f, err := cat.TypeOf(reflect.TypeFor[foreign]())
	require.NoError(t, err)
	m, ok := f.Member("n")
	require.True(t, ok)
	assert.Equal(t, schema.PropertyMember, m.Kind)
}

func TestBuildRegistryFresh(t *testing.T) {
	b := builder.New()
	cfg := config.DefaultConfig()
	cat := b.BuildCatalog(cfg, nil)

	reg, err := b.BuildRegistry(cfg, cat, nil)
	require.NoError(t, err)
	require.NotNil(t, reg)

	typ, err := cat.TypeOf(reflect.TypeFor[plain]())
	require.NoError(t, err)
	require.NoError(t, reg.AddPath(typ, "value"))
	assert.True(t, reg.IsValidPath(typ, "VALUE"))
}

func TestBuildRegistryMigrates(t *testing.T) {
	b := builder.New()
	cfg := config.DefaultConfig()
	cat := b.BuildCatalog(cfg, nil)
	prev, err := b.BuildRegistry(cfg, cat, nil)
	require.NoError(t, err)

	typ, err := cat.TypeOf(reflect.TypeFor[plain]())
	require.NoError(t, err)
	require.NoError(t, prev.AddPath(typ, "value"))
	require.NoError(t, prev.AddPath(typ, "hidden"))

	// Without unexported fields "hidden" no longer resolves.
	ncfg := config.NewConfig(config.WithIncludeUnexported(false))
	ncat := b.BuildCatalog(ncfg, cat)
	reg, err := b.BuildRegistry(ncfg, ncat, prev)
	require.Error(t, err)
	assert.ErrorIs(t, err, errdefs.ErrMemberNotFound)
	assert.Len(t, multierr.Errors(err), 1)

	ntyp, err := ncat.TypeOf(reflect.TypeFor[plain]())
	require.NoError(t, err)
	assert.NotEqual(t, typ.ID(), ntyp.ID())
	assert.Equal(t, []string{"value"}, reg.Paths(ntyp))
	assert.Empty(t, reg.Paths(typ), "registrations follow the new descriptions")
}

// TestBuildCatalogConcurrency hammers a built catalog from many goroutines.
func TestBuildCatalogConcurrency(t *testing.T) {
	cat := builder.New().BuildCatalog(config.DefaultConfig(), nil)
	types := []reflect.Type{
		reflect.TypeFor[plain](),
		reflect.TypeFor[*plain](),
		reflect.TypeFor[declared](),
		reflect.TypeFor[[]plain](),
	}

	workers := runtime.GOMAXPROCS(0) * 4
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				if _, err := cat.TypeOf(types[(i+id)%len(types)]); err != nil {
					t.Errorf("TypeOf: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	a, _ := cat.TypeOf(reflect.TypeFor[plain]())
	b, _ := cat.TypeOf(reflect.TypeFor[*plain]())
	assert.Same(t, a, b)
	assert.Equal(t, 3, cat.Count())
}

// Compile-time check: builder.New() must satisfy apis.Builder.
var _ apis.Builder = builder.New()
