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

// Command pathx-demo registers a path on a small type graph, compiles a
// setter and a getter for a sibling path and round-trips two values
// through them.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"reflect"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"dirpx.dev/pathx"
	"dirpx.dev/pathx/fxpathx"
	"dirpx.dev/pathx/logging"
	"dirpx.dev/pathx/manifest"
	uref "dirpx.dev/pathx/utils/reflect"
)

type A struct{ B B }

type B struct{ C []C }

type C struct {
	D     D
	Value int
}

type D struct{ Value int }

func main() {
	cfgFile := flag.String("config", "", "YAML configuration file")
	level := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	if err := run(context.Background(), os.Stdout, *cfgFile, *level); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, cfgFile, level string) error {
	logger := logging.NewLogger(logging.LoggerConfig{Level: level}, os.Stderr)

	opts := []fx.Option{
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		fx.Supply(logger),
		fxpathx.NewModule(),
		fxpathx.Type[A](),
		fxpathx.Manifest(demoManifest()),
	}
	if cfgFile != "" {
		opts = append(opts, fxpathx.ConfigFile(cfgFile))
	}

	var e *pathx.Engine
	app := fx.New(append(opts, fx.Populate(&e))...)
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start app: %w", err)
	}
	defer func() {
		if err := app.Stop(ctx); err != nil {
			logger.Error("failed to stop app", "error", err)
		}
	}()

	return scenario(e, out)
}

// demoManifest registers b.c[0].d.value on A. The display name of A depends
// on how the binary was built ("main.A", or "pathx-demo.A" under go test),
// so it is derived from the type.
func demoManifest() *manifest.Manifest {
	return &manifest.Manifest{Types: []manifest.Entry{
		{Type: uref.DisplayName(reflect.TypeFor[A]()), Paths: []string{"b.c[0].d.value"}},
	}}
}

func scenario(e *pathx.Engine, out io.Writer) error {
	a := &A{B: B{C: []C{{}}}}
	for _, v := range []int{1000, 5000} {
		if err := pathx.Set(e, a, "b.c[0].value", v); err != nil {
			return err
		}
		got, err := pathx.Get[int](e, a, "b.c[0].value")
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "set %d, got %d\n", v, got)
	}

	t, err := e.TypeOf(reflect.TypeFor[A]())
	if err != nil {
		return err
	}
	st := e.Registry().Stats()
	fmt.Fprintf(out, "registered: %v\n", e.Registry().Paths(t))
	fmt.Fprintf(out, "cached: %d, compiles: %d, hits: %d\n", st.Cached, st.Compiles, st.Hits)
	return nil
}
