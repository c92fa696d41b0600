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

// Package fxpathx provides a pathx.Engine to Fx applications.
//
// The module builds the Engine from an optional *config.File and
// *slog.Logger found in the container. On start it describes the root types
// contributed with Type and registers the paths of every manifest
// contributed with Manifest or named by the config file. A manifest that
// does not apply fails the start.
package fxpathx

import (
	"context"
	"log/slog"
	"reflect"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"dirpx.dev/pathx"
	"dirpx.dev/pathx/config"
	"dirpx.dev/pathx/manifest"
)

const (
	typesGroup     = `group:"pathx.types"`
	manifestsGroup = `group:"pathx.manifests"`
)

// Params are the dependencies of NewEngine.
type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *slog.Logger         `optional:"true"`
	File      *config.File         `optional:"true"`
	Types     []reflect.Type       `group:"pathx.types"`
	Manifests []*manifest.Manifest `group:"pathx.manifests"`
}

// NewModule returns the Fx module providing *pathx.Engine.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func NewModule() fx.Option {
	return fx.Module("pathx", fx.Provide(NewEngine))
}

// NewEngine builds an Engine and hooks type description and manifest
// registration into the start of the application.
func NewEngine(p Params) (*pathx.Engine, error) {
	cfg := config.DefaultConfig()
	var manifests []*manifest.Manifest
	if p.File != nil {
		cfg = p.File.Config()
		if p.File.Manifest != "" {
			m, err := manifest.LoadFile(p.File.Manifest)
			if err != nil {
				return nil, err
			}
			manifests = append(manifests, m)
		}
	}
	manifests = append(manifests, p.Manifests...)

	e := pathx.New(pathx.WithConfig(cfg), pathx.WithLogger(p.Logger))
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var errs error
			for _, rt := range p.Types {
				_, err := e.TypeOf(rt)
				errs = multierr.Append(errs, err)
			}
			if errs != nil {
				return errs
			}
			for _, m := range manifests {
				errs = multierr.Append(errs, e.ApplyManifest(m))
			}
			if errs == nil && p.Logger != nil {
				p.Logger.Info("pathx ready", "types", len(p.Types), "manifests", len(manifests))
			}
			return errs
		},
	})
	return e, nil
}

// Type contributes T as a root type described when the application starts.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func Type[T any]() fx.Option {
	return fx.Provide(fx.Annotate(
		func() reflect.Type { return reflect.TypeFor[T]() },
		fx.ResultTags(typesGroup),
	))
}

// Manifest contributes m to be applied when the application starts.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func Manifest(m *manifest.Manifest) fx.Option {
	return fx.Provide(fx.Annotate(
		func() *manifest.Manifest { return m },
		fx.ResultTags(manifestsGroup),
	))
}

// ConfigFile loads the YAML configuration at name and supplies it.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func ConfigFile(name string) fx.Option {
	f, err := config.LoadFile(name)
	if err != nil {
		return fx.Error(err)
	}
	return fx.Supply(f)
}
