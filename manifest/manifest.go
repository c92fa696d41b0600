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

// Package manifest loads lists of paths to register per root type.
//
//	types:
//	  - type: demo.A
//	    paths: ["b.c[0].d.value", "b.c[0].value"]
//
// Type names are display names as reported by the catalog. A type must have
// been described (for example through a first TypeOf) before a manifest
// naming it is applied. Display names use the last element of the package
// path, which depends on the build context: a type of package main is
// "main.T" in a built binary and "<dir>.T" in its tests. Derive names with
// utils/reflect.DisplayName when the manifest is built in code.
package manifest

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"go.uber.org/multierr"

	"dirpx.dev/pathx/apis"
	"dirpx.dev/pathx/errdefs"
	"dirpx.dev/pathx/path"
)

var (
	// ErrEmptyData is returned when a manifest document is empty.
	ErrEmptyData = errors.New("pathx(manifest): empty data")
	// ErrEmptyTypeName is returned for an entry without a type name.
	ErrEmptyTypeName = errors.New("pathx(manifest): empty type name")
)

// Manifest is the parsed form of a manifest document.
type Manifest struct {
	Types []Entry `yaml:"types"`
}

// Entry lists the paths of one root type.
type Entry struct {
	Type  string   `yaml:"type"`
	Paths []string `yaml:"paths"`
}

// Validate checks type names and path syntax. Every problem is reported.
func (m *Manifest) Validate() error {
	var errs error
	for i, e := range m.Types {
		if e.Type == "" {
			errs = multierr.Append(errs, fmt.Errorf("types[%d]: %w", i, ErrEmptyTypeName))
			continue
		}
		for _, p := range e.Paths {
			if _, err := path.Parse(p); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", e.Type, err))
			}
		}
	}
	return errs
}

// Len returns the number of paths listed.
func (m *Manifest) Len() int {
	n := 0
	for _, e := range m.Types {
		n += len(e.Paths)
	}
	return n
}

// Apply registers every listed path in reg, resolving type names through
// cat. It keeps going after a failure and returns all failures combined.
func (m *Manifest) Apply(reg apis.Registry, cat apis.Catalog) error {
	var errs error
	for _, e := range m.Types {
		t, ok := cat.Lookup(e.Type)
		if !ok {
			errs = multierr.Append(errs, errdefs.Newf(errdefs.KindUnknownType, e.Type, "type %s is not described or is ambiguous", e.Type))
			continue
		}
		for _, p := range e.Paths {
			if err := reg.AddPath(t, p); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", e.Type, err))
			}
		}
	}
	return errs
}

// Load parses and validates a YAML manifest. Unknown keys are rejected.
func Load(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	var m Manifest
	if err := yaml.UnmarshalWithOptions(data, &m, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("pathx(manifest): unmarshal error: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile reads and loads the manifest at name.
func LoadFile(name string) (*Manifest, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("pathx(manifest): reading %s: %w", name, err)
	}
	return Load(data)
}
