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

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"dirpx.dev/pathx/apis"
)

var (
	// ErrEmptyData is returned when a configuration document is empty.
	ErrEmptyData = errors.New("pathx(config): empty data")
	// ErrInvalidMaxUnwrap is returned for a negative maxUnwrap.
	ErrInvalidMaxUnwrap = errors.New("pathx(config): maxUnwrap must not be negative")
	// ErrWriteWithoutInclude is returned when writeUnexported is enabled
	// while includeUnexported is disabled.
	ErrWriteWithoutInclude = errors.New("pathx(config): writeUnexported requires includeUnexported")
	// ErrInvalidLogLevel is returned for an unknown log level.
	ErrInvalidLogLevel = errors.New("pathx(config): invalid log level")
)

// File is the YAML form of the configuration:
//
//	cachePolicy: memo        # memo | none
//	maxUnwrap: 8
//	includeUnexported: true
//	writeUnexported: true
//	logLevel: info
//	manifest: paths.yaml
//
// Absent keys take the package defaults.
type File struct {
	CachePolicy       string `yaml:"cachePolicy"`
	MaxUnwrap         *int   `yaml:"maxUnwrap"`
	IncludeUnexported *bool  `yaml:"includeUnexported"`
	WriteUnexported   *bool  `yaml:"writeUnexported"`
	LogLevel          string `yaml:"logLevel"`
	// Manifest optionally names a manifest file of paths to register.
	Manifest string `yaml:"manifest"`
}

// SetDefaults fills absent keys and reports whether anything changed.
func (f *File) SetDefaults() (changed bool) {
	if f.CachePolicy == "" {
		f.CachePolicy = DefaultCachePolicy.String()
		changed = true
	}
	if f.MaxUnwrap == nil {
		v := DefaultMaxUnwrap
		f.MaxUnwrap = &v
		changed = true
	}
	if f.IncludeUnexported == nil {
		v := DefaultIncludeUnexported
		f.IncludeUnexported = &v
		changed = true
	}
	if f.WriteUnexported == nil {
		v := DefaultWriteUnexported && *f.IncludeUnexported
		f.WriteUnexported = &v
		changed = true
	}
	if f.LogLevel == "" {
		f.LogLevel = "info"
		changed = true
	}
	return changed
}

// Validate checks a defaulted File.
func (f *File) Validate() error {
	if _, err := apis.ParseCachePolicy(f.CachePolicy); err != nil {
		return err
	}
	if f.MaxUnwrap != nil && *f.MaxUnwrap < 0 {
		return ErrInvalidMaxUnwrap
	}
	if f.WriteUnexported != nil && *f.WriteUnexported &&
		f.IncludeUnexported != nil && !*f.IncludeUnexported {
		return ErrWriteWithoutInclude
	}
	switch strings.ToUpper(f.LogLevel) {
	case "", "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, f.LogLevel)
	}
	return nil
}

// Options converts f into construction options. Absent keys produce no option.
func (f *File) Options() []Option {
	var opts []Option
	if p, err := apis.ParseCachePolicy(f.CachePolicy); err == nil {
		opts = append(opts, WithCachePolicy(p))
	}
	if f.MaxUnwrap != nil {
		opts = append(opts, WithMaxUnwrap(*f.MaxUnwrap))
	}
	if f.IncludeUnexported != nil {
		opts = append(opts, WithIncludeUnexported(*f.IncludeUnexported))
	}
	if f.WriteUnexported != nil {
		opts = append(opts, WithWriteUnexported(*f.WriteUnexported))
	}
	return opts
}

// Config returns the apis.Config described by f.
func (f *File) Config() apis.Config {
	return NewConfig(f.Options()...)
}

// Load parses a YAML document, applies defaults and validates it.
// Unknown keys are rejected.
func Load(data []byte) (*File, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	var f File
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("pathx(config): unmarshal error: %w", err)
	}
	f.SetDefaults()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile reads and loads the YAML file at name.
func LoadFile(name string) (*File, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("pathx(config): reading %s: %w", name, err)
	}
	return Load(data)
}
