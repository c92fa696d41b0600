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
	"dirpx.dev/pathx/apis"
)

const (
	// DefaultCachePolicy represents the default for CachePolicy.
	DefaultCachePolicy = apis.Memo
	// DefaultMaxUnwrap represents the default for MaxUnwrap.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxUnwrap = 8
	// DefaultIncludeUnexported represents the default for IncludeUnexported.
	// Unexported fields are addressable by path.
	DefaultIncludeUnexported = true
	// DefaultWriteUnexported represents the default for WriteUnexported.
	// Included unexported fields are assignable like exported ones; tags mark
	// read-only and constant fields.
	DefaultWriteUnexported = true
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure MaxUnwrap is valid.
	if cfg.MaxUnwrap < 0 {
		cfg.MaxUnwrap = DefaultMaxUnwrap
	}
	// Writes only apply to fields that are included.
	if !cfg.IncludeUnexported {
		cfg.WriteUnexported = false
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		CachePolicy:       DefaultCachePolicy,
		MaxUnwrap:         DefaultMaxUnwrap,
		IncludeUnexported: DefaultIncludeUnexported,
		WriteUnexported:   DefaultWriteUnexported,
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithCachePolicy sets the CachePolicy option.
func WithCachePolicy(p apis.CachePolicy) Option {
	return func(c *apis.Config) {
		c.CachePolicy = p
	}
}

// WithMaxUnwrap sets the MaxUnwrap option.
// A negative value resets to the default.
func WithMaxUnwrap(max int) Option {
	return func(c *apis.Config) {
		if max < 0 {
			c.MaxUnwrap = DefaultMaxUnwrap
			return
		}
		c.MaxUnwrap = max
	}
}

// WithIncludeUnexported sets the IncludeUnexported option.
func WithIncludeUnexported(include bool) Option {
	return func(c *apis.Config) {
		c.IncludeUnexported = include
	}
}

// WithWriteUnexported sets the WriteUnexported option. Enabling it also
// enables IncludeUnexported.
func WithWriteUnexported(write bool) Option {
	return func(c *apis.Config) {
		c.WriteUnexported = write
		if write {
			c.IncludeUnexported = true
		}
	}
}
