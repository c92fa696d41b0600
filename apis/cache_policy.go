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

package apis

import (
	"fmt"
	"strings"
)

// CachePolicy controls whether a Registry retains compiled accessors.
//
//   - Memo: the first successful compilation for a (type, path) pair is kept
//     until it is invalidated, pruned or the registry is reset.
//   - None: nothing is retained; every resolution compiles.
//
// None is meant for tests and for comparing behavior with and without
// caching. Adding values is allowed; existing values keep their meaning.
type CachePolicy int

const (
	// Memo memoizes compiled accessors. It is the zero value.
	Memo CachePolicy = iota
	// None disables accessor caching.
	None
)

// String returns the canonical token of p, or "Unknown(<n>)" for values
// outside the enumeration.
func (p CachePolicy) String() string {
	switch p {
	case Memo:
		return "memo"
	case None:
		return "none"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ParseCachePolicy parses a cache policy token case-insensitively.
// Surrounding whitespace is ignored. On failure it returns Memo and an error.
func ParseCachePolicy(s string) (CachePolicy, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Memo, fmt.Errorf("pathx(apis): empty cache policy")
	}
	switch strings.ToLower(trimmed) {
	case "memo":
		return Memo, nil
	case "none":
		return None, nil
	default:
		return Memo, fmt.Errorf("pathx(apis): unknown cache policy %q", s)
	}
}

// MustParseCachePolicy is like ParseCachePolicy but panics on invalid input.
func MustParseCachePolicy(s string) CachePolicy {
	p, err := ParseCachePolicy(s)
	if err != nil {
		panic(err)
	}
	return p
}

// MarshalText implements encoding.TextMarshaler. Unknown values are an
// error rather than a persisted "Unknown(...)" token.
func (p CachePolicy) MarshalText() ([]byte, error) {
	switch p {
	case Memo, None:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("pathx(apis): cannot marshal unknown cache policy %d", int(p))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler. On failure *p is left
// unchanged.
func (p *CachePolicy) UnmarshalText(text []byte) error {
	v, err := ParseCachePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
