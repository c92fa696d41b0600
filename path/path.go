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

// Package path parses member/index access paths.
//
// Grammar:
//
//	path       := segment ('.' segment)*
//	segment    := identifier index?
//	identifier := [A-Za-z0-9_]+
//	index      := '[' token ']'
//
// A token that parses as a signed base-10 integer is an integer index;
// anything else is kept verbatim as a string key. Identifiers match
// case-insensitively everywhere in pathx; keys are data and keep their case.
package path

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"dirpx.dev/pathx/errdefs"
)

// IndexKind tells whether a segment carries an index and of which kind.
type IndexKind uint8

const (
	// NoIndex is a plain member access.
	NoIndex IndexKind = iota
	// IntIndex is an integer index, e.g. "c[0]".
	IntIndex
	// KeyIndex is a string key, e.g. "m[name]".
	KeyIndex
)

// String returns a short name of the kind.
func (k IndexKind) String() string {
	switch k {
	case NoIndex:
		return "none"
	case IntIndex:
		return "int"
	case KeyIndex:
		return "key"
	default:
		return "Unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// Index is the optional index descriptor of a Segment.
type Index struct {
	// Kind selects which of Int or Key is meaningful.
	Kind IndexKind
	// Int is the integer index when Kind == IntIndex.
	Int int64
	// Key is the string key when Kind == KeyIndex.
	Key string
}

// Segment is one step of a path: a member name plus an optional index.
type Segment struct {
	Name  string
	Index Index
}

// HasIndex reports whether s carries an index.
func (s Segment) HasIndex() bool { return s.Index.Kind != NoIndex }

// String returns the textual form of s with its name as written.
func (s Segment) String() string {
	var b strings.Builder
	s.write(&b, false)
	return b.String()
}

func (s Segment) write(b *strings.Builder, fold bool) {
	if fold {
		b.WriteString(strings.ToLower(s.Name))
	} else {
		b.WriteString(s.Name)
	}
	switch s.Index.Kind {
	case IntIndex:
		b.WriteByte('[')
		b.WriteString(strconv.FormatInt(s.Index.Int, 10))
		b.WriteByte(']')
	case KeyIndex:
		b.WriteByte('[')
		b.WriteString(s.Index.Key)
		b.WriteByte(']')
	}
}

// Path is an ordered, non-empty sequence of segments.
type Path []Segment

// String returns the textual form of p with names as written.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		s.write(&b, false)
	}
	return b.String()
}

// Key returns the normalized text of p: names lower-cased, integer indices in
// canonical form, string keys verbatim. Two paths with the same Key are the
// same path.
func (p Path) Key() string {
	var b strings.Builder
	for i, s := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		s.write(&b, true)
	}
	return b.String()
}

// Equal reports whether p and q address the same chain.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if !strings.EqualFold(p[i].Name, q[i].Name) || p[i].Index != q[i].Index {
			return false
		}
	}
	return true
}

// Parse parses text into a Path. Malformed input yields an *errdefs.Error of
// kind KindSyntax carrying the offset of the failure.
//
// Parse keeps all working state local to the call and is safe for
// concurrent use.
func Parse(text string) (Path, error) {
	if text == "" {
		return nil, errdefs.Syntax(text, 0, "empty path")
	}
	segs := make(Path, 0, strings.Count(text, ".")+1)
	i := 0
	for {
		start := i
		for i < len(text) && isIdentByte(text[i]) {
			i++
		}
		if i == start {
			if i < len(text) {
				return nil, errdefs.Syntax(text, i, "expected identifier, found "+found(text, i))
			}
			return nil, errdefs.Syntax(text, i, "expected identifier, found end of path")
		}
		seg := Segment{Name: text[start:i]}

		if i < len(text) && text[i] == '[' {
			open := i
			i++
			end := strings.IndexByte(text[i:], ']')
			if end < 0 {
				return nil, errdefs.Syntax(text, open, "unterminated index")
			}
			tok := text[i : i+end]
			if tok == "" {
				return nil, errdefs.Syntax(text, open, "empty index")
			}
			if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
				seg.Index = Index{Kind: IntIndex, Int: n}
			} else {
				seg.Index = Index{Kind: KeyIndex, Key: tok}
			}
			i += end + 1
		}
		segs = append(segs, seg)

		if i == len(text) {
			return segs, nil
		}
		if text[i] != '.' {
			return nil, errdefs.Syntax(text, i, "expected '.', found "+found(text, i))
		}
		i++
	}
}

// MustParse is like Parse but panics on invalid input.
// Intended for hard-coded paths in tests and initialization code.
func MustParse(text string) Path {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// Normalize parses text and returns its Key.
func Normalize(text string) (string, error) {
	p, err := Parse(text)
	if err != nil {
		return "", err
	}
	return p.Key(), nil
}

// found quotes the character starting at byte offset i.
func found(text string, i int) string {
	r, _ := utf8.DecodeRuneInString(text[i:])
	return strconv.QuoteRune(r)
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
