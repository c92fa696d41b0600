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

// Package errdefs defines the error kinds reported by pathx.
//
// Every failure surfaced by the parser, the trie, the accessor compiler and
// the compiled accessors themselves is an *Error carrying a Kind. Callers
// match kinds with errors.Is against the exported sentinels:
//
//	if errors.Is(err, errdefs.ErrNotWritable) { ... }
//
// or extract the kind with KindOf.
package errdefs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a pathx failure.
type Kind uint8

const (
	// KindUnknown is reported by KindOf for errors that did not originate in pathx.
	KindUnknown Kind = iota
	// KindSyntax is malformed path text.
	KindSyntax
	// KindMemberNotFound is a segment name that does not resolve on the current type.
	KindMemberNotFound
	// KindUnsupportedIndexer is an index used against a type without a matching indexer.
	KindUnsupportedIndexer
	// KindNotWritable is a setter requested against a member that cannot be assigned.
	KindNotWritable
	// KindTypeMismatch is a value or target that cannot be narrowed to the expected type.
	KindTypeMismatch
	// KindUnknownType is a resolution against a root type with no registered paths.
	KindUnknownType
	// KindOutOfRange is an index outside a sequence, or a key absent from a map.
	KindOutOfRange
	// KindNilTraversal is a nil pointer or map met while walking a chain.
	KindNilTraversal
)

var (
	// ErrSyntax matches errors of KindSyntax.
	ErrSyntax = errors.New("pathx: syntax error")
	// ErrMemberNotFound matches errors of KindMemberNotFound.
	ErrMemberNotFound = errors.New("pathx: member not found")
	// ErrUnsupportedIndexer matches errors of KindUnsupportedIndexer.
	ErrUnsupportedIndexer = errors.New("pathx: unsupported indexer")
	// ErrNotWritable matches errors of KindNotWritable.
	ErrNotWritable = errors.New("pathx: member not writable")
	// ErrTypeMismatch matches errors of KindTypeMismatch.
	ErrTypeMismatch = errors.New("pathx: type mismatch")
	// ErrUnknownType matches errors of KindUnknownType.
	ErrUnknownType = errors.New("pathx: unknown root type")
	// ErrOutOfRange matches errors of KindOutOfRange.
	ErrOutOfRange = errors.New("pathx: index out of range")
	// ErrNilTraversal matches errors of KindNilTraversal.
	ErrNilTraversal = errors.New("pathx: nil in access chain")
)

var sentinels = [...]error{
	KindUnknown:            nil,
	KindSyntax:             ErrSyntax,
	KindMemberNotFound:     ErrMemberNotFound,
	KindUnsupportedIndexer: ErrUnsupportedIndexer,
	KindNotWritable:        ErrNotWritable,
	KindTypeMismatch:       ErrTypeMismatch,
	KindUnknownType:        ErrUnknownType,
	KindOutOfRange:         ErrOutOfRange,
	KindNilTraversal:       ErrNilTraversal,
}

// String returns the short, stable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax-error"
	case KindMemberNotFound:
		return "member-not-found"
	case KindUnsupportedIndexer:
		return "unsupported-indexer"
	case KindNotWritable:
		return "not-writable"
	case KindTypeMismatch:
		return "type-mismatch"
	case KindUnknownType:
		return "unknown-type"
	case KindOutOfRange:
		return "out-of-range"
	case KindNilTraversal:
		return "nil-traversal"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// Sentinel returns the sentinel error matching k, or nil for KindUnknown.
func (k Kind) Sentinel() error {
	if int(k) < len(sentinels) {
		return sentinels[k]
	}
	return nil
}

// Error is a typed pathx failure.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Type is the display name of the type the failure was detected on, if any.
	Type string
	// Path is the path text being processed, if any.
	Path string
	// Offset is the byte offset into Path for syntax errors, -1 otherwise.
	Offset int
	// Msg is a human-readable detail.
	Msg string
	// Err is an optional underlying cause.
	Err error
}

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("pathx: ")
	b.WriteString(e.Kind.String())
	if e.Path != "" {
		fmt.Fprintf(&b, " in %q", e.Path)
		if e.Offset >= 0 {
			fmt.Fprintf(&b, " at offset %d", e.Offset)
		}
	}
	if e.Type != "" {
		fmt.Fprintf(&b, " on %s", e.Type)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.Sentinel()
	return s != nil && s == target
}

// WithPath returns a copy of e annotated with the path text, keeping an
// already recorded path.
func (e *Error) WithPath(p string) *Error {
	c := *e
	if c.Path == "" {
		c.Path = p
	}
	return &c
}

// New constructs an *Error of kind k. Offset is set to -1.
func New(k Kind, typ, msg string) *Error {
	return &Error{Kind: k, Type: typ, Offset: -1, Msg: msg}
}

// Newf is New with a formatted message.
func Newf(k Kind, typ, format string, args ...any) *Error {
	return New(k, typ, fmt.Sprintf(format, args...))
}

// Syntax constructs a KindSyntax error at offset off of path p.
func Syntax(p string, off int, msg string) *Error {
	return &Error{Kind: KindSyntax, Path: p, Offset: off, Msg: msg}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// WithPath annotates err with path text p. An *Error is copied with the path
// set; an *Error wrapped by other errors gets an outer *Error of the same
// kind, so the wrapping context stays in the chain. Errors without an *Error
// and errors that already carry a path are returned unchanged.
func WithPath(err error, p string) error {
	var e *Error
	if err == nil || !errors.As(err, &e) || e.Path != "" {
		return err
	}
	if direct, ok := err.(*Error); ok {
		return direct.WithPath(p)
	}
	return &Error{Kind: e.Kind, Type: e.Type, Path: p, Offset: -1, Err: err}
}
