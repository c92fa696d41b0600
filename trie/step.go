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

package trie

import (
	"strings"

	"dirpx.dev/pathx/errdefs"
	"dirpx.dev/pathx/path"
	"dirpx.dev/pathx/schema"
)

// Step is one segment resolved against a type description.
type Step struct {
	// Segment is the path segment the step was resolved from.
	Segment path.Segment
	// Owner is the type the member was looked up on.
	Owner *schema.Type
	// Member is the property or field the segment names.
	Member *schema.Member
	// MemberType is the navigation type of the member's value.
	MemberType *schema.Type
	// Indexer is the indexer applied to the member's value, nil when the
	// segment carries no index.
	Indexer *schema.Indexer
	// Type is the type reached by the step: the indexer's element type for
	// indexed segments, MemberType otherwise.
	Type *schema.Type
}

// Indexed reports whether the step applies an indexer.
func (s Step) Indexed() bool { return s.Indexer != nil }

// Resolve resolves seg against t. The member is looked up case-insensitively,
// properties before fields. An indexed segment then needs an indexer of the
// segment's index kind on the member's type.
func Resolve(t *schema.Type, seg path.Segment) (Step, error) {
	m, ok := t.Member(seg.Name)
	if !ok {
		return Step{}, errdefs.Newf(errdefs.KindMemberNotFound, t.Name(), "no property or field %q", seg.Name)
	}
	mt, err := t.MemberType(m)
	if err != nil {
		return Step{}, &errdefs.Error{Kind: errdefs.KindUnknownType, Type: t.Name(), Offset: -1, Msg: "member " + m.Name, Err: err}
	}
	st := Step{Segment: seg, Owner: t, Member: m, MemberType: mt, Type: mt}
	if !seg.HasIndex() {
		return st, nil
	}

	ix, ok := mt.Indexer(seg.Index.Kind)
	if !ok {
		return Step{}, unsupported(mt, seg)
	}
	et, err := mt.ElemType(ix)
	if err != nil {
		return Step{}, &errdefs.Error{Kind: errdefs.KindUnknownType, Type: mt.Name(), Offset: -1, Msg: "element of " + m.Name, Err: err}
	}
	st.Indexer = ix
	st.Type = et
	return st, nil
}

func unsupported(mt *schema.Type, seg path.Segment) error {
	have := mt.Indexers()
	if len(have) == 0 {
		return errdefs.Newf(errdefs.KindUnsupportedIndexer, mt.Name(), "member %s is not indexable", seg.Name)
	}
	kinds := make([]string, len(have))
	for i, ix := range have {
		kinds[i] = ix.Key.String()
	}
	return errdefs.Newf(errdefs.KindUnsupportedIndexer, mt.Name(),
		"member %s takes %s indices, not %s", seg.Name, strings.Join(kinds, " or "), seg.Index.Kind)
}

// ResolvePath resolves every segment of p starting at t. Errors carry the
// path text.
func ResolvePath(t *schema.Type, p path.Path) ([]Step, error) {
	if t == nil {
		return nil, errdefs.WithPath(errdefs.New(errdefs.KindUnknownType, "", "nil root type"), p.String())
	}
	steps := make([]Step, 0, len(p))
	cur := t
	for _, seg := range p {
		st, err := Resolve(cur, seg)
		if err != nil {
			return nil, errdefs.WithPath(err, p.String())
		}
		steps = append(steps, st)
		cur = st.Type
	}
	return steps, nil
}

// ValidatePathStructure re-derives every step of p from the live description
// of start, without consulting or changing any trie. It returns nil when p
// still resolves, the typed resolution error otherwise.
func ValidatePathStructure(p path.Path, start *schema.Type) error {
	_, err := ResolvePath(start, p)
	return err
}
