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

// Package trie keeps the registered paths of one root type.
//
// A Node is bound to the type its path prefix reaches. Children are keyed by
// the case-folded member name only: index values are data, so b.c[0].d and
// b.c[7].d share one node. A node remembers whether its segment was indexed
// and with which index kind; a registration that disagrees is rejected.
// Nodes are pointers: a child mutated during recursive construction is the
// child its parent holds.
//
// Nodes are not safe for concurrent use; registry serializes access.
package trie

import (
	"slices"
	"strings"

	"dirpx.dev/pathx/errdefs"
	"dirpx.dev/pathx/path"
	"dirpx.dev/pathx/schema"
)

// Node is one (type, path prefix) pair of a registration trie.
type Node struct {
	typ      *schema.Type
	seg      path.Segment
	children map[string]*Node
	endpoint bool
}

// NewRoot creates the root node of t.
func NewRoot(t *schema.Type) *Node {
	return &Node{typ: t}
}

// Type returns the type bound to n.
func (n *Node) Type() *schema.Type { return n.typ }

// Segment returns the segment leading to n, as first registered. It is zero
// for roots.
func (n *Node) Segment() path.Segment { return n.seg }

// IsEndpoint reports whether the path ending at n was registered.
func (n *Node) IsEndpoint() bool { return n.endpoint }

// Child returns the child reached by seg. The index value is ignored, its
// kind must match.
func (n *Node) Child(seg path.Segment) (*Node, bool) {
	c, ok := n.children[segKey(seg)]
	if !ok || c.seg.Index.Kind != seg.Index.Kind {
		return nil, false
	}
	return c, true
}

// AddPath registers p below n. Every step is resolved first; a path that does
// not resolve, or that indexes a member the trie holds unindexed (or the
// other way round), leaves the trie unchanged and returns the typed error.
func (n *Node) AddPath(p path.Path) error {
	steps, err := ResolvePath(n.typ, p)
	if err != nil {
		return err
	}
	if err := n.conflict(steps); err != nil {
		return errdefs.WithPath(err, p.String())
	}
	cur := n
	for _, st := range steps {
		k := segKey(st.Segment)
		c, ok := cur.children[k]
		if !ok {
			c = &Node{seg: st.Segment}
			if cur.children == nil {
				cur.children = make(map[string]*Node)
			}
			cur.children[k] = c
		}
		// Rebinding follows the live description after drift.
		c.typ = st.Type
		cur = c
	}
	cur.endpoint = true
	return nil
}

// conflict walks the existing nodes along steps and reports the first one
// whose index kind differs from the step's segment.
func (n *Node) conflict(steps []Step) error {
	cur := n
	for _, st := range steps {
		c, ok := cur.children[segKey(st.Segment)]
		if !ok {
			return nil
		}
		if have, want := c.seg.Index.Kind, st.Segment.Index.Kind; have != want {
			return errdefs.Newf(errdefs.KindUnsupportedIndexer, cur.typ.Name(),
				"member %s is registered with %s index, not %s", st.Member.Name, have, want)
		}
		cur = c
	}
	return nil
}

// RemovePath unregisters p and prunes, on the way back up, every child that
// is no longer valid. It reports whether p was registered.
func (n *Node) RemovePath(p path.Path) bool {
	if len(p) == 0 {
		was := n.endpoint
		n.endpoint = false
		return was
	}
	k := segKey(p[0])
	c, ok := n.Child(p[0])
	if !ok {
		return false
	}
	removed := c.RemovePath(p[1:])
	if !n.holds(c) {
		delete(n.children, k)
	}
	return removed
}

// IsValidPath reports whether p is present below n and ends at an endpoint.
// A registered prefix of a longer path is not valid unless it was registered
// itself.
func (n *Node) IsValidPath(p path.Path) bool {
	if len(p) == 0 {
		return false
	}
	cur := n
	for _, seg := range p {
		c, ok := cur.Child(seg)
		if !ok {
			return false
		}
		cur = c
	}
	return cur.endpoint
}

// IsValid reports whether n must be retained: it is an endpoint, or one of
// its children still resolves on the live description of n's type and is
// valid itself.
func (n *Node) IsValid() bool {
	if n.endpoint {
		return true
	}
	for _, c := range n.children {
		if n.holds(c) {
			return true
		}
	}
	return false
}

// holds reports whether child c is still reachable from n and valid.
func (n *Node) holds(c *Node) bool {
	return n.reaches(c) && c.IsValid()
}

// reaches reports whether c's segment still resolves on n's live type to the
// type c is bound to.
func (n *Node) reaches(c *Node) bool {
	st, err := Resolve(n.typ, c.seg)
	return err == nil && st.Type == c.typ
}

// Prune removes every subtree that no longer resolves or holds no endpoint.
// It returns the number of nodes removed.
func (n *Node) Prune() int {
	removed := 0
	for k, c := range n.children {
		if !n.reaches(c) {
			removed += c.Len()
			delete(n.children, k)
			continue
		}
		removed += c.Prune()
		if !c.IsValid() {
			removed += c.Len()
			delete(n.children, k)
		}
	}
	return removed
}

// Endpoints returns the normalized text of every path shape registered below
// n, sorted. Indexed segments carry the index they were first registered
// with.
func (n *Node) Endpoints() []string {
	var out []string
	var walk func(*Node, path.Path)
	walk = func(c *Node, prefix path.Path) {
		if c.endpoint && len(prefix) > 0 {
			out = append(out, prefix.Key())
		}
		for _, gc := range c.children {
			walk(gc, append(prefix[:len(prefix):len(prefix)], gc.seg))
		}
	}
	walk(n, nil)
	slices.Sort(out)
	return out
}

// Len returns the number of nodes in the subtree rooted at n, n included.
func (n *Node) Len() int {
	total := 1
	for _, c := range n.children {
		total += c.Len()
	}
	return total
}

func segKey(seg path.Segment) string {
	return strings.ToLower(seg.Name)
}
