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

package registry

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"dirpx.dev/dos/apis"
)

var (
	// ErrNilClass is returned when a nil class is provided.
	ErrNilClass = errors.New("dos(registry): nil class provided")
	// ErrEmptyName is returned when a class has an empty canonical name.
	ErrEmptyName = errors.New("dos(registry): empty class name")
)

// New constructs an empty, append-only class Registry.
func New(_ apis.Config) apis.Registry {
	return &registry{
		byName: make(map[string]apis.ClassNode),
		byID:   make(map[int64]struct{}),
		g:      simple.NewDirectedGraph(),
	}
}

// registry keeps classes in definition order plus a directed graph whose
// edges run from a base (superclass or interface) to the class deriving from it.
type registry struct {
	// order holds classes in definition order.
	order []apis.ClassNode
	// byName maps canonical names to the first class registered under them.
	byName map[string]apis.ClassNode
	// byID holds the registered node IDs.
	byID map[int64]struct{}
	// g is the inheritance graph.
	g *simple.DirectedGraph
}

// Register appends c and links it to its bases.
// Re-registering the same class is a no-op. Classes defined in separate
// root modules may share a canonical name.
func (r *registry) Register(c apis.ClassNode) error {
	if c == nil {
		return ErrNilClass
	}
	name := c.EntityName()
	if name == "" {
		return ErrEmptyName
	}
	if _, ok := r.byID[c.NodeID()]; ok {
		return nil
	}

	r.order = append(r.order, c)
	r.byID[c.NodeID()] = struct{}{}
	if _, ok := r.byName[name]; !ok {
		r.byName[name] = c
	}

	n := r.node(c)
	for i, base := range c.BaseNodes() {
		if base == nil || base.NodeID() == c.NodeID() {
			continue
		}
		r.g.SetEdge(edge{from: r.node(base), to: n, implements: i > 0 || base.IsInterface()})
	}
	return nil
}

// node returns the graph node of c, adding it if needed.
func (r *registry) node(c apis.ClassNode) node {
	if existing := r.g.Node(c.NodeID()); existing != nil {
		return existing.(node)
	}
	n := node{id: c.NodeID(), name: c.EntityName()}
	r.g.AddNode(n)
	return n
}

// Lookup returns the first class registered under a canonical name.
func (r *registry) Lookup(name string) (apis.ClassNode, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Entries returns a snapshot in definition order.
func (r *registry) Entries() []apis.ClassNode {
	out := make([]apis.ClassNode, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of registered classes.
func (r *registry) Count() int {
	return len(r.order)
}

// DescendantsOf scans the registry for classes having c in their ancestor chain.
func (r *registry) DescendantsOf(c apis.ClassNode) []apis.ClassNode {
	return r.filter(c, func(x apis.ClassNode) bool { return x.InstanceOfNode(c) })
}

// ImplementorsOf scans the registry for classes listing c at any ancestor level.
func (r *registry) ImplementorsOf(c apis.ClassNode) []apis.ClassNode {
	return r.filter(c, func(x apis.ClassNode) bool { return x.ImplementsNode(c) })
}

func (r *registry) filter(self apis.ClassNode, keep func(apis.ClassNode) bool) []apis.ClassNode {
	if self == nil {
		return nil
	}
	var out []apis.ClassNode
	for _, x := range r.order {
		if x.NodeID() != self.NodeID() && keep(x) {
			out = append(out, x)
		}
	}
	return out
}

// Sorted returns the classes topologically ordered, bases first.
func (r *registry) Sorted() ([]apis.ClassNode, error) {
	nodes, err := topo.Sort(r.g)
	if err != nil {
		return nil, fmt.Errorf("dos(registry): sort class graph: %w", err)
	}
	byID := make(map[int64]apis.ClassNode, len(r.order))
	for _, c := range r.order {
		byID[c.NodeID()] = c
	}
	out := make([]apis.ClassNode, 0, len(nodes))
	for _, n := range nodes {
		// Bases that were never registered (static sections) are skipped.
		if c, ok := byID[n.ID()]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// MarshalDOT renders the class graph in Graphviz DOT format.
func (r *registry) MarshalDOT(name string) ([]byte, error) {
	return dot.Marshal(r.g, name, "", "  ")
}
