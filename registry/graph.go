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
	"strconv"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
)

// node is a class vertex of the inheritance graph.
type node struct {
	id   int64
	name string
}

// Ensure node implements graph.Node and carries DOT attributes.
var (
	_ graph.Node          = node{}
	_ encoding.Attributer = node{}
)

func (n node) ID() int64 { return n.id }

// Attributes labels the vertex with the canonical class name.
func (n node) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: strconv.Quote(n.name)}}
}

// edge links a base to a derived class. Interface edges are drawn dashed.
type edge struct {
	from, to   node
	implements bool
}

var (
	_ graph.Edge          = edge{}
	_ encoding.Attributer = edge{}
)

func (e edge) From() graph.Node { return e.from }
func (e edge) To() graph.Node   { return e.to }

func (e edge) ReversedEdge() graph.Edge {
	return edge{from: e.to, to: e.from, implements: e.implements}
}

func (e edge) Attributes() []encoding.Attribute {
	if e.implements {
		return []encoding.Attribute{{Key: "style", Value: "dashed"}}
	}
	return nil
}
