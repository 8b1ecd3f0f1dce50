// Copyright 2024 The NebulaStream Core Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package planmodel

import (
	"fmt"

	"github.com/google/uuid"
)

// Tree is an arena of Nodes forming a logical plan DAG. Edges are
// recorded as NodeID pairs on both endpoints (Node.Parent/Node.Child);
// there are no owning pointers between nodes, per spec §9.
//
// A Tree is built via AddNode/Connect; nodes are never removed, but
// nothing stops later additions. internal/gqp uses the first query's
// Tree itself as its SQP's merged tree and appends copied nodes to it
// when later queries are merged in.
type Tree struct {
	nodes []Node
	Roots NodeIDSet // sink node ids; a Tree may have more than one during merge construction
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{}
}

// AddNode appends a new node of the given kind to the arena and
// returns its id. The returned Node has no edges yet; use Connect to
// wire it to its inputs.
func (t *Tree) AddNode(kind OpKind) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		ID:   id,
		OpID: uuid.NewString(),
		Kind: kind,
	})
	return id
}

// Connect records that child's output feeds parent (i.e. child is an
// input of parent). Both Node.Child and Node.Parent are updated.
func (t *Tree) Connect(parent, child NodeID) {
	t.nodes[parent].Child = t.nodes[parent].Child.add(child)
	t.nodes[child].Parent = t.nodes[child].Parent.add(parent)
}

// Node returns a pointer to the node with the given id. The pointer
// is valid only until the next AddNode call, which may reallocate the
// underlying slice.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

// Walk visits every node reachable from roots exactly once, calling
// visit on each in a post-order (children before parents) traversal —
// the order signature computation (C2) requires.
func (t *Tree) Walk(roots NodeIDSet, visit func(*Node)) {
	visited := make([]bool, len(t.nodes))
	var walk func(id NodeID)
	walk = func(id NodeID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, c := range t.nodes[id].Child {
			walk(c)
		}
		visit(&t.nodes[id])
	}
	for _, r := range roots {
		walk(r)
	}
}

// Validate checks the DAG invariants from spec §3: every non-source
// node has >=1 child (input), every non-sink node has >=1 parent
// (consumer), and the graph has no cycles.
func (t *Tree) Validate() error {
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.Kind != KindSource && len(n.Child) == 0 {
			return fmt.Errorf("planmodel: node %s (%s) is not a Source but has no children", n.OpID, n.Kind)
		}
		if n.Kind != KindSink && len(n.Parent) == 0 {
			return fmt.Errorf("planmodel: node %s (%s) is not a Sink but has no parents", n.OpID, n.Kind)
		}
	}
	return t.checkAcyclic()
}

func (t *Tree) checkAcyclic() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(t.nodes))
	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		color[id] = gray
		for _, c := range t.nodes[id].Child {
			switch color[c] {
			case gray:
				return fmt.Errorf("planmodel: cycle detected through node %s", t.nodes[c].OpID)
			case white:
				if err := visit(c); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}
	for i := range t.nodes {
		if color[i] == white {
			if err := visit(NodeID(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// InferSchemas computes InputSchema/OutputSchema for every node
// reachable from roots, bottom-up (spec §3 "Schema inference").
// Sources must already have their OutputSchema populated by the
// caller (it comes from the source catalog, an external collaborator).
func (t *Tree) InferSchemas(roots NodeIDSet) error {
	var err error
	t.Walk(roots, func(n *Node) {
		if err != nil {
			return
		}
		err = inferOne(t, n)
	})
	return err
}

func inferOne(t *Tree, n *Node) error {
	switch n.Kind {
	case KindSource:
		if n.Source == nil {
			return fmt.Errorf("planmodel: source node %s has no payload", n.OpID)
		}
		// OutputSchema must be pre-populated by the caller from the
		// source catalog; nothing to infer.
		return nil
	case KindFilter:
		n.InputSchema = childSchema(t, n)
		n.OutputSchema = n.InputSchema
		return nil
	case KindProjection:
		n.InputSchema = childSchema(t, n)
		out := make(Schema, 0, len(n.Projection.Fields))
		for _, f := range n.Projection.Fields {
			name := f.As
			if name == "" {
				if f.Expr.Op != OpIdent {
					return fmt.Errorf("planmodel: projection field needs an explicit name for non-identifier expression %s", f.Expr)
				}
				name = f.Expr.Ident
			}
			ty := Float64
			if idx := n.InputSchema.IndexOf(f.Expr.Ident); f.Expr.Op == OpIdent && idx >= 0 {
				ty = n.InputSchema[idx].Type
			}
			qualifier, bare := splitQualified(name)
			out = append(out, Field{Qualifier: qualifier, Name: bare, Type: ty})
		}
		n.OutputSchema = out
		return nil
	case KindMap:
		n.InputSchema = childSchema(t, n)
		qualifier, bare := splitQualified(n.Map.Assign)
		newField := Field{Qualifier: qualifier, Name: bare, Type: Float64}
		out := make(Schema, 0, len(n.InputSchema)+1)
		replaced := false
		for _, f := range n.InputSchema {
			if f.QualifiedName() == n.Map.Assign {
				out = append(out, newField)
				replaced = true
			} else {
				out = append(out, f)
			}
		}
		if !replaced {
			out = append(out, newField)
		}
		n.OutputSchema = out
		return nil
	case KindUnion:
		n.InputSchema = childSchema(t, n)
		for _, c := range n.Child[1:] {
			if !t.nodes[c].OutputSchema.Equal(n.InputSchema) {
				return fmt.Errorf("planmodel: union branches have incompatible schemas at node %s", n.OpID)
			}
		}
		n.OutputSchema = n.InputSchema
		return nil
	case KindJoin:
		if len(n.Child) != 2 {
			return fmt.Errorf("planmodel: join node %s must have exactly 2 children, got %d", n.OpID, len(n.Child))
		}
		left := t.nodes[n.Child[0]].OutputSchema
		right := t.nodes[n.Child[1]].OutputSchema
		n.InputSchema = append(append(Schema{}, left...), right...)
		n.OutputSchema = n.InputSchema
		return nil
	case KindWindow:
		n.InputSchema = childSchema(t, n)
		out := make(Schema, 0, len(n.Window.Keys)+len(n.Window.Aggs)+2)
		sinkQualifier := "window"
		out = append(out, Field{Qualifier: sinkQualifier, Name: "start", Type: Int64})
		out = append(out, Field{Qualifier: sinkQualifier, Name: "end", Type: Int64})
		for _, k := range n.Window.Keys {
			qualifier, bare := splitQualified(k)
			ty := Float64
			if idx := n.InputSchema.IndexOf(k); idx >= 0 {
				ty = n.InputSchema[idx].Type
			}
			out = append(out, Field{Qualifier: qualifier, Name: bare, Type: ty})
		}
		for _, a := range n.Window.Aggs {
			ty := Float64
			if a.Kind == AggCount {
				ty = Int64
			}
			qualifier, bare := splitQualified(a.As)
			out = append(out, Field{Qualifier: qualifier, Name: bare, Type: ty})
		}
		n.OutputSchema = out
		return nil
	case KindWatermarkAssigner:
		n.InputSchema = childSchema(t, n)
		n.OutputSchema = n.InputSchema
		return nil
	case KindSink:
		n.InputSchema = childSchema(t, n)
		n.OutputSchema = n.InputSchema
		return nil
	default:
		return fmt.Errorf("planmodel: unknown operator kind %v", n.Kind)
	}
}

func childSchema(t *Tree, n *Node) Schema {
	if len(n.Child) == 0 {
		return nil
	}
	return t.nodes[n.Child[0]].OutputSchema
}

// splitQualified splits "src$field" into ("src", "field"); if there
// is no "$", the qualifier is empty.
func splitQualified(qualified string) (qualifier, name string) {
	for i := 0; i < len(qualified); i++ {
		if qualified[i] == '$' {
			return qualified[:i], qualified[i+1:]
		}
	}
	return "", qualified
}
