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

// OpKind tags the variant of a logical operator (spec §3 DATA MODEL).
type OpKind int

const (
	KindSource OpKind = iota
	KindFilter
	KindProjection
	KindMap
	KindUnion
	KindJoin
	KindWindow
	KindWatermarkAssigner
	KindSink
)

func (k OpKind) String() string {
	switch k {
	case KindSource:
		return "Source"
	case KindFilter:
		return "Filter"
	case KindProjection:
		return "Projection"
	case KindMap:
		return "Map"
	case KindUnion:
		return "Union"
	case KindJoin:
		return "Join"
	case KindWindow:
		return "Window"
	case KindWatermarkAssigner:
		return "WatermarkAssigner"
	case KindSink:
		return "Sink"
	default:
		return "Unknown"
	}
}

// SourcePayload names the external stream a Source operator reads
// from. Resolving it to a physical location is the job of the source
// catalog, an external collaborator (spec §1).
type SourcePayload struct {
	Name string
}

// FilterPayload holds a Filter operator's predicate.
type FilterPayload struct {
	Pred *Expr
}

// ProjectField is one projected output column.
type ProjectField struct {
	Expr *Expr
	As   string // output qualified name; if empty, Expr must be OpIdent and As defaults to it
}

// ProjectionPayload holds a Projection operator's output field list.
type ProjectionPayload struct {
	Fields []ProjectField
}

// MapPayload holds a Map operator's single field assignment
// ("a := e").
type MapPayload struct {
	Assign string
	Expr   *Expr
}

// UnionPayload marks a Union operator; its semantics come entirely
// from its (>=2) Children.
type UnionPayload struct{}

// JoinPayload holds a Join operator's predicate and window.
type JoinPayload struct {
	Pred   *Expr
	Window WindowSpec
	// CartesianProduct, when true, ignores Pred and performs a full
	// cross product within each window (spec §4.8).
	CartesianProduct bool
}

// WindowPayload holds a Window operator's aggregation spec, grouping
// keys, and window shape.
type WindowPayload struct {
	Aggs   []AggSpec
	Keys   []string // qualified grouping columns
	Window WindowSpec
}

// WatermarkAssignerPayload names the watermark-generation strategy
// attached to a stream (e.g. "bounded-out-of-orderness:500ms"); the
// concrete strategies are external collaborators (spec §1), so the
// core only needs to carry the opaque strategy descriptor.
type WatermarkAssignerPayload struct {
	Strategy string
}

// SinkPayload names the external sink a Sink operator writes to.
type SinkPayload struct {
	Desc string
}

// Node is one operator in a logical plan, stored by value inside a
// Tree's arena and addressed by NodeID (spec §9: indices, not owning
// pointers).
type Node struct {
	ID     NodeID
	OpID   string // stable, globally-unique operator id (uuid)
	Kind   OpKind
	Parent NodeIDSet
	Child  NodeIDSet

	InputSchema  Schema
	OutputSchema Schema

	Source      *SourcePayload
	Filter      *FilterPayload
	Projection  *ProjectionPayload
	Map         *MapPayload
	Union       *UnionPayload
	Join        *JoinPayload
	Window      *WindowPayload
	WatermarkOp *WatermarkAssignerPayload
	Sink        *SinkPayload
}

// NodeID is an index into a Tree's node arena.
type NodeID int

// InvalidNodeID is never a valid arena index.
const InvalidNodeID NodeID = -1

// NodeIDSet is an ordered, duplicate-free list of NodeIDs. Plain
// slices are used rather than a map so that iteration order (and
// hence downstream tie-breaking, e.g. in placement) is deterministic.
type NodeIDSet []NodeID

func (s NodeIDSet) contains(id NodeID) bool {
	for _, x := range s {
		if x == id {
			return true
		}
	}
	return false
}

func (s NodeIDSet) add(id NodeID) NodeIDSet {
	if s.contains(id) {
		return s
	}
	return append(s, id)
}
