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

package signature

import (
	"fmt"

	"github.com/nebula-stream/nebula-core/internal/planmodel"
)

// Compute derives the Signature of every node reachable from roots,
// bottom-up, following the per-kind rules of spec §4.1. It returns a
// map from every visited node id (roots included) to its signature.
func Compute(t *planmodel.Tree, roots planmodel.NodeIDSet) (map[planmodel.NodeID]*Signature, error) {
	out := make(map[planmodel.NodeID]*Signature)
	var err error
	t.Walk(roots, func(n *planmodel.Node) {
		if err != nil {
			return
		}
		sig, e := computeOne(t, n, out)
		if e != nil {
			err = e
			return
		}
		out[n.ID] = sig
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func childSig(n *planmodel.Node, sigs map[planmodel.NodeID]*Signature, i int) *Signature {
	return sigs[n.Child[i]]
}

func computeOne(t *planmodel.Tree, n *planmodel.Node, sigs map[planmodel.NodeID]*Signature) (*Signature, error) {
	switch n.Kind {
	case planmodel.KindSource:
		cm := make(map[string]*planmodel.Expr, len(n.OutputSchema))
		for _, f := range n.OutputSchema {
			cm[f.QualifiedName()] = planmodel.Ident(f.QualifiedName())
		}
		return &Signature{Formula: sourceMarker(n.Source.Name), ColumnMap: cm}, nil

	case planmodel.KindFilter:
		child := childSig(n, sigs, 0)
		return &Signature{
			Formula:   planmodel.Bin(planmodel.OpAnd, child.Formula, n.Filter.Pred),
			ColumnMap: CloneColumnMap(child.ColumnMap),
		}, nil

	case planmodel.KindProjection:
		child := childSig(n, sigs, 0)
		cm := make(map[string]*planmodel.Expr, len(n.Projection.Fields))
		for _, f := range n.Projection.Fields {
			name := f.As
			if name == "" {
				name = f.Expr.Ident
			}
			cm[name] = substitute(f.Expr, child.ColumnMap)
		}
		return &Signature{Formula: child.Formula, ColumnMap: cm}, nil

	case planmodel.KindMap:
		child := childSig(n, sigs, 0)
		cm := CloneColumnMap(child.ColumnMap)
		cm[n.Map.Assign] = substitute(n.Map.Expr, child.ColumnMap)
		return &Signature{Formula: child.Formula, ColumnMap: cm}, nil

	case planmodel.KindWindow:
		child := childSig(n, sigs, 0)
		w := n.Window.Window
		formula := planmodel.Bin(planmodel.OpAnd, child.Formula, windowMarker(w))
		cm := make(map[string]*planmodel.Expr)
		for _, k := range n.Window.Keys {
			cm[k] = substitute(planmodel.Ident(k), child.ColumnMap)
		}
		cm["window$start"] = windowMarker(w)
		cm["window$end"] = windowMarker(w)
		for _, a := range n.Window.Aggs {
			field := planmodel.Ident(a.Field)
			if a.Kind == planmodel.AggCount {
				field = planmodel.LitFloat(1)
			}
			cm[a.As] = planmodel.Ident(fmt.Sprintf("%s(%s)", a.Kind, substitute(field, child.ColumnMap)))
		}
		return &Signature{Formula: formula, ColumnMap: cm, Window: &w}, nil

	case planmodel.KindUnion:
		left := childSig(n, sigs, 0)
		for i := 1; i < len(n.Child); i++ {
			right := childSig(n, sigs, i)
			aligned, err := alignUnion(left, right)
			if err != nil {
				return nil, fmt.Errorf("signature: union at node %s: %w", n.OpID, err)
			}
			left = aligned
		}
		return left, nil

	case planmodel.KindJoin:
		left := childSig(n, sigs, 0)
		right := childSig(n, sigs, 1)
		merged := map[string]*planmodel.Expr{}
		for k, v := range left.ColumnMap {
			merged[k] = v
		}
		for k, v := range right.ColumnMap {
			merged[k] = v
		}
		formula := planmodel.Bin(planmodel.OpAnd, left.Formula, right.Formula)
		if !n.Join.CartesianProduct && n.Join.Pred != nil {
			translated := substitute(n.Join.Pred, merged)
			formula = planmodel.Bin(planmodel.OpAnd, formula, translated)
		}
		w := n.Join.Window
		formula = planmodel.Bin(planmodel.OpAnd, formula, windowMarker(w))
		return &Signature{Formula: formula, ColumnMap: merged, Window: &w}, nil

	case planmodel.KindWatermarkAssigner, planmodel.KindSink:
		child := childSig(n, sigs, 0)
		return &Signature{Formula: child.Formula, ColumnMap: CloneColumnMap(child.ColumnMap)}, nil

	default:
		return nil, fmt.Errorf("signature: unsupported operator kind %v", n.Kind)
	}
}

// substitute replaces every OpIdent leaf of e with its definition in
// cm, if one exists, leaving unmapped identifiers as free variables.
// This is how Map/Projection assignments are "translated into the SMT
// vocabulary" in terms of their inputs' own formulas (spec §4.1).
func substitute(e *planmodel.Expr, cm map[string]*planmodel.Expr) *planmodel.Expr {
	if e == nil {
		return nil
	}
	if e.Op == planmodel.OpIdent {
		if def, ok := cm[e.Ident]; ok {
			return def
		}
		return e
	}
	cp := &planmodel.Expr{Op: e.Op, Literal: e.Literal, IsString: e.IsString, StringVal: e.StringVal}
	for _, a := range e.Args {
		cp.Args = append(cp.Args, substitute(a, cm))
	}
	return cp
}

// alignUnion computes the Union formula f1 OR f2 after aligning the
// two branches' column spaces; fails if the branches disagree on
// which output columns they produce (spec §4.1).
func alignUnion(left, right *Signature) (*Signature, error) {
	if len(left.ColumnMap) != len(right.ColumnMap) {
		return nil, fmt.Errorf("union branches disagree on column count (%d vs %d)", len(left.ColumnMap), len(right.ColumnMap))
	}
	for k := range left.ColumnMap {
		if _, ok := right.ColumnMap[k]; !ok {
			return nil, fmt.Errorf("union branches disagree: column %q missing on one side", k)
		}
	}
	return &Signature{
		Formula:   planmodel.Bin(planmodel.OpOr, left.Formula, right.Formula),
		ColumnMap: CloneColumnMap(left.ColumnMap),
	}, nil
}
