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

package containment

import (
	"context"
	"testing"
	"time"

	"github.com/nebula-stream/nebula-core/internal/planmodel"
	"github.com/nebula-stream/nebula-core/internal/signature"
)

func buildMapFilter(t *testing.T, threshold float64) (*planmodel.Tree, planmodel.NodeID) {
	t.Helper()
	tr := planmodel.New()
	src := tr.AddNode(planmodel.KindSource)
	tr.Node(src).Source = &planmodel.SourcePayload{Name: "sensors"}
	tr.Node(src).OutputSchema = planmodel.Schema{
		{Qualifier: "sensors", Name: "id", Type: planmodel.Uint64},
		{Qualifier: "sensors", Name: "v", Type: planmodel.Float64},
	}

	m := tr.AddNode(planmodel.KindMap)
	tr.Node(m).Map = &planmodel.MapPayload{Assign: "sensors$v", Expr: planmodel.LitFloat(40)}
	tr.Connect(m, src)

	f := tr.AddNode(planmodel.KindFilter)
	tr.Node(f).Filter = &planmodel.FilterPayload{
		Pred: planmodel.Bin(planmodel.OpLess, planmodel.Ident("sensors$id"), planmodel.LitFloat(threshold)),
	}
	tr.Connect(f, m)

	sink := tr.AddNode(planmodel.KindSink)
	tr.Node(sink).Sink = &planmodel.SinkPayload{Desc: "out"}
	tr.Connect(sink, f)

	if err := tr.InferSchemas(planmodel.NodeIDSet{sink}); err != nil {
		t.Fatalf("InferSchemas: %v", err)
	}
	return tr, sink
}

func sigFor(t *testing.T, threshold float64) *signature.Signature {
	t.Helper()
	tr, sink := buildMapFilter(t, threshold)
	sigs, err := signature.Compute(tr, planmodel.NodeIDSet{sink})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return sigs[sink]
}

func TestReflexivity(t *testing.T) {
	s := sigFor(t, 60)
	c := NewChecker()
	if v := c.Check(context.Background(), s, s); v != Equal {
		t.Fatalf("check(S,S) = %v, want Equal", v)
	}
}

// TestContainmentMergeScenario mirrors spec.md TESTABLE PROPERTIES
// scenario 4 directly: Q1 = Source.map(v:=40).filter(id<60).sink,
// Q2 = Source.map(v:=40).filter(id<45).sink. id<45 implies id<60 by
// the linear-arithmetic bound reasoning in solver.go, so check(Q2,Q1)
// is RightContainsLeft (Q1 is the broader container).
func TestContainmentMergeScenario(t *testing.T) {
	q1 := sigFor(t, 60)
	q2 := sigFor(t, 45)
	c := NewChecker()
	if v := c.Check(context.Background(), q2, q1); v != RightContainsLeft {
		t.Fatalf("check(Q2,Q1) = %v, want RightContainsLeft", v)
	}
}

// TestContainmentConjunctiveExtension covers the purely-structural
// path: one predicate is a literal conjunctive extension of another
// (the shape SignatureContainmentMerger's graft produces); checked with
// the narrower Q2 on the left, it must resolve to RightContainsLeft.
func TestContainmentConjunctiveExtension(t *testing.T) {
	// Q1 has predicate P; Q2 has predicate P AND Q (a strict
	// refinement reachable by attaching an extra filter on top of
	// Q1's plan, which is exactly what a SignatureContainmentMerger
	// does when it attaches a new query as a filter over a host SQP).
	tr := planmodel.New()
	src := tr.AddNode(planmodel.KindSource)
	tr.Node(src).Source = &planmodel.SourcePayload{Name: "sensors"}
	tr.Node(src).OutputSchema = planmodel.Schema{{Qualifier: "sensors", Name: "id", Type: planmodel.Uint64}}

	f1 := tr.AddNode(planmodel.KindFilter)
	tr.Node(f1).Filter = &planmodel.FilterPayload{Pred: planmodel.Bin(planmodel.OpLess, planmodel.Ident("sensors$id"), planmodel.LitFloat(60))}
	tr.Connect(f1, src)
	sink1 := tr.AddNode(planmodel.KindSink)
	tr.Connect(sink1, f1)

	f2 := tr.AddNode(planmodel.KindFilter)
	tr.Node(f2).Filter = &planmodel.FilterPayload{Pred: planmodel.Bin(planmodel.OpLess, planmodel.Ident("sensors$id"), planmodel.LitFloat(45))}
	tr.Connect(f2, f1)
	sink2 := tr.AddNode(planmodel.KindSink)
	tr.Connect(sink2, f2)

	if err := tr.InferSchemas(planmodel.NodeIDSet{sink1, sink2}); err != nil {
		t.Fatalf("InferSchemas: %v", err)
	}
	sigs, err := signature.Compute(tr, planmodel.NodeIDSet{sink1, sink2})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	c := NewChecker()
	v := c.Check(context.Background(), sigs[sink2], sigs[sink1])
	if v != RightContainsLeft {
		t.Fatalf("check(Q2,Q1) = %v, want RightContainsLeft", v)
	}
}

func TestWindowShapeMismatchIsNoContainment(t *testing.T) {
	base := sigFor(t, 60)
	w1 := planmodel.WindowSpec{Type: planmodel.Tumbling, SizeMillis: 1000, SlideMillis: 1000, TimeChar: planmodel.EventTime, TimeField: "sensors$ts"}
	w2 := planmodel.WindowSpec{Type: planmodel.Tumbling, SizeMillis: 2000, SlideMillis: 2000, TimeChar: planmodel.EventTime, TimeField: "sensors$ts"}
	s1 := &signature.Signature{Formula: base.Formula, ColumnMap: base.ColumnMap, Window: &w1}
	s2 := &signature.Signature{Formula: base.Formula, ColumnMap: base.ColumnMap, Window: &w2}
	c := NewChecker()
	if v := c.Check(context.Background(), s1, s2); v != NoContainment {
		t.Fatalf("mismatched window shapes: got %v, want NoContainment", v)
	}
}

type alwaysTimeoutBackend struct{}

func (alwaysTimeoutBackend) CheckImplies(ctx context.Context, lhs, rhs *planmodel.Expr, timeout time.Duration) (bool, error) {
	return false, &timeoutErr{}
}

type timeoutErr struct{}

func (*timeoutErr) Error() string { return "timeout" }

func TestSolverTimeoutTreatedAsNoContainment(t *testing.T) {
	s1 := sigFor(t, 60)
	s2 := sigFor(t, 45)
	c := &Checker{Backend: alwaysTimeoutBackend{}, Timeout: time.Millisecond}
	if v := c.Check(context.Background(), s1, s2); v != NoContainment {
		t.Fatalf("solver timeout: got %v, want NoContainment", v)
	}
}
