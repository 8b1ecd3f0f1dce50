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

package gqp

import (
	"context"
	"testing"

	"github.com/nebula-stream/nebula-core/internal/planmodel"
)

// buildMapFilterQuery builds Source.map(v:=40).filter(id<threshold).sink,
// the shape used in spec.md's containment-merge scenario (scenario 4).
func buildMapFilterQuery(t *testing.T, queryID string, threshold float64) QueryPlan {
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
	tr.Connect(sink, f)

	if err := tr.InferSchemas(planmodel.NodeIDSet{sink}); err != nil {
		t.Fatalf("InferSchemas: %v", err)
	}
	return QueryPlan{QueryID: queryID, Tree: tr, Sink: sink}
}

func TestDefaultMergerNeverMerges(t *testing.T) {
	g := New(DefaultMerger{})
	g.AddQueryPlan(buildMapFilterQuery(t, "q1", 60))
	g.AddQueryPlan(buildMapFilterQuery(t, "q2", 60))
	results := g.Update(context.Background(), 0)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].SQPID == results[1].SQPID {
		t.Fatalf("DefaultMerger must never share an SQP between queries")
	}
	if len(g.SQPIDs()) != 2 {
		t.Fatalf("expected 2 SQPs, got %d", len(g.SQPIDs()))
	}
}

func TestSignatureEqualityMergerMergesIdenticalQueries(t *testing.T) {
	g := New(SignatureEqualityMerger{})
	g.AddQueryPlan(buildMapFilterQuery(t, "q1", 60))
	g.AddQueryPlan(buildMapFilterQuery(t, "q2", 60))
	results := g.Update(context.Background(), 0)
	if results[0].Err != nil || results[1].Err != nil {
		t.Fatalf("unexpected errors: %v %v", results[0].Err, results[1].Err)
	}
	if results[0].SQPID != results[1].SQPID {
		t.Fatalf("identical queries should share one SQP, got %s and %s", results[0].SQPID, results[1].SQPID)
	}
	if len(g.SQPIDs()) != 1 {
		t.Fatalf("expected 1 SQP, got %d", len(g.SQPIDs()))
	}
}

// TestContainmentMergeScenario implements spec.md's TESTABLE
// PROPERTIES scenario 4 verbatim: submit Q1 (filter id<60) then Q2
// (filter id<45); expect a single SQP with both sinks attached.
func TestContainmentMergeScenario(t *testing.T) {
	g := New(SignatureContainmentMerger{})
	g.AddQueryPlan(buildMapFilterQuery(t, "Q1", 60))
	results1 := g.Update(context.Background(), 0)
	if results1[0].Err != nil {
		t.Fatalf("Q1 failed: %v", results1[0].Err)
	}

	g.AddQueryPlan(buildMapFilterQuery(t, "Q2", 45))
	results2 := g.Update(context.Background(), 0)
	if results2[0].Err != nil {
		t.Fatalf("Q2 failed: %v", results2[0].Err)
	}

	if results1[0].SQPID != results2[0].SQPID {
		t.Fatalf("expected Q1 and Q2 in the same SQP, got %s and %s", results1[0].SQPID, results2[0].SQPID)
	}
	if len(g.SQPIDs()) != 1 {
		t.Fatalf("expected exactly one SQP, got %d", len(g.SQPIDs()))
	}

	sqp, ok := g.SQP(results1[0].SQPID)
	if !ok {
		t.Fatalf("SQP %s not found", results1[0].SQPID)
	}
	if len(sqp.Members) != 2 {
		t.Fatalf("expected both Q1 and Q2 as members, got %d", len(sqp.Members))
	}
	if _, ok := sqp.Members["Q1"]; !ok {
		t.Fatalf("Q1 missing from merged SQP")
	}
	if _, ok := sqp.Members["Q2"]; !ok {
		t.Fatalf("Q2 missing from merged SQP")
	}
	if sqp.Status != Processed {
		t.Fatalf("expected SQP status Processed, got %v", sqp.Status)
	}
}

func TestSchemaMismatchFailsQuery(t *testing.T) {
	tr := planmodel.New()
	bad := tr.AddNode(planmodel.KindFilter) // non-source with no children: invalid
	tr.Node(bad).Filter = &planmodel.FilterPayload{Pred: planmodel.LitFloat(1)}

	g := New(DefaultMerger{})
	g.AddQueryPlan(QueryPlan{QueryID: "bad", Tree: tr, Sink: bad})
	results := g.Update(context.Background(), 0)
	if results[0].Err == nil {
		t.Fatalf("expected schema mismatch error for invalid tree")
	}
}

func TestSourceIndexTracksConsumers(t *testing.T) {
	g := New(DefaultMerger{})
	g.AddQueryPlan(buildMapFilterQuery(t, "q1", 60))
	g.Update(context.Background(), 0)
	consumers := g.SourceConsumers("sensors")
	if len(consumers) != 1 {
		t.Fatalf("expected 1 consumer of source 'sensors', got %d", len(consumers))
	}
}

func TestRemoveMemberDestroysEmptySQP(t *testing.T) {
	g := New(DefaultMerger{})
	g.AddQueryPlan(buildMapFilterQuery(t, "q1", 60))
	results := g.Update(context.Background(), 0)
	id := results[0].SQPID
	g.RemoveMember(id, "q1")
	if _, ok := g.SQP(id); ok {
		t.Fatalf("expected SQP %s to be destroyed after its last member was removed", id)
	}
	if len(g.SourceConsumers("sensors")) != 0 {
		t.Fatalf("expected source index entry to be cleaned up")
	}
}
