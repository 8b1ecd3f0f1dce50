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
	"testing"

	"github.com/nebula-stream/nebula-core/internal/planmodel"
)

// buildMapFilter builds Source.map(v:=40).filter(id<threshold).sink,
// matching the shape used in spec.md's containment-merge scenario.
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

func TestSignatureStability(t *testing.T) {
	tr, sink := buildMapFilter(t, 60)
	sigs1, err := Compute(tr, planmodel.NodeIDSet{sink})
	if err != nil {
		t.Fatalf("Compute #1: %v", err)
	}
	sigs2, err := Compute(tr, planmodel.NodeIDSet{sink})
	if err != nil {
		t.Fatalf("Compute #2: %v", err)
	}
	if sigs1[sink].Canonical() != sigs2[sink].Canonical() {
		t.Fatalf("signature not stable across recomputation:\n%s\nvs\n%s",
			sigs1[sink].Canonical(), sigs2[sink].Canonical())
	}
}

func TestSignatureDiffersOnDifferentPredicate(t *testing.T) {
	tr1, s1 := buildMapFilter(t, 60)
	tr2, s2 := buildMapFilter(t, 45)
	sigs1, err := Compute(tr1, planmodel.NodeIDSet{s1})
	if err != nil {
		t.Fatalf("Compute tr1: %v", err)
	}
	sigs2, err := Compute(tr2, planmodel.NodeIDSet{s2})
	if err != nil {
		t.Fatalf("Compute tr2: %v", err)
	}
	if sigs1[s1].Canonical() == sigs2[s2].Canonical() {
		t.Fatalf("expected signatures with different filter thresholds to differ")
	}
}

func TestUnionRejectsMismatchedColumns(t *testing.T) {
	tr := planmodel.New()
	srcA := tr.AddNode(planmodel.KindSource)
	tr.Node(srcA).Source = &planmodel.SourcePayload{Name: "a"}
	tr.Node(srcA).OutputSchema = planmodel.Schema{{Qualifier: "a", Name: "x", Type: planmodel.Int64}}

	srcB := tr.AddNode(planmodel.KindSource)
	tr.Node(srcB).Source = &planmodel.SourcePayload{Name: "b"}
	tr.Node(srcB).OutputSchema = planmodel.Schema{
		{Qualifier: "b", Name: "x", Type: planmodel.Int64},
		{Qualifier: "b", Name: "y", Type: planmodel.Int64},
	}

	u := tr.AddNode(planmodel.KindUnion)
	tr.Node(u).Union = &planmodel.UnionPayload{}
	tr.Connect(u, srcA)
	tr.Connect(u, srcB)

	if err := tr.InferSchemas(planmodel.NodeIDSet{u}); err != nil {
		t.Fatalf("InferSchemas: %v", err)
	}
	if _, err := Compute(tr, planmodel.NodeIDSet{u}); err == nil {
		t.Fatalf("expected Compute to reject a union with mismatched column sets")
	}
}
