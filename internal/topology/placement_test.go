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

package topology

import (
	"testing"

	"github.com/nebula-stream/nebula-core/internal/planmodel"
)

func oneSourceOneSink(t *testing.T) (*planmodel.Tree, planmodel.NodeID, planmodel.NodeID) {
	t.Helper()
	tr := planmodel.New()
	src := tr.AddNode(planmodel.KindSource)
	tr.Node(src).Source = &planmodel.SourcePayload{Name: "n1-source"}
	tr.Node(src).OutputSchema = planmodel.Schema{{Qualifier: "s", Name: "a", Type: planmodel.Uint64}}
	sink := tr.AddNode(planmodel.KindSink)
	tr.Connect(sink, src)
	if err := tr.InferSchemas(planmodel.NodeIDSet{sink}); err != nil {
		t.Fatalf("InferSchemas: %v", err)
	}
	return tr, src, sink
}

// TestPlacementFallbackScenario implements spec.md's TESTABLE
// PROPERTIES scenario 5: topology root R (cpu=0), child N1 (cpu=2);
// query 1 has its source pinned to N1 and a sink pinned to R; query 2
// adds one filter, which must land on N1 (not R), leaving N1 with 1
// remaining CPU slot, without relocating query 1's operators.
func TestPlacementFallbackScenario(t *testing.T) {
	topo := New()
	topo.Root = "R"
	r := NewNode("R", "root", 0, true)
	topo.RegisterNode(r)
	n1 := NewNode("N1", "edge-1", 2, true)
	topo.RegisterNode(n1)
	n1.LinkTo("R", LinkProperties{})
	r.LinkTo("N1", LinkProperties{})

	resolve := func(name string) (string, bool) {
		if name == "n1-source" {
			return "N1", true
		}
		return "", false
	}

	tr, src, sink := oneSourceOneSink(t)
	placement, err := Place(topo, tr, planmodel.NodeIDSet{sink}, BottomUp, resolve, nil)
	if err != nil {
		t.Fatalf("initial placement failed: %v", err)
	}
	if n1.RemainingCPU() != 1 {
		t.Fatalf("expected N1 remaining CPU 1 after query 1, got %d", n1.RemainingCPU())
	}

	// Query 2 adds a filter reading from the same source (the subtree
	// whose root changed); PlaceIncremental must place it on N1.
	filterNode := tr.AddNode(planmodel.KindFilter)
	tr.Node(filterNode).Filter = &planmodel.FilterPayload{Pred: planmodel.LitFloat(1)}
	tr.Connect(filterNode, src)

	if err := PlaceIncremental(topo, tr, filterNode, placement, resolve); err != nil {
		t.Fatalf("incremental placement failed: %v", err)
	}
	if placement.Host[filterNode] != "N1" {
		t.Fatalf("expected filter placed on N1, got %s", placement.Host[filterNode])
	}
	if n1.RemainingCPU() != 0 {
		t.Fatalf("expected N1 remaining CPU 0 after query 2, got %d", n1.RemainingCPU())
	}
	// Query 1's operators must not have been relocated.
	if placement.Host[sink] != "R" {
		t.Fatalf("query 1's sink must remain on R, got %s", placement.Host[sink])
	}
	if placement.Host[src] != "N1" {
		t.Fatalf("query 1's source must remain on N1, got %s", placement.Host[src])
	}
}

func TestPlacementRejectsZeroCapacity(t *testing.T) {
	topo := New()
	topo.Root = "R"
	topo.RegisterNode(NewNode("R", "root", 0, true))
	resolve := func(name string) (string, bool) { return "R", true }

	tr, _, sink := oneSourceOneSink(t)
	if _, err := Place(topo, tr, planmodel.NodeIDSet{sink}, BottomUp, resolve, nil); err == nil {
		t.Fatalf("expected placement to fail when source and sink both need R's zero capacity")
	}
	if r, _ := topo.Node("R"); r.RemainingCPU() != 0 {
		t.Fatalf("expected reserved CPU to be released after a failed placement, got %d", r.RemainingCPU())
	}
}

func TestPlacementConservation(t *testing.T) {
	topo := New()
	topo.Root = "R"
	topo.RegisterNode(NewNode("R", "root", 5, true))
	resolve := func(name string) (string, bool) { return "R", true }

	tr, _, sink := oneSourceOneSink(t)
	placement, err := Place(topo, tr, planmodel.NodeIDSet{sink}, BottomUp, resolve, nil)
	if err != nil {
		t.Fatalf("placement failed: %v", err)
	}
	r, _ := topo.Node("R")
	usedCPU := r.TotalCPU() - r.RemainingCPU()
	if usedCPU != int64(len(placement.Host)) {
		t.Fatalf("placement conservation violated: used=%d placed=%d", usedCPU, len(placement.Host))
	}
}
