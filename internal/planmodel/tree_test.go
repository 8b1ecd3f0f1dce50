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

import "testing"

// buildFilterPassThrough builds Source.filter(a<5).sink over schema
// (a:u64), matching TESTABLE PROPERTIES scenario 1 in spec.md.
func buildFilterPassThrough(t *testing.T) (*Tree, NodeID) {
	t.Helper()
	tr := New()
	src := tr.AddNode(KindSource)
	tr.Node(src).Source = &SourcePayload{Name: "sensors"}
	tr.Node(src).OutputSchema = Schema{{Qualifier: "sensors", Name: "a", Type: Uint64}}

	filt := tr.AddNode(KindFilter)
	tr.Node(filt).Filter = &FilterPayload{Pred: Bin(OpLess, Ident("sensors$a"), LitFloat(5))}
	tr.Connect(filt, src)

	sink := tr.AddNode(KindSink)
	tr.Node(sink).Sink = &SinkPayload{Desc: "out"}
	tr.Connect(sink, filt)

	return tr, sink
}

func TestValidateAndInferSchemas(t *testing.T) {
	tr, sink := buildFilterPassThrough(t)
	if err := tr.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := tr.InferSchemas(NodeIDSet{sink}); err != nil {
		t.Fatalf("InferSchemas: %v", err)
	}
	out := tr.Node(sink).OutputSchema
	if len(out) != 1 || out[0].QualifiedName() != "sensors$a" {
		t.Fatalf("unexpected sink schema: %v", out)
	}
}

func TestValidateRejectsDanglingNode(t *testing.T) {
	tr := New()
	src := tr.AddNode(KindSource)
	tr.Node(src).Source = &SourcePayload{Name: "sensors"}
	// a Filter with no child is invalid
	tr.AddNode(KindFilter)
	if err := tr.Validate(); err == nil {
		t.Fatalf("expected Validate to reject a childless non-source node")
	}
}

func TestValidateRejectsCycle(t *testing.T) {
	tr := New()
	a := tr.AddNode(KindFilter)
	b := tr.AddNode(KindFilter)
	tr.Connect(a, b)
	tr.Connect(b, a)
	if err := tr.Validate(); err == nil {
		t.Fatalf("expected Validate to reject a cycle")
	}
}

func TestWindowSchemaHasStartEndPrefixedBySink(t *testing.T) {
	tr := New()
	src := tr.AddNode(KindSource)
	tr.Node(src).Source = &SourcePayload{Name: "sensors"}
	tr.Node(src).OutputSchema = Schema{
		{Qualifier: "sensors", Name: "k", Type: Uint64},
		{Qualifier: "sensors", Name: "v", Type: Uint64},
		{Qualifier: "sensors", Name: "ts", Type: Uint64},
	}
	win := tr.AddNode(KindWindow)
	tr.Node(win).Window = &WindowPayload{
		Keys: []string{"sensors$k"},
		Aggs: []AggSpec{{Kind: AggSum, Field: "sensors$v", As: "sum"}},
		Window: WindowSpec{
			Type: Tumbling, SizeMillis: 1000, SlideMillis: 1000,
			TimeChar: EventTime, TimeField: "sensors$ts",
		},
	}
	tr.Connect(win, src)
	if err := tr.InferSchemas(NodeIDSet{win}); err != nil {
		t.Fatalf("InferSchemas: %v", err)
	}
	out := tr.Node(win).OutputSchema
	if out.IndexOf("window$start") < 0 || out.IndexOf("window$end") < 0 {
		t.Fatalf("expected window$start/window$end fields, got %v", out)
	}
}
