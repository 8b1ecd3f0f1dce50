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

package pipeline

import (
	"context"
	"testing"

	"github.com/nebula-stream/nebula-core/internal/planmodel"
	"github.com/nebula-stream/nebula-core/internal/tuple"
)

// buildLinearPlan constructs source -> filter(x>0) -> window -> sink.
func buildLinearPlan(t *testing.T) (*planmodel.Tree, planmodel.NodeIDSet) {
	t.Helper()
	tree := planmodel.New()
	src := tree.AddNode(planmodel.KindSource)
	tree.Node(src).Source = &planmodel.SourcePayload{Name: "s"}
	tree.Node(src).OutputSchema = planmodel.Schema{{Qualifier: "s", Name: "x", Type: planmodel.Float64}}

	filter := tree.AddNode(planmodel.KindFilter)
	tree.Node(filter).Filter = &planmodel.FilterPayload{Pred: planmodel.Bin(planmodel.OpLess, planmodel.LitFloat(0), planmodel.Ident("s$x"))}
	tree.Connect(filter, src)

	window := tree.AddNode(planmodel.KindWindow)
	tree.Node(window).Window = &planmodel.WindowPayload{
		Keys: []string{"s$x"},
		Aggs:   []planmodel.AggSpec{{Kind: planmodel.AggSum, Field: "s$x", As: "total"}},
		Window: planmodel.WindowSpec{Type: planmodel.Tumbling, SizeMillis: 1000, SlideMillis: 1000},
	}
	tree.Connect(window, filter)

	sink := tree.AddNode(planmodel.KindSink)
	tree.Node(sink).Sink = &planmodel.SinkPayload{Desc: "out"}
	tree.Connect(sink, window)

	if err := tree.InferSchemas(planmodel.NodeIDSet{sink}); err != nil {
		t.Fatalf("InferSchemas: %v", err)
	}
	return tree, planmodel.NodeIDSet{sink}
}

func TestCompileSplitsAtWindowAndSink(t *testing.T) {
	tree, roots := buildLinearPlan(t)
	pipelines := Compile(tree, roots)

	// source+filter+window all chain into one pipeline (window is
	// appended as the pipeline's terminal "emit"), and a second,
	// separate pipeline starts fresh at the sink.
	if len(pipelines) != 2 {
		t.Fatalf("expected 2 pipelines, got %d", len(pipelines))
	}
	first := pipelines[0]
	if len(first.Ops) != 3 {
		t.Fatalf("expected first pipeline to hold source+filter+window, got %d ops", len(first.Ops))
	}
	second := pipelines[1]
	if len(second.Ops) != 1 || tree.Node(second.Ops[0]).Kind != planmodel.KindSink {
		t.Fatalf("expected second pipeline to be the lone sink, got %+v", second)
	}
	if len(second.Inputs) != 1 || second.Inputs[0] != first.ID {
		t.Fatalf("sink pipeline should take first pipeline as its sole input, got %+v", second.Inputs)
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	tree, roots := buildLinearPlan(t)
	a := Compile(tree, roots)
	b := Compile(tree, roots)
	if len(a) != len(b) {
		t.Fatalf("pipeline counts differ across runs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if len(a[i].Ops) != len(b[i].Ops) {
			t.Fatalf("pipeline %d op count differs across runs", i)
		}
		for j := range a[i].Ops {
			if a[i].Ops[j] != b[i].Ops[j] {
				t.Fatalf("pipeline %d op %d differs across runs", i, j)
			}
		}
	}
}

func TestLinearStageFiltersRows(t *testing.T) {
	tree, roots := buildLinearPlan(t)
	pipelines := Compile(tree, roots)
	first := pipelines[0]

	var emitted []tuple.Record
	stage := NewLinearStage(tree, first, func(r tuple.Record) error {
		emitted = append(emitted, r)
		return nil
	})
	if err := stage.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	buf := tuple.NewBuffer(tree.Node(first.Ops[0]).OutputSchema, 1, tuple.RowLayout)
	buf.Append(tuple.Record{tuple.FloatValue(planmodel.Float64, -1)}) // dropped by filter (0 < -1 is false)
	buf.Append(tuple.Record{tuple.FloatValue(planmodel.Float64, 5)})  // kept (0 < 5)

	status, err := stage.Execute(context.Background(), buf, 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if status != Ok {
		t.Fatalf("status = %v, want Ok", status)
	}
	if len(emitted) != 1 {
		t.Fatalf("expected exactly 1 row to survive the filter, got %d", len(emitted))
	}
	v, _ := emitted[0].Get(0)
	f, _ := v.AsFloat64()
	if f != 5 {
		t.Fatalf("unexpected surviving row: %+v", emitted[0])
	}
}
