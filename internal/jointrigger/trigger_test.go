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

package jointrigger

import (
	"fmt"
	"testing"

	"github.com/nebula-stream/nebula-core/internal/planmodel"
	"github.com/nebula-stream/nebula-core/internal/tuple"
)

func keyOfFirstInt(rec tuple.Record) string {
	v, _ := rec.Get(0)
	i, _ := v.AsInt64()
	return fmt.Sprintf("%d", i)
}

func TestEquiJoinInnerScenario(t *testing.T) {
	w := planmodel.WindowSpec{Type: planmodel.Tumbling, SizeMillis: 1000, SlideMillis: 1000, TimeChar: planmodel.EventTime}

	left := NewSide(w, nil, keyOfFirstInt)
	right := NewSide(w, nil, keyOfFirstInt)
	j := NewJoin(left, right, w, InnerEquiJoin)

	rec := func(k, v int64) tuple.Record {
		return tuple.Record{tuple.IntValue(planmodel.Uint64, k), tuple.IntValue(planmodel.Uint64, v)}
	}
	j.InsertLeft(rec(1, 100), 100, 1)
	j.InsertLeft(rec(2, 200), 200, 1)
	j.InsertRight(rec(1, 11), 150, 1)
	j.InsertRight(rec(1, 12), 400, 1)

	left.UpdateWatermark("1", 1, 1000)
	left.UpdateWatermark("2", 1, 1000)
	right.UpdateWatermark("1", 1, 1000)

	var results []Result
	j.Trigger(func(batch []Result) { results = append(results, batch...) })

	if len(results) != 2 {
		t.Fatalf("expected 2 join results, got %d: %+v", len(results), results)
	}
	for _, r := range results {
		if r.Start != 0 || r.End != 1000 {
			t.Errorf("unexpected window bounds [%d,%d)", r.Start, r.End)
		}
		if r.Key != "1" {
			t.Errorf("unexpected join key %q", r.Key)
		}
	}
}

func TestCartesianJoinSymmetry(t *testing.T) {
	w := planmodel.WindowSpec{Type: planmodel.Tumbling, SizeMillis: 1000, SlideMillis: 1000, TimeChar: planmodel.EventTime}

	run := func(swap bool) int {
		left := NewSide(w, nil, keyOfFirstInt)
		right := NewSide(w, nil, keyOfFirstInt)
		j := NewJoin(left, right, w, CartesianProduct)
		a := tuple.Record{tuple.IntValue(planmodel.Uint64, 1)}
		b := tuple.Record{tuple.IntValue(planmodel.Uint64, 2)}
		if !swap {
			j.InsertLeft(a, 100, 1)
			j.InsertRight(b, 200, 1)
		} else {
			j.InsertLeft(b, 200, 1)
			j.InsertRight(a, 100, 1)
		}
		left.UpdateWatermark("1", 1, 1000)
		left.UpdateWatermark("2", 1, 1000)
		right.UpdateWatermark("1", 1, 1000)
		right.UpdateWatermark("2", 1, 1000)
		var n int
		j.Trigger(func(batch []Result) { n += len(batch) })
		return n
	}

	if a, b := run(false), run(true); a != b {
		t.Fatalf("cartesian join result count not symmetric under swap: %d vs %d", a, b)
	}
}

func TestJoinLateRecordCounted(t *testing.T) {
	w := planmodel.WindowSpec{Type: planmodel.Tumbling, SizeMillis: 1000, SlideMillis: 1000, TimeChar: planmodel.EventTime}
	left := NewSide(w, nil, keyOfFirstInt)

	rec := tuple.Record{tuple.IntValue(planmodel.Uint64, 1)}
	left.Insert(rec, 100, 1)
	left.UpdateWatermark("1", 1, 1000)
	left.Store.Trigger("1", 0, 1000, func(int64, int64, any) {})

	before := left.Store.LateRecords()
	left.Insert(rec, 50, 1) // ts <= lastWatermark(1000) => late
	if left.Store.LateRecords() != before+1 {
		t.Fatalf("expected late-record counter to increment")
	}
}
