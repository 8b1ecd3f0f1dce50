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

package aggregation

import (
	"testing"

	"github.com/nebula-stream/nebula-core/internal/planmodel"
	"github.com/nebula-stream/nebula-core/internal/tuple"
)

func TestTableSumGroupsByKey(t *testing.T) {
	specs := []planmodel.AggSpec{{Kind: planmodel.AggSum, Field: "s$v", As: "sum_v"}}
	tbl := NewTable(specs, 4)

	rows := []struct {
		key string
		v   float64
	}{
		{"k1", 10}, {"k1", 20}, {"k2", 5}, {"k1", 30},
	}
	for _, r := range rows {
		rec := tuple.Record{tuple.FloatValue(planmodel.Float64, r.v)}
		tbl.Lift([]byte(r.key), rec, []int{0})
	}

	if tbl.Len() != 2 {
		t.Fatalf("expected 2 distinct keys, got %d", tbl.Len())
	}
	got := map[string]float64{}
	tbl.ForEach(func(key []byte, states []State) {
		got[string(key)] = states[0].Sum
	})
	if got["k1"] != 60 {
		t.Errorf("k1 sum = %v, want 60", got["k1"])
	}
	if got["k2"] != 5 {
		t.Errorf("k2 sum = %v, want 5", got["k2"])
	}
}

func TestTableCombine(t *testing.T) {
	specs := []planmodel.AggSpec{{Kind: planmodel.AggCount}}
	a := NewTable(specs, 2)
	b := NewTable(specs, 2)
	a.Lift([]byte("k1"), tuple.Record{}, []int{-1})
	b.Lift([]byte("k1"), tuple.Record{}, []int{-1})
	b.Lift([]byte("k2"), tuple.Record{}, []int{-1})

	a.Combine(b)
	if a.Len() != 2 {
		t.Fatalf("expected 2 keys after combine, got %d", a.Len())
	}
	counts := map[string]int64{}
	a.ForEach(func(key []byte, states []State) { counts[string(key)] = states[0].Count })
	if counts["k1"] != 2 {
		t.Errorf("k1 count = %d, want 2", counts["k1"])
	}
	if counts["k2"] != 1 {
		t.Errorf("k2 count = %d, want 1", counts["k2"])
	}
}

func TestAvgDivideByZeroIsNull(t *testing.T) {
	v := Lower(planmodel.AggAvg, State{})
	if !v.Null {
		t.Errorf("avg of empty state should be null, got %v", v)
	}
}
