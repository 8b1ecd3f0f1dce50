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

package slicestore

import (
	"bytes"
	"testing"

	"github.com/nebula-stream/nebula-core/internal/aggregation"
	"github.com/nebula-stream/nebula-core/internal/planmodel"
	"github.com/nebula-stream/nebula-core/internal/wire"
)

// sumEngine implements Engine[aggregation.State] for a single
// AggSum column, used to exercise spec.md scenario 2 (tumbling sum).
type sumEngine struct{}

func (sumEngine) New(start, end int64) aggregation.State { return aggregation.Zero(planmodel.AggSum) }
func (sumEngine) Lift(state aggregation.State, originID uint64, ts int64, payload any) aggregation.State {
	return aggregation.Lift(planmodel.AggSum, state, payload.(float64), false)
}
func (sumEngine) Combine(a, b aggregation.State) aggregation.State {
	return aggregation.Combine(planmodel.AggSum, a, b)
}
func (sumEngine) Lower(key string, start, end int64, state aggregation.State) any {
	return state.Sum
}

func TestTumblingSumScenario(t *testing.T) {
	w := planmodel.WindowSpec{Type: planmodel.Tumbling, SizeMillis: 1000, SlideMillis: 1000, TimeChar: planmodel.EventTime}
	s := New[aggregation.State](w, sumEngine{})

	s.Insert("1", 0, 1, float64(10))
	s.Insert("1", 500, 1, float64(20))
	s.Insert("2", 700, 1, float64(5))
	s.Insert("1", 1500, 1, float64(30))

	results := map[string]float64{}
	advanced, min := s.UpdateWatermark("1", 1, 1500)
	if !advanced || min != 1500 {
		t.Fatalf("watermark did not advance as expected: advanced=%v min=%v", advanced, min)
	}
	s.Trigger("1", 0, 1500, func(start, end int64, result any) {
		if start != 0 || end != 1000 {
			t.Errorf("unexpected window bounds [%d,%d)", start, end)
		}
		results["1"] = result.(float64)
	})

	s.UpdateWatermark("2", 1, 1500)
	s.Trigger("2", 0, 1500, func(start, end int64, result any) {
		results["2"] = result.(float64)
	})

	if results["1"] != 30 {
		t.Errorf("key 1 sum = %v, want 30", results["1"])
	}
	if results["2"] != 5 {
		t.Errorf("key 2 sum = %v, want 5", results["2"])
	}
}

func TestTriggerWritesOptionalDebugLog(t *testing.T) {
	w := planmodel.WindowSpec{Type: planmodel.Tumbling, SizeMillis: 1000, SlideMillis: 1000, TimeChar: planmodel.EventTime}
	s := New[aggregation.State](w, sumEngine{})
	s.OpID = "op-1"

	var out bytes.Buffer
	s.DebugLog = wire.NewDebugLog(&out)

	s.Insert("k", 0, 1, float64(10))
	s.UpdateWatermark("k", 1, 1000)
	s.Trigger("k", 0, 1000, func(start, end int64, result any) {})

	if err := s.DebugLog.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if out.Len() == 0 {
		t.Fatal("expected debug log to contain compressed trigger entries")
	}
}

func TestLateRecordDropped(t *testing.T) {
	w := planmodel.WindowSpec{Type: planmodel.Tumbling, SizeMillis: 1000, SlideMillis: 1000, TimeChar: planmodel.EventTime}
	s := New[aggregation.State](w, sumEngine{})

	s.Insert("k", 0, 1, float64(1))
	s.UpdateWatermark("k", 1, 1000)
	s.Trigger("k", 0, 1000, func(int64, int64, any) {})

	before := s.LateRecords()
	s.Insert("k", 800, 1, float64(99))
	if s.LateRecords() != before+1 {
		t.Fatalf("late record counter did not increment")
	}
}

func TestWatermarkMonotonic(t *testing.T) {
	w := planmodel.WindowSpec{Type: planmodel.Tumbling, SizeMillis: 1000, SlideMillis: 1000, TimeChar: planmodel.EventTime}
	s := New[aggregation.State](w, sumEngine{})
	s.UpdateWatermark("k", 1, 1000)
	if last := s.LastWatermark("k"); last != 0 {
		t.Fatalf("lastWatermark should only move via Trigger, got %d", last)
	}
	s.Trigger("k", 0, 1000, func(int64, int64, any) {})
	if s.LastWatermark("k") != 1000 {
		t.Fatalf("lastWatermark did not advance to 1000")
	}
}
