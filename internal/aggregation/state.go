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
	"math"

	"github.com/nebula-stream/nebula-core/internal/planmodel"
	"github.com/nebula-stream/nebula-core/internal/tuple"
)

// State is the fixed-size per-key-per-slice aggregate blob of spec
// §3: "layout is {count}, {sum}, {min}, {max}, or {sum,count} for
// avg." Seen tracks whether any value has been lifted yet, so that
// Min/Max start unbounded rather than at a sentinel zero.
type State struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Seen  bool
}

// Zero returns the identity State for kind: the state that Combine
// leaves unchanged when merged with any other state.
func Zero(kind planmodel.AggKind) State {
	switch kind {
	case planmodel.AggMin:
		return State{Min: math.Inf(1)}
	case planmodel.AggMax:
		return State{Max: math.Inf(-1)}
	default:
		return State{}
	}
}

// Lift folds one input value into state under kind (spec §4.7:
// "compute hash over key-columns; walk chain; if key matches, merge
// value; else insert"). v is ignored for AggCount.
func Lift(kind planmodel.AggKind, state State, v float64, null bool) State {
	switch kind {
	case planmodel.AggCount:
		if !null {
			state.Count++
		}
		return state
	case planmodel.AggSum:
		if !null {
			state.Sum += v
		}
		return state
	case planmodel.AggMin:
		if !null {
			if !state.Seen || v < state.Min {
				state.Min = v
			}
			state.Seen = true
		}
		return state
	case planmodel.AggMax:
		if !null {
			if !state.Seen || v > state.Max {
				state.Max = v
			}
			state.Seen = true
		}
		return state
	case planmodel.AggAvg:
		if !null {
			state.Sum += v
			state.Count++
		}
		return state
	default:
		return state
	}
}

// LiftRecord extracts the aggregated field from rec at fieldIdx and
// lifts it into state; for COUNT(*) (fieldIdx < 0) it lifts a 0 value,
// which COUNT ignores.
func LiftRecord(kind planmodel.AggKind, state State, rec tuple.Record, fieldIdx int) State {
	if kind == planmodel.AggCount && fieldIdx < 0 {
		return Lift(kind, state, 0, false)
	}
	val, ok := rec.Get(fieldIdx)
	if !ok {
		return Lift(kind, state, 0, true)
	}
	v, ok := val.AsFloat64()
	return Lift(kind, state, v, val.Null || !ok)
}

// Combine merges two per-slice states for the same key under kind
// (spec §4.7: "combine(entryA, entryB): per-aggregation associative
// combine").
func Combine(kind planmodel.AggKind, a, b State) State {
	switch kind {
	case planmodel.AggCount:
		return State{Count: a.Count + b.Count}
	case planmodel.AggSum:
		return State{Sum: a.Sum + b.Sum}
	case planmodel.AggMin:
		if !a.Seen {
			return b
		}
		if !b.Seen {
			return a
		}
		m := a.Min
		if b.Min < m {
			m = b.Min
		}
		return State{Min: m, Seen: true}
	case planmodel.AggMax:
		if !a.Seen {
			return b
		}
		if !b.Seen {
			return a
		}
		m := a.Max
		if b.Max > m {
			m = b.Max
		}
		return State{Max: m, Seen: true}
	case planmodel.AggAvg:
		return State{Sum: a.Sum + b.Sum, Count: a.Count + b.Count}
	default:
		return a
	}
}

// Lower projects a final State into its output value (spec §4.7:
// "lower(entry, out-schema): write [window-start, window-end,
// key..., agg...]"). For AggAvg, the divide-by-zero policy is to
// emit null when count == 0 (spec §4.7).
func Lower(kind planmodel.AggKind, state State) tuple.Value {
	switch kind {
	case planmodel.AggCount:
		return tuple.IntValue(planmodel.Int64, state.Count)
	case planmodel.AggSum:
		return tuple.FloatValue(planmodel.Float64, state.Sum)
	case planmodel.AggMin:
		if !state.Seen {
			return tuple.NullValue(planmodel.Float64)
		}
		return tuple.FloatValue(planmodel.Float64, state.Min)
	case planmodel.AggMax:
		if !state.Seen {
			return tuple.NullValue(planmodel.Float64)
		}
		return tuple.FloatValue(planmodel.Float64, state.Max)
	case planmodel.AggAvg:
		if state.Count == 0 {
			return tuple.NullValue(planmodel.Float64)
		}
		return tuple.FloatValue(planmodel.Float64, state.Sum/float64(state.Count))
	default:
		return tuple.NullValue(planmodel.Float64)
	}
}
