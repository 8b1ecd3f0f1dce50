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

import "github.com/nebula-stream/nebula-core/internal/planmodel"

// Slice is a minimal time-range unit (spec §3: "start-ts < end-ts;
// within a store, slices are non-overlapping and ordered by
// start-ts"). State holds the slice's partial aggregate or raw-record
// append-list, depending on which engine owns the store.
type Slice[T any] struct {
	Start, End int64
	State      T
}

// unitMillis is the length of one slice: for tumbling windows this is
// the window size, and for sliding windows it is the slide, so that
// "any window = union of slides" (spec §4.6 step 1).
func unitMillis(w planmodel.WindowSpec) int64 {
	if w.Type == planmodel.Tumbling {
		return w.SizeMillis
	}
	if w.SlideMillis <= 0 {
		return w.SizeMillis
	}
	return w.SlideMillis
}

// sliceBounds returns the [start, end) bounds of the unit slice that
// ts falls into, for the given window spec.
func sliceBounds(w planmodel.WindowSpec, ts int64) (start, end int64) {
	u := unitMillis(w)
	if u <= 0 {
		u = 1
	}
	idx := ts / u
	if ts < 0 && ts%u != 0 {
		idx--
	}
	start = idx * u
	end = start + u
	return
}

// windowEndsIn returns the end timestamps of every complete window
// (aligned to the slide grid) with end-ts in (fromWm, toWm], per
// spec §4.6's trigger step: "compute the set of windows W whose
// end-ts ∈ (fromWm, toWm]". For tumbling windows a window is exactly
// one slice, so the grid is the slice grid itself.
func windowEndsIn(w planmodel.WindowSpec, fromWm, toWm int64) []int64 {
	u := unitMillis(w)
	if u <= 0 {
		return nil
	}
	var ends []int64
	first := fromWm/u + 1
	if fromWm < 0 && fromWm%u != 0 {
		first = fromWm / u
	}
	for end := first * u; end <= toWm; end += u {
		if end > fromWm {
			ends = append(ends, end)
		}
	}
	return ends
}

// windowStart returns the start of the window ending at end, per the
// window's size (possibly spanning several slide units for a sliding
// window, spec §4.6/§8: "ts is covered by exactly ceil(size/slide)
// slides").
func windowStart(w planmodel.WindowSpec, end int64) int64 {
	return end - w.SizeMillis
}
