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
	"sync"

	"github.com/nebula-stream/nebula-core/internal/planmodel"
	"github.com/nebula-stream/nebula-core/internal/tuple"
)

// Mode selects the join's pairing rule (spec §4.8 step 3).
type Mode int

const (
	InnerEquiJoin Mode = iota
	CartesianProduct
)

// Result is one emitted join tuple: spec §4.8's "(w.start, w.end, k,
// l, r)".
type Result struct {
	Start, End int64
	Key        string // "" for CartesianProduct, which ignores the key
	Left       tuple.Record
	Right      tuple.Record
}

// defaultBufferCapacity bounds how many Results accumulate before a
// Trigger call flushes them early (spec §4.8 step 4: "flush on
// buffer-full and at the end").
const defaultBufferCapacity = 1024

// Join drives the watermark-triggered, window-aligned join of spec
// §4.8 over two Sides.
type Join struct {
	Left, Right    *Side
	Window         planmodel.WindowSpec
	Mode           Mode
	BufferCapacity int

	mu               sync.Mutex
	lastWatermark    map[string]int64
	firstObservedTs  int64
	haveFirstTs      bool
}

// NewJoin returns a Join over left/right under window w.
func NewJoin(left, right *Side, w planmodel.WindowSpec, mode Mode) *Join {
	return &Join{
		Left:           left,
		Right:          right,
		Window:         w,
		Mode:           mode,
		BufferCapacity: defaultBufferCapacity,
		lastWatermark:  map[string]int64{},
	}
}

// InsertLeft inserts rec into the left side and records it for the
// join's firstObservedTs bookkeeping (spec §9 Open Question: "this
// spec fixes initialization to max(0, firstObservedTs - windowSize)").
func (j *Join) InsertLeft(rec tuple.Record, ts int64, originID uint64) {
	j.observeTs(ts)
	j.Left.Insert(rec, ts, originID)
}

// InsertRight is InsertLeft's mirror for the right side.
func (j *Join) InsertRight(rec tuple.Record, ts int64, originID uint64) {
	j.observeTs(ts)
	j.Right.Insert(rec, ts, originID)
}

func (j *Join) observeTs(ts int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.haveFirstTs || ts < j.firstObservedTs {
		j.firstObservedTs = ts
		j.haveFirstTs = true
	}
}

// initialWatermark implements the Open Question fix: the first time a
// key (or, in CartesianProduct mode, the shared pseudo-key) is
// triggered, its lastWatermark starts at max(0, firstObservedTs -
// windowSize) rather than 0.
func (j *Join) initialWatermark() int64 {
	if !j.haveFirstTs {
		return 0
	}
	if w := j.firstObservedTs - j.Window.SizeMillis; w > 0 {
		return w
	}
	return 0
}

func (j *Join) lastWatermarkFor(key string) int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	wm, ok := j.lastWatermark[key]
	if !ok {
		wm = j.initialWatermark()
		j.lastWatermark[key] = wm
	}
	return wm
}

func (j *Join) setLastWatermark(key string, wm int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lastWatermark[key] = wm
}

// Trigger implements spec §4.8's watermark-tick procedure: it
// determines the triggerable windows from each relevant key's (or the
// shared pseudo-key's) current watermark state, emits result tuples
// via emit (called with bounded-size batches, spec step 4's "flush on
// buffer-full and at the end"), advances lastWatermark, and garbage
// collects slices that have aged out.
func (j *Join) Trigger(emit func([]Result)) {
	cap := j.BufferCapacity
	if cap < 1 {
		cap = defaultBufferCapacity
	}
	batch := make([]Result, 0, cap)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		emit(batch)
		batch = batch[:0]
	}

	if j.Mode == CartesianProduct {
		j.triggerCartesian(cap, &batch, flush)
		flush()
		return
	}

	for _, key := range intersect(j.Left.Store.Keys(), j.Right.Store.Keys()) {
		j.triggerKey(key, cap, &batch, flush)
	}
	flush()
}

// triggerKey triggers one join key's windows. It drives the
// underlying per-side stores through their own Trigger (rather than
// reading slices directly), so that each side's own per-key
// lastWatermark advances in step with the join's — exactly as it
// would if the side were triggering a plain aggregation, which is
// what makes a subsequent late record on either side get dropped and
// counted per spec §7/§8 scenario 6.
func (j *Join) triggerKey(key string, cap int, batch *[]Result, flush func()) {
	leftMin := j.Left.Store.MinWatermark(key)
	rightMin := j.Right.Store.MinWatermark(key)
	currentWm := minInt64(leftMin, rightMin)
	lastWm := j.lastWatermarkFor(key)

	type window struct{ start, end int64 }
	leftByWindow := map[window]recordList{}
	j.Left.Store.Trigger(key, lastWm, currentWm, func(start, end int64, result any) {
		leftByWindow[window{start, end}] = result.(recordList)
	})
	j.Right.Store.Trigger(key, lastWm, currentWm, func(start, end int64, result any) {
		rightRecs := result.(recordList)
		leftRecs := leftByWindow[window{start, end}]
		for _, la := range leftRecs {
			for _, rb := range rightRecs {
				*batch = append(*batch, Result{Start: start, End: end, Key: key, Left: la, Right: rb})
				if len(*batch) >= cap {
					flush()
				}
			}
		}
	})
	j.setLastWatermark(key, currentWm)
	j.Left.Store.GC(key, currentWm)
	j.Right.Store.GC(key, currentWm)
}

func (j *Join) triggerCartesian(cap int, batch *[]Result, flush func()) {
	const pseudoKey = ""
	leftMin, leftOK := j.Left.Store.GlobalMinWatermark()
	rightMin, rightOK := j.Right.Store.GlobalMinWatermark()
	if !leftOK || !rightOK {
		return
	}
	currentWm := minInt64(leftMin, rightMin)
	lastWm := j.lastWatermarkFor(pseudoKey)

	for _, end := range j.Left.Store.WindowEndsIn(lastWm, currentWm) {
		start := j.Left.Store.WindowStart(end)
		a := j.Left.Store.AllInRange(start, end)
		b := j.Right.Store.AllInRange(start, end)
		for _, as := range a {
			for _, la := range as {
				for _, bs := range b {
					for _, rb := range bs {
						*batch = append(*batch, Result{Start: start, End: end, Left: la, Right: rb})
						if len(*batch) >= cap {
							flush()
						}
					}
				}
			}
		}
	}
	j.setLastWatermark(pseudoKey, currentWm)

	for _, k := range j.Left.Store.Keys() {
		j.Left.Store.AdvanceWatermark(k, currentWm)
		j.Left.Store.GC(k, currentWm)
	}
	for _, k := range j.Right.Store.Keys() {
		j.Right.Store.AdvanceWatermark(k, currentWm)
		j.Right.Store.GC(k, currentWm)
	}
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, x := range b {
		set[x] = true
	}
	var out []string
	for _, x := range a {
		if set[x] {
			out = append(out, x)
		}
	}
	return out
}
