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
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/nebula-stream/nebula-core/internal/planmodel"
	"github.com/nebula-stream/nebula-core/internal/wire"
)

// Engine supplies the payload-specific operations a Store needs but
// does not itself know about: constructing fresh per-slice state,
// folding one input record into it (lift), merging two slices'
// states that belong to the same triggered window (combine), and
// projecting a final state into output records (lower). Aggregation
// stores and join stores each provide their own Engine (spec §4.7,
// §4.8) over the same generic Store machinery.
type Engine[T any] interface {
	New(start, end int64) T
	Lift(state T, originID uint64, ts int64, payload any) T
	Combine(a, b T) T
	Lower(key string, start, end int64, state T) any
}

// keyState is one key's slice list plus its watermark bookkeeping
// (spec §3 Slice Store). Trigger evaluation holds mu for the duration
// of emission (spec §5: "Trigger evaluation takes the key's mutex for
// the duration of emission").
type keyState[T any] struct {
	mu             sync.Mutex
	slices         []*Slice[T]
	lastWatermark  int64
	triggered      bool // lastWatermark has been set by Trigger/AdvanceWatermark
	perOriginWm    map[uint64]int64
	perOriginMaxTs map[uint64]int64
	minWatermark   int64
}

// Store is a keyed collection of per-key slice states (spec §3/§4.6).
// Keys are looked up in a concurrent map since distinct keys' state
// is independent (spec §5: "each key's state is guarded by a per-key
// mutex").
type Store[T any] struct {
	Window planmodel.WindowSpec
	Eng    Engine[T]

	keys *xsync.Map[string, *keyState[T]]

	lateRecords atomic.Int64

	// DebugLog, if set, receives one entry per triggered window (spec
	// §5's optional "(opId, sliceStart, sliceEnd, partialAggBytes)"
	// trace). Left nil, it costs nothing; the core never reads it back.
	DebugLog *wire.DebugLog
	OpID     string
}

// New returns an empty Store for the given window shape and Engine.
func New[T any](window planmodel.WindowSpec, eng Engine[T]) *Store[T] {
	return &Store[T]{
		Window: window,
		Eng:    eng,
		keys:   xsync.NewMap[string, *keyState[T]](),
	}
}

// LateRecords returns the number of inserts dropped because their
// timestamp was not after the key's lastWatermark (spec §7
// LateRecord, §8 scenario 6).
func (s *Store[T]) LateRecords() int64 { return s.lateRecords.Load() }

func (s *Store[T]) state(key string) *keyState[T] {
	ks, _ := s.keys.LoadOrCompute(key, func() (*keyState[T], bool) {
		return &keyState[T]{
			perOriginWm:    map[uint64]int64{},
			perOriginMaxTs: map[uint64]int64{},
		}, false
	})
	return ks
}

// Insert implements spec §4.6's insert(key, ts, payload, originId).
// Once the key has triggered, a record whose ts is not after its
// lastWatermark is a late record: it is dropped and counted rather
// than applied (spec §7 / §8 scenario 6), since the window it would
// belong to has already triggered. Before the first trigger no record
// is late.
func (s *Store[T]) Insert(key string, ts int64, originID uint64, payload any) {
	ks := s.state(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()

	if ks.triggered && ts <= ks.lastWatermark {
		s.lateRecords.Add(1)
		return
	}
	if ts > ks.perOriginMaxTs[originID] {
		ks.perOriginMaxTs[originID] = ts
	}

	sl := ks.findOrCreateSlice(s.Window, ts)
	sl.State = s.Eng.Lift(sl.State, originID, ts, payload)
}

// findOrCreateSlice locates (creating if absent) the slice covering
// ts, keeping ks.slices ordered by Start (spec §3 invariant).
func (ks *keyState[T]) findOrCreateSlice(w planmodel.WindowSpec, ts int64) *Slice[T] {
	start, end := sliceBounds(w, ts)
	i := sort.Search(len(ks.slices), func(i int) bool { return ks.slices[i].Start >= start })
	if i < len(ks.slices) && ks.slices[i].Start == start {
		return ks.slices[i]
	}
	sl := &Slice[T]{Start: start, End: end}
	ks.slices = append(ks.slices, nil)
	copy(ks.slices[i+1:], ks.slices[i:])
	ks.slices[i] = sl
	return sl
}

// UpdateWatermark implements spec §4.6's updateWatermark(originId,
// watermark) for a single key: sets that key's per-origin watermark,
// recomputes its minWatermark as the min across reporting origins,
// and reports whether it advanced (the caller,
// e.g. internal/pipeline, enqueues a trigger event on advance).
func (s *Store[T]) UpdateWatermark(key string, originID uint64, watermark int64) (advanced bool, newMin int64) {
	ks := s.state(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()

	ks.perOriginWm[originID] = watermark
	min := watermark
	for _, wm := range ks.perOriginWm {
		if wm < min {
			min = wm
		}
	}
	advanced = min > ks.minWatermark
	ks.minWatermark = min
	return advanced, min
}

// Trigger implements spec §4.6's trigger(fromWm, toWm, emit): for
// every window fully closed by the advance from fromWm to toWm,
// combine its covering slices, lower the merged state, and hand the
// result to emit, in non-decreasing window.start order (spec §4.6
// "Ordering guarantees"). lastWatermark is advanced to toWm.
func (s *Store[T]) Trigger(key string, fromWm, toWm int64, emit func(start, end int64, result any)) {
	ks := s.state(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()

	for _, end := range windowEndsIn(s.Window, fromWm, toWm) {
		start := windowStart(s.Window, end)
		merged, ok := ks.combineWindow(s.Eng, start, end)
		if !ok {
			continue
		}
		result := s.Eng.Lower(key, start, end, merged)
		if s.DebugLog != nil {
			_ = s.DebugLog.WriteEntry(s.OpID, start, end, []byte(fmt.Sprintf("%v", merged)))
		}
		emit(start, end, result)
	}
	ks.lastWatermark = toWm
	ks.triggered = true
}

// combineWindow folds every slice s with start>=windowStart and
// end<=windowEnd into one state via Eng.Combine.
func (ks *keyState[T]) combineWindow(eng Engine[T], windowStart, windowEnd int64) (T, bool) {
	var merged T
	found := false
	for _, sl := range ks.slices {
		if sl.Start < windowStart || sl.End > windowEnd {
			continue
		}
		if !found {
			merged = sl.State
			found = true
			continue
		}
		merged = eng.Combine(merged, sl.State)
	}
	return merged, found
}

// AdvanceWatermark sets key's lastWatermark to toWm without combining
// or emitting any window (spec §4.6's trigger normally folds these
// together; internal/jointrigger's cartesian-product mode needs to
// advance every key's lastWatermark independently of the cross-key
// result it computes itself via AllInRange).
func (s *Store[T]) AdvanceWatermark(key string, toWm int64) {
	ks := s.state(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.lastWatermark = toWm
	ks.triggered = true
}

// GC implements spec §4.6's gc(toWm, slide): drop slices with
// end-ts <= toWm - slide.
func (s *Store[T]) GC(key string, toWm int64) {
	ks := s.state(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()

	slide := s.Window.SlideMillis
	if slide <= 0 {
		slide = s.Window.SizeMillis
	}
	threshold := toWm - slide
	kept := ks.slices[:0]
	for _, sl := range ks.slices {
		if sl.End > threshold {
			kept = append(kept, sl)
		}
	}
	ks.slices = kept
}

// SlicesInRange returns the per-slice states of every slice for key
// fully contained in [start, end), without combining them — used by
// internal/jointrigger, which needs each side's raw per-slice record
// lists rather than a single Engine.Combine-folded result.
func (s *Store[T]) SlicesInRange(key string, start, end int64) []T {
	ks := s.state(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()
	var out []T
	for _, sl := range ks.slices {
		if sl.Start >= start && sl.End <= end {
			out = append(out, sl.State)
		}
	}
	return out
}

// AllInRange returns the per-slice states of every slice across every
// key fully contained in [start, end), for cartesian-product joins
// that ignore the grouping key (spec §4.8 step 3).
func (s *Store[T]) AllInRange(start, end int64) []T {
	var out []T
	for _, k := range s.Keys() {
		out = append(out, s.SlicesInRange(k, start, end)...)
	}
	return out
}

// MinWatermark returns the key's current minWatermark (min across the
// origins that have reported for this key).
func (s *Store[T]) MinWatermark(key string) int64 {
	ks := s.state(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.minWatermark
}

// GlobalMinWatermark returns the minimum minWatermark across every
// key currently tracked, for callers (internal/jointrigger's
// cartesian-product mode) that need a single store-wide watermark
// rather than one per key. ok is false if no key has been seen yet.
func (s *Store[T]) GlobalMinWatermark() (wm int64, ok bool) {
	keys := s.Keys()
	if len(keys) == 0 {
		return 0, false
	}
	for i, k := range keys {
		m := s.MinWatermark(k)
		if i == 0 || m < wm {
			wm = m
		}
	}
	return wm, true
}

// WindowEndsIn exposes windowEndsIn for use by packages (e.g.
// internal/jointrigger) that drive their own cross-store trigger
// logic instead of calling Store.Trigger directly.
func (s *Store[T]) WindowEndsIn(fromWm, toWm int64) []int64 {
	return windowEndsIn(s.Window, fromWm, toWm)
}

// WindowStart exposes windowStart for the same reason as WindowEndsIn.
func (s *Store[T]) WindowStart(end int64) int64 {
	return windowStart(s.Window, end)
}

// Keys returns every key currently tracked by the store.
func (s *Store[T]) Keys() []string {
	var out []string
	s.keys.Range(func(k string, _ *keyState[T]) bool {
		out = append(out, k)
		return true
	})
	return out
}

// LastWatermark returns the key's current lastWatermark (spec §8:
// "lastWatermark is non-decreasing per store").
func (s *Store[T]) LastWatermark(key string) int64 {
	ks := s.state(key)
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.lastWatermark
}
