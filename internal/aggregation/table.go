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
	"bytes"
	"math/bits"

	"github.com/dchest/siphash"

	"github.com/nebula-stream/nebula-core/internal/planmodel"
	"github.com/nebula-stream/nebula-core/internal/tuple"
)

// hashKey0/hashKey1 key the siphash used for bucket placement; a fixed seed
// is fine since Table never persists across process restarts and
// does not need collision resistance against an adversary (spec §3
// describes this only as an internal grouping structure).
const hashKey0, hashKey1 = 0x6e65627500000001, 0x756c6173740000ff

func hashKey(key []byte) uint64 {
	return siphash.Hash(hashKey0, hashKey1, key)
}

// entry is one hash-map slot: spec §3's "(hash, key-bytes,
// value-memory-area, next-pointer)", with next as a slab index
// (spec §9: "indices, not owning [pointers]") rather than a pointer
// so the entries slab can grow via append without invalidating
// existing chains.
type entry struct {
	hash   uint64
	key    []byte
	states []State
	next   int32
}

const noEntry int32 = -1

// Table is the per-slice, per-worker-thread chained hash map of
// spec §4.7: "chained, power-of-two bucket count, entries carved
// from a paged slab." Bucket count is fixed at creation time
// (sized to expectedKeys*2) and never rehashed during lift, per
// spec's load-factor policy.
type Table struct {
	Specs   []planmodel.AggSpec
	buckets []int32 // bucket -> head entry index, or noEntry
	mask    uint64
	entries []entry
}

// NewTable returns an empty Table for the given aggregation specs,
// pre-sized for expectedKeys distinct keys.
func NewTable(specs []planmodel.AggSpec, expectedKeys int) *Table {
	if expectedKeys < 1 {
		expectedKeys = 1
	}
	bucketCount := nextPow2(uint64(expectedKeys) * 2)
	buckets := make([]int32, bucketCount)
	for i := range buckets {
		buckets[i] = noEntry
	}
	return &Table{
		Specs:   specs,
		buckets: buckets,
		mask:    bucketCount - 1,
		entries: make([]entry, 0, expectedKeys),
	}
}

func nextPow2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << uint(64-bits.LeadingZeros64(n-1))
}

func (t *Table) bucketOf(hash uint64) int32 { return int32(hash & t.mask) }

// find walks the chain for hash/key, returning the entry index or
// (-1, false) if absent.
func (t *Table) find(hash uint64, key []byte) (int32, bool) {
	idx := t.buckets[t.bucketOf(hash)]
	for idx != noEntry {
		e := &t.entries[idx]
		if e.hash == hash && bytes.Equal(e.key, key) {
			return idx, true
		}
		idx = e.next
	}
	return -1, false
}

// insert appends a fresh zero-valued entry for hash/key and links it
// at the head of its bucket's chain (spec §4.7 "else insert").
func (t *Table) insert(hash uint64, key []byte) int32 {
	states := make([]State, len(t.Specs))
	for i, spec := range t.Specs {
		states[i] = Zero(spec.Kind)
	}
	kcopy := append([]byte(nil), key...)
	t.entries = append(t.entries, entry{hash: hash, key: kcopy, states: states, next: t.buckets[t.bucketOf(hash)]})
	idx := int32(len(t.entries) - 1)
	t.buckets[t.bucketOf(hash)] = idx
	return idx
}

// Lift implements spec §4.7's lift(record, ctx): find-or-create the
// entry for key, then fold rec's aggregated fields (located by
// fieldIdxs, parallel to t.Specs; -1 means COUNT(*)) into its
// per-spec states.
func (t *Table) Lift(key []byte, rec tuple.Record, fieldIdxs []int) {
	h := hashKey(key)
	idx, ok := t.find(h, key)
	if !ok {
		idx = t.insert(h, key)
	}
	e := &t.entries[idx]
	for i, spec := range t.Specs {
		e.states[i] = LiftRecord(spec.Kind, e.states[i], rec, fieldIdxs[i])
	}
}

// Combine merges other into t, applying Combine per spec to any key
// present in both tables and inserting a copy of any key present only
// in other (spec §4.7 "combine(entryA, entryB)" lifted to whole
// tables, used when two worker threads' per-slice Tables for the
// same slice must be merged into one).
func (t *Table) Combine(other *Table) {
	for _, oe := range other.entries {
		idx, ok := t.find(oe.hash, oe.key)
		if !ok {
			idx = t.insert(oe.hash, oe.key)
		}
		e := &t.entries[idx]
		for i, spec := range t.Specs {
			e.states[i] = Combine(spec.Kind, e.states[i], oe.states[i])
		}
	}
}

// ForEach visits every distinct key currently held in the table along
// with its per-spec states, in entry-insertion order.
func (t *Table) ForEach(fn func(key []byte, states []State)) {
	for _, e := range t.entries {
		fn(e.key, e.states)
	}
}

// Len returns the number of distinct keys currently held.
func (t *Table) Len() int { return len(t.entries) }
