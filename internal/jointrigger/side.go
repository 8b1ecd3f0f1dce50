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
	"github.com/nebula-stream/nebula-core/internal/planmodel"
	"github.com/nebula-stream/nebula-core/internal/slicestore"
	"github.com/nebula-stream/nebula-core/internal/tuple"
)

// recordList is the per-slice payload a join side stores: a plain
// append-list of raw records (spec §3: "an append-list of raw
// records (for join stores)").
type recordList []tuple.Record

// recordEngine implements slicestore.Engine[recordList]: lift appends
// the incoming record, combine concatenates two lists (used when the
// equi-join path calls Store.Trigger, which merges a window's slices;
// the cartesian-product path reads slices uncombined via AllInRange).
type recordEngine struct{}

func (recordEngine) New(start, end int64) recordList { return nil }

func (recordEngine) Lift(state recordList, originID uint64, ts int64, payload any) recordList {
	return append(state, payload.(tuple.Record))
}

func (recordEngine) Combine(a, b recordList) recordList { return append(a, b...) }

func (recordEngine) Lower(key string, start, end int64, state recordList) any { return state }

// Side is one of the two join inputs: a slice store of raw records
// keyed by the join key, plus how to extract that key from a record.
type Side struct {
	Store  *slicestore.Store[recordList]
	Schema planmodel.Schema
	KeyOf  func(rec tuple.Record) string
}

// NewSide returns an empty Side for window w, whose records are keyed
// by keyOf.
func NewSide(w planmodel.WindowSpec, schema planmodel.Schema, keyOf func(tuple.Record) string) *Side {
	return &Side{
		Store:  slicestore.New[recordList](w, recordEngine{}),
		Schema: schema,
		KeyOf:  keyOf,
	}
}

// Insert implements spec §4.6's insert for a join side: resolves the
// record's key and event timestamp, then lifts it into the store.
func (s *Side) Insert(rec tuple.Record, ts int64, originID uint64) {
	s.Store.Insert(s.KeyOf(rec), ts, originID, rec)
}

// UpdateWatermark forwards to the underlying store for key.
func (s *Side) UpdateWatermark(key string, originID uint64, watermark int64) {
	s.Store.UpdateWatermark(key, originID, watermark)
}
