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

// Package aggregation implements the keyed aggregation engine of
// spec §4.7: a fixed-size per-key-per-slice State blob (count / sum /
// min / max / sum+count-for-avg) driven by the lift / combine / lower
// protocol, and Table, a chained hash map grouping many keys within a
// single worker thread's pass over one slice — sized once at creation
// to avoid rehashing during lift, entries carved from a growable slab
// and addressed by index rather than pointer, directly grounded on
// the teacher's vm/radix64.go / vm/hash_aggregate.go pairing.
//
// State is also usable on its own as a slicestore.Store per-slice
// payload (spec §3 "Slice Store (per key)" / §4.6 "Apply
// lift(payload) to the slice's partial aggregate"). Table and
// slicestore.Store are independent: no code in this module moves
// Table entries into a Store.
package aggregation
