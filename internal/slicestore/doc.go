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

// Package slicestore implements the per-key time-sliced partial
// state store of spec §4.6/§3 ("Slice Store (per key)"): an ordered
// sequence of non-overlapping slices carrying either a keyed partial
// aggregate (internal/aggregation) or an append-list of raw records
// (internal/jointrigger), plus the three-watermark bookkeeping
// (lastWatermark, minWatermark, allMaxTs) that drives triggering and
// garbage collection.
//
// The store is generic over the slice payload type T so that the
// aggregation and join-trigger engines can each plug in their own
// per-slice state without this package depending on either: grounded
// on the teacher's own layered split between a generic hash
// infrastructure (vm/radix64.go) and the aggregation-specific layer
// built on top of it (vm/hash_aggregate.go).
package slicestore
