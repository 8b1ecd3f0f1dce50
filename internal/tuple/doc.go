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

// Package tuple models the tuple-buffer format of spec §6 (a header
// {numTuples, originId, watermark, sequenceNumber} plus a row-layout
// or column-layout payload) in decoded form, without packing it into a
// contiguous byte region, and the in-memory Record representation the
// execution packages (pipeline, slicestore, aggregation, jointrigger)
// pass between each other.
//
// The teacher's own row/column duality lives in vm/ as a compiled,
// SIMD-driven byte layout (vm/bytecode.go, vm/radix64.go); this
// package keeps the same two-layout idea but represents a decoded row
// as a plain Go Record rather than a raw byte slice, since the core's
// pipeline stages (internal/pipeline) are synchronous Go closures
// rather than generated machine code (spec §9: "the JIT language
// compiler back-end" is out of scope, specified only at its
// interface).
package tuple
