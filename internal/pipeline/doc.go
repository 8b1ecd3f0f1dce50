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

// Package pipeline implements C6: splitting a placed physical plan
// into linear pipelines at pipeline breakers (spec §4.6), compiling
// each pipeline into a Stage with the setup/execute/stop lifecycle,
// and the process-wide tuple buffer pool pipelines allocate from
// (spec §5's "Scheduling model" / "Buffer manager").
//
// Buffer pooling is grounded on vm/aligned-writer.go's calloc/free
// sync.Pool idiom, generalized from a single fixed size to the
// two-tier (pooled fixed-size, unpooled arbitrary-size) pool spec §5
// requires, with a buffered channel standing in for the condition
// variable the spec describes (the examples have no condition-variable
// pool to ground on; a channel-as-semaphore is the idiomatic Go
// equivalent).
package pipeline
