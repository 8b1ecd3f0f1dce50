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

// Package jointrigger implements the window-aligned join of spec
// §4.8: two internal/slicestore stores (left and right), each storing
// raw append-lists of records per window per key, combined into
// result tuples on watermark advance. It is grounded on vm/cross.go's
// two-sided table shape (CrossJoin's lhs/rhs bindings), generalized
// from a single one-shot cross product into a per-window, per-key
// triggered cross product driven by the shared slicestore machinery.
package jointrigger
