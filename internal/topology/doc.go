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

// Package topology implements the topology registry and placement
// engine (spec component C5): a graph of worker nodes with
// remaining-CPU capacity and directed links, plus the BottomUp
// placement strategy that assigns a Shared Query Plan's operators
// onto it (bottom-up from sources, pinning sinks to the root, and
// inserting forwarder operators across non-adjacent hosts).
//
// The node/link registry is read far more often than it is mutated
// (every placement candidate scan is a read), so it is backed by a
// concurrent map in the style of the topology-node-pool reference in
// the retrieval pack, rather than the single coarse mutex the teacher
// repo's tenant registry uses — see DESIGN.md.
package topology
