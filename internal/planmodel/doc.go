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

// Package planmodel implements the logical plan model (spec component
// C1): an immutable DAG of logical operators over typed schemas.
//
// Following the note in spec §9, nodes do not hold owning pointers to
// their neighbors. Instead a Tree is an arena of Nodes addressed by
// NodeID (a plain index), and edges are (NodeID, NodeID) pairs. This
// mirrors the teacher's plan.Tree/plan.Node split, which holds
// Node.Children by value inside the owning Tree rather than via
// shared pointers.
package planmodel
