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

// Package containment implements the containment checker (spec
// component C3): given two signatures, decide Equal,
// LeftContainsRight, RightContainsLeft, or NoContainment.
//
// The implication test itself is delegated to a narrow SolverBackend
// interface (spec §9: "SMT interaction is encapsulated behind a
// narrow trait"), so the engine can swap in a real SMT solver without
// touching the rest of the containment logic. No SMT solver binding
// appears anywhere in the retrieval corpus this module was built
// from, so DefaultBackend implements the same implication question
// (is S1 ∧ ¬S2 unsatisfiable?) with structural reasoning over the
// restricted formula grammar instead — see DESIGN.md for the
// standard-library justification.
package containment
