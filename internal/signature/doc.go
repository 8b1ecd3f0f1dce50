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

// Package signature computes per-operator algebraic signatures
// (spec component C2): a logical formula over a free column space
// plus a column map from output columns to formula terms. Signatures
// are what internal/containment compares to decide query equivalence
// and containment.
//
// Computation walks a planmodel.Tree bottom-up, exactly mirroring the
// per-kind rules of spec §4.1. The translation target is the
// planmodel.Expr grammar, which was deliberately restricted to
// {+,-,*,/,<,<=,=,and,or,not} so it doubles as the signature formula
// language (spec §4.1 "Expressions are translated into the SMT
// vocabulary").
package signature
