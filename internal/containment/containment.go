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

package containment

import (
	"context"
	"time"

	"github.com/nebula-stream/nebula-core/internal/engine"
	"github.com/nebula-stream/nebula-core/internal/planmodel"
	"github.com/nebula-stream/nebula-core/internal/signature"
)

// Verdict is the outcome of comparing two signatures (spec §4.2).
type Verdict int

const (
	NoContainment Verdict = iota
	Equal
	LeftContainsRight
	RightContainsLeft
)

func (v Verdict) String() string {
	switch v {
	case Equal:
		return "Equal"
	case LeftContainsRight:
		return "LeftContainsRight"
	case RightContainsLeft:
		return "RightContainsLeft"
	default:
		return "NoContainment"
	}
}

// DefaultTimeout is the per-call solver timeout mandated by spec §4.2
// and §5 ("SMT solver per-call 1 s").
const DefaultTimeout = time.Second

// Checker decides containment between two signatures using a
// SolverBackend for the underlying implication questions.
type Checker struct {
	Backend SolverBackend
	Timeout time.Duration
}

// NewChecker returns a Checker using DefaultBackend and DefaultTimeout.
func NewChecker() *Checker {
	return &Checker{Backend: DefaultBackend{}, Timeout: DefaultTimeout}
}

// Check implements the procedure of spec §4.2 steps 1-4.
func (c *Checker) Check(ctx context.Context, s1, s2 *signature.Signature) Verdict {
	if windowsIncompatible(s1, s2) {
		return NoContainment
	}

	leftHasRightCols := canDerive(s1.ColumnMap, s2.ColumnMap)
	rightHasLeftCols := canDerive(s2.ColumnMap, s1.ColumnMap)
	if !leftHasRightCols && !rightHasLeftCols {
		// "Align column spaces; if columns cannot be matched, return
		// NoContainment" (spec §4.2 step 1).
		return NoContainment
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	backend := c.Backend
	if backend == nil {
		backend = DefaultBackend{}
	}

	firstValid := callImplies(ctx, backend, s1, s2, timeout)  // S1 => S2
	secondValid := callImplies(ctx, backend, s2, s1, timeout) // S2 => S1

	rightContainsLeft := firstValid && rightHasLeftCols
	leftContainsRight := secondValid && leftHasRightCols

	switch {
	case rightContainsLeft && leftContainsRight:
		return Equal
	case rightContainsLeft:
		return RightContainsLeft
	case leftContainsRight:
		return LeftContainsRight
	default:
		return NoContainment
	}
}

func callImplies(ctx context.Context, backend SolverBackend, from, to *signature.Signature, timeout time.Duration) bool {
	valid, err := backend.CheckImplies(ctx, from.Formula, to.Formula, timeout)
	if err != nil {
		if _, ok := err.(*engine.SMTTimeoutError); ok {
			engine.Logf("containment: solver timeout, treating as NoContainment")
		}
		// Any backend failure (timeout or otherwise) is an internal
		// signal, not a hard error: spec §4.2 step 4 and §7 both say
		// to treat it as NoContainment for that direction.
		return false
	}
	return valid
}

// windowsIncompatible implements spec §4.2's edge-case policy:
// windowed operators with different time-characteristics, size, or
// slide are never contained, and a windowed operator is never
// comparable to a non-windowed one.
func windowsIncompatible(s1, s2 *signature.Signature) bool {
	if s1.Window == nil && s2.Window == nil {
		return false
	}
	if (s1.Window == nil) != (s2.Window == nil) {
		return true
	}
	return !s1.Window.Equal(*s2.Window)
}

// canDerive reports whether every column container needs to expose to
// produce contained's output is present in container with an
// identical definition. Per spec §9's Open Question, column renaming
// is never treated as containment-preserving (conservative
// over-approximation): a column must appear under the exact same
// qualified name with a structurally equal definition to count.
//
// This also implements "Projections whose field is removed from the
// container's output disable containment" (spec §4.2): if contained
// references a column container dropped, canDerive(container,
// contained) returns false.
func canDerive(container, contained map[string]*planmodel.Expr) bool {
	for col, def := range contained {
		cdef, ok := container[col]
		if !ok || !cdef.Equal(def) {
			return false
		}
	}
	return true
}
