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
)

// SolverBackend decides whether lhs implies rhs (i.e. whether
// lhs ∧ ¬rhs is unsatisfiable), within the given timeout. Swapping in
// a real SMT solver means implementing this one method (spec §9).
type SolverBackend interface {
	CheckImplies(ctx context.Context, lhs, rhs *planmodel.Expr, timeout time.Duration) (bool, error)
}

// DefaultBackend decides implication by structural reasoning over the
// conjunction/disjunction tree, plus a restricted linear-arithmetic
// theory over single-variable bound atoms (`ident < lit`, `ident <=
// lit`, `ident = lit`, and their literal-on-the-left mirrors) — the
// slice of spec §3's "uninterpreted functions + linear arithmetic"
// theory needed to decide containment between two simple range
// filters on the same column, e.g. spec.md's containment-merge
// scenario ("id<45" implies "id<60"). Every other conjunct (source
// markers, window markers, multi-variable predicates) is still
// decided by structural presence, distributing correctly over OR:
// lhs implies rhs iff every conjunct of rhs (after flattening
// top-level ANDs) is either a bound atom whose interval is implied by
// the combined bound lhs places on the same ident, or is structurally
// present among lhs's conjuncts.
type DefaultBackend struct{}

// CheckImplies implements SolverBackend. The timeout argument bounds
// the wait through its own timer, and cancellation of ctx also ends
// the wait; spec §4.2 requires a default 1s timeout applied by the
// caller (see Check).
func (DefaultBackend) CheckImplies(ctx context.Context, lhs, rhs *planmodel.Expr, timeout time.Duration) (bool, error) {
	done := make(chan bool, 1)
	go func() { done <- implies(lhs, rhs) }()
	select {
	case v := <-done:
		return v, nil
	case <-time.After(timeout):
		return false, &engine.SMTTimeoutError{Elapsed: timeout.String()}
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// implies decides lhs => rhs, combining structural matching with
// linear-arithmetic bound reasoning (see DefaultBackend's doc comment).
func implies(lhs, rhs *planmodel.Expr) bool {
	if lhs.Equal(rhs) {
		return true
	}
	switch rhs.Op {
	case planmodel.OpAnd:
		return implies(lhs, rhs.Args[0]) && implies(lhs, rhs.Args[1])
	case planmodel.OpOr:
		return implies(lhs, rhs.Args[0]) || implies(lhs, rhs.Args[1])
	}
	lhsAtoms := conjuncts(lhs)
	if rb, ok := asBound(rhs); ok {
		if lb, ok := combinedBound(lhsAtoms, rb.ident); ok {
			return lb.implies(rb)
		}
		return false
	}
	for _, c := range lhsAtoms {
		if c.Equal(rhs) {
			return true
		}
	}
	switch lhs.Op {
	case planmodel.OpOr:
		// lhs = A or B implies rhs only if both disjuncts do.
		return implies(lhs.Args[0], rhs) && implies(lhs.Args[1], rhs)
	}
	return false
}

// conjuncts flattens a tree of nested top-level ANDs into a slice of
// leaves/subformulas.
func conjuncts(e *planmodel.Expr) []*planmodel.Expr {
	if e.Op == planmodel.OpAnd {
		return append(conjuncts(e.Args[0]), conjuncts(e.Args[1])...)
	}
	return []*planmodel.Expr{e}
}

// bound is a one-variable linear-arithmetic range constraint:
// lower (op) ident (op) upper, with each side optional and its own
// inclusivity flag. A single comparison atom sets only one side
// (OpEq sets both, to the same point).
type bound struct {
	ident                string
	hasLower, hasUpper   bool
	lower, upper         float64
	lowerIncl, upperIncl bool
}

// asBound recognizes e as a single-variable comparison atom
// (`ident < lit`, `lit <= ident`, `ident = lit`, …) and returns its
// bound form. Multi-variable or non-arithmetic atoms return ok=false
// and fall back to structural matching in implies.
func asBound(e *planmodel.Expr) (bound, bool) {
	if e == nil || len(e.Args) != 2 {
		return bound{}, false
	}
	switch e.Op {
	case planmodel.OpLess, planmodel.OpLessEq, planmodel.OpEq:
	default:
		return bound{}, false
	}
	l, r := e.Args[0], e.Args[1]
	switch {
	case l.Op == planmodel.OpIdent && r.Op == planmodel.OpLit && !r.IsString:
		return boundFromOp(e.Op, l.Ident, r.Literal, true), true
	case r.Op == planmodel.OpIdent && l.Op == planmodel.OpLit && !l.IsString:
		return boundFromOp(e.Op, r.Ident, l.Literal, false), true
	default:
		return bound{}, false
	}
}

// boundFromOp builds the one-sided bound a comparison op+literal
// implies, depending on whether the identifier was the left or right
// operand (e.g. "ident < lit" bounds ident from above; "lit < ident"
// bounds it from below).
func boundFromOp(op planmodel.ExprOp, ident string, lit float64, identOnLeft bool) bound {
	b := bound{ident: ident}
	switch op {
	case planmodel.OpEq:
		b.hasLower, b.lower, b.lowerIncl = true, lit, true
		b.hasUpper, b.upper, b.upperIncl = true, lit, true
	case planmodel.OpLess:
		if identOnLeft {
			b.hasUpper, b.upper, b.upperIncl = true, lit, false
		} else {
			b.hasLower, b.lower, b.lowerIncl = true, lit, false
		}
	case planmodel.OpLessEq:
		if identOnLeft {
			b.hasUpper, b.upper, b.upperIncl = true, lit, true
		} else {
			b.hasLower, b.lower, b.lowerIncl = true, lit, true
		}
	}
	return b
}

// combinedBound intersects every bound atom in atoms that constrains
// ident into a single tightest bound (the conjunction of however many
// range constraints a formula places on that one variable). ok is
// false if no atom in atoms constrains ident at all.
func combinedBound(atoms []*planmodel.Expr, ident string) (bound, bool) {
	out := bound{ident: ident}
	found := false
	for _, a := range atoms {
		b, ok := asBound(a)
		if !ok || b.ident != ident {
			continue
		}
		found = true
		if b.hasLower && (!out.hasLower || b.lower > out.lower || (b.lower == out.lower && !b.lowerIncl)) {
			out.hasLower, out.lower, out.lowerIncl = true, b.lower, b.lowerIncl
		}
		if b.hasUpper && (!out.hasUpper || b.upper < out.upper || (b.upper == out.upper && !b.upperIncl)) {
			out.hasUpper, out.upper, out.upperIncl = true, b.upper, b.upperIncl
		}
	}
	return out, found
}

// implies reports whether every value satisfying bound b also
// satisfies bound o, checking whichever side(s) o constrains.
func (b bound) implies(o bound) bool {
	if o.hasUpper && (!b.hasUpper || !sideImplies(b.upper, b.upperIncl, o.upper, o.upperIncl, true)) {
		return false
	}
	if o.hasLower && (!b.hasLower || !sideImplies(b.lower, b.lowerIncl, o.lower, o.lowerIncl, false)) {
		return false
	}
	return true
}

// sideImplies decides, for one side (upper or lower) of a bound, that
// constraint a implies constraint b. For an upper bound "x < a"
// implying "x < b": true iff a <= b, except when a == b and a is
// non-strict while b is strict (x=a would satisfy a but not b). Lower
// bounds are the mirror image.
func sideImplies(a float64, aIncl bool, b float64, bIncl bool, upper bool) bool {
	if upper {
		if a < b {
			return true
		}
	} else if a > b {
		return true
	}
	if a == b {
		return bIncl || !aIncl
	}
	return false
}
