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

package planmodel

import "fmt"

// ExprOp is the restricted expression vocabulary spec §4.1 requires
// operators be translatable into: {+,-,*,/,<,<=,=,and,or,not}.
type ExprOp int

const (
	OpIdent ExprOp = iota // leaf: a qualified column reference
	OpLit                 // leaf: a literal constant
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpLess
	OpLessEq
	OpEq
	OpAnd
	OpOr
	OpNot
)

var opNames = map[ExprOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/",
	OpLess: "<", OpLessEq: "<=", OpEq: "=",
	OpAnd: "and", OpOr: "or", OpNot: "not",
}

// Expr is a node in an expression tree over qualified column
// references and literal constants. It is intentionally tiny:
// everything a logical operator needs to express (filter predicates,
// map assignments, projection expressions, join predicates) reduces
// to this grammar, per spec §4.1.
type Expr struct {
	Op       ExprOp
	Ident    string  // valid when Op == OpIdent; a qualified column name
	Literal  float64 // valid when Op == OpLit
	IsString bool    // when true, Literal is unused and StringVal holds the constant
	StringVal string
	Args     []*Expr // operands, in order; len depends on Op (1 for Not, 2 otherwise)
}

// Ident constructs a column-reference leaf.
func Ident(name string) *Expr { return &Expr{Op: OpIdent, Ident: name} }

// LitFloat constructs a numeric literal leaf.
func LitFloat(v float64) *Expr { return &Expr{Op: OpLit, Literal: v} }

// LitString constructs a string literal leaf.
func LitString(v string) *Expr { return &Expr{Op: OpLit, IsString: true, StringVal: v} }

// Bin constructs a binary expression node.
func Bin(op ExprOp, lhs, rhs *Expr) *Expr { return &Expr{Op: op, Args: []*Expr{lhs, rhs}} }

// Unary constructs a unary expression node (only OpNot is unary).
func Unary(op ExprOp, arg *Expr) *Expr { return &Expr{Op: op, Args: []*Expr{arg}} }

// Columns appends every distinct qualified column name referenced by
// e (and its descendants) to out, in first-seen order.
func (e *Expr) Columns(out []string) []string {
	if e == nil {
		return out
	}
	if e.Op == OpIdent {
		for _, c := range out {
			if c == e.Ident {
				return out
			}
		}
		return append(out, e.Ident)
	}
	for _, a := range e.Args {
		out = a.Columns(out)
	}
	return out
}

// Rewrite returns a deep copy of e with every OpIdent leaf renamed
// according to rename (columns absent from rename are left as-is).
// No code in this module calls it; signature computation resolves
// Projection/Map renames with its own substitution instead.
func (e *Expr) Rewrite(rename map[string]string) *Expr {
	if e == nil {
		return nil
	}
	cp := &Expr{Op: e.Op, Ident: e.Ident, Literal: e.Literal, IsString: e.IsString, StringVal: e.StringVal}
	if e.Op == OpIdent {
		if to, ok := rename[e.Ident]; ok {
			cp.Ident = to
		}
	}
	for _, a := range e.Args {
		cp.Args = append(cp.Args, a.Rewrite(rename))
	}
	return cp
}

// Equal reports structural equality of two expression trees.
func (e *Expr) Equal(o *Expr) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.Op != o.Op || e.Ident != o.Ident || e.Literal != o.Literal ||
		e.IsString != o.IsString || e.StringVal != o.StringVal || len(e.Args) != len(o.Args) {
		return false
	}
	for i := range e.Args {
		if !e.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Op {
	case OpIdent:
		return e.Ident
	case OpLit:
		if e.IsString {
			return fmt.Sprintf("%q", e.StringVal)
		}
		return fmt.Sprintf("%g", e.Literal)
	case OpNot:
		return fmt.Sprintf("not(%s)", e.Args[0])
	default:
		return fmt.Sprintf("(%s %s %s)", e.Args[0], opNames[e.Op], e.Args[1])
	}
}
