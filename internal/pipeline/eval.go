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

package pipeline

import (
	"fmt"

	"github.com/nebula-stream/nebula-core/internal/planmodel"
	"github.com/nebula-stream/nebula-core/internal/tuple"
)

// eval interprets e against rec using schema to resolve OpIdent leaves
// to field offsets. This is the pipeline's stand-in for the native
// code generation spec §1 places out of scope ("the JIT language
// compiler back-end"); the restricted expression vocabulary of
// internal/planmodel.Expr (spec §4.1) is small enough that a direct
// tree-walking evaluator is the whole of what codegen would produce
// anyway.
func eval(e *planmodel.Expr, schema planmodel.Schema, rec tuple.Record) (tuple.Value, error) {
	switch e.Op {
	case planmodel.OpIdent:
		idx := schema.IndexOf(e.Ident)
		if idx < 0 {
			return tuple.Value{}, fmt.Errorf("pipeline: unknown column %q", e.Ident)
		}
		v, ok := rec.Get(idx)
		if !ok {
			return tuple.Value{}, fmt.Errorf("pipeline: column %q index %d out of range", e.Ident, idx)
		}
		return v, nil
	case planmodel.OpLit:
		if e.IsString {
			return tuple.StringValue(e.StringVal), nil
		}
		return tuple.FloatValue(planmodel.Float64, e.Literal), nil
	case planmodel.OpNot:
		v, err := eval(e.Args[0], schema, rec)
		if err != nil {
			return tuple.Value{}, err
		}
		return tuple.BoolValue(!truthy(v)), nil
	case planmodel.OpAnd, planmodel.OpOr:
		lhs, err := eval(e.Args[0], schema, rec)
		if err != nil {
			return tuple.Value{}, err
		}
		rhs, err := eval(e.Args[1], schema, rec)
		if err != nil {
			return tuple.Value{}, err
		}
		if e.Op == planmodel.OpAnd {
			return tuple.BoolValue(truthy(lhs) && truthy(rhs)), nil
		}
		return tuple.BoolValue(truthy(lhs) || truthy(rhs)), nil
	default:
		return evalArith(e, schema, rec)
	}
}

func evalArith(e *planmodel.Expr, schema planmodel.Schema, rec tuple.Record) (tuple.Value, error) {
	lhs, err := eval(e.Args[0], schema, rec)
	if err != nil {
		return tuple.Value{}, err
	}
	rhs, err := eval(e.Args[1], schema, rec)
	if err != nil {
		return tuple.Value{}, err
	}
	l, _ := lhs.AsFloat64()
	r, _ := rhs.AsFloat64()
	switch e.Op {
	case planmodel.OpAdd:
		return tuple.FloatValue(planmodel.Float64, l+r), nil
	case planmodel.OpSub:
		return tuple.FloatValue(planmodel.Float64, l-r), nil
	case planmodel.OpMul:
		return tuple.FloatValue(planmodel.Float64, l*r), nil
	case planmodel.OpDiv:
		if r == 0 {
			return tuple.NullValue(planmodel.Float64), nil
		}
		return tuple.FloatValue(planmodel.Float64, l/r), nil
	case planmodel.OpLess:
		return tuple.BoolValue(l < r), nil
	case planmodel.OpLessEq:
		return tuple.BoolValue(l <= r), nil
	case planmodel.OpEq:
		return tuple.BoolValue(l == r), nil
	default:
		return tuple.Value{}, fmt.Errorf("pipeline: unhandled expression operator %v", e.Op)
	}
}

func truthy(v tuple.Value) bool {
	if v.Null {
		return false
	}
	if v.Type == planmodel.Bool {
		return v.I != 0
	}
	f, _ := v.AsFloat64()
	return f != 0
}
