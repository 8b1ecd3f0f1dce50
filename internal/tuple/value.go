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

package tuple

import (
	"fmt"
	"math"

	"github.com/nebula-stream/nebula-core/internal/planmodel"
)

// Value is a single scalar field value. Only one of the typed fields
// is meaningful, selected by Type; Null reports absence independently
// of Type (spec §4.7's divide-by-zero avg policy: "emit null when
// count=0" needs a null distinct from any zero value).
type Value struct {
	Type planmodel.PhysicalType
	Null bool
	I    int64   // Int8..Int64, Uint8..Uint64 (reinterpreted), Bool (0/1)
	F    float64 // Float32, Float64
	S    string  // Char
}

// IntValue constructs a non-null integer-typed Value.
func IntValue(t planmodel.PhysicalType, v int64) Value { return Value{Type: t, I: v} }

// UintValue constructs a non-null unsigned-integer-typed Value.
func UintValue(t planmodel.PhysicalType, v uint64) Value { return Value{Type: t, I: int64(v)} }

// FloatValue constructs a non-null float-typed Value.
func FloatValue(t planmodel.PhysicalType, v float64) Value { return Value{Type: t, F: v} }

// BoolValue constructs a non-null bool Value.
func BoolValue(v bool) Value {
	if v {
		return Value{Type: planmodel.Bool, I: 1}
	}
	return Value{Type: planmodel.Bool}
}

// StringValue constructs a non-null CHAR Value.
func StringValue(s string) Value { return Value{Type: planmodel.Char, S: s} }

// NullValue constructs a null Value of the given type.
func NullValue(t planmodel.PhysicalType) Value { return Value{Type: t, Null: true} }

// AsFloat64 widens the value to a float64 for arithmetic in
// aggregation lift/combine/lower (spec §4.7); Bool and Char are not
// valid aggregation operands and return (0, false).
func (v Value) AsFloat64() (float64, bool) {
	if v.Null {
		return 0, false
	}
	switch v.Type {
	case planmodel.Float32, planmodel.Float64:
		return v.F, true
	case planmodel.Bool, planmodel.Char:
		return 0, false
	default:
		return float64(v.I), true
	}
}

// AsInt64 returns the value's raw integer bit pattern for use as a
// join/group key component; valid for any integer or bool type.
func (v Value) AsInt64() (int64, bool) {
	if v.Null {
		return 0, false
	}
	switch v.Type {
	case planmodel.Float32, planmodel.Float64, planmodel.Char:
		return 0, false
	default:
		return v.I, true
	}
}

func (v Value) String() string {
	if v.Null {
		return "null"
	}
	switch v.Type {
	case planmodel.Float32, planmodel.Float64:
		if math.IsNaN(v.F) {
			return "nan"
		}
		return fmt.Sprintf("%g", v.F)
	case planmodel.Bool:
		return fmt.Sprintf("%t", v.I != 0)
	case planmodel.Char:
		return v.S
	default:
		return fmt.Sprintf("%d", v.I)
	}
}

// Record is one decoded row: ordered values aligned with a Schema.
type Record []Value

// Get returns the value at the field position idx from s.IndexOf,
// or the zero Value and false if idx is out of range.
func (r Record) Get(idx int) (Value, bool) {
	if idx < 0 || idx >= len(r) {
		return Value{}, false
	}
	return r[idx], true
}

// Clone returns an independent copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	copy(out, r)
	return out
}
