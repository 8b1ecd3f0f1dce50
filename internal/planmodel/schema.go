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

// PhysicalType enumerates the scalar physical types a Field may carry
// (spec §3 DATA MODEL).
type PhysicalType int

const (
	Int8 PhysicalType = iota
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Bool
	Char // fixed-width CHAR[N]; see Field.CharLen
)

func (t PhysicalType) String() string {
	switch t {
	case Int8:
		return "INT8"
	case Int16:
		return "INT16"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Uint8:
		return "UINT8"
	case Uint16:
		return "UINT16"
	case Uint32:
		return "UINT32"
	case Uint64:
		return "UINT64"
	case Float32:
		return "FLOAT"
	case Float64:
		return "DOUBLE"
	case Bool:
		return "BOOL"
	case Char:
		return "CHAR"
	default:
		return "UNKNOWN"
	}
}

// Field is a single (qualified-name, physical-type) pair in a Schema.
// The qualifier is the name of the source stream that produced the
// field; QualifiedName renders it with the "<src>$" prefix required
// by spec §3.
type Field struct {
	Qualifier string
	Name      string
	Type      PhysicalType
	CharLen   int // valid only when Type == Char
}

// QualifiedName returns the field's name prefixed by its source
// qualifier, e.g. "sensors$temperature".
func (f Field) QualifiedName() string {
	if f.Qualifier == "" {
		return f.Name
	}
	return f.Qualifier + "$" + f.Name
}

func (f Field) String() string {
	if f.Type == Char {
		return fmt.Sprintf("%s:CHAR[%d]", f.QualifiedName(), f.CharLen)
	}
	return fmt.Sprintf("%s:%s", f.QualifiedName(), f.Type)
}

// Schema is an ordered sequence of Fields.
type Schema []Field

// IndexOf returns the position of the field with the given qualified
// name, or -1 if absent.
func (s Schema) IndexOf(qualifiedName string) int {
	for i := range s {
		if s[i].QualifiedName() == qualifiedName {
			return i
		}
	}
	return -1
}

// Requalify returns a copy of s with every field's Qualifier replaced
// by qualifier. No code in this module calls it; schema inference
// builds the window's "$start"/"$end" fields directly.
func (s Schema) Requalify(qualifier string) Schema {
	out := make(Schema, len(s))
	for i, f := range s {
		f.Qualifier = qualifier
		out[i] = f
	}
	return out
}

// Equal reports whether two schemas have the same fields in the same
// order.
func (s Schema) Equal(o Schema) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Schema) String() string {
	out := "("
	for i, f := range s {
		if i > 0 {
			out += ", "
		}
		out += f.String()
	}
	return out + ")"
}
