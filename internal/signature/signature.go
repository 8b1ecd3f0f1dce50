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

package signature

import (
	"strings"

	"golang.org/x/exp/slices"

	"github.com/nebula-stream/nebula-core/internal/planmodel"
)

// Signature is (formula, column-map) as defined in spec §3: a formula
// over a free column space, and a map from output column to the
// formula term that produces it.
//
// Window and Join shape (type/size/slide/time-characteristic) is
// conjoined into Formula as an opaque window marker and is also
// carried as a first-class field, because spec §4.2 treats
// window-shape mismatches as an unconditional NoContainment edge case
// that the checker decides from the field before the solver runs.
type Signature struct {
	Formula   *planmodel.Expr
	ColumnMap map[string]*planmodel.Expr
	// Window is non-nil when the operator the signature was computed
	// for is a Window or Join; it records the window shape the
	// containment checker must compare exactly (spec §4.2).
	Window *planmodel.WindowSpec
}

// sourceMarkerPrefix is a reserved identifier prefix used to embed "this
// formula reads from source S" into the Expr grammar, so Source
// signatures remain plain Exprs rather than a separate sum type.
const sourceMarkerPrefix = "@source:"

func sourceMarker(name string) *planmodel.Expr {
	return planmodel.Ident(sourceMarkerPrefix + name)
}

// windowMarker embeds a window's shape into the formula as an opaque
// identifier so two Join/Window signatures whose window shapes differ
// never unify structurally, even before internal/containment's
// explicit WindowSpec.Equal short-circuit runs.
func windowMarker(w planmodel.WindowSpec) *planmodel.Expr {
	return planmodel.Ident(strings.Join([]string{
		"@window", w.Type.String(), itoa(w.SizeMillis), itoa(w.SlideMillis),
		itoa(int64(w.TimeChar)), w.TimeField,
	}, ":"))
}

func itoa(v int64) string {
	// avoid pulling in strconv just for this; formulas are small.
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var b [20]byte
	i := len(b)
	for v > 0 {
		i--
		b[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}

// Canonical renders a signature deterministically for equality
// comparisons and for the "signature stability" testable property
// (spec §8): computing a signature twice for the same plan must
// produce byte-equal canonical forms.
func (s *Signature) Canonical() string {
	var b strings.Builder
	b.WriteString("formula:")
	b.WriteString(s.Formula.String())
	if s.Window != nil {
		b.WriteString(";window:")
		b.WriteString(windowMarker(*s.Window).String())
	}
	b.WriteString(";cols:")
	keys := make([]string, 0, len(s.ColumnMap))
	for k := range s.ColumnMap {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(s.ColumnMap[k].String())
		b.WriteString(",")
	}
	return b.String()
}

// CloneColumnMap returns a shallow copy of a column map, safe to
// mutate independently of the original signature.
func CloneColumnMap(m map[string]*planmodel.Expr) map[string]*planmodel.Expr {
	out := make(map[string]*planmodel.Expr, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
