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

// Package wire implements a small self-describing binary codec. Within
// this module it serializes the slice store's optional debug records
// (DebugLog); no logical-plan encoder is built on it. It is
// a reduced, purpose-built sibling of an Ion-style symbol-table codec:
// a Symtab interns repeated field/qualifier names so that each is
// written once.
package wire

// Symbol is an interned string id. Symbol 0 is never assigned to a
// real string; it is reserved to mean "absent".
type Symbol uint32

// Symtab interns strings to small integers so that repeated field and
// qualifier names (e.g. "sensors$temperature") are written once.
type Symtab struct {
	byName map[string]Symbol
	byID   []string
}

// NewSymtab returns an empty symbol table.
func NewSymtab() *Symtab {
	return &Symtab{byName: make(map[string]Symbol)}
}

// Intern returns the symbol for s, assigning a new one if s has not
// been seen before.
func (t *Symtab) Intern(s string) Symbol {
	if id, ok := t.byName[s]; ok {
		return id
	}
	t.byID = append(t.byID, s)
	id := Symbol(len(t.byID))
	t.byName[s] = id
	return id
}

// Lookup returns the symbol for s and whether it is already interned.
func (t *Symtab) Lookup(s string) (Symbol, bool) {
	id, ok := t.byName[s]
	return id, ok
}

// String returns the string associated with sym, or "" if sym is out
// of range.
func (t *Symtab) String(sym Symbol) string {
	if sym == 0 || int(sym) > len(t.byID) {
		return ""
	}
	return t.byID[sym-1]
}

// Len returns the number of interned symbols.
func (t *Symtab) Len() int { return len(t.byID) }
