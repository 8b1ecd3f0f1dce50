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

package wire

import "testing"

func TestRoundTripScalars(t *testing.T) {
	var b Buffer
	b.WriteInt(-42)
	b.WriteUint(7)
	b.WriteFloat(3.5)
	b.WriteBool(true)
	b.WriteString("sensors$temperature")
	b.WriteBlob([]byte{1, 2, 3})

	r := NewReader(b.Bytes())
	if v, err := r.ReadInt(); err != nil || v != -42 {
		t.Fatalf("ReadInt: %v %v", v, err)
	}
	if v, err := r.ReadUint(); err != nil || v != 7 {
		t.Fatalf("ReadUint: %v %v", v, err)
	}
	if v, err := r.ReadFloat(); err != nil || v != 3.5 {
		t.Fatalf("ReadFloat: %v %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || !v {
		t.Fatalf("ReadBool: %v %v", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "sensors$temperature" {
		t.Fatalf("ReadString: %v %v", v, err)
	}
	if v, err := r.ReadBlob(); err != nil || string(v) != "\x01\x02\x03" {
		t.Fatalf("ReadBlob: %v %v", v, err)
	}
	if !r.Done() {
		t.Fatalf("expected reader to be exhausted")
	}
}

func TestStructAndListFraming(t *testing.T) {
	st := NewSymtab()
	symA := st.Intern("a")
	symB := st.Intern("b")

	var b Buffer
	b.BeginStruct(2)
	b.WriteSymbol(symA)
	b.WriteInt(1)
	b.WriteSymbol(symB)
	b.BeginList(3)
	b.WriteInt(1)
	b.WriteInt(2)
	b.WriteInt(3)

	r := NewReader(b.Bytes())
	n, err := r.BeginStruct()
	if err != nil || n != 2 {
		t.Fatalf("BeginStruct: %v %v", n, err)
	}
	sym, err := r.ReadSymbol()
	if err != nil || st.String(sym) != "a" {
		t.Fatalf("field 0 symbol: %v %v", sym, err)
	}
	if v, err := r.ReadInt(); err != nil || v != 1 {
		t.Fatalf("field 0 value: %v %v", v, err)
	}
	sym, err = r.ReadSymbol()
	if err != nil || st.String(sym) != "b" {
		t.Fatalf("field 1 symbol: %v %v", sym, err)
	}
	ln, err := r.BeginList()
	if err != nil || ln != 3 {
		t.Fatalf("BeginList: %v %v", ln, err)
	}
	for i := 1; i <= 3; i++ {
		if v, err := r.ReadInt(); err != nil || int(v) != i {
			t.Fatalf("list elem %d: %v %v", i, v, err)
		}
	}
	if !r.Done() {
		t.Fatalf("expected reader to be exhausted")
	}
}

func TestSkip(t *testing.T) {
	var b Buffer
	b.BeginStruct(1)
	b.WriteSymbol(1)
	b.BeginList(2)
	b.WriteString("x")
	b.WriteInt(9)
	b.WriteBool(false)

	r := NewReader(b.Bytes())
	if err := r.Skip(); err != nil {
		t.Fatalf("Skip struct: %v", err)
	}
	if v, err := r.ReadBool(); err != nil || v {
		t.Fatalf("trailing bool: %v %v", v, err)
	}
	if !r.Done() {
		t.Fatalf("expected reader to be exhausted")
	}
}
