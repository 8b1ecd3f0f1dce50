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

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Tag identifies the shape of the value that follows it in the
// stream. The encoding is deliberately simple (tag byte + varint
// length where applicable) rather than a full Ion binary
// implementation; see DESIGN.md for why.
type Tag byte

const (
	TagNull Tag = iota
	TagBool
	TagInt
	TagUint
	TagFloat
	TagString
	TagSymbol
	TagStruct
	TagList
	TagBlob
)

// Buffer is an append-only byte sink used to encode wire values. A
// zero Buffer is ready to use.
type Buffer struct {
	buf []byte
}

// Bytes returns the encoded bytes written so far.
func (b *Buffer) Bytes() []byte { return b.buf }

// Reset clears the buffer for reuse.
func (b *Buffer) Reset() { b.buf = b.buf[:0] }

func (b *Buffer) putTag(t Tag) { b.buf = append(b.buf, byte(t)) }

func putUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

// WriteNull writes the null marker.
func (b *Buffer) WriteNull() { b.putTag(TagNull) }

// WriteBool writes a boolean.
func (b *Buffer) WriteBool(v bool) {
	b.putTag(TagBool)
	if v {
		b.buf = append(b.buf, 1)
	} else {
		b.buf = append(b.buf, 0)
	}
}

// WriteInt writes a signed integer using zig-zag varint encoding.
func (b *Buffer) WriteInt(v int64) {
	b.putTag(TagInt)
	zz := uint64((v << 1) ^ (v >> 63))
	b.buf = putUvarint(b.buf, zz)
}

// WriteUint writes an unsigned integer.
func (b *Buffer) WriteUint(v uint64) {
	b.putTag(TagUint)
	b.buf = putUvarint(b.buf, v)
}

// WriteFloat writes a double-precision float.
func (b *Buffer) WriteFloat(v float64) {
	b.putTag(TagFloat)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	b.buf = append(b.buf, tmp[:]...)
}

// WriteString writes a length-prefixed UTF-8 string.
func (b *Buffer) WriteString(s string) {
	b.putTag(TagString)
	b.buf = putUvarint(b.buf, uint64(len(s)))
	b.buf = append(b.buf, s...)
}

// WriteBlob writes an opaque length-prefixed byte string.
func (b *Buffer) WriteBlob(v []byte) {
	b.putTag(TagBlob)
	b.buf = putUvarint(b.buf, uint64(len(v)))
	b.buf = append(b.buf, v...)
}

// WriteSymbol writes a symbol reference produced by a Symtab.
func (b *Buffer) WriteSymbol(sym Symbol) {
	b.putTag(TagSymbol)
	b.buf = putUvarint(b.buf, uint64(sym))
}

// BeginStruct writes a struct header with the given field count; the
// caller must follow with exactly n (symbol, value) pairs written via
// WriteSymbol followed by one value-writing call.
func (b *Buffer) BeginStruct(fields int) {
	b.putTag(TagStruct)
	b.buf = putUvarint(b.buf, uint64(fields))
}

// BeginList writes a list header with the given element count; the
// caller must follow with exactly n value-writing calls.
func (b *Buffer) BeginList(n int) {
	b.putTag(TagList)
	b.buf = putUvarint(b.buf, uint64(n))
}

// Reader decodes values written by Buffer, in order.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader over buf.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Done reports whether the reader has consumed all bytes.
func (r *Reader) Done() bool { return r.off >= len(r.buf) }

func (r *Reader) readTag() (Tag, error) {
	if r.off >= len(r.buf) {
		return 0, fmt.Errorf("wire: unexpected end of buffer")
	}
	t := Tag(r.buf[r.off])
	r.off++
	return t, nil
}

func (r *Reader) readUvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.off:])
	if n <= 0 {
		return 0, fmt.Errorf("wire: malformed varint")
	}
	r.off += n
	return v, nil
}

// PeekTag returns the tag of the next value without consuming it.
func (r *Reader) PeekTag() (Tag, error) {
	if r.off >= len(r.buf) {
		return 0, fmt.Errorf("wire: unexpected end of buffer")
	}
	return Tag(r.buf[r.off]), nil
}

// ReadInt reads a signed integer previously written with WriteInt.
func (r *Reader) ReadInt() (int64, error) {
	t, err := r.readTag()
	if err != nil {
		return 0, err
	}
	if t != TagInt {
		return 0, fmt.Errorf("wire: expected int, got tag %d", t)
	}
	zz, err := r.readUvarint()
	if err != nil {
		return 0, err
	}
	return int64(zz>>1) ^ -int64(zz&1), nil
}

// ReadUint reads an unsigned integer.
func (r *Reader) ReadUint() (uint64, error) {
	t, err := r.readTag()
	if err != nil {
		return 0, err
	}
	if t != TagUint {
		return 0, fmt.Errorf("wire: expected uint, got tag %d", t)
	}
	return r.readUvarint()
}

// ReadFloat reads a float64.
func (r *Reader) ReadFloat() (float64, error) {
	t, err := r.readTag()
	if err != nil {
		return 0, err
	}
	if t != TagFloat {
		return 0, fmt.Errorf("wire: expected float, got tag %d", t)
	}
	if r.off+8 > len(r.buf) {
		return 0, fmt.Errorf("wire: truncated float")
	}
	bits := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return math.Float64frombits(bits), nil
}

// ReadBool reads a boolean.
func (r *Reader) ReadBool() (bool, error) {
	t, err := r.readTag()
	if err != nil {
		return false, err
	}
	if t != TagBool {
		return false, fmt.Errorf("wire: expected bool, got tag %d", t)
	}
	if r.off >= len(r.buf) {
		return false, fmt.Errorf("wire: truncated bool")
	}
	v := r.buf[r.off] != 0
	r.off++
	return v, nil
}

// ReadString reads a string.
func (r *Reader) ReadString() (string, error) {
	t, err := r.readTag()
	if err != nil {
		return "", err
	}
	if t != TagString {
		return "", fmt.Errorf("wire: expected string, got tag %d", t)
	}
	n, err := r.readUvarint()
	if err != nil {
		return "", err
	}
	if r.off+int(n) > len(r.buf) {
		return "", fmt.Errorf("wire: truncated string")
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

// ReadBlob reads an opaque blob.
func (r *Reader) ReadBlob() ([]byte, error) {
	t, err := r.readTag()
	if err != nil {
		return nil, err
	}
	if t != TagBlob {
		return nil, fmt.Errorf("wire: expected blob, got tag %d", t)
	}
	n, err := r.readUvarint()
	if err != nil {
		return nil, err
	}
	if r.off+int(n) > len(r.buf) {
		return nil, fmt.Errorf("wire: truncated blob")
	}
	v := append([]byte(nil), r.buf[r.off:r.off+int(n)]...)
	r.off += int(n)
	return v, nil
}

// ReadSymbol reads a symbol reference.
func (r *Reader) ReadSymbol() (Symbol, error) {
	t, err := r.readTag()
	if err != nil {
		return 0, err
	}
	if t != TagSymbol {
		return 0, fmt.Errorf("wire: expected symbol, got tag %d", t)
	}
	v, err := r.readUvarint()
	if err != nil {
		return 0, err
	}
	return Symbol(v), nil
}

// BeginStruct reads a struct header and returns its field count.
func (r *Reader) BeginStruct() (int, error) {
	t, err := r.readTag()
	if err != nil {
		return 0, err
	}
	if t != TagStruct {
		return 0, fmt.Errorf("wire: expected struct, got tag %d", t)
	}
	n, err := r.readUvarint()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// BeginList reads a list header and returns its element count.
func (r *Reader) BeginList() (int, error) {
	t, err := r.readTag()
	if err != nil {
		return 0, err
	}
	if t != TagList {
		return 0, fmt.Errorf("wire: expected list, got tag %d", t)
	}
	n, err := r.readUvarint()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Skip consumes and discards the next value, recursing into
// structs/lists.
func (r *Reader) Skip() error {
	t, err := r.PeekTag()
	if err != nil {
		return err
	}
	switch t {
	case TagNull:
		r.off++
	case TagBool:
		_, err = r.ReadBool()
	case TagInt:
		_, err = r.ReadInt()
	case TagUint:
		_, err = r.ReadUint()
	case TagFloat:
		_, err = r.ReadFloat()
	case TagString:
		_, err = r.ReadString()
	case TagBlob:
		_, err = r.ReadBlob()
	case TagSymbol:
		_, err = r.ReadSymbol()
	case TagStruct:
		n, e := r.BeginStruct()
		if e != nil {
			return e
		}
		for i := 0; i < n; i++ {
			if _, err = r.ReadSymbol(); err != nil {
				return err
			}
			if err = r.Skip(); err != nil {
				return err
			}
		}
	case TagList:
		n, e := r.BeginList()
		if e != nil {
			return e
		}
		for i := 0; i < n; i++ {
			if err = r.Skip(); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("wire: unknown tag %d", t)
	}
	return err
}
