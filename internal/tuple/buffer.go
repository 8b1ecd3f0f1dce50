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

import "github.com/nebula-stream/nebula-core/internal/planmodel"

// Layout selects row-major or column-major tuple-buffer encoding
// (spec §6 / the `memoryLayoutPolicy` config option).
type Layout int

const (
	RowLayout Layout = iota
	ColumnLayout
)

// Header is the fixed framing spec §6 requires at the start of every
// tuple buffer: "{numTuples: u64, originId: u64, watermark: u64,
// sequenceNumber: u64}".
type Header struct {
	NumTuples      uint64
	OriginID       uint64
	Watermark      uint64
	SequenceNumber uint64
}

// Buffer is one in-flight unit of streaming data: a Header plus a
// decoded batch of Records sharing Schema. Pipeline stages
// (internal/pipeline) read one Buffer and, on success, produce zero
// or more output Buffers; the teacher's equivalent is a raw
// `*vm.Table`/`ion`-framed byte region, but since this core has no
// JIT backend (spec §1 scope) the payload is kept decoded rather than
// byte-packed.
type Buffer struct {
	Header Header
	Schema planmodel.Schema
	Layout Layout
	Rows   []Record
}

// NewBuffer returns an empty buffer over schema tagged with originID.
func NewBuffer(schema planmodel.Schema, originID uint64, layout Layout) *Buffer {
	return &Buffer{
		Schema: schema,
		Layout: layout,
		Header: Header{OriginID: originID},
	}
}

// Append adds one record to the buffer and updates NumTuples.
func (b *Buffer) Append(r Record) {
	b.Rows = append(b.Rows, r)
	b.Header.NumTuples = uint64(len(b.Rows))
}

// Len returns the number of tuples currently buffered.
func (b *Buffer) Len() int { return len(b.Rows) }

// WithWatermark sets the buffer's watermark field (spec §6) and
// returns b for chaining.
func (b *Buffer) WithWatermark(wm uint64) *Buffer {
	b.Header.Watermark = wm
	return b
}

// WithSequence sets the buffer's sequence number and returns b for
// chaining.
func (b *Buffer) WithSequence(seq uint64) *Buffer {
	b.Header.SequenceNumber = seq
	return b
}

// ColumnView decodes the buffer into N contiguous column arrays plus
// per-column validity bitmaps, matching spec §6's column layout
// description. It is a read-only projection over Rows; the backing
// storage stays row-major regardless of b.Layout, since both layouts
// are semantically equivalent decoded-Record batches and only differ
// in their on-wire byte packing (not modeled here — see DESIGN.md).
func (b *Buffer) ColumnView() ([][]Value, [][]bool) {
	cols := make([][]Value, len(b.Schema))
	valid := make([][]bool, len(b.Schema))
	for c := range b.Schema {
		cols[c] = make([]Value, len(b.Rows))
		valid[c] = make([]bool, len(b.Rows))
		for i, row := range b.Rows {
			if c < len(row) {
				cols[c][i] = row[c]
				valid[c][i] = !row[c].Null
			}
		}
	}
	return cols, valid
}
