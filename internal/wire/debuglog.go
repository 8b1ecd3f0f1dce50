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
	"io"

	"github.com/klauspost/compress/s2"
)

// DebugLog writes the optional (opId, sliceStart, sliceEnd,
// partialAggBytes) trace spec.md's "Persisted state layout" section
// allows but does not require: "a log ... MAY be emitted for debugging
// but is not consumed by the core." Entries are S2-compressed, the
// same auxiliary-data-path compressor the teacher uses for its own
// debug/zion block paths, since this log is write-mostly and never
// read back by anything in the core.
type DebugLog struct {
	w   *s2.Writer
	buf Buffer
}

// NewDebugLog wraps w with an S2 block compressor. Callers must call
// Close to flush the final block.
func NewDebugLog(w io.Writer) *DebugLog {
	return &DebugLog{w: s2.NewWriter(w)}
}

// WriteEntry encodes one (opId, sliceStart, sliceEnd, partialAggBytes)
// record and appends it to the compressed stream.
func (d *DebugLog) WriteEntry(opID string, sliceStart, sliceEnd int64, partialAgg []byte) error {
	d.buf.Reset()
	d.buf.BeginStruct(4)
	d.buf.WriteSymbol(0)
	d.buf.WriteString(opID)
	d.buf.WriteSymbol(1)
	d.buf.WriteInt(sliceStart)
	d.buf.WriteSymbol(2)
	d.buf.WriteInt(sliceEnd)
	d.buf.WriteSymbol(3)
	d.buf.WriteBlob(partialAgg)
	_, err := d.w.Write(d.buf.Bytes())
	return err
}

// Close flushes any buffered compressed data and closes the underlying
// S2 writer.
func (d *DebugLog) Close() error {
	return d.w.Close()
}
