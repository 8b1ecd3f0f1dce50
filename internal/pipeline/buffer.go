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
	"sync/atomic"
)

// RawBuffer is the physical tuple buffer spec §5 describes: a
// contiguous byte region holding a {numTuples, originId, watermark,
// sequenceNumber} header followed by a row- or column-layout payload
// (internal/tuple.Buffer is the logical view a stage decodes one of
// these into). RawBuffers are reference-counted; Release on the last
// drop returns a pooled buffer to its Pool.
type RawBuffer struct {
	Bytes  []byte
	pooled bool
	pool   *Pool
	refs   atomic.Int32
}

// Retain increments the reference count and returns the buffer, so a
// stage that hands a buffer to more than one downstream consumer can
// do `next(buf.Retain())`.
func (b *RawBuffer) Retain() *RawBuffer {
	b.refs.Add(1)
	return b
}

// Release decrements the reference count; on the last release a
// pooled buffer is returned to its Pool, and an unpooled buffer is
// simply dropped for the garbage collector.
func (b *RawBuffer) Release() {
	if b.refs.Add(-1) > 0 {
		return
	}
	if b.pooled && b.pool != nil {
		b.pool.put(b)
	}
}
