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
	"context"
	"time"

	"github.com/nebula-stream/nebula-core/internal/engine"
)

// Pool is the process-wide buffer manager of spec §5: a pooled tier
// of fixed-size buffers (bufferSize bytes each, capacity of them, as
// given to NewPool) plus an unpooled tier for requests larger than
// bufferSize, which allocate
// directly and are never recycled.
type Pool struct {
	bufferSize int
	free       chan *RawBuffer
}

// NewPool returns a Pool with capacity pre-allocated fixed-size
// buffers of bufferSize bytes each (spec §6's
// numberOfBuffersInGlobalBufferManager/bufferSizeInBytes, also reused
// for per-worker and per-source local pools with smaller capacities).
func NewPool(capacity, bufferSize int) *Pool {
	p := &Pool{bufferSize: bufferSize, free: make(chan *RawBuffer, capacity)}
	for i := 0; i < capacity; i++ {
		p.free <- &RawBuffer{Bytes: make([]byte, bufferSize), pooled: true, pool: p}
	}
	return p
}

// put returns a pooled buffer to the free channel, or drops it if the
// pool's free channel is unexpectedly full (can't happen under normal
// use since every buffer either lives in the channel or is checked out
// exactly once).
func (p *Pool) put(b *RawBuffer) {
	b.refs.Store(0)
	select {
	case p.free <- b:
	default:
	}
}

func (p *Pool) unpooled(size int) *RawBuffer {
	b := &RawBuffer{Bytes: make([]byte, size), pooled: false}
	b.refs.Store(1)
	return b
}

// GetBlocking returns a buffer of size bytes, blocking on ctx until
// one is available (size <= bufferSize) or ctx is done. Requests
// larger than bufferSize are served from the unpooled tier
// immediately, matching spec §5's "two tiers — pooled fixed-size and
// unpooled arbitrary-size".
func (p *Pool) GetBlocking(ctx context.Context, size int) (*RawBuffer, error) {
	if size > p.bufferSize {
		return p.unpooled(size), nil
	}
	select {
	case b := <-p.free:
		b.refs.Store(1)
		return b, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// GetTimeout returns a buffer as GetBlocking does, but fails with
// CapacityExhaustedError if none becomes available within d (spec
// §5: "getTimeout(d) returns none on expiry").
func (p *Pool) GetTimeout(d time.Duration, size int) (*RawBuffer, error) {
	if size > p.bufferSize {
		return p.unpooled(size), nil
	}
	select {
	case b := <-p.free:
		b.refs.Store(1)
		return b, nil
	case <-time.After(d):
		return nil, &engine.CapacityExhaustedError{Requested: size}
	}
}

// GetNoBlocking returns a buffer immediately if one is free, else
// fails with CapacityExhaustedError without waiting (spec §5:
// "getNoBlocking returns none immediately when empty").
func (p *Pool) GetNoBlocking(size int) (*RawBuffer, error) {
	if size > p.bufferSize {
		return p.unpooled(size), nil
	}
	select {
	case b := <-p.free:
		b.refs.Store(1)
		return b, nil
	default:
		return nil, &engine.CapacityExhaustedError{Requested: size}
	}
}

// Available returns the number of pooled buffers currently free, for
// diagnostics and tests.
func (p *Pool) Available() int { return len(p.free) }
