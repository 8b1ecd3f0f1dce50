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

	"github.com/nebula-stream/nebula-core/internal/planmodel"
	"github.com/nebula-stream/nebula-core/internal/tuple"
)

// Status is a pipeline stage's outcome for one Execute call (spec
// §4.5: "setup / execute(buffer,ctx,worker) → Ok|Finished|Error / stop").
// Error is not a Status value; it is reported through Execute's error
// return instead, carrying one of internal/engine's typed error kinds.
type Status int

const (
	// Ok means the stage consumed buf and is ready for more input.
	Ok Status = iota
	// Finished means the stage's origin is exhausted; the stage will
	// not be invoked again and Stop should be called.
	Finished
)

func (s Status) String() string {
	if s == Finished {
		return "Finished"
	}
	return "Ok"
}

// Stage is one compiled pipeline: setup once, execute once per input
// buffer, stop once on cancellation or exhaustion (spec §4.5).
type Stage interface {
	ID() int
	Setup() error
	Execute(ctx context.Context, buf *tuple.Buffer, worker int) (Status, error)
	Stop() error
}

// Emit receives the rows a Stage produces for one Execute call. What
// happens next is entirely up to the caller that wired the Stage:
// forwarding to the next Stage's input buffer, a slicestore.Store.Insert
// call, a jointrigger.Side.Insert call, or an external sink write.
type Emit func(out tuple.Record) error

// LinearStage executes the filter/map/projection/watermark-assigner
// chain of one compiled Pipeline against each input row in turn,
// calling Emit for every row that survives (spec §4.5's "scan →
// filter/map/project → emit"; the final stateful operator, if any, is
// NOT executed here — the caller attaches it by choosing what Emit
// does, since Window/Join/Sink wiring needs collaborators this
// package does not own).
type LinearStage struct {
	id     int
	tree   *planmodel.Tree
	ops    []planmodel.NodeID
	emit   Emit
	ready  bool
	stopCh chan struct{}
}

// NewLinearStage compiles p's non-terminal ops (everything but a
// trailing Window/Join/Sink, which the caller handles separately via
// Pipeline.Terminal) into an executable LinearStage.
func NewLinearStage(tree *planmodel.Tree, p *Pipeline, emit Emit) *LinearStage {
	ops := p.Ops
	if n := len(ops); n > 0 && breaks(tree.Node(ops[n-1])) && tree.Node(ops[n-1]).Kind != planmodel.KindSource {
		ops = ops[:n-1]
	}
	return &LinearStage{id: p.ID, tree: tree, ops: ops, emit: emit, stopCh: make(chan struct{})}
}

func (s *LinearStage) ID() int { return s.id }

// Setup marks the stage ready for Execute. There is no per-stage
// resource acquisition beyond the caller-supplied buffer pool, so
// this never fails in the current implementation; it exists to
// satisfy the Stage interface's lifecycle (spec §4.5) and to give a
// future collaborator (e.g. UDF loading) a hook to fail into.
func (s *LinearStage) Setup() error {
	s.ready = true
	return nil
}

// Stop signals that no further Execute calls will arrive; safe to
// call more than once.
func (s *LinearStage) Stop() error {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	return nil
}

// Execute runs buf's rows through the stage's operator chain in order
// and hands every surviving row to Emit, in input order (spec §4.5:
// "within a single origin the pipeline preserves input order").
func (s *LinearStage) Execute(ctx context.Context, buf *tuple.Buffer, worker int) (Status, error) {
	select {
	case <-s.stopCh:
		return Finished, nil
	default:
	}
	for _, row := range buf.Rows {
		out, keep, err := s.apply(row, buf.Schema)
		if err != nil {
			return Ok, err
		}
		if !keep {
			continue
		}
		if err := s.emit(out); err != nil {
			return Ok, err
		}
		select {
		case <-ctx.Done():
			return Ok, ctx.Err()
		default:
		}
	}
	return Ok, nil
}

// apply runs row through every op in the stage in order, returning
// keep=false if a Filter dropped it.
func (s *LinearStage) apply(row tuple.Record, schema planmodel.Schema) (tuple.Record, bool, error) {
	for _, id := range s.ops {
		n := s.tree.Node(id)
		switch n.Kind {
		case planmodel.KindSource, planmodel.KindWatermarkAssigner:
			// pass through unchanged; watermark propagation is
			// handled by the caller via buf.Header.Watermark, not
			// per-row.
		case planmodel.KindFilter:
			v, err := eval(n.Filter.Pred, schema, row)
			if err != nil {
				return nil, false, err
			}
			if !truthy(v) {
				return nil, false, nil
			}
		case planmodel.KindProjection:
			out := make(tuple.Record, 0, len(n.Projection.Fields))
			for _, f := range n.Projection.Fields {
				v, err := eval(f.Expr, schema, row)
				if err != nil {
					return nil, false, err
				}
				out = append(out, v)
			}
			row = out
			schema = n.OutputSchema
		case planmodel.KindMap:
			v, err := eval(n.Map.Expr, schema, row)
			if err != nil {
				return nil, false, err
			}
			row = appendOrReplace(row, schema, n.Map.Assign, v)
			schema = n.OutputSchema
		default:
			// Window/Join/Sink/Union terminals are handled by the
			// caller, never reached inside apply.
		}
	}
	return row, true, nil
}

func appendOrReplace(row tuple.Record, schema planmodel.Schema, assign string, v tuple.Value) tuple.Record {
	if idx := schema.IndexOf(assign); idx >= 0 && idx < len(row) {
		out := row.Clone()
		out[idx] = v
		return out
	}
	out := make(tuple.Record, len(row), len(row)+1)
	copy(out, row)
	return append(out, v)
}
