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

package gqp

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nebula-stream/nebula-core/internal/containment"
	"github.com/nebula-stream/nebula-core/internal/engine"
	"github.com/nebula-stream/nebula-core/internal/planmodel"
	"github.com/nebula-stream/nebula-core/internal/signature"
)

// MergerRule decides how a newly-arrived query relates to the
// existing set of SQPs and mutates gqp accordingly (spec §4.3). It
// returns the SQP the query ended up a member of, or an error if the
// query could not be admitted (the caller marks it Failed).
type MergerRule interface {
	Merge(ctx context.Context, g *GlobalQueryPlan, qp QueryPlan) (*SharedQueryPlan, error)
	Name() string
}

// DefaultMerger admits every query into its own, unshared SQP
// (spec §4.3: "no merging").
type DefaultMerger struct{}

func (DefaultMerger) Name() string { return "DefaultMerger" }

func (DefaultMerger) Merge(ctx context.Context, g *GlobalQueryPlan, qp QueryPlan) (*SharedQueryPlan, error) {
	return g.newStandaloneSQP(qp)
}

// SignatureEqualityMerger merges a new query's sink into an existing
// SQP only when its signature is exactly equal (in canonical form) to
// the host's (spec §4.3).
type SignatureEqualityMerger struct{}

func (SignatureEqualityMerger) Name() string { return "SignatureEquality" }

func (m SignatureEqualityMerger) Merge(ctx context.Context, g *GlobalQueryPlan, qp QueryPlan) (*SharedQueryPlan, error) {
	qpSig, err := sinkSignature(qp.Tree, qp.Sink)
	if err != nil {
		return nil, &engine.SchemaMismatchError{QueryID: qp.QueryID, Reason: err.Error()}
	}

	for _, sqpID := range g.sqpOrder {
		host := g.sqps[sqpID]
		if host.Status == Failed || host.Status == Stopped {
			continue
		}
		for _, hostSink := range host.Members {
			hostSig, err := sinkSignature(host.MergedTree, hostSink)
			if err != nil {
				continue
			}
			if qpSig.Canonical() == hostSig.Canonical() {
				host.Members[qp.QueryID] = hostSink
				addConsumedSources(host, qp.Tree, qp.Sink)
				return host, nil
			}
		}
	}
	return g.newStandaloneSQP(qp)
}

// SignatureContainmentMerger uses internal/containment to find a host
// SQP whose plan is equivalent to, or a sub/superset of, the new
// query's plan (spec §4.3):
//   - Equal: behaves like SignatureEqualityMerger.
//   - LeftContainsRight (new query ⊒ host) and RightContainsLeft
//     (host ⊒ new query) are handled the same way: graftSink copies
//     the new query's whole subtree (source included) into the host's
//     MergedTree as a separate branch with its own sink. No operator
//     is shared between the copied branch and the host's existing
//     branches, and the host's existing sinks are left unchanged.
type SignatureContainmentMerger struct {
	Checker *containment.Checker
}

func (m SignatureContainmentMerger) Name() string { return "SignatureContainment" }

func (m SignatureContainmentMerger) checker() *containment.Checker {
	if m.Checker != nil {
		return m.Checker
	}
	return containment.NewChecker()
}

func (m SignatureContainmentMerger) Merge(ctx context.Context, g *GlobalQueryPlan, qp QueryPlan) (*SharedQueryPlan, error) {
	qpSig, err := sinkSignature(qp.Tree, qp.Sink)
	if err != nil {
		return nil, &engine.SchemaMismatchError{QueryID: qp.QueryID, Reason: err.Error()}
	}

	checker := m.checker()
	for _, sqpID := range g.sqpOrder {
		host := g.sqps[sqpID]
		if host.Status == Failed || host.Status == Stopped {
			continue
		}
		for _, hostSink := range host.Members {
			hostSig, err := sinkSignature(host.MergedTree, hostSink)
			if err != nil {
				continue
			}
			switch checker.Check(ctx, qpSig, hostSig) {
			case containment.Equal:
				host.Members[qp.QueryID] = hostSink
				addConsumedSources(host, qp.Tree, qp.Sink)
				return host, nil
			case containment.RightContainsLeft:
				// host is broader than qp: add a copy of qp's
				// subtree to the host's tree.
				graftSink(host, qp)
				addConsumedSources(host, qp.Tree, qp.Sink)
				return host, nil
			case containment.LeftContainsRight:
				// qp is broader than host: the host's existing sink is
				// left reading its own (narrower) branch, and a copy of
				// qp's subtree is added beside it.
				graftSink(host, qp)
				addConsumedSources(host, qp.Tree, qp.Sink)
				return host, nil
			}
		}
	}
	return g.newStandaloneSQP(qp)
}

// graftSink copies qp's subtree into host.MergedTree and records qp's
// query id against the copied sink. qp's operators are not spliced
// onto the host's existing nodes: the copied branch has its own
// source, maps and filters, so no execution is shared with the host's
// original branch.
func graftSink(host *SharedQueryPlan, qp QueryPlan) {
	copied := copySubtree(host.MergedTree, qp.Tree, qp.Sink)
	host.Members[qp.QueryID] = copied
}

// copySubtree appends a copy of src's subtree rooted at srcRoot into
// dst, preserving edges, and returns the id of the copied root in dst.
func copySubtree(dst *planmodel.Tree, src *planmodel.Tree, srcRoot planmodel.NodeID) planmodel.NodeID {
	mapping := map[planmodel.NodeID]planmodel.NodeID{}
	var copyNode func(id planmodel.NodeID) planmodel.NodeID
	copyNode = func(id planmodel.NodeID) planmodel.NodeID {
		if dstID, ok := mapping[id]; ok {
			return dstID
		}
		n := src.Node(id)
		dstID := dst.AddNode(n.Kind)
		mapping[id] = dstID
		cp := dst.Node(dstID)
		cp.OpID = uuid.NewString()
		cp.InputSchema = n.InputSchema
		cp.OutputSchema = n.OutputSchema
		cp.Source = n.Source
		cp.Filter = n.Filter
		cp.Projection = n.Projection
		cp.Map = n.Map
		cp.Union = n.Union
		cp.Join = n.Join
		cp.Window = n.Window
		cp.WatermarkOp = n.WatermarkOp
		cp.Sink = n.Sink
		for _, c := range n.Child {
			dst.Connect(dstID, copyNode(c))
		}
		return dstID
	}
	return copyNode(srcRoot)
}

func addConsumedSources(host *SharedQueryPlan, t *planmodel.Tree, sink planmodel.NodeID) {
	t.Walk(planmodel.NodeIDSet{sink}, func(n *planmodel.Node) {
		if n.Kind == planmodel.KindSource {
			host.ConsumedSource[n.Source.Name] = true
		}
	})
}

func sinkSignature(t *planmodel.Tree, sink planmodel.NodeID) (*signature.Signature, error) {
	sigs, err := signature.Compute(t, planmodel.NodeIDSet{sink})
	if err != nil {
		return nil, err
	}
	sig, ok := sigs[sink]
	if !ok {
		return nil, fmt.Errorf("gqp: no signature computed for sink node")
	}
	return sig, nil
}
