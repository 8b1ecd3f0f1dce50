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

package topology

import (
	"github.com/nebula-stream/nebula-core/internal/engine"
	"github.com/nebula-stream/nebula-core/internal/planmodel"
)

// PlaceIncremental re-runs placement only over the subtree rooted at
// changedRoot, reusing existing.Host for everything above it
// (spec §4.4: "re-run placement only over the subtree rooted at the
// first operator whose signature changed; reuse existing assignments
// above"). It mutates existing in place and returns only an error; no
// copy of the pre-update Placement is kept.
//
// Nodes already hosting an operator of the same SQP are preferred
// over any other equally-valid candidate (spec §4.4's "tie-break
// prefers nodes that already host operators of the same SQP"),
// implemented by scanning existing.Host's current value set before
// falling back to the BottomUp candidate search.
func PlaceIncremental(t *Topology, tr *planmodel.Tree, changedRoot planmodel.NodeID, existing *Placement, resolve SourceResolver) error {
	subtreeRoots := planmodel.NodeIDSet{changedRoot}
	preferred := preferredNodes(existing)

	var placeErr error
	tr.Walk(subtreeRoots, func(n *planmodel.Node) {
		if placeErr != nil {
			return
		}
		if _, already := existing.Host[n.ID]; already {
			// Already placed above the divergence point (or placed by
			// an earlier call within this same walk); leave it as is.
			return
		}
		switch {
		case n.Kind == planmodel.KindSink:
			if err := reserve(t, existing, t.Root, n.OpID); err != nil {
				placeErr = err
				return
			}
			existing.Host[n.ID] = t.Root
		case n.Kind == planmodel.KindSource:
			nodeID, ok := resolve(n.Source.Name)
			if !ok {
				placeErr = &engine.PlacementFailedError{OperatorID: n.OpID, Reason: "source not resolvable to a topology node"}
				return
			}
			if err := reserve(t, existing, nodeID, n.OpID); err != nil {
				placeErr = err
				return
			}
			existing.Host[n.ID] = nodeID
		default:
			nodeID, err := candidateHostPreferred(t, existing, n, preferred)
			if err != nil {
				placeErr = err
				return
			}
			existing.Host[n.ID] = nodeID
		}
	})
	if placeErr != nil {
		return placeErr
	}
	insertForwarders(t, tr, planmodel.NodeIDSet(append(planmodel.NodeIDSet{}, subtreeRoots...)), existing)
	return nil
}

func preferredNodes(p *Placement) map[string]bool {
	set := make(map[string]bool, len(p.Host))
	for _, nodeID := range p.Host {
		set[nodeID] = true
	}
	return set
}

// candidateHostPreferred is candidateHost with the incremental
// tie-break: among the child host and its highest-CPU neighbor, a
// node already in preferred wins a tie on remaining CPU.
func candidateHostPreferred(t *Topology, p *Placement, n *planmodel.Node, preferred map[string]bool) (string, error) {
	if len(n.Child) == 0 {
		return "", &engine.PlacementFailedError{OperatorID: n.OpID, Reason: "non-source operator has no placed children"}
	}
	childHost := p.Host[n.Child[0]]
	if err := reserve(t, p, childHost, n.OpID); err == nil {
		return childHost, nil
	}
	neighbor, ok := highestCPUNeighborPreferred(t, childHost, preferred)
	if !ok {
		return "", &engine.PlacementFailedError{OperatorID: n.OpID, Reason: "no resource"}
	}
	if err := reserve(t, p, neighbor, n.OpID); err != nil {
		return "", err
	}
	return neighbor, nil
}

// highestCPUNeighborPreferred is HighestCPUNeighbor with a tie-break:
// a neighbor already in preferred beats one with equal remaining CPU
// that is not.
func highestCPUNeighborPreferred(t *Topology, hostID string, preferred map[string]bool) (string, bool) {
	host, ok := t.Node(hostID)
	if !ok {
		return "", false
	}
	var best *Node
	for _, nb := range host.LinkedNeighbors() {
		n, ok := t.Node(nb)
		if !ok {
			continue
		}
		switch {
		case best == nil:
			best = n
		case n.RemainingCPU() > best.RemainingCPU():
			best = n
		case n.RemainingCPU() == best.RemainingCPU() && preferred[n.ID] && !preferred[best.ID]:
			best = n
		}
	}
	if best == nil {
		return "", false
	}
	return best.ID, true
}
