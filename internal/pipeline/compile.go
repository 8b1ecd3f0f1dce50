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

import "github.com/nebula-stream/nebula-core/internal/planmodel"

// Pipeline is one linear chain produced by Compile: a scan (its first
// Op, with no children of its own within the pipeline) through zero or
// more filter/map/project/watermark-assigner stages, ending at its
// last Op, which is either a plain passthrough (if the pipeline was
// cut short only because its consumer is a breaker) or a stateful
// operator (Window/Join/Sink) materializing into C7/C8/C9 state.
//
// Inputs names the Pipeline(s) whose output feeds this one's first Op,
// in the first Op's Child order; empty for a pipeline that starts at
// a Source.
type Pipeline struct {
	ID     int
	Ops    []planmodel.NodeID
	Inputs []int
}

// breaks reports whether n must terminate the upstream chain feeding
// into it: stateful operators always do (they materialize into C7/C8/C9
// state rather than passing rows straight through), and so does any
// fan-in point with more than one child (spec §4.5: "any operator
// whose child count ≠ 1"). A childless Source trivially fails the
// "exactly one child" test used by its *consumer* below, but a Source
// itself never forces a break since there is nothing upstream of it.
func breaks(n *planmodel.Node) bool {
	switch n.Kind {
	case planmodel.KindWindow, planmodel.KindJoin, planmodel.KindSink:
		return true
	}
	return len(n.Child) > 1
}

// Compile splits the plan reachable from roots into pipelines (spec
// §4.5). It walks the tree in the same post-order Tree.Walk uses
// (children before parents), so pipeline ids are assigned in a stable
// order determined entirely by the tree's structure — the
// determinism spec §4.5 requires ("stable stage ids").
func Compile(tree *planmodel.Tree, roots planmodel.NodeIDSet) []*Pipeline {
	var pipelines []*Pipeline
	pipelineOf := map[planmodel.NodeID]int{}

	newPipeline := func(inputs []int) *Pipeline {
		p := &Pipeline{ID: len(pipelines), Inputs: inputs}
		pipelines = append(pipelines, p)
		return p
	}

	tree.Walk(roots, func(n *planmodel.Node) {
		if len(n.Child) == 1 && !breaks(tree.Node(n.Child[0])) {
			pid := pipelineOf[n.Child[0]]
			pipelines[pid].Ops = append(pipelines[pid].Ops, n.ID)
			pipelineOf[n.ID] = pid
			return
		}
		inputs := make([]int, 0, len(n.Child))
		for _, c := range n.Child {
			inputs = append(inputs, pipelineOf[c])
		}
		p := newPipeline(inputs)
		p.Ops = append(p.Ops, n.ID)
		pipelineOf[n.ID] = p.ID
	})
	return pipelines
}

// Terminal returns the last operator of the pipeline — its scan
// target for an upstream consumer, or the stateful operator (if any)
// whose Lift/Trigger wiring the caller must attach.
func (p *Pipeline) Terminal(tree *planmodel.Tree) *planmodel.Node {
	return tree.Node(p.Ops[len(p.Ops)-1])
}

// Scan returns the pipeline's first operator.
func (p *Pipeline) Scan(tree *planmodel.Tree) *planmodel.Node {
	return tree.Node(p.Ops[0])
}
