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
	"github.com/nebula-stream/nebula-core/internal/planmodel"
)

// Status is an SQP's lifecycle state (spec §3).
type Status int

const (
	Created Status = iota
	Processed
	Deployed
	Failed
	Stopped
)

func (s Status) String() string {
	switch s {
	case Created:
		return "Created"
	case Processed:
		return "Processed"
	case Deployed:
		return "Deployed"
	case Failed:
		return "Failed"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// QueryPlan is a newly-submitted, not-yet-merged logical plan: its own
// tree plus the root (sink) node identifying the query within it.
type QueryPlan struct {
	QueryID string
	Tree    *planmodel.Tree
	Sink    planmodel.NodeID
}

// SharedQueryPlan is the SQP of spec §3: a merged logical plan shared
// by one or more member queries. MergedTree is the plan actually
// placed and compiled; Members maps each contributing query id to the
// sink node (inside MergedTree) that serves it, since a containment
// merge adds a copied branch with its own sink to MergedTree, so one
// SQP can hold several sinks.
type SharedQueryPlan struct {
	ID             string
	MergedTree     *planmodel.Tree
	Members        map[string]planmodel.NodeID // queryID -> sink node in MergedTree
	ConsumedSource map[string]bool
	Status         Status
	FailureReason  string
}

// MemberQueryIDs returns the set of member query ids in map iteration
// order, which is not deterministic; insertion order is not tracked,
// so callers that need a stable order sort the result.
func (s *SharedQueryPlan) MemberQueryIDs() []string {
	ids := make([]string, 0, len(s.Members))
	for id := range s.Members {
		ids = append(ids, id)
	}
	return ids
}

// MarkProcessed transitions Created -> Processed, the state after a
// merge decision has been applied but before placement has run.
func (s *SharedQueryPlan) MarkProcessed() { s.Status = Processed }

// MarkDeployed transitions Processed -> Deployed once placement and
// compilation have both succeeded.
func (s *SharedQueryPlan) MarkDeployed() { s.Status = Deployed }

// MarkFailed records a terminal failure (schema mismatch, placement
// failure, compilation failure) and the reason surfaced to the
// submitter (spec §7).
func (s *SharedQueryPlan) MarkFailed(reason string) {
	s.Status = Failed
	s.FailureReason = reason
}

// MarkStopped transitions Deployed -> Stopped; the SQP is destroyed
// once its last member query is undeployed (spec §3 lifecycle).
func (s *SharedQueryPlan) MarkStopped() { s.Status = Stopped }
