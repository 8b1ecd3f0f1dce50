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

	"github.com/google/uuid"

	"github.com/nebula-stream/nebula-core/internal/engine"
	"github.com/nebula-stream/nebula-core/internal/planmodel"
)

// UpdateResult records the outcome of merging one queued query plan,
// for callers (typically internal/storagehandler's
// GlobalQueryPlanUpdatePhase) that want to report per-query status
// back to the submitter.
type UpdateResult struct {
	QueryID string
	SQPID   string
	Err     error
}

// GlobalQueryPlan is the mapping sqp-id -> SQP plus the plansToAdd
// queue and source-name -> sqp-ids reverse index of spec §3. Access is
// expected to be serialized by internal/storagehandler's write lock on
// the GQP resource (spec §4.3); GlobalQueryPlan itself performs no
// internal locking, matching the "single writer under an external
// critical section" shape of tenant/manager.go's table mutation
// methods.
type GlobalQueryPlan struct {
	Merger MergerRule

	sqps     map[string]*SharedQueryPlan
	sqpOrder []string // insertion order, for deterministic merge-candidate scanning

	plansToAdd []QueryPlan

	// sourceIndex maps a source name to the set of sqp ids consuming
	// it (spec §3 "reverse index source-name -> set-of-sqp-ids").
	sourceIndex map[string]map[string]bool
}

// New returns an empty GlobalQueryPlan using the given merger rule. A
// nil rule defaults to DefaultMerger (spec §4.3's baseline, no
// merging).
func New(merger MergerRule) *GlobalQueryPlan {
	if merger == nil {
		merger = DefaultMerger{}
	}
	return &GlobalQueryPlan{
		Merger:      merger,
		sqps:        map[string]*SharedQueryPlan{},
		sourceIndex: map[string]map[string]bool{},
	}
}

// SQP looks up a Shared Query Plan by id.
func (g *GlobalQueryPlan) SQP(id string) (*SharedQueryPlan, bool) {
	s, ok := g.sqps[id]
	return s, ok
}

// SQPIDs returns every known SQP id in creation order.
func (g *GlobalQueryPlan) SQPIDs() []string {
	out := make([]string, len(g.sqpOrder))
	copy(out, g.sqpOrder)
	return out
}

// SourceConsumers returns the sqp ids currently consuming the named
// source.
func (g *GlobalQueryPlan) SourceConsumers(source string) []string {
	set := g.sourceIndex[source]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// AddQueryPlan implements spec §4.3's addQueryPlan(qp): it atomically
// pushes the new plan onto plansToAdd. The caller is responsible for
// holding C10's write lock on GQP and SourceCatalog for the duration
// of this call (spec: "atomically (under C10's write lock...)").
func (g *GlobalQueryPlan) AddQueryPlan(qp QueryPlan) {
	g.plansToAdd = append(g.plansToAdd, qp)
}

// PendingCount reports how many submissions are queued, so a caller
// enforcing queryBatchSize (spec §6) can decide how many to drain.
func (g *GlobalQueryPlan) PendingCount() int { return len(g.plansToAdd) }

// Update drains up to batchSize entries from plansToAdd (0 means drain
// everything) and applies the configured MergerRule to each in
// arrival order, matching the update-phase draining behavior
// referenced by spec §4.3 and §6's queryBatchSize option. A query
// whose plan fails to validate, or whose merger invocation errors, is
// left out of every SQP and its error is returned in its
// UpdateResult.Err; no per-query status is recorded here, so the query
// is not marked Failed anywhere by this package.
func (g *GlobalQueryPlan) Update(ctx context.Context, batchSize int) []UpdateResult {
	n := len(g.plansToAdd)
	if batchSize > 0 && batchSize < n {
		n = batchSize
	}
	batch := g.plansToAdd[:n]
	g.plansToAdd = g.plansToAdd[n:]

	results := make([]UpdateResult, 0, n)
	for _, qp := range batch {
		results = append(results, g.applyOne(ctx, qp))
	}
	return results
}

func (g *GlobalQueryPlan) applyOne(ctx context.Context, qp QueryPlan) UpdateResult {
	if err := qp.Tree.Validate(); err != nil {
		return UpdateResult{QueryID: qp.QueryID, Err: &engine.SchemaMismatchError{QueryID: qp.QueryID, Reason: err.Error()}}
	}

	sqp, err := g.Merger.Merge(ctx, g, qp)
	if err != nil {
		return UpdateResult{QueryID: qp.QueryID, Err: err}
	}
	sqp.MarkProcessed()
	g.reindexSources(sqp)
	return UpdateResult{QueryID: qp.QueryID, SQPID: sqp.ID}
}

// newStandaloneSQP creates a fresh SQP containing only qp, the
// fallback path every MergerRule uses when no merge candidate is
// found (or merging is disabled entirely).
func (g *GlobalQueryPlan) newStandaloneSQP(qp QueryPlan) (*SharedQueryPlan, error) {
	sqp := &SharedQueryPlan{
		ID:             uuid.NewString(),
		MergedTree:     qp.Tree,
		Members:        map[string]planmodel.NodeID{qp.QueryID: qp.Sink},
		ConsumedSource: map[string]bool{},
		Status:         Created,
	}
	addConsumedSources(sqp, qp.Tree, qp.Sink)
	g.sqps[sqp.ID] = sqp
	g.sqpOrder = append(g.sqpOrder, sqp.ID)
	return sqp, nil
}

func (g *GlobalQueryPlan) reindexSources(sqp *SharedQueryPlan) {
	for source := range sqp.ConsumedSource {
		set, ok := g.sourceIndex[source]
		if !ok {
			set = map[string]bool{}
			g.sourceIndex[source] = set
		}
		set[sqp.ID] = true
	}
}

// RemoveMember detaches a query from its SQP (e.g. on undeploy); once
// the SQP has no remaining members it is destroyed, matching spec
// §3's "SQP ... destroyed on last-member undeploy".
func (g *GlobalQueryPlan) RemoveMember(sqpID, queryID string) {
	sqp, ok := g.sqps[sqpID]
	if !ok {
		return
	}
	delete(sqp.Members, queryID)
	if len(sqp.Members) == 0 {
		sqp.MarkStopped()
		for source := range sqp.ConsumedSource {
			delete(g.sourceIndex[source], sqpID)
		}
		delete(g.sqps, sqpID)
		for i, id := range g.sqpOrder {
			if id == sqpID {
				g.sqpOrder = append(g.sqpOrder[:i], g.sqpOrder[i+1:]...)
				break
			}
		}
	}
}
