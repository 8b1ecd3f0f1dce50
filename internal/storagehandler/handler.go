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

package storagehandler

import (
	"sync"

	"github.com/nebula-stream/nebula-core/internal/engine"
	"github.com/nebula-stream/nebula-core/internal/gqp"
	"github.com/nebula-stream/nebula-core/internal/topology"
)

// Handler owns the six control-plane resources and the per-resource
// locks that serialize access to them (spec §4.9).
type Handler struct {
	locks [numResources]sync.RWMutex

	Topology        *topology.Topology
	ExecutionPlan   *GlobalExecutionPlan
	QueryCatalog    *QueryCatalog
	GlobalQueryPlan *gqp.GlobalQueryPlan
	SourceCatalog   *SourceCatalog
	UdfCatalog      *UdfCatalog
}

// New returns a Handler wired to the given Topology and
// GlobalQueryPlan, which are stored as given (a nil argument stays
// nil). The other four resources are always freshly-constructed empty
// instances.
func New(top *topology.Topology, gq *gqp.GlobalQueryPlan) *Handler {
	return &Handler{
		Topology:        top,
		ExecutionPlan:   NewGlobalExecutionPlan(),
		QueryCatalog:    NewQueryCatalog(),
		GlobalQueryPlan: gq,
		SourceCatalog:   NewSourceCatalog(),
		UdfCatalog:      NewUdfCatalog(),
	}
}

// Begin acquires every resource req declares, in the fixed canonical
// order (spec §4.9), and returns a Txn exposing typed accessors for
// exactly the declared resources. Callers must call Txn.Release
// exactly once (typically via defer) to release the locks in reverse
// acquisition order.
func (h *Handler) Begin(req *Request) *Txn {
	for r := Resource(0); r < numResources; r++ {
		if !req.Declares(r) {
			continue
		}
		if req.ModeFor(r) == ReadWrite {
			h.locks[r].Lock()
		} else {
			h.locks[r].RLock()
		}
	}
	return &Txn{h: h, req: req}
}

// Txn is a held set of resource locks for one request's declared
// subset (spec §4.9). A Txn is single-use: it has no method that
// acquires further locks, so a second lock set always requires a new
// Handler.Begin call rather than reusing this one.
type Txn struct {
	h        *Handler
	req      *Request
	released bool
}

// Release unlocks every resource this Txn acquired, in reverse order.
// Calling Release more than once is a no-op.
func (t *Txn) Release() {
	if t.released {
		return
	}
	t.released = true
	for r := numResources - 1; r >= 0; r-- {
		if !t.req.Declares(r) {
			continue
		}
		if t.req.ModeFor(r) == ReadWrite {
			t.h.locks[r].Unlock()
		} else {
			t.h.locks[r].RUnlock()
		}
	}
}

func (t *Txn) check(r Resource) error {
	if !t.req.Declares(r) {
		return &engine.ResourceUnlockedError{Resource: r.String()}
	}
	return nil
}

// Topology returns the Handler's Topology, failing with
// ResourceUnlockedError if this Txn's Request did not declare it
// (spec §4.9: "A request that did not declare a resource fails on
// access").
func (t *Txn) Topology() (*topology.Topology, error) {
	if err := t.check(ResourceTopology); err != nil {
		return nil, err
	}
	return t.h.Topology, nil
}

// ExecutionPlan returns the Handler's GlobalExecutionPlan, subject to
// the same declaration check as Topology.
func (t *Txn) ExecutionPlan() (*GlobalExecutionPlan, error) {
	if err := t.check(ResourceGlobalExecutionPlan); err != nil {
		return nil, err
	}
	return t.h.ExecutionPlan, nil
}

// QueryCatalog returns the Handler's QueryCatalog, subject to the same
// declaration check as Topology.
func (t *Txn) QueryCatalog() (*QueryCatalog, error) {
	if err := t.check(ResourceQueryCatalog); err != nil {
		return nil, err
	}
	return t.h.QueryCatalog, nil
}

// GlobalQueryPlan returns the Handler's GlobalQueryPlan, subject to
// the same declaration check as Topology.
func (t *Txn) GlobalQueryPlan() (*gqp.GlobalQueryPlan, error) {
	if err := t.check(ResourceGlobalQueryPlan); err != nil {
		return nil, err
	}
	return t.h.GlobalQueryPlan, nil
}

// SourceCatalog returns the Handler's SourceCatalog, subject to the
// same declaration check as Topology.
func (t *Txn) SourceCatalog() (*SourceCatalog, error) {
	if err := t.check(ResourceSourceCatalog); err != nil {
		return nil, err
	}
	return t.h.SourceCatalog, nil
}

// UdfCatalog returns the Handler's UdfCatalog, subject to the same
// declaration check as Topology.
func (t *Txn) UdfCatalog() (*UdfCatalog, error) {
	if err := t.check(ResourceUdfCatalog); err != nil {
		return nil, err
	}
	return t.h.UdfCatalog, nil
}
