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

// Resource names one of the six control-plane handles spec §4.9
// requests may touch. The declaration order of the constants below
// IS the canonical total lock-acquisition order spec §4.9 specifies
// ("Topology, GlobalExecutionPlan, QueryCatalog, GlobalQueryPlan,
// SourceCatalog, UdfCatalog"); deadlock-freedom follows directly from
// always acquiring in this order (spec §4.9: "Deadlock-freedom
// follows from the canonical order").
type Resource int

const (
	ResourceTopology Resource = iota
	ResourceGlobalExecutionPlan
	ResourceQueryCatalog
	ResourceGlobalQueryPlan
	ResourceSourceCatalog
	ResourceUdfCatalog
	numResources
)

func (r Resource) String() string {
	switch r {
	case ResourceTopology:
		return "Topology"
	case ResourceGlobalExecutionPlan:
		return "GlobalExecutionPlan"
	case ResourceQueryCatalog:
		return "QueryCatalog"
	case ResourceGlobalQueryPlan:
		return "GlobalQueryPlan"
	case ResourceSourceCatalog:
		return "SourceCatalog"
	case ResourceUdfCatalog:
		return "UdfCatalog"
	default:
		return "Unknown"
	}
}

// Mode is the access mode a Request declares for a Resource (spec
// §4.9: "Read-only requests take shared locks; writers take
// exclusive").
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

// Request declares, up front, the subset of resources a caller will
// touch and in which mode (spec §4.9: "Each request declares the
// subset it will touch"). The zero Request declares nothing.
type Request struct {
	declared [numResources]bool
	mode     [numResources]Mode
}

// NewRequest returns an empty Request.
func NewRequest() *Request { return &Request{} }

// Declare adds resource to the request's declared set under mode, and
// returns the Request for chaining. Declaring the same resource twice
// with different modes upgrades it to ReadWrite if either call asked
// for it, since a single critical section can only hold one lock kind
// per resource.
func (r *Request) Declare(resource Resource, mode Mode) *Request {
	r.declared[resource] = true
	if mode == ReadWrite || r.mode[resource] == ReadWrite {
		r.mode[resource] = ReadWrite
	} else {
		r.mode[resource] = mode
	}
	return r
}

// Declares reports whether resource was declared by this request.
func (r *Request) Declares(resource Resource) bool { return r.declared[resource] }

// ModeFor returns the declared mode for resource (meaningless if
// Declares(resource) is false).
func (r *Request) ModeFor(resource Resource) Mode { return r.mode[resource] }
