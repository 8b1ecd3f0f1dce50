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

import "github.com/nebula-stream/nebula-core/internal/gqp"

// QueryRecord is one entry in the QueryCatalog: a submitted query's
// id and its last-known lifecycle status (spec §3's SQP Status,
// reused here since a query's externally-visible status tracks its
// SQP's).
type QueryRecord struct {
	QueryID string
	Status  gqp.Status
}

// QueryCatalog is the registry of submitted queries (spec §4.9).
// Mutation is serialized entirely by the Handler's QueryCatalog lock;
// the catalog itself performs no internal locking.
type QueryCatalog struct {
	byID map[string]*QueryRecord
}

// NewQueryCatalog returns an empty QueryCatalog.
func NewQueryCatalog() *QueryCatalog { return &QueryCatalog{byID: map[string]*QueryRecord{}} }

// Put records/updates a query's status.
func (c *QueryCatalog) Put(queryID string, status gqp.Status) {
	c.byID[queryID] = &QueryRecord{QueryID: queryID, Status: status}
}

// Get looks up a query's record.
func (c *QueryCatalog) Get(queryID string) (*QueryRecord, bool) {
	r, ok := c.byID[queryID]
	return r, ok
}

// All returns every tracked query record.
func (c *QueryCatalog) All() []*QueryRecord {
	out := make([]*QueryRecord, 0, len(c.byID))
	for _, r := range c.byID {
		out = append(out, r)
	}
	return out
}

// SourceCatalog resolves a logical stream name to the topology node
// it originates from (spec §4.4 step 1, spec §1's "raw source/sink
// adapters" being the external collaborator that actually reads the
// stream; this catalog only remembers where it enters the topology).
type SourceCatalog struct {
	nodeOf map[string]string
}

// NewSourceCatalog returns an empty SourceCatalog.
func NewSourceCatalog() *SourceCatalog { return &SourceCatalog{nodeOf: map[string]string{}} }

// Register binds sourceName to the topology node it originates from.
func (c *SourceCatalog) Register(sourceName, nodeID string) { c.nodeOf[sourceName] = nodeID }

// Resolve implements topology.SourceResolver.
func (c *SourceCatalog) Resolve(sourceName string) (string, bool) {
	id, ok := c.nodeOf[sourceName]
	return id, ok
}

// UdfCatalog is the registry of user-defined functions callable from
// Map/Filter/Projection expressions; the functions themselves are an
// external collaborator (spec §1), so the catalog only tracks names
// and declared arities here.
type UdfCatalog struct {
	arity map[string]int
}

// NewUdfCatalog returns an empty UdfCatalog.
func NewUdfCatalog() *UdfCatalog { return &UdfCatalog{arity: map[string]int{}} }

// Register adds a UDF name with its declared arity.
func (c *UdfCatalog) Register(name string, arity int) { c.arity[name] = arity }

// Lookup returns a UDF's declared arity.
func (c *UdfCatalog) Lookup(name string) (int, bool) {
	a, ok := c.arity[name]
	return a, ok
}

// ExecutionNode is spec §3's "Execution Node: topology-node-id -> list
// of assigned physical operator instances."
type ExecutionNode struct {
	TopologyNodeID string
	OperatorIDs    []string
}

// GlobalExecutionPlan maps each topology node hosting at least one
// operator to its ExecutionNode (spec §3).
type GlobalExecutionPlan struct {
	nodes map[string]*ExecutionNode
}

// NewGlobalExecutionPlan returns an empty GlobalExecutionPlan.
func NewGlobalExecutionPlan() *GlobalExecutionPlan {
	return &GlobalExecutionPlan{nodes: map[string]*ExecutionNode{}}
}

// Assign appends operatorID to the ExecutionNode for topologyNodeID,
// creating it if absent.
func (p *GlobalExecutionPlan) Assign(topologyNodeID, operatorID string) {
	n, ok := p.nodes[topologyNodeID]
	if !ok {
		n = &ExecutionNode{TopologyNodeID: topologyNodeID}
		p.nodes[topologyNodeID] = n
	}
	n.OperatorIDs = append(n.OperatorIDs, operatorID)
}

// Node returns the ExecutionNode for a topology node, if any.
func (p *GlobalExecutionPlan) Node(topologyNodeID string) (*ExecutionNode, bool) {
	n, ok := p.nodes[topologyNodeID]
	return n, ok
}

// Unassign removes every operator assignment for topologyNodeID, e.g.
// when un-deploying an SQP.
func (p *GlobalExecutionPlan) Unassign(topologyNodeID string) {
	delete(p.nodes, topologyNodeID)
}
