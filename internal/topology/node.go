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
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// LinkProperties describes a directed link between two topology nodes
// (spec §3: "Links are directed edges with (bandwidth, latency)").
type LinkProperties struct {
	BandwidthBps int64
	LatencyMicro int64
}

// Node is a topology node (spec §3 Topology Node): a worker capable of
// hosting physical operator instances, with a fixed CPU-slot capacity
// budget and optional geo-location. RemainingCPU is mutated under
// concurrent placement, so it is an atomic int64 rather than a plain
// field.
type Node struct {
	ID      string
	Address string
	Fixed   bool // false => mobile
	GeoLat  float64
	GeoLon  float64
	HasGeo  bool

	totalCPU     int64
	remainingCPU atomic.Int64

	// links holds outgoing link properties keyed by the neighbor node
	// id. It is a plain map written by LinkTo, which may be called
	// before or after RegisterNode; neither Node nor Topology
	// synchronizes LinkTo with concurrent reads of the same node.
	links map[string]LinkProperties
}

// NewNode constructs a topology node with totalCPU remaining slots.
func NewNode(id, address string, totalCPU int64, fixed bool) *Node {
	n := &Node{
		ID:       id,
		Address:  address,
		Fixed:    fixed,
		totalCPU: totalCPU,
		links:    map[string]LinkProperties{},
	}
	n.remainingCPU.Store(totalCPU)
	return n
}

// SetGeo attaches an optional geo-location (spec §3's "optional
// geo-location").
func (n *Node) SetGeo(lat, lon float64) {
	n.GeoLat, n.GeoLon, n.HasGeo = lat, lon, true
}

// RemainingCPU returns the node's currently unused CPU-slot budget.
func (n *Node) RemainingCPU() int64 { return n.remainingCPU.Load() }

// TotalCPU returns the node's total CPU-slot budget.
func (n *Node) TotalCPU() int64 { return n.totalCPU }

// TryReserve attempts to atomically reserve `slots` units of CPU
// capacity, failing (returning false, no mutation) if insufficient
// capacity remains — the compare-and-swap retry loop is the
// placement engine's only source of truth for "reject candidates with
// zero remaining CPU" (spec §4.4 step 3).
func (n *Node) TryReserve(slots int64) bool {
	for {
		cur := n.remainingCPU.Load()
		if cur < slots {
			return false
		}
		if n.remainingCPU.CompareAndSwap(cur, cur-slots) {
			return true
		}
	}
}

// Release returns previously-reserved CPU capacity, e.g. when an
// operator is un-placed during incremental re-placement.
func (n *Node) Release(slots int64) {
	n.remainingCPU.Add(slots)
}

// LinkTo registers an outgoing link to neighbor.
func (n *Node) LinkTo(neighbor string, props LinkProperties) {
	n.links[neighbor] = props
}

// LinkedNeighbors returns the ids of nodes this node has an outgoing
// link to.
func (n *Node) LinkedNeighbors() []string {
	out := make([]string, 0, len(n.links))
	for id := range n.links {
		out = append(out, id)
	}
	return out
}

// Topology is the registry of topology nodes and their links
// (spec §3). Node lookups happen on every placement candidate scan
// (spec §4.4 step 3: "find a candidate node that already hosts a
// child ... or is the highest-CPU neighbor"), so the registry is
// backed by xsync.Map rather than a mutex-guarded plain map.
type Topology struct {
	nodes *xsync.Map[string, *Node]
	// Root is the id of the node sinks are pinned to (spec §4.4 step
	// 2: "Pin sink operators to the topology root").
	Root string
}

// New returns an empty Topology.
func New() *Topology {
	return &Topology{nodes: xsync.NewMap[string, *Node]()}
}

// RegisterNode adds n to the topology.
func (t *Topology) RegisterNode(n *Node) {
	t.nodes.Store(n.ID, n)
}

// Node looks up a node by id.
func (t *Topology) Node(id string) (*Node, bool) {
	return t.nodes.Load(id)
}

// RemoveNode removes a node from the topology (e.g. on worker
// departure).
func (t *Topology) RemoveNode(id string) {
	t.nodes.Delete(id)
}

// Range iterates every registered node. The callback's return value
// controls whether iteration continues.
func (t *Topology) Range(fn func(*Node) bool) {
	t.nodes.Range(func(_ string, n *Node) bool { return fn(n) })
}

// HighestCPUNeighbor returns the neighbor of host with the most
// remaining CPU capacity (spec §4.4 step 3's "(b) the highest-CPU
// neighbor of that host"), or ("", false) if host has no registered
// neighbors.
func (t *Topology) HighestCPUNeighbor(hostID string) (string, bool) {
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
		if best == nil || n.RemainingCPU() > best.RemainingCPU() {
			best = n
		}
	}
	if best == nil {
		return "", false
	}
	return best.ID, true
}
