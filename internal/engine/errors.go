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

// Package engine collects the error kinds, diagnostics hook, and
// status codes shared across NebulaStream's core packages, so that
// the control plane (internal/storagehandler, internal/gqp,
// internal/topology, internal/pipeline) can classify and propagate
// failures in one consistent vocabulary (see spec §7).
package engine

import "fmt"

// SchemaMismatchError is returned when a logical-plan invariant is
// violated during signature computation or merge (a query is rejected
// and never admitted to any Shared Query Plan).
type SchemaMismatchError struct {
	QueryID string
	Reason  string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch for query %s: %s", e.QueryID, e.Reason)
}

// PlacementFailedError is returned when no topology node can satisfy
// an operator's placement constraints.
type PlacementFailedError struct {
	OperatorID string
	Reason     string
}

func (e *PlacementFailedError) Error() string {
	return fmt.Sprintf("placement failed for operator %s: %s", e.OperatorID, e.Reason)
}

// CompilationFailedError is returned when the code-gen backend fails
// to produce a pipeline stage.
type CompilationFailedError struct {
	StageID int
	Reason  string
}

func (e *CompilationFailedError) Error() string {
	return fmt.Sprintf("compilation failed for stage %d: %s", e.StageID, e.Reason)
}

// CapacityExhaustedError is returned when the buffer pool cannot
// satisfy a request within its configured timeout.
type CapacityExhaustedError struct {
	Requested int
}

func (e *CapacityExhaustedError) Error() string {
	return fmt.Sprintf("capacity exhausted: could not satisfy request for %d bytes", e.Requested)
}

// ResourceUnlockedError is returned when a request touches a
// storage-handler resource it did not declare up front.
type ResourceUnlockedError struct {
	Resource string
}

func (e *ResourceUnlockedError) Error() string {
	return fmt.Sprintf("request did not declare resource %q", e.Resource)
}

// SMTTimeoutError is an internal signal (not surfaced to callers as a
// failure) recording that a containment check's solver call exceeded
// its deadline; per spec §4.2 it is treated as NoContainment.
type SMTTimeoutError struct {
	Elapsed string
}

func (e *SMTTimeoutError) Error() string {
	return fmt.Sprintf("solver call timed out after %s", e.Elapsed)
}
