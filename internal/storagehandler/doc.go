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

// Package storagehandler implements the Request/Storage-Handler of
// spec §4.9: typed, two-phase-locked access to the six control-plane
// resources (Topology, GlobalExecutionPlan, QueryCatalog,
// GlobalQueryPlan, SourceCatalog, UdfCatalog). A Request declares up
// front which resources it will touch and in which mode; Handler.Begin
// acquires exactly those resources' locks in the fixed canonical order
// listed above, so that no two requests can deadlock regardless of
// how many resources each one declares.
//
// Grounded on tenant/manager.go's `m.lock.Lock()` critical-section
// idiom, generalized from tenant manager's single coarse lock to one
// RWMutex per resource.
package storagehandler
