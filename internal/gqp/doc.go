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

// Package gqp implements the Global Query Plan (spec component C4): a
// set of Shared Query Plans (SQPs), each shared by one or more member
// queries, kept in sync as new query submissions arrive. New arrivals
// are merged into an existing SQP when the configured MergerRule
// decides they are signature-equal or one contains the other;
// otherwise they become a new SQP.
//
// Mutations go through AddQueryPlan, which queues the submission and
// leaves draining it to Update, mirroring the "accumulate, then apply
// under one critical section" shape used by the collector/flush split
// in tenant/manager.go.
package gqp
