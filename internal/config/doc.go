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

// Package config loads and validates the coordinator/worker
// configuration table from spec §6: network ports, buffer-pool
// sizing, worker parallelism, the query-merger rule, the memory
// layout policy and whether placement runs incrementally, plus the
// ambient log level. Options decode from a YAML file via
// sigs.k8s.io/yaml (the teacher's config-file library) and may be
// overridden from a flag.FlagSet built the way cmd/snellerd/run_daemon.go
// builds its daemonCmd flag set, so that `-rest-port` etc. win over
// whatever the YAML file says.
package config
