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

// Command nebula-coordinator accepts RunQueryRequests, drives the
// GlobalQueryPlanUpdatePhase and QueryPlacementPhase over them (C2-C5),
// and hands the result to workers for compilation and execution (C6).
// The REST/RPC transport that carries those requests is, per spec §1,
// an external collaborator specified only at its interface; this
// binary wires the core engine together and exposes the bare control
// surface needed to prove it is reachable, mirroring the structure of
// cmd/snellerd's daemon entry point without its SQL-specific REST API.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

var version = "development"

func main() {
	fs := flag.NewFlagSet("nebula-coordinator", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML configuration file (spec §6)")
	RegisterConfigFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "", log.Lshortfile)
	opts, err := loadConfig(*configPath, fs)
	if err != nil {
		logger.Printf("configuration error: %s", err)
		os.Exit(2)
	}

	fmt.Fprintf(os.Stderr, "nebula-coordinator %s starting (log level %s)\n", version, opts.LogLevel)
	runCoordinator(logger, opts)
}
