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

// Command nebula-worker hosts a topology node: it compiles the
// pipelines the coordinator assigns it (C6) and executes them over
// pooled tuple buffers (spec §5), maintaining C7-C9 state locally.
// Like nebula-coordinator, the inter-node RPC transport that delivers
// pipeline assignments is an external collaborator (spec §1); this
// binary wires up the buffer pool and worker threads the way
// cmd/snellerd/run_worker.go wires up its tenant worker process.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
)

var version = "development"

func main() {
	fs := flag.NewFlagSet("nebula-worker", flag.ExitOnError)
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
	if opts.NumWorkerThreads > runtime.NumCPU() {
		logger.Printf("warning: numWorkerThreads (%d) exceeds available CPUs (%d)", opts.NumWorkerThreads, runtime.NumCPU())
	}

	fmt.Fprintf(os.Stderr, "nebula-worker %s starting (%d worker threads)\n", version, opts.NumWorkerThreads)
	runWorker(logger, opts)
}
