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

package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nebula-stream/nebula-core/internal/config"
	"github.com/nebula-stream/nebula-core/internal/pipeline"
)

// runWorker allocates the three buffer-pool tiers spec §6 names
// (global, per-worker, per-source-local), starts the data-plane
// listener that will eventually carry inter-node buffer transport,
// and blocks until SIGINT/SIGTERM, at which point it closes the
// listener, waits for the accept loop to exit, and returns. No
// pipeline stages are started here, so there are no in-flight Execute
// calls to drain.
func runWorker(logger *log.Logger, opts config.Options) {
	global := pipeline.NewPool(opts.NumberOfBuffersInGlobalBufferManager, opts.BufferSizeInBytes)
	perWorker := make([]*pipeline.Pool, opts.NumWorkerThreads)
	for i := range perWorker {
		perWorker[i] = pipeline.NewPool(opts.NumberOfBuffersPerWorker, opts.BufferSizeInBytes)
	}
	sourceLocal := pipeline.NewPool(opts.NumberOfBuffersInSourceLocalBufferPool, opts.BufferSizeInBytes)
	logger.Printf("buffer pools ready: global=%d per-worker=%dx%d source-local=%d (buffer size %d bytes)",
		global.Available(), opts.NumWorkerThreads, opts.NumberOfBuffersPerWorker, sourceLocal.Available(), opts.BufferSizeInBytes)

	addr := fmt.Sprintf(":%d", opts.DataPort)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal(err)
	}
	defer l.Close()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Printf("nebula-worker listening on %v (data plane)\n", l.Addr())
		for {
			conn, err := l.Accept()
			if err != nil {
				select {
				case <-stop:
					return
				default:
					logger.Printf("accept error: %s", err)
					return
				}
			}
			conn.Close() // inter-node buffer transport is an external collaborator (spec §1)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	close(stop)
	l.Close()
	wg.Wait()
}
