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
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nebula-stream/nebula-core/internal/config"
	"github.com/nebula-stream/nebula-core/internal/gqp"
	"github.com/nebula-stream/nebula-core/internal/storagehandler"
	"github.com/nebula-stream/nebula-core/internal/topology"
)

// runCoordinator builds the control-plane resources (spec §4.9),
// starts the bare REST listener that proves the control surface is
// reachable, and blocks until SIGINT/SIGTERM, following
// cmd/snellerd/run_daemon.go's listen-then-wait-for-signal structure.
func runCoordinator(logger *log.Logger, opts config.Options) {
	rule, err := opts.QueryMergerRule.Rule()
	if err != nil {
		logger.Printf("configuration error: %s", err)
		os.Exit(2)
	}

	top := topology.New()
	gq := gqp.New(rule)
	handler := storagehandler.New(top, gq)
	_ = handler // acquired per-request via Handler.Begin; kept alive for the process lifetime

	addr := fmt.Sprintf(":%d", opts.RestPort)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal(err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := &http.Server{Handler: mux}

	go func() {
		logger.Printf("nebula-coordinator listening on %v (merger=%s)\n", l.Addr(), rule.Name())
		if err := server.Serve(l); err != nil && err != http.ErrServerClosed {
			logger.Fatal(err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("shutdown error: %s", err)
	}
}
