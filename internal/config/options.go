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

package config

import (
	"fmt"

	"github.com/nebula-stream/nebula-core/internal/gqp"
	"github.com/nebula-stream/nebula-core/internal/tuple"
)

// MergerRule names one of spec §6's queryMergerRule choices.
type MergerRule string

const (
	DefaultMerger        MergerRule = "DefaultMerger"
	SignatureEquality    MergerRule = "SignatureEquality"
	SignatureContainment MergerRule = "SignatureContainment"
)

// Rule returns the gqp.MergerRule this option names.
func (m MergerRule) Rule() (gqp.MergerRule, error) {
	switch m {
	case "", DefaultMerger:
		return gqp.DefaultMerger{}, nil
	case SignatureEquality:
		return gqp.SignatureEqualityMerger{}, nil
	case SignatureContainment:
		return gqp.SignatureContainmentMerger{}, nil
	default:
		return nil, fmt.Errorf("config: unknown queryMergerRule %q", m)
	}
}

// MemoryLayoutPolicy names one of spec §6's memoryLayoutPolicy choices.
type MemoryLayoutPolicy string

const (
	ForceRowLayout    MemoryLayoutPolicy = "ForceRowLayout"
	ForceColumnLayout MemoryLayoutPolicy = "ForceColumnLayout"
)

// Layout returns the tuple.Layout this option names.
func (p MemoryLayoutPolicy) Layout() (tuple.Layout, error) {
	switch p {
	case "", ForceRowLayout:
		return tuple.RowLayout, nil
	case ForceColumnLayout:
		return tuple.ColumnLayout, nil
	default:
		return 0, fmt.Errorf("config: unknown memoryLayoutPolicy %q", p)
	}
}

// LogLevel names the ambient log verbosity (spec §6's logLevel).
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l LogLevel) valid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// Options is the full recognized configuration table of spec §6.
// Every field corresponds to exactly one named option there; its json
// tag (which sigs.k8s.io/yaml uses when decoding YAML) matches the
// option's spelling in the table so that a config file can use the
// names verbatim.
type Options struct {
	RestPort int `json:"restPort"`
	RPCPort  int `json:"rpcPort"`
	DataPort int `json:"dataPort"`

	NumberOfBuffersInGlobalBufferManager   int `json:"numberOfBuffersInGlobalBufferManager"`
	NumberOfBuffersPerWorker               int `json:"numberOfBuffersPerWorker"`
	NumberOfBuffersInSourceLocalBufferPool int `json:"numberOfBuffersInSourceLocalBufferPool"`
	BufferSizeInBytes                      int `json:"bufferSizeInBytes"`

	NumWorkerThreads int `json:"numWorkerThreads"`

	QueryMergerRule MergerRule `json:"queryMergerRule"`
	QueryBatchSize  int        `json:"queryBatchSize"`

	MemoryLayoutPolicy   MemoryLayoutPolicy `json:"memoryLayoutPolicy"`
	IncrementalPlacement bool               `json:"incrementalPlacement"`

	LogLevel LogLevel `json:"logLevel"`
}

// Defaults returns the baseline Options a coordinator or worker starts
// from before any YAML file or flag override is applied. Values are
// chosen to be safe for a single-process local run, matching the
// teacher's daemon defaults (cmd/snellerd/run_daemon.go's "127.0.0.1:8000"
// style endpoint defaults).
func Defaults() Options {
	return Options{
		RestPort: 8000,
		RPCPort:  9000,
		DataPort: 9100,

		NumberOfBuffersInGlobalBufferManager:   4096,
		NumberOfBuffersPerWorker:               128,
		NumberOfBuffersInSourceLocalBufferPool: 64,
		BufferSizeInBytes:                      4096,

		NumWorkerThreads: 1,

		QueryMergerRule: DefaultMerger,
		QueryBatchSize:  16,

		MemoryLayoutPolicy:   ForceRowLayout,
		IncrementalPlacement: true,

		LogLevel: LogLevelInfo,
	}
}

// Validate checks every option against its documented constraint and
// returns a non-nil error naming the first violation found, in field
// declaration order. A configuration error should make the process
// exit with status 2 (spec §6: "2 on configuration error").
func (o *Options) Validate() error {
	switch {
	case o.RestPort <= 0 || o.RestPort > 65535:
		return fmt.Errorf("config: restPort %d out of range", o.RestPort)
	case o.RPCPort <= 0 || o.RPCPort > 65535:
		return fmt.Errorf("config: rpcPort %d out of range", o.RPCPort)
	case o.DataPort <= 0 || o.DataPort > 65535:
		return fmt.Errorf("config: dataPort %d out of range", o.DataPort)
	case o.NumberOfBuffersInGlobalBufferManager <= 0:
		return fmt.Errorf("config: numberOfBuffersInGlobalBufferManager must be positive")
	case o.NumberOfBuffersPerWorker <= 0:
		return fmt.Errorf("config: numberOfBuffersPerWorker must be positive")
	case o.NumberOfBuffersInSourceLocalBufferPool <= 0:
		return fmt.Errorf("config: numberOfBuffersInSourceLocalBufferPool must be positive")
	case o.BufferSizeInBytes <= 0:
		return fmt.Errorf("config: bufferSizeInBytes must be positive")
	case o.NumWorkerThreads <= 0:
		return fmt.Errorf("config: numWorkerThreads must be positive")
	case o.QueryBatchSize <= 0:
		return fmt.Errorf("config: queryBatchSize must be positive")
	case !o.LogLevel.valid():
		return fmt.Errorf("config: unknown logLevel %q", o.LogLevel)
	}
	if _, err := o.QueryMergerRule.Rule(); err != nil {
		return err
	}
	if _, err := o.MemoryLayoutPolicy.Layout(); err != nil {
		return err
	}
	return nil
}
