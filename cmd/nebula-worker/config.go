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
	"flag"

	"github.com/nebula-stream/nebula-core/internal/config"
)

// RegisterConfigFlags adds internal/config's flag overrides to fs,
// following cmd/snellerd/run_worker.go's workerCmd flag-set style.
func RegisterConfigFlags(fs *flag.FlagSet) { config.RegisterFlags(fs) }

func loadConfig(path string, fs *flag.FlagSet) (config.Options, error) {
	return config.Load(path, fs)
}
