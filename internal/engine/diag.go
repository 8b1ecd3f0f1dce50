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

package engine

// Diagnostics is a global hook that hot-path packages (slicestore,
// aggregation, jointrigger, pipeline) can call to report low-level
// diagnostic information without taking a hard dependency on a
// logging library. It is nil by default; set it during process
// start-up the way vm.Errorf is set in the teacher codebase.
var Diagnostics func(format string, args ...any)

// Logf calls Diagnostics if it has been set, otherwise it is a no-op.
func Logf(format string, args ...any) {
	if Diagnostics != nil {
		Diagnostics(format, args...)
	}
}
