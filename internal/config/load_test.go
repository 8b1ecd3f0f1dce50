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
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	d := Defaults()
	if err := d.Validate(); err != nil {
		t.Fatalf("Defaults() must validate: %v", err)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nebula.yaml")
	doc := "restPort: 9001\nqueryMergerRule: SignatureContainment\nmemoryLayoutPolicy: ForceColumnLayout\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.RestPort != 9001 {
		t.Fatalf("restPort = %d, want 9001", opts.RestPort)
	}
	if opts.QueryMergerRule != SignatureContainment {
		t.Fatalf("queryMergerRule = %s, want SignatureContainment", opts.QueryMergerRule)
	}
	if opts.NumWorkerThreads != Defaults().NumWorkerThreads {
		t.Fatalf("numWorkerThreads should keep its default when unset in YAML")
	}
}

func TestFlagsOverrideYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nebula.yaml")
	if err := os.WriteFile(path, []byte("restPort: 9001\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"-rest-port=9002"}); err != nil {
		t.Fatal(err)
	}
	opts, err := Load(path, fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.RestPort != 9002 {
		t.Fatalf("restPort = %d, want 9002 (flag should win over YAML)", opts.RestPort)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	o := Defaults()
	o.RestPort = 0
	if err := o.Validate(); err == nil {
		t.Fatalf("expected validation error for restPort=0")
	}
}

func TestValidateRejectsUnknownMergerRule(t *testing.T) {
	o := Defaults()
	o.QueryMergerRule = "NotARule"
	if err := o.Validate(); err == nil {
		t.Fatalf("expected validation error for unknown queryMergerRule")
	}
}
