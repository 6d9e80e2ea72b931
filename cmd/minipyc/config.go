// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional minipyc.yaml sidecar, providing defaults for
// flags the caller didn't set explicitly.
type fileConfig struct {
	OutDir  string `yaml:"outdir"`
	Package string `yaml:"package"`
	Bazel   bool   `yaml:"bazel"`
}

// resolvedConfig is the config actually used to compile a file: flag values
// where given, fileConfig defaults otherwise.
type resolvedConfig struct {
	OutDir  string
	Package string
	Bazel   bool
}

// loadFileConfig reads and parses path. A missing file is not an error — it
// yields a zero fileConfig, so every default falls through to the flags'
// own defaults.
func loadFileConfig(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileConfig{}, nil
		}
		return fileConfig{}, err
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

// resolve merges cfg's defaults under the flags actually passed on the
// command line: a flag the user set always wins.
func (cfg fileConfig) resolve(outDir, pkg string, bazel bool, outDirSet, bazelSet bool) resolvedConfig {
	r := resolvedConfig{OutDir: outDir, Package: pkg, Bazel: bazel}
	if !outDirSet && cfg.OutDir != "" {
		r.OutDir = cfg.OutDir
	}
	if pkg == "" && cfg.Package != "" {
		r.Package = cfg.Package
	}
	if !bazelSet && cfg.Bazel {
		r.Bazel = true
	}
	return r
}
