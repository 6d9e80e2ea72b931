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

package codegen

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bazelbuild/buildtools/build"

	"github.com/bazelbuild/bazel-gazelle/rule"
)

// WriteBuildFile emits (or merges into) a BUILD.bazel file in outDir
// declaring a java_library rule that wraps the generated javaFile. Hand
// edits to an existing BUILD.bazel are left alone: a rule already present
// for this class is not regenerated.
func WriteBuildFile(outDir, className, javaFile string) error {
	path := filepath.Join(outDir, "BUILD.bazel")
	name := ruleName(className)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	var f *rule.File
	if len(data) > 0 {
		parsed, err := build.ParseBuild(path, data)
		if err != nil {
			return err
		}
		if hasRule(parsed, "java_library", name) {
			return nil
		}
		f, err = rule.LoadData(path, "", data)
		if err != nil {
			return err
		}
	} else {
		f = rule.EmptyFile(path, "")
	}

	r := rule.NewRule("java_library", name)
	r.SetAttr("srcs", []string{javaFile})
	r.SetAttr("visibility", []string{"//visibility:public"})
	r.Insert(f)

	return f.Save(path)
}

func hasRule(f *build.File, kind, name string) bool {
	for _, r := range f.Rules(kind) {
		if r.Name() == name {
			return true
		}
	}
	return false
}

func ruleName(className string) string {
	return strings.ToLower(className)
}
