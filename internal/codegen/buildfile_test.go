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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBuildFileCreatesJavaLibraryRule(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteBuildFile(dir, "Prog", "Prog.java"))

	data, err := os.ReadFile(filepath.Join(dir, "BUILD.bazel"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `java_library(`)
	assert.Contains(t, content, `name = "prog"`)
	assert.Contains(t, content, `"Prog.java"`)
	assert.Contains(t, content, `//visibility:public`)
}

func TestWriteBuildFileIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteBuildFile(dir, "Prog", "Prog.java"))

	path := filepath.Join(dir, "BUILD.bazel")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, WriteBuildFile(dir, "Prog", "Prog.java"))
	after, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(before), string(after))
}

func TestWriteBuildFileAddsSecondRuleAlongsideExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteBuildFile(dir, "Prog", "Prog.java"))
	require.NoError(t, WriteBuildFile(dir, "Other", "Other.java"))

	data, err := os.ReadFile(filepath.Join(dir, "BUILD.bazel"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `name = "prog"`)
	assert.Contains(t, content, `name = "other"`)
}
