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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compileFixture runs name (relative to the repo's testdata/ directory)
// through the full pipeline into a fresh temp directory and returns the
// generated targetJ source.
func compileFixture(t *testing.T, name string) string {
	t.Helper()
	cfg := resolvedConfig{OutDir: t.TempDir()}
	path := filepath.Join("..", "..", "testdata", name)
	require.NoError(t, compileFile(path, cfg, stopNever, false))

	className := classNameFor(path)
	data, err := os.ReadFile(filepath.Join(cfg.OutDir, className+".java"))
	require.NoError(t, err)
	return string(data)
}

func TestFixtureArithmeticFold(t *testing.T) {
	assert.Contains(t, compileFixture(t, "arithmetic_fold.mpy"), "int x = 7;")
}

func TestFixtureConcatFold(t *testing.T) {
	assert.Contains(t, compileFixture(t, "concat_fold.mpy"), `String s = "ab";`)
}

func TestFixtureMixedExpression(t *testing.T) {
	out := compileFixture(t, "mixed_expression.mpy")
	assert.Contains(t, out, "int y = ((x) + (1));")
}

func TestFixtureIfElse(t *testing.T) {
	out := compileFixture(t, "if_else.mpy")
	assert.Contains(t, out, "if ((Boolean) ((x) > (0))) {")
	assert.Contains(t, out, "else {")
}

func TestFixtureWhileListMutation(t *testing.T) {
	out := compileFixture(t, "while_list_mutation.mpy")
	assert.Contains(t, out, "while (((i) < (5))) {")
	assert.Contains(t, out, "lst.add(i);")
	assert.Contains(t, out, "return lst.size();")
}

func TestFixtureSliceWithStep(t *testing.T) {
	out := compileFixture(t, "slice_with_step.mpy")
	assert.Contains(t, out, "step_method(")
}

func compileFixtureErr(t *testing.T, name string) error {
	t.Helper()
	cfg := resolvedConfig{OutDir: t.TempDir()}
	path := filepath.Join("..", "..", "testdata", "rejections", name)
	return compileFile(path, cfg, stopNever, false)
}

func TestRejectionTypeChange(t *testing.T) {
	require.Error(t, compileFixtureErr(t, "type_change.mpy"))
}

func TestRejectionWrongArity(t *testing.T) {
	require.Error(t, compileFixtureErr(t, "wrong_arity.mpy"))
}

func TestRejectionAppendOnTuple(t *testing.T) {
	require.Error(t, compileFixtureErr(t, "append_on_tuple.mpy"))
}

func TestRejectionExtendWithNonList(t *testing.T) {
	require.Error(t, compileFixtureErr(t, "extend_with_non_list.mpy"))
}

func TestRejectionUnsupportedBinary(t *testing.T) {
	require.Error(t, compileFixtureErr(t, "unsupported_binary.mpy"))
}

func TestRejectionUndefinedReference(t *testing.T) {
	require.Error(t, compileFixtureErr(t, "undefined_reference.mpy"))
}
