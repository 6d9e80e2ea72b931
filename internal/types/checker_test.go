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

package types

import (
	"testing"

	"github.com/starklar/minipyc/internal/ast"
	"github.com/starklar/minipyc/internal/symtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lit(v any) *ast.Literal { return ast.NewLiteral(1, v) }
func id(name string) *ast.ID { return ast.NewID(1, name) }

func TestCheckAssignmentDeclaresThenFixesType(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "x", lit(int64(1))),
	})
	st, err := New().Check(prog)
	require.NoError(t, err)
	got, err := st.LookupVariable("x", 1)
	require.NoError(t, err)
	assert.Equal(t, symtab.Int, got)
}

func TestCheckAssignmentRejectsTypeChange(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "x", lit(int64(1))),
		ast.NewAssignmentStatement(2, "x", lit("hi")),
	})
	_, err := New().Check(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot change already assigned variable type")
}

func TestCheckAssignmentAllowsAnyToChangeFreely(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewFunctionDef(1, "f", nil, []ast.Statement{ast.NewReturnStatement(1, lit(int64(1)))}),
		ast.NewAssignmentStatement(2, "x", ast.NewFunctionCall(2, "f", nil)),
		ast.NewAssignmentStatement(3, "x", lit("hi")),
	})
	_, err := New().Check(prog)
	require.NoError(t, err)
}

func TestCheckFunctionCallArityMismatch(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewFunctionDef(1, "f", []string{"a"}, nil),
		ast.NewExprStatement(2, ast.NewFunctionCall(2, "f", nil)),
	})
	_, err := New().Check(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument length mismatch")
}

func TestCheckUndefinedVariableReference(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "x", id("y")),
	})
	_, err := New().Check(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined variable")
}

func TestCheckBinaryStringMinusStringIsError(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "x", ast.NewBinaryOperation(1, "-", lit("a"), lit("b"))),
	})
	_, err := New().Check(prog)
	require.Error(t, err)
}

func TestCheckBinaryAnyShortCircuits(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewFunctionDef(1, "f", nil, []ast.Statement{ast.NewReturnStatement(1, lit(int64(1)))}),
		ast.NewAssignmentStatement(2, "a", ast.NewFunctionCall(2, "f", nil)),
		ast.NewAssignmentStatement(3, "b", ast.NewBinaryOperation(3, "-", id("a"), lit("str"))),
	})
	_, err := New().Check(prog)
	require.NoError(t, err)
}

func TestCheckTupleAppendRejected(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "t", ast.NewSequence(1, ast.TupleKind, []ast.Expr{lit(int64(1))})),
		ast.NewExprStatement(2, ast.NewSequenceMethod(2, id("t"), "append", lit(int64(2)), nil)),
	})
	_, err := New().Check(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot call append() on tuples")
}

func TestCheckExtendRequiresListArgument(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "l", ast.NewSequence(1, ast.ListKind, nil)),
		ast.NewExprStatement(2, ast.NewSequenceMethod(2, id("l"), "extend", lit(int64(1)), nil)),
	})
	_, err := New().Check(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a list")
}

func TestCheckNoneTypeIsHardError(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "l", ast.NewSequence(1, ast.ListKind, nil)),
		ast.NewAssignmentStatement(2, "x", ast.NewSequenceMethod(2, id("l"), "append", lit(int64(1)), nil)),
	})
	_, err := New().Check(prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot use None type")
}

func TestCheckSliceBoundsMustBeIntLike(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "l", ast.NewSequence(1, ast.ListKind, []ast.Expr{lit(int64(1))})),
		ast.NewExprStatement(2, ast.NewSequenceSlice(2, id("l"), lit("nope"), nil, nil)),
	})
	_, err := New().Check(prog)
	require.Error(t, err)
}

func TestCheckLenOnNonSequenceRejected(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "x", lit(int64(1))),
		ast.NewExprStatement(2, ast.NewSequenceFunctionCall(2, "len", id("x"))),
	})
	_, err := New().Check(prog)
	require.Error(t, err)
}

func TestCheckArithmeticWideningToFloat(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "x", ast.NewBinaryOperation(1, "+", lit(int64(1)), lit(3.5))),
	})
	st, err := New().Check(prog)
	require.NoError(t, err)
	got, err := st.LookupVariable("x", 1)
	require.NoError(t, err)
	assert.Equal(t, symtab.Float, got)
}
