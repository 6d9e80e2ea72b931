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
	"testing"

	"github.com/starklar/minipyc/internal/ast"
	"github.com/starklar/minipyc/internal/ir"
	"github.com/starklar/minipyc/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lit(v any) *ast.Literal { return ast.NewLiteral(1, v) }

func generateTACs(t *testing.T, prog *ast.Program) []ir.TAC {
	t.Helper()
	tacs, err := ir.New().Generate(prog)
	require.NoError(t, err)
	return tacs
}

// TestArithmeticFoldEmitsDeclaration covers end-to-end scenario 1: a folded
// literal assignment declares a typed local on first use.
func TestArithmeticFoldEmitsDeclaration(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "x", ast.NewBinaryOperation(1, "+",
			lit(int64(1)), ast.NewBinaryOperation(1, "*", lit(int64(2)), lit(int64(3))))),
	})
	out, err := New().Generate("Prog", generateTACs(t, prog))
	require.NoError(t, err)
	assert.Contains(t, out, "int x = 7;")
}

// TestConcatFoldDeclaresString covers end-to-end scenario 2.
func TestConcatFoldDeclaresString(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "s", ast.NewBinaryOperation(1, "+", lit(`"a"`), lit(`"b"`))),
	})
	out, err := New().Generate("Prog", generateTACs(t, prog))
	require.NoError(t, err)
	assert.Contains(t, out, `String s = "ab";`)
}

// TestMixedExpressionDeclaresThenReassigns lowers end-to-end scenario 3's
// expression without checker types (New, not NewWithTypes): a register-valued
// RHS then types as Object, and the second write of the same name is a plain
// reassignment, not a redeclaration.
func TestMixedExpressionDeclaresThenReassigns(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "y", ast.NewBinaryOperation(1, "+", ast.NewID(1, "x"), lit(int64(1)))),
		ast.NewAssignmentStatement(2, "y", ast.NewBinaryOperation(2, "+", ast.NewID(2, "x"), lit(int64(2)))),
	})
	out, err := New().Generate("Prog", generateTACs(t, prog))
	require.NoError(t, err)
	assert.Contains(t, out, "Object y = ((x) + (1));")
	assert.Contains(t, out, "y = ((x) + (2));")
}

// TestGlobalRegisterAssignmentUsesCheckerType covers end-to-end scenario 3's
// exact expected declaration: a global register-valued assignment, wired
// through the type checker's result, declares with the checker's computed
// type instead of falling back to Object.
func TestGlobalRegisterAssignmentUsesCheckerType(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "x", lit(int64(0))),
		ast.NewAssignmentStatement(2, "y", ast.NewBinaryOperation(2, "+", ast.NewID(2, "x"), lit(int64(1)))),
	})
	globalTypes, err := types.New().Check(prog)
	require.NoError(t, err)

	out, err := NewWithTypes(globalTypes).Generate("Prog", generateTACs(t, prog))
	require.NoError(t, err)
	assert.Contains(t, out, "int y = ((x) + (1));")
}

func TestIdentifierCopyTypesAsObjectNotString(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "y", ast.NewID(1, "x")),
	})
	out, err := New().Generate("Prog", generateTACs(t, prog))
	require.NoError(t, err)
	assert.Contains(t, out, "Object y = x;")
}

// TestIfElseEmitsBraces covers end-to-end scenario 4.
func TestIfElseEmitsBraces(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewIfStatement(1,
			ast.NewBinaryOperation(1, ">", ast.NewID(1, "x"), lit(int64(0))),
			[]ast.Statement{ast.NewPrintStatement(2, ast.NewID(2, "x"))},
			nil,
			[]ast.Statement{ast.NewPrintStatement(4, lit(int64(0)))},
		),
	})
	out, err := New().Generate("Prog", generateTACs(t, prog))
	require.NoError(t, err)
	assert.Contains(t, out, "if ((Boolean) ((x) > (0))) {")
	assert.Contains(t, out, "System.out.println(x);")
	assert.Contains(t, out, "else {")
	assert.Contains(t, out, "System.out.println(0);")
}

// TestWhileAndListMutationEmitsArrayListOps covers end-to-end scenario 5.
func TestWhileAndListMutationEmitsArrayListOps(t *testing.T) {
	body := []ast.Statement{
		ast.NewAssignmentStatement(2, "lst", ast.NewSequence(2, ast.ListKind, nil)),
		ast.NewWhileStatement(3, lit(true), []ast.Statement{
			ast.NewExprStatement(4, ast.NewSequenceMethod(4, ast.NewID(4, "lst"), "append", lit(int64(1)), nil)),
		}),
		ast.NewReturnStatement(5, ast.NewSequenceFunctionCall(5, "len", ast.NewID(5, "lst"))),
	}
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewFunctionDef(1, "f", nil, body),
	})
	out, err := New().Generate("Prog", generateTACs(t, prog))
	require.NoError(t, err)
	assert.Contains(t, out, "static Object f() {")
	assert.Contains(t, out, "ArrayList lst = new ArrayList(Arrays.asList());")
	assert.Contains(t, out, "while (true) {")
	assert.Contains(t, out, "lst.add(1);")
	assert.Contains(t, out, "return lst.size();")
}

func TestFunctionCallIsStatementFormWhenResultUnused(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewFunctionDef(1, "greet", nil, []ast.Statement{
			ast.NewReturnStatement(2, nil),
		}),
		ast.NewExprStatement(3, ast.NewFunctionCall(3, "greet", nil)),
	})
	out, err := New().Generate("Prog", generateTACs(t, prog))
	require.NoError(t, err)
	assert.Contains(t, out, "greet();")
}

func TestFunctionCallIsNotStatementFormWhenResultIsRead(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewFunctionDef(1, "one", nil, []ast.Statement{
			ast.NewReturnStatement(2, lit(int64(1))),
		}),
		ast.NewAssignmentStatement(3, "x", ast.NewBinaryOperation(3, "+",
			ast.NewFunctionCall(3, "one", nil), lit(int64(1)))),
	})
	out, err := New().Generate("Prog", generateTACs(t, prog))
	require.NoError(t, err)
	// The call result feeds a binary op, so the bare "one();" statement form
	// must not also appear.
	assert.NotContains(t, out, "\n    one();\n")
}

func TestSliceWithStepUsesStepMethod(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "a", ast.NewSequence(1, ast.ListKind, []ast.Expr{lit(int64(1)), lit(int64(2))})),
		ast.NewAssignmentStatement(2, "b", ast.NewSequenceSlice(2, ast.NewID(2, "a"), nil, nil, lit(int64(2)))),
	})
	out, err := New().Generate("Prog", generateTACs(t, prog))
	require.NoError(t, err)
	assert.Contains(t, out, "step_method(")
	assert.Contains(t, out, "static ArrayList step_method(")
}

func TestSliceWithoutStepUsesSubList(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "a", ast.NewSequence(1, ast.ListKind, []ast.Expr{lit(int64(1)), lit(int64(2))})),
		ast.NewAssignmentStatement(2, "b", ast.NewSequenceSlice(2, ast.NewID(2, "a"), lit(int64(0)), nil, nil)),
	})
	out, err := New().Generate("Prog", generateTACs(t, prog))
	require.NoError(t, err)
	assert.Contains(t, out, ".subList(")
}

func TestPowerUsesMathPow(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "x", ast.NewBinaryOperation(1, "**", ast.NewID(1, "a"), ast.NewID(1, "b"))),
	})
	out, err := New().Generate("Prog", generateTACs(t, prog))
	require.NoError(t, err)
	assert.Contains(t, out, "Math.pow(a, b)")
}

func TestFloorDivUsesMathFloor(t *testing.T) {
	prog := ast.NewProgram(1, []ast.Statement{
		ast.NewAssignmentStatement(1, "x", ast.NewBinaryOperation(1, "//", ast.NewID(1, "a"), ast.NewID(1, "b"))),
	})
	out, err := New().Generate("Prog", generateTACs(t, prog))
	require.NoError(t, err)
	assert.Contains(t, out, "Math.floor((a) / (b))")
}
