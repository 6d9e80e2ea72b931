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

// Package types walks a miniPy AST and assigns/enforces the value type of
// every expression, populating a symtab.SymbolTable as it goes.
package types

import (
	"github.com/starklar/minipyc/internal/ast"
	"github.com/starklar/minipyc/internal/diag"
	"github.com/starklar/minipyc/internal/symtab"
)

// Checker type-checks a miniPy program. It carries no state of its own
// beyond the symbol table threaded through every call, so a single value can
// check multiple programs.
type Checker struct{}

func New() *Checker { return &Checker{} }

// Check type-checks every top-level line of prog and returns the resulting
// global symbol table (functions declared, global variables typed).
func (c *Checker) Check(prog *ast.Program) (*symtab.SymbolTable, error) {
	st := symtab.New()
	for _, line := range prog.Lines {
		if err := c.checkStatement(line, st); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (c *Checker) checkStatement(stmt ast.Statement, st *symtab.SymbolTable) error {
	switch n := stmt.(type) {
	case *ast.FunctionDef:
		return c.checkFunctionDef(n, st)
	case *ast.AssignmentStatement:
		return c.checkAssignment(n, st)
	case *ast.IfStatement:
		return c.checkIf(n, st)
	case *ast.WhileStatement:
		return c.checkWhile(n, st)
	case *ast.ReturnStatement:
		return c.checkReturn(n, st)
	case *ast.PrintStatement:
		if n.Expr != nil {
			if _, err := c.checkExpr(n.Expr, st); err != nil {
				return err
			}
		}
		return nil
	case *ast.ExprStatement:
		_, err := c.checkExpr(n.Expr, st)
		return err
	default:
		return diag.Errorf(stmt.Line(), "unsupported statement %T", stmt)
	}
}

func (c *Checker) checkBody(body []ast.Statement, st *symtab.SymbolTable) error {
	st.PushScope()
	defer st.PopScope()
	for _, line := range body {
		if err := c.checkStatement(line, st); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkFunctionDef(fn *ast.FunctionDef, st *symtab.SymbolTable) error {
	st.PushScope()
	for _, p := range fn.Params {
		if err := st.DeclareVariable(p, symtab.Any, fn.Line()); err != nil {
			st.PopScope()
			return err
		}
	}
	for _, line := range fn.Body {
		if err := c.checkStatement(line, st); err != nil {
			st.PopScope()
			return err
		}
	}
	st.PopScope()
	return st.DeclareFunction(fn.Name, fn, fn.Line())
}

func (c *Checker) checkAssignment(a *ast.AssignmentStatement, st *symtab.SymbolTable) error {
	exprType, err := c.checkExpr(a.Expr, st)
	if err != nil {
		return err
	}
	if exprType == symtab.None {
		return diag.Errorf(a.Line(), "cannot use None type")
	}
	if !st.HasVariable(a.Name) {
		return st.DeclareVariable(a.Name, exprType, a.Line())
	}
	oldType, err := st.LookupVariable(a.Name, a.Line())
	if err != nil {
		return err
	}
	if oldType != exprType && oldType != symtab.Any && exprType != symtab.Any {
		return diag.Errorf(a.Line(), "cannot change already assigned variable type: %s to: %s", oldType, exprType)
	}
	return nil
}

func (c *Checker) checkIf(i *ast.IfStatement, st *symtab.SymbolTable) error {
	condType, err := c.checkExpr(i.Cond, st)
	if err != nil {
		return err
	}
	if condType == symtab.None {
		return diag.Errorf(i.Line(), "cannot use None type")
	}
	if err := c.checkBody(i.Body, st); err != nil {
		return err
	}
	for _, elif := range i.Elifs {
		elifCond, err := c.checkExpr(elif.Cond, st)
		if err != nil {
			return err
		}
		if elifCond == symtab.None {
			return diag.Errorf(elif.Line(), "cannot use None type")
		}
		if err := c.checkBody(elif.Body, st); err != nil {
			return err
		}
	}
	if i.Else != nil {
		if err := c.checkBody(i.Else, st); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkWhile(w *ast.WhileStatement, st *symtab.SymbolTable) error {
	condType, err := c.checkExpr(w.Cond, st)
	if err != nil {
		return err
	}
	if condType == symtab.None {
		return diag.Errorf(w.Line(), "cannot use None type")
	}
	return c.checkBody(w.Body, st)
}

func (c *Checker) checkReturn(r *ast.ReturnStatement, st *symtab.SymbolTable) error {
	if r.Expr == nil {
		return nil
	}
	t, err := c.checkExpr(r.Expr, st)
	if err != nil {
		return err
	}
	if t == symtab.None {
		return diag.Errorf(r.Line(), "cannot use None type")
	}
	return nil
}

func (c *Checker) checkExpr(expr ast.Expr, st *symtab.SymbolTable) (symtab.Type, error) {
	switch n := expr.(type) {
	case *ast.ID:
		return st.LookupVariable(n.Name, n.Line())
	case *ast.Literal:
		return literalType(n), nil
	case *ast.UnaryOperation:
		return c.checkUnary(n, st)
	case *ast.BinaryOperation:
		return c.checkBinary(n, st)
	case *ast.FunctionCall:
		return c.checkCall(n, st)
	case *ast.Sequence:
		return c.checkSequence(n, st)
	case *ast.SequenceIndex:
		return c.checkIndex(n, st)
	case *ast.SequenceSlice:
		return c.checkSlice(n, st)
	case *ast.SequenceFunctionCall:
		return c.checkLen(n, st)
	case *ast.SequenceMethod:
		return c.checkMethod(n, st)
	default:
		return 0, diag.Errorf(expr.Line(), "unsupported expression %T", expr)
	}
}

func literalType(l *ast.Literal) symtab.Type {
	switch l.Value.(type) {
	case bool:
		return symtab.Bool
	case int64:
		return symtab.Int
	case float64:
		return symtab.Float
	case string:
		return symtab.Str
	default:
		return symtab.Any
	}
}

func (c *Checker) checkUnary(u *ast.UnaryOperation, st *symtab.SymbolTable) (symtab.Type, error) {
	t, err := c.checkExpr(u.Expr, st)
	if err != nil {
		return 0, err
	}
	if t == symtab.None {
		return 0, diag.Errorf(u.Line(), "cannot use None type")
	}
	if u.Op == "not" {
		return symtab.Bool, nil
	}
	switch t {
	case symtab.Int, symtab.Bool:
		return symtab.Int, nil
	case symtab.Float:
		return symtab.Float, nil
	case symtab.Any:
		return symtab.Any, nil
	default:
		return 0, diag.Errorf(u.Line(), "illegal type for unary operation, was %s", t)
	}
}

func (c *Checker) checkBinary(b *ast.BinaryOperation, st *symtab.SymbolTable) (symtab.Type, error) {
	left, err := c.checkExpr(b.Left, st)
	if err != nil {
		return 0, err
	}
	right, err := c.checkExpr(b.Right, st)
	if err != nil {
		return 0, err
	}
	if left == symtab.None || right == symtab.None {
		return 0, diag.Errorf(b.Line(), "cannot use None type")
	}
	if left == symtab.Any || right == symtab.Any {
		return symtab.Any, nil
	}

	switch b.Op {
	case "and", "or", "==", "!=":
		return symtab.Bool, nil
	case "+":
		return c.checkAdd(b, left, right)
	case "*":
		return c.checkMul(b, left, right)
	case "-", "/", "%", "**", "//":
		if !left.IsNumeric() || !right.IsNumeric() {
			return 0, diag.Errorf(b.Line(), "%s can only work with bools, ints, and floats, was %s and %s", b.Op, left, right)
		}
		if left == symtab.Float || right == symtab.Float {
			return symtab.Float, nil
		}
		return symtab.Int, nil
	case ">", "<", ">=", "<=":
		return symtab.Bool, nil
	default:
		return 0, diag.Errorf(b.Line(), "unknown binary operator %q", b.Op)
	}
}

func (c *Checker) checkAdd(b *ast.BinaryOperation, left, right symtab.Type) (symtab.Type, error) {
	widenNumeric := func(name string) (symtab.Type, error) {
		switch right {
		case symtab.Int, symtab.Bool:
			return symtab.Int, nil
		case symtab.Float:
			return symtab.Float, nil
		default:
			return 0, diag.Errorf(b.Line(), "can only add %s with int, float or bool, was %s", name, right)
		}
	}
	switch left {
	case symtab.Bool:
		return widenNumeric("bool")
	case symtab.Int:
		return widenNumeric("int")
	case symtab.Float:
		if right.IsNumeric() {
			return symtab.Float, nil
		}
		return 0, diag.Errorf(b.Line(), "can only add floats with int, float or bool, was %s", right)
	case symtab.Str:
		if right == symtab.Str {
			return symtab.Str, nil
		}
		return 0, diag.Errorf(b.Line(), "can only add strings with strings, was %s", right)
	case symtab.List:
		if right == symtab.List {
			return symtab.List, nil
		}
		return 0, diag.Errorf(b.Line(), "can only add lists with lists, was %s", right)
	case symtab.Tuple:
		if right == symtab.Tuple {
			return symtab.Tuple, nil
		}
		return 0, diag.Errorf(b.Line(), "can only add tuples with tuples, was %s", right)
	default:
		return 0, diag.Errorf(b.Line(), "+ not supported for %s", left)
	}
}

func (c *Checker) checkMul(b *ast.BinaryOperation, left, right symtab.Type) (symtab.Type, error) {
	switch left {
	case symtab.Int, symtab.Bool:
		switch right {
		case symtab.Int, symtab.Bool:
			return symtab.Int, nil
		case symtab.Float:
			return symtab.Float, nil
		case symtab.Str:
			return symtab.Str, nil
		case symtab.List:
			return symtab.List, nil
		case symtab.Tuple:
			return symtab.Tuple, nil
		default:
			return 0, diag.Errorf(b.Line(), "cannot multiply %s by %s", left, right)
		}
	case symtab.Float:
		if right.IsNumeric() {
			return symtab.Float, nil
		}
		return 0, diag.Errorf(b.Line(), "can only multiply floats with int, float or bool, was %s", right)
	case symtab.Str:
		if right == symtab.Int || right == symtab.Bool {
			return symtab.Str, nil
		}
		return 0, diag.Errorf(b.Line(), "can only multiply strings with int or bool, was %s", right)
	case symtab.List:
		if right == symtab.Int || right == symtab.Bool {
			return symtab.List, nil
		}
		return 0, diag.Errorf(b.Line(), "can only multiply lists with int or bool, was %s", right)
	case symtab.Tuple:
		if right == symtab.Int || right == symtab.Bool {
			return symtab.Tuple, nil
		}
		return 0, diag.Errorf(b.Line(), "can only multiply tuples with int or bool, was %s", right)
	default:
		return 0, diag.Errorf(b.Line(), "* not supported for %s", left)
	}
}

func (c *Checker) checkCall(call *ast.FunctionCall, st *symtab.SymbolTable) (symtab.Type, error) {
	fn, err := st.LookupFunction(call.Name, call.Line())
	if err != nil {
		return 0, err
	}
	if len(fn.Params) != len(call.Args) {
		return 0, diag.Errorf(call.Line(), "argument length mismatch with function %q", call.Name)
	}
	for _, arg := range call.Args {
		if t, err := c.checkExpr(arg, st); err != nil {
			return 0, err
		} else if t == symtab.None {
			return 0, diag.Errorf(call.Line(), "cannot use None type")
		}
	}
	return symtab.Any, nil
}

func (c *Checker) checkSequence(seq *ast.Sequence, st *symtab.SymbolTable) (symtab.Type, error) {
	for _, el := range seq.Elements {
		t, err := c.checkExpr(el, st)
		if err != nil {
			return 0, err
		}
		if t == symtab.None {
			return 0, diag.Errorf(seq.Line(), "cannot use None type")
		}
	}
	if seq.Kind == ast.TupleKind {
		return symtab.Tuple, nil
	}
	return symtab.List, nil
}

func isSeqType(t symtab.Type) bool { return t == symtab.List || t == symtab.Tuple || t == symtab.Any }
func isIndexType(t symtab.Type) bool {
	return t == symtab.Int || t == symtab.Bool || t == symtab.Any
}

func (c *Checker) checkIndex(idx *ast.SequenceIndex, st *symtab.SymbolTable) (symtab.Type, error) {
	seqType, err := c.checkExpr(idx.Seq, st)
	if err != nil {
		return 0, err
	}
	if seqType == symtab.None {
		return 0, diag.Errorf(idx.Line(), "cannot use None type")
	}
	if !isSeqType(seqType) {
		return 0, diag.Errorf(idx.Line(), "can only get elements of list or tuple, was %s", seqType)
	}
	indexType, err := c.checkExpr(idx.Index, st)
	if err != nil {
		return 0, err
	}
	if indexType == symtab.None {
		return 0, diag.Errorf(idx.Line(), "cannot use None type")
	}
	if !isIndexType(indexType) {
		return 0, diag.Errorf(idx.Line(), "cannot call list or tuple index with a non int or bool argument, was %s", indexType)
	}
	return symtab.Any, nil
}

func (c *Checker) checkSlice(s *ast.SequenceSlice, st *symtab.SymbolTable) (symtab.Type, error) {
	seqType, err := c.checkExpr(s.Seq, st)
	if err != nil {
		return 0, err
	}
	if seqType == symtab.None {
		return 0, diag.Errorf(s.Line(), "cannot use None type")
	}
	if !isSeqType(seqType) {
		return 0, diag.Errorf(s.Line(), "can only slice a list or tuple, was %s", seqType)
	}
	bound := func(e ast.Expr, label string) error {
		if e == nil {
			return nil
		}
		t, err := c.checkExpr(e, st)
		if err != nil {
			return err
		}
		if t == symtab.None {
			return diag.Errorf(s.Line(), "cannot use None type")
		}
		if !isIndexType(t) {
			return diag.Errorf(s.Line(), "slice %s type must be an int or a bool, was %s", label, t)
		}
		return nil
	}
	if err := bound(s.Start, "start"); err != nil {
		return 0, err
	}
	if err := bound(s.End, "end"); err != nil {
		return 0, err
	}
	if err := bound(s.Step, "step"); err != nil {
		return 0, err
	}
	return seqType, nil
}

func (c *Checker) checkLen(l *ast.SequenceFunctionCall, st *symtab.SymbolTable) (symtab.Type, error) {
	t, err := c.checkExpr(l.Arg, st)
	if err != nil {
		return 0, err
	}
	if t == symtab.None {
		return 0, diag.Errorf(l.Line(), "cannot use None type")
	}
	if !isSeqType(t) {
		return 0, diag.Errorf(l.Line(), "can only call len() on a list or tuple")
	}
	return symtab.Int, nil
}

func (c *Checker) checkMethod(m *ast.SequenceMethod, st *symtab.SymbolTable) (symtab.Type, error) {
	seqType, err := c.checkExpr(m.Seq, st)
	if err != nil {
		return 0, err
	}
	if seqType == symtab.None {
		return 0, diag.Errorf(m.Line(), "cannot use None type")
	}
	if !isSeqType(seqType) {
		return 0, diag.Errorf(m.Line(), "can only call sequence methods on a list or tuple, was %s", seqType)
	}

	switch m.Method {
	case "append":
		if seqType == symtab.Tuple {
			return 0, diag.Errorf(m.Line(), "cannot call append() on tuples")
		}
		if m.Arg1 == nil {
			return 0, diag.Errorf(m.Line(), "sequence method append() requires an argument")
		}
		if _, err := c.checkExpr(m.Arg1, st); err != nil {
			return 0, err
		}
		return symtab.None, nil
	case "extend":
		if seqType == symtab.Tuple {
			return 0, diag.Errorf(m.Line(), "cannot call extend() on tuples")
		}
		if m.Arg1 == nil {
			return 0, diag.Errorf(m.Line(), "sequence method extend() requires a list argument")
		}
		argType, err := c.checkExpr(m.Arg1, st)
		if err != nil {
			return 0, err
		}
		if argType != symtab.List {
			return 0, diag.Errorf(m.Line(), "sequence method extend() requires a list as an argument, not: %s", argType)
		}
		return symtab.List, nil
	case "insert":
		if seqType == symtab.Tuple {
			return 0, diag.Errorf(m.Line(), "cannot call insert() on tuples")
		}
		if m.Arg1 == nil || m.Arg2 == nil {
			return 0, diag.Errorf(m.Line(), "sequence method insert() requires 2 arguments")
		}
		argType, err := c.checkExpr(m.Arg1, st)
		if err != nil {
			return 0, err
		}
		if !isIndexType(argType) {
			return 0, diag.Errorf(m.Line(), "sequence method insert()'s first argument must be either an int or bool, not %s", argType)
		}
		if _, err := c.checkExpr(m.Arg2, st); err != nil {
			return 0, err
		}
		return symtab.None, nil
	case "index":
		if m.Arg1 == nil {
			return 0, diag.Errorf(m.Line(), "sequence method index() requires an argument")
		}
		if _, err := c.checkExpr(m.Arg1, st); err != nil {
			return 0, err
		}
		return symtab.Int, nil
	case "pop":
		if seqType == symtab.Tuple {
			return 0, diag.Errorf(m.Line(), "cannot call pop() on tuples")
		}
		if m.Arg1 != nil {
			argType, err := c.checkExpr(m.Arg1, st)
			if err != nil {
				return 0, err
			}
			if !isIndexType(argType) {
				return 0, diag.Errorf(m.Line(), "sequence method pop() does not support as an argument: %s", argType)
			}
		}
		return symtab.Any, nil
	case "copy":
		return seqType, nil
	default:
		return 0, diag.Errorf(m.Line(), "given list operation unknown: %s", m.Method)
	}
}
