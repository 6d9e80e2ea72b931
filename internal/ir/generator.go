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

package ir

import (
	"fmt"
	"math"

	"github.com/starklar/minipyc/internal/ast"
	"github.com/starklar/minipyc/internal/diag"
)

// Generator walks a type-checked AST and lowers it to a flat TAC list,
// folding pure constant expressions along the way. The register and label
// counters are owned by the Generator instance, never package-level state,
// so two pipelines running in the same process never interfere.
type Generator struct {
	tacs          []TAC
	registerCount int
	labelCount    int
}

func New() *Generator { return &Generator{} }

// Generate lowers prog to its TAC list.
func (g *Generator) Generate(prog *ast.Program) ([]TAC, error) {
	for _, line := range prog.Lines {
		if err := g.genStatement(line); err != nil {
			return nil, err
		}
	}
	return g.tacs, nil
}

func (g *Generator) emit(tac TAC) { g.tacs = append(g.tacs, tac) }

func (g *Generator) nextRegister() Operand {
	g.registerCount++
	return Register(fmt.Sprintf("_t%d", g.registerCount))
}

// nextLabel is reserved for a future branch-target scheme; the label
// counter exists now so callers never need to retrofit instance state later.
func (g *Generator) nextLabel() int {
	g.labelCount++
	return g.labelCount
}

func (g *Generator) genStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.FunctionDef:
		return g.genFunctionDef(s)
	case *ast.AssignmentStatement:
		return g.genAssignment(s)
	case *ast.IfStatement:
		return g.genIf(s)
	case *ast.WhileStatement:
		return g.genWhile(s)
	case *ast.ReturnStatement:
		return g.genReturn(s)
	case *ast.PrintStatement:
		return g.genPrint(s)
	case *ast.ExprStatement:
		_, err := g.genExpr(s.Expr)
		return err
	default:
		return diag.Errorf(stmt.Line(), "ir: unhandled statement %T", stmt)
	}
}

func (g *Generator) genBody(body []ast.Statement) error {
	for _, line := range body {
		if err := g.genStatement(line); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) genFunctionDef(fn *ast.FunctionDef) error {
	params := make([]Operand, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = Ident(p)
	}
	g.emit(TAC{Op: "fdef", Left: Ident(fn.Name), Right: Tuple(params...)})
	if err := g.genBody(fn.Body); err != nil {
		return err
	}
	g.emit(TAC{Op: "end-label"})
	return nil
}

func (g *Generator) genAssignment(a *ast.AssignmentStatement) error {
	value, err := g.genExpr(a.Expr)
	if err != nil {
		return err
	}
	g.emit(Copy(Ident(a.Name), value))
	return nil
}

func (g *Generator) genIf(s *ast.IfStatement) error {
	cond, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}
	g.emit(TAC{Op: "if", Left: cond})
	if err := g.genBody(s.Body); err != nil {
		return err
	}
	g.emit(TAC{Op: "end-label"})

	for _, elif := range s.Elifs {
		elifCond, err := g.genExpr(elif.Cond)
		if err != nil {
			return err
		}
		g.emit(TAC{Op: "else-if", Left: elifCond})
		if err := g.genBody(elif.Body); err != nil {
			return err
		}
		g.emit(TAC{Op: "end-label"})
	}

	if s.Else != nil {
		g.emit(TAC{Op: "else"})
		if err := g.genBody(s.Else); err != nil {
			return err
		}
		g.emit(TAC{Op: "end-label"})
	}
	return nil
}

func (g *Generator) genWhile(s *ast.WhileStatement) error {
	cond, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}
	g.emit(TAC{Op: "while", Left: cond})
	if err := g.genBody(s.Body); err != nil {
		return err
	}
	g.emit(TAC{Op: "end-label"})
	return nil
}

func (g *Generator) genReturn(s *ast.ReturnStatement) error {
	if s.Expr == nil {
		g.emit(TAC{Op: "return"})
		return nil
	}
	value, err := g.genExpr(s.Expr)
	if err != nil {
		return err
	}
	g.emit(TAC{Op: "return", Left: value})
	return nil
}

func (g *Generator) genPrint(s *ast.PrintStatement) error {
	if s.Expr == nil {
		g.emit(TAC{Op: "print"})
		return nil
	}
	value, err := g.genExpr(s.Expr)
	if err != nil {
		return err
	}
	g.emit(TAC{Op: "print", Left: value})
	return nil
}

func (g *Generator) genExpr(expr ast.Expr) (Operand, error) {
	switch e := expr.(type) {
	case *ast.ID:
		return Ident(e.Name), nil
	case *ast.Literal:
		return literalOperand(e.Value), nil
	case *ast.UnaryOperation:
		return g.genUnary(e)
	case *ast.BinaryOperation:
		return g.genBinary(e)
	case *ast.FunctionCall:
		return g.genFunctionCall(e)
	case *ast.Sequence:
		return g.genSequence(e)
	case *ast.SequenceIndex:
		return g.genSequenceIndex(e)
	case *ast.SequenceSlice:
		return g.genSequenceSlice(e)
	case *ast.SequenceFunctionCall:
		return g.genSequenceFunctionCall(e)
	case *ast.SequenceMethod:
		return g.genSequenceMethod(e)
	default:
		return None(), diag.Errorf(expr.Line(), "ir: unhandled expression %T", expr)
	}
}

func literalOperand(v any) Operand {
	switch x := v.(type) {
	case bool:
		return BoolLit(x)
	case int64:
		return IntLit(x)
	case float64:
		return FloatLit(x)
	case string:
		return StrLit(x)
	default:
		return None()
	}
}

// genUnary folds a literal operand ("+x -> x", "-x -> -x", "not x -> !x");
// otherwise it emits a unary TAC and returns the destination register.
func (g *Generator) genUnary(u *ast.UnaryOperation) (Operand, error) {
	operand, err := g.genExpr(u.Expr)
	if err != nil {
		return None(), err
	}
	if operand.IsNumericLiteral() {
		switch u.Op {
		case "+":
			return operand, nil
		case "-":
			if operand.IsFloatKind() {
				return FloatLit(-operand.AsFloat()), nil
			}
			return IntLit(-operand.AsInt()), nil
		case "not":
			return BoolLit(!operand.Truthy()), nil
		}
	}
	reg := g.nextRegister()
	g.emit(TAC{Result: reg, Op: u.Op, Left: operand})
	return reg, nil
}

// genBinary folds a binary operation when both operands are fully static:
// two numeric/bool literals, or two string literals. Otherwise it emits a
// binary TAC and returns the destination register.
func (g *Generator) genBinary(b *ast.BinaryOperation) (Operand, error) {
	left, err := g.genExpr(b.Left)
	if err != nil {
		return None(), err
	}
	right, err := g.genExpr(b.Right)
	if err != nil {
		return None(), err
	}

	switch {
	case left.IsNumericLiteral() && right.IsNumericLiteral():
		folded, err := foldNumeric(b.Op, left, right, b.Line())
		if err != nil {
			return None(), err
		}
		return folded, nil
	case left.IsStringLiteral() && right.IsStringLiteral():
		folded, err := foldString(b.Op, left, right, b.Line())
		if err != nil {
			return None(), err
		}
		return folded, nil
	}

	reg := g.nextRegister()
	g.emit(TAC{Result: reg, Op: b.Op, Left: left, Right: right})
	return reg, nil
}

func foldNumeric(op string, left, right Operand, line int) (Operand, error) {
	isFloat := left.IsFloatKind() || right.IsFloatKind()
	lf, rf := left.AsFloat(), right.AsFloat()
	li, ri := left.AsInt(), right.AsInt()

	switch op {
	case "and":
		return BoolLit(left.Truthy() && right.Truthy()), nil
	case "or":
		return BoolLit(left.Truthy() || right.Truthy()), nil
	case "==":
		return BoolLit(lf == rf), nil
	case "!=":
		return BoolLit(lf != rf), nil
	case ">":
		return BoolLit(lf > rf), nil
	case "<":
		return BoolLit(lf < rf), nil
	case ">=":
		return BoolLit(lf >= rf), nil
	case "<=":
		return BoolLit(lf <= rf), nil
	case "+":
		if isFloat {
			return FloatLit(lf + rf), nil
		}
		return IntLit(li + ri), nil
	case "-":
		if isFloat {
			return FloatLit(lf - rf), nil
		}
		return IntLit(li - ri), nil
	case "*":
		if isFloat {
			return FloatLit(lf * rf), nil
		}
		return IntLit(li * ri), nil
	case "/":
		return FloatLit(lf / rf), nil
	case "%":
		if isFloat {
			return FloatLit(pyFloatMod(lf, rf)), nil
		}
		return IntLit(pyIntMod(li, ri)), nil
	case "**":
		if isFloat || ri < 0 {
			return FloatLit(math.Pow(lf, rf)), nil
		}
		return IntLit(int64(math.Pow(lf, rf))), nil
	case "//":
		if isFloat {
			return FloatLit(math.Floor(lf / rf)), nil
		}
		return IntLit(int64(math.Floor(lf / rf))), nil
	default:
		return None(), diag.Errorf(line, "ir: unrecognized operator %q", op)
	}
}

// pyIntMod and pyFloatMod fold "%" the way the source language's native
// modulo does: floor-style, with the result's sign following the divisor,
// not Go's truncating "%"/math.Mod (sign follows the dividend).
func pyIntMod(li, ri int64) int64 {
	m := li % ri
	if m != 0 && (m < 0) != (ri < 0) {
		m += ri
	}
	return m
}

func pyFloatMod(lf, rf float64) float64 {
	m := math.Mod(lf, rf)
	if m != 0 && (m < 0) != (rf < 0) {
		m += rf
	}
	return m
}

func foldString(op string, left, right Operand, line int) (Operand, error) {
	switch op {
	case "==":
		return BoolLit(left.Str == right.Str), nil
	case "!=":
		return BoolLit(left.Str != right.Str), nil
	case "and":
		return BoolLit(left.Truthy() && right.Truthy()), nil
	case "or":
		return BoolLit(left.Truthy() || right.Truthy()), nil
	case "<", ">", "<=", ">=":
		// Order by the text between the quotes, not the quoted literals.
		ls, rs := left.Str[1:len(left.Str)-1], right.Str[1:len(right.Str)-1]
		switch op {
		case "<":
			return BoolLit(ls < rs), nil
		case ">":
			return BoolLit(ls > rs), nil
		case "<=":
			return BoolLit(ls <= rs), nil
		default:
			return BoolLit(ls >= rs), nil
		}
	case "+":
		// Strip the closing quote from the left literal and the opening
		// quote from the right literal before joining, so two quoted
		// literals concatenate into a single quoted literal.
		return StrLit(left.Str[:len(left.Str)-1] + right.Str[1:]), nil
	default:
		return None(), diag.Errorf(line, "ir: operator %q is not valid between strings", op)
	}
}

func (g *Generator) genFunctionCall(c *ast.FunctionCall) (Operand, error) {
	args := make([]Operand, len(c.Args))
	for i, a := range c.Args {
		v, err := g.genExpr(a)
		if err != nil {
			return None(), err
		}
		args[i] = v
	}
	reg := g.nextRegister()
	g.emit(TAC{Result: reg, Op: "fcall", Left: Ident(c.Name), Right: Tuple(args...)})
	return reg, nil
}

// genSequence evaluates a list/tuple literal eagerly into a Tuple operand;
// no TAC is emitted, matching the original generator's "return the actual
// collection, don't lower it to a temporary" rule.
func (g *Generator) genSequence(s *ast.Sequence) (Operand, error) {
	elems := make([]Operand, len(s.Elements))
	for i, e := range s.Elements {
		v, err := g.genExpr(e)
		if err != nil {
			return None(), err
		}
		elems[i] = v
	}
	return Tuple(elems...), nil
}

func (g *Generator) genSequenceIndex(s *ast.SequenceIndex) (Operand, error) {
	seq, err := g.genExpr(s.Seq)
	if err != nil {
		return None(), err
	}
	idx, err := g.genExpr(s.Index)
	if err != nil {
		return None(), err
	}
	reg := g.nextRegister()
	g.emit(TAC{Result: reg, Op: "index", Left: seq, Right: idx})
	return reg, nil
}

func (g *Generator) genSequenceSlice(s *ast.SequenceSlice) (Operand, error) {
	seq, err := g.genExpr(s.Seq)
	if err != nil {
		return None(), err
	}
	bounds := make([]Operand, 3)
	for i, b := range []ast.Expr{s.Start, s.End, s.Step} {
		if b == nil {
			bounds[i] = None()
			continue
		}
		v, err := g.genExpr(b)
		if err != nil {
			return None(), err
		}
		bounds[i] = v
	}
	reg := g.nextRegister()
	g.emit(TAC{Result: reg, Op: "slice", Left: seq, Right: Tuple(bounds...)})
	return reg, nil
}

func (g *Generator) genSequenceFunctionCall(s *ast.SequenceFunctionCall) (Operand, error) {
	arg, err := g.genExpr(s.Arg)
	if err != nil {
		return None(), err
	}
	reg := g.nextRegister()
	g.emit(TAC{Result: reg, Op: "fcall", Left: Ident(s.Name), Right: Tuple(arg)})
	return reg, nil
}

func (g *Generator) genSequenceMethod(s *ast.SequenceMethod) (Operand, error) {
	seq, err := g.genExpr(s.Seq)
	if err != nil {
		return None(), err
	}
	args := []Operand{seq}
	for _, a := range []ast.Expr{s.Arg1, s.Arg2} {
		if a == nil {
			continue
		}
		v, err := g.genExpr(a)
		if err != nil {
			return None(), err
		}
		args = append(args, v)
	}
	reg := g.nextRegister()
	g.emit(TAC{Result: reg, Op: "mcall", Left: Ident(s.Method), Right: Tuple(args...)})
	return reg, nil
}
