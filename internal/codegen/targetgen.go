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

// Package codegen lowers three-address code into targetJ source, and
// optionally emits a BUILD.bazel file wrapping the generated class.
package codegen

import (
	"fmt"
	"strings"

	"github.com/starklar/minipyc/internal/collections"
	"github.com/starklar/minipyc/internal/diag"
	"github.com/starklar/minipyc/internal/ir"
	"github.com/starklar/minipyc/internal/symtab"
)

// TargetGen lowers a TAC stream into targetJ source text, one class per
// compiled program. It mirrors a declared-or-not scope stack so it can tell
// a fresh declaration from a reassignment, exactly as the type checker does
// over the AST.
type TargetGen struct {
	regs          []string
	st            *symtab.SymbolTable
	globalTypes   *symtab.SymbolTable
	inFuncDef     bool
	funcDefLines  []string
	mainLines     []string
	fcallStmtRegs map[string]bool
	mcallStmtRegs map[string]bool
}

func New() *TargetGen {
	return &TargetGen{
		regs:          []string{""},
		st:            symtab.New(),
		fcallStmtRegs: map[string]bool{},
		mcallStmtRegs: map[string]bool{},
	}
}

// NewWithTypes is like New, but additionally consults globalTypes — the
// symbol table the type checker produced for the same program — to declare
// a register- or identifier-valued global assignment with its checker-
// computed static type instead of the conservative Object fallback. Only
// the global scope survives a completed Check() call, so this only sharpens
// top-level declarations; function-local temporaries still type as Object.
func NewWithTypes(globalTypes *symtab.SymbolTable) *TargetGen {
	g := New()
	g.globalTypes = globalTypes
	return g
}

func (g *TargetGen) write(line string) {
	if g.inFuncDef {
		g.funcDefLines = append(g.funcDefLines, line)
	} else {
		g.mainLines = append(g.mainLines, line)
	}
}

func (g *TargetGen) assignReg(value string) ir.Operand {
	g.regs = append(g.regs, value)
	return ir.Register(fmt.Sprintf("_t%d", len(g.regs)-1))
}

func (g *TargetGen) getReg(name string) string {
	var n int
	fmt.Sscanf(name, "_t%d", &n)
	if n <= 0 || n >= len(g.regs) {
		return name
	}
	return g.regs[n]
}

// translateExpr renders an IR operand as a targetJ expression fragment.
func (g *TargetGen) translateExpr(o ir.Operand) string {
	switch o.Kind {
	case ir.OperandRegister:
		return g.getReg(o.Name)
	case ir.OperandIdent:
		return o.Name
	case ir.OperandBool:
		if o.Bool {
			return "true"
		}
		return "false"
	case ir.OperandTuple:
		return g.translateSeq(o.Elems)
	default:
		return o.String()
	}
}

// translateIntoInteger boxes a numeric operand for use where targetJ expects
// an Integer (list indices, slice bounds): a register is cast, a literal is
// boxed explicitly.
func (g *TargetGen) translateIntoInteger(o ir.Operand) string {
	if o.Kind == ir.OperandRegister {
		return fmt.Sprintf("(Integer) %s", g.getReg(o.Name))
	}
	if o.Kind == ir.OperandBool {
		if o.Bool {
			return "Integer.valueOf(1)"
		}
		return "Integer.valueOf(0)"
	}
	return fmt.Sprintf("Integer.valueOf(%s)", o.String())
}

func (g *TargetGen) translateSeq(elems []ir.Operand) string {
	parts := collections.MapSlice(elems, g.translateExpr)
	return fmt.Sprintf("new ArrayList(Arrays.asList(%s))", strings.Join(parts, ", "))
}

func translateOperator(op string) string {
	switch op {
	case "or":
		return "||"
	case "and":
		return "&&"
	case "not":
		return "!"
	default:
		return op
	}
}

// javaType maps an IR operand's static literal kind to a targetJ declared
// type. A bare identifier's type is unknown at this layer (it is whatever
// the original declaration gave it), so it types as Object rather than
// guessing — unlike a register, a source identifier is never a string
// literal, so Object (not String) is the honest answer here.
func javaType(o ir.Operand) string {
	switch o.Kind {
	case ir.OperandBool:
		return "boolean"
	case ir.OperandInt:
		return "int"
	case ir.OperandFloat:
		return "double"
	case ir.OperandStr:
		return "String"
	case ir.OperandTuple:
		return "ArrayList"
	default:
		return "Object"
	}
}

func (g *TargetGen) genAssignStmnt(tac ir.TAC) {
	name := tac.Result.Name
	exprStr := g.translateExpr(tac.Left)

	typeStr := javaType(tac.Left)
	if tac.Left.Kind == ir.OperandRegister || tac.Left.Kind == ir.OperandIdent {
		typeStr = "Object"
		if t, ok := g.lookupGlobalType(name); ok {
			typeStr = javaTypeFromSymtab(t)
		}
	}

	if g.st.HasVariable(name) {
		g.write(fmt.Sprintf("%s = %s", name, exprStr))
	} else {
		_ = g.st.DeclareVariable(name, symtab.Any, -1)
		g.write(fmt.Sprintf("%s %s = %s", typeStr, name, exprStr))
	}
}

// lookupGlobalType consults the checker-computed global symbol table, when
// one was supplied, for name's static type — but only while still at global
// scope, since that table holds no information for function-local names.
func (g *TargetGen) lookupGlobalType(name string) (symtab.Type, bool) {
	if g.globalTypes == nil || g.st.Depth() != 1 {
		return 0, false
	}
	t, err := g.globalTypes.LookupVariable(name, -1)
	if err != nil {
		return 0, false
	}
	return t, true
}

// javaTypeFromSymtab maps a checker-computed static type to its targetJ
// declared-type spelling.
func javaTypeFromSymtab(t symtab.Type) string {
	switch t {
	case symtab.Bool:
		return "boolean"
	case symtab.Int:
		return "int"
	case symtab.Float:
		return "double"
	case symtab.Str:
		return "String"
	case symtab.List, symtab.Tuple:
		return "ArrayList"
	default:
		return "Object"
	}
}

func (g *TargetGen) genUnaryOp(tac ir.TAC) {
	op := translateOperator(tac.Op)
	operand := g.translateExpr(tac.Left)
	var expr string
	if op == "!" {
		expr = fmt.Sprintf("(%s (Boolean) (%s))", op, operand)
	} else {
		expr = fmt.Sprintf("(%s (%s))", op, operand)
	}
	g.assignReg(expr)
}

func (g *TargetGen) genBinOp(tac ir.TAC) {
	op := translateOperator(tac.Op)
	left := g.translateExpr(tac.Left)
	right := g.translateExpr(tac.Right)
	var expr string
	switch {
	case op == "**":
		expr = fmt.Sprintf("Math.pow(%s, %s)", left, right)
	case op == "//":
		expr = fmt.Sprintf("Math.floor((%s) / (%s))", left, right)
	case op == "&&" || op == "||":
		expr = fmt.Sprintf("(Boolean) (((Boolean) %s) %s ((Boolean) %s))", left, op, right)
	default:
		expr = fmt.Sprintf("((%s) %s (%s))", left, op, right)
	}
	g.assignReg(expr)
}

func (g *TargetGen) genFuncDef(tac ir.TAC) {
	g.inFuncDef = true
	g.st.PushScope()

	names := collections.MapSlice(tac.Right.Elems, func(p ir.Operand) string {
		return "Object " + p.Name
	})
	g.write(fmt.Sprintf("static Object %s(%s) {", tac.Left.Name, strings.Join(names, ", ")))
}

func (g *TargetGen) genRetStmnt(tac ir.TAC) {
	if tac.Left.IsAbsent() {
		g.write("return null")
		return
	}
	g.write(fmt.Sprintf("return %s", g.translateExpr(tac.Left)))
}

func (g *TargetGen) genSeqIndex(tac ir.TAC) {
	lst := g.translateExpr(tac.Left)
	index := g.translateIntoInteger(tac.Right)
	g.assignReg(fmt.Sprintf("%s.get(%s)", lst, index))
}

func (g *TargetGen) genSeqSlice(tac ir.TAC) {
	lst := g.translateExpr(tac.Left)
	bounds := tac.Right.Elems

	start := "0"
	if !bounds[0].IsAbsent() {
		start = g.translateIntoInteger(bounds[0])
	}
	end := fmt.Sprintf("%s.size()", lst)
	if !bounds[1].IsAbsent() {
		end = g.translateIntoInteger(bounds[1])
	}

	var expr string
	if bounds[2].IsAbsent() {
		expr = fmt.Sprintf("%s.subList(%s, %s)", lst, start, end)
	} else {
		step := g.translateIntoInteger(bounds[2])
		expr = fmt.Sprintf("step_method(%s, %s, %s, %s)", lst, start, end, step)
	}
	g.assignReg(expr)
}

func (g *TargetGen) genFuncCall(tac ir.TAC) {
	args := tac.Right.Elems
	var expr string
	if tac.Left.Name == "len" {
		expr = fmt.Sprintf("%s.size()", g.translateExpr(args[0]))
	} else {
		parts := collections.MapSlice(args, g.translateExpr)
		expr = fmt.Sprintf("%s(%s)", tac.Left.Name, strings.Join(parts, ", "))
	}
	reg := g.assignReg(expr)
	if g.fcallStmtRegs[reg.Name] {
		g.write(expr)
	}
}

func (g *TargetGen) genSeqMethodCall(tac ir.TAC) {
	args := tac.Right.Elems
	lst := g.translateExpr(args[0])
	rest := args[1:]

	var expr strings.Builder
	fmt.Fprintf(&expr, "%s.", lst)
	switch tac.Left.Name {
	case "append":
		expr.WriteString("add(")
	case "extend":
		expr.WriteString("addAll(")
	case "index":
		expr.WriteString("indexOf(")
	case "insert":
		expr.WriteString("add((int)")
	case "pop":
		if len(rest) == 0 {
			fmt.Fprintf(&expr, "remove(%s.size() - 1", lst)
		} else {
			expr.WriteString("remove(")
		}
	case "copy":
		expr.WriteString("clone(")
	}

	if len(rest) > 0 {
		expr.WriteString(g.translateExpr(rest[0]))
	}
	for _, a := range rest[1:] {
		fmt.Fprintf(&expr, ", %s", g.translateExpr(a))
	}
	expr.WriteString(")")

	reg := g.assignReg(expr.String())
	if g.mcallStmtRegs[reg.Name] {
		g.write(expr.String())
	}
}

func (g *TargetGen) genIfStmnt(tac ir.TAC) {
	g.write(fmt.Sprintf("if ((Boolean) %s) {", g.translateExpr(tac.Left)))
	g.st.PushScope()
}

func (g *TargetGen) genElseIfStmnt(tac ir.TAC) {
	g.write(fmt.Sprintf("else if ((Boolean) %s) {", g.translateExpr(tac.Left)))
	g.st.PushScope()
}

func (g *TargetGen) genElseStmnt(ir.TAC) {
	g.write("else {")
	g.st.PushScope()
}

func (g *TargetGen) genWhileStmnt(tac ir.TAC) {
	g.write(fmt.Sprintf("while (%s) {", g.translateExpr(tac.Left)))
	g.st.PushScope()
}

func (g *TargetGen) genEndLabel(ir.TAC) {
	g.st.PopScope()
	g.write("}")
	if g.st.Depth() == 1 {
		g.inFuncDef = false
	}
}

func (g *TargetGen) genPrintStatement(tac ir.TAC) {
	g.write("System.out.println(" + g.translateExpr(tac.Left) + ")")
}

// step lowers one TAC by dispatching on its opcode: the zero-Op
// ("assignment"), the arithmetic/logical operators, and the fixed
// control-flow/call opcodes that TAC.String recognizes.
func (g *TargetGen) step(tac ir.TAC) error {
	switch {
	case tac.Op == "":
		g.genAssignStmnt(tac)
	case isArithmeticOp(tac.Op):
		if !tac.Right.IsAbsent() {
			g.genBinOp(tac)
		} else {
			g.genUnaryOp(tac)
		}
	case tac.Op == "fdef":
		g.genFuncDef(tac)
	case tac.Op == "if":
		g.genIfStmnt(tac)
	case tac.Op == "else-if":
		g.genElseIfStmnt(tac)
	case tac.Op == "else":
		g.genElseStmnt(tac)
	case tac.Op == "while":
		g.genWhileStmnt(tac)
	case tac.Op == "end-label":
		g.genEndLabel(tac)
	case tac.Op == "print":
		g.genPrintStatement(tac)
	case tac.Op == "return":
		g.genRetStmnt(tac)
	case tac.Op == "fcall":
		g.genFuncCall(tac)
	case tac.Op == "index":
		g.genSeqIndex(tac)
	case tac.Op == "slice":
		g.genSeqSlice(tac)
	case tac.Op == "mcall":
		g.genSeqMethodCall(tac)
	default:
		return diag.Errorf(0, "unrecognized TAC opcode %q", tac.Op)
	}
	return nil
}

var arithmeticOpSet = map[string]bool{
	"and": true, "or": true, "not": true, "==": true, "!=": true,
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"**": true, "//": true, ">": true, "<": true, ">=": true, "<=": true,
}

func isArithmeticOp(op string) bool { return arithmeticOpSet[op] }

// formatLines reindents lines 4 spaces per nesting level: a line ending in
// "{" increases the level after emission, one ending in "}" decreases it
// before emission, every other line gets a trailing ";".
func formatLines(lines []string, indents *int) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		switch {
		case strings.HasSuffix(line, "{"):
			out[i] = strings.Repeat("    ", *indents) + line
			*indents++
		case strings.HasSuffix(line, "}"):
			*indents--
			out[i] = strings.Repeat("    ", *indents) + line
		default:
			out[i] = strings.Repeat("    ", *indents) + line + ";"
		}
	}
	return out
}

const stepMethodBody = `static ArrayList step_method(ArrayList lst, int p_start, int p_end, int step) {
    ArrayList return_lst = new ArrayList();
    if (step == 0) {
        throw new IllegalArgumentException("step_method() cannot have step param be 0!");
    }
    int start = p_start;
    int end = p_end;
    if (start < 0) {
        start = lst.size() - p_start;
    }
    if (end < 0) {
        end = lst.size() - p_end;
    }
    if (step > 0) {
        for (int index = start; index < end; index += step) {
            return_lst.add(lst.get(index));
        }
    }
    else {
        for (int index = start; index > end; index += step) {
            return_lst.add(lst.get(index));
        }
    }
    return return_lst;
}`

// markStatementFormCalls implements the pre-pass: every fcall/mcall result
// starts out statement-form, and is unmarked the moment a later TAC
// references that register as an operand.
func markStatementFormCalls(tacs []ir.TAC) (fcall, mcall map[string]bool) {
	fcall = map[string]bool{}
	mcall = map[string]bool{}
	for _, tac := range tacs {
		switch tac.Op {
		case "fcall":
			fcall[tac.Result.Name] = true
		case "mcall":
			mcall[tac.Result.Name] = true
		}
		for _, ref := range operandRefs(tac) {
			delete(fcall, ref)
			delete(mcall, ref)
		}
	}
	return fcall, mcall
}

func operandRefs(tac ir.TAC) []string {
	var names []string
	for _, o := range []ir.Operand{tac.Left, tac.Right} {
		names = append(names, regNamesIn(o)...)
	}
	return names
}

func regNamesIn(o ir.Operand) []string {
	switch o.Kind {
	case ir.OperandRegister:
		return []string{o.Name}
	case ir.OperandTuple:
		var names []string
		for _, e := range o.Elems {
			names = append(names, regNamesIn(e)...)
		}
		return names
	default:
		return nil
	}
}

// Generate lowers a TAC stream into the body of a targetJ class named
// className: the fixed step_method helper, a static method per function
// definition, and a main() wrapping every top-level statement.
func (g *TargetGen) Generate(className string, tacs []ir.TAC) (string, error) {
	g.fcallStmtRegs, g.mcallStmtRegs = markStatementFormCalls(tacs)

	header := []string{
		"import java.util.*;",
		fmt.Sprintf("public class %s {", className),
	}
	indents := 0
	header = formatLines(header, &indents)
	header[len(header)-1] = strings.TrimSuffix(header[len(header)-1], ";")

	stepIndents := indents
	stepLines := formatLines(strings.Split(stepMethodBody, "\n"), &stepIndents)

	g.mainLines = append(g.mainLines, "public static void main(String args[]) {")

	for _, tac := range tacs {
		if err := g.step(tac); err != nil {
			return "", err
		}
	}
	g.mainLines = append(g.mainLines, "}", "}")

	funcIndents := indents
	funcLines := formatLines(g.funcDefLines, &funcIndents)
	mainIndents := indents
	mainLines := formatLines(g.mainLines, &mainIndents)

	var out strings.Builder
	for _, l := range header {
		out.WriteString(l)
		out.WriteString("\n")
	}
	for _, l := range stepLines {
		out.WriteString(l)
		out.WriteString("\n")
	}
	for _, l := range funcLines {
		out.WriteString(l)
		out.WriteString("\n")
	}
	for _, l := range mainLines {
		out.WriteString(l)
		out.WriteString("\n")
	}
	return out.String(), nil
}
