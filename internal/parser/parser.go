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

// Package parser builds a miniPy AST from a token stream using a
// Pratt/precedence-climbing expression parser plus a recursive-descent
// statement grammar.
package parser

import (
	"github.com/starklar/minipyc/internal/ast"
	"github.com/starklar/minipyc/internal/diag"
	"github.com/starklar/minipyc/internal/lexer"
)

type precedence int

const (
	precedenceLowest precedence = iota
	precedenceOr                // or
	precedenceAnd               // and
	precedenceNot               // not (prefix)
	precedenceCompare           // < <= > >= != ==
	precedenceAdd                // + -
	precedenceMul               // * / // %
	precedencePower              // **
	precedenceUnary              // unary + -
)

type (
	prefixParseFn func(p *Parser, tok lexer.Token) (ast.Expr, error)
	infixParseFn  func(p *Parser, tok lexer.Token, left ast.Expr) (ast.Expr, error)

	parseRule struct {
		precedence  precedence
		rightAssoc  bool
		prefix      prefixParseFn
		infix       infixParseFn
	}
)

// exprPrecedence maps a token kind to its parse rule. Built in init to avoid
// initialization-order cycles between the table and the parse functions that
// populate it.
var exprPrecedence map[lexer.Kind]parseRule

func init() {
	exprPrecedence = map[lexer.Kind]parseRule{
		lexer.Or:  {precedence: precedenceOr, infix: parseBinary},
		lexer.And: {precedence: precedenceAnd, infix: parseBinary},
		lexer.Not: {precedence: precedenceNot, prefix: parseUnary},

		lexer.Less:         {precedence: precedenceCompare, infix: parseBinary},
		lexer.LessEqual:    {precedence: precedenceCompare, infix: parseBinary},
		lexer.Greater:      {precedence: precedenceCompare, infix: parseBinary},
		lexer.GreaterEqual: {precedence: precedenceCompare, infix: parseBinary},
		lexer.NotEqual:     {precedence: precedenceCompare, infix: parseBinary},
		lexer.EqualEqual:   {precedence: precedenceCompare, infix: parseBinary},

		lexer.Plus:  {precedence: precedenceAdd, prefix: parseUnary, infix: parseBinary},
		lexer.Minus: {precedence: precedenceAdd, prefix: parseUnary, infix: parseBinary},

		lexer.Star:      {precedence: precedenceMul, infix: parseBinary},
		lexer.Slash:     {precedence: precedenceMul, infix: parseBinary},
		lexer.IntDivide:  {precedence: precedenceMul, infix: parseBinary},
		lexer.Percent:   {precedence: precedenceMul, infix: parseBinary},

		// ** is right-associative: a ** b ** c == a ** (b ** c).
		lexer.Power: {precedence: precedencePower, rightAssoc: true, infix: parseBinary},

		lexer.Int:    {precedence: precedenceLowest, prefix: parseLiteral},
		lexer.Float:  {precedence: precedenceLowest, prefix: parseLiteral},
		lexer.Str:    {precedence: precedenceLowest, prefix: parseLiteral},
		lexer.True:   {precedence: precedenceLowest, prefix: parseLiteral},
		lexer.False:  {precedence: precedenceLowest, prefix: parseLiteral},
		lexer.Ident:  {precedence: precedenceLowest, prefix: parseIdentOrCall},
		lexer.Len:    {precedence: precedenceLowest, prefix: parseLenCall},
		lexer.LParen: {precedence: precedenceLowest, prefix: parseGroupOrTuple},
		lexer.LBracket: {precedence: precedenceLowest, prefix: parseListLiteral},
	}
}

// Parser consumes a flat token slice (as produced by lexer.Lexer.AllTokens)
// and builds the AST.
type Parser struct {
	toks []lexer.Token
	pos  int
}

func New(toks []lexer.Token) *Parser {
	return &Parser{toks: toks}
}

func Parse(source []byte, report *diag.Reporter) (*ast.Program, error) {
	toks := lexer.New(source, report).AllTokens()
	return New(toks).ParseProgram()
}

func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.toks) {
		return lexer.TokenEOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) lexer.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return lexer.TokenEOF
	}
	return p.toks[idx]
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind lexer.Kind) bool { return p.peek().Kind == kind }

func (p *Parser) atEnd() bool { return p.peek().Kind == lexer.EOF }

func (p *Parser) expect(kind lexer.Kind) (lexer.Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, diag.ParseErrorf(tok.Position.Line, "expected %s, found %s %q", kind, tok.Kind, tok.Lexeme)
	}
	return p.advance(), nil
}

func (p *Parser) skipNewlines() {
	for p.check(lexer.NewLine) {
		p.advance()
	}
}

// ParseProgram parses a full miniPy source file into a Program node.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	p.skipNewlines()
	var lines []ast.Statement
	for !p.atEnd() {
		line, err := p.parseCodeLine()
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
		p.skipNewlines()
	}
	return ast.NewProgram(1, lines), nil
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseExprPrecedence(precedenceLowest)
}

func (p *Parser) parseExprPrecedence(min precedence) (ast.Expr, error) {
	tok := p.advance()
	rule, ok := exprPrecedence[tok.Kind]
	if !ok || rule.prefix == nil {
		return nil, diag.ParseErrorf(tok.Position.Line, "unexpected token %s %q", tok.Kind, tok.Lexeme)
	}
	left, err := rule.prefix(p, tok)
	if err != nil {
		return nil, err
	}

	left, err = p.parsePostfix(left)
	if err != nil {
		return nil, err
	}

	for {
		next := p.peek()
		nextRule, ok := exprPrecedence[next.Kind]
		if !ok || nextRule.infix == nil || nextRule.precedence < min {
			return left, nil
		}
		p.advance()
		left, err = nextRule.infix(p, next, left)
		if err != nil {
			return nil, err
		}
		left, err = p.parsePostfix(left)
		if err != nil {
			return nil, err
		}
	}
}

// parsePostfix applies `[index]`, `[start:end:step]` and `.method(...)`
// suffixes, which bind tighter than any binary operator.
func (p *Parser) parsePostfix(left ast.Expr) (ast.Expr, error) {
	for {
		switch {
		case p.check(lexer.LBracket):
			next, err := p.parseSubscript(left)
			if err != nil {
				return nil, err
			}
			left = next
		case p.check(lexer.Dot):
			next, err := p.parseMethodCall(left)
			if err != nil {
				return nil, err
			}
			left = next
		default:
			return left, nil
		}
	}
}

func parseLiteral(p *Parser, tok lexer.Token) (ast.Expr, error) {
	switch tok.Kind {
	case lexer.True:
		return ast.NewLiteral(tok.Position.Line, true), nil
	case lexer.False:
		return ast.NewLiteral(tok.Position.Line, false), nil
	case lexer.Int:
		return ast.NewLiteral(tok.Position.Line, parseIntLexeme(tok.Lexeme)), nil
	case lexer.Float:
		return ast.NewLiteral(tok.Position.Line, parseFloatLexeme(tok.Lexeme)), nil
	case lexer.Str:
		return ast.NewLiteral(tok.Position.Line, tok.Lexeme), nil
	default:
		return nil, diag.ParseErrorf(tok.Position.Line, "not a literal: %q", tok.Lexeme)
	}
}

func parseIdentOrCall(p *Parser, tok lexer.Token) (ast.Expr, error) {
	if p.check(lexer.LParen) {
		return p.parseFunctionCall(tok)
	}
	return ast.NewID(tok.Position.Line, tok.Lexeme), nil
}

func (p *Parser) parseFunctionCall(name lexer.Token) (ast.Expr, error) {
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if !p.check(lexer.RParen) {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.check(lexer.Comma) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	return ast.NewFunctionCall(name.Position.Line, name.Lexeme, args), nil
}

func parseLenCall(p *Parser, tok lexer.Token) (ast.Expr, error) {
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	return ast.NewSequenceFunctionCall(tok.Position.Line, "len", arg), nil
}

// parseGroupOrTuple handles `(`: a parenthesized expression, an empty tuple
// `()`, or a tuple literal `(a, b)` / `(a,)`.
func parseGroupOrTuple(p *Parser, tok lexer.Token) (ast.Expr, error) {
	if p.check(lexer.RParen) {
		p.advance()
		return ast.NewSequence(tok.Position.Line, ast.TupleKind, nil), nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.RParen) {
		p.advance()
		return first, nil
	}
	elements := []ast.Expr{first}
	sawTrailingComma := false
	for p.check(lexer.Comma) {
		p.advance()
		sawTrailingComma = true
		if p.check(lexer.RParen) {
			break
		}
		el, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
		sawTrailingComma = false
	}
	_ = sawTrailingComma
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	return ast.NewSequence(tok.Position.Line, ast.TupleKind, elements), nil
}

func parseListLiteral(p *Parser, tok lexer.Token) (ast.Expr, error) {
	var elements []ast.Expr
	if !p.check(lexer.RBracket) {
		for {
			el, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elements = append(elements, el)
			if !p.check(lexer.Comma) {
				break
			}
			p.advance()
			if p.check(lexer.RBracket) {
				break
			}
		}
	}
	if _, err := p.expect(lexer.RBracket); err != nil {
		return nil, err
	}
	return ast.NewSequence(tok.Position.Line, ast.ListKind, elements), nil
}

func parseUnary(p *Parser, tok lexer.Token) (ast.Expr, error) {
	prec := precedenceUnary
	if tok.Kind == lexer.Not {
		prec = precedenceNot
	}
	operand, err := p.parseExprPrecedence(prec + 1)
	if err != nil {
		return nil, err
	}
	return ast.NewUnaryOperation(tok.Position.Line, tok.Lexeme, operand), nil
}

func parseBinary(p *Parser, tok lexer.Token, left ast.Expr) (ast.Expr, error) {
	rule := exprPrecedence[tok.Kind]
	min := rule.precedence + 1
	if rule.rightAssoc {
		min = rule.precedence
	}
	right, err := p.parseExprPrecedence(min)
	if err != nil {
		return nil, err
	}
	return ast.NewBinaryOperation(tok.Position.Line, tok.Lexeme, left, right), nil
}

// parseSubscript parses `seq[index]` or one of the twelve slice forms,
// disambiguating purely on the number and position of colons between the
// brackets, matching the source grammar's slice productions exactly.
func (p *Parser) parseSubscript(seq ast.Expr) (ast.Expr, error) {
	open, err := p.expect(lexer.LBracket)
	if err != nil {
		return nil, err
	}

	if p.check(lexer.Colon) {
		return p.parseSliceFrom(seq, open, nil)
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.check(lexer.Colon) {
		if _, err := p.expect(lexer.RBracket); err != nil {
			return nil, err
		}
		return ast.NewSequenceIndex(open.Position.Line, seq, first), nil
	}
	return p.parseSliceFrom(seq, open, first)
}

// parseSliceFrom parses the colon-separated bound list after an optional
// start expression has already been consumed (start is nil if the slice
// began with ':').
func (p *Parser) parseSliceFrom(seq ast.Expr, open lexer.Token, start ast.Expr) (ast.Expr, error) {
	if _, err := p.expect(lexer.Colon); err != nil {
		return nil, err
	}

	var end, step ast.Expr
	if !p.check(lexer.Colon) && !p.check(lexer.RBracket) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		end = e
	}
	if p.check(lexer.Colon) {
		p.advance()
		if !p.check(lexer.RBracket) {
			s, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			step = s
		}
	}
	if _, err := p.expect(lexer.RBracket); err != nil {
		return nil, err
	}
	return ast.NewSequenceSlice(open.Position.Line, seq, start, end, step), nil
}

var methodArity = map[string]int{
	"append": 1, "extend": 1, "insert": 2, "index": 1, "pop": 1, "copy": 0,
}

// parseMethodCall parses `seq.method(args)`; pop takes an optional index
// (zero or one argument) and copy takes none, so arity here is treated as a
// maximum, not exact.
func (p *Parser) parseMethodCall(seq ast.Expr) (ast.Expr, error) {
	dot, err := p.expect(lexer.Dot)
	if err != nil {
		return nil, err
	}
	name := p.advance()
	if !isMethodName(name.Kind) {
		return nil, diag.ParseErrorf(name.Position.Line, "unknown sequence method %q", name.Lexeme)
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if !p.check(lexer.RParen) {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.check(lexer.Comma) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	if max, ok := methodArity[name.Lexeme]; ok && len(args) > max {
		return nil, diag.ParseErrorf(dot.Position.Line, "%s() takes at most %d argument(s), got %d", name.Lexeme, max, len(args))
	}
	var arg1, arg2 ast.Expr
	if len(args) > 0 {
		arg1 = args[0]
	}
	if len(args) > 1 {
		arg2 = args[1]
	}
	return ast.NewSequenceMethod(dot.Position.Line, seq, name.Lexeme, arg1, arg2), nil
}

func isMethodName(kind lexer.Kind) bool {
	switch kind {
	case lexer.Append, lexer.Extend, lexer.Insert, lexer.Index, lexer.Pop, lexer.Copy:
		return true
	default:
		return false
	}
}
