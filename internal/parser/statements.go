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

package parser

import (
	"strconv"

	"github.com/starklar/minipyc/internal/ast"
	"github.com/starklar/minipyc/internal/diag"
	"github.com/starklar/minipyc/internal/lexer"
)

// parseCodeLine parses a single code_line production: a function def, or any
// statement/bare expression terminated by a NEW_LINE.
func (p *Parser) parseCodeLine() (ast.Statement, error) {
	switch p.peek().Kind {
	case lexer.Def:
		return p.parseFunctionDef()
	case lexer.If:
		return p.parseIfStatement()
	case lexer.While:
		return p.parseWhileStatement()
	case lexer.Return:
		return p.parseReturnStatement()
	case lexer.Print:
		return p.parsePrintStatement()
	case lexer.Ident:
		if p.peekAt(1).Kind == lexer.Assign {
			return p.parseAssignment()
		}
		return p.parseExprStatement()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseExprStatement() (ast.Statement, error) {
	line := p.peek().Position.Line
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.endOfLine(); err != nil {
		return nil, err
	}
	return ast.NewExprStatement(line, expr), nil
}

func (p *Parser) parseAssignment() (ast.Statement, error) {
	name, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Assign); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.endOfLine(); err != nil {
		return nil, err
	}
	return ast.NewAssignmentStatement(name.Position.Line, name.Lexeme, value), nil
}

// endOfLine consumes the NEW_LINE terminating a code line. At end of input a
// missing trailing newline is tolerated, matching how a file without a final
// blank line still parses cleanly.
func (p *Parser) endOfLine() error {
	if p.atEnd() {
		return nil
	}
	_, err := p.expect(lexer.NewLine)
	return err
}

// parseBlock parses `':' NEW_LINE+ code_lines '#' NEW_LINE?`: the block
// terminator is a literal '#' token, not a comment.
func (p *Parser) parseBlock() ([]ast.Statement, error) {
	if _, err := p.expect(lexer.Colon); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NewLine); err != nil {
		return nil, err
	}
	p.skipNewlines()

	var body []ast.Statement
	for !p.check(lexer.Hash) {
		if p.atEnd() {
			return nil, diag.ParseErrorf(p.peek().Position.Line, "unterminated block: expected '#'")
		}
		line, err := p.parseCodeLine()
		if err != nil {
			return nil, err
		}
		body = append(body, line)
		p.skipNewlines()
	}
	if _, err := p.expect(lexer.Hash); err != nil {
		return nil, err
	}
	if p.check(lexer.NewLine) {
		p.advance()
	}
	return body, nil
}

func (p *Parser) parseFunctionDef() (ast.Statement, error) {
	tok, err := p.expect(lexer.Def)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	var params []string
	if !p.check(lexer.RParen) {
		for {
			param, err := p.expect(lexer.Ident)
			if err != nil {
				return nil, err
			}
			params = append(params, param.Lexeme)
			if !p.check(lexer.Comma) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewFunctionDef(tok.Position.Line, name.Lexeme, params, body), nil
}

func (p *Parser) parseIfStatement() (ast.Statement, error) {
	tok, err := p.expect(lexer.If)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var elifs []*ast.ElifBranch
	var elseBody []ast.Statement
	for p.check(lexer.Elif) {
		elifTok := p.advance()
		elifCond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elifBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		elifs = append(elifs, ast.NewElifBranch(elifTok.Position.Line, elifCond, elifBody))
	}
	if p.check(lexer.Else) {
		p.advance()
		elseBody, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIfStatement(tok.Position.Line, cond, body, elifs, elseBody), nil
}

func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	tok, err := p.expect(lexer.While)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewWhileStatement(tok.Position.Line, cond, body), nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	tok, err := p.expect(lexer.Return)
	if err != nil {
		return nil, err
	}
	if p.check(lexer.NewLine) || p.atEnd() {
		if err := p.endOfLine(); err != nil {
			return nil, err
		}
		return ast.NewReturnStatement(tok.Position.Line, nil), nil
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.endOfLine(); err != nil {
		return nil, err
	}
	return ast.NewReturnStatement(tok.Position.Line, value), nil
}

func (p *Parser) parsePrintStatement() (ast.Statement, error) {
	tok, err := p.expect(lexer.Print)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen); err != nil {
		return nil, err
	}
	var value ast.Expr
	if !p.check(lexer.RParen) {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		value = v
	}
	if _, err := p.expect(lexer.RParen); err != nil {
		return nil, err
	}
	if err := p.endOfLine(); err != nil {
		return nil, err
	}
	return ast.NewPrintStatement(tok.Position.Line, value), nil
}

func parseIntLexeme(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloatLexeme(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
