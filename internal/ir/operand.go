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

// Package ir implements the three-address-code intermediate representation:
// the TAC instruction record and the AST-to-TAC generator with its
// constant-folding rules.
package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// OperandKind tags the closed set of values a TAC instruction's result/left/
// right fields can hold — a flat value union, so a Kind-tagged struct (the
// same convention lexer.Token uses for its Kind field) fits better here than
// the ast package's interface-per-node-kind style.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandRegister
	OperandIdent
	OperandBool
	OperandInt
	OperandFloat
	OperandStr
	OperandTuple
)

// Operand is one TAC result/left/right value: a temporary register
// reference, a source identifier, a literal, or a tuple of operands (used
// for parameter/argument lists and slice triples).
type Operand struct {
	Kind  OperandKind
	Name  string // register or identifier name
	Bool  bool
	Int   int64
	Float float64
	Str   string // literal text, quotes included
	Elems []Operand
}

func None() Operand                   { return Operand{Kind: OperandNone} }
func Register(name string) Operand    { return Operand{Kind: OperandRegister, Name: name} }
func Ident(name string) Operand       { return Operand{Kind: OperandIdent, Name: name} }
func BoolLit(b bool) Operand          { return Operand{Kind: OperandBool, Bool: b} }
func IntLit(v int64) Operand          { return Operand{Kind: OperandInt, Int: v} }
func FloatLit(v float64) Operand      { return Operand{Kind: OperandFloat, Float: v} }
func StrLit(s string) Operand         { return Operand{Kind: OperandStr, Str: s} }
func Tuple(elems ...Operand) Operand  { return Operand{Kind: OperandTuple, Elems: elems} }

func (o Operand) IsAbsent() bool { return o.Kind == OperandNone }

// IsNumericLiteral reports whether o is a compile-time bool/int/float value
// (as opposed to a register, identifier, string, or tuple).
func (o Operand) IsNumericLiteral() bool {
	return o.Kind == OperandBool || o.Kind == OperandInt || o.Kind == OperandFloat
}

func (o Operand) IsStringLiteral() bool { return o.Kind == OperandStr }

// AsFloat widens a numeric literal to float64 (bool true/false as 1/0).
func (o Operand) AsFloat() float64 {
	switch o.Kind {
	case OperandBool:
		if o.Bool {
			return 1
		}
		return 0
	case OperandInt:
		return float64(o.Int)
	case OperandFloat:
		return o.Float
	default:
		return 0
	}
}

// AsInt widens a numeric literal to int64 (bool true/false as 1/0); only
// meaningful when the operand is not a float.
func (o Operand) AsInt() int64 {
	switch o.Kind {
	case OperandBool:
		if o.Bool {
			return 1
		}
		return 0
	case OperandInt:
		return o.Int
	default:
		return int64(o.Float)
	}
}

// IsFloatKind reports whether the operand's static literal kind is float, as
// opposed to int or bool.
func (o Operand) IsFloatKind() bool { return o.Kind == OperandFloat }

func (o Operand) Truthy() bool {
	switch o.Kind {
	case OperandBool:
		return o.Bool
	case OperandInt:
		return o.Int != 0
	case OperandFloat:
		return o.Float != 0
	case OperandStr:
		return o.Str != `""`
	default:
		return false
	}
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandNone:
		return ""
	case OperandRegister, OperandIdent:
		return o.Name
	case OperandBool:
		if o.Bool {
			return "True"
		}
		return "False"
	case OperandInt:
		return strconv.FormatInt(o.Int, 10)
	case OperandFloat:
		return strconv.FormatFloat(o.Float, 'g', -1, 64)
	case OperandStr:
		return o.Str
	case OperandTuple:
		parts := make([]string, len(o.Elems))
		for i, e := range o.Elems {
			parts[i] = e.String()
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
	default:
		return fmt.Sprintf("<unknown operand kind %d>", o.Kind)
	}
}
