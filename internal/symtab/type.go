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

package symtab

// Type is a miniPy value type as tracked by the type checker. Any is the top
// type: it short-circuits every binary/unary type rule. None marks the
// absence of a value (a bare `return`, an append() result) and is a hard
// error anywhere an expression's type is required.
type Type int

const (
	Bool Type = iota
	Int
	Float
	Str
	List
	Tuple
	Any
	None
)

func (t Type) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Str:
		return "str"
	case List:
		return "list"
	case Tuple:
		return "tuple"
	case Any:
		return "Any"
	case None:
		return "None"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether t is bool, int or float — the operand set
// accepted by arithmetic operators other than +, *.
func (t Type) IsNumeric() bool {
	return t == Bool || t == Int || t == Float
}
