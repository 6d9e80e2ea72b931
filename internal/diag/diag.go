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

// Package diag defines the error and recoverable-warning types shared by the
// lexer, parser and type checker stages of the compiler pipeline.
package diag

import "fmt"

// Stage identifies which pipeline phase raised an Error.
type Stage int

const (
	Lexical Stage = iota
	Parse
	Semantic
)

func (s Stage) String() string {
	switch s {
	case Lexical:
		return "lexical"
	case Parse:
		return "parse"
	case Semantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Error is the single error type raised by every compiler stage. Parse and
// semantic errors are fatal and terminate the pipeline; lexical errors are
// reported through Reporter.Warnf and do not themselves construct an Error.
type Error struct {
	Stage   Stage
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s error at line %d: %s", e.Stage, e.Line, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Stage, e.Message)
}

// Errorf constructs a Semantic *Error, the kind raised throughout the symbol
// table and type checker.
func Errorf(line int, format string, args ...any) *Error {
	return &Error{Stage: Semantic, Line: line, Message: fmt.Sprintf(format, args...)}
}

// ParseErrorf constructs a Parse *Error, raised by the parser on malformed
// token sequences.
func ParseErrorf(line int, format string, args ...any) *Error {
	return &Error{Stage: Parse, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Reporter collects non-fatal diagnostics (currently only lexical warnings)
// without interrupting the pass that produced them, mirroring the original
// lexer's "print to stderr and keep scanning" behavior.
type Reporter struct {
	Verbose  bool
	warnings []string
}

// Warnf records a recoverable diagnostic, e.g. an illegal character that the
// lexer skipped. It never returns an error: the caller keeps running.
func (r *Reporter) Warnf(line int, format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf("line %d: %s", line, fmt.Sprintf(format, args...)))
}

// Warnings returns every recorded warning in emission order.
func (r *Reporter) Warnings() []string {
	return r.warnings
}
