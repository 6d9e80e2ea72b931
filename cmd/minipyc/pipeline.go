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

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/starklar/minipyc/internal/codegen"
	"github.com/starklar/minipyc/internal/diag"
	"github.com/starklar/minipyc/internal/ir"
	"github.com/starklar/minipyc/internal/parser"
	"github.com/starklar/minipyc/internal/types"
)

// stopAt names the pipeline stage at which compilation should stop early,
// for the -p/--parse-only and -t/--typecheck-only flags.
type stopAt int

const (
	stopNever stopAt = iota
	stopAfterParse
	stopAfterTypecheck
)

// compileFile runs one source file through the full pipeline: lex, parse,
// type-check, lower to TAC, emit targetJ, and (opt-in) a BUILD.bazel rule.
// Lexical warnings are surfaced through report when verbose is set; parse
// and semantic failures return a *diag.Error.
func compileFile(path string, cfg resolvedConfig, stop stopAt, verbose bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	report := &diag.Reporter{Verbose: verbose}
	prog, err := parser.Parse(src, report)
	if verbose {
		for _, w := range report.Warnings() {
			fmt.Fprintf(os.Stderr, "%s: warning: %s\n", path, w)
		}
	}
	if err != nil {
		return err
	}
	if stop == stopAfterParse {
		return nil
	}

	globalTypes, err := types.New().Check(prog)
	if err != nil {
		return err
	}
	if stop == stopAfterTypecheck {
		return nil
	}

	tacs, err := ir.New().Generate(prog)
	if err != nil {
		return err
	}

	className := classNameFor(path)
	javaFile := className + ".java"
	javaSource, err := codegen.NewWithTypes(globalTypes).Generate(className, tacs)
	if err != nil {
		return err
	}
	if cfg.Package != "" {
		javaSource = fmt.Sprintf("package %s;\n\n%s", cfg.Package, javaSource)
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return err
	}

	irPath := filepath.Join(cfg.OutDir, baseNameNoExt(path)+"_ir.out")
	if err := writeIRFile(irPath, tacs); err != nil {
		return err
	}

	javaPath := filepath.Join(cfg.OutDir, javaFile)
	if err := writeFile(javaPath, javaSource); err != nil {
		return err
	}
	if verbose {
		log.Printf("wrote %s and %s", irPath, javaPath)
	}

	if cfg.Bazel {
		if err := codegen.WriteBuildFile(cfg.OutDir, className, javaFile); err != nil {
			return err
		}
	}
	return nil
}

func writeIRFile(path string, tacs []ir.TAC) error {
	var b strings.Builder
	for _, t := range tacs {
		b.WriteString(t.String())
		b.WriteString("\n")
	}
	return writeFile(path, b.String())
}

// writeFile scopes the file handle to this call, closing it on every exit
// path including a write error.
func writeFile(path, content string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(content)
	return err
}

func baseNameNoExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// classNameFor derives the targetJ class name from the source file's base
// name, capitalized.
func classNameFor(path string) string {
	name := baseNameNoExt(path)
	if name == "" {
		return "Prog"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
