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

// Command minipyc compiles miniPy source files into targetJ classes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/starklar/minipyc/internal/diag"
)

func main() {
	parseOnly := flag.Bool("parse-only", false, "stop after parsing")
	flag.BoolVar(parseOnly, "p", false, "shorthand for --parse-only")
	typecheckOnly := flag.Bool("typecheck-only", false, "stop after type-checking")
	flag.BoolVar(typecheckOnly, "t", false, "shorthand for --typecheck-only")
	verbose := flag.Bool("verbose", false, "log progress and lexical warnings")
	flag.BoolVar(verbose, "v", false, "shorthand for --verbose")
	outDir := flag.String("outdir", "output", "directory for IR and targetJ output files")
	configPath := flag.String("config", "", "path to a minipyc.yaml config (default: minipyc.yaml next to FILE)")
	bazel := flag.Bool("bazel", false, "also emit a BUILD.bazel java_library rule")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: minipyc FILE [-p|--parse-only] [-t|--typecheck-only] [-v|--verbose] [--outdir DIR] [--config FILE] [--bazel]")
		os.Exit(2)
	}
	pattern := flag.Arg(0)

	var outDirSet, bazelSet bool
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "outdir":
			outDirSet = true
		case "bazel":
			bazelSet = true
		}
	})

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(filepath.Dir(pattern), "minipyc.yaml")
	}
	fcfg, err := loadFileConfig(cfgPath)
	if err != nil {
		log.Fatalf("reading config %s: %v", cfgPath, err)
	}
	cfg := fcfg.resolve(*outDir, "", *bazel, outDirSet, bazelSet)

	stop := stopNever
	switch {
	case *parseOnly:
		stop = stopAfterParse
	case *typecheckOnly:
		stop = stopAfterTypecheck
	}

	files, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		log.Fatalf("invalid glob %q: %v", pattern, err)
	}
	if len(files) == 0 {
		files = []string{pattern}
	}

	exitCode := 0
	for _, file := range files {
		if *verbose {
			log.Printf("compiling %s", file)
		}
		if err := compileFile(file, cfg, stop, *verbose); err != nil {
			var derr *diag.Error
			if errors.As(err, &derr) {
				fmt.Fprintf(os.Stderr, "%s: %s\n", file, derr.Error())
				exitCode = 1
			} else {
				fmt.Fprintf(os.Stderr, "%s: %v\n", file, err)
				exitCode = 2
			}
		}
	}
	os.Exit(exitCode)
}
