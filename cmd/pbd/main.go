// This file is part of PBD.
//
// PBD is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// PBD is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with PBD. If not, see <https://www.gnu.org/licenses/>.

// Command pbd is the CLI front-end: it resolves a function's debug info,
// computes the breakpoint set, spawns the tracee, and drives session.Loop
// to completion.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/Theldus/PBD/analysis"
	"github.com/Theldus/PBD/breakpoint"
	"github.com/Theldus/PBD/curated"
	"github.com/Theldus/PBD/dwarf"
	"github.com/Theldus/PBD/internal/config"
	"github.com/Theldus/PBD/internal/devtools"
	"github.com/Theldus/PBD/internal/logger"
	"github.com/Theldus/PBD/internal/statsweb"
	"github.com/Theldus/PBD/output"
	"github.com/Theldus/PBD/session"
	"github.com/Theldus/PBD/tracer"
)

func main() {
	root := config.NewRootCommand(run)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run resolves a function, computes its breakpoints, and drives a trace to
// completion end to end: every error it returns that originates before the
// tracee is spawned is a curated, pre-flight fatal error; cmd/pbd prints it
// as the single explanatory line and exits non-zero without ever calling
// tracer.Spawn.
func run(opts *config.Options) error {
	info, err := dwarf.Open(opts.Executable)
	if err != nil {
		return err
	}
	defer info.Close()

	fn, err := info.LookupFunction(opts.FunctionName)
	if err != nil {
		return err
	}

	lang := info.Language(fn)
	if lang == dwarf.LangOther {
		return curated.Errorf(curated.UnsupportedLanguage, lang)
	}

	filter := resolveFilter(opts)
	vars, err := info.Variables(fn, filter)
	if err != nil {
		return err
	}

	lines, err := info.Lines(fn)
	if err != nil {
		return err
	}

	descs := make([]*dwarf.Variable, 0, len(vars))
	for i := range vars {
		if !opts.Watched(vars[i].Name) {
			continue
		}
		if opts.OnlyLocals && vars[i].Scope != dwarf.ScopeLocal {
			continue
		}
		if opts.OnlyGlobals && vars[i].Scope != dwarf.ScopeGlobal {
			continue
		}
		descs = append(descs, &vars[i])
	}

	bps, err := resolveBreakpoints(opts, info, fn, lines)
	if err != nil {
		return err
	}

	if opts.DumpAll {
		facts := devtools.Gather(fn, descs, bps)
		devtools.DumpAll(os.Stdout, facts)

		dotPath := opts.Executable + ".dot"
		dotFile, err := os.Create(dotPath)
		if err != nil {
			return err
		}
		defer dotFile.Close()
		devtools.DumpGraph(dotFile, facts)
		logger.Logf("main", "value graph written to %s", dotPath)
		return nil
	}

	out, closeOut, err := resolveOutput(opts, info, fn)
	if err != nil {
		return err
	}

	loop := session.New(fn, descs, bps, out)

	if opts.LiveStats {
		srv := statsweb.New("localhost:18081")
		srv.Start()
		loop.SetStats(srv)
		logger.Log("main", "live stats dashboard listening on localhost:18081")
	}

	// ptrace is per-OS-thread state on Linux: the goroutine issuing
	// PTRACE_CONT/PTRACE_SINGLESTEP must be the one that attached.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	proc, err := tracer.Spawn(opts.Executable, opts.Args)
	if err != nil {
		closeOut()
		return err
	}

	code, err := loop.Run(proc)
	closeOut()
	if err != nil {
		_ = proc.Kill()
		return err
	}

	os.Exit(code)
	return nil
}

// resolveFilter turns the CLI's ignore/watch lists into a dwarf.Filter. The
// filter only knows names, not scope: --only-locals/--only-globals are
// applied by run, which prunes the resolved set afterward.
func resolveFilter(opts *config.Options) dwarf.Filter {
	switch {
	case len(opts.WatchList) > 0:
		return dwarf.Filter{Mode: dwarf.FilterWatch, Names: toSet(opts.WatchList)}
	case len(opts.IgnoreList) > 0:
		return dwarf.Filter{Mode: dwarf.FilterIgnore, Names: toSet(opts.IgnoreList)}
	default:
		return dwarf.Filter{}
	}
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// resolveBreakpoints builds the full line-table breakpoint set, or — when
// --static-analysis is requested — hands off to the analysis package. PBD
// ships no C parser of its own, so a request for static analysis is always
// reported as AnalysisUnavailable — fatal, since the user asked for it
// explicitly.
func resolveBreakpoints(opts *config.Options, info *dwarf.Info, fn *dwarf.Function, lines []dwarf.Line) (*breakpoint.Set, error) {
	if !opts.StaticAnalysis {
		return breakpoint.BuildLineBreakpoints(fn, lines, opts.AvoidEqualStatements), nil
	}

	stmts, syms, err := parseFunctionBody(info, fn, opts)
	if err != nil {
		return nil, curated.Errorf(curated.AnalysisUnavailable, err)
	}
	return analysis.Filter(stmts, syms, fn, lines), nil
}

// parseFunctionBody is the seam where an external C AST/parser would be
// plugged in. None is vendored, so static analysis always reports itself
// unavailable; this keeps --static-analysis's fatal/non-fatal distinction
// exercised without pretending to parse C.
func parseFunctionBody(info *dwarf.Info, fn *dwarf.Function, opts *config.Options) ([]analysis.Stmt, []analysis.Symbol, error) {
	return nil, nil, fmt.Errorf("no C parser wired into this build for %s (std=%s)", fn.Name, opts.Standard)
}

// resolveOutput builds the Writer for this run: Null when show-lines is
// off, Detailed when --context is positive, Default otherwise.
func resolveOutput(opts *config.Options, info *dwarf.Info, fn *dwarf.Function) (output.Writer, func(), error) {
	if !opts.ShowLines {
		return output.NullWriter{}, func() {}, nil
	}

	w := os.Stdout
	closeFn := func() {}
	if opts.OutputPath != "" {
		f, err := os.Create(opts.OutputPath)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = func() { f.Close() }
	}

	if opts.Context <= 0 {
		return output.NewDefaultWriter(w), closeFn, nil
	}

	srcFile, err := info.SourceFile(fn)
	if err != nil {
		logger.Logf("main", "source context unavailable: %v", err)
		return output.NewDefaultWriter(w), closeFn, nil
	}
	return output.NewDetailedWriter(w, srcFile, opts.Context), closeFn, nil
}
