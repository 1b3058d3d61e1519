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

// Package session drives one debugging run end to end: spawn, arm, and the
// main dispatch loop distinguishing function entry, statement hits, and
// function return. It is the only package that touches every other
// component (dwarf, breakpoint, tracer, variable, output) at once.
package session

import (
	"github.com/Theldus/PBD/breakpoint"
	"github.com/Theldus/PBD/curated"
	"github.com/Theldus/PBD/dwarf"
	"github.com/Theldus/PBD/output"
	"github.com/Theldus/PBD/tracer"
	"github.com/Theldus/PBD/variable"
)

// Stats receives counters from a running Loop, letting an optional
// dashboard (internal/statsweb) observe activity without the loop knowing
// anything about HTTP or metrics export.
type Stats interface {
	BreakpointHit()
	VariableChange()
}

type noopStats struct{}

func (noopStats) BreakpointHit() {}
func (noopStats) VariableChange() {}

// Loop is a configured, not-yet-run debugging session.
type Loop struct {
	fn *dwarf.Function
	descs []*dwarf.Variable
	bps *breakpoint.Set
	out output.Writer
	stats Stats
}

// New builds a Loop over a resolved function, its watched variable
// descriptors, and a pre-built breakpoint set (from
// breakpoint.BuildLineBreakpoints or analysis.Filter).
func New(fn *dwarf.Function, descs []*dwarf.Variable, bps *breakpoint.Set, out output.Writer) *Loop {
	return &Loop{fn: fn, descs: descs, bps: bps, out: out, stats: noopStats{}}
}

// SetStats wires a non-nil Stats sink (--live-stats) into the loop.
func (l *Loop) SetStats(s Stats) {
	if s != nil {
		l.stats = s
	}
}

// Run drives the already-spawned tracee t to completion and returns its
// exit code. Planted breakpoints are not restored on return; when Run
// returns an error, cmd/pbd kills the tracee.
func (l *Loop) Run(t tracer.Tracer) (int, error) {
	status, err := t.Wait()
	if err != nil {
		return 0, err
	}
	if status == tracer.Exited {
		// the tracee ran to completion before a single breakpoint was ever
		// armed: the target function was never entered. Surfaced as a
		// warning, not a failure — the tracee's own exit code still stands.
		l.out.Warn(curated.Errorf(curated.TraceeGone, t.Pid()).Error())
		return t.ExitCode(), nil
	}

	if err := l.bps.ArmAll(t); err != nil {
		return 0, curated.Errorf(curated.MemoryAccessFailed, l.fn.LowPC, err)
	}

	var stack []*variable.Context
	awaitingPrologue := false

	for {
		if err := t.Continue(); err != nil {
			return 0, err
		}
		status, err := t.Wait()
		if err != nil {
			return 0, err
		}
		if status == tracer.Exited {
			return t.ExitCode(), nil
		}

		pcAtStop, err := t.ReadPC()
		if err != nil {
			return 0, err
		}
		pc := pcAtStop - 1

		bp, ok := l.bps.Find(pc)
		if !ok {
			// unrelated stop (a signal not meant for us); leave PC alone
			// and keep driving the tracee.
			continue
		}
		l.stats.BreakpointHit()

		switch {
		case pc == l.fn.LowPC:
			if err := l.onEntry(t, bp, &stack, &awaitingPrologue); err != nil {
				return 0, err
			}

		case len(stack) > 0 && pc == stack[len(stack)-1].ReturnAddr:
			if err := l.onReturn(t, bp, &stack); err != nil {
				return 0, err
			}

		default:
			if err := l.onStatement(t, bp, stack, &awaitingPrologue); err != nil {
				return 0, err
			}
		}
	}
}

// onEntry handles a trap at the function's first instruction: pushes a
// fresh recursion context (sharing the same variable descriptors, fresh
// value slots), captures the return address as a synthetic breakpoint, and
// arms the "read scratch values on the next statement" flag.
func (l *Loop) onEntry(t tracer.Tracer, bp *breakpoint.Breakpoint, stack *[]*variable.Context, awaitingPrologue *bool) error {
	ctx := variable.NewContext(l.descs)
	*stack = append(*stack, ctx)
	depth := len(*stack)

	l.out.Entering(depth, l.fn.Name)

	// read before stepping through: once the entry instruction (the
	// frame-pointer push) runs, the stack top no longer holds the return
	// address.
	retAddr, err := t.ReadReturnAddress()
	if err != nil {
		return err
	}
	ctx.ReturnAddr = retAddr
	if _, planted := l.bps.Find(retAddr); !planted {
		rbp := l.bps.CreateAt(retAddr, 0)
		orig, err := t.ReadByte(retAddr)
		if err != nil {
			return curated.Errorf(curated.MemoryAccessFailed, retAddr, err)
		}
		rbp.OriginalByte = orig
		if err := t.WriteByte(retAddr, tracer.TrapOpcode); err != nil {
			return curated.Errorf(curated.MemoryAccessFailed, retAddr, err)
		}
	}

	if err := breakpoint.StepThrough(t, bp); err != nil {
		return err
	}

	*awaitingPrologue = true
	return nil
}

// onReturn handles a trap at the current (innermost) context's captured
// return address: announces the unwind, frees that context, and steps
// through. The breakpoint itself is never removed — recursive calls from
// the same call site share one return address and keep using it.
func (l *Loop) onReturn(t tracer.Tracer, bp *breakpoint.Breakpoint, stack *[]*variable.Context) error {
	depth := len(*stack)
	l.out.Returning(depth)

	*stack = (*stack)[:depth-1]

	return breakpoint.StepThrough(t, bp)
}

// onStatement handles an ordinary statement-line trap: the first one after
// entry seeds scratch/initial values without diffing, every subsequent one
// diffs and reports.
func (l *Loop) onStatement(t tracer.Tracer, bp *breakpoint.Breakpoint, stack []*variable.Context, awaitingPrologue *bool) error {
	if len(stack) == 0 {
		return breakpoint.StepThrough(t, bp)
	}
	ctx := stack[len(stack)-1]
	depth := len(stack)

	baseBP, err := t.ReadBP()
	if err != nil {
		return err
	}

	if *awaitingPrologue {
		variable.Initialize(ctx, baseBP, t)
		*awaitingPrologue = false
	} else {
		for _, c := range variable.CheckChanges(ctx, baseBP, t) {
			l.out.Change(depth, bp.LineNo, c)
			l.stats.VariableChange()
		}
	}

	return breakpoint.StepThrough(t, bp)
}
