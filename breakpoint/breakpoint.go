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

// Package breakpoint manages the set of software breakpoints (INT3 patches)
// planted over a traced function's code. Unlike a condition-based
// breakpoint (compare a target's live value against a wanted value), every
// breakpoint here is unconditional: it exists purely to stop the tracee at
// a particular address so session.Loop can inspect state and then step
// back over it.
package breakpoint

import (
	"sort"

	"github.com/Theldus/PBD/curated"
	"github.com/Theldus/PBD/dwarf"
	"github.com/Theldus/PBD/tracer"
)

// Breakpoint is a single planted trap: the address it replaces, the byte it
// replaced, and the source line it stands for (0 for the synthetic
// return-address breakpoint session.Loop creates on function entry).
type Breakpoint struct {
	Addr uint64
	OriginalByte byte
	LineNo int
}

// Set is the live collection of breakpoints for one traced function,
// indexed by address so Find and StepThrough are O(1).
type Set struct {
	byAddr map[uint64]*Breakpoint
}

// NewSet returns an empty breakpoint set.
func NewSet() *Set {
	return &Set{byAddr: make(map[uint64]*Breakpoint)}
}

// BuildLineBreakpoints derives one breakpoint per statement-bearing source
// line in lines, always including fn's entry address. When
// avoidEqualStatements is true, only the first address seen for a given
// line number is kept, collapsing compiler-duplicated statements (common
// with loop unrolling and inlined macros) down to a single stop per line.
func BuildLineBreakpoints(fn *dwarf.Function, lines []dwarf.Line, avoidEqualStatements bool) *Set {
	s := NewSet()
	s.CreateAt(fn.LowPC, 0)

	seenLine := make(map[int]bool)
	for _, l := range lines {
		if !l.Kind.Has(dwarf.KindBeginStmt) {
			continue
		}
		if !fn.Contains(l.Addr) {
			continue
		}
		if avoidEqualStatements && seenLine[l.LineNo] {
			continue
		}
		seenLine[l.LineNo] = true
		s.CreateAt(l.Addr, l.LineNo)
	}
	return s
}

// CreateAt adds a breakpoint at addr if one is not already there. It is
// idempotent: calling it twice for the same address is a no-op the second
// time, so callers never need to guard against duplicate line addresses.
func (s *Set) CreateAt(addr uint64, lineNo int) *Breakpoint {
	if bp, ok := s.byAddr[addr]; ok {
		return bp
	}
	bp := &Breakpoint{Addr: addr, LineNo: lineNo}
	s.byAddr[addr] = bp
	return bp
}

// Remove un-plants and drops a breakpoint. session.Loop does not call it:
// the synthetic return-address breakpoint stays planted for the whole run.
func (s *Set) Remove(t tracer.Tracer, addr uint64) error {
	bp, ok := s.byAddr[addr]
	if !ok {
		return nil
	}
	if err := t.WriteByte(bp.Addr, bp.OriginalByte); err != nil {
		return err
	}
	delete(s.byAddr, addr)
	return nil
}

// Find looks up the breakpoint that just trapped. Callers must pass pc-1:
// INT3 advances the instruction pointer past itself, so the trap address is
// always one byte behind the reported PC.
func (s *Set) Find(trapAddr uint64) (*Breakpoint, bool) {
	bp, ok := s.byAddr[trapAddr]
	return bp, ok
}

// Len reports how many breakpoints are currently planted or pending.
func (s *Set) Len() int { return len(s.byAddr) }

// Addrs returns every breakpoint address in ascending order, mainly for
// devtools dumps and tests.
func (s *Set) Addrs() []uint64 {
	addrs := make([]uint64, 0, len(s.byAddr))
	for a := range s.byAddr {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// ArmAll reads and stashes the original byte at every breakpoint address
// and writes the trap opcode in its place. It must run once, before the
// tracee is first continued.
func (s *Set) ArmAll(t tracer.Tracer) error {
	for _, addr := range s.Addrs() {
		bp := s.byAddr[addr]
		orig, err := t.ReadByte(addr)
		if err != nil {
			return curated.Errorf(curated.MemoryAccessFailed, addr, err)
		}
		bp.OriginalByte = orig
		if err := t.WriteByte(addr, tracer.TrapOpcode); err != nil {
			return curated.Errorf(curated.MemoryAccessFailed, addr, err)
		}
	}
	return nil
}

// DisarmAll restores every original byte, used before the process is
// allowed to exit on its own or before a clean detach.
func (s *Set) DisarmAll(t tracer.Tracer) error {
	for _, addr := range s.Addrs() {
		bp := s.byAddr[addr]
		if err := t.WriteByte(addr, bp.OriginalByte); err != nil {
			return curated.Errorf(curated.MemoryAccessFailed, addr, err)
		}
	}
	return nil
}

// StepThrough restores the original instruction, rewinds PC to bp.Addr,
// single-steps past it, then replants the trap. This is the only way to
// get the tracee past a planted breakpoint without ever exposing the
// patched byte to the traced program's own logic.
func StepThrough(t tracer.Tracer, bp *Breakpoint) error {
	if err := t.WritePC(bp.Addr); err != nil {
		return err
	}
	if err := t.WriteByte(bp.Addr, bp.OriginalByte); err != nil {
		return err
	}
	if err := t.SingleStep(); err != nil {
		return err
	}
	if _, err := t.Wait(); err != nil {
		return err
	}
	return t.WriteByte(bp.Addr, tracer.TrapOpcode)
}
