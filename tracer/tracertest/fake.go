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

// Package tracertest provides an in-memory fake of tracer.Tracer, letting
// breakpoint.Set and session.Loop be exercised on any host without a real
// Linux tracee.
package tracertest

import (
	"encoding/binary"
	"fmt"

	"github.com/Theldus/PBD/tracer"
)

// Fake is a flat byte-addressable memory image plus a PC/BP/SP register
// file. Continue/SingleStep consume the next entry of Script, driving PC
// directly; this lets a test script a precise sequence of stops (entry,
// statement hits, return, exit) without modelling real instruction
// semantics or decoding the planted trap byte.
type Fake struct {
	Mem map[uint64][]byte // base address -> contiguous bytes, non-overlapping
	PC, BP, SP uint64
	WordSize int

	// Script is consumed one entry per Continue/SingleStep call, in order.
	Script []Step

	pos int
	exited bool
	exitCode int
}

// Step is one scripted stop. PokeAddr/PokeBytes, when PokeBytes is
// non-empty, are applied to Mem as this step is consumed — standing in for
// whatever instruction the real tracee would have executed between two
// stops.
type Step struct {
	PC uint64
	Exit bool // if true, the tracee is reported as exited instead of stopped
	Code int

	PokeAddr uint64
	PokeBytes []byte

	// SetBP, when true, overwrites the fake's BP register with BP as this
	// step is consumed — standing in for a callee's own prologue
	// establishing its frame pointer, one frame lower than its caller's.
	SetBP bool
	BP uint64
}

func New(wordSize int) *Fake {
	return &Fake{
		Mem: make(map[uint64][]byte),
		WordSize: wordSize,
	}
}

func (f *Fake) Pid() int { return 1 }

func (f *Fake) Wait() (tracer.Status, error) {
	if f.exited {
		return tracer.Exited, nil
	}
	return tracer.Stopped, nil
}

func (f *Fake) ExitCode() int { return f.exitCode }

func (f *Fake) advance() {
	if f.pos >= len(f.Script) {
		f.exited = true
		return
	}
	s := f.Script[f.pos]
	f.pos++
	if s.Exit {
		f.exited = true
		f.exitCode = s.Code
		return
	}
	f.PC = s.PC
	if s.SetBP {
		f.BP = s.BP
	}
	for i, b := range s.PokeBytes {
		_ = f.WriteByte(s.PokeAddr+uint64(i), b)
	}
}

func (f *Fake) Continue() error { f.advance(); return nil }
func (f *Fake) SingleStep() error { f.advance(); return nil }
func (f *Fake) Kill() error { f.exited = true; return nil }

func (f *Fake) ReadPC() (uint64, error) { return f.PC, nil }
func (f *Fake) WritePC(pc uint64) error { f.PC = pc; return nil }
func (f *Fake) ReadBP() (uint64, error) { return f.BP, nil }

func (f *Fake) ReadReturnAddress() (uint64, error) {
	return f.ReadWord(f.SP)
}

func (f *Fake) findBase(addr uint64) (uint64, []byte, bool) {
	for base, b := range f.Mem {
		if addr >= base && addr < base+uint64(len(b)) {
			return base, b, true
		}
	}
	return 0, nil, false
}

func (f *Fake) ReadByte(addr uint64) (byte, error) {
	base, b, ok := f.findBase(addr)
	if !ok {
		return 0, fmt.Errorf("tracertest: unmapped address %#x", addr)
	}
	return b[addr-base], nil
}

func (f *Fake) WriteByte(addr uint64, v byte) error {
	base, b, ok := f.findBase(addr)
	if !ok {
		return fmt.Errorf("tracertest: unmapped address %#x", addr)
	}
	b[addr-base] = v
	return nil
}

func (f *Fake) ReadBytes(addr uint64, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := f.ReadByte(addr + uint64(i))
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func (f *Fake) ReadWord(addr uint64) (uint64, error) {
	b, err := f.ReadBytes(addr, f.WordSize)
	if err != nil {
		return 0, err
	}
	if f.WordSize == 8 {
		return binary.LittleEndian.Uint64(b), nil
	}
	return uint64(binary.LittleEndian.Uint32(b)), nil
}

func (f *Fake) WriteWord(addr uint64, v uint64) error {
	b := make([]byte, f.WordSize)
	if f.WordSize == 8 {
		binary.LittleEndian.PutUint64(b, v)
	} else {
		binary.LittleEndian.PutUint32(b, uint32(v))
	}
	for i, c := range b {
		if err := f.WriteByte(addr+uint64(i), c); err != nil {
			return err
		}
	}
	return nil
}

var _ tracer.Tracer = (*Fake)(nil)
