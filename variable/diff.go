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

package variable

import (
	"bytes"

	"github.com/Theldus/PBD/dwarf"
	"github.com/Theldus/PBD/tracer"
)

// ChangeKind distinguishes a variable's first meaningful assignment from an
// ordinary later change.
type ChangeKind int

const (
	Initialized ChangeKind = iota
	Changed
)

// Change is one reported transition: a scalar change carries Index == nil;
// an array element change carries the element's N-dimensional index,
// outermost dimension first.
type Change struct {
	Var *dwarf.Variable
	Kind ChangeKind
	Before []byte
	After []byte
	Index []int64
}

// Initialize performs the first read after the function prologue: locals
// land in Scratch (Initialized stays false, so the next statement hit can
// tell a real assignment from leftover stack bytes), globals land directly
// in Value with Initialized set, arrays land in Value as the diff baseline.
// A read failure silently drops that one variable for this hit — not
// every local is guaranteed readable
// the instant the prologue finishes.
func Initialize(ctx *Context, baseBP uint64, t tracer.Tracer) {
	for _, inst := range ctx.Vars {
		if !watched(inst.Desc.TypeClass) {
			continue
		}
		b, err := Read(inst.Desc, baseBP, t)
		if err != nil {
			continue
		}
		switch {
		case inst.Desc.TypeClass == dwarf.ClassArray:
			inst.Value = b
			inst.Initialized = true
		case inst.Desc.Scope == dwarf.ScopeGlobal:
			inst.Value = b
			inst.Initialized = true
		default:
			inst.Scratch = b
		}
	}
}

// CheckChanges re-reads every watched variable in ctx and reports every
// transition since the last hit.
func CheckChanges(ctx *Context, baseBP uint64, t tracer.Tracer) []Change {
	var changes []Change

	for _, inst := range ctx.Vars {
		if !watched(inst.Desc.TypeClass) {
			continue
		}
		cur, err := Read(inst.Desc, baseBP, t)
		if err != nil {
			continue
		}

		if inst.Desc.TypeClass == dwarf.ClassArray {
			changes = append(changes, checkArray(inst, cur)...)
			inst.Value = cur
			continue
		}

		if !inst.Initialized {
			if bytes.Equal(cur, inst.Scratch) {
				continue
			}
			changes = append(changes, Change{
				Var: inst.Desc,
				Kind: Initialized,
				Before: make([]byte, len(cur)), // canonical zero, never the scratch garbage
				After: cur,
			})
			inst.Value = cur
			inst.Initialized = true
			continue
		}

		if bytes.Equal(cur, inst.Value) {
			continue
		}
		changes = append(changes, Change{
			Var: inst.Desc,
			Kind: Changed,
			Before: inst.Value,
			After: cur,
		})
		inst.Value = cur
	}

	return changes
}

// checkArray scans inst's stored buffer against cur, reporting every
// differing element before the caller replaces the buffer wholesale.
func checkArray(inst *Instance, cur []byte) []Change {
	old := inst.Value
	if old == nil {
		return nil // never initialized; nothing to diff against yet
	}

	var changes []Change
	elemSize := inst.Desc.ElementSize
	extents := inst.Desc.Extents()
	total := int64(len(cur))
	pos := int64(0)

	for pos < total {
		k := offmemcmp(old[pos:], cur[pos:], elemSize, total-pos)
		if k == -1 {
			break
		}
		abs := pos + k
		changes = append(changes, Change{
			Var: inst.Desc,
			Kind: Changed,
			Before: old[abs : abs+elemSize],
			After: cur[abs : abs+elemSize],
			Index: indexFromOffset(abs, elemSize, extents),
		})
		pos = abs + elemSize
	}

	return changes
}

// offmemcmp returns the first element-aligned byte offset at which a and b
// (each sliced to length n) differ, or -1 if they are equal over [0, n).
func offmemcmp(a, b []byte, elementSize, n int64) int64 {
	for i := int64(0); i < n; i += elementSize {
		end := i + elementSize
		if end > n {
			end = n
		}
		if !bytes.Equal(a[i:end], b[i:end]) {
			return i
		}
	}
	return -1
}

// indexFromOffset reconstructs an array element's N-dimensional index from
// its byte offset, innermost dimension first during the division, producing
// a result ordered outermost-first to match this debugger's row-major,
// last-index-fastest layout.
func indexFromOffset(offset, elementSize int64, extents []int64) []int64 {
	linear := offset / elementSize
	idx := make([]int64, len(extents))
	for i := len(extents) - 1; i >= 0; i-- {
		idx[i] = linear % extents[i]
		linear /= extents[i]
	}
	return idx
}
