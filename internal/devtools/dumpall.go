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

// Package devtools backs --dump-all: it prints the resolved debug-info
// summary and the computed breakpoint list, then (when given a graph
// writer) renders the same facts as a Graphviz value graph with memviz.
package devtools

import (
	"fmt"
	"io"

	"github.com/bradleyjkemp/memviz"

	"github.com/Theldus/PBD/breakpoint"
	"github.com/Theldus/PBD/dwarf"
)

// Facts is the immutable snapshot of resolved debug information that
// --dump-all reports, and the value memviz.Map renders as a graph.
type Facts struct {
	Function *dwarf.Function
	Variables []*dwarf.Variable
	Breakpoints []uint64
}

// Gather builds a Facts snapshot from a resolved function, its watched
// variables, and the final armed breakpoint set.
func Gather(fn *dwarf.Function, vars []*dwarf.Variable, bps *breakpoint.Set) Facts {
	return Facts{Function: fn, Variables: vars, Breakpoints: bps.Addrs()}
}

// DumpAll writes the textual summary to w. It never touches the tracee.
func DumpAll(w io.Writer, f Facts) {
	fn := f.Function
	fmt.Fprintf(w, "function %s: [%#x, %#x], frame_base_offset=%d\n",
		fn.Name, fn.LowPC, fn.HighPC, fn.FrameBaseOffset)

	fmt.Fprintln(w, "variables:")
	for _, v := range f.Variables {
		loc := fmt.Sprintf("addr=%#x", v.Address)
		if v.Scope == dwarf.ScopeLocal {
			loc = fmt.Sprintf("frame_offset=%d", v.FrameOffset)
		}
		fmt.Fprintf(w, " %-20s scope=%-6s size=%-4d %s\n", v.Name, v.Scope, v.ByteSize, loc)
	}

	fmt.Fprintln(w, "breakpoints:")
	for _, addr := range f.Breakpoints {
		fmt.Fprintf(w, " %#x\n", addr)
	}
}

// DumpGraph renders f as a Graphviz.dot document to dot.
func DumpGraph(dot io.Writer, f Facts) {
	memviz.Map(dot, &f)
}
