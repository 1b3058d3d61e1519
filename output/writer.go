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

package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/Theldus/PBD/dwarf"
	"github.com/Theldus/PBD/variable"
)

// Writer is the output capability session.Loop is constructed with.
type Writer interface {
	// Entering announces a function invocation at the given recursion
	// depth (1 = outermost).
	Entering(depth int, fn string)

	// Returning announces a function invocation unwinding at depth.
	Returning(depth int)

	// Change reports one variable transition.
	Change(depth, lineNo int, c variable.Change)

	// Warn surfaces a non-fatal diagnostic (e.g. a skipped variable, a
	// disabled static-analysis pass).
	Warn(format string, args...interface{})
}

// variableLabel renders a variable's name with the array multi-index
// suffix an element change requires, e.g. "arr[5][7][6]".
func variableLabel(c variable.Change) string {
	if len(c.Index) == 0 {
		return c.Var.Name
	}
	var b strings.Builder
	b.WriteString(c.Var.Name)
	for _, i := range c.Index {
		fmt.Fprintf(&b, "[%d]", i)
	}
	return b.String()
}

func kindLabel(k variable.ChangeKind) string {
	if k == variable.Initialized {
		return "initialized"
	}
	return "changed"
}

func elementType(v *dwarf.Variable) *dwarf.Variable {
	if v.TypeClass != dwarf.ClassArray {
		return v
	}
	return &dwarf.Variable{Encoding: v.ElementEncoding, ByteSize: v.ElementSize, TypeClass: v.ElementTypeClass}
}

// NullWriter discards everything; cmd/pbd uses it when --show-lines is
// false, and tests use it when they only care about the tracee's own
// stdout/stderr.
type NullWriter struct{}

func (NullWriter) Entering(int, string) {}
func (NullWriter) Returning(int) {}
func (NullWriter) Change(int, int, variable.Change) {}
func (NullWriter) Warn(string,...interface{}) {}

// DefaultWriter writes one plain text line per event to an io.Writer (a
// file, or stdout when no --output path was given).
type DefaultWriter struct {
	W io.Writer
}

func NewDefaultWriter(w io.Writer) *DefaultWriter { return &DefaultWriter{W: w} }

func (d *DefaultWriter) Entering(depth int, fn string) {
	fmt.Fprintf(d.W, "%*sentering %s (depth %d)\n", (depth-1)*2, "", fn, depth)
}

func (d *DefaultWriter) Returning(depth int) {
	fmt.Fprintf(d.W, "%*sreturning (depth %d)\n", (depth-1)*2, "", depth)
}

func (d *DefaultWriter) Change(depth, lineNo int, c variable.Change) {
	et := elementType(c.Var)
	fmt.Fprintf(d.W, "%*sline %d: %s %s %s: %s -> %s\n",
		(depth-1)*2, "",
		lineNo, c.Var.Scope, variableLabel(c), kindLabel(c.Kind),
		FormatValue(et, c.Before), FormatValue(et, c.After))
}

func (d *DefaultWriter) Warn(format string, args...interface{}) {
	fmt.Fprintf(d.W, "warning: "+format+"\n", args...)
}

var (
	_ Writer = NullWriter{}
	_ Writer = (*DefaultWriter)(nil)
)
