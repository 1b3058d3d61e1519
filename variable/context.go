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

import "github.com/Theldus/PBD/dwarf"

// Instance is one context's mutable live state for a watched variable. The
// descriptor (name, type, location) is shared by pointer across every
// recursive context of the same function; only the value slots are
// per-context.
type Instance struct {
	Desc *dwarf.Variable

	Value []byte // last known good value (globals) or array buffer
	Scratch []byte // post-prologue value, locals only, until Initialized
	Initialized bool
}

// Context is one live invocation of the traced function: its own variable
// value slots plus the return address that pops it off the stack.
type Context struct {
	Vars []*Instance
	ReturnAddr uint64
}

// NewContext builds a fresh context from the shared, read-only descriptor
// set, with empty value slots: the per-context state is a clean slate, but
// the descriptor metadata itself is never duplicated, only referenced.
func NewContext(descs []*dwarf.Variable) *Context {
	vars := make([]*Instance, len(descs))
	for i, d := range descs {
		vars[i] = &Instance{Desc: d}
	}
	return &Context{Vars: vars}
}

func watched(class dwarf.TypeClass) bool {
	return class != dwarf.ClassStruct && class != dwarf.ClassUnion
}
