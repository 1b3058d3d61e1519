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

package dwarf

import (
	"debug/dwarf"

	"github.com/Theldus/PBD/curated"
)

// Function is the resolved instruction range and frame convention of the
// traced function, plus the DIE PBD needs internally to re-enter the right
// compile unit for Variables/Lines/SourceFile.
type Function struct {
	Name string

	// LowPC/HighPC form an inclusive byte range: LowPC is the first
	// instruction, HighPC is the last byte of the last instruction.
	LowPC uint64
	HighPC uint64

	// FrameBaseOffset is the signed offset baked into every local
	// Variable's FrameOffset; kept here too for --dump-all reporting.
	FrameBaseOffset int64

	die *dwarf.Entry
}

func (f Function) Contains(addr uint64) bool {
	return addr >= f.LowPC && addr <= f.HighPC
}

// LookupFunction scans every compile unit for a DW_TAG_subprogram DIE named
// name, resolves its PC range and frame-base convention, and returns it.
func (in *Info) LookupFunction(name string) (*Function, error) {
	for _, cu := range in.units {
		for _, e := range cu.order {
			if e.Tag != dwarf.TagSubprogram {
				continue
			}
			n, ok := attrString(e, dwarf.AttrName)
			if !ok || n != name {
				continue
			}

			low, ok := attrUint64(e, dwarf.AttrLowpc)
			if !ok {
				continue
			}

			high, err := in.highPC(e, low)
			if err != nil {
				return nil, err
			}

			fn := &Function{Name: name, LowPC: low, HighPC: high - 1, die: e}

			offset, err := in.frameBaseOffset(e)
			if err != nil {
				return nil, err
			}
			fn.FrameBaseOffset = offset

			return fn, nil
		}
	}
	return nil, curated.Errorf(curated.FunctionNotFound, name)
}

// highPC resolves DW_AT_high_pc, handling both the DWARF2 convention (an
// absolute address, form class Address) and the DWARF4 convention (an
// offset/length from low_pc, form class Constant).
func (in *Info) highPC(e *dwarf.Entry, low uint64) (uint64, error) {
	fld := e.AttrField(dwarf.AttrHighpc)
	if fld == nil {
		return 0, curated.Errorf(curated.FunctionNotFound, "high_pc")
	}

	switch fld.Class {
	case dwarf.ClassAddress:
		return fld.Val.(uint64), nil
	default:
		switch v := fld.Val.(type) {
		case uint64:
			return low + v, nil
		case int64:
			return low + uint64(v), nil
		}
	}
	return 0, curated.Errorf(curated.FunctionNotFound, "high_pc")
}
