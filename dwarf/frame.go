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
	"encoding/binary"

	"github.com/Theldus/PBD/curated"
)

// DWARF expression opcodes this package understands. The core only ever
// needs to recognise a location as "base-pointer register, optional
// constant offset" — anything else is either convention B (no offset) or
// an unsupported location.
const (
	opAddr = 0x03
	opFbreg = 0x91
	opBregBit = 0x70 // DW_OP_breg0.. DW_OP_breg31
	opRegBit = 0x50 // DW_OP_reg0.. DW_OP_reg31
)

// frameBaseOffset implements this debugger's frame_base_offset: it reads the
// subprogram's DW_AT_frame_base and, whether it is a single inline
// expression or a true.debug_loc location list, looks for the entry whose
// operand is the base-pointer register.
func (in *Info) frameBaseOffset(sub *dwarf.Entry) (int64, error) {
	fld := sub.AttrField(dwarf.AttrFrameBase)
	if fld == nil {
		return 0, curated.Errorf(curated.NoFramePointer, in.path)
	}

	switch fld.Class {
	case dwarf.ClassExprLoc, dwarf.ClassBlock:
		expr, ok := fld.Val.([]byte)
		if !ok {
			return 0, curated.Errorf(curated.NoFramePointer, in.path)
		}
		off, matched := in.matchBaseRegExpr(expr)
		if !matched {
			return 0, curated.Errorf(curated.NoFramePointer, in.path)
		}
		return off, nil

	case dwarf.ClassLocListPtr, dwarf.ClassConstant:
		loclistOff, ok := attrUint64(sub, dwarf.AttrFrameBase)
		if !ok {
			return 0, curated.Errorf(curated.NoFramePointer, in.path)
		}
		return in.frameBaseFromLoclist(loclistOff)

	default:
		return 0, curated.Errorf(curated.NoFramePointer, in.path)
	}
}

// matchBaseRegExpr decodes a single DWARF location expression and, if it is
// exactly DW_OP_bregN <offset> or DW_OP_regN for the architecture's base
// pointer register, returns the offset (0 for the register-direct form).
func (in *Info) matchBaseRegExpr(expr []byte) (int64, bool) {
	if len(expr) == 0 {
		return 0, false
	}

	op := expr[0]
	switch {
	case op >= opBregBit && op < opBregBit+32:
		reg := int64(op - opBregBit)
		if reg != in.arch.basePointerReg {
			return 0, false
		}
		off, _ := sleb128(expr[1:])
		return off, true

	case op >= opRegBit && op < opRegBit+32:
		reg := int64(op - opRegBit)
		if reg != in.arch.basePointerReg {
			return 0, false
		}
		return 0, true

	default:
		return 0, false
	}
}

// frameBaseFromLoclist decodes the classic (DWARF2-4) .debug_loc format: a
// sequence of (begin, end, exprlen uint16, expr[exprlen]) tuples terminated
// by a (0, 0) pair. When several entries are present, the one whose operand
// denotes the base-pointer register is picked; a single direct-register
// entry (convention B) resolves to offset 0.
func (in *Info) frameBaseFromLoclist(sectionOffset uint64) (int64, error) {
	sec := in.elf.Section(".debug_loc")
	if sec == nil {
		return 0, curated.Errorf(curated.NoFramePointer, in.path)
	}
	data, err := sec.Data()
	if err != nil {
		return 0, err
	}
	if sectionOffset >= uint64(len(data)) {
		return 0, curated.Errorf(curated.NoFramePointer, in.path)
	}

	addrSize := int(in.arch.pointerWidth)
	buf := data[sectionOffset:]

	readAddr := func(b []byte) uint64 {
		if addrSize == 8 {
			return binary.LittleEndian.Uint64(b)
		}
		return uint64(binary.LittleEndian.Uint32(b))
	}

	var matched int64
	var found bool
	var multiple bool

	for len(buf) >= 2*addrSize+2 {
		begin := readAddr(buf)
		end := readAddr(buf[addrSize:])
		buf = buf[2*addrSize:]

		if begin == 0 && end == 0 {
			break
		}

		exprLen := int(binary.LittleEndian.Uint16(buf))
		buf = buf[2:]
		if exprLen > len(buf) {
			return 0, curated.Errorf(curated.NoFramePointer, in.path)
		}
		expr := buf[:exprLen]
		buf = buf[exprLen:]

		if found {
			multiple = true
		}

		if off, ok := in.matchBaseRegExpr(expr); ok {
			matched = off
			found = true
		}
	}

	if !found {
		return 0, curated.Errorf(curated.NoFramePointer, in.path)
	}
	_ = multiple // multiple entries are expected for convention A; nothing further to validate
	return matched, nil
}

// sleb128 decodes a signed little-endian base-128 value, returning the
// value and the number of bytes consumed.
func sleb128(b []byte) (int64, int) {
	var result int64
	var shift uint
	var i int
	for i = 0; i < len(b); i++ {
		byte7 := b[i]
		result |= int64(byte7&0x7f) << shift
		shift += 7
		if byte7&0x80 == 0 {
			if shift < 64 && byte7&0x40 != 0 {
				result |= -1 << shift
			}
			i++
			break
		}
	}
	return result, i
}
