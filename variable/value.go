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

// Package variable reads the live value of a watched symbol across the
// process boundary, distinguishes first-initialisation from stack garbage,
// and for arrays locates the exact changed element in a multi-dimensional
// layout. Values are carried as raw little-endian byte slices;
// encoding/width live on the dwarf.Variable descriptor, so formatting them
// into decimal/float/hex text is entirely the output package's concern.
package variable

import (
	"github.com/Theldus/PBD/curated"
	"github.com/Theldus/PBD/dwarf"
	"github.com/Theldus/PBD/tracer"
)

// address resolves a variable's runtime location: the absolute address for
// a global, or the live base pointer plus its signed frame offset for a
// local.
func address(v *dwarf.Variable, baseBP uint64) uint64 {
	if v.Scope == dwarf.ScopeGlobal {
		return v.Address
	}
	return uint64(int64(baseBP) + v.FrameOffset)
}

// Read fetches v's current bytes from the tracee. Arrays get a single
// byte-range read of v.ByteSize; scalars/pointers/enums of width 1, 2, 4 or
// 8 get one read; the 16-byte long-double case is read as two 8-byte
// halves.
func Read(v *dwarf.Variable, baseBP uint64, t tracer.Tracer) ([]byte, error) {
	addr := address(v, baseBP)

	if v.TypeClass == dwarf.ClassArray {
		b, err := t.ReadBytes(addr, int(v.ByteSize))
		if err != nil {
			return nil, curated.Errorf(curated.MemoryAccessFailed, addr, err)
		}
		return b, nil
	}

	switch v.ByteSize {
	case 1, 2, 4, 8:
		b, err := t.ReadBytes(addr, int(v.ByteSize))
		if err != nil {
			return nil, curated.Errorf(curated.MemoryAccessFailed, addr, err)
		}
		return b, nil
	case 16:
		lo, err := t.ReadBytes(addr, 8)
		if err != nil {
			return nil, curated.Errorf(curated.MemoryAccessFailed, addr, err)
		}
		hi, err := t.ReadBytes(addr+8, 8)
		if err != nil {
			return nil, curated.Errorf(curated.MemoryAccessFailed, addr+8, err)
		}
		return append(lo, hi...), nil
	default:
		return nil, curated.Errorf(curated.UnsupportedVariableSize, v.Name, v.ByteSize)
	}
}
