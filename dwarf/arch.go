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

import "debug/elf"

// arch is the thin per-architecture trait this package needs: only the
// DWARF register numbering and the pointer width differ between x86 and
// x86-64.
type arch struct {
	// basePointerReg is the DWARF register number of the base-pointer
	// register (EBP on x86, RBP on x86-64).
	basePointerReg int64

	// pointerWidth is the host ABI's pointer size in bytes, used as the
	// default byte_size for a DW_TAG_pointer_type DIE that omits
	// DW_AT_byte_size, and as the DWARF address size when decoding
	// .debug_loc entries.
	pointerWidth int64
}

var (
	archX86 = arch{basePointerReg: 5, pointerWidth: 4}
	archX86_64 = arch{basePointerReg: 6, pointerWidth: 8}
)

// archFor inspects the ELF header machine field. Any machine other than
// EM_386 or EM_X86_64 is outside this core's scope.
func archFor(f *elf.File) (arch, bool) {
	switch f.Machine {
	case elf.EM_386:
		return archX86, true
	case elf.EM_X86_64:
		return archX86_64, true
	default:
		return arch{}, false
	}
}
