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
	"debug/elf"
	"path/filepath"

	"github.com/Theldus/PBD/curated"
)

// Info is the read-only debug-info facts produced from one ELF image.
// Once constructed by Open it is never mutated, so it may be freely shared
// even if a future extension adds concurrency.
type Info struct {
	path string
	elf *elf.File
	data *dwarf.Data
	arch arch

	units []*compileUnit
}

// Open parses the ELF and DWARF sections of path. It fails fast with
// curated.PieExecutable for position-independent binaries and does not
// attempt to recover from a missing .debug_info section.
func Open(path string) (*Info, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, err
	}

	if f.Type == elf.ET_DYN {
		f.Close()
		return nil, curated.Errorf(curated.PieExecutable, path)
	}

	a, ok := archFor(f)
	if !ok {
		f.Close()
		return nil, curated.Errorf("%s: unsupported ELF machine %s", path, f.Machine)
	}

	d, err := f.DWARF()
	if err != nil {
		f.Close()
		return nil, err
	}

	units, err := buildCompileUnits(d)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Info{path: path, elf: f, data: d, arch: a, units: units}, nil
}

// Close releases the underlying file descriptor.
func (in *Info) Close() error {
	return in.elf.Close()
}

// cuFor returns the compile unit containing die, used by Variables/Lines to
// re-enter the right unit for a previously resolved Function.
func (in *Info) cuFor(die *dwarf.Entry) *compileUnit {
	for _, cu := range in.units {
		if _, ok := cu.by[die.Offset]; ok {
			return cu
		}
	}
	return nil
}

// Language returns the DW_AT_language of the compile unit containing fn.
// Callers should treat LangOther as fatal: this tool only understands C.
func (in *Info) Language(fn *Function) Language {
	cu := in.cuFor(fn.die)
	if cu == nil {
		return LangOther
	}
	v, ok := attrInt64(cu.root, dwarf.AttrLanguage)
	if !ok {
		return LangOther
	}
	switch v {
	case 0x02: // DW_LANG_C
		return LangC89
	case 0x0c: // DW_LANG_C99
		return LangC99
	case 0x01: // DW_LANG_C89
		return LangC89
	case 0x1d: // DW_LANG_C11
		return LangC11
	default:
		return LangOther
	}
}

// SourceFile concatenates the compile unit's DW_AT_comp_dir and the
// function's declaring file name.
func (in *Info) SourceFile(fn *Function) (string, error) {
	cu := in.cuFor(fn.die)
	if cu == nil {
		return "", curated.Errorf(curated.FunctionNotFound, fn.Name)
	}

	name := cu.name
	if fileIdx, ok := attrInt64(fn.die, dwarf.AttrDeclFile); ok {
		if lr, err := in.data.LineReader(cu.root); err == nil && lr != nil {
			files := lr.Files()
			if fileIdx >= 0 && int(fileIdx) < len(files) && files[fileIdx] != nil {
				name = files[fileIdx].Name
			}
		}
	}

	if filepath.IsAbs(name) {
		return name, nil
	}
	return filepath.Join(cu.compDir, name), nil
}
