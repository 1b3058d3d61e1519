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

// Package dwarf resolves one named function inside an unstripped ELF image:
// its instruction range, frame-pointer convention, watchable variables,
// statement-start line table and source file. It is a thin, purpose-built
// reader built directly on the standard library's debug/elf and debug/dwarf
// packages, targeting the x86/x86-64 DWARF-2 and DWARF-4 that gcc/clang
// emit.
package dwarf

// MaxDimensions bounds the number of dimensions a watched array may have.
const MaxDimensions = 8

// Scope distinguishes global/static storage from function-local storage.
type Scope int

const (
	ScopeGlobal Scope = iota
	ScopeLocal
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "local"
}

// TypeClass is the shape of a variable's type, after chasing typedefs.
type TypeClass int

const (
	ClassScalar TypeClass = iota
	ClassArray
	ClassPointer
	ClassEnum
	ClassStruct
	ClassUnion
)

// Encoding is how a scalar/pointer's bytes should be interpreted.
type Encoding int

const (
	EncodingUnknown Encoding = iota
	EncodingSigned
	EncodingUnsigned
	EncodingFloat
	EncodingPointer
)

// Language is the subset of DW_AT_language values PBD accepts.
type Language int

const (
	LangOther Language = iota
	LangC89
	LangC99
	LangC11
)

func (l Language) String() string {
	switch l {
	case LangC89:
		return "C89"
	case LangC99:
		return "C99"
	case LangC11:
		return "C11"
	default:
		return "other"
	}
}

// LineKind is a bitmask of DWARF line-table row properties.
type LineKind uint8

const (
	KindBeginStmt LineKind = 1 << iota
	KindEndSequence
	KindBlock
)

func (k LineKind) Has(bit LineKind) bool { return k&bit != 0 }

// Line is one row of the function's statement line table.
type Line struct {
	Addr uint64
	LineNo int
	Kind LineKind
}

// FilterMode selects how a Filter restricts the returned variable set.
type FilterMode int

const (
	FilterNone FilterMode = iota
	FilterWatch
	FilterIgnore
)

// Filter is the watch-list/ignore-list the caller applies to Variables().
// Watch and Ignore are mutually exclusive; enforcing that is the CLI
// layer's job (curated.ConflictingFlags), not this package's.
type Filter struct {
	Mode FilterMode
	Names map[string]bool
}

func (f Filter) allows(name string) bool {
	switch f.Mode {
	case FilterWatch:
		return f.Names[name]
	case FilterIgnore:
		return !f.Names[name]
	default:
		return true
	}
}

// Variable describes one watchable symbol: a global/static, or a local or
// parameter declared anywhere inside the traced function, nested blocks
// included.
type Variable struct {
	Name string
	Scope Scope

	// Address is valid for Scope == ScopeGlobal: the absolute load address.
	Address uint64

	// FrameOffset is valid for Scope == ScopeLocal: signed offset from the
	// live base-pointer register, with Function.FrameBaseOffset already
	// added in.
	FrameOffset int64

	ByteSize int64
	TypeClass TypeClass
	Encoding Encoding

	// Array-only fields. ElementTypeClass is the class of a single element
	// (Scalar, Pointer or Enum — arrays of arrays/structs are not produced
	// by this package, matching the core's scope).
	ElementSize int64
	ElementTypeClass TypeClass
	ElementEncoding Encoding
	Dimensions int
	DimExtents [MaxDimensions]int64
}

// Extents returns the variable's dimension extents as a slice, outermost
// dimension first, trimmed to DimExtents[0:Dimensions].
func (v Variable) Extents() []int64 {
	return v.DimExtents[:v.Dimensions]
}
