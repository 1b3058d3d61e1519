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
	"github.com/Theldus/PBD/internal/logger"
)

// resolvedType is the result of chasing a DW_AT_type chain down to a
// concrete shape.
type resolvedType struct {
	class TypeClass
	encoding Encoding
	byteSize int64

	elemSize int64
	elemClass TypeClass
	elemEncoding Encoding
	dims []int64
}

// Variables emits every watchable global/static and, for the compile unit
// owning fn, every local (including parameters) in fn's subtree, filtered
// by name per filter. Structs and unions are recognised but dropped: only
// scalar, pointer, array and enum symbols are watchable.
func (in *Info) Variables(fn *Function, filter Filter) ([]Variable, error) {
	var out []Variable

	for _, cu := range in.units {
		for _, e := range cu.order {
			if e.Tag != dwarf.TagVariable {
				continue
			}
			if cu.ancestorTag(e.Offset, dwarf.TagSubprogram) {
				continue
			}

			name, ok := attrString(e, dwarf.AttrName)
			if !ok || !filter.allows(name) {
				continue
			}

			addr, ok := in.globalAddress(e)
			if !ok {
				continue
			}

			v, err := in.buildVariable(cu, e, name, ScopeGlobal)
			if err != nil {
				logger.Logf("dwarf", "dropped global %q: %v", name, err)
				continue
			}
			v.Address = addr
			out = append(out, v)
		}
	}

	cu := in.cuFor(fn.die)
	if cu == nil {
		return nil, curated.Errorf(curated.FunctionNotFound, fn.Name)
	}

	for _, e := range cu.order {
		if e.Tag != dwarf.TagVariable && e.Tag != dwarf.TagFormalParameter {
			continue
		}
		if e.Offset == fn.die.Offset || !cu.descendsFrom(e.Offset, fn.die.Offset) {
			continue
		}

		name, ok := attrString(e, dwarf.AttrName)
		if !ok || !filter.allows(name) {
			continue
		}

		localOff, ok := in.localFrameOffset(e)
		if !ok {
			logger.Logf("dwarf", "dropped local %q: %s", name, curated.Errorf(curated.UnsupportedLocation, name))
			continue
		}

		v, err := in.buildVariable(cu, e, name, ScopeLocal)
		if err != nil {
			logger.Logf("dwarf", "dropped local %q: %v", name, err)
			continue
		}
		v.FrameOffset = fn.FrameBaseOffset + localOff
		out = append(out, v)
	}

	return out, nil
}

func (in *Info) buildVariable(cu *compileUnit, e *dwarf.Entry, name string, scope Scope) (Variable, error) {
	typeOff, ok := e.Val(dwarf.AttrType).(dwarf.Offset)
	if !ok {
		return Variable{}, curated.Errorf(curated.UnsupportedLocation, name)
	}

	rt, err := in.resolveType(cu, typeOff)
	if err != nil {
		return Variable{}, err
	}

	if rt.class == ClassStruct || rt.class == ClassUnion {
		return Variable{}, curated.Errorf("%q is a struct/union, not watched", name)
	}

	v := Variable{
		Name: name,
		Scope: scope,
		ByteSize: rt.byteSize,
		TypeClass: rt.class,
		Encoding: rt.encoding,
	}

	if rt.class == ClassArray {
		switch rt.elemClass {
		case ClassArray, ClassStruct, ClassUnion:
			return Variable{}, curated.Errorf("%q is an array of arrays/structs/unions, not watched", name)
		}
		if len(rt.dims) == 0 || len(rt.dims) > MaxDimensions {
			return Variable{}, curated.Errorf("%q has an unsupported number of dimensions (%d)", name, len(rt.dims))
		}
		v.Dimensions = len(rt.dims)
		v.ElementSize = rt.elemSize
		v.ElementTypeClass = rt.elemClass
		v.ElementEncoding = rt.elemEncoding
		for i, d := range rt.dims {
			if d < 0 {
				return Variable{}, curated.Errorf("%q has an array dimension of unknown extent", name)
			}
			v.DimExtents[i] = d
		}
	}

	return v, nil
}

// resolveType chases typedef/const/volatile chains down to a concrete
// shape, classifying base types by their DWARF encoding the same way the
// standard library itself does (a distinct Go type per DW_ATE_* value),
// and manually walking DW_TAG_subrange_type children for arrays since the
// stdlib's own dwarf.ArrayType collapses multi-dimensional arrays into
// nested single-dimension types.
func (in *Info) resolveType(cu *compileUnit, off dwarf.Offset) (resolvedType, error) {
	e, ok := cu.by[off]
	if !ok {
		return resolvedType{}, curated.Errorf("type at offset %v not found", off)
	}

	switch e.Tag {
	case dwarf.TagTypedef, dwarf.TagConstType, dwarf.TagVolatileType, dwarf.TagRestrictType:
		next, ok := e.Val(dwarf.AttrType).(dwarf.Offset)
		if !ok {
			// typedef to void: treat as an opaque scalar rather than fail
			// the whole variable.
			return resolvedType{class: ClassScalar, encoding: EncodingUnknown}, nil
		}
		return in.resolveType(cu, next)

	case dwarf.TagBaseType:
		enc, _ := attrInt64(e, dwarf.AttrEncoding)
		size, _ := attrInt64(e, dwarf.AttrByteSize)
		return resolvedType{class: ClassScalar, encoding: encodingFromDWARF(enc), byteSize: size}, nil

	case dwarf.TagPointerType:
		size, ok := attrInt64(e, dwarf.AttrByteSize)
		if !ok {
			size = in.arch.pointerWidth
		}
		return resolvedType{class: ClassPointer, encoding: EncodingPointer, byteSize: size}, nil

	case dwarf.TagEnumerationType:
		size, _ := attrInt64(e, dwarf.AttrByteSize)
		return resolvedType{class: ClassEnum, encoding: EncodingUnknown, byteSize: size}, nil

	case dwarf.TagArrayType:
		elemOff, ok := e.Val(dwarf.AttrType).(dwarf.Offset)
		if !ok {
			return resolvedType{}, curated.Errorf("array type at offset %v has no element type", off)
		}
		elem, err := in.resolveType(cu, elemOff)
		if err != nil {
			return resolvedType{}, err
		}

		dims := in.arrayDims(cu, e)
		total := elem.byteSize
		for _, d := range dims {
			if d > 0 {
				total *= d
			}
		}

		return resolvedType{
			class: ClassArray,
			byteSize: total,
			elemSize: elem.byteSize,
			elemClass: elem.class,
			elemEncoding: elem.encoding,
			dims: dims,
		}, nil

	case dwarf.TagStructType:
		return resolvedType{class: ClassStruct}, nil

	case dwarf.TagUnionType:
		return resolvedType{class: ClassUnion}, nil

	default:
		return resolvedType{class: ClassScalar, encoding: EncodingUnknown}, nil
	}
}

// arrayDims collects the extent of each DW_TAG_subrange_type child of arr,
// outermost dimension first, accepting both the DW_AT_upper_bound
// convention (extent = upper_bound+1) and the DW_AT_count convention
// (extent = count). An extent of -1 means the DIE gave neither attribute.
func (in *Info) arrayDims(cu *compileUnit, arr *dwarf.Entry) []int64 {
	var dims []int64
	for _, e := range cu.order {
		if e.Tag != dwarf.TagSubrangeType {
			continue
		}
		if p, ok := cu.parent[e.Offset]; !ok || p != arr.Offset {
			continue
		}

		if count, ok := attrInt64(e, dwarf.AttrCount); ok {
			dims = append(dims, count)
			continue
		}
		if upper, ok := attrInt64(e, dwarf.AttrUpperBound); ok {
			dims = append(dims, upper+1)
			continue
		}
		dims = append(dims, -1)
	}
	if len(dims) == 0 {
		dims = []int64{-1}
	}
	return dims
}

// DW_ATE_* encoding constants (DWARF v2 §7.8).
const (
	dwAteAddress = 0x1
	dwAteBoolean = 0x2
	dwAteComplexFloat = 0x3
	dwAteFloat = 0x4
	dwAteSigned = 0x5
	dwAteSignedChar = 0x6
	dwAteUnsigned = 0x7
	dwAteUnsignedChar = 0x8
)

func encodingFromDWARF(v int64) Encoding {
	switch v {
	case dwAteFloat, dwAteComplexFloat:
		return EncodingFloat
	case dwAteSigned, dwAteSignedChar:
		return EncodingSigned
	case dwAteUnsigned, dwAteUnsignedChar, dwAteBoolean:
		return EncodingUnsigned
	case dwAteAddress:
		return EncodingPointer
	default:
		return EncodingUnknown
	}
}

// globalAddress recognises the single location form static storage uses:
// DW_OP_addr followed by an address-sized, little-endian operand.
func (in *Info) globalAddress(e *dwarf.Entry) (uint64, bool) {
	fld := e.AttrField(dwarf.AttrLocation)
	if fld == nil {
		return 0, false
	}
	expr, ok := fld.Val.([]byte)
	if !ok || len(expr) < 1 || expr[0] != opAddr {
		return 0, false
	}

	b := expr[1:]
	if int64(len(b)) < in.arch.pointerWidth {
		return 0, false
	}
	if in.arch.pointerWidth == 8 {
		return binary.LittleEndian.Uint64(b), true
	}
	return uint64(binary.LittleEndian.Uint32(b)), true
}

// localFrameOffset recognises the single location form locals use:
// DW_OP_fbreg <sleb128>, the offset from the subprogram's frame base.
// Anything else — a multi-entry .debug_loc list in particular — is
// UnsupportedLocation.
func (in *Info) localFrameOffset(e *dwarf.Entry) (int64, bool) {
	fld := e.AttrField(dwarf.AttrLocation)
	if fld == nil {
		return 0, false
	}
	expr, ok := fld.Val.([]byte)
	if !ok || len(expr) < 1 || expr[0] != opFbreg {
		return 0, false
	}
	off, _ := sleb128(expr[1:])
	return off, true
}
