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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildCU assembles a compileUnit by hand from a flat list of entries with
// explicit parent offsets, the same shape buildCompileUnits produces from a
// real.debug_info section, so resolveType/arrayDims can be exercised
// without needing a real ELF image.
func buildCU(entries []*dwarf.Entry, parents map[dwarf.Offset]dwarf.Offset) *compileUnit {
	cu := &compileUnit{
		by: make(map[dwarf.Offset]*dwarf.Entry),
		parent: parents,
	}
	for _, e := range entries {
		cu.by[e.Offset] = e
		cu.order = append(cu.order, e)
	}
	return cu
}

func entry(off dwarf.Offset, tag dwarf.Tag, fields...dwarf.Field) *dwarf.Entry {
	return &dwarf.Entry{Offset: off, Tag: tag, Field: fields}
}

func fld(a dwarf.Attr, v interface{}) dwarf.Field {
	return dwarf.Field{Attr: a, Val: v}
}

func TestResolveTypeScalarAndTypedefChain(t *testing.T) {
	in := &Info{arch: archX86_64}

	intType := entry(100, dwarf.TagBaseType,
		fld(dwarf.AttrByteSize, int64(4)),
		fld(dwarf.AttrEncoding, int64(dwAteSigned)))
	typedefType := entry(110, dwarf.TagTypedef, fld(dwarf.AttrType, dwarf.Offset(100)))

	cu := buildCU([]*dwarf.Entry{intType, typedefType}, map[dwarf.Offset]dwarf.Offset{})

	rt, err := in.resolveType(cu, 110)
	require.NoError(t, err)
	assert.Equal(t, ClassScalar, rt.class)
	assert.Equal(t, EncodingSigned, rt.encoding)
	assert.Equal(t, int64(4), rt.byteSize)
}

func TestResolveTypePointer(t *testing.T) {
	in := &Info{arch: archX86_64}
	intType := entry(100, dwarf.TagBaseType, fld(dwarf.AttrByteSize, int64(4)), fld(dwarf.AttrEncoding, int64(dwAteSigned)))
	ptrType := entry(120, dwarf.TagPointerType, fld(dwarf.AttrType, dwarf.Offset(100)))

	cu := buildCU([]*dwarf.Entry{intType, ptrType}, map[dwarf.Offset]dwarf.Offset{})

	rt, err := in.resolveType(cu, 120)
	require.NoError(t, err)
	assert.Equal(t, ClassPointer, rt.class)
	assert.Equal(t, EncodingPointer, rt.encoding)
	assert.Equal(t, int64(8), rt.byteSize) // defaulted from arch.pointerWidth
}

func TestResolveTypeMultiDimArray(t *testing.T) {
	in := &Info{arch: archX86_64}

	elemType := entry(100, dwarf.TagBaseType, fld(dwarf.AttrByteSize, int64(4)), fld(dwarf.AttrEncoding, int64(dwAteSigned)))
	arrType := entry(200, dwarf.TagArrayType, fld(dwarf.AttrType, dwarf.Offset(100)))
	sub0 := entry(201, dwarf.TagSubrangeType, fld(dwarf.AttrUpperBound, int64(9))) // extent 10
	sub1 := entry(202, dwarf.TagSubrangeType, fld(dwarf.AttrUpperBound, int64(9))) // extent 10
	sub2 := entry(203, dwarf.TagSubrangeType, fld(dwarf.AttrUpperBound, int64(9))) // extent 10

	parents := map[dwarf.Offset]dwarf.Offset{
		201: 200,
		202: 200,
		203: 200,
	}
	cu := buildCU([]*dwarf.Entry{elemType, arrType, sub0, sub1, sub2}, parents)

	rt, err := in.resolveType(cu, 200)
	require.NoError(t, err)
	assert.Equal(t, ClassArray, rt.class)
	assert.Equal(t, []int64{10, 10, 10}, rt.dims)
	assert.Equal(t, int64(4), rt.elemSize)
	assert.Equal(t, int64(4*10*10*10), rt.byteSize)
}

func TestResolveTypeArrayCountConvention(t *testing.T) {
	in := &Info{arch: archX86_64}
	elemType := entry(100, dwarf.TagBaseType, fld(dwarf.AttrByteSize, int64(1)), fld(dwarf.AttrEncoding, int64(dwAteUnsignedChar)))
	arrType := entry(200, dwarf.TagArrayType, fld(dwarf.AttrType, dwarf.Offset(100)))
	sub0 := entry(201, dwarf.TagSubrangeType, fld(dwarf.AttrCount, int64(32)))

	cu := buildCU([]*dwarf.Entry{elemType, arrType, sub0}, map[dwarf.Offset]dwarf.Offset{201: 200})

	rt, err := in.resolveType(cu, 200)
	require.NoError(t, err)
	assert.Equal(t, []int64{32}, rt.dims)
	assert.Equal(t, int64(32), rt.byteSize)
}

func TestMatchBaseRegExpr(t *testing.T) {
	in := &Info{arch: archX86_64}

	// DW_OP_breg6 16 -> rbp + 16
	off, ok := in.matchBaseRegExpr([]byte{0x76, 16})
	assert.True(t, ok)
	assert.Equal(t, int64(16), off)

	// DW_OP_reg6 -> rbp, offset 0 (convention B)
	off, ok = in.matchBaseRegExpr([]byte{0x56})
	assert.True(t, ok)
	assert.Equal(t, int64(0), off)

	// DW_OP_breg3 (rbx, not the base pointer) -> no match
	_, ok = in.matchBaseRegExpr([]byte{0x73, 4})
	assert.False(t, ok)
}

func TestGlobalAddress(t *testing.T) {
	in := &Info{arch: archX86_64}
	e := entry(1, dwarf.TagVariable, fld(dwarf.AttrLocation, []byte{
		opAddr,
		0x10, 0x20, 0x30, 0x40, 0, 0, 0, 0,
	}))
	addr, ok := in.globalAddress(e)
	assert.True(t, ok)
	assert.Equal(t, uint64(0x40302010), addr)
}

func TestLocalFrameOffset(t *testing.T) {
	in := &Info{arch: archX86_64}
	// DW_OP_fbreg -20
	e := entry(1, dwarf.TagVariable, fld(dwarf.AttrLocation, []byte{opFbreg, 0x6c}))
	off, ok := in.localFrameOffset(e)
	assert.True(t, ok)
	assert.Equal(t, int64(-20), off)
}

func TestAncestorTagAndDescendsFrom(t *testing.T) {
	sub := entry(1, dwarf.TagSubprogram)
	block := entry(2, dwarf.TagLexicalBlock)
	v := entry(3, dwarf.TagVariable)

	cu := buildCU([]*dwarf.Entry{sub, block, v}, map[dwarf.Offset]dwarf.Offset{
		2: 1,
		3: 2,
	})

	assert.True(t, cu.ancestorTag(3, dwarf.TagSubprogram))
	assert.True(t, cu.descendsFrom(3, 1))
	assert.False(t, cu.descendsFrom(2, 2))
}
