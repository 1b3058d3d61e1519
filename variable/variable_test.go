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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Theldus/PBD/dwarf"
	"github.com/Theldus/PBD/tracer/tracertest"
)

func scalarVar(name string, scope dwarf.Scope, loc uint64) *dwarf.Variable {
	v := &dwarf.Variable{
		Name: name, Scope: scope, ByteSize: 4,
		TypeClass: dwarf.ClassScalar, Encoding: dwarf.EncodingSigned,
	}
	if scope == dwarf.ScopeGlobal {
		v.Address = loc
	} else {
		v.FrameOffset = int64(loc)
	}
	return v
}

func arrayVar(name string, elemSize int64, extents...int64) *dwarf.Variable {
	v := &dwarf.Variable{
		Name: name, Scope: dwarf.ScopeGlobal, TypeClass: dwarf.ClassArray,
		ElementSize: elemSize, ElementTypeClass: dwarf.ClassScalar,
		Dimensions: len(extents),
	}
	total := elemSize
	for i, e := range extents {
		v.DimExtents[i] = e
		total *= e
	}
	v.ByteSize = total
	return v
}

func TestReadScalarGlobal(t *testing.T) {
	f := tracertest.New(8)
	f.Mem[0x2000] = []byte{0x2a, 0, 0, 0}

	v := scalarVar("g", dwarf.ScopeGlobal, 0x2000)
	b, err := Read(v, 0, f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2a, 0, 0, 0}, b)
}

func TestReadScalarLocalUsesBaseBP(t *testing.T) {
	f := tracertest.New(8)
	f.Mem[0x1000] = make([]byte, 64)
	copy(f.Mem[0x1000][16:], []byte{0x07, 0, 0, 0})

	v := scalarVar("x", dwarf.ScopeLocal, 16)
	b, err := Read(v, 0x1000, f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x07, 0, 0, 0}, b)
}

func TestReadUnsupportedSize(t *testing.T) {
	f := tracertest.New(8)
	v := scalarVar("bad", dwarf.ScopeGlobal, 0x100)
	v.ByteSize = 3
	_, err := Read(v, 0, f)
	assert.Error(t, err)
}

func TestInitializeThenCheckChangesScalarLocal(t *testing.T) {
	f := tracertest.New(8)
	f.Mem[0x1000] = make([]byte, 16) // stack garbage, zeroed for determinism here

	v := scalarVar("a", dwarf.ScopeLocal, 0)
	ctx := NewContext([]*dwarf.Variable{v})

	Initialize(ctx, 0x1000, f)
	assert.False(t, ctx.Vars[0].Initialized)

	changes := CheckChanges(ctx, 0x1000, f) // no assignment yet
	assert.Empty(t, changes)

	f.Mem[0x1000][0] = 3 // `a = 3;`
	changes = CheckChanges(ctx, 0x1000, f)
	require.Len(t, changes, 1)
	assert.Equal(t, Initialized, changes[0].Kind)
	assert.Equal(t, []byte{0, 0, 0, 0}, changes[0].Before)
	assert.Equal(t, []byte{3, 0, 0, 0}, changes[0].After)
	assert.True(t, ctx.Vars[0].Initialized)

	f.Mem[0x1000][0] = 9
	changes = CheckChanges(ctx, 0x1000, f)
	require.Len(t, changes, 1)
	assert.Equal(t, Changed, changes[0].Kind)
	assert.Equal(t, []byte{3, 0, 0, 0}, changes[0].Before)
	assert.Equal(t, []byte{9, 0, 0, 0}, changes[0].After)
}

func TestCheckChangesGlobalNoInitializedTransition(t *testing.T) {
	f := tracertest.New(8)
	f.Mem[0x3000] = []byte{5, 0, 0, 0}

	v := scalarVar("g_i64", dwarf.ScopeGlobal, 0x3000)
	ctx := NewContext([]*dwarf.Variable{v})
	Initialize(ctx, 0, f)
	assert.True(t, ctx.Vars[0].Initialized)

	f.Mem[0x3000][0] = 6
	changes := CheckChanges(ctx, 0, f)
	require.Len(t, changes, 1)
	assert.Equal(t, Changed, changes[0].Kind)
}

func TestCheckChanges3DArraySingleCell(t *testing.T) {
	v := arrayVar("arr", 4, 10, 10, 10)
	f := tracertest.New(8)
	f.Mem[0x4000] = make([]byte, v.ByteSize)

	ctx := NewContext([]*dwarf.Variable{v})
	Initialize(ctx, 0, f)

	// arr[5][7][6]++ : linear = (5*100 + 7*10 + 6) = 576, byte offset 2304
	offset := int64((5*10+7)*10+6) * 4
	f.Mem[0x4000][offset] = 1

	changes := CheckChanges(ctx, 0, f)
	require.Len(t, changes, 1)
	assert.Equal(t, []int64{5, 7, 6}, changes[0].Index)
	assert.Equal(t, []byte{0, 0, 0, 0}, changes[0].Before)
	assert.Equal(t, []byte{1, 0, 0, 0}, changes[0].After)

	// buffer invariant: stored buffer now byte-equal to last read buffer
	assert.Equal(t, f.Mem[0x4000], ctx.Vars[0].Value)
}

func TestOffmemcmpContract(t *testing.T) {
	a := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	b := []byte{1, 2, 3, 4, 9, 6, 7, 8}
	assert.Equal(t, int64(-1), offmemcmp(a, a, 4, 8))
	assert.Equal(t, int64(4), offmemcmp(a, b, 4, 8))
}

func TestIndexFromOffsetRoundTrips(t *testing.T) {
	extents := []int64{10, 10, 10}
	idx := []int64{5, 7, 6}
	var linear int64
	for i, e := range extents {
		linear = linear*e + idx[i]
	}
	_ = linear
	offset := ((idx[0]*extents[1]+idx[1])*extents[2] + idx[2]) * 4
	got := indexFromOffset(offset, 4, extents)
	assert.Equal(t, idx, got)
}

func TestStructAndUnionAreSkipped(t *testing.T) {
	f := tracertest.New(8)
	v := &dwarf.Variable{Name: "s", TypeClass: dwarf.ClassStruct, ByteSize: 8}
	u := &dwarf.Variable{Name: "u", TypeClass: dwarf.ClassUnion, ByteSize: 8}
	ctx := NewContext([]*dwarf.Variable{v, u})
	Initialize(ctx, 0, f)
	assert.Nil(t, ctx.Vars[0].Value)
	assert.Nil(t, ctx.Vars[1].Value)
	assert.Empty(t, CheckChanges(ctx, 0, f))
}
