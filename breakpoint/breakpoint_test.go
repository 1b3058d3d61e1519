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

package breakpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Theldus/PBD/dwarf"
	"github.com/Theldus/PBD/tracer"
	"github.com/Theldus/PBD/tracer/tracertest"
)

func TestCreateAtIsIdempotent(t *testing.T) {
	s := NewSet()
	bp1 := s.CreateAt(0x1000, 5)
	bp2 := s.CreateAt(0x1000, 9)
	assert.Same(t, bp1, bp2)
	assert.Equal(t, 5, bp1.LineNo) // first call wins
	assert.Equal(t, 1, s.Len())
}

func TestFindUsesExactAddress(t *testing.T) {
	s := NewSet()
	s.CreateAt(0x2000, 3)

	bp, ok := s.Find(0x2000)
	require.True(t, ok)
	assert.Equal(t, 3, bp.LineNo)

	_, ok = s.Find(0x2001)
	assert.False(t, ok)
}

func TestBuildLineBreakpointsAlwaysIncludesEntry(t *testing.T) {
	fn := &dwarf.Function{LowPC: 0x400, HighPC: 0x460}
	lines := []dwarf.Line{
		{Addr: 0x410, LineNo: 10, Kind: dwarf.KindBeginStmt},
		{Addr: 0x420, LineNo: 11, Kind: dwarf.KindBeginStmt},
		{Addr: 0x500, LineNo: 99, Kind: dwarf.KindBeginStmt}, // outside fn, dropped
		{Addr: 0x430, LineNo: 11, Kind: dwarf.KindBeginStmt}, // duplicate of line 11
	}

	s := BuildLineBreakpoints(fn, lines, false)
	assert.Equal(t, 4, s.Len()) // entry + 0x410 + 0x420 + 0x430
	_, ok := s.Find(0x400)
	assert.True(t, ok)
	_, ok = s.Find(0x500)
	assert.False(t, ok)

	sAvoid := BuildLineBreakpoints(fn, lines, true)
	assert.Equal(t, 3, sAvoid.Len()) // entry + 0x410 + 0x420, 0x430 collapsed
	_, ok = sAvoid.Find(0x430)
	assert.False(t, ok)
}

func TestArmAllStashesOriginalByteAndPlantsTrap(t *testing.T) {
	f := tracertest.New(8)
	f.Mem[0x1000] = []byte{0x55, 0x48, 0x89, 0xe5}

	s := NewSet()
	s.CreateAt(0x1000, 1)
	require.NoError(t, s.ArmAll(f))

	b, err := f.ReadByte(0x1000)
	require.NoError(t, err)
	assert.Equal(t, byte(tracer.TrapOpcode), b)

	bp, _ := s.Find(0x1000)
	assert.Equal(t, byte(0x55), bp.OriginalByte)
}

func TestStepThroughRestoresTrapAfterSingleStep(t *testing.T) {
	f := tracertest.New(8)
	f.Mem[0x1000] = []byte{0x55}

	s := NewSet()
	s.CreateAt(0x1000, 1)
	require.NoError(t, s.ArmAll(f))

	f.PC = 0x1001 // INT3 already advanced PC past itself
	bp, _ := s.Find(0x1000)
	require.NoError(t, StepThrough(f, bp))

	b, err := f.ReadByte(0x1000)
	require.NoError(t, err)
	assert.Equal(t, byte(tracer.TrapOpcode), b)
}

func TestDisarmAllRestoresOriginalBytes(t *testing.T) {
	f := tracertest.New(8)
	f.Mem[0x1000] = []byte{0x90}

	s := NewSet()
	s.CreateAt(0x1000, 1)
	require.NoError(t, s.ArmAll(f))
	require.NoError(t, s.DisarmAll(f))

	b, err := f.ReadByte(0x1000)
	require.NoError(t, err)
	assert.Equal(t, byte(0x90), b)
}
