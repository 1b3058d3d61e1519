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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSleb128(t *testing.T) {
	cases := []struct {
		in []byte
		want int64
		n int
	}{
		{[]byte{0x00}, 0, 1},
		{[]byte{0x02}, 2, 1},
		{[]byte{0x7f}, -1, 1},
		{[]byte{0x9b, 0xf1, 0x59}, -624485, 3},
		{[]byte{0xe5, 0x8e, 0x26}, 624485, 3},
	}
	for _, c := range cases {
		got, n := sleb128(c.in)
		assert.Equal(t, c.want, got)
		assert.Equal(t, c.n, n)
	}
}

func TestEncodingFromDWARF(t *testing.T) {
	assert.Equal(t, EncodingSigned, encodingFromDWARF(dwAteSigned))
	assert.Equal(t, EncodingSigned, encodingFromDWARF(dwAteSignedChar))
	assert.Equal(t, EncodingUnsigned, encodingFromDWARF(dwAteUnsigned))
	assert.Equal(t, EncodingUnsigned, encodingFromDWARF(dwAteBoolean))
	assert.Equal(t, EncodingFloat, encodingFromDWARF(dwAteFloat))
	assert.Equal(t, EncodingUnknown, encodingFromDWARF(0xff))
}

func TestFunctionContains(t *testing.T) {
	fn := Function{LowPC: 0x1000, HighPC: 0x1010}
	assert.True(t, fn.Contains(0x1000))
	assert.True(t, fn.Contains(0x1010))
	assert.True(t, fn.Contains(0x1008))
	assert.False(t, fn.Contains(0x0fff))
	assert.False(t, fn.Contains(0x1011))
}

func TestFilterAllows(t *testing.T) {
	watch := Filter{Mode: FilterWatch, Names: map[string]bool{"a": true, "b": true}}
	assert.True(t, watch.allows("a"))
	assert.False(t, watch.allows("c"))

	ignore := Filter{Mode: FilterIgnore, Names: map[string]bool{"a": true}}
	assert.False(t, ignore.allows("a"))
	assert.True(t, ignore.allows("c"))

	none := Filter{Mode: FilterNone}
	assert.True(t, none.allows("anything"))
}

func TestVariableExtents(t *testing.T) {
	v := Variable{Dimensions: 3}
	v.DimExtents[0] = 10
	v.DimExtents[1] = 7
	v.DimExtents[2] = 6
	assert.Equal(t, []int64{10, 7, 6}, v.Extents())
}

func TestArchFor(t *testing.T) {
	assert.Equal(t, int64(6), archX86_64.basePointerReg)
	assert.Equal(t, int64(8), archX86_64.pointerWidth)
	assert.Equal(t, int64(5), archX86.basePointerReg)
	assert.Equal(t, int64(4), archX86.pointerWidth)
}
