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

package tracer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrapOpcode(t *testing.T) {
	assert.Equal(t, byte(0xCC), byte(TrapOpcode))
}

func TestStatusValues(t *testing.T) {
	assert.NotEqual(t, Stopped, Exited)
}
