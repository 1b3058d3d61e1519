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

package curated_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Theldus/PBD/curated"
)

const testError = "test error: %s"
const testErrorB = "test error B: %s"

func TestDuplicateErrors(t *testing.T) {
	e := curated.Errorf(testError, "foo")
	assert.Equal(t, "test error: foo", e.Error())

	// packing errors of the same pattern next to each other causes one of
	// them to be dropped
	f := curated.Errorf(testError, e)
	assert.Equal(t, "test error: foo", f.Error())
}

func TestIs(t *testing.T) {
	e := curated.Errorf(testError, "foo")
	assert.True(t, curated.Is(e, testError))
	assert.False(t, curated.Has(e, testErrorB))

	f := curated.Errorf(testErrorB, e)
	assert.False(t, curated.Is(f, testError))
	assert.True(t, curated.Is(f, testErrorB))
	assert.True(t, curated.Has(f, testError))
	assert.True(t, curated.Has(f, testErrorB))

	assert.True(t, curated.IsAny(e))
	assert.True(t, curated.IsAny(f))
}

func TestPlainErrors(t *testing.T) {
	e := fmt.Errorf("plain test error")
	assert.False(t, curated.IsAny(e))
	assert.False(t, curated.Has(e, testError))
}

func TestWrapping(t *testing.T) {
	a := 10
	e := curated.Errorf("error: value = %d", a)
	f := curated.Errorf("fatal: %v", e)

	assert.True(t, curated.Has(f, "error: value = %d"))
	assert.False(t, curated.Is(f, "error: value = %d"))
	assert.True(t, curated.Has(f, "fatal: %v"))
	assert.True(t, curated.Is(f, "fatal: %v"))

	assert.Equal(t, "fatal: error: value = 10", f.Error())
}

func TestNamedKinds(t *testing.T) {
	e := curated.Errorf(curated.FunctionNotFound, "main")
	assert.True(t, curated.Is(e, curated.FunctionNotFound))
	assert.False(t, curated.Is(e, curated.PieExecutable))
}
