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

package logger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Theldus/PBD/internal/logger"
)

func TestLoggerTailAndWrite(t *testing.T) {
	logger.Reset(&bytes.Buffer{}, false)
	defer logger.Clear()

	var buf bytes.Buffer
	logger.Write(&buf)
	assert.Equal(t, "", buf.String())

	logger.Log("test", "this is a test")
	buf.Reset()
	logger.Write(&buf)
	assert.Equal(t, "test: this is a test\n", buf.String())

	logger.Log("test2", "this is another test")
	buf.Reset()
	logger.Write(&buf)
	assert.Equal(t, "test: this is a test\ntest2: this is another test\n", buf.String())

	buf.Reset()
	logger.Tail(&buf, 100)
	assert.Equal(t, "test: this is a test\ntest2: this is another test\n", buf.String())

	buf.Reset()
	logger.Tail(&buf, 1)
	assert.Equal(t, "test2: this is another test\n", buf.String())

	buf.Reset()
	logger.Tail(&buf, 0)
	assert.Equal(t, "", buf.String())
}

func TestLoggerLogf(t *testing.T) {
	logger.Reset(&bytes.Buffer{}, false)
	defer logger.Clear()

	logger.Logf("variable", "dropped %q: %v", "counter", "unsupported size 3")

	var buf bytes.Buffer
	logger.Write(&buf)
	assert.Equal(t, "variable: dropped \"counter\": unsupported size 3\n", buf.String())
}
