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

// Package tracer spawns and drives a tracee via ptrace. Register access
// (ReadPC/WritePC/ReadBP) is the thin per-architecture trait: see
// tracer_linux_amd64.go and tracer_linux_386.go for the two concrete
// register layouts. Everything else — waiting, stepping, continuing, and
// reading/writing memory — is architecture-independent and lives in
// tracer_linux.go.
package tracer

// TrapOpcode is the single-byte software breakpoint instruction on both
// x86 and x86-64 (INT3).
const TrapOpcode = 0xCC

// Status is the outcome of a Wait call.
type Status int

const (
	Stopped Status = iota
	Exited
)

// Tracer is the contract session.Loop and breakpoint.Set drive the tracee
// through. It is satisfied by *Process on Linux, and by a fake
// implementation in tracer/tracertest for tests that run on any host.
type Tracer interface {
	Pid() int
	Wait() (Status, error)
	ExitCode() int
	Continue() error
	SingleStep() error

	ReadPC() (uint64, error)
	WritePC(uint64) error
	ReadBP() (uint64, error)
	ReadReturnAddress() (uint64, error)

	ReadByte(addr uint64) (byte, error)
	WriteByte(addr uint64, b byte) error
	ReadWord(addr uint64) (uint64, error)
	WriteWord(addr uint64, v uint64) error
	ReadBytes(addr uint64, n int) ([]byte, error)

	Kill() error
}
