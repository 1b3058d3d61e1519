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

//go:build linux && amd64

package tracer

import "syscall"

// wordSize is the pointer/GPR width on this architecture.
const wordSize = 8

func (p *Process) ReadPC() (uint64, error) {
	var regs syscall.PtraceRegs
	if err := syscall.PtraceGetRegs(p.pid, &regs); err != nil {
		return 0, err
	}
	return regs.Rip, nil
}

func (p *Process) WritePC(pc uint64) error {
	var regs syscall.PtraceRegs
	if err := syscall.PtraceGetRegs(p.pid, &regs); err != nil {
		return err
	}
	regs.Rip = pc
	return syscall.PtraceSetRegs(p.pid, &regs)
}

func (p *Process) ReadBP() (uint64, error) {
	var regs syscall.PtraceRegs
	if err := syscall.PtraceGetRegs(p.pid, &regs); err != nil {
		return 0, err
	}
	return regs.Rbp, nil
}

func (p *Process) readSP() (uint64, error) {
	var regs syscall.PtraceRegs
	if err := syscall.PtraceGetRegs(p.pid, &regs); err != nil {
		return 0, err
	}
	return regs.Rsp, nil
}
