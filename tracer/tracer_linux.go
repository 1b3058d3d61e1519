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

//go:build linux

package tracer

import (
	"encoding/binary"
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/Theldus/PBD/curated"
)

// Process is a tracee spawned and driven by this package. All of its ptrace
// calls must be issued from the same OS thread that spawned it, so the
// goroutine that owns a Process must call runtime.LockOSThread(); cmd/pbd
// does this before calling Spawn.
type Process struct {
	pid int
	proc *os.Process
	exitCode int
}

// Spawn forks and execs file with argv, requesting to be traced before the
// exec so the very first instruction (the dynamic loader's entry point, or
// file's own entry point for a static binary) stops the child with SIGTRAP.
func Spawn(file string, argv []string) (*Process, error) {
	allArgv := append([]string{file}, argv...)
	proc, err := os.StartProcess(file, allArgv, &os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
		Sys: &syscall.SysProcAttr{Ptrace: true},
	})
	if err != nil {
		return nil, err
	}
	return &Process{pid: proc.Pid, proc: proc}, nil
}

func (p *Process) Pid() int { return p.pid }

// Wait blocks until the tracee's state changes.
func (p *Process) Wait() (Status, error) {
	var ws syscall.WaitStatus
	_, err := syscall.Wait4(p.pid, &ws, 0, nil)
	if err != nil {
		return Stopped, err
	}
	if ws.Exited() || ws.Signaled() {
		p.exitCode = ws.ExitStatus()
		return Exited, nil
	}
	return Stopped, nil
}

// ExitCode is only meaningful after Wait has returned Exited.
func (p *Process) ExitCode() int { return p.exitCode }

func (p *Process) Continue() error { return syscall.PtraceCont(p.pid, 0) }
func (p *Process) SingleStep() error { return syscall.PtraceSingleStep(p.pid) }
func (p *Process) Kill() error { return syscall.Kill(p.pid, syscall.SIGKILL) }

func (p *Process) ReadByte(addr uint64) (byte, error) {
	var buf [1]byte
	if _, err := syscall.PtracePeekData(p.pid, uintptr(addr), buf[:]); err != nil {
		return 0, curated.Errorf(curated.MemoryAccessFailed, addr, err)
	}
	return buf[0], nil
}

func (p *Process) WriteByte(addr uint64, b byte) error {
	buf := [1]byte{b}
	if _, err := syscall.PtracePokeData(p.pid, uintptr(addr), buf[:]); err != nil {
		return curated.Errorf(curated.MemoryAccessFailed, addr, err)
	}
	return nil
}

// ReadWord reads one machine word with a single read of wordSize bytes (4
// on x86, 8 on x86-64), little-endian. On x86 only those 4 bytes are read,
// so the upper 32 bits of the result are always zero.
func (p *Process) ReadWord(addr uint64) (uint64, error) {
	b, err := p.ReadBytes(addr, wordSize)
	if err != nil {
		return 0, err
	}
	if wordSize == 8 {
		return binary.LittleEndian.Uint64(b), nil
	}
	return uint64(binary.LittleEndian.Uint32(b)), nil
}

func (p *Process) WriteWord(addr uint64, v uint64) error {
	b := make([]byte, wordSize)
	if wordSize == 8 {
		binary.LittleEndian.PutUint64(b, v)
	} else {
		binary.LittleEndian.PutUint32(b, uint32(v))
	}
	if _, err := syscall.PtracePokeData(p.pid, uintptr(addr), b); err != nil {
		return curated.Errorf(curated.MemoryAccessFailed, addr, err)
	}
	return nil
}

// ReadReturnAddress dereferences the word at the current stack pointer,
// valid only immediately after the function's first instruction has
// stopped, before the callee disturbs the stack.
func (p *Process) ReadReturnAddress() (uint64, error) {
	sp, err := p.readSP()
	if err != nil {
		return 0, err
	}
	return p.ReadWord(sp)
}

// ReadBytes fetches an arbitrary span, preferring the kernel's
// cross-process bulk read (process_vm_readv) and falling back to the
// word-at-a-time ptrace path when it is refused (older kernels, Yama
// ptrace_scope, or a tracee in a different user namespace).
func (p *Process) ReadBytes(addr uint64, n int) ([]byte, error) {
	buf := make([]byte, n)

	if n > 0 {
		local := []unix.Iovec{{Base: &buf[0]}}
		local[0].SetLen(n)
		remote := []unix.Iovec{{Base: (*byte)(unsafe.Pointer(uintptr(addr)))}}
		remote[0].SetLen(n)

		if _, err := unix.ProcessVMReadv(p.pid, local, remote, 0); err == nil {
			return buf, nil
		}
	}

	if _, err := syscall.PtracePeekData(p.pid, uintptr(addr), buf); err != nil {
		return nil, curated.Errorf(curated.MemoryAccessFailed, addr, err)
	}
	return buf, nil
}
