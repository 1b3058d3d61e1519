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

package curated

// Named error kinds. Each is used as the pattern argument to Errorf() and
// can be tested for later with Is()/Has(), regardless of the values the
// error was formatted with.
//
// Pre-flight kinds (FunctionNotFound, UnsupportedLanguage, PieExecutable,
// NoFramePointer, ConflictingFlags) are fatal: the tracee is never spawned.
// Per-variable kinds (UnsupportedLocation, UnsupportedVariableSize) are
// recovered by the caller, which drops or skips that variable.
// MemoryAccessFailed is recovered the same way for a variable read and is
// fatal when arming breakpoints. TraceeGone sits in between: it is reported
// as a warning and does not force a non-zero exit code on its own.
// AnalysisUnavailable is only raised when --static-analysis was requested,
// and is then fatal.
const (
	FunctionNotFound = "function %q not found"
	UnsupportedLanguage = "unsupported source language %q"
	PieExecutable = "%s is a position-independent executable, which is not supported"
	NoFramePointer = "%s was compiled without a frame pointer; recompile without -fomit-frame-pointer"
	UnsupportedLocation = "variable %q has an unsupported DWARF location"
	UnsupportedVariableSize = "variable %q has unsupported size %d"
	TraceeGone = "tracee %d is gone"
	MemoryAccessFailed = "memory access failed at %#x: %v"
	AnalysisUnavailable = "static analysis unavailable: %v"
	ConflictingFlags = "conflicting flags: %s"
)
