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
	"debug/dwarf"
	"io"

	"github.com/Theldus/PBD/curated"
)

// Lines iterates the compile unit's line number program, keeping every row
// whose address falls inside fn's instruction range. The result is totally
// ordered by Addr; duplicate line numbers are kept (the caller's
// "avoid-equal-statements" policy, if enabled, is applied by the
// breakpoint package, not here).
func (in *Info) Lines(fn *Function) ([]Line, error) {
	cu := in.cuFor(fn.die)
	if cu == nil {
		return nil, curated.Errorf(curated.FunctionNotFound, fn.Name)
	}

	lr, err := in.data.LineReader(cu.root)
	if err != nil {
		return nil, err
	}
	if lr == nil {
		return nil, curated.Errorf(curated.FunctionNotFound, fn.Name)
	}

	var out []Line
	var entry dwarf.LineEntry
	for {
		if err := lr.Next(&entry); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		if entry.Address < fn.LowPC || entry.Address > fn.HighPC {
			continue
		}

		var kind LineKind
		if entry.IsStmt {
			kind |= KindBeginStmt
		}
		if entry.EndSequence {
			kind |= KindEndSequence
		}
		if entry.BasicBlock {
			kind |= KindBlock
		}

		out = append(out, Line{Addr: entry.Address, LineNo: entry.Line, Kind: kind})
	}

	return out, nil
}
