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

package analysis

import (
	"github.com/Theldus/PBD/breakpoint"
	"github.com/Theldus/PBD/dwarf"
)

// candidateIdents returns every identifier that could be the left-most
// symbol an assignment-like expression mutates, descending through casts,
// binary/logical/comparison/comma composites, and both arms of a
// conditional.
func candidateIdents(e *Expr) []string {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ExprIdent:
		return []string{e.Name}
	case ExprCast:
		return candidateIdents(e.Operand)
	case ExprBinary, ExprComma:
		return candidateIdents(e.Left)
	case ExprConditional:
		return append(candidateIdents(e.Left), candidateIdents(e.Right)...)
	default:
		return nil
	}
}

func anyWatchable(names []string, syms map[string]Symbol) bool {
	for _, n := range names {
		if s, ok := syms[n]; ok && s.Watchable() {
			return true
		}
	}
	return false
}

// walkExpr recurses into every reachable subexpression, recording the line
// of any assignment-like expression whose left-most symbol is watchable,
// and unconditionally recording every function-call expression's line —
// a call may mutate any visible variable via aliasing, so under-approximating
// here would be unsafe.
func walkExpr(e *Expr, syms map[string]Symbol, lines map[int]bool) {
	if e == nil {
		return
	}
	switch e.Kind {
	case ExprAssign:
		if anyWatchable(candidateIdents(e.Operand), syms) {
			lines[e.Line] = true
		}
	case ExprCall:
		lines[e.Line] = true
	}
	walkExpr(e.Operand, syms, lines)
	walkExpr(e.Left, syms, lines)
	walkExpr(e.Right, syms, lines)
}

func walkStmt(s *Stmt, syms map[string]Symbol, lines map[int]bool) {
	switch s.Kind {
	case StmtExpr:
		walkExpr(s.Expr, syms, lines)
	case StmtDeclInit:
		if sym, ok := syms[s.DeclName]; ok && sym.Watchable() {
			lines[s.Line] = true
		}
		// the initialiser is walked regardless, for its own sub-assignments.
		walkExpr(s.DeclInit, syms, lines)
	}
}

// Filter narrows a function's full line table down to the lines the
// assignment walk found, plus the function's first instruction and the
// last instruction of its line range.
func Filter(stmts []Stmt, syms []Symbol, fn *dwarf.Function, lines []dwarf.Line) *breakpoint.Set {
	symMap := make(map[string]Symbol, len(syms))
	for _, s := range syms {
		symMap[s.Name] = s
	}

	wanted := make(map[int]bool)
	for i := range stmts {
		walkStmt(&stmts[i], symMap, wanted)
	}

	bps := breakpoint.NewSet()
	bps.CreateAt(fn.LowPC, 0)

	var lastAddr uint64
	var lastLine int
	haveLast := false

	for _, l := range lines {
		if !l.Kind.Has(dwarf.KindBeginStmt) || !fn.Contains(l.Addr) {
			continue
		}
		if !haveLast || l.Addr > lastAddr {
			lastAddr, lastLine, haveLast = l.Addr, l.LineNo, true
		}
		if wanted[l.LineNo] {
			bps.CreateAt(l.Addr, l.LineNo)
		}
	}
	if haveLast {
		bps.CreateAt(lastAddr, lastLine)
	}

	return bps
}
