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
)

// compileUnit is a single CU flattened into three indexes: an entry-by-
// offset map, document order, and a parent index, so array dimensions and
// scope nesting can be resolved without walking the bytes twice.
type compileUnit struct {
	root *dwarf.Entry

	// by is every entry in the CU keyed by its offset.
	by map[dwarf.Offset]*dwarf.Entry

	// order is every entry in document (depth-first, pre-order) order,
	// excluding the synthetic null terminators dwarf.Reader surfaces at
	// the end of each sibling list.
	order []*dwarf.Entry

	// parent maps an entry's offset to its immediate parent's offset. The
	// CU root has no entry in this map.
	parent map[dwarf.Offset]dwarf.Offset

	compDir string
	name string
}

// buildCompileUnits walks the entire.debug_info section once, grouping
// entries by the compile unit that owns them.
func buildCompileUnits(d *dwarf.Data) ([]*compileUnit, error) {
	var units []*compileUnit
	var cur *compileUnit
	var stack []dwarf.Offset

	r := d.Reader()
	for {
		entry, err := r.Next()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			break
		}

		if entry.Tag == 0 {
			// end of a sibling list: pop back to the parent scope.
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		if entry.Tag == dwarf.TagCompileUnit {
			cur = &compileUnit{
				root: entry,
				by: make(map[dwarf.Offset]*dwarf.Entry),
				parent: make(map[dwarf.Offset]dwarf.Offset),
			}
			if v, ok := entry.Val(dwarf.AttrCompDir).(string); ok {
				cur.compDir = v
			}
			if v, ok := entry.Val(dwarf.AttrName).(string); ok {
				cur.name = v
			}
			units = append(units, cur)
			stack = stack[:0]
		}

		if cur != nil {
			cur.by[entry.Offset] = entry
			cur.order = append(cur.order, entry)
			if len(stack) > 0 {
				cur.parent[entry.Offset] = stack[len(stack)-1]
			}
		}

		if entry.Children {
			stack = append(stack, entry.Offset)
		}
	}

	return units, nil
}

// descendsFrom reports whether candidate is offset's direct or indirect
// descendant within the compile unit.
func (cu *compileUnit) descendsFrom(candidate, offset dwarf.Offset) bool {
	for {
		p, ok := cu.parent[candidate]
		if !ok {
			return false
		}
		if p == offset {
			return true
		}
		candidate = p
	}
}

// ancestorTag reports whether any ancestor of off (in the same compile
// unit) carries tag.
func (cu *compileUnit) ancestorTag(off dwarf.Offset, tag dwarf.Tag) bool {
	for {
		p, ok := cu.parent[off]
		if !ok {
			return false
		}
		if e, ok := cu.by[p]; ok && e.Tag == tag {
			return true
		}
		off = p
	}
}

func attrString(e *dwarf.Entry, a dwarf.Attr) (string, bool) {
	v, ok := e.Val(a).(string)
	return v, ok
}

func attrInt64(e *dwarf.Entry, a dwarf.Attr) (int64, bool) {
	switch v := e.Val(a).(type) {
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	default:
		return 0, false
	}
}

func attrUint64(e *dwarf.Entry, a dwarf.Attr) (uint64, bool) {
	switch v := e.Val(a).(type) {
	case uint64:
		return v, true
	case int64:
		return uint64(v), true
	default:
		return 0, false
	}
}
