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

// Package output formats and emits the before/after notification lines a
// trace produces, through the Null/Default/Detailed writer variants.
package output

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"unicode"

	"github.com/Theldus/PBD/dwarf"
)

// FormatValue renders raw bytes according to v's encoding and width:
// decimal for signed/unsigned of width 1/2/4/8, floating-point for 4/8/16,
// hex for pointers of width 4/8, with 1-byte values also
// showing the printable character.
func FormatValue(v *dwarf.Variable, raw []byte) string {
	switch v.Encoding {
	case dwarf.EncodingPointer:
		return formatPointer(raw)
	case dwarf.EncodingFloat:
		return formatFloat(raw)
	case dwarf.EncodingSigned:
		s := strconv.FormatInt(signedOf(raw), 10)
		if len(raw) == 1 {
			return s + charSuffix(raw[0])
		}
		return s
	default: // Unsigned, Unknown (enums with no DWARF encoding attribute)
		s := strconv.FormatUint(unsignedOf(raw), 10)
		if len(raw) == 1 {
			return s + charSuffix(raw[0])
		}
		return s
	}
}

func charSuffix(b byte) string {
	if unicode.IsPrint(rune(b)) {
		return fmt.Sprintf(" (%q)", rune(b))
	}
	return ""
}

func unsignedOf(raw []byte) uint64 {
	switch len(raw) {
	case 1:
		return uint64(raw[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(raw))
	case 4:
		return uint64(binary.LittleEndian.Uint32(raw))
	default:
		return binary.LittleEndian.Uint64(raw[:8])
	}
}

func signedOf(raw []byte) int64 {
	switch len(raw) {
	case 1:
		return int64(int8(raw[0]))
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(raw)))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(raw)))
	default:
		return int64(binary.LittleEndian.Uint64(raw[:8]))
	}
}

func formatPointer(raw []byte) string {
	switch len(raw) {
	case 4:
		return fmt.Sprintf("0x%08x", binary.LittleEndian.Uint32(raw))
	default:
		return fmt.Sprintf("0x%016x", binary.LittleEndian.Uint64(raw[:8]))
	}
}

func formatFloat(raw []byte) string {
	switch len(raw) {
	case 4:
		return strconv.FormatFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(raw))), 'g', -1, 32)
	case 8:
		return strconv.FormatFloat(math.Float64frombits(binary.LittleEndian.Uint64(raw)), 'g', -1, 64)
	default:
		return strconv.FormatFloat(decodeLongDouble(raw), 'g', -1, 64)
	}
}

// decodeLongDouble interprets a 16-byte buffer as an x86 80-bit extended
// precision float (10 significant bytes, 6 bytes of padding): a 64-bit
// mantissa with an explicit integer bit, followed by a 15-bit biased
// exponent and a sign bit.
func decodeLongDouble(raw []byte) float64 {
	mantissa := binary.LittleEndian.Uint64(raw[0:8])
	se := binary.LittleEndian.Uint16(raw[8:10])
	sign := se >> 15
	exp := int(se & 0x7fff)

	if exp == 0 && mantissa == 0 {
		return 0
	}

	val := float64(mantissa) / float64(uint64(1)<<63) * math.Pow(2, float64(exp-16383))
	if sign == 1 {
		val = -val
	}
	return val
}
