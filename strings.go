// seehuhn.de/go/dwg - a read-only decoder for the DWG CAD file format
// Copyright (C) 2021  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package dwg

import (
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// decodeCodepage converts AC1015/AC1018 T-field bytes to UTF-8, always
// decoding them as Windows-1252; the codepage value recorded in the file
// header is not consulted. DWG allows other
// single-byte codepages, but charmap.Windows1252 covers the overwhelming
// majority of real-world drawings and degrades gracefully (undefined code
// points become U+FFFD) rather than failing the decode.
func decodeCodepage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	// DWG T strings are NUL-terminated within their declared length for
	// some object types; trim a trailing NUL defensively.
	if raw[len(raw)-1] == 0 {
		raw = raw[:len(raw)-1]
	}
	out, err := charmap.Windows1252.NewDecoder().String(string(raw))
	if err != nil {
		return string(raw)
	}
	return out
}

// utf16ToUTF8 converts AC1021+ TU field units (little-endian UTF-16 code
// units, as already decoded by bitReader.RS) to a UTF-8 string.
func utf16ToUTF8(units []uint16) string {
	if len(units) > 0 && units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}
	runes := utf16.Decode(units)
	var b strings.Builder
	b.Grow(len(runes))
	for _, r := range runes {
		b.WriteRune(r)
	}
	return b.String()
}

// stripMTextControl strips the small set of MTEXT formatting control
// sequences (\P paragraph break, \~ non-breaking space, and {...} grouping)
// to produce the "text_plain" field of Entity.DXF. The
// raw Value field keeps the original control codes; this is a presentation
// helper only.
func stripMTextControl(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'P':
				b.WriteByte('\n')
				i++
				continue
			case '~':
				b.WriteByte(' ')
				i++
				continue
			}
		}
		if c == '{' || c == '}' {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
