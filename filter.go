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

import "strings"

// Query implements the public query language: type_spec is either "*" or
// a whitespace-separated list drawn from the supported entity type names.
// Filtering preserves the layout's source order.
func (l *Layout) Query(typeSpec string) []*Entity {
	typeSpec = strings.TrimSpace(typeSpec)
	if typeSpec == "" || typeSpec == "*" {
		return append([]*Entity(nil), l.entities...)
	}
	wanted := make(map[EntityType]bool)
	for _, tok := range strings.Fields(typeSpec) {
		if et, ok := supportedTypes[strings.ToUpper(tok)]; ok {
			wanted[et] = true
		}
	}
	out := make([]*Entity, 0, len(l.entities))
	for _, e := range l.entities {
		if wanted[e.Type] {
			out = append(out, e)
		}
	}
	return out
}

// Count returns, for diagnostics (the CLI's inspect summary), the number
// of entities of each type in the layout.
func (l *Layout) Count() map[EntityType]int {
	counts := make(map[EntityType]int)
	for _, e := range l.entities {
		counts[e.Type]++
	}
	return counts
}
