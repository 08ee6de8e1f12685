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

import "testing"

func TestLayoutQuery(t *testing.T) {
	l := &Layout{Name: "Model", entities: []*Entity{
		{Type: LINE, Common: CommonData{Handle: Handle{Value: 1}}},
		{Type: ARC, Common: CommonData{Handle: Handle{Value: 2}}},
		{Type: LINE, Common: CommonData{Handle: Handle{Value: 3}}},
		{Type: CIRCLE, Common: CommonData{Handle: Handle{Value: 4}}},
	}}

	t.Run("star", func(t *testing.T) {
		got := l.Query("*")
		if len(got) != 4 {
			t.Fatalf("got %d entities, want 4", len(got))
		}
	})

	t.Run("single-type-preserves-order", func(t *testing.T) {
		got := l.Query("LINE")
		if len(got) != 2 {
			t.Fatalf("got %d entities, want 2", len(got))
		}
		if got[0].Handle().Value != 1 || got[1].Handle().Value != 3 {
			t.Errorf("order not preserved: %v", got)
		}
	})

	t.Run("multiple-types", func(t *testing.T) {
		got := l.Query("ARC CIRCLE")
		if len(got) != 2 {
			t.Fatalf("got %d entities, want 2", len(got))
		}
	})

	t.Run("unknown-type-yields-empty", func(t *testing.T) {
		got := l.Query("SPLINE")
		if len(got) != 0 {
			t.Errorf("got %d entities, want 0", len(got))
		}
	})

	t.Run("case-insensitive", func(t *testing.T) {
		got := l.Query("line")
		if len(got) != 2 {
			t.Errorf("got %d entities, want 2", len(got))
		}
	})
}

func TestLayoutCount(t *testing.T) {
	l := &Layout{entities: []*Entity{
		{Type: LINE}, {Type: LINE}, {Type: ARC},
	}}
	counts := l.Count()
	if counts[LINE] != 2 || counts[ARC] != 1 {
		t.Errorf("counts = %v", counts)
	}
}
