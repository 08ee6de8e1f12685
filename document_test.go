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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testDocument() *Document {
	line := &Entity{
		Type:    LINE,
		Common:  CommonData{Handle: Handle{Value: 0x10}},
		Payload: &Line{P0: Vec3{}, P1: Vec3{X: 10}, Extrusion: Vec3{Z: 1}},
	}
	arc := &Entity{
		Type:    ARC,
		Common:  CommonData{Handle: Handle{Value: 0x11}},
		Payload: &Arc{Radius: 5, StartAngle: 1, EndAngle: 2, Extrusion: Vec3{Z: 1}},
	}
	doc := &Document{
		Version:          AC1015,
		entitiesByHandle: map[uint64]*Entity{0x10: line, 0x11: arc},
		layouts: map[string]*Layout{
			"Model": {Name: "Model", entities: []*Entity{line, arc}},
		},
		layoutOrder: []string{"Model"},
		symbols:     newSymbolTable(),
	}
	doc.symbols.add(symbolRecord{Handle: Handle{Value: 0x20}, Name: "Walls"})
	return doc
}

func TestDocumentEntityByHandle(t *testing.T) {
	doc := testDocument()
	e, ok := doc.EntityByHandle(Handle{Value: 0x11})
	if !ok {
		t.Fatal("handle 0x11 not found")
	}
	if e.Type != ARC {
		t.Errorf("type = %s, want ARC", e.Type)
	}
	if _, ok := doc.EntityByHandle(Handle{Value: 0x99}); ok {
		t.Error("unexpected hit for an unknown handle")
	}
}

func TestDocumentHandles(t *testing.T) {
	doc := testDocument()
	handles := doc.Handles()
	if len(handles) != 2 {
		t.Fatalf("got %d handles, want 2", len(handles))
	}
	seen := map[uint64]bool{}
	for _, h := range handles {
		if seen[h] {
			t.Errorf("duplicate handle %X", h)
		}
		seen[h] = true
	}
	if !seen[0x10] || !seen[0x11] {
		t.Errorf("handles = %v, want {0x10, 0x11}", handles)
	}
}

func TestResolveLayerName(t *testing.T) {
	doc := testDocument()
	name, ok := doc.ResolveLayerName(Handle{Value: 0x20})
	if !ok || name != "Walls" {
		t.Errorf("got (%q, %v), want (\"Walls\", true)", name, ok)
	}
	if _, ok := doc.ResolveLayerName(ZeroHandle); ok {
		t.Error("zero handle should not resolve")
	}
	if _, ok := doc.ResolveLayerName(Handle{Value: 0x99}); ok {
		t.Error("unknown handle should not resolve")
	}
}

func TestFromCacheRoundTrip(t *testing.T) {
	doc := testDocument()
	cd := &CachedDocument{
		Version:      doc.Version,
		SourceDigest: doc.SourceDigest,
		Layouts:      map[string][]*Entity{"Model": doc.Modelspace().Entities()},
		LayoutOrder:  doc.LayoutNames(),
	}
	rebuilt := FromCache(cd)
	if rebuilt.Version != doc.Version {
		t.Errorf("version = %s, want %s", rebuilt.Version, doc.Version)
	}
	want := doc.Modelspace().Entities()
	got := rebuilt.Modelspace().Entities()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entities mismatch (-want +got):\n%s", diff)
	}
	if _, ok := rebuilt.EntityByHandle(Handle{Value: 0x10}); !ok {
		t.Error("handle index not rebuilt from cache")
	}
	// The symbol table is not persisted; resolution degrades to ok=false.
	if _, ok := rebuilt.ResolveLayerName(Handle{Value: 0x20}); ok {
		t.Error("cached document should not resolve symbol names")
	}
}
