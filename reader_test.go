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
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// buildMinimalAC1015File assembles a complete, self-consistent R2000 file
// containing a single LINE from (0,0,0) to (10,0,0): magic, section
// locator table pointing at a handle-map section, the object itself, and
// the handle map referencing it.
func buildMinimalAC1015File(t *testing.T) []byte {
	t.Helper()
	obj := buildAC1015LineObject()

	const headerEnd = 0x15 + 4 + 9 + 6 // locator count, one entry, sentinel
	objOffset := headerEnd
	handlesOffset := objOffset + len(obj)

	// handle map: one subsection holding (handle 0x42 -> objOffset), both
	// deltas single-byte, then the size==2 terminator.
	body := []byte{0x42, byte(objOffset)}
	sizeField := uint16(2 + len(body) + 2)
	sizeBytes := []byte{byte(sizeField >> 8), byte(sizeField)}
	crc := crc16(body, crc16(sizeBytes, 0xC0C1))
	var handles []byte
	handles = append(handles, sizeBytes...)
	handles = append(handles, body...)
	handles = append(handles, byte(crc>>8), byte(crc))
	handles = append(handles, 0x00, 0x02)

	var buf []byte
	buf = append(buf, "AC1015"...)
	for len(buf) < 0x15 {
		buf = append(buf, 0)
	}
	buf = binary.LittleEndian.AppendUint32(buf, 1) // one locator record
	buf = append(buf, locObjectMap)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(handlesOffset))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(handles)))
	buf = append(buf, ac1015Sentinel...)
	if len(buf) != headerEnd {
		t.Fatalf("header layout drifted: end = %#x, want %#x", len(buf), headerEnd)
	}
	buf = append(buf, obj...)
	buf = append(buf, handles...)
	return buf
}

func TestDecodeMinimalAC1015File(t *testing.T) {
	buf := buildMinimalAC1015File(t)
	doc, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version != AC1015 {
		t.Errorf("version = %s, want AC1015", doc.Version)
	}

	lines := doc.Modelspace().Query("LINE")
	if len(lines) != 1 {
		t.Fatalf("got %d LINE entities, want 1", len(lines))
	}
	dxf := lines[0].DXF()
	if dxf["start"] != (Vec3{}) {
		t.Errorf("start = %v, want (0,0,0)", dxf["start"])
	}
	if dxf["end"] != (Vec3{X: 10}) {
		t.Errorf("end = %v, want (10,0,0)", dxf["end"])
	}
	if lines[0].DXFType() != "LINE" {
		t.Errorf("dxftype = %q, want LINE", lines[0].DXFType())
	}

	if _, ok := doc.EntityByHandle(Handle{Value: 0x42}); !ok {
		t.Error("handle 42 missing from the document index")
	}
	if got := doc.Modelspace().Query("ARC"); len(got) != 0 {
		t.Errorf("ARC query returned %d entities, want 0", len(got))
	}
}

func TestDecodeIsIdempotent(t *testing.T) {
	buf := buildMinimalAC1015File(t)
	first, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if first.SourceDigest != second.SourceDigest {
		t.Error("source digests differ across decodes of the same bytes")
	}
	diff := cmp.Diff(first.Modelspace().Entities(), second.Modelspace().Entities())
	if diff != "" {
		t.Errorf("decodes of identical bytes differ (-first +second):\n%s", diff)
	}
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	_, err := Decode([]byte("AC1012 not a supported drawing"))
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != UnsupportedVersion {
		t.Fatalf("err = %v, want UnsupportedVersion", err)
	}
}

func TestDecodeTruncatedFile(t *testing.T) {
	buf := buildMinimalAC1015File(t)
	_, err := Decode(buf[:len(buf)-4]) // lose the handle map's tail
	if err == nil {
		t.Fatal("expected an error for a truncated file")
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %T, want *DecodeError", err)
	}
}
