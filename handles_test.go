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
	"testing"
)

func TestDecodeObjectMapSingleEntry(t *testing.T) {
	// One (Δhandle, Δoffset) = (1, 100) pair. The offset delta is signed
	// MC, so 100 needs a continuation byte to keep its bit 6 out of the
	// terminator's sign position.
	body := []byte{0x01, 0xE4, 0x00} // UMC(1), MC(100)

	sizeField := uint16(2 + len(body) + 2) // size counts itself + body + CRC
	sizeBytes := []byte{byte(sizeField >> 8), byte(sizeField)}
	crc := crc16(body, crc16(sizeBytes, 0xC0C1))

	var buf []byte
	buf = append(buf, sizeBytes...)
	buf = append(buf, body...)
	buf = append(buf, byte(crc>>8), byte(crc))
	// terminator subsection: size field == 2.
	buf = append(buf, 0x00, 0x02)

	om, err := decodeObjectMap(buf)
	if err != nil {
		t.Fatal(err)
	}
	off, ok := om.lookup(Handle{Value: 1})
	if !ok {
		t.Fatal("handle 1 not found")
	}
	if off != 100 {
		t.Errorf("offset = %d, want 100", off)
	}
}

func TestDecodeObjectMapCRCMismatch(t *testing.T) {
	body := []byte{0x01, 0xE4, 0x00}
	sizeField := uint16(2 + len(body) + 2)
	sizeBytes := []byte{byte(sizeField >> 8), byte(sizeField)}

	var buf []byte
	buf = append(buf, sizeBytes...)
	buf = append(buf, body...)
	buf = append(buf, 0x00, 0x00) // wrong CRC
	buf = append(buf, 0x00, 0x02)

	if _, err := decodeObjectMap(buf); err == nil {
		t.Fatal("expected a CRC mismatch error")
	}
}

func TestDecodeObjectMapDeltaAccumulates(t *testing.T) {
	// Two pairs in one subsection: (Δ1,Δ100) then (Δ2,Δ5), giving
	// absolute (handle=1,offset=100) and (handle=3,offset=105).
	body := []byte{0x01, 0xE4, 0x00, 0x02, 0x05}
	sizeField := uint16(2 + len(body) + 2)
	sizeBytes := []byte{byte(sizeField >> 8), byte(sizeField)}
	crc := crc16(body, crc16(sizeBytes, 0xC0C1))

	var buf []byte
	buf = append(buf, sizeBytes...)
	buf = append(buf, body...)
	buf = append(buf, byte(crc>>8), byte(crc))
	buf = append(buf, 0x00, 0x02)

	om, err := decodeObjectMap(buf)
	if err != nil {
		t.Fatal(err)
	}
	if off, ok := om.lookup(Handle{Value: 3}); !ok || off != 105 {
		t.Errorf("handle 3: off=%d ok=%v, want 105/true", off, ok)
	}
	if got := binary.BigEndian.Uint16(sizeBytes); got != sizeField {
		t.Fatalf("sanity check on sizeBytes failed: %d != %d", got, sizeField)
	}
}
