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
	"math"
	"testing"
)

// bitWriter is the test-side mirror of bitReader: it packs values MSB-first
// so synthetic objects can be composed without hand-computing bit constants.
type bitWriter struct {
	buf   []byte
	nbits int
}

func (w *bitWriter) writeBits(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		bit := byte(v>>uint(i)) & 1
		if w.nbits%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		w.buf[len(w.buf)-1] |= bit << (7 - uint(w.nbits%8))
		w.nbits++
	}
}

func (w *bitWriter) writeBD(v float64) {
	switch v {
	case 0:
		w.writeBits(2, 2)
	case 1:
		w.writeBits(1, 2)
	default:
		w.writeBits(0, 2)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		for _, x := range b {
			w.writeBits(uint64(x), 8)
		}
	}
}

func (w *bitWriter) writeH(code byte, value []byte) {
	w.writeBits(uint64(code), 4)
	w.writeBits(uint64(len(value)), 4)
	for _, x := range value {
		w.writeBits(uint64(x), 8)
	}
}

// buildAC1015LineObject composes a complete on-disk object slot for an
// AC1015 LINE from (0,0,0) to (10,0,0) on layer handle 0x11: MS size
// prefix, type code, common entity header, LINE fields, trailing CRC.
func buildAC1015LineObject() []byte {
	w := &bitWriter{}
	w.writeBits(1, 2) // object type BS, tag 01 (8-bit raw)
	w.writeBits(typeLineFixed, 8)

	w.writeH(HandleAbsolute, []byte{0x42}) // object handle
	w.writeBits(2, 2)                      // xdata size BS = 0
	w.writeBits(0, 1)                      // no graphics block
	w.writeBits(2, 2)                      // entity mode
	w.writeBits(2, 2)                      // num reactors BL = 0
	w.writeBits(1, 1)                      // no xdict
	w.writeBits(0, 1)                      // plot style flag
	w.writeBits(0, 1)                      // layer flag
	w.writeBits(0, 2)                      // linetype flag (by layer)
	w.writeBits(0, 1)                      // invisible
	w.writeBits(2, 2)                      // color CMC, index BS = 0
	w.writeBits(1, 2)                      // ltscale BD = 1.0
	w.writeBits(0, 1)                      // linetype scale flag
	w.writeBits(0, 1)                      // plot style name flag
	w.writeBits(0, 1)                      // material flag
	w.writeBits(0, 1)                      // shadow flag
	w.writeH(HandleSoftPointer, nil)       // owner
	w.writeH(HandleHardPointer, []byte{0x11}) // layer

	w.writeBits(1, 1) // z coordinates are zero
	w.writeBD(0)      // p0.x
	w.writeBD(10)     // p1.x
	w.writeBD(0)      // p0.y
	w.writeBD(0)      // p1.y
	w.writeBits(0, 1) // no thickness
	w.writeBits(0, 1) // default extrusion

	data := w.buf
	out := []byte{byte(len(data)), byte(len(data) >> 8)} // MS size prefix
	out = append(out, data...)
	crc := crc16(data, 0xC0C1)
	out = append(out, byte(crc), byte(crc>>8))
	return out
}

func TestDispatchLineObject(t *testing.T) {
	obj := buildAC1015LineObject()
	res := dispatchObject(obj, 0, Handle{Value: 0x42}, AC1015, nil)
	if res.Kind != kindEntity || res.Entity == nil {
		t.Fatalf("dispatch did not produce an entity: %+v", res)
	}
	e := res.Entity
	if len(e.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", e.Warnings)
	}
	if e.Type != LINE {
		t.Fatalf("type = %s, want LINE", e.Type)
	}
	line, ok := e.Payload.(*Line)
	if !ok {
		t.Fatalf("payload is %T, want *Line", e.Payload)
	}
	if line.P0 != (Vec3{}) || line.P1 != (Vec3{X: 10}) {
		t.Errorf("geometry = %v -> %v, want (0,0,0) -> (10,0,0)", line.P0, line.P1)
	}
	if line.Extrusion != (Vec3{Z: 1}) {
		t.Errorf("extrusion = %v, want default (0,0,1)", line.Extrusion)
	}
	if e.Common.Handle.Value != 0x42 {
		t.Errorf("handle = %X, want 42", e.Common.Handle.Value)
	}
	if e.Common.LayerHandle.Value != 0x11 {
		t.Errorf("layer handle = %X, want 11", e.Common.LayerHandle.Value)
	}
	if e.Common.LinetypeScale != 1.0 {
		t.Errorf("ltscale = %v, want 1.0", e.Common.LinetypeScale)
	}
}

func TestDispatchUnsupportedType(t *testing.T) {
	w := &bitWriter{}
	w.writeBits(1, 2)
	w.writeBits(244, 8) // an unassigned fixed type code
	data := w.buf
	obj := []byte{byte(len(data)), byte(len(data) >> 8)}
	obj = append(obj, data...)
	crc := crc16(data, 0xC0C1)
	obj = append(obj, byte(crc), byte(crc>>8))

	res := dispatchObject(obj, 0, Handle{Value: 7}, AC1015, nil)
	if res.Entity == nil || res.Entity.Type != UNSUPPORTED {
		t.Fatalf("expected an UNSUPPORTED placeholder, got %+v", res.Entity)
	}
}

func TestClassifyClassCode(t *testing.T) {
	classes := map[uint16]classDef{
		510: {ClassNum: 510, DXFName: "LWPOLYLINE"},
		511: {ClassNum: 511, DXFName: "WIPEOUT"},
	}
	if kind, et := classify(510, classes); kind != kindEntity || et != LWPOLYLINE {
		t.Errorf("classify(510) = %v, %s", kind, et)
	}
	if _, et := classify(511, classes); et != UNSUPPORTED {
		t.Errorf("classify(511) = %s, want UNSUPPORTED", et)
	}
	if _, et := classify(999, classes); et != UNSUPPORTED {
		t.Errorf("classify(999) = %s, want UNSUPPORTED", et)
	}
}
