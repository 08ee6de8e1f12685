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
	"fmt"
)

// objectMap is the handle -> absolute-offset index built from the
// handles section's delta-encoded runs. Offsets are absolute into the
// logical AcDbObjects stream (or, for AC1015, the raw file).
type objectMap struct {
	offsets map[uint64]int64
	order   []uint64 // handle values in the order they were encountered
}

func newObjectMap() *objectMap {
	return &objectMap{offsets: make(map[uint64]int64)}
}

func (m *objectMap) add(handle uint64, offset int64) {
	if _, exists := m.offsets[handle]; !exists {
		m.order = append(m.order, handle)
	}
	m.offsets[handle] = offset
}

// lookup returns the absolute offset for handle, if present.
func (m *objectMap) lookup(h Handle) (int64, bool) {
	off, ok := m.offsets[h.Value]
	return off, ok
}

// iter returns (handle, offset) pairs in the order they were encountered,
// matching on-disk order.
func (m *objectMap) iter() []struct {
	Handle Handle
	Offset int64
} {
	out := make([]struct {
		Handle Handle
		Offset int64
	}, len(m.order))
	for i, h := range m.order {
		out[i] = struct {
			Handle Handle
			Offset int64
		}{Handle{Value: h}, m.offsets[h]}
	}
	return out
}

// decodeObjectMap parses the AcDb:Handles section (or, for AC1015, the
// raw object-map section named by the file header's locator table) into
// an objectMap. The section is a sequence of fixed-size subsections, each
// introduced by a big-endian 16-bit size (counting the size field itself)
// and terminated by a subsection whose size field reads exactly 2. Within
// a subsection, (handle, offset) pairs are delta-encoded as an unsigned MC
// handle delta followed by a signed MC offset delta, both relative to the
// running pair, and the subsection's last two bytes are a CRC-16 over
// everything preceding them.
func decodeObjectMap(buf []byte) (*objectMap, error) {
	om := newObjectMap()
	pos := 0
	for pos+2 <= len(buf) {
		size := binary.BigEndian.Uint16(buf[pos : pos+2])
		if size == 2 {
			break
		}
		if pos+int(size) > len(buf) {
			return nil, newError(CorruptHandles, int64(pos), fmt.Errorf("subsection size %d exceeds remaining buffer", size))
		}
		sub := buf[pos+2 : pos+int(size)]
		pos += int(size)
		if len(sub) < 2 {
			return nil, newError(CorruptHandles, int64(pos), fmt.Errorf("subsection too small for trailing CRC"))
		}
		body, footer := sub[:len(sub)-2], sub[len(sub)-2:]
		storedCRC := binary.BigEndian.Uint16(footer)
		// CRC is computed over the size field plus body, per the AC1015
		// object/page checksum convention of seeding from the section's
		// own bytes.
		sizeField := []byte{byte(size >> 8), byte(size)}
		computed := crc16(body, crc16(sizeField, 0xC0C1))
		if computed != storedCRC {
			return nil, newError(CorruptHandles, int64(pos), fmt.Errorf("subsection CRC mismatch"))
		}
		if err := decodeHandleRun(om, body); err != nil {
			return nil, err
		}
	}
	return om, nil
}

func decodeHandleRun(om *objectMap, body []byte) error {
	br := newBitReader(body, 0)
	runningHandle := int64(0)
	runningOffset := int64(0)
	for br.bytePos < len(body) {
		dh, err := br.UMC()
		if err != nil {
			return err
		}
		do, err := br.MC()
		if err != nil {
			return err
		}
		runningHandle += int64(dh)
		runningOffset += do
		om.add(uint64(runningHandle), runningOffset)
	}
	return nil
}
