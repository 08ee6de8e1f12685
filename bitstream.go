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
)

// bitReader operates on top of a byte buffer with a bit cursor
// (byteIndex, bitInByte ∈ 0..7), exposing the DWG typed-bit encodings:
// B, BB, 3B, BS, BL, BD, MC, MS, CMC, H, T/TU, 3BD/2BD, BE, BT, and the raw
// RC/RS/RL/RD forms. Reads fail with BitUnderflow at buffer end. The cursor
// advances monotonically within one object parse; callers that need to
// rewind must save and restore (bytePos, bitPos) explicitly.
type bitReader struct {
	buf     []byte
	bytePos int
	bitPos  int // 0..7, number of bits already consumed from buf[bytePos]
	base    int64 // absolute file offset of buf[0], for error reporting
}

func newBitReader(buf []byte, base int64) *bitReader {
	return &bitReader{buf: buf, base: base}
}

// offset returns the absolute byte offset of the cursor in the underlying
// file (the byte holding the next unread bit), for error messages.
func (r *bitReader) offset() int64 {
	return r.base + int64(r.bytePos)
}

// mark/reset let a parser peek ahead and rewind explicitly.
type bitMark struct {
	bytePos, bitPos int
}

func (r *bitReader) mark() bitMark { return bitMark{r.bytePos, r.bitPos} }
func (r *bitReader) reset(m bitMark) {
	r.bytePos, r.bitPos = m.bytePos, m.bitPos
}

// alignByte advances to the next byte boundary, discarding any partial bits,
// as needed before a raw handle substream (AC1021+).
func (r *bitReader) alignByte() {
	if r.bitPos != 0 {
		r.bitPos = 0
		r.bytePos++
	}
}

// readBits reads n (<= 64) bits MSB-first as a single unsigned integer.
func (r *bitReader) readBits(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	var result uint64
	remaining := n
	for remaining > 0 {
		if r.bytePos >= len(r.buf) {
			return 0, newError(BitUnderflow, r.offset(), nil)
		}
		avail := 8 - r.bitPos
		take := remaining
		if take > avail {
			take = avail
		}
		shift := avail - take
		mask := byte(1<<take - 1)
		bits := (r.buf[r.bytePos] >> shift) & mask
		result = result<<take | uint64(bits)
		r.bitPos += take
		remaining -= take
		if r.bitPos == 8 {
			r.bitPos = 0
			r.bytePos++
		}
	}
	return result, nil
}

// rawBytes reads n whole bytes (bit-aligned or not) preserving their
// original byte values, for the little-endian raw fields (RC/RS/RL/RD and
// the raw halves of BS/BL/BD).
func (r *bitReader) rawBytes(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := r.readBits(8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(b)
	}
	return out, nil
}

// B reads one bit as a bool.
func (r *bitReader) B() (bool, error) {
	v, err := r.readBits(1)
	return v != 0, err
}

// BB reads a 2-bit value.
func (r *bitReader) BB() (uint8, error) {
	v, err := r.readBits(2)
	return uint8(v), err
}

// threeB reads the 3-bit variable-length selector: 0 -> 0b0, 1 -> 0b10,
// 2 -> 0b110, 3 -> 0b111.
func (r *bitReader) threeB() (uint8, error) {
	b0, err := r.readBits(1)
	if err != nil {
		return 0, err
	}
	if b0 == 0 {
		return 0, nil
	}
	b1, err := r.readBits(1)
	if err != nil {
		return 0, err
	}
	if b1 == 0 {
		return 1, nil
	}
	b2, err := r.readBits(1)
	if err != nil {
		return 0, err
	}
	if b2 == 0 {
		return 2, nil
	}
	return 3, nil
}

// RC reads a raw unsigned byte.
func (r *bitReader) RC() (uint8, error) {
	b, err := r.rawBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// RS reads a raw little-endian unsigned 16-bit value.
func (r *bitReader) RS() (uint16, error) {
	b, err := r.rawBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// RL reads a raw little-endian unsigned 32-bit value.
func (r *bitReader) RL() (uint32, error) {
	b, err := r.rawBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// RD reads a raw little-endian IEEE-754 double.
func (r *bitReader) RD() (float64, error) {
	b, err := r.rawBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// BS reads a bit short: 2-bit tag selects {00: 16-bit raw, 01: 8-bit raw
// unsigned, 10: 0, 11: 256}.
func (r *bitReader) BS() (uint16, error) {
	tag, err := r.BB()
	if err != nil {
		return 0, err
	}
	switch tag {
	case 0:
		return r.RS()
	case 1:
		v, err := r.RC()
		return uint16(v), err
	case 2:
		return 0, nil
	default: // 3
		return 256, nil
	}
}

// BL reads a bit long: 2-bit tag selects {00: 32-bit raw, 01: 8-bit raw,
// 10: 0, 11: reserved}.
func (r *bitReader) BL() (uint32, error) {
	tag, err := r.BB()
	if err != nil {
		return 0, err
	}
	switch tag {
	case 0:
		return r.RL()
	case 1:
		v, err := r.RC()
		return uint32(v), err
	case 2:
		return 0, nil
	default:
		return 0, newError(CorruptStream, r.offset(), nil)
	}
}

// BLAsInt is BL interpreted as a signed count/index, per the common entity
// header's num_reactors and similar fields.
func (r *bitReader) BLAsInt() (int32, error) {
	v, err := r.BL()
	return int32(v), err
}

// BD reads a bit double: 2-bit tag selects {00: 64-bit IEEE, 01: 1.0,
// 10: 0.0, 11: reserved}.
func (r *bitReader) BD() (float64, error) {
	tag, err := r.BB()
	if err != nil {
		return 0, err
	}
	switch tag {
	case 0:
		return r.RD()
	case 1:
		return 1.0, nil
	case 2:
		return 0.0, nil
	default:
		return 0, newError(CorruptStream, r.offset(), nil)
	}
}

// DD reads a bit double with default: a 2-bit tag selects how many
// low-address (least significant) bytes of defaultValue's IEEE-754
// representation are kept, with the remaining high bytes read fresh.
// 00 keeps all 8 (returns defaultValue unchanged), 01 keeps the low 2 and
// reads 6, 10 keeps the low 4 and reads 4, 11 reads the full 8 bytes fresh.
func (r *bitReader) DD(defaultValue float64) (float64, error) {
	tag, err := r.BB()
	if err != nil {
		return 0, err
	}
	if tag == 0 {
		return defaultValue, nil
	}
	if tag == 3 {
		return r.RD()
	}
	var defBytes [8]byte
	binary.LittleEndian.PutUint64(defBytes[:], math.Float64bits(defaultValue))
	result := make([]byte, 8)
	switch tag {
	case 2:
		fresh, err := r.rawBytes(4)
		if err != nil {
			return 0, err
		}
		copy(result[0:4], defBytes[0:4])
		copy(result[4:8], fresh)
	case 1:
		fresh, err := r.rawBytes(6)
		if err != nil {
			return 0, err
		}
		copy(result[0:2], defBytes[0:2])
		copy(result[2:8], fresh)
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(result)), nil
}

// threeBD reads three BD values as a Vec3.
func (r *bitReader) threeBD() (Vec3, error) {
	x, err := r.BD()
	if err != nil {
		return Vec3{}, err
	}
	y, err := r.BD()
	if err != nil {
		return Vec3{}, err
	}
	z, err := r.BD()
	if err != nil {
		return Vec3{}, err
	}
	return Vec3{x, y, z}, nil
}

// twoBD reads two BD values as a Vec3 with Z=0.
func (r *bitReader) twoBD() (Vec3, error) {
	x, err := r.BD()
	if err != nil {
		return Vec3{}, err
	}
	y, err := r.BD()
	if err != nil {
		return Vec3{}, err
	}
	return Vec3{X: x, Y: y}, nil
}

// twoRD reads two raw doubles as a Vec3 with Z=0.
func (r *bitReader) twoRD() (Vec3, error) {
	x, err := r.RD()
	if err != nil {
		return Vec3{}, err
	}
	y, err := r.RD()
	if err != nil {
		return Vec3{}, err
	}
	return Vec3{X: x, Y: y}, nil
}

// BE reads a bit extrusion: one B flag; if set, three BD; if clear,
// (0, 0, 1).
func (r *bitReader) BE() (Vec3, error) {
	flag, err := r.B()
	if err != nil {
		return Vec3{}, err
	}
	if !flag {
		return Vec3{Z: 1}, nil
	}
	return r.threeBD()
}

// BT reads a bit thickness: one B flag; if set, one BD; if clear, 0.0.
func (r *bitReader) BT() (float64, error) {
	flag, err := r.B()
	if err != nil {
		return 0, err
	}
	if !flag {
		return 0, nil
	}
	return r.BD()
}

// MC reads a modular char: 7-bit little-endian groups with the high bit of
// each byte a continuation flag; the terminating byte's bit 0x40 is a sign
// flag over its remaining 6 value bits.
func (r *bitReader) MC() (int64, error) {
	var value uint64
	shift := 0
	negative := false
	for {
		b, err := r.RC()
		if err != nil {
			return 0, err
		}
		if b&0x80 != 0 {
			value |= uint64(b&0x7F) << shift
			shift += 7
			continue
		}
		negative = b&0x40 != 0
		value |= uint64(b&0x3F) << shift
		break
	}
	if negative {
		return -int64(value), nil
	}
	return int64(value), nil
}

// UMC reads an unsigned modular char: the same 7-bit little-endian groups
// as MC, but with no sign bit in the terminator. The handle map's handle
// deltas use this form; its offset deltas use the signed form.
func (r *bitReader) UMC() (uint64, error) {
	var value uint64
	shift := 0
	for {
		b, err := r.RC()
		if err != nil {
			return 0, err
		}
		value |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return value, nil
		}
		shift += 7
	}
}

// MS reads a modular short: unsigned 15-bit little-endian groups with the
// high bit of each 16-bit group a continuation flag.
func (r *bitReader) MS() (uint64, error) {
	var value uint64
	shift := 0
	for {
		g, err := r.RS()
		if err != nil {
			return 0, err
		}
		value |= uint64(g&0x7FFF) << shift
		shift += 15
		if g&0x8000 == 0 {
			break
		}
	}
	return value, nil
}

// H reads a handle reference: a 4-bit code, a 4-bit byte count, then that
// many raw value bytes, interpreted big-endian.
func (r *bitReader) H() (Handle, error) {
	code, err := r.readBits(4)
	if err != nil {
		return Handle{}, err
	}
	n, err := r.readBits(4)
	if err != nil {
		return Handle{}, err
	}
	raw, err := r.rawBytes(int(n))
	if err != nil {
		return Handle{}, err
	}
	return handleFromBytes(byte(code), raw), nil
}

// CMC reads a color reference: a BS index, plus (AC1018+) a BL true-color
// value and optional book/name strings flagged by a following byte.
func (r *bitReader) CMC(v Version) (ColorRef, error) {
	idx, err := r.BS()
	if err != nil {
		return ColorRef{}, err
	}
	c := ColorRef{Index: idx}
	if v == AC1015 {
		return c, nil
	}
	rgb, err := r.BL()
	if err != nil {
		return c, err
	}
	c.TrueColor = rgb
	c.HasTrue = true
	flags, err := r.RC()
	if err != nil {
		return c, err
	}
	if flags&1 != 0 {
		name, err := r.T(v)
		if err != nil {
			return c, err
		}
		c.Name = name
	}
	if flags&2 != 0 {
		book, err := r.T(v)
		if err != nil {
			return c, err
		}
		c.BookName = book
	}
	return c, nil
}

// T reads a text field: for AC1015/AC1018, a BS byte length followed by
// that many codepage bytes. For AC1021+ (TU), a BS length in UTF-16 code
// units followed by that many little-endian 16-bit units.
func (r *bitReader) T(v Version) (string, error) {
	n, err := r.BS()
	if err != nil {
		return "", err
	}
	if v.wideStrings() {
		units := make([]uint16, n)
		for i := range units {
			u, err := r.RS()
			if err != nil {
				return "", err
			}
			units[i] = u
		}
		return utf16ToUTF8(units), nil
	}
	raw, err := r.rawBytes(int(n))
	if err != nil {
		return "", err
	}
	return decodeCodepage(raw), nil
}
