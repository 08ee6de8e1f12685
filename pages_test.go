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
	"bytes"
	"testing"
)

func TestDwgDecompressLiteral(t *testing.T) {
	// opcode 0x05: short literal run of 5 bytes.
	src := []byte{0x05, 'h', 'e', 'l', 'l', 'o'}
	got, err := dwgDecompress(src, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestDwgDecompressLongLiteral(t *testing.T) {
	// opcode 0x00 + length byte 0x00 -> literal run of 0x0F+3 = 18 bytes.
	payload := bytes.Repeat([]byte{'x'}, 18)
	src := append([]byte{0x00, 0x00}, payload...)
	got, err := dwgDecompress(src, 18)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("got %q, want %q", got, payload)
	}
}

func TestDwgDecompressBackReference(t *testing.T) {
	// Literal "ab", then a short back-reference copying 2 bytes from
	// offset 2 (reproducing "ab" again): opcode 0x10|offsetHigh, byte
	// with offsetLow nibble and length nibble.
	// offset=2 means (op&0x0F)<<4 | b>>4, plus 1, == 2 -> op&0x0F=0, b>>4=1.
	// length=2 means b&0x0F+2==2 -> b&0x0F=0. So b=0x10.
	src := []byte{0x02, 'a', 'b', 0x10, 0x10}
	got, err := dwgDecompress(src, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("abab")) {
		t.Errorf("got %q, want %q", got, "abab")
	}
}

func TestDwgDecompressTruncated(t *testing.T) {
	src := []byte{0x05, 'h', 'i'} // claims 5 literal bytes, only 2 given
	if _, err := dwgDecompress(src, 5); err == nil {
		t.Fatal("expected an error for a truncated literal run")
	}
}

func TestReadPageChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	hdr := []byte{
		0, 0, 0, 0, // section type
		4, 0, 0, 0, // decompressed size
		4, 0, 0, 0, // compressed size
		0xFF, 0xFF, 0xFF, 0xFF, // checksum, deliberately wrong
		0, 0, 0, 0, // page number
	}
	buf.Write(hdr)
	buf.WriteString("data")
	if _, _, err := readPage(buf.Bytes(), 0); err == nil {
		t.Fatal("expected a checksum mismatch error")
	}
}
