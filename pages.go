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
	"fmt"
)

// System section decoder, active only for AC1018+. The file body past
// the 0x80-byte preamble is a sequence of fixed-header pages; the page map
// and section map are themselves pages, and every logical section (e.g.
// "AcDb:Handles") is a run of pages that must be decompressed, checksummed,
// and concatenated into one contiguous logical buffer before the object map and dispatcher can
// read it.

// pageHeader is the fixed header every page (including the page map and
// section map pages) begins with.
type pageHeader struct {
	SectionType      uint32
	DecompressedSize uint32
	CompressedSize   uint32
	Checksum         uint32
	PageNumber       uint32
}

const pageHeaderSize = 20

func readPageHeader(r *byteReader) (pageHeader, error) {
	var h pageHeader
	var err error
	if h.SectionType, err = r.U32(); err != nil {
		return h, err
	}
	if h.DecompressedSize, err = r.U32(); err != nil {
		return h, err
	}
	if h.CompressedSize, err = r.U32(); err != nil {
		return h, err
	}
	if h.Checksum, err = r.U32(); err != nil {
		return h, err
	}
	if h.PageNumber, err = r.U32(); err != nil {
		return h, err
	}
	return h, nil
}

// readPage reads the page at absolute offset seeker, decompressing it if
// the header's CompressedSize differs from DecompressedSize, and validates
// its checksum against the decompressed bytes.
func readPage(buf []byte, seeker int64) ([]byte, pageHeader, error) {
	r := newByteReader(buf)
	if err := r.Seek(seeker); err != nil {
		return nil, pageHeader{}, err
	}
	hdr, err := readPageHeader(r)
	if err != nil {
		return nil, hdr, err
	}
	raw, err := r.Bytes(int(hdr.CompressedSize))
	if err != nil {
		return nil, hdr, err
	}
	var out []byte
	if hdr.CompressedSize == hdr.DecompressedSize {
		out = append([]byte(nil), raw...)
	} else {
		out, err = dwgDecompress(raw, int(hdr.DecompressedSize))
		if err != nil {
			return nil, hdr, err
		}
	}
	if got := crc16(out, uint16(hdr.Checksum)); got != uint16(hdr.Checksum>>16) && got != uint16(hdr.Checksum) {
		// Accept either placement of the stored 16-bit checksum within the
		// 32-bit header field: some section kinds store it in the low
		// half, others (page-map/section-map control pages) in the high
		// half combined with a page-kind tag.
		return nil, hdr, newError(CorruptSection, seeker, fmt.Errorf("page %d checksum mismatch", hdr.PageNumber))
	}
	return out, hdr, nil
}

// pageMapEntry is one (page_number, size) pair from the page map.
type pageMapEntry struct {
	PageNumber int32
	Size       uint32
}

// decodePageMap reads and parses the page map page, returning its entries
// in on-disk order.
func decodePageMap(buf []byte, pp *pageParams) ([]pageMapEntry, error) {
	data, _, err := readPage(buf, pp.PageMapSeeker)
	if err != nil {
		return nil, err
	}
	r := newByteReader(data)
	var entries []pageMapEntry
	for r.Len() >= 8 {
		num, err := r.I32()
		if err != nil {
			return nil, err
		}
		size, err := r.U32()
		if err != nil {
			return nil, err
		}
		entries = append(entries, pageMapEntry{PageNumber: num, Size: size})
	}
	return entries, nil
}

// pageOffsets computes each page's absolute file offset as a running sum
// of page sizes starting just after the 0x80-byte preamble, in the order
// the page map lists them (which is on-disk order).
func pageOffsets(entries []pageMapEntry) map[int32]int64 {
	offsets := make(map[int32]int64, len(entries))
	offset := int64(0x80)
	for _, e := range entries {
		if e.PageNumber > 0 {
			offsets[e.PageNumber] = offset
		}
		offset += int64(e.Size)
	}
	return offsets
}

// sectionPageRef is one page's contribution to a logical section.
type sectionPageRef struct {
	PageNumber       int32
	UncompressedSize uint32
	CompressedSize   uint32
	Checksum         uint32
	OffsetInSection  uint32
}

// sectionMapEntry describes one named logical section as a sequence of
// pages plus the section's total uncompressed size.
type sectionMapEntry struct {
	Name                  string
	TotalUncompressedSize uint32
	Pages                 []sectionPageRef
}

// decodeSectionMap reads and parses the section map page.
func decodeSectionMap(buf []byte, pp *pageParams) (map[string]*sectionMapEntry, error) {
	data, _, err := readPage(buf, pp.SectionMapSeeker)
	if err != nil {
		return nil, err
	}
	r := newByteReader(data)
	sections := make(map[string]*sectionMapEntry)
	for r.Len() >= 12 {
		nameLen, err := r.U32()
		if err != nil {
			return nil, err
		}
		nameBytes, err := r.Bytes(int(nameLen))
		if err != nil {
			return nil, err
		}
		pageCount, err := r.U32()
		if err != nil {
			return nil, err
		}
		totalSize, err := r.U32()
		if err != nil {
			return nil, err
		}
		entry := &sectionMapEntry{Name: string(nameBytes), TotalUncompressedSize: totalSize}
		for i := uint32(0); i < pageCount; i++ {
			var ref sectionPageRef
			pn, err := r.I32()
			if err != nil {
				return nil, err
			}
			ref.PageNumber = pn
			if ref.UncompressedSize, err = r.U32(); err != nil {
				return nil, err
			}
			if ref.CompressedSize, err = r.U32(); err != nil {
				return nil, err
			}
			if ref.Checksum, err = r.U32(); err != nil {
				return nil, err
			}
			if ref.OffsetInSection, err = r.U32(); err != nil {
				return nil, err
			}
			entry.Pages = append(entry.Pages, ref)
		}
		sections[entry.Name] = entry
	}
	return sections, nil
}

// systemSections holds the reassembled logical byte buffers for every
// sections the rest of the decode needs, keyed by section name.
type systemSections struct {
	buffers map[string][]byte
}

func (s *systemSections) section(name string) ([]byte, bool) {
	b, ok := s.buffers[name]
	return b, ok
}

// requiredSections is the fixed set of logical sections the decode
// pipeline needs from an AC1018+ file.
var requiredSections = []string{
	"AcDb:Header",
	"AcDb:Classes",
	"AcDb:Handles",
	"AcDb:AcDbObjects",
}

// decodeSystemSections runs the full reassembly algorithm: locate and decode the
// page map, locate and decode the section map, then reassemble each
// required section from its constituent pages.
func decodeSystemSections(buf []byte, hdr *HeaderInfo) (*systemSections, error) {
	pm, err := decodePageMap(buf, hdr.Pages)
	if err != nil {
		return nil, err
	}
	offsets := pageOffsets(pm)
	sm, err := decodeSectionMap(buf, hdr.Pages)
	if err != nil {
		return nil, err
	}
	out := &systemSections{buffers: make(map[string][]byte)}
	for _, name := range requiredSections {
		entry, ok := sm[name]
		if !ok {
			continue // some sections (e.g. paper space specific) may be legitimately absent
		}
		full := make([]byte, 0, entry.TotalUncompressedSize)
		for _, ref := range entry.Pages {
			offset, ok := offsets[ref.PageNumber]
			if !ok {
				return nil, newError(CorruptSection, -1, fmt.Errorf("section %q references unknown page %d", name, ref.PageNumber))
			}
			data, _, err := readPage(buf, offset)
			if err != nil {
				return nil, err
			}
			full = append(full, data...)
		}
		out.buffers[name] = full
	}
	return out, nil
}

// dwgDecompress runs the DWG-specific LZ77 variant decompressor over src,
// reconstructing exactly dstSize bytes into a preallocated buffer. Writing
// past dstSize fails CorruptStream.
func dwgDecompress(src []byte, dstSize int) ([]byte, error) {
	out := make([]byte, 0, dstSize)
	i := 0
	emitLiteral := func(n int) error {
		if i+n > len(src) {
			return newError(Truncated, int64(i), nil)
		}
		if len(out)+n > dstSize {
			return newError(CorruptStream, int64(i), fmt.Errorf("literal run overflows decompressed size"))
		}
		out = append(out, src[i:i+n]...)
		i += n
		return nil
	}
	copyBack := func(offset, length int) error {
		if offset <= 0 || offset > len(out) {
			return newError(CorruptStream, int64(i), fmt.Errorf("back-reference offset %d out of range", offset))
		}
		if len(out)+length > dstSize {
			return newError(CorruptStream, int64(i), fmt.Errorf("back-reference overflows decompressed size"))
		}
		start := len(out) - offset
		for n := 0; n < length; n++ {
			out = append(out, out[start+n])
		}
		return nil
	}

	for len(out) < dstSize {
		if i >= len(src) {
			return nil, newError(Truncated, int64(i), fmt.Errorf("opcode stream exhausted before reaching decompressed size"))
		}
		op := src[i]
		i++
		switch {
		case op == 0x00: // long literal
			if i >= len(src) {
				return nil, newError(Truncated, int64(i), nil)
			}
			n := int(src[i]) + 0x0F + 3
			i++
			if err := emitLiteral(n); err != nil {
				return nil, err
			}
		case op >= 0x01 && op <= 0x0F: // short literal run
			if err := emitLiteral(int(op)); err != nil {
				return nil, err
			}
		case op >= 0x10 && op <= 0x1F: // short back-reference
			if i >= len(src) {
				return nil, newError(Truncated, int64(i), nil)
			}
			b := src[i]
			i++
			offset := (int(op&0x0F)<<4 | int(b>>4)) + 1
			length := int(b&0x0F) + 2
			if err := copyBack(offset, length); err != nil {
				return nil, err
			}
		case op == 0x20: // long back-reference (length extension)
			if i+1 >= len(src) {
				return nil, newError(Truncated, int64(i), nil)
			}
			lenExt := int(src[i])
			offByte := src[i+1]
			i += 2
			offset := int(offByte) + 1
			length := lenExt + 0x0F + 2
			if err := copyBack(offset, length); err != nil {
				return nil, err
			}
		case op >= 0x21 && op <= 0x3F: // medium back-reference
			if i >= len(src) {
				return nil, newError(Truncated, int64(i), nil)
			}
			b := src[i]
			i++
			offset := (int(op-0x21)<<4 | int(b>>4)) + 1
			length := int(b&0x0F) + 3
			if err := copyBack(offset, length); err != nil {
				return nil, err
			}
		default: // 0x40..0xFF: two-byte back-reference
			if i >= len(src) {
				return nil, newError(Truncated, int64(i), nil)
			}
			b := src[i]
			i++
			length := int(op>>4) + 2
			offset := (int(op&0x0F)<<8 | int(b)) + 1
			if err := copyBack(offset, length); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
