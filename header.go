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
	"fmt"
)

// sectionLocator is an AC1015 fixed section-locator-table entry: a
// (record_number, seeker, size) triple.
type sectionLocator struct {
	RecordNumber uint8
	Seeker       uint32
	Size         uint32
}

// AC1015 section-locator record numbers, fixed by the format.
const (
	locHeaderVars  = 0
	locClassDefs   = 1
	locObjectMap   = 2
	locUnknown     = 3
	locSecondHdr   = 4
)

var ac1015Sentinel = []byte{0x95, 0xa0, 0x4e, 0x28, 0x99, 0x82}

// pageParams carries the AC1018+ fields the system-section decoder needs to locate and decode the
// page map and section map.
type pageParams struct {
	PageMapSeeker    int64
	PageMapID        int32
	SectionMapSeeker int64
	SectionMapID     int32
	MaxSectionSize   uint32
}

// HeaderInfo is the parsed file header: the identified version plus whatever
// section-location data the version's file-header layout provides.
type HeaderInfo struct {
	Version  Version
	Locators []sectionLocator // AC1015 only
	Pages    *pageParams      // AC1018+ only
}

// ac1018Preamble is the fixed 0x80-byte XOR mask AC1018+ files apply over
// their encrypted file-header preamble (the mask is the block published in
// the Open Design Specification; it is not a secret, just an obfuscation
// step DWG uses ahead of the real per-section page decoding).
var ac1018Preamble = []byte{
	0x95, 0x76, 0x6b, 0x4b, 0x07, 0x6f, 0x10, 0x9f, 0x4e, 0xe1, 0xa3, 0xd4, 0x4e, 0x09, 0x08, 0x1b,
	0xe9, 0xf8, 0xab, 0x3d, 0xa1, 0x50, 0x38, 0x61, 0x95, 0xf5, 0x6f, 0x71, 0x02, 0xef, 0x87, 0xb8,
	0xfa, 0xcf, 0x95, 0x37, 0x29, 0xf1, 0x2a, 0x94, 0xf5, 0x1d, 0xec, 0xf7, 0xcc, 0x5d, 0xbb, 0x51,
	0xba, 0xa4, 0x4d, 0xf7, 0x80, 0xf4, 0x21, 0xc1, 0x18, 0x32, 0xd5, 0x13, 0xfd, 0x6e, 0x87, 0x11,
	0xa6, 0xa6, 0xbc, 0x5a, 0x4b, 0xde, 0xbb, 0x94, 0x94, 0x16, 0x6e, 0x5c, 0x4c, 0xc2, 0x54, 0x04,
	0x71, 0x76, 0x6f, 0x1e, 0x9c, 0xab, 0x96, 0x20, 0x25, 0x61, 0x4a, 0xc1, 0x56, 0x4a, 0x4a, 0x4c,
	0x19, 0x4d, 0x61, 0x15, 0x5c, 0x67, 0xbf, 0x23, 0xa5, 0x8a, 0xe7, 0xb9, 0x0d, 0x3c, 0x6d, 0x18,
	0x07, 0x1a, 0x5c, 0xf0, 0x12, 0x56, 0x1c, 0xce, 0xe3, 0x9f, 0x11, 0xf9, 0x97, 0x1a, 0xc4, 0xe6,
}

// parseHeaderInfo dispatches on the 6-byte magic at offset 0 to produce a
// HeaderInfo with the section-location data the rest of the pipeline needs.
func parseHeaderInfo(buf []byte) (*HeaderInfo, error) {
	if len(buf) < 6 {
		return nil, newError(UnsupportedVersion, 0, fmt.Errorf("file too short"))
	}
	v, err := ParseVersion(buf[:6])
	if err != nil {
		return nil, err
	}
	if !v.pagedFormat() {
		return parseAC1015Header(buf, v)
	}
	return parseAC1018Header(buf, v)
}

// parseAC1015Header reads the section locator table of an R2000 file
// header at 0x15: a 32-bit record count, that many (record_number, seeker,
// size) entries, then the 6-byte sentinel. The image seeker and codepage
// fields before 0x15 are not read.
func parseAC1015Header(buf []byte, v Version) (*HeaderInfo, error) {
	r := newByteReader(buf)
	if err := r.Seek(0x15); err != nil {
		return nil, err
	}
	numSections, err := r.U32()
	if err != nil {
		return nil, err
	}
	locs := make([]sectionLocator, 0, numSections)
	for i := uint32(0); i < numSections; i++ {
		recNum, err := r.U8()
		if err != nil {
			return nil, err
		}
		seeker, err := r.U32()
		if err != nil {
			return nil, err
		}
		size, err := r.U32()
		if err != nil {
			return nil, err
		}
		locs = append(locs, sectionLocator{RecordNumber: recNum, Seeker: seeker, Size: size})
	}
	sentinel, err := r.Bytes(len(ac1015Sentinel))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(sentinel, ac1015Sentinel) {
		return nil, newError(CorruptSection, r.Pos(), fmt.Errorf("bad AC1015 locator sentinel"))
	}
	return &HeaderInfo{Version: v, Locators: locs}, nil
}

// locator returns the AC1015 section-locator entry for recordNumber, if
// present.
func (h *HeaderInfo) locator(recordNumber uint8) (*sectionLocator, bool) {
	for i := range h.Locators {
		if h.Locators[i].RecordNumber == recordNumber {
			return &h.Locators[i], true
		}
	}
	return nil, false
}

// parseAC1018Header reads the AC1018+ 0x80-byte XOR-masked preamble and the
// page-map/section-map seekers that follow it.
func parseAC1018Header(buf []byte, v Version) (*HeaderInfo, error) {
	if len(buf) < 0x80+0x4D {
		return nil, newError(Truncated, int64(len(buf)), nil)
	}
	clear := make([]byte, 0x80)
	for i := range clear {
		clear[i] = buf[i] ^ ac1018Preamble[i]
	}
	r := newByteReader(clear)
	if err := r.Seek(0x10); err != nil {
		return nil, err
	}
	// 0x10: four RLs this decoder does not model, then the page map's RL
	// id, RL seeker and RL size (size unused), then the section map's RL id
	// and RL seeker, then the RL maximum section size.
	if err := r.Skip(4 * 4); err != nil { // skip the unused RL block
		return nil, err
	}
	pageMapID, err := r.I32()
	if err != nil {
		return nil, err
	}
	pageMapSeeker, err := r.U32()
	if err != nil {
		return nil, err
	}
	if err := r.Skip(4); err != nil { // page map size, unused here
		return nil, err
	}
	sectionMapID, err := r.I32()
	if err != nil {
		return nil, err
	}
	sectionMapSeeker, err := r.U32()
	if err != nil {
		return nil, err
	}
	maxSectionSize, err := r.U32()
	if err != nil {
		return nil, err
	}
	return &HeaderInfo{
		Version: v,
		Pages: &pageParams{
			PageMapSeeker:    int64(pageMapSeeker) + 0x80,
			PageMapID:        pageMapID,
			SectionMapSeeker: int64(sectionMapSeeker) + 0x80,
			SectionMapID:     sectionMapID,
			MaxSectionSize:   maxSectionSize,
		},
	}, nil
}
