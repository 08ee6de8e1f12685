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

// Class definitions and best-effort symbol tables. Object type codes
// >= 500 are not fixed; they index into the class
// definitions parsed from the AcDb:Classes section. A handful of table
// entry classes (LAYER, LTYPE) are additionally parsed, name-only, to
// support best-effort layer/linetype name resolution.

// classDef is one entry from AcDb:Classes.
type classDef struct {
	ClassNum    uint16
	ProxyFlags  uint16
	AppName     string
	CppName     string
	DXFName     string
	WasZombie   bool
	ItemClassID uint16
}

// decodeClasses parses the AcDb:Classes section into a table keyed by
// class number, used by the object dispatcher to resolve class-based
// (>= 500) object type codes to a DXF name.
func decodeClasses(buf []byte, v Version) (map[uint16]classDef, error) {
	classes := make(map[uint16]classDef)
	if len(buf) == 0 {
		return classes, nil
	}
	br := newBitReader(buf, 0)
	for br.bytePos+2 < len(buf) {
		start := br.mark()
		classNum, err := br.BS()
		if err != nil {
			break
		}
		proxyFlags, err := br.BS()
		if err != nil {
			br.reset(start)
			break
		}
		appName, err := br.T(v)
		if err != nil {
			br.reset(start)
			break
		}
		cppName, err := br.T(v)
		if err != nil {
			br.reset(start)
			break
		}
		dxfName, err := br.T(v)
		if err != nil {
			br.reset(start)
			break
		}
		wasZombie, err := br.B()
		if err != nil {
			br.reset(start)
			break
		}
		itemClassID, err := br.BS()
		if err != nil {
			br.reset(start)
			break
		}
		classes[classNum] = classDef{
			ClassNum:    classNum,
			ProxyFlags:  proxyFlags,
			AppName:     appName,
			CppName:     cppName,
			DXFName:     dxfName,
			WasZombie:   wasZombie,
			ItemClassID: itemClassID,
		}
	}
	return classes, nil
}

// symbolRecord is a minimal, name-only decode of a LAYER or LTYPE table
// entry, used only to back best-effort handle-to-name resolution; it is
// never surfaced as a queryable Entity.
type symbolRecord struct {
	Handle Handle
	Name   string
}

// parseSymbolRecord does a best-effort decode of a LAYER/LTYPE table
// entry: it reuses the common entity header reader (table entries share
// its handle/xdata/flag shape closely enough for this purpose) and then
// reads the entry's name field. Any failure is tolerated by the caller,
// since symbol names are a best-effort convenience, not decode-critical.
func parseSymbolRecord(br *bitReader, v Version) (symbolRecord, error) {
	hdr, err := readCommonEntityHeader(br, v)
	if err != nil {
		return symbolRecord{}, err
	}
	name, err := br.T(v)
	if err != nil {
		return symbolRecord{}, err
	}
	return symbolRecord{Handle: hdr.Common.Handle, Name: name}, nil
}

// symbolTable is the internal fallback looked up when a layer/linetype
// handle does not resolve in Document.entitiesByHandle.
type symbolTable struct {
	byHandle map[uint64]string
}

func newSymbolTable() *symbolTable {
	return &symbolTable{byHandle: make(map[uint64]string)}
}

func (s *symbolTable) add(rec symbolRecord) {
	s.byHandle[rec.Handle.Value] = rec.Name
}

func (s *symbolTable) name(h Handle) (string, bool) {
	n, ok := s.byHandle[h.Value]
	return n, ok
}
