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

// Object dispatcher: fixed DWG object type codes for the classes
// this decoder understands. Codes >= 500 are not fixed; they index into
// the class definitions parsed from AcDb:Classes.
const (
	typeTextFixed       = 1
	typeInsertFixed     = 7
	typeArcFixed        = 17
	typeCircleFixed     = 18
	typeLineFixed       = 19
	typeDimOrdinate     = 20
	typeDimLinear       = 21
	typeDimAligned      = 22
	typeDimAng3pt       = 23
	typeDimAng2ln       = 24
	typeDimRadius       = 25
	typeDimDiameter     = 26
	typePointFixed      = 27
	typeEllipseFixed    = 35
	typeMTextFixed      = 44
	typeLayerFixed      = 51
	typeLtypeFixed      = 57
	typeLWPolylineFixed = 77
)

// objectKind distinguishes what dispatchObject can produce from a slot: a
// queryable entity or a LAYER/LTYPE symbol-table record. Object classes
// without a parser (BLOCK_HEADER, DICTIONARY, ...) come back as kindEntity
// with an UNSUPPORTED placeholder; classify never returns kindSkip.
type objectKind int

const (
	kindEntity objectKind = iota
	kindLayer
	kindLtype
	kindSkip
)

func classify(typeCode uint16, classes map[uint16]classDef) (objectKind, EntityType) {
	switch typeCode {
	case typeLineFixed:
		return kindEntity, LINE
	case typeArcFixed:
		return kindEntity, ARC
	case typeCircleFixed:
		return kindEntity, CIRCLE
	case typePointFixed:
		return kindEntity, POINT
	case typeEllipseFixed:
		return kindEntity, ELLIPSE
	case typeTextFixed:
		return kindEntity, TEXT
	case typeMTextFixed:
		return kindEntity, MTEXT
	case typeLWPolylineFixed:
		return kindEntity, LWPOLYLINE
	case typeInsertFixed:
		return kindEntity, INSERT
	case typeDimOrdinate, typeDimLinear, typeDimAligned, typeDimAng3pt, typeDimAng2ln, typeDimRadius, typeDimDiameter:
		return kindEntity, DIMENSION
	case typeLayerFixed:
		return kindLayer, ""
	case typeLtypeFixed:
		return kindLtype, ""
	}
	if typeCode >= 500 {
		if cd, ok := classes[typeCode]; ok {
			if et, ok := supportedTypes[cd.DXFName]; ok {
				return kindEntity, et
			}
		}
	}
	return kindEntity, UNSUPPORTED
}

// dispatchResult is what dispatchObject produces for one object-map slot.
type dispatchResult struct {
	Entity *Entity // nil if this slot held a symbol-table record or was skipped
	Symbol *symbolRecord
	Kind   objectKind
}

// dispatchObject takes an object slot's absolute offset
// into the logical AcDbObjects stream, it reads the object's size and
// handle, identifies its class, and routes to the matching entity parser.
// Failures local to a single object taint only that object rather than
// aborting the whole decode: a parser error is recorded as a warning on an
// UNSUPPORTED placeholder, and a CRC mismatch as a warning on the entity.
func dispatchObject(objects []byte, offset int64, handle Handle, v Version, classes map[uint16]classDef) dispatchResult {
	if offset < 0 || offset >= int64(len(objects)) {
		return dispatchResult{Kind: kindEntity, Entity: placeholderEntity(handle, 0, "offset out of range")}
	}
	slice := objects[offset:]
	br := newBitReader(slice, offset)

	size, err := br.MS()
	if err != nil {
		return dispatchResult{Kind: kindEntity, Entity: placeholderEntity(handle, 0, "reading object size: "+err.Error())}
	}
	dataStart := br.bytePos
	if dataStart+int(size) > len(slice) {
		return dispatchResult{Kind: kindEntity, Entity: placeholderEntity(handle, 0, "object size exceeds available bytes")}
	}
	objBytes := slice[dataStart : dataStart+int(size)]

	var crcOK = true
	if dataStart+int(size)+2 <= len(slice) {
		stored := binary.LittleEndian.Uint16(slice[dataStart+int(size) : dataStart+int(size)+2])
		computed := crc16(objBytes, 0xC0C1)
		crcOK = stored == computed
	}

	objBr := newBitReader(objBytes, offset+int64(dataStart))
	typeCode, err := objBr.BS()
	if err != nil {
		return dispatchResult{Kind: kindEntity, Entity: placeholderEntity(handle, 0, "reading object type: "+err.Error())}
	}

	kind, et := classify(typeCode, classes)

	switch kind {
	case kindLayer, kindLtype:
		rec, err := parseSymbolRecord(objBr, v)
		if err != nil {
			return dispatchResult{Kind: kind}
		}
		return dispatchResult{Kind: kind, Symbol: &rec}
	}

	if et == UNSUPPORTED {
		e := placeholderEntity(handle, typeCode, "")
		if !crcOK {
			e.Warnings = append(e.Warnings, "object CRC mismatch")
		}
		return dispatchResult{Kind: kindEntity, Entity: e}
	}

	hdr, err := readCommonEntityHeader(objBr, v)
	if err != nil {
		e := placeholderEntity(handle, typeCode, "common header: "+err.Error())
		return dispatchResult{Kind: kindEntity, Entity: e}
	}
	if hdr.Common.Handle.IsZero() {
		hdr.Common.Handle = handle
	}

	payload, err := parseEntityPayload(objBr, v, et)
	if err != nil {
		e := &Entity{Type: UNSUPPORTED, Common: hdr.Common, Payload: Unsupported{RawType: typeCode}}
		e.Warnings = append(e.Warnings, fmt.Sprintf("%s parse failed: %s", et, err))
		return dispatchResult{Kind: kindEntity, Entity: e}
	}

	if v.handleStreamTrailer() {
		readTrailingHandleStream(objBytes, hdr)
	}

	e := &Entity{Type: et, Common: hdr.Common, Payload: payload}
	if hdr.HasBitSize {
		consumedBits := int64(objBr.bytePos)*8 + int64(objBr.bitPos)
		if consumedBits > hdr.BitSize {
			e.Warnings = append(e.Warnings, newError(ParserOverrun, objBr.offset(), nil).Error())
		}
	}
	e.Warnings = append(e.Warnings, geometryWarnings(et, payload)...)
	if !crcOK {
		e.Warnings = append(e.Warnings, "object CRC mismatch")
	}
	return dispatchResult{Kind: kindEntity, Entity: e}
}

func placeholderEntity(handle Handle, typeCode uint16, warning string) *Entity {
	e := &Entity{Type: UNSUPPORTED, Common: CommonData{Handle: handle}, Payload: Unsupported{RawType: typeCode}}
	if warning != "" {
		e.Warnings = append(e.Warnings, warning)
	}
	return e
}

func parseEntityPayload(br *bitReader, v Version, et EntityType) (any, error) {
	switch et {
	case LINE:
		return parseLine(br)
	case ARC:
		return parseArc(br)
	case CIRCLE:
		return parseCircle(br)
	case POINT:
		return parsePoint(br)
	case ELLIPSE:
		return parseEllipse(br)
	case TEXT:
		return parseText(br, v)
	case MTEXT:
		return parseMText(br, v)
	case LWPOLYLINE:
		return parseLWPolyline(br)
	case DIMENSION:
		return parseDimension(br, v)
	case INSERT:
		return parseInsert(br)
	default:
		return Unsupported{}, nil
	}
}
