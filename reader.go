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
	"os"

	"github.com/zeebo/blake3"
)

// Read decodes the DWG file at path into a Document. This is the top-level
// entry point for the whole pipeline: it identifies the version, locates and
// (for AC1018+) reassembles the system sections, builds the object map,
// decodes the class table, then dispatches every object-map slot into
// entities, folding the result into the document model.
func Read(path string) (*Document, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(buf)
}

// Decode runs the full decode pipeline over an in-memory DWG byte buffer,
// without touching the filesystem. Read is a thin wrapper around this for
// the common path-based entry point.
func Decode(buf []byte) (*Document, error) {
	hdr, err := parseHeaderInfo(buf)
	if err != nil {
		return nil, err
	}

	var (
		objects    []byte
		objectBase int64 // offset within buf that slot offsets in the object map are relative to
		classesBuf []byte
		handlesBuf []byte
	)

	if hdr.Version.pagedFormat() {
		sections, err := decodeSystemSections(buf, hdr)
		if err != nil {
			return nil, err
		}
		objects, _ = sections.section("AcDb:AcDbObjects")
		classesBuf, _ = sections.section("AcDb:Classes")
		handlesBuf, _ = sections.section("AcDb:Handles")
	} else {
		// AC1015 has no paged system sections: the locator table points
		// directly at raw sections within the file, and the handle map's
		// offsets are themselves absolute file offsets.
		objects = buf
		objectBase = 0
		if loc, ok := hdr.locator(locClassDefs); ok {
			classesBuf = sliceSection(buf, loc)
			if classesBuf == nil && loc.Size > 0 {
				return nil, newError(Truncated, int64(loc.Seeker), nil)
			}
		}
		if loc, ok := hdr.locator(locObjectMap); ok {
			handlesBuf = sliceSection(buf, loc)
			if handlesBuf == nil && loc.Size > 0 {
				return nil, newError(Truncated, int64(loc.Seeker), nil)
			}
		}
	}

	classes, err := decodeClasses(classesBuf, hdr.Version)
	if err != nil {
		return nil, err
	}

	om, err := decodeObjectMap(handlesBuf)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Version:          hdr.Version,
		SourceDigest:      blake3.Sum256(buf),
		entitiesByHandle: make(map[uint64]*Entity),
		layouts:          make(map[string]*Layout),
		symbols:          newSymbolTable(),
	}
	model := &Layout{Name: "Model"}
	doc.layouts["Model"] = model
	doc.layoutOrder = []string{"Model"}

	for _, slot := range om.iter() {
		offset := slot.Offset - objectBase
		result := dispatchObject(objects, offset, slot.Handle, hdr.Version, classes)
		switch result.Kind {
		case kindLayer, kindLtype:
			if result.Symbol != nil {
				doc.symbols.add(*result.Symbol)
			}
		case kindEntity:
			if result.Entity == nil {
				continue
			}
			doc.entitiesByHandle[slot.Handle.Value] = result.Entity
			model.entities = append(model.entities, result.Entity)
		}
	}

	return doc, nil
}

// sliceSection bounds-checks and slices the raw file region an AC1015
// locator-table entry names.
func sliceSection(buf []byte, loc *sectionLocator) []byte {
	start := int(loc.Seeker)
	end := start + int(loc.Size)
	if start < 0 || end > len(buf) || start > end {
		return nil
	}
	return buf[start:end]
}

// String renders a Version for diagnostic output.
func (v Version) String() string {
	return string(v)
}
