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

// Package dwg provides a read-only decoder for the DWG binary CAD file
// format, versions R2000 (AC1015) through R2013 (AC1027).
//
// The decoder turns an on-disk byte stream into a queryable Document: a set
// of layouts, each holding a sequence of Entity records (lines, arcs,
// polylines, circles, text, block inserts, ...). Geometry on the Document's
// high-level surface is normalized (angles in degrees, coordinates as 3D
// doubles); the raw subpackage exposes per-entity decode without that
// normalization, for tooling and diagnostics.
//
//	doc, err := dwg.Read("drawing.dwg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, e := range doc.Modelspace().Query("LINE ARC") {
//	    fmt.Println(e.DXFType(), e.Handle())
//	}
//
// Decoding is a single synchronous pass: the whole file is read into memory,
// the object map is built, and every entity is parsed before Read returns.
// There is no background work and no mutation of the returned Document.
package dwg
