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

// LWPOLYLINE, DIMENSION, and INSERT parsers.

func parseLWPolyline(br *bitReader) (*LWPolyline, error) {
	flagBits, err := br.BS()
	if err != nil {
		return nil, err
	}
	f := LWPolylineFlags(flagBits)

	var constWidth, elevation, thickness float64
	extrusion := Vec3{Z: 1}

	if f&LWPolyConstWidth != 0 {
		if constWidth, err = br.BD(); err != nil {
			return nil, err
		}
	}
	if f&LWPolyElevation != 0 {
		if elevation, err = br.BD(); err != nil {
			return nil, err
		}
	}
	if f&LWPolyThickness != 0 {
		if thickness, err = br.BD(); err != nil {
			return nil, err
		}
	}
	if f&LWPolyExtrusion != 0 {
		if extrusion, err = br.BE(); err != nil {
			return nil, err
		}
	}

	numPoints, err := br.BL()
	if err != nil {
		return nil, err
	}
	var numBulges, numWidths uint32
	if f&LWPolyBulges != 0 {
		if numBulges, err = br.BL(); err != nil {
			return nil, err
		}
	}
	if f&LWPolyWidths != 0 {
		if numWidths, err = br.BL(); err != nil {
			return nil, err
		}
	}

	vertices := make([]Vertex, numPoints)
	var prevX, prevY float64
	for i := uint32(0); i < numPoints; i++ {
		var x, y float64
		if i == 0 {
			x, err = br.RD()
			if err != nil {
				return nil, err
			}
			y, err = br.RD()
			if err != nil {
				return nil, err
			}
		} else {
			x, err = br.DD(prevX)
			if err != nil {
				return nil, err
			}
			y, err = br.DD(prevY)
			if err != nil {
				return nil, err
			}
		}
		vertices[i].X, vertices[i].Y = x, y
		prevX, prevY = x, y
	}
	for i := uint32(0); i < numBulges && int(i) < len(vertices); i++ {
		b, err := br.BD()
		if err != nil {
			return nil, err
		}
		vertices[i].Bulge = b
		vertices[i].HasBulge = true
	}
	for i := uint32(0); i < numWidths && int(i) < len(vertices); i++ {
		sw, err := br.BD()
		if err != nil {
			return nil, err
		}
		ew, err := br.BD()
		if err != nil {
			return nil, err
		}
		vertices[i].StartW, vertices[i].EndW = sw, ew
		vertices[i].HasWidth = true
	}

	return &LWPolyline{
		Flags:      f,
		ConstWidth: constWidth,
		Elevation:  elevation,
		Thickness:  thickness,
		Extrusion:  extrusion,
		Vertices:   vertices,
	}, nil
}

// dimSubclass values match the low nibble of the DIMENSION subclass flag
// byte written by AutoCAD: 0/1 linear/aligned, 3 diameter, 4 radius.
const (
	dimSubclassLinear   = 0
	dimSubclassAligned  = 1
	dimSubclassDiameter = 3
	dimSubclassRadius   = 4
)

// parseDimension reads the common "dim block" prologue shared by every
// DIMENSION subtype, then dispatches on the subclass flag's low nibble
// into the linear/radius/diameter branches.
func parseDimension(br *bitReader, v Version) (*Dimension, error) {
	if _, err := br.RC(); err != nil { // dimension version number, not retained
		return nil, err
	}
	if _, err := br.threeBD(); err != nil { // extrusion, not part of the payload
		return nil, err
	}
	midXY, err := br.twoBD()
	if err != nil {
		return nil, err
	}
	elevation, err := br.BD()
	if err != nil {
		return nil, err
	}
	subclassFlag, err := br.RC()
	if err != nil {
		return nil, err
	}
	text, err := br.T(v)
	if err != nil {
		return nil, err
	}
	rotation, err := br.BD()
	if err != nil {
		return nil, err
	}
	if _, err := br.BD(); err != nil { // horizontal direction
		return nil, err
	}
	if _, err := br.threeBD(); err != nil { // insertion scale
		return nil, err
	}
	if _, err := br.BD(); err != nil { // insertion rotation
		return nil, err
	}
	if _, err := br.BS(); err != nil { // attachment point
		return nil, err
	}
	if _, err := br.BS(); err != nil { // line spacing style
		return nil, err
	}
	if _, err := br.BD(); err != nil { // line spacing factor
		return nil, err
	}
	if _, err := br.BD(); err != nil { // cached actual measurement
		return nil, err
	}
	dimStyleHandle, err := br.H()
	if err != nil {
		return nil, err
	}
	blockHandle, err := br.H()
	if err != nil {
		return nil, err
	}

	d := &Dimension{
		TextMidpoint:   Vec3{X: midXY.X, Y: midXY.Y, Z: elevation},
		Text:           text,
		Rotation:       rotation,
		DimStyleHandle: dimStyleHandle,
		BlockHandle:    blockHandle,
	}

	switch subclassFlag & 0x0F {
	case dimSubclassDiameter:
		d.Subtype = DimDiameter
		center, defPoint, leaderLen, err := parseRadialDimPoints(br)
		if err != nil {
			return nil, err
		}
		d.Insertion = center
		d.DefinitionPoints = []Vec3{center, defPoint}
		_ = leaderLen
	case dimSubclassRadius:
		d.Subtype = DimRadius
		center, defPoint, leaderLen, err := parseRadialDimPoints(br)
		if err != nil {
			return nil, err
		}
		d.Insertion = center
		d.DefinitionPoints = []Vec3{center, defPoint}
		_ = leaderLen
	default: // linear / aligned, and anything not otherwise recognized
		d.Subtype = DimLinear
		p10, err := br.threeBD()
		if err != nil {
			return nil, err
		}
		p13, err := br.threeBD()
		if err != nil {
			return nil, err
		}
		p14, err := br.threeBD()
		if err != nil {
			return nil, err
		}
		insertion, err := br.twoBD()
		if err != nil {
			return nil, err
		}
		if _, err := br.BD(); err != nil { // dimension line angle
			return nil, err
		}
		d.Insertion = insertion
		d.DefinitionPoints = []Vec3{p10, p13, p14}
	}

	return d, nil
}

func parseRadialDimPoints(br *bitReader) (center, defPoint Vec3, leaderLen float64, err error) {
	if center, err = br.threeBD(); err != nil {
		return
	}
	if defPoint, err = br.threeBD(); err != nil {
		return
	}
	leaderLen, err = br.BD()
	return
}

// parseInsert reads the INSERT (block reference) entity payload:
// insertion point, scale (with the uniform-scale
// optimization), rotation, extrusion, block header handle, and the
// optional array fields present when column/row counts exceed 1.
func parseInsert(br *bitReader) (*Insert, error) {
	point, err := br.threeBD()
	if err != nil {
		return nil, err
	}
	scaleFlag, err := br.BB()
	if err != nil {
		return nil, err
	}
	var scale Vec3
	switch scaleFlag {
	case 0:
		if scale, err = br.threeBD(); err != nil {
			return nil, err
		}
	case 1:
		x, err := br.BD()
		if err != nil {
			return nil, err
		}
		scale = Vec3{X: x, Y: x, Z: x}
	case 2:
		scale = Vec3{X: 1, Y: 1, Z: 1}
	default:
		scale = Vec3{X: 1, Y: 1, Z: 1}
	}
	rotation, err := br.BD()
	if err != nil {
		return nil, err
	}
	extrusion, err := br.BE()
	if err != nil {
		return nil, err
	}
	hasAttribs, err := br.B()
	if err != nil {
		return nil, err
	}
	blockHandle, err := br.H()
	if err != nil {
		return nil, err
	}

	ins := &Insert{
		Point:       point,
		Scale:       scale,
		Rotation:    rotation,
		Extrusion:   extrusion,
		BlockHandle: blockHandle,
		HasAttribs:  hasAttribs,
		ColumnCount: 1,
		RowCount:    1,
	}

	hasArray, err := br.B()
	if err != nil {
		return nil, err
	}
	if hasArray {
		cc, err := br.BL()
		if err != nil {
			return nil, err
		}
		rc, err := br.BL()
		if err != nil {
			return nil, err
		}
		cs, err := br.BD()
		if err != nil {
			return nil, err
		}
		rs, err := br.BD()
		if err != nil {
			return nil, err
		}
		ins.ColumnCount, ins.RowCount = int(cc), int(rc)
		ins.ColumnSpacing, ins.RowSpacing = cs, rs
	}

	return ins, nil
}
