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

// TEXT and MTEXT parsers.

func parseText(br *bitReader, v Version) (*Text, error) {
	elevation, err := br.BD()
	if err != nil {
		return nil, err
	}
	insertX, err := br.RD()
	if err != nil {
		return nil, err
	}
	insertY, err := br.RD()
	if err != nil {
		return nil, err
	}
	alignX, err := br.DD(insertX)
	if err != nil {
		return nil, err
	}
	alignY, err := br.DD(insertY)
	if err != nil {
		return nil, err
	}
	extrusion, err := br.BE()
	if err != nil {
		return nil, err
	}
	thickness, err := br.BT()
	if err != nil {
		return nil, err
	}
	oblique, err := br.BD()
	if err != nil {
		return nil, err
	}
	rotation, err := br.BD()
	if err != nil {
		return nil, err
	}
	height, err := br.BD()
	if err != nil {
		return nil, err
	}
	widthFactor, err := br.BD()
	if err != nil {
		return nil, err
	}
	value, err := br.T(v)
	if err != nil {
		return nil, err
	}
	genFlags, err := br.BS()
	if err != nil {
		return nil, err
	}
	hAlign, err := br.BS()
	if err != nil {
		return nil, err
	}
	vAlign, err := br.BS()
	if err != nil {
		return nil, err
	}
	styleHandle, err := br.H()
	if err != nil {
		return nil, err
	}

	t := &Text{
		Insert:          Vec3{X: insertX, Y: insertY, Z: elevation},
		Align:           Vec3{X: alignX, Y: alignY, Z: elevation},
		HasAlign:        alignX != insertX || alignY != insertY,
		Height:          height,
		Rotation:        rotation,
		WidthFactor:     widthFactor,
		Oblique:         oblique,
		StyleHandle:     styleHandle,
		GenerationFlags: genFlags,
		HAlign:          HAlign(hAlign),
		VAlign:          VAlign(vAlign),
		Value:           value,
	}
	_ = thickness
	_ = extrusion
	return t, nil
}

func parseMText(br *bitReader, v Version) (*MText, error) {
	insert, err := br.threeBD()
	if err != nil {
		return nil, err
	}
	xAxis, err := br.threeBD()
	if err != nil {
		return nil, err
	}
	width, err := br.BD()
	if err != nil {
		return nil, err
	}
	height, err := br.BD()
	if err != nil {
		return nil, err
	}
	attachPoint, err := br.BS()
	if err != nil {
		return nil, err
	}
	drawingDir, err := br.BS()
	if err != nil {
		return nil, err
	}
	value, err := br.T(v)
	if err != nil {
		return nil, err
	}
	lineSpacingStyle, err := br.BS()
	if err != nil {
		return nil, err
	}
	lineSpacingFactor, err := br.BD()
	if err != nil {
		return nil, err
	}
	hasBG, err := br.B()
	if err != nil {
		return nil, err
	}
	var bgFlags uint32
	if hasBG {
		bgFlags, err = br.BL()
		if err != nil {
			return nil, err
		}
	}

	return &MText{
		Insert:            insert,
		XAxis:             xAxis,
		Width:             width,
		Height:            height,
		AttachPoint:       attachPoint,
		DrawingDir:        drawingDir,
		Value:             value,
		LineSpacingStyle:  lineSpacingStyle,
		LineSpacingFactor: lineSpacingFactor,
		BGFlags:           bgFlags,
		HasBG:             hasBG,
	}, nil
}
