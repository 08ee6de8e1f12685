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

// Entity parsers: LINE, ARC, CIRCLE, POINT, ELLIPSE. Each parser
// starts with the bitstream positioned immediately after the common
// entity header and reads exactly the type-specific fields the DWG format
// defines for that class.

func parseLine(br *bitReader) (*Line, error) {
	zIsZero, err := br.B()
	if err != nil {
		return nil, err
	}
	p0x, err := br.BD()
	if err != nil {
		return nil, err
	}
	p1x, err := br.BD()
	if err != nil {
		return nil, err
	}
	p0y, err := br.BD()
	if err != nil {
		return nil, err
	}
	p1y, err := br.BD()
	if err != nil {
		return nil, err
	}
	var p0z, p1z float64
	if !zIsZero {
		if p0z, err = br.BD(); err != nil {
			return nil, err
		}
		if p1z, err = br.BD(); err != nil {
			return nil, err
		}
	}
	thickness, err := br.BT()
	if err != nil {
		return nil, err
	}
	extrusion, err := br.BE()
	if err != nil {
		return nil, err
	}
	return &Line{
		P0:        Vec3{p0x, p0y, p0z},
		P1:        Vec3{p1x, p1y, p1z},
		Thickness: thickness,
		Extrusion: extrusion,
	}, nil
}

func parseArc(br *bitReader) (*Arc, error) {
	center, err := br.threeBD()
	if err != nil {
		return nil, err
	}
	radius, err := br.BD()
	if err != nil {
		return nil, err
	}
	thickness, err := br.BT()
	if err != nil {
		return nil, err
	}
	extrusion, err := br.BE()
	if err != nil {
		return nil, err
	}
	start, err := br.BD()
	if err != nil {
		return nil, err
	}
	end, err := br.BD()
	if err != nil {
		return nil, err
	}
	return &Arc{
		Center:     center,
		Radius:     radius,
		Thickness:  thickness,
		Extrusion:  extrusion,
		StartAngle: start,
		EndAngle:   end,
	}, nil
}

func parseCircle(br *bitReader) (*Circle, error) {
	center, err := br.threeBD()
	if err != nil {
		return nil, err
	}
	radius, err := br.BD()
	if err != nil {
		return nil, err
	}
	thickness, err := br.BT()
	if err != nil {
		return nil, err
	}
	extrusion, err := br.BE()
	if err != nil {
		return nil, err
	}
	return &Circle{Center: center, Radius: radius, Thickness: thickness, Extrusion: extrusion}, nil
}

func parsePoint(br *bitReader) (*Point, error) {
	p, err := br.threeBD()
	if err != nil {
		return nil, err
	}
	thickness, err := br.BT()
	if err != nil {
		return nil, err
	}
	extrusion, err := br.BE()
	if err != nil {
		return nil, err
	}
	xAxisAngle, err := br.BD()
	if err != nil {
		return nil, err
	}
	return &Point{P: p, Thickness: thickness, Extrusion: extrusion, XAxisAngle: xAxisAngle}, nil
}

func parseEllipse(br *bitReader) (*Ellipse, error) {
	center, err := br.threeBD()
	if err != nil {
		return nil, err
	}
	majorAxis, err := br.threeBD()
	if err != nil {
		return nil, err
	}
	ratio, err := br.BD()
	if err != nil {
		return nil, err
	}
	start, err := br.BD()
	if err != nil {
		return nil, err
	}
	end, err := br.BD()
	if err != nil {
		return nil, err
	}
	extrusion, err := br.BE()
	if err != nil {
		return nil, err
	}
	return &Ellipse{
		Center:     center,
		MajorAxis:  majorAxis,
		Ratio:      ratio,
		StartParam: start,
		EndParam:   end,
		Extrusion:  extrusion,
	}, nil
}

// geometryWarnings checks the geometric range invariants (non-negative
// radii, ellipse ratio in (0, 1]) and returns warnings for any violation, without
// failing the decode — a radius or ratio out of range taints the record,
// it does not abort it.
func geometryWarnings(et EntityType, payload any) []string {
	var warnings []string
	switch p := payload.(type) {
	case *Arc:
		if p.Radius < 0 {
			warnings = append(warnings, "negative arc radius")
		}
	case *Circle:
		if p.Radius < 0 {
			warnings = append(warnings, "negative circle radius")
		}
	case *Ellipse:
		if p.Ratio <= 0 || p.Ratio > 1 {
			warnings = append(warnings, "ellipse ratio out of (0, 1]")
		}
	}
	return warnings
}
