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

// DXF returns the entity's type-specific fields as a name -> value map,
// with every angle normalized to degrees. This is the high-level
// surface; the raw subpackage exposes the same payload structs with
// angles left in radians, for diagnostics.
func (e *Entity) DXF() map[string]any {
	m := map[string]any{
		"handle":  e.Common.Handle,
		"layer":   e.Common.LayerHandle,
		"color":   e.Common.Color,
		"invisible": e.Common.Invisible,
	}
	switch p := e.Payload.(type) {
	case *Line:
		m["start"] = p.P0
		m["end"] = p.P1
		m["thickness"] = p.Thickness
		m["extrusion"] = p.Extrusion
	case *Arc:
		m["center"] = p.Center
		m["radius"] = p.Radius
		m["thickness"] = p.Thickness
		m["extrusion"] = p.Extrusion
		m["start_angle"] = p.StartAngleDeg()
		m["end_angle"] = p.EndAngleDeg()
	case *Circle:
		m["center"] = p.Center
		m["radius"] = p.Radius
		m["thickness"] = p.Thickness
		m["extrusion"] = p.Extrusion
	case *Point:
		m["point"] = p.P
		m["thickness"] = p.Thickness
		m["extrusion"] = p.Extrusion
		m["x_axis_angle"] = degrees(p.XAxisAngle)
	case *Ellipse:
		m["center"] = p.Center
		m["major_axis"] = p.MajorAxis
		m["ratio"] = p.Ratio
		m["start_param"] = degrees(p.StartParam)
		m["end_param"] = degrees(p.EndParam)
		m["extrusion"] = p.Extrusion
	case *LWPolyline:
		m["flags"] = p.Flags
		m["const_width"] = p.ConstWidth
		m["elevation"] = p.Elevation
		m["thickness"] = p.Thickness
		m["extrusion"] = p.Extrusion
		m["vertices"] = p.Vertices
		m["closed"] = p.Closed()
	case *Text:
		m["insert"] = p.Insert
		if p.HasAlign {
			m["align"] = p.Align
		}
		m["height"] = p.Height
		m["rotation"] = p.RotationDeg()
		m["width_factor"] = p.WidthFactor
		m["oblique"] = p.ObliqueDeg()
		m["style"] = p.StyleHandle
		m["generation_flags"] = p.GenerationFlags
		m["h_align"] = p.HAlign
		m["v_align"] = p.VAlign
		m["text"] = p.Value
	case *MText:
		m["insert"] = p.Insert
		m["x_axis"] = p.XAxis
		m["width"] = p.Width
		m["height"] = p.Height
		m["attach_point"] = p.AttachPoint
		m["drawing_dir"] = p.DrawingDir
		m["text"] = p.Value
		m["text_plain"] = stripMTextControl(p.Value)
		m["line_spacing_style"] = p.LineSpacingStyle
		m["line_spacing_factor"] = p.LineSpacingFactor
		if p.HasBG {
			m["bg_flags"] = p.BGFlags
		}
	case *Dimension:
		m["subtype"] = p.Subtype
		m["text_midpoint"] = p.TextMidpoint
		m["insertion"] = p.Insertion
		m["definition_points"] = p.DefinitionPoints
		m["text"] = p.Text
		m["rotation"] = p.RotationDeg()
		m["dimstyle"] = p.DimStyleHandle
		m["block"] = p.BlockHandle
	case *Insert:
		m["insert"] = p.Point
		m["scale"] = p.Scale
		m["rotation"] = p.RotationDeg()
		m["extrusion"] = p.Extrusion
		m["block"] = p.BlockHandle
		m["column_count"] = p.ColumnCount
		m["row_count"] = p.RowCount
		m["column_spacing"] = p.ColumnSpacing
		m["row_spacing"] = p.RowSpacing
	case Unsupported:
		m["raw_type"] = p.RawType
	}
	return m
}
