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
	"math"
)

// Version is one of the five DWG file versions this decoder supports,
// identified by the 6-byte magic at offset 0 of the file.
type Version string

// Supported versions, in the order a file's magic is matched against them.
const (
	AC1015 Version = "AC1015" // R2000
	AC1018 Version = "AC1018" // R2004
	AC1021 Version = "AC1021" // R2007
	AC1024 Version = "AC1024" // R2010
	AC1027 Version = "AC1027" // R2013
)

// ParseVersion maps a 6-byte file magic to a Version, or reports
// UnsupportedVersion.
func ParseVersion(magic []byte) (Version, error) {
	if len(magic) < 6 {
		return "", newError(UnsupportedVersion, 0, fmt.Errorf("magic too short"))
	}
	v := Version(magic[:6])
	switch v {
	case AC1015, AC1018, AC1021, AC1024, AC1027:
		return v, nil
	default:
		return "", newError(UnsupportedVersion, 0, fmt.Errorf("unrecognized magic %q", magic[:6]))
	}
}

// pagedFormat reports whether a version stores its sections behind the
// AC1018+ paged/compressed system-section layer, rather than the
// AC1015 fixed section locator table.
func (v Version) pagedFormat() bool {
	return v != AC1015
}

// handleStreamTrailer reports whether object size is expressed in bits
// (RL) with a trailing handle substream, as used from AC1021 onward.
func (v Version) handleStreamTrailer() bool {
	return v == AC1021 || v == AC1024 || v == AC1027
}

// wideStrings reports whether T fields are UTF-16 (TU) rather than
// codepage bytes, as used from AC1021 onward.
func (v Version) wideStrings() bool {
	return v == AC1021 || v == AC1024 || v == AC1027
}

// extraDataSizeByte reports whether the common entity header begins with
// a one-byte "extra data size" block to skip, as used from AC1024 onward.
func (v Version) extraDataSizeByte() bool {
	return v == AC1024 || v == AC1027
}

// hasBinaryXDataFlag reports whether the common entity data includes the
// isBinaryXData bit, as used from AC1024 onward.
func (v Version) hasBinaryXDataFlag() bool {
	return v == AC1024 || v == AC1027
}

// hasLineweight reports whether the common entity data carries an explicit
// lineweight byte, as used from AC1018 onward.
func (v Version) hasLineweight() bool {
	return v != AC1015
}

// Handle is a DWG object handle: a code nibble plus up to 8 value bytes,
// interpreted as an unsigned big-endian integer. Handles identify objects
// and are used, unresolved, as cross-references (layer, linetype, owner,
// reactors) — they are never owning references, so the reference graph may
// be cyclic without implying ownership cycles.
type Handle struct {
	Code  byte
	Value uint64
}

// ZeroHandle is the handle DWG uses to mean "absent" or "unresolved"
// (e.g. layer 0 when best-effort resolution gives up).
var ZeroHandle = Handle{}

// IsZero reports whether h is the absent/unresolved handle.
func (h Handle) IsZero() bool {
	return h.Code == 0 && h.Value == 0
}

// String renders a handle the way DXF handle groups are conventionally
// printed: hex, no leading zeros.
func (h Handle) String() string {
	return fmt.Sprintf("%X", h.Value)
}

// handleFromBytes interprets raw big-endian value bytes, as read by the H
// bitstream primitive.
func handleFromBytes(code byte, raw []byte) Handle {
	var buf [8]byte
	copy(buf[8-len(raw):], raw)
	return Handle{Code: code, Value: binary.BigEndian.Uint64(buf[:])}
}

// HandleCode values distinguish the kind of cross-reference an H field
// encodes (absolute handle, soft pointer, hard pointer, soft/hard owner).
const (
	HandleAbsolute    byte = 0x0
	HandleSoftOwner   byte = 0x2
	HandleHardOwner   byte = 0x3
	HandleSoftPointer byte = 0x4
	HandleHardPointer byte = 0x5
)

// Vec3 is a 3D point or vector of doubles, the uniform coordinate
// convention entity records are normalized to regardless of source field
// width (2D fields get a zero Z).
type Vec3 struct {
	X, Y, Z float64
}

// degrees normalizes a raw radian angle, as read from the bitstream, to the
// [0, 360) convention the high-level surface exposes.
func degrees(radians float64) float64 {
	d := radians * 180 / math.Pi
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// EntityType tags the closed set of entity variants this decoder
// understands, plus UNSUPPORTED for every DWG object class it doesn't.
type EntityType string

const (
	LINE        EntityType = "LINE"
	ARC         EntityType = "ARC"
	LWPOLYLINE  EntityType = "LWPOLYLINE"
	POINT       EntityType = "POINT"
	CIRCLE      EntityType = "CIRCLE"
	ELLIPSE     EntityType = "ELLIPSE"
	TEXT        EntityType = "TEXT"
	MTEXT       EntityType = "MTEXT"
	DIMENSION   EntityType = "DIMENSION"
	INSERT      EntityType = "INSERT"
	UNSUPPORTED EntityType = "UNSUPPORTED"
)

// supportedTypes is the closed vocabulary the Layout.Query type_spec
// accepts, keyed by upper-case name; Query upper-cases each token before
// the lookup, so type names match case-insensitively.
var supportedTypes = map[string]EntityType{
	"LINE": LINE, "ARC": ARC, "LWPOLYLINE": LWPOLYLINE, "POINT": POINT,
	"CIRCLE": CIRCLE, "ELLIPSE": ELLIPSE, "TEXT": TEXT, "MTEXT": MTEXT,
	"DIMENSION": DIMENSION, "INSERT": INSERT,
}

// CommonData holds the common entity header fields shared by
// every entity record regardless of type.
type CommonData struct {
	Handle         Handle
	OwnerHandle    Handle
	LayerHandle    Handle
	LinetypeHandle Handle
	MaterialHandle Handle
	PlotStyleHandle Handle
	ShadowHandle   Handle
	Color          ColorRef
	Lineweight     int8
	LinetypeScale  float64
	Invisible      bool
	EntityMode     uint8
	Reactors       []Handle
	XDictHandle    Handle
}

// ColorRef is a DWG CMC color value: either a 256-entry ACI index, or (on
// AC1018+) a true color plus optional book/name strings.
type ColorRef struct {
	Index     uint16
	TrueColor uint32
	HasTrue   bool
	Name      string
	BookName  string
}

// Entity is a single decoded drawing object: a type tag, the handle and
// common header fields, and a type-specific Payload. Entities are created
// once during decode and never mutated afterward.
type Entity struct {
	Type    EntityType
	Common  CommonData
	Payload any

	// Warnings records non-fatal anomalies detected after CRC validation;
	// the object is preserved but flagged.
	Warnings []string
}

// Handle returns the entity's own object handle.
func (e *Entity) Handle() Handle { return e.Common.Handle }

// DXFType returns the entity's type tag as the DXF-style name used by
// Layout.Query's type_spec vocabulary.
func (e *Entity) DXFType() string { return string(e.Type) }

// Line is the LINE entity payload.
type Line struct {
	P0, P1    Vec3
	Thickness float64
	Extrusion Vec3
}

// Arc is the ARC entity payload. StartAngle/EndAngle are radians as read
//; use Entity.DXF or StartAngleDeg/EndAngleDeg for the
// normalized degree form.
type Arc struct {
	Center              Vec3
	Radius              float64
	Thickness           float64
	Extrusion           Vec3
	StartAngle, EndAngle float64
}

// StartAngleDeg returns the arc's start angle normalized to [0, 360).
func (a *Arc) StartAngleDeg() float64 { return degrees(a.StartAngle) }

// EndAngleDeg returns the arc's end angle normalized to [0, 360).
func (a *Arc) EndAngleDeg() float64 { return degrees(a.EndAngle) }

// Vertex is one LWPOLYLINE vertex: a 2D point plus optional bulge and
// per-segment start/end width.
type Vertex struct {
	X, Y             float64
	Bulge            float64
	HasBulge         bool
	StartW, EndW     float64
	HasWidth         bool
}

// LWPolylineFlags bit meanings.
const (
	LWPolyConstWidth LWPolylineFlags = 0x04
	LWPolyElevation  LWPolylineFlags = 0x08
	LWPolyThickness  LWPolylineFlags = 0x02
	LWPolyExtrusion  LWPolylineFlags = 0x01
	LWPolyBulges     LWPolylineFlags = 0x10
	LWPolyWidths     LWPolylineFlags = 0x20
	LWPolyClosed     LWPolylineFlags = 0x200
)

// LWPolylineFlags is the LWPOLYLINE header flag bitset.
type LWPolylineFlags uint32

// LWPolyline is the LWPOLYLINE entity payload.
type LWPolyline struct {
	Flags       LWPolylineFlags
	ConstWidth  float64
	Elevation   float64
	Thickness   float64
	Extrusion   Vec3
	Vertices    []Vertex
}

// Closed reports whether the LWPOLYLINE's closed bit is set.
func (p *LWPolyline) Closed() bool { return p.Flags&LWPolyClosed != 0 }

// Point is the POINT entity payload.
type Point struct {
	P           Vec3
	Thickness   float64
	Extrusion   Vec3
	XAxisAngle  float64 // radians
}

// Circle is the CIRCLE entity payload.
type Circle struct {
	Center    Vec3
	Radius    float64
	Thickness float64
	Extrusion Vec3
}

// Ellipse is the ELLIPSE entity payload. StartParam/EndParam are radians.
type Ellipse struct {
	Center               Vec3
	MajorAxis             Vec3
	Ratio                 float64
	StartParam, EndParam  float64
	Extrusion             Vec3
}

// HAlign/VAlign values for TEXT.
type HAlign uint8
type VAlign uint8

const (
	HAlignLeft   HAlign = 0
	HAlignCenter HAlign = 1
	HAlignRight  HAlign = 2
	HAlignAligned HAlign = 3
	HAlignMiddle HAlign = 4
	HAlignFit    HAlign = 5

	VAlignBaseline VAlign = 0
	VAlignBottom   VAlign = 1
	VAlignMiddle   VAlign = 2
	VAlignTop      VAlign = 3
)

// Text is the TEXT entity payload. Rotation and Oblique are radians.
type Text struct {
	Insert          Vec3
	Align           Vec3
	HasAlign        bool
	Height          float64
	Rotation        float64
	WidthFactor     float64
	Oblique         float64
	StyleHandle     Handle
	GenerationFlags uint16
	HAlign          HAlign
	VAlign          VAlign
	Value           string
}

// RotationDeg returns Text.Rotation normalized to degrees.
func (t *Text) RotationDeg() float64 { return degrees(t.Rotation) }

// ObliqueDeg returns Text.Oblique normalized to degrees.
func (t *Text) ObliqueDeg() float64 { return degrees(t.Oblique) }

// MText is the MTEXT entity payload.
type MText struct {
	Insert           Vec3
	XAxis            Vec3
	Width            float64
	Height           float64
	AttachPoint      uint16
	DrawingDir       uint16
	Value            string
	LineSpacingStyle uint16
	LineSpacingFactor float64
	BGFlags          uint32
	HasBG            bool
}

// DimSubtype enumerates the DIMENSION subtypes this decoder parses.
type DimSubtype string

const (
	DimLinear   DimSubtype = "linear"
	DimRadius   DimSubtype = "radius"
	DimDiameter DimSubtype = "diameter"
)

// Dimension is the DIMENSION entity payload. Rotation is radians.
type Dimension struct {
	Subtype          DimSubtype
	TextMidpoint     Vec3
	Insertion        Vec3
	DefinitionPoints []Vec3
	Text             string
	Rotation         float64
	DimStyleHandle   Handle
	BlockHandle      Handle
}

// RotationDeg returns Dimension.Rotation normalized to degrees.
func (d *Dimension) RotationDeg() float64 { return degrees(d.Rotation) }

// Insert is the INSERT (block reference) entity payload.
type Insert struct {
	Point         Vec3
	Scale         Vec3
	Rotation      float64 // radians
	Extrusion     Vec3
	BlockHandle   Handle
	HasAttribs    bool
	ColumnCount   int
	RowCount      int
	ColumnSpacing float64
	RowSpacing    float64
}

// RotationDeg returns Insert.Rotation normalized to degrees.
func (i *Insert) RotationDeg() float64 { return degrees(i.Rotation) }

// Unsupported is the placeholder payload recorded for object classes this
// decoder does not parse.
type Unsupported struct {
	RawType uint16
}
