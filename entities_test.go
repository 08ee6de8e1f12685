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
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLine(t *testing.T) {
	// Bit sequence: zIsZero=1, p0x=1.0 (BD tag 01), p1x=0.0 (tag 10),
	// p0y=1.0 (tag 01), p1y=0.0 (tag 10), thickness BT flag=0, extrusion
	// BE flag=0 -> "10110011000", packed MSB-first into 0xB3, 0x00.
	br := newBitReader([]byte{0xB3, 0x00}, 0)
	line, err := parseLine(br)
	if err != nil {
		t.Fatal(err)
	}
	want := &Line{
		P0:        Vec3{X: 1, Y: 1, Z: 0},
		P1:        Vec3{X: 0, Y: 0, Z: 0},
		Thickness: 0,
		Extrusion: Vec3{Z: 1},
	}
	if diff := cmp.Diff(want, line); diff != "" {
		t.Errorf("parseLine() mismatch (-want +got):\n%s", diff)
	}
}

func TestArcAngleNormalization(t *testing.T) {
	a := &Arc{StartAngle: -math.Pi / 2, EndAngle: 2 * math.Pi}
	if got := a.StartAngleDeg(); math.Abs(got-270) > 1e-9 {
		t.Errorf("StartAngleDeg() = %v, want 270", got)
	}
	if got := a.EndAngleDeg(); math.Abs(got-0) > 1e-9 {
		t.Errorf("EndAngleDeg() = %v, want 0", got)
	}
}

func TestGeometryWarningsNegativeRadius(t *testing.T) {
	warnings := geometryWarnings(CIRCLE, &Circle{Radius: -1})
	if len(warnings) == 0 {
		t.Error("expected a warning for negative radius")
	}
}

func TestGeometryWarningsEllipseRatio(t *testing.T) {
	warnings := geometryWarnings(ELLIPSE, &Ellipse{Ratio: 1.5})
	if len(warnings) == 0 {
		t.Error("expected a warning for an out-of-range ratio")
	}
	if w := geometryWarnings(ELLIPSE, &Ellipse{Ratio: 0.5}); len(w) != 0 {
		t.Errorf("unexpected warnings for a valid ratio: %v", w)
	}
}

func TestLWPolylineClosed(t *testing.T) {
	p := &LWPolyline{Flags: LWPolyClosed}
	if !p.Closed() {
		t.Error("expected Closed() to report true")
	}
	p2 := &LWPolyline{}
	if p2.Closed() {
		t.Error("expected Closed() to report false")
	}
}
