// Package raw exposes the low-level decode surface the high-level Document
// model sits on top of: per-type entity dumps with angles left in radians
// and no layout grouping, for diagnosing a file the normal query path
// doesn't explain.
package raw

import "seehuhn.de/go/dwg"

// DecodeLineEntities returns every LINE entity in the file, in object-map
// order.
func DecodeLineEntities(path string) ([]*dwg.Line, error) {
	return decodeTyped(path, dwg.LINE, func(e *dwg.Entity) *dwg.Line {
		l, _ := e.Payload.(*dwg.Line)
		return l
	})
}

// DecodeArcEntities returns every ARC entity in the file, in object-map
// order, with StartAngle/EndAngle left as radians.
func DecodeArcEntities(path string) ([]*dwg.Arc, error) {
	return decodeTyped(path, dwg.ARC, func(e *dwg.Entity) *dwg.Arc {
		a, _ := e.Payload.(*dwg.Arc)
		return a
	})
}

// DecodeLWPolylineEntities returns every LWPOLYLINE entity in the file, in
// object-map order.
func DecodeLWPolylineEntities(path string) ([]*dwg.LWPolyline, error) {
	return decodeTyped(path, dwg.LWPOLYLINE, func(e *dwg.Entity) *dwg.LWPolyline {
		p, _ := e.Payload.(*dwg.LWPolyline)
		return p
	})
}

// DecodeInsertEntities returns every INSERT entity in the file, in
// object-map order, with Rotation left as radians.
func DecodeInsertEntities(path string) ([]*dwg.Insert, error) {
	return decodeTyped(path, dwg.INSERT, func(e *dwg.Entity) *dwg.Insert {
		i, _ := e.Payload.(*dwg.Insert)
		return i
	})
}

func decodeTyped[T any](path string, et dwg.EntityType, extract func(*dwg.Entity) T) ([]T, error) {
	doc, err := dwg.Read(path)
	if err != nil {
		return nil, err
	}
	var out []T
	for _, name := range doc.LayoutNames() {
		for _, e := range doc.Layout(name).Entities() {
			if e.Type == et {
				out = append(out, extract(e))
			}
		}
	}
	return out, nil
}
