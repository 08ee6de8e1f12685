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

// Package cache persists decoded Documents keyed by the source file's
// blake3 digest, so repeated inspection of the same bytes skips the full
// decode pipeline. Entries are CBOR-encoded snapshots
// under the user's cache directory; a digest mismatch or a missing entry
// is never an error, just a cache miss.
package cache

import (
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	"seehuhn.de/go/dwg"
)

// snapshot is the on-disk shape of a cached document: just enough to
// reconstruct the parts of Document that Layout.Query and Entity.DXF need,
// without re-running the decode pipeline.
type snapshot struct {
	Version      dwg.Version
	SourceDigest [32]byte
	Layouts      map[string][]entitySnapshot
	LayoutOrder  []string
}

type entitySnapshot struct {
	Type     dwg.EntityType
	Common   dwg.CommonData
	Payload  cbor.RawMessage
	Warnings []string
}

// encodePayload/decodePayload round-trip Entity.Payload through CBOR by
// type, since the interface value itself carries no type information CBOR
// can recover on decode.
func encodePayload(et dwg.EntityType, payload any) (cbor.RawMessage, error) {
	return cbor.Marshal(payload)
}

func decodePayload(et dwg.EntityType, raw cbor.RawMessage) (any, error) {
	var err error
	switch et {
	case dwg.LINE:
		var p dwg.Line
		err = cbor.Unmarshal(raw, &p)
		return &p, err
	case dwg.ARC:
		var p dwg.Arc
		err = cbor.Unmarshal(raw, &p)
		return &p, err
	case dwg.CIRCLE:
		var p dwg.Circle
		err = cbor.Unmarshal(raw, &p)
		return &p, err
	case dwg.POINT:
		var p dwg.Point
		err = cbor.Unmarshal(raw, &p)
		return &p, err
	case dwg.ELLIPSE:
		var p dwg.Ellipse
		err = cbor.Unmarshal(raw, &p)
		return &p, err
	case dwg.TEXT:
		var p dwg.Text
		err = cbor.Unmarshal(raw, &p)
		return &p, err
	case dwg.MTEXT:
		var p dwg.MText
		err = cbor.Unmarshal(raw, &p)
		return &p, err
	case dwg.LWPOLYLINE:
		var p dwg.LWPolyline
		err = cbor.Unmarshal(raw, &p)
		return &p, err
	case dwg.DIMENSION:
		var p dwg.Dimension
		err = cbor.Unmarshal(raw, &p)
		return &p, err
	case dwg.INSERT:
		var p dwg.Insert
		err = cbor.Unmarshal(raw, &p)
		return &p, err
	default:
		var p dwg.Unsupported
		err = cbor.Unmarshal(raw, &p)
		return p, err
	}
}

// dir returns the directory cached documents are stored under, creating it
// if necessary.
func dir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	d := filepath.Join(base, "dwg")
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", err
	}
	return d, nil
}

func path(digest [32]byte) (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, hex(digest)+".cbor"), nil
}

func hex(b [32]byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0x0F]
	}
	return string(out)
}

// Store writes a snapshot of doc to the cache, keyed by its SourceDigest.
func Store(doc *dwg.Document) error {
	p, err := path(doc.SourceDigest)
	if err != nil {
		return err
	}
	snap := snapshot{
		Version:      doc.Version,
		SourceDigest: doc.SourceDigest,
		Layouts:      make(map[string][]entitySnapshot),
		LayoutOrder:  doc.LayoutNames(),
	}
	for _, name := range snap.LayoutOrder {
		for _, e := range doc.Layout(name).Entities() {
			payload, err := encodePayload(e.Type, e.Payload)
			if err != nil {
				return err
			}
			snap.Layouts[name] = append(snap.Layouts[name], entitySnapshot{
				Type: e.Type, Common: e.Common, Payload: payload, Warnings: e.Warnings,
			})
		}
	}
	data, err := cbor.Marshal(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// ReadCached loads the cached decode for the source bytes identified by
// digest, reporting ok=false on any cache miss (file absent, corrupt, or
// empty) rather than an error — a miss just means "decode it fresh".
func ReadCached(digest [32]byte) (*dwg.CachedDocument, bool) {
	p, err := path(digest)
	if err != nil {
		return nil, false
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	var snap snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, false
	}
	if snap.SourceDigest != digest {
		return nil, false
	}
	layouts := make(map[string][]*dwg.Entity, len(snap.Layouts))
	for name, entities := range snap.Layouts {
		for _, es := range entities {
			payload, err := decodePayload(es.Type, es.Payload)
			if err != nil {
				continue // a corrupt cache entry degrades to a cache miss for that entity only
			}
			layouts[name] = append(layouts[name], &dwg.Entity{
				Type: es.Type, Common: es.Common, Payload: payload, Warnings: es.Warnings,
			})
		}
	}
	return &dwg.CachedDocument{
		Version:      snap.Version,
		SourceDigest: snap.SourceDigest,
		Layouts:      layouts,
		LayoutOrder:  snap.LayoutOrder,
	}, true
}
