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

import "golang.org/x/exp/maps"

// Document model: entities grouped by layout, an index by handle,
// and the best-effort symbol table layer/linetype names fall back to.
// Built in one pass during Read and frozen before being handed out — no
// background work, no mutation.
type Document struct {
	Version Version

	// SourceDigest is the blake3 digest of the decoded byte source,
	// exposed for cache-key use and for cheap equality checks across
	// re-decodes of the same bytes.
	SourceDigest [32]byte

	entitiesByHandle map[uint64]*Entity
	layouts          map[string]*Layout
	layoutOrder      []string
	symbols          *symbolTable
}

// Layout is one named layout (block) and the ordered sequence of entities
// it owns. "Model" is always present; paper space layouts may be absent.
type Layout struct {
	Name     string
	entities []*Entity
}

// Modelspace returns the always-present "Model" layout.
func (d *Document) Modelspace() *Layout {
	return d.layouts["Model"]
}

// Layout returns the named layout, or nil if the drawing has none by that
// name.
func (d *Document) Layout(name string) *Layout {
	return d.layouts[name]
}

// LayoutNames returns every layout name the document has, in the order
// they were encountered.
func (d *Document) LayoutNames() []string {
	return append([]string(nil), d.layoutOrder...)
}

// EntityByHandle looks up an entity by its own handle.
func (d *Document) EntityByHandle(h Handle) (*Entity, bool) {
	e, ok := d.entitiesByHandle[h.Value]
	return e, ok
}

// ResolveLayerName returns the name of the layer a handle refers to, by
// looking it up in the best-effort symbol table: a zero handle
// or an unresolved one both report ok=false, leaving the caller to decide
// how to present "unknown".
func (d *Document) ResolveLayerName(h Handle) (string, bool) {
	if h.IsZero() || d.symbols == nil {
		return "", false
	}
	return d.symbols.name(h)
}

// Handles returns the handle value of every decoded entity, in no
// particular order. The CLI uses this for its handle-range summary; the
// per-layout entity sequences are where source order lives.
func (d *Document) Handles() []uint64 {
	return maps.Keys(d.entitiesByHandle)
}

// Entities returns the layout's entities in source (object-map) order.
func (l *Layout) Entities() []*Entity {
	return l.entities
}

// CachedDocument is the subset of Document the cache subpackage persists
// and rebuilds: entities by layout, with the handle index reconstructed on
// load rather than stored. The symbol table is neither stored nor rebuilt.
type CachedDocument struct {
	Version      Version
	SourceDigest [32]byte
	Layouts      map[string][]*Entity
	LayoutOrder  []string
}

// FromCache rebuilds a usable Document from a previously cached snapshot.
// The symbol table is not persisted, so layer/linetype name resolution
// falls back to ok=false until the document is re-decoded from source.
func FromCache(cd *CachedDocument) *Document {
	doc := &Document{
		Version:          cd.Version,
		SourceDigest:     cd.SourceDigest,
		entitiesByHandle: make(map[uint64]*Entity),
		layouts:          make(map[string]*Layout),
		layoutOrder:      append([]string(nil), cd.LayoutOrder...),
	}
	for _, name := range cd.LayoutOrder {
		l := &Layout{Name: name, entities: cd.Layouts[name]}
		doc.layouts[name] = l
		for _, e := range l.entities {
			doc.entitiesByHandle[e.Common.Handle.Value] = e
		}
	}
	return doc
}
