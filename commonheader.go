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

// Common entity header: the version-gated shared prologue every
// entity object begins with, before its type-specific fields.

// commonHeaderResult carries the parsed common fields plus, for AC1021+,
// the object's declared bit-size (used to locate the trailing handle
// stream once the type-specific parser has run).
type commonHeaderResult struct {
	Common      CommonData
	BitSize     int64
	HasBitSize  bool
	HasXDict    bool
	LinetypeExplicit bool
	MaterialExplicit bool
	PlotStyleExplicit bool
	ShadowExplicit    bool
	NumReactors       int32
}

// readCommonEntityHeader reads, in order: the AC1024+ extra-data-size
// byte, the AC1021+ object-bit-size word, the handle, extended data, the
// graphics-present block, and the common entity data fields. For
// AC1015/AC1018 it also reads the trailing owner/reactor/xdict/layer/
// linetype handles inline, since those versions do not use a deferred
// handle substream. The bitstream is left positioned at the first
// type-specific field.
func readCommonEntityHeader(br *bitReader, v Version) (*commonHeaderResult, error) {
	res := &commonHeaderResult{}

	if v.extraDataSizeByte() {
		if _, err := br.RC(); err != nil {
			return nil, err
		}
	}

	if v.handleStreamTrailer() {
		bitSize, err := br.RL()
		if err != nil {
			return nil, err
		}
		res.BitSize = int64(bitSize)
		res.HasBitSize = true
	}

	handle, err := br.H()
	if err != nil {
		return nil, err
	}
	res.Common.Handle = handle

	xdataSize, err := br.BS()
	if err != nil {
		return nil, err
	}
	if xdataSize > 0 {
		if _, err := br.rawBytes(int(xdataSize)); err != nil {
			return nil, err
		}
	}

	hasGraphics, err := br.B()
	if err != nil {
		return nil, err
	}
	if hasGraphics {
		gsize, err := br.RL()
		if err != nil {
			return nil, err
		}
		if _, err := br.rawBytes(int(gsize)); err != nil {
			return nil, err
		}
	}

	mode, err := br.BB()
	if err != nil {
		return nil, err
	}
	res.Common.EntityMode = mode

	numReactors, err := br.BLAsInt()
	if err != nil {
		return nil, err
	}
	res.NumReactors = numReactors

	noXDict, err := br.B()
	if err != nil {
		return nil, err
	}
	res.HasXDict = !noXDict

	if v.hasBinaryXDataFlag() {
		if _, err := br.B(); err != nil { // isBinaryXData, not retained
			return nil, err
		}
	}

	plotStyleFlag, err := br.B()
	if err != nil {
		return nil, err
	}
	res.PlotStyleExplicit = plotStyleFlag

	layerFlag, err := br.B()
	if err != nil {
		return nil, err
	}
	_ = layerFlag // whether layer is the default "0" layer vs an explicit handle; handle is read regardless below

	linetypeFlag, err := br.BB()
	if err != nil {
		return nil, err
	}
	res.LinetypeExplicit = linetypeFlag == 3

	invisible, err := br.B()
	if err != nil {
		return nil, err
	}
	res.Common.Invisible = invisible

	color, err := br.CMC(v)
	if err != nil {
		return nil, err
	}
	res.Common.Color = color

	ltscale, err := br.BD()
	if err != nil {
		return nil, err
	}
	res.Common.LinetypeScale = ltscale

	if _, err := br.B(); err != nil { // linetype_scale_flag, not retained
		return nil, err
	}

	plotStyleNameFlag, err := br.B()
	if err != nil {
		return nil, err
	}
	_ = plotStyleNameFlag

	materialFlag, err := br.B()
	if err != nil {
		return nil, err
	}
	res.MaterialExplicit = materialFlag

	shadowFlag, err := br.B()
	if err != nil {
		return nil, err
	}
	res.ShadowExplicit = shadowFlag

	if v == AC1021 || v == AC1024 || v == AC1027 {
		if _, err := br.B(); err != nil { // has_full_visualstyle, not retained
			return nil, err
		}
	}

	if v.hasLineweight() {
		lw, err := br.RC()
		if err != nil {
			return nil, err
		}
		res.Common.Lineweight = int8(lw)
	}

	if !v.handleStreamTrailer() {
		if err := readInlineHandles(br, res); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// readInlineHandles reads the trailing reference handles for AC1015/
// AC1018, where they are inline rather than deferred to a handle
// substream: owner, reactors, xdict, layer, and (if explicit) linetype.
func readInlineHandles(br *bitReader, res *commonHeaderResult) error {
	owner, err := br.H()
	if err != nil {
		return err
	}
	res.Common.OwnerHandle = owner

	for i := int32(0); i < res.NumReactors; i++ {
		reactor, err := br.H()
		if err != nil {
			return err
		}
		res.Common.Reactors = append(res.Common.Reactors, reactor)
	}

	if res.HasXDict {
		xdict, err := br.H()
		if err != nil {
			return err
		}
		res.Common.XDictHandle = xdict
	}

	layer, err := br.H()
	if err != nil {
		return err
	}
	res.Common.LayerHandle = layer

	if res.LinetypeExplicit {
		lt, err := br.H()
		if err != nil {
			return err
		}
		res.Common.LinetypeHandle = lt
	}

	if res.MaterialExplicit {
		mat, err := br.H()
		if err != nil {
			return err
		}
		res.Common.MaterialHandle = mat
	}

	if res.PlotStyleExplicit {
		ps, err := br.H()
		if err != nil {
			return err
		}
		res.Common.PlotStyleHandle = ps
	}

	if res.ShadowExplicit {
		sh, err := br.H()
		if err != nil {
			return err
		}
		res.Common.ShadowHandle = sh
	}

	return nil
}

// readTrailingHandleStream reads the deferred handle substream used by
// AC1021+, positioned at the byte boundary computed from the object's
// declared bit-size. Any failure here is tolerated and leaves whatever
// handles were read so far; AC1021/AC1024 layer and linetype handles
// resolve best-effort rather than failing the object.
func readTrailingHandleStream(objData []byte, res *commonHeaderResult) {
	if !res.HasBitSize {
		return
	}
	byteOffset := int((res.BitSize + 7) / 8)
	if byteOffset < 0 || byteOffset >= len(objData) {
		return
	}
	br := newBitReader(objData[byteOffset:], 0)

	read := func(dst *Handle) bool {
		h, err := br.H()
		if err != nil {
			return false
		}
		*dst = h
		return true
	}

	var owner Handle
	if !read(&owner) {
		return
	}
	res.Common.OwnerHandle = owner

	if res.HasXDict {
		var xdict Handle
		if !read(&xdict) {
			return
		}
		res.Common.XDictHandle = xdict
	}

	var layer Handle
	if !read(&layer) {
		return
	}
	res.Common.LayerHandle = layer

	if res.LinetypeExplicit {
		var lt Handle
		if !read(&lt) {
			return
		}
		res.Common.LinetypeHandle = lt
	}

	if res.MaterialExplicit {
		var mat Handle
		if !read(&mat) {
			return
		}
		res.Common.MaterialHandle = mat
	}

	if res.PlotStyleExplicit {
		var ps Handle
		if !read(&ps) {
			return
		}
		res.Common.PlotStyleHandle = ps
	}

	if res.ShadowExplicit {
		var sh Handle
		if !read(&sh) {
			return
		}
		res.Common.ShadowHandle = sh
	}
}
