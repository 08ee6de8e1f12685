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
	"context"
	"os"

	"seehuhn.de/go/dwg/downgrade"
)

// ReadWithShim decodes path the same as Read, except that if the file is
// AC1027 it is first run through the downgrade shim to obtain an AC1018
// copy, which is what actually gets decoded. Version on the
// returned Document is the shim's output version, not AC1027, so callers
// can tell a shimmed decode apart from a native one.
func ReadWithShim(ctx context.Context, path, converterPath string) (*Document, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(buf) < 6 {
		return nil, newError(UnsupportedVersion, 0, nil)
	}
	v, err := ParseVersion(buf[:6])
	if err != nil {
		return nil, err
	}
	if v != AC1027 {
		return Decode(buf)
	}

	outDir, err := os.MkdirTemp("", "dwg-shim-*")
	if err != nil {
		return nil, newError(ConvertFailed, -1, err)
	}
	defer os.RemoveAll(outDir)

	converted, err := downgrade.Shim(ctx, converterPath, path, outDir)
	if err != nil {
		return nil, newError(ConvertFailed, -1, err)
	}
	return Read(converted)
}
