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
	"os"

	"gopkg.in/yaml.v3"
)

// InspectConfig holds the settings dwginspect reads from its optional YAML
// config file, layered under command-line flags.
type InspectConfig struct {
	Format        string `yaml:"format"`
	CacheDir      string `yaml:"cache_dir"`
	ConverterPath string `yaml:"converter_path"`
}

// LoadConfig reads an InspectConfig from a YAML file. A missing file is not
// an error; it just means defaults and flags are all that apply.
func LoadConfig(path string) (*InspectConfig, error) {
	cfg := &InspectConfig{Format: "text"}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
