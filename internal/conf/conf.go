// Copyright (C) 2021 Krishna Karra
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

// Package conf loads pipeline defaults from an optional YAML file.
// Command line flags that were set explicitly take precedence; the merge
// is done by the caller via flag.Visit.
package conf

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Out           string  `yaml:"out"`
	Log           string  `yaml:"log"`
	Pmin          float64 `yaml:"pmin"`
	Pmax          float64 `yaml:"pmax"`
	Cmap          string  `yaml:"cmap"`
	Aspect        string  `yaml:"aspect"`
	OutSize       string  `yaml:"outSize"`
	Coregister    bool    `yaml:"coregister"`
	Upsample      int     `yaml:"upsample"`
	Base          int     `yaml:"base"`
	FPS           int     `yaml:"fps"`
	Websafe       bool    `yaml:"websafe"`
	ValidFraction float64 `yaml:"validFraction"`
	Frames        string  `yaml:"frames"`
}

// Defaults mirror the flag defaults in the command entry point.
func NewConfig() *Config {
	return &Config{
		Pmin:          2,
		Pmax:          98,
		Cmap:          "viridis",
		Coregister:    true,
		Upsample:      10,
		Base:          0,
		FPS:           10,
		ValidFraction: 0,
	}
}

// Load reads a YAML config file into a default-initialized Config.
// A missing file is not an error when optional is set.
func Load(fileName string, optional bool) (*Config, error) {
	c := NewConfig()
	data, err := os.ReadFile(fileName)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("config: reading %s: %s", fileName, err.Error())
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %s", fileName, err.Error())
	}
	return c, nil
}
